package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/logistics/internal/domain/models"
)

// ErrNoSnapshot is returned when the collection holds no snapshot yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// SnapshotRepository stores computed cost reports.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, report models.CostReport, source string) (models.CostSnapshot, error)
	LatestSnapshot(ctx context.Context) (models.CostSnapshot, error)
}

// MongoDBRepository implements SnapshotRepository for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
	now      func() time.Time
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri, dbName, collName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: collName,
		now:      time.Now,
	}, nil
}

// SaveSnapshot persists a report under a fresh id.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, report models.CostReport, source string) (models.CostSnapshot, error) {
	snapshot := models.CostSnapshot{
		ID:        uuid.NewString(),
		Report:    report,
		Source:    source,
		CreatedAt: r.now().UTC(),
	}

	if _, err := r.collection().InsertOne(ctx, snapshot); err != nil {
		return models.CostSnapshot{}, fmt.Errorf("failed to insert cost snapshot: %w", err)
	}
	return snapshot, nil
}

// LatestSnapshot returns the most recently created snapshot.
func (r *MongoDBRepository) LatestSnapshot(ctx context.Context) (models.CostSnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var snapshot models.CostSnapshot
	err := r.collection().FindOne(ctx, bson.D{}, opts).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CostSnapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return models.CostSnapshot{}, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	return snapshot, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}
