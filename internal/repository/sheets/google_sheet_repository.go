package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/logistics/internal/config"
	"github.com/mamadbah2/logistics/internal/domain/models"
)

// Header is the first row of the hosted inventory table.
var Header = []interface{}{"Product", "Annual_Demand", "Order_Cost", "Holding_Cost", "Unit_Price"}

// ValueStore is the slice of the Sheets values API the repository relies on.
type ValueStore interface {
	Append(ctx context.Context, sheetRange string, rows [][]interface{}) error
	Get(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// InventoryRepository reads and appends inventory rows stored in a Google Sheet.
type InventoryRepository struct {
	values     ValueStore
	sheetRange string
	logger     *zap.Logger
}

// NewGoogleSheetRepository builds a repository backed by the official Google Sheets API.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*InventoryRepository, error) {
	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	values := &apiValueStore{service: service, spreadsheetID: cfg.SpreadsheetID}
	return NewInventoryRepository(values, cfg.InventoryRange, logger), nil
}

// NewInventoryRepository wires a repository over any ValueStore.
func NewInventoryRepository(values ValueStore, sheetRange string, logger *zap.Logger) *InventoryRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryRepository{values: values, sheetRange: sheetRange, logger: logger}
}

// ListRecords loads every well-formed row of the sheet. The header row and
// rows that fail to parse are skipped.
func (r *InventoryRepository) ListRecords(ctx context.Context) ([]models.InventoryRecord, error) {
	rows, err := r.values.Get(ctx, r.sheetRange)
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", r.sheetRange, err)
	}

	records := make([]models.InventoryRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}

		rec, err := parseRow(row)
		if err == nil {
			err = rec.Validate()
		}
		if err != nil {
			r.logger.Debug("skip inventory row", zap.Int("row", i+1), zap.Any("values", row), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// InsertRecord appends a new row unless the product is already present.
func (r *InventoryRepository) InsertRecord(ctx context.Context, record models.InventoryRecord) error {
	existing, err := r.ListRecords(ctx)
	if err != nil {
		return err
	}
	for _, rec := range existing {
		if rec.Product == record.Product {
			return fmt.Errorf("insert %s: %w", record.Product, models.ErrDuplicateProduct)
		}
	}

	if err := r.values.Append(ctx, r.sheetRange, [][]interface{}{formatRow(record)}); err != nil {
		return fmt.Errorf("append row into range %s: %w", r.sheetRange, err)
	}

	r.logger.Debug("inventory row appended", zap.String("range", r.sheetRange), zap.String("product", record.Product))
	return nil
}

func isHeader(row []interface{}) bool {
	if len(row) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(fmt.Sprint(row[0])), fmt.Sprint(Header[0]))
}

func parseRow(row []interface{}) (models.InventoryRecord, error) {
	if len(row) < 4 {
		return models.InventoryRecord{}, fmt.Errorf("expected at least 4 cells, got %d", len(row))
	}

	product := strings.TrimSpace(fmt.Sprint(row[0]))
	if product == "" {
		return models.InventoryRecord{}, fmt.Errorf("empty product")
	}

	demand, err := parseFloat(row[1])
	if err != nil {
		return models.InventoryRecord{}, fmt.Errorf("annual demand: %w", err)
	}
	orderCost, err := parseFloat(row[2])
	if err != nil {
		return models.InventoryRecord{}, fmt.Errorf("order cost: %w", err)
	}
	holdingCost, err := parseFloat(row[3])
	if err != nil {
		return models.InventoryRecord{}, fmt.Errorf("holding cost: %w", err)
	}

	rec := models.InventoryRecord{
		Product:      product,
		AnnualDemand: demand,
		OrderCost:    orderCost,
		HoldingCost:  holdingCost,
	}

	if len(row) > 4 && strings.TrimSpace(fmt.Sprint(row[4])) != "" {
		price, err := parseFloat(row[4])
		if err != nil {
			return models.InventoryRecord{}, fmt.Errorf("unit price: %w", err)
		}
		rec.UnitPrice = &price
	}

	return rec, nil
}

func formatRow(rec models.InventoryRecord) []interface{} {
	price := interface{}("")
	if rec.UnitPrice != nil {
		price = *rec.UnitPrice
	}
	return []interface{}{rec.Product, rec.AnnualDemand, rec.OrderCost, rec.HoldingCost, price}
}

func parseFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}

	str := strings.TrimSpace(fmt.Sprint(value))
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.ParseFloat(str, 64)
}

type apiValueStore struct {
	service       *sheetsapi.Service
	spreadsheetID string
}

func (s *apiValueStore) Append(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	payload := &sheetsapi.ValueRange{Values: rows}

	call := s.service.Spreadsheets.Values.Append(s.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	_, err := call.Do()
	return err
}

func (s *apiValueStore) Get(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}
