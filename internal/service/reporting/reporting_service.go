package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/logistics/internal/domain/models"
	"github.com/mamadbah2/logistics/internal/repository/mongodb"
	"github.com/mamadbah2/logistics/internal/service/export"
	"github.com/mamadbah2/logistics/pkg/clients/whatsapp"
)

const dateLayout = "2006-01-02"

// ErrSnapshotsDisabled is returned when no snapshot store is configured.
var ErrSnapshotsDisabled = errors.New("snapshot storage is not configured")

// ReportSource provides the current cost report.
type ReportSource interface {
	Report(ctx context.Context) (models.CostReport, error)
	Refresh()
}

// PublishResult describes what a publish run produced.
type PublishResult struct {
	Summary    string
	SnapshotID string
	MessageID  string
}

// Service turns cost reports into snapshots and operator notifications.
type Service struct {
	source    ReportSource
	snapshots mongodb.SnapshotRepository
	notifier  whatsapp.Notifier
	recipient string
	logger    *zap.Logger
}

// NewService wires a reporting service. snapshots and notifier may be nil.
func NewService(source ReportSource, snapshots mongodb.SnapshotRepository, notifier whatsapp.Notifier, recipient string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:    source,
		snapshots: snapshots,
		notifier:  notifier,
		recipient: recipient,
		logger:    logger,
	}
}

// SnapshotsEnabled reports whether a snapshot store is configured.
func (s *Service) SnapshotsEnabled() bool {
	return s.snapshots != nil
}

// Summary renders a short human readable digest of a report.
func Summary(report models.CostReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Logistics summary (%s): %d products, transport cost %s (%s km x %s/km).",
		report.GeneratedAt.Format(dateLayout),
		len(report.Rows),
		export.FormatMoney(&report.TransportCost),
		export.FormatNumber(report.Params.Distance),
		export.FormatNumber(report.Params.RatePerKm))

	if report.BestProduct == "" {
		b.WriteString(" No product could be evaluated.")
	} else {
		for _, row := range report.Rows {
			if row.Product == report.BestProduct {
				fmt.Fprintf(&b, " Most cost-effective: %s (EOQ %s, total %s).",
					row.Product, export.FormatQuantity(row.EOQ), export.FormatMoney(row.TotalAnnualCost))
				break
			}
		}
	}

	if invalid := report.InvalidRows(); invalid > 0 {
		fmt.Fprintf(&b, " %d product(s) N/A.", invalid)
	}

	return b.String()
}

// Snapshot stores the current report.
func (s *Service) Snapshot(ctx context.Context, source string) (models.CostSnapshot, error) {
	if s.snapshots == nil {
		return models.CostSnapshot{}, ErrSnapshotsDisabled
	}

	report, err := s.source.Report(ctx)
	if err != nil {
		return models.CostSnapshot{}, fmt.Errorf("build report: %w", err)
	}

	snapshot, err := s.snapshots.SaveSnapshot(ctx, report, source)
	if err != nil {
		return models.CostSnapshot{}, err
	}

	s.logger.Info("cost snapshot saved", zap.String("snapshot_id", snapshot.ID), zap.String("source", source))
	return snapshot, nil
}

// LatestSnapshot returns the most recent stored report.
func (s *Service) LatestSnapshot(ctx context.Context) (models.CostSnapshot, error) {
	if s.snapshots == nil {
		return models.CostSnapshot{}, ErrSnapshotsDisabled
	}
	return s.snapshots.LatestSnapshot(ctx)
}

// Publish reloads the table, stores a snapshot and notifies the operator.
// Snapshot and notification failures are logged and returned together; the
// run does not stop at the first one.
func (s *Service) Publish(ctx context.Context, source string) (PublishResult, error) {
	s.source.Refresh()

	report, err := s.source.Report(ctx)
	if err != nil {
		return PublishResult{}, fmt.Errorf("build report: %w", err)
	}

	result := PublishResult{Summary: Summary(report)}
	var errs []error

	if s.snapshots != nil {
		snapshot, err := s.snapshots.SaveSnapshot(ctx, report, source)
		if err != nil {
			s.logger.Error("failed to save cost snapshot", zap.Error(err))
			errs = append(errs, err)
		} else {
			result.SnapshotID = snapshot.ID
		}
	}

	if s.notifier != nil && s.recipient != "" {
		id, err := s.notifier.SendText(ctx, s.recipient, result.Summary)
		if err != nil {
			s.logger.Error("failed to send cost summary", zap.Error(err))
			errs = append(errs, err)
		} else {
			result.MessageID = id
		}
	}

	s.logger.Info("cost report published",
		zap.String("source", source),
		zap.String("best_product", report.BestProduct),
		zap.String("snapshot_id", result.SnapshotID),
		zap.String("message_id", result.MessageID))

	return result, errors.Join(errs...)
}
