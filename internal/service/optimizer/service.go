package optimizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/logistics/internal/domain/eoq"
	"github.com/mamadbah2/logistics/internal/domain/models"
)

// ErrReadOnlySource indicates the configured table only supports inserts.
var ErrReadOnlySource = errors.New("inventory source does not support editing")

// Repository is the row source every inventory table provides.
type Repository interface {
	ListRecords(ctx context.Context) ([]models.InventoryRecord, error)
	InsertRecord(ctx context.Context, record models.InventoryRecord) error
}

// Editor is implemented by tables that can be edited in place.
type Editor interface {
	UpdateRecord(ctx context.Context, record models.InventoryRecord) error
	DeleteRecord(ctx context.Context, product string) error
	ReplaceRecords(ctx context.Context, records []models.InventoryRecord) error
}

// Service evaluates the inventory table and caches the result until the
// rows or the transport parameters change.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	params models.CostParams
	cached *models.CostReport
}

// NewService wires the optimizer around a row source and initial parameters.
func NewService(repo Repository, params models.CostParams, logger *zap.Logger) (*Service, error) {
	if _, err := eoq.TransportCost(params); err != nil {
		return nil, fmt.Errorf("initial parameters: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		params: params,
	}, nil
}

// Editable reports whether the row source supports update, delete and replace.
func (s *Service) Editable() bool {
	_, ok := s.repo.(Editor)
	return ok
}

// Params returns the current transport parameters.
func (s *Service) Params() models.CostParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// UpdateParams replaces the transport parameters. The cached report is only
// dropped when a value actually changes.
func (s *Service) UpdateParams(params models.CostParams) error {
	if _, err := eoq.TransportCost(params); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if params == s.params {
		return nil
	}
	s.params = params
	s.cached = nil
	s.logger.Info("transport parameters updated",
		zap.Float64("distance", params.Distance),
		zap.Float64("rate_per_km", params.RatePerKm))
	return nil
}

// Refresh drops the cached report so the next Report call reloads the rows.
func (s *Service) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
}

// Report returns the evaluated table, recomputing it when invalidated.
func (s *Service) Report(ctx context.Context) (models.CostReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return cloneReport(*s.cached), nil
	}

	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return models.CostReport{}, fmt.Errorf("load inventory: %w", err)
	}

	report, err := s.evaluate(records)
	if err != nil {
		return models.CostReport{}, err
	}

	s.cached = &report
	return cloneReport(report), nil
}

// BestProduct returns the most cost-effective product of the current table.
func (s *Service) BestProduct(ctx context.Context) (string, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return "", err
	}
	if report.BestProduct == "" {
		return "", eoq.ErrEmptyInput
	}
	return report.BestProduct, nil
}

// AddRecord inserts a row into the table.
func (s *Service) AddRecord(ctx context.Context, record models.InventoryRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if err := s.repo.InsertRecord(ctx, record); err != nil {
		return err
	}
	s.Refresh()
	s.logger.Info("inventory record added", zap.String("product", record.Product))
	return nil
}

// UpdateRecord edits a row in place.
func (s *Service) UpdateRecord(ctx context.Context, record models.InventoryRecord) error {
	editor, err := s.editor()
	if err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}
	if err := editor.UpdateRecord(ctx, record); err != nil {
		return err
	}
	s.Refresh()
	s.logger.Info("inventory record updated", zap.String("product", record.Product))
	return nil
}

// DeleteRecord removes a row.
func (s *Service) DeleteRecord(ctx context.Context, product string) error {
	editor, err := s.editor()
	if err != nil {
		return err
	}
	if err := editor.DeleteRecord(ctx, product); err != nil {
		return err
	}
	s.Refresh()
	s.logger.Info("inventory record deleted", zap.String("product", product))
	return nil
}

// ReplaceRecords swaps the whole table.
func (s *Service) ReplaceRecords(ctx context.Context, records []models.InventoryRecord) error {
	editor, err := s.editor()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return err
		}
	}
	if err := editor.ReplaceRecords(ctx, records); err != nil {
		return err
	}
	s.Refresh()
	s.logger.Info("inventory table replaced", zap.Int("rows", len(records)))
	return nil
}

func (s *Service) editor() (Editor, error) {
	editor, ok := s.repo.(Editor)
	if !ok {
		return nil, ErrReadOnlySource
	}
	return editor, nil
}

// evaluate must be called with s.mu held.
func (s *Service) evaluate(records []models.InventoryRecord) (models.CostReport, error) {
	transport, err := eoq.TransportCost(s.params)
	if err != nil {
		return models.CostReport{}, err
	}

	rows := make([]models.CostedRecord, 0, len(records))
	for _, rec := range records {
		row, err := eoq.Evaluate(rec, transport)
		if err != nil {
			s.logger.Warn("inventory row cannot be evaluated", zap.String("product", rec.Product), zap.Error(err))
		}
		rows = append(rows, row)
	}

	report := models.CostReport{
		Params:        s.params,
		TransportCost: transport,
		Rows:          rows,
		GeneratedAt:   s.now().UTC(),
	}

	best, err := eoq.BestProduct(rows)
	switch {
	case err == nil:
		report.BestProduct = best
	case errors.Is(err, eoq.ErrEmptyInput):
		s.logger.Debug("no product eligible for best selection", zap.Int("rows", len(rows)))
	default:
		return models.CostReport{}, err
	}

	s.logger.Debug("inventory evaluated",
		zap.Int("rows", len(rows)),
		zap.Int("invalid_rows", report.InvalidRows()),
		zap.String("best_product", report.BestProduct))

	return report, nil
}

func cloneReport(r models.CostReport) models.CostReport {
	rows := make([]models.CostedRecord, len(r.Rows))
	for i, row := range r.Rows {
		row.UnitPrice = cloneFloat(row.UnitPrice)
		row.EOQ = cloneFloat(row.EOQ)
		row.TotalAnnualCost = cloneFloat(row.TotalAnnualCost)
		rows[i] = row
	}
	r.Rows = rows
	return r
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
