package handlers

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/logistics/internal/domain/eoq"
	"github.com/mamadbah2/logistics/internal/domain/models"
	"github.com/mamadbah2/logistics/internal/repository/mongodb"
	"github.com/mamadbah2/logistics/internal/service/export"
	"github.com/mamadbah2/logistics/internal/service/optimizer"
	"github.com/mamadbah2/logistics/internal/service/reporting"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// InventoryService describes the optimizer operations the HTTP layer uses.
type InventoryService interface {
	Report(ctx context.Context) (models.CostReport, error)
	BestProduct(ctx context.Context) (string, error)
	Params() models.CostParams
	UpdateParams(params models.CostParams) error
	Refresh()
	Editable() bool
	AddRecord(ctx context.Context, record models.InventoryRecord) error
	UpdateRecord(ctx context.Context, record models.InventoryRecord) error
	DeleteRecord(ctx context.Context, product string) error
	ReplaceRecords(ctx context.Context, records []models.InventoryRecord) error
}

// SnapshotService stores and loads persisted cost reports.
type SnapshotService interface {
	Snapshot(ctx context.Context, source string) (models.CostSnapshot, error)
	LatestSnapshot(ctx context.Context) (models.CostSnapshot, error)
}

// DashboardHandler serves the dashboard page and its JSON/download API.
type DashboardHandler struct {
	svc       InventoryService
	snapshots SnapshotService
	logger    *zap.Logger
}

// NewDashboardHandler constructs the HTTP handler adapter.
func NewDashboardHandler(svc InventoryService, snapshots SnapshotService, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, snapshots: snapshots, logger: logger}
}

// Templates parses the embedded dashboard templates.
func Templates() *template.Template {
	funcs := template.FuncMap{
		"num":      export.FormatNumber,
		"qty":      export.FormatQuantity,
		"money":    formatMoneyValue,
		"moneyp":   export.FormatMoney,
		"optional": formatOptional,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

func formatMoneyValue(v float64) string {
	return export.FormatMoney(&v)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return export.FormatNumber(*v)
}

type paramsRequest struct {
	Distance  *float64 `json:"distance" form:"distance" binding:"required"`
	RatePerKm *float64 `json:"rate_per_km" form:"rate_per_km" binding:"required"`
}

type recordForm struct {
	Product      string  `form:"product" binding:"required"`
	AnnualDemand float64 `form:"annual_demand"`
	OrderCost    float64 `form:"order_cost"`
	HoldingCost  float64 `form:"holding_cost"`
	UnitPrice    string  `form:"unit_price"`
}

type chartBar struct {
	Product string
	Total   float64
	Width   float64
}

// Index renders the HTML dashboard.
func (h *DashboardHandler) Index(c *gin.Context) {
	report, err := h.svc.Report(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to build cost report", zap.Error(err))
		c.String(http.StatusBadGateway, "inventory source unavailable")
		return
	}

	points := export.ChartSeries(report)
	var maxTotal float64
	for _, p := range points {
		if p.TotalAnnualCost > maxTotal {
			maxTotal = p.TotalAnnualCost
		}
	}
	bars := make([]chartBar, 0, len(points))
	for _, p := range points {
		width := 0.0
		if maxTotal > 0 {
			width = p.TotalAnnualCost / maxTotal * 100
		}
		bars = append(bars, chartBar{Product: p.Product, Total: p.TotalAnnualCost, Width: width})
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Report":        report,
		"Params":        report.Params,
		"TransportCost": report.TransportCost,
		"Rows":          report.Rows,
		"Columns":       export.Columns,
		"Bars":          bars,
		"Editable":      h.svc.Editable(),
	})
}

// SubmitParams handles the dashboard parameter form.
func (h *DashboardHandler) SubmitParams(c *gin.Context) {
	var req paramsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, "distance and rate_per_km are required numbers")
		return
	}
	if err := h.svc.UpdateParams(models.CostParams{Distance: *req.Distance, RatePerKm: *req.RatePerKm}); err != nil {
		h.writeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// SubmitRecord handles the dashboard add-product form.
func (h *DashboardHandler) SubmitRecord(c *gin.Context) {
	var form recordForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "invalid product form")
		return
	}

	record := models.InventoryRecord{
		Product:      strings.TrimSpace(form.Product),
		AnnualDemand: form.AnnualDemand,
		OrderCost:    form.OrderCost,
		HoldingCost:  form.HoldingCost,
	}
	if raw := strings.TrimSpace(form.UnitPrice); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.String(http.StatusBadRequest, "unit_price must be a number")
			return
		}
		record.UnitPrice = &price
	}

	if err := h.svc.AddRecord(c.Request.Context(), record); err != nil {
		h.writeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// SubmitDelete handles the dashboard remove button.
func (h *DashboardHandler) SubmitDelete(c *gin.Context) {
	if err := h.svc.DeleteRecord(c.Request.Context(), c.Param("product")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// GetInventory returns the evaluated table.
func (h *DashboardHandler) GetInventory(c *gin.Context) {
	report, err := h.svc.Report(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// CreateRecord inserts one row.
func (h *DashboardHandler) CreateRecord(c *gin.Context) {
	var record models.InventoryRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		h.logger.Warn("invalid inventory payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.AddRecord(c.Request.Context(), record); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ReplaceInventory swaps the whole table.
func (h *DashboardHandler) ReplaceInventory(c *gin.Context) {
	var records []models.InventoryRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		h.logger.Warn("invalid inventory table payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.ReplaceRecords(c.Request.Context(), records); err != nil {
		h.writeError(c, err)
		return
	}
	h.GetInventory(c)
}

// UpdateRecord edits the row named in the path.
func (h *DashboardHandler) UpdateRecord(c *gin.Context) {
	var record models.InventoryRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		h.logger.Warn("invalid inventory payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product := c.Param("product")
	if record.Product != product {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product in body does not match path"})
		return
	}

	if err := h.svc.UpdateRecord(c.Request.Context(), record); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// DeleteRecord removes the row named in the path.
func (h *DashboardHandler) DeleteRecord(c *gin.Context) {
	if err := h.svc.DeleteRecord(c.Request.Context(), c.Param("product")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetParams returns the transport parameters.
func (h *DashboardHandler) GetParams(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Params())
}

// UpdateParams replaces the transport parameters.
func (h *DashboardHandler) UpdateParams(c *gin.Context) {
	var req paramsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "distance and rate_per_km are required"})
		return
	}

	params := models.CostParams{Distance: *req.Distance, RatePerKm: *req.RatePerKm}
	if err := h.svc.UpdateParams(params); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, params)
}

// Refresh drops the cached report.
func (h *DashboardHandler) Refresh(c *gin.Context) {
	h.svc.Refresh()
	c.Status(http.StatusAccepted)
}

// GetBest returns the most cost-effective product.
func (h *DashboardHandler) GetBest(c *gin.Context) {
	best, err := h.svc.BestProduct(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": best})
}

// GetChart returns the product -> total annual cost bar series.
func (h *DashboardHandler) GetChart(c *gin.Context) {
	report, err := h.svc.Report(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": export.ChartSeries(report)})
}

// ExportCSV downloads the table as CSV.
func (h *DashboardHandler) ExportCSV(c *gin.Context) {
	h.download(c, "inventory.csv", csvContentType, export.WriteCSV)
}

// ExportXLSX downloads the table as an Excel workbook.
func (h *DashboardHandler) ExportXLSX(c *gin.Context) {
	h.download(c, "inventory.xlsx", xlsxContentType, export.WriteXLSX)
}

// CreateSnapshot stores the current report.
func (h *DashboardHandler) CreateSnapshot(c *gin.Context) {
	snapshot, err := h.snapshots.Snapshot(c.Request.Context(), "api")
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

// LatestSnapshot returns the newest stored report.
func (h *DashboardHandler) LatestSnapshot(c *gin.Context) {
	snapshot, err := h.snapshots.LatestSnapshot(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *DashboardHandler) download(c *gin.Context, filename, contentType string, write func(io.Writer, models.CostReport) error) {
	report, err := h.svc.Report(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, report); err != nil {
		h.logger.Error("export failed", zap.String("file", filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *DashboardHandler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidRecord), eoq.IsDomainError(err):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrProductNotFound), errors.Is(err, mongodb.ErrNoSnapshot):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateProduct):
		status = http.StatusConflict
	case errors.Is(err, optimizer.ErrReadOnlySource):
		status = http.StatusMethodNotAllowed
	case errors.Is(err, eoq.ErrEmptyInput):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, reporting.ErrSnapshotsDisabled):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	} else {
		h.logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
