package export

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/logistics/internal/domain/eoq"
	"github.com/mamadbah2/logistics/internal/domain/models"
)

func sampleReport(t *testing.T) models.CostReport {
	t.Helper()
	price := 20.0
	records := []models.InventoryRecord{
		{Product: "A", AnnualDemand: 1200, OrderCost: 100, HoldingCost: 5, UnitPrice: &price},
		{Product: "X", AnnualDemand: 50, OrderCost: 10, HoldingCost: 0},
	}

	report := models.CostReport{Params: models.CostParams{Distance: 120, RatePerKm: 3.5}, TransportCost: 420}
	for _, rec := range records {
		row, _ := eoq.Evaluate(rec, report.TransportCost)
		report.Rows = append(report.Rows, row)
	}
	report.BestProduct = "A"
	return report
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleReport(t)); err != nil {
		t.Fatal(err)
	}

	lines, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(lines))
	}
	if strings.Join(lines[0], ",") != strings.Join(Columns, ",") {
		t.Errorf("header = %v", lines[0])
	}

	want := []string{"A", "1200", "100", "5", "20", "219", "420.00", "1515.45"}
	for i := range want {
		if lines[1][i] != want[i] {
			t.Errorf("row A col %s = %q, want %q", Columns[i], lines[1][i], want[i])
		}
	}

	invalid := lines[2]
	if invalid[4] != "" {
		t.Errorf("missing unit price should be empty, got %q", invalid[4])
	}
	if invalid[5] != "N/A" || invalid[7] != "N/A" {
		t.Errorf("invalid row must render N/A, got %v", invalid)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleReport(t)); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	checks := map[string]string{
		"A1": "Product",
		"H1": "Total_Annual_Cost",
		"A2": "A",
		"F2": "219",
		"H2": "1515.45",
		"A3": "X",
		"F3": "N/A",
		"H3": "N/A",
		"A5": "Best_Product",
		"B5": "A",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue(sheetName, cell)
		if err != nil {
			t.Fatalf("read %s: %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestWriteXLSX_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, models.CostReport{}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected a workbook even without rows")
	}
}

func TestChartSeries_SkipsInvalid(t *testing.T) {
	points := ChartSeries(sampleReport(t))
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if points[0].Product != "A" || points[0].TotalAnnualCost != 1515.45 {
		t.Errorf("unexpected point %+v", points[0])
	}
}

func TestFormatters(t *testing.T) {
	v := 219.0890230020664
	if got := FormatQuantity(&v); got != "219" {
		t.Errorf("FormatQuantity = %s", got)
	}
	if got := FormatMoney(&v); got != "219.09" {
		t.Errorf("FormatMoney = %s", got)
	}
	if got := FormatMoney(nil); got != "N/A" {
		t.Errorf("FormatMoney(nil) = %s", got)
	}
	if got := FormatNumber(3.5); got != "3.5" {
		t.Errorf("FormatNumber = %s", got)
	}
}

func TestFormatters_NonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		v := v
		if got := FormatQuantity(&v); got != "N/A" {
			t.Errorf("FormatQuantity(%v) = %s", v, got)
		}
		if got := FormatMoney(&v); got != "N/A" {
			t.Errorf("FormatMoney(%v) = %s", v, got)
		}
		if got := FormatNumber(v); got != "N/A" {
			t.Errorf("FormatNumber(%v) = %s", v, got)
		}
	}
}

func TestExports_NonFiniteRow(t *testing.T) {
	inf := math.Inf(1)
	report := sampleReport(t)
	report.Rows = append(report.Rows, models.CostedRecord{
		InventoryRecord: models.InventoryRecord{Product: "Bad", AnnualDemand: math.NaN(), OrderCost: 1, HoldingCost: 1},
		EOQ:             &inf,
		TransportCost:   420,
		TotalAnnualCost: &inf,
	})

	var csvBuf bytes.Buffer
	if err := WriteCSV(&csvBuf, report); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(csvBuf.String(), "Bad,N/A,1,1,,N/A,420.00,N/A") {
		t.Errorf("unexpected csv:\n%s", csvBuf.String())
	}

	var xlsxBuf bytes.Buffer
	if err := WriteXLSX(&xlsxBuf, report); err != nil {
		t.Fatal(err)
	}

	if points := ChartSeries(report); len(points) != 1 {
		t.Errorf("expected non-finite total to be left out of the chart, got %+v", points)
	}
}
