// Package export renders cost reports as delimited text, spreadsheets and
// chart series.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/logistics/internal/domain/models"
)

const (
	sheetName    = "Inventory"
	notAvailable = "N/A"
)

// Columns is the header shared by every tabular export.
var Columns = []string{
	"Product",
	"Annual_Demand",
	"Order_Cost",
	"Holding_Cost",
	"Unit_Price",
	"EOQ",
	"Transport_Cost",
	"Total_Annual_Cost",
}

// FormatQuantity renders an order quantity without decimals.
func FormatQuantity(v *float64) string {
	if v == nil || !finite(*v) {
		return notAvailable
	}
	return decimal.NewFromFloat(*v).Round(0).StringFixed(0)
}

// FormatMoney renders a currency amount with two decimals.
func FormatMoney(v *float64) string {
	if v == nil || !finite(*v) {
		return notAvailable
	}
	return decimal.NewFromFloat(*v).Round(2).StringFixed(2)
}

// FormatNumber renders an input value without trailing zeros.
func FormatNumber(v float64) string {
	if !finite(v) {
		return notAvailable
	}
	return decimal.NewFromFloat(v).String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatNumber(*v)
}

// WriteCSV writes the report as comma separated values.
func WriteCSV(w io.Writer, report models.CostReport) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range report.Rows {
		transport := row.TransportCost
		record := []string{
			row.Product,
			FormatNumber(row.AnnualDemand),
			FormatNumber(row.OrderCost),
			FormatNumber(row.HoldingCost),
			formatOptional(row.UnitPrice),
			FormatQuantity(row.EOQ),
			FormatMoney(&transport),
			FormatMoney(row.TotalAnnualCost),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.Product, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the report as a workbook with a cost bar chart and the
// best product summary below the table.
func WriteXLSX(w io.Writer, report models.CostReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header %s: %w", h, err)
		}
	}

	for i, row := range report.Rows {
		transport := row.TransportCost
		values := []interface{}{
			row.Product,
			numberCell(row.AnnualDemand),
			numberCell(row.OrderCost),
			numberCell(row.HoldingCost),
			optionalCell(row.UnitPrice),
			roundedCell(row.EOQ, 0),
			roundedCell(&transport, 2),
			roundedCell(row.TotalAnnualCost, 2),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %s: %w", row.Product, err)
		}
	}

	summaryRow := len(report.Rows) + 3
	best := report.BestProduct
	if best == "" {
		best = notAvailable
	}
	if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", summaryRow), &[]interface{}{"Best_Product", best}); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if len(report.Rows) > 0 {
		if err := addCostChart(f, len(report.Rows)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func addCostChart(f *excelize.File, rows int) error {
	last := rows + 1
	series := []excelize.ChartSeries{{
		Name:       fmt.Sprintf("%s!$H$1", sheetName),
		Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetName, last),
		Values:     fmt.Sprintf("%s!$H$2:$H$%d", sheetName, last),
	}}
	chart := &excelize.Chart{
		Type:   excelize.Col,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "Total annual cost by product"}},
		Legend: excelize.ChartLegend{Position: "none"},
	}
	if err := f.AddChart(sheetName, "J2", chart); err != nil {
		return fmt.Errorf("add cost chart: %w", err)
	}
	return nil
}

func optionalCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return numberCell(*v)
}

func numberCell(v float64) interface{} {
	if !finite(v) {
		return notAvailable
	}
	return v
}

func roundedCell(v *float64, places int32) interface{} {
	if v == nil || !finite(*v) {
		return notAvailable
	}
	return roundFloat(*v, places)
}

// roundFloat expects a finite value.
func roundFloat(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// ChartSeries returns the product -> total annual cost bars. Rows without a
// computed total are left out.
func ChartSeries(report models.CostReport) []models.ChartPoint {
	points := make([]models.ChartPoint, 0, len(report.Rows))
	for _, row := range report.Rows {
		if row.TotalAnnualCost == nil || !finite(*row.TotalAnnualCost) {
			continue
		}
		points = append(points, models.ChartPoint{
			Product:         row.Product,
			TotalAnnualCost: roundFloat(*row.TotalAnnualCost, 2),
		})
	}
	return points
}
