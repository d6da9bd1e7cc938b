package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/edsfield/edsbackend/config"
	"github.com/edsfield/edsbackend/models"
)

var workOrderColumns = []string{"Order ID", "Station", "Date", "Status", "Tests", "Observations", "Created"}

func workOrderRow(o models.WorkOrder) []interface{} {
	return []interface{}{
		o.ID.String(),
		o.StationName,
		o.Date,
		string(o.Status),
		strings.Join(o.TestTags, ", "),
		o.Observations,
		o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ExportWorkOrdersToExcel downloads the work-order log as a styled workbook.
// GET /api/v1/workorders/export/excel
func ExportWorkOrdersToExcel(w http.ResponseWriter, r *http.Request) {
	orders := config.Store.WorkOrders()

	excelFile, err := createWorkOrderExcel(orders)
	if err != nil {
		http.Error(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}

	buffer, err := excelFile.WriteToBuffer()
	if err != nil {
		http.Error(w, "Failed to write Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("work_orders_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))

	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

// ExportWorkOrdersToCSV downloads the work-order log as CSV.
// GET /api/v1/workorders/export/csv
func ExportWorkOrdersToCSV(w http.ResponseWriter, r *http.Request) {
	orders := config.Store.WorkOrders()

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Write(workOrderColumns)
	for _, o := range orders {
		record := make([]string, 0, len(workOrderColumns))
		for _, v := range workOrderRow(o) {
			record = append(record, fmt.Sprintf("%v", v))
		}
		writer.Write(record)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		http.Error(w, "Failed to generate CSV file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("work_orders_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))

	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// createWorkOrderExcel builds the workbook: title row, timestamp, styled
// header row at row 4, one data row per order below it.
func createWorkOrderExcel(orders []models.WorkOrder) (*excelize.File, error) {
	f := excelize.NewFile()
	sheetName := "Work Orders"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	f.SetCellValue(sheetName, "A1", "Work Orders")
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)

	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for colIdx, header := range workOrderColumns {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 4)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
		f.SetColWidth(sheetName, columnIndexToLetter(colIdx+1), columnIndexToLetter(colIdx+1), 20)
	}

	dataStyle, _ := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "CCCCCC", Style: 1},
			{Type: "right", Color: "CCCCCC", Style: 1},
			{Type: "top", Color: "CCCCCC", Style: 1},
			{Type: "bottom", Color: "CCCCCC", Style: 1},
		},
	})

	for rowIdx, order := range orders {
		for colIdx, value := range workOrderRow(order) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+5)
			f.SetCellValue(sheetName, cell, value)
			f.SetCellStyle(sheetName, cell, cell, dataStyle)
		}
	}

	f.DeleteSheet("Sheet1")

	return f, nil
}

func columnIndexToLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+(col%26))) + result
		col /= 26
	}
	return result
}
