package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"

	"devlink.vn/backoffice/models"
)

// ExportPeriodToExcel exports a period's payment records as an .xlsx
// workbook for the accounting team.
func ExportPeriodToExcel(w http.ResponseWriter, r *http.Request) {
	periodID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid period id", http.StatusBadRequest)
		return
	}

	period, err := NewPeriodService().GetPeriod(periodID)
	if err != nil {
		http.Error(w, "period not found", http.StatusNotFound)
		return
	}

	excelFile, err := createPeriodWorkbook(period)
	if err != nil {
		http.Error(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}

	buffer, err := excelFile.WriteToBuffer()
	if err != nil {
		http.Error(w, "Failed to write Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("period_%d-%02d_%s.xlsx", period.PeriodYear, period.PeriodMonth,
		time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))

	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

var periodSheetHeaders = []string{
	"Contract", "Status", "Progress %", "Billable Hours",
	"Calculated (VND)", "Invoiced (VND)", "Received (VND)",
	"Invoice No", "Invoice Date", "Payment Date", "Notes",
}

func createPeriodWorkbook(period *models.Period) (*excelize.File, error) {
	f := excelize.NewFile()
	sheetName := "Payments"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	companyName := ""
	if period.Company != nil {
		companyName = period.Company.Name
	}

	// Title row
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
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s - %d-%02d", companyName, period.PeriodYear, period.PeriodMonth))
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)

	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Status: %s  |  Generated: %s",
		period.Status, time.Now().Format("2006-01-02 15:04:05")))

	// Header row
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
	})
	for colIdx, header := range periodSheetHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 4)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	// Data rows
	for rowIdx := range period.Records {
		rec := &period.Records[rowIdx]
		row := rowIdx + 5

		contractCode := rec.ContractID.String()
		if rec.Contract != nil {
			contractCode = rec.Contract.ContractCode
		}

		values := []interface{}{
			contractCode,
			string(rec.Status),
			rec.Progress(),
			floatOrEmpty(rec.BillableHours),
			amountOrEmpty(rec.CalculatedAmount),
			amountOrEmpty(rec.InvoicedAmount),
			amountOrEmpty(rec.ReceivedAmount),
			deref(rec.InvoiceNumber),
			dateOrEmpty(rec.InvoiceDate),
			dateOrEmpty(rec.PaymentDate),
			rec.Notes,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	return f, nil
}

func amountOrEmpty(v *int64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func floatOrEmpty(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
