package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"agendalink/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Agendamentos"

var columns = []string{"Código", "Serviço", "Cliente", "Telefone", "Email", "Início", "Fim", "Status", "Sinal", "Total"}

// WriteBookingsXLSX renders the bookings of a period as an Excel sheet.
func WriteBookingsXLSX(w io.Writer, bookings []models.Booking, from, to time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Período: %s - %s",
		from.Format("02/01/2006"), to.Format("02/01/2006")))

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, col)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	first, _ := excelize.CoordinatesToCellName(1, 2)
	last, _ := excelize.CoordinatesToCellName(len(columns), 2)
	_ = f.SetCellStyle(sheetName, first, last, headerStyle)

	for i, b := range bookings {
		row := i + 3
		values := []interface{}{
			b.Code,
			b.Service.Name,
			b.Customer.Name,
			b.Customer.Phone,
			b.Customer.Email,
			b.StartAt.Format("02/01/2006 15:04"),
			b.EndAt.Format("15:04"),
			b.Status,
			models.FormatMoney(b.SignalAmountCents),
			models.FormatMoney(b.TotalPriceCents),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 14)
	_ = f.SetColWidth(sheetName, "B", "E", 24)
	_ = f.SetColWidth(sheetName, "F", "J", 18)

	lastHeader, _ := excelize.CoordinatesToCellName(len(columns), 1)
	_ = f.MergeCell(sheetName, "A1", lastHeader)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.DeleteSheet("Sheet1")

	return f.Write(w)
}

// SaveBookingsXLSX writes the export into dir and returns the file path.
func SaveBookingsXLSX(dir string, bookings []models.Booking, from, to time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	fileName := fmt.Sprintf("agendamentos_%s_a_%s.xlsx",
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	filePath := filepath.Join(dir, fileName)

	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("error creating file: %v", err)
	}
	defer f.Close()

	if err := WriteBookingsXLSX(f, bookings, from, to); err != nil {
		return "", err
	}
	return filePath, nil
}
