package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"carhive/internal/domain"
	"carhive/internal/models"
	"carhive/internal/service"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

var bookingHeaders = []string{
	"ID", "Car", "Customer", "Email", "Phone",
	"Pickup", "Return", "Days", "Price", "Status", "Created At",
}

// ExcelExporter writes the booking collection into an .xlsx report for the
// back office: one sheet with all bookings, one with the stats summary.
type ExcelExporter struct {
	bookings domain.BookingService
	dir      string
	logger   *zerolog.Logger
}

func NewExcelExporter(bookings domain.BookingService, dir string, logger *zerolog.Logger) *ExcelExporter {
	return &ExcelExporter{
		bookings: bookings,
		dir:      dir,
		logger:   logger,
	}
}

// Export writes the report and returns the file path.
func (e *ExcelExporter) Export(ctx context.Context) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	bookings, err := e.bookings.AllBookings(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeBookingsSheet(f, bookings); err != nil {
		return "", err
	}
	if err := writeStatsSheet(f, service.ComputeStats(bookings)); err != nil {
		return "", err
	}

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02_150405"))
	filePath := filepath.Join(e.dir, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("Excel report created")
	return filePath, nil
}

func writeBookingsSheet(f *excelize.File, bookings []models.Booking) error {
	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for col, header := range bookingHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, b := range bookings {
		row := i + 2
		values := []interface{}{
			b.ID,
			fmt.Sprintf("%s %s %d", b.CarMake, b.CarModel, b.CarYear),
			b.CustomerName,
			b.CustomerEmail,
			b.CustomerPhone,
			b.PickupDate,
			b.ReturnDate,
			b.TotalDays,
			b.TotalPrice,
			b.Status,
			b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 36)
	_ = f.SetColWidth(sheetName, "B", "K", 18)
	return nil
}

func writeStatsSheet(f *excelize.File, stats models.Stats) error {
	sheetName := "Summary"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("error creating sheet: %v", err)
	}

	rows := [][]interface{}{
		{"Total bookings", stats.TotalBookings},
		{"Pending bookings", stats.PendingBookings},
		{"Active bookings", stats.ActiveBookings},
		{"Total revenue", stats.TotalRevenue},
	}

	for i, pair := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(sheetName, labelCell, pair[0])
		_ = f.SetCellValue(sheetName, valueCell, pair[1])
	}

	_ = f.SetColWidth(sheetName, "A", "A", 22)
	return nil
}
