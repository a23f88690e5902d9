package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	application "energiebuch/internal/ingest/application"
)

// BuildResultPDF renders a minimal PDF report for an import session.
func BuildResultPDF(installationID string, result *application.Result) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Import Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Installation: %s", installationID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Success: %t", result.Success))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Imported: %d", result.Imported))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Skipped: %d", result.Skipped))
	pdf.Ln(8)

	writeMessageTable := func(title string, messages []string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, title)
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		if len(messages) == 0 {
			pdf.Cell(0, 5, "-")
			pdf.Ln(6)
			return
		}
		for _, message := range messages {
			pdf.MultiCell(0, 5, message, "", "L", false)
		}
		pdf.Ln(3)
	}
	writeMessageTable("Errors", result.Errors)
	writeMessageTable("Warnings", result.Warnings)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildResultXLSX renders a minimal XLSX report for an import session.
func BuildResultXLSX(installationID string, result *application.Result) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	messagesSheet := "messages"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(messagesSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Import Report")
	_ = f.SetCellValue(summarySheet, "A3", "Installation")
	_ = f.SetCellValue(summarySheet, "B3", installationID)
	_ = f.SetCellValue(summarySheet, "A4", "Success")
	_ = f.SetCellValue(summarySheet, "B4", result.Success)
	_ = f.SetCellValue(summarySheet, "A5", "Imported")
	_ = f.SetCellValue(summarySheet, "B5", result.Imported)
	_ = f.SetCellValue(summarySheet, "A6", "Skipped")
	_ = f.SetCellValue(summarySheet, "B6", result.Skipped)

	_ = f.SetCellValue(messagesSheet, "A1", "Kind")
	_ = f.SetCellValue(messagesSheet, "B1", "Message")
	row := 2
	for _, message := range result.Errors {
		_ = f.SetCellValue(messagesSheet, fmt.Sprintf("A%d", row), "error")
		_ = f.SetCellValue(messagesSheet, fmt.Sprintf("B%d", row), message)
		row++
	}
	for _, message := range result.Warnings {
		_ = f.SetCellValue(messagesSheet, fmt.Sprintf("A%d", row), "warning")
		_ = f.SetCellValue(messagesSheet, fmt.Sprintf("B%d", row), message)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
