package interfaces

import (
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	application "energiebuch/internal/ingest/application"
)

// RowsFromXLSX reads the first sheet of an uploaded workbook into
// header-keyed rows. The first sheet row carries the headers; blank
// header cells are skipped. Blank data rows are kept in place so that
// reported row numbers keep matching the spreadsheet.
func RowsFromXLSX(reader io.Reader) ([]application.RowInput, error) {
	workbook, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, errors.New("invalid xlsx file")
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx file has no sheets")
	}
	sheetRows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, errors.New("invalid xlsx file")
	}
	if len(sheetRows) == 0 {
		return nil, errors.New("xlsx sheet is empty")
	}

	headers := make([]string, len(sheetRows[0]))
	for i, header := range sheetRows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	rows := make([]application.RowInput, 0, len(sheetRows)-1)
	for _, cells := range sheetRows[1:] {
		row := make(application.RowInput)
		for i, cell := range cells {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			row[headers[i]] = cell
		}
		rows = append(rows, row)
	}
	return rows, nil
}
