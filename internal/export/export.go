// Package export encodes a user's ledger as CSV or XLSX files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"finbot/internal/models"
)

const (
	// CSVFileName and XLSXFileName are the names files are sent under.
	CSVFileName  = "transactions.csv"
	XLSXFileName = "transactions.xlsx"

	// SheetName is the single worksheet of the XLSX export.
	SheetName = "Transactions"

	timestampLayout = "2006-01-02 15:04:05"
)

// Header is the column row shared by both formats.
var Header = []string{"ID", "Сумма", "Тип", "Категория", "Дата/Время"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func row(e models.LedgerEntry) []string {
	return []string{
		e.ID,
		e.Amount.StringFixed(2),
		string(e.Kind),
		e.CategoryName,
		e.Timestamp.UTC().Format(timestampLayout),
	}
}

// WriteCSV writes entries as ';'-separated UTF-8 with a byte order mark so
// that spreadsheet tools detect the encoding. Entries are written in the
// order given.
func WriteCSV(w io.Writer, entries []models.LedgerEntry) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	writer.Comma = ';'

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, e := range entries {
		if err := writer.Write(row(e)); err != nil {
			return fmt.Errorf("writing csv row %s: %w", e.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// BuildCSV is WriteCSV into a byte slice.
func BuildCSV(entries []models.LedgerEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildXLSX returns a workbook with a single "Transactions" sheet holding the
// same columns and formatting as the CSV export.
func BuildXLSX(entries []models.LedgerEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return nil, fmt.Errorf("writing xlsx header: %w", err)
	}
	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := row(e)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("writing xlsx row %s: %w", e.ID, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 38)
	_ = f.SetColWidth(SheetName, "B", "C", 12)
	_ = f.SetColWidth(SheetName, "D", "D", 20)
	_ = f.SetColWidth(SheetName, "E", "E", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encoding xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
