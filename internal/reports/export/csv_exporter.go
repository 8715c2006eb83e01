package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVExporter exports data to CSV format
type CSVExporter struct {
	writer        *csv.Writer
	options       CSVOptions
	headerWritten bool
	rowCount      int
}

// CSVOptions configures CSV export behavior
type CSVOptions struct {
	Delimiter     rune `json:"delimiter"`
	UseCRLF       bool `json:"use_crlf"`
	IncludeHeader bool `json:"include_header"`
	// WriteBOM prefixes UTF-8 output so spreadsheet tools detect accents
	WriteBOM bool        `json:"write_bom"`
	Values   ValueFormat `json:"-"`
}

// DefaultCSVOptions uses semicolons, which French locale spreadsheets expect
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:     ';',
		IncludeHeader: true,
		WriteBOM:      true,
		Values: ValueFormat{
			DateFormat:      "02/01/2006",
			TimestampFormat: "02/01/2006 15:04",
		},
	}
}

// NewCSVExporter creates a new CSV exporter
func NewCSVExporter(w io.Writer, options CSVOptions) (*CSVExporter, error) {
	if options.WriteBOM {
		if _, err := w.Write([]byte("\xEF\xBB\xBF")); err != nil {
			return nil, fmt.Errorf("failed to write bom: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	writer.Comma = options.Delimiter
	writer.UseCRLF = options.UseCRLF

	return &CSVExporter{
		writer:  writer,
		options: options,
	}, nil
}

// WriteHeader writes the CSV header row
func (e *CSVExporter) WriteHeader(columns []Column) error {
	if !e.options.IncludeHeader || e.headerWritten {
		return nil
	}

	if err := e.writer.Write(Labels(columns)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	e.headerWritten = true
	return nil
}

// WriteRows writes rows in column order, writing the header first if needed
func (e *CSVExporter) WriteRows(rows []Row, columns []Column) error {
	if err := e.WriteHeader(columns); err != nil {
		return err
	}

	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			val, ok := row[col.Key]
			if !ok {
				record[i] = e.options.Values.NullValue
				continue
			}
			record[i] = FormatValue(val, e.options.Values)
		}

		if err := e.writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		e.rowCount++
	}
	return nil
}

// Flush writes any buffered data to the underlying writer
func (e *CSVExporter) Flush() error {
	e.writer.Flush()
	return e.writer.Error()
}

// RowCount returns the number of data rows written
func (e *CSVExporter) RowCount() int {
	return e.rowCount
}
