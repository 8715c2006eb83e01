package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExcelExporter builds a workbook with one styled table per sheet
type ExcelExporter struct {
	file    *excelize.File
	options ExcelOptions
	styles  map[string]int
	first   bool
}

// ExcelOptions configures Excel export behavior
type ExcelOptions struct {
	FreezeHeader bool   `json:"freeze_header"`
	AutoFilter   bool   `json:"auto_filter"`
	AutoWidth    bool   `json:"auto_width"`
	MoneyFormat  string `json:"money_format"`
	DateFormat   string `json:"date_format"`
	HeaderFill   string `json:"header_fill"`
	HeaderFont   string `json:"header_font"`
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		FreezeHeader: true,
		AutoFilter:   true,
		AutoWidth:    true,
		MoneyFormat:  `#,##0 "Ar"`,
		DateFormat:   "dd/mm/yyyy",
		HeaderFill:   "2E7D32",
		HeaderFont:   "FFFFFF",
	}
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(options ExcelOptions) *ExcelExporter {
	return &ExcelExporter{
		file:    excelize.NewFile(),
		options: options,
		styles:  make(map[string]int),
		first:   true,
	}
}

// AddSheet writes a header and rows on a new sheet. The first call reuses the default sheet.
func (e *ExcelExporter) AddSheet(name string, columns []Column, rows []Row) error {
	if e.first {
		if err := e.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
		e.first = false
	} else if _, err := e.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}

	if err := e.writeHeader(name, columns); err != nil {
		return err
	}

	widths := make([]float64, len(columns))
	for i, col := range columns {
		widths[i] = estimateWidth(col.Label)
	}

	for r, row := range rows {
		for c, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			val := row[col.Key]
			if err := e.setCellValue(name, cell, val); err != nil {
				return fmt.Errorf("failed to set %s: %w", cell, err)
			}
			if w := estimateWidth(FormatValue(val, ValueFormat{DateFormat: "02/01/2006"})); w > widths[c] {
				widths[c] = w
			}
		}
	}

	if e.options.AutoFilter && len(columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(columns), len(rows)+1)
		if err := e.file.AutoFilter(name, "A1:"+last, nil); err != nil {
			return fmt.Errorf("failed to set auto filter: %w", err)
		}
	}

	if e.options.AutoWidth {
		for i, w := range widths {
			col, _ := excelize.ColumnNumberToName(i + 1)
			if err := e.file.SetColWidth(name, col, col, clamp(w, 10, 50)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *ExcelExporter) writeHeader(sheet string, columns []Column) error {
	style, err := e.style("header", &excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: e.options.HeaderFont},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{e.options.HeaderFill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := e.file.SetCellValue(sheet, cell, col.Label); err != nil {
			return err
		}
		if err := e.file.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}

	if e.options.FreezeHeader {
		return e.file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	return nil
}

// setCellValue keeps numbers and dates native so the sheet stays sortable
func (e *ExcelExporter) setCellValue(sheet, cell string, val interface{}) error {
	switch v := val.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		f, _ := v.Float64()
		if err := e.file.SetCellFloat(sheet, cell, f, 2, 64); err != nil {
			return err
		}
		return e.applyStyle(sheet, cell, "money", &excelize.Style{CustomNumFmt: &e.options.MoneyFormat})
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		return e.setCellValue(sheet, cell, *v)
	case time.Time:
		if v.IsZero() {
			return nil
		}
		if err := e.file.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
		return e.applyStyle(sheet, cell, "date", &excelize.Style{CustomNumFmt: &e.options.DateFormat})
	case *time.Time:
		if v == nil {
			return nil
		}
		return e.setCellValue(sheet, cell, *v)
	case *string:
		if v == nil {
			return nil
		}
		return e.file.SetCellValue(sheet, cell, *v)
	case *float64:
		if v == nil {
			return nil
		}
		return e.file.SetCellValue(sheet, cell, *v)
	case *int:
		if v == nil {
			return nil
		}
		return e.file.SetCellValue(sheet, cell, *v)
	default:
		return e.file.SetCellValue(sheet, cell, v)
	}
}

func (e *ExcelExporter) applyStyle(sheet, cell, name string, s *excelize.Style) error {
	id, err := e.style(name, s)
	if err != nil {
		return err
	}
	return e.file.SetCellStyle(sheet, cell, cell, id)
}

// style registers each named style once per workbook
func (e *ExcelExporter) style(name string, s *excelize.Style) (int, error) {
	if id, ok := e.styles[name]; ok {
		return id, nil
	}
	id, err := e.file.NewStyle(s)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s style: %w", name, err)
	}
	e.styles[name] = id
	return id, nil
}

// Render writes the workbook to w
func (e *ExcelExporter) Render(w io.Writer) error {
	return e.file.Write(w)
}

// Close closes the Excel file
func (e *ExcelExporter) Close() error {
	return e.file.Close()
}

func estimateWidth(s string) float64 {
	return float64(len([]rune(s)))*1.2 + 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
