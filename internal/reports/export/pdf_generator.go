package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFGenerator lays out titled sections and tables on A4 pages
type PDFGenerator struct {
	pdf     *gofpdf.Fpdf
	options PDFOptions
	// tr converts UTF-8 to the cp1252 encoding of the core fonts
	tr func(string) string
}

// PDFOptions configures PDF generation
type PDFOptions struct {
	Orientation    string      `json:"orientation"` // portrait, landscape
	Title          string      `json:"title"`
	Subtitle       string      `json:"subtitle,omitempty"`
	FontFamily     string      `json:"font_family"`
	FontSize       float64     `json:"font_size"`
	TitleFontSize  float64     `json:"title_font_size"`
	HeaderColor    PDFColor    `json:"header_color"`
	AlternateColor PDFColor    `json:"alternate_color"`
	Margin         float64     `json:"margin"`
	Values         ValueFormat `json:"-"`
}

// PDFColor represents an RGB color
type PDFColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// DefaultPDFOptions returns default PDF options
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		Orientation:    "portrait",
		Title:          "Rapport",
		FontFamily:     "Arial",
		FontSize:       10,
		TitleFontSize:  16,
		HeaderColor:    PDFColor{R: 46, G: 125, B: 50},
		AlternateColor: PDFColor{R: 242, G: 247, B: 242},
		Margin:         15,
		Values: ValueFormat{
			DateFormat:      "02/01/2006",
			TimestampFormat: "02/01/2006 15:04",
		},
	}
}

// NewPDFGenerator creates a generator and starts the first page with title and date
func NewPDFGenerator(options PDFOptions, generatedAt time.Time) *PDFGenerator {
	orientation := "P"
	if options.Orientation == "landscape" {
		orientation = "L"
	}

	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(options.Margin, options.Margin, options.Margin)
	pdf.SetAutoPageBreak(true, options.Margin)

	g := &PDFGenerator{
		pdf:     pdf,
		options: options,
		tr:      pdf.UnicodeTranslatorFromDescriptor(""),
	}
	g.setFooter()

	pdf.AddPage()
	pdf.SetFont(options.FontFamily, "B", options.TitleFontSize)
	pdf.CellFormat(0, 10, g.tr(options.Title), "", 1, "C", false, 0, "")
	if options.Subtitle != "" {
		pdf.SetFont(options.FontFamily, "", options.FontSize+2)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 8, g.tr(options.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.SetFont(options.FontFamily, "", options.FontSize-1)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, g.tr("Généré le "+generatedAt.Format(options.Values.TimestampFormat)), "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)
	return g
}

// KeyValue is one line of a summary section
type KeyValue struct {
	Key   string
	Value string
}

// AddSummarySection prints label/value pairs in order
func (g *PDFGenerator) AddSummarySection(title string, items []KeyValue) {
	g.sectionTitle(title)
	for _, item := range items {
		g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize)
		g.pdf.CellFormat(70, 6, g.tr(item.Key), "", 0, "L", false, 0, "")
		g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
		g.pdf.CellFormat(0, 6, g.tr(item.Value), "", 1, "L", false, 0, "")
	}
	g.pdf.Ln(4)
}

// AddTable prints a bordered table, repeating the header after page breaks
func (g *PDFGenerator) AddTable(title string, columns []Column, rows []Row) {
	g.sectionTitle(title)
	if len(columns) == 0 {
		return
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(columns))
		for j, col := range columns {
			cells[i][j] = g.tr(FormatValue(row[col.Key], g.options.Values))
		}
	}
	widths := g.columnWidths(columns, cells)

	g.tableHeader(columns, widths)
	_, pageHeight := g.pdf.GetPageSize()
	for i, record := range cells {
		if g.pdf.GetY()+7 > pageHeight-g.options.Margin {
			g.pdf.AddPage()
			g.tableHeader(columns, widths)
		}
		fill := i%2 == 1
		g.pdf.SetFillColor(g.options.AlternateColor.R, g.options.AlternateColor.G, g.options.AlternateColor.B)
		for j, val := range record {
			g.pdf.CellFormat(widths[j], 7, truncate(g.pdf, val, widths[j]), "1", 0, "L", fill, 0, "")
		}
		g.pdf.Ln(-1)
	}
	g.pdf.Ln(4)
}

func (g *PDFGenerator) sectionTitle(title string) {
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize+2)
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.CellFormat(0, 8, g.tr(title), "", 1, "L", false, 0, "")
	g.pdf.Ln(1)
}

func (g *PDFGenerator) tableHeader(columns []Column, widths []float64) {
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize)
	g.pdf.SetFillColor(g.options.HeaderColor.R, g.options.HeaderColor.G, g.options.HeaderColor.B)
	g.pdf.SetTextColor(255, 255, 255)
	for i, col := range columns {
		g.pdf.CellFormat(widths[i], 8, g.tr(col.Label), "1", 0, "C", true, 0, "")
	}
	g.pdf.Ln(-1)
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	g.pdf.SetTextColor(0, 0, 0)
}

// columnWidths sizes columns to their widest cell and scales them down to the page
func (g *PDFGenerator) columnWidths(columns []Column, cells [][]string) []float64 {
	pageWidth, _ := g.pdf.GetPageSize()
	available := pageWidth - 2*g.options.Margin

	widths := make([]float64, len(columns))
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize)
	for i, col := range columns {
		widths[i] = g.pdf.GetStringWidth(g.tr(col.Label)) + 4
	}
	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	for _, record := range cells {
		for i, val := range record {
			if w := g.pdf.GetStringWidth(val) + 4; w > widths[i] {
				widths[i] = w
			}
		}
	}

	total := 0.0
	for _, w := range widths {
		total += w
	}
	if total > available {
		scale := available / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	return widths
}

func (g *PDFGenerator) setFooter() {
	g.pdf.SetFooterFunc(func() {
		g.pdf.SetY(-12)
		g.pdf.SetFont(g.options.FontFamily, "", 8)
		g.pdf.SetTextColor(128, 128, 128)
		g.pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", g.pdf.PageNo()), "", 0, "C", false, 0, "")
	})
}

// Render writes the PDF to w
func (g *PDFGenerator) Render(w io.Writer) error {
	return g.pdf.Output(w)
}

// Bytes renders the document
func (g *PDFGenerator) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := g.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// truncate shortens an already translated single-byte string to fit width
func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s)+2 <= width {
		return s
	}
	b := []byte(s)
	for len(b) > 0 && pdf.GetStringWidth(string(b)+"...")+2 > width {
		b = b[:len(b)-1]
	}
	return string(b) + "..."
}
