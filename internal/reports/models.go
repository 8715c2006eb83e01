package reports

import (
	"errors"
	"time"
)

// ExportFormat is the file format of a generated report
type ExportFormat string

const (
	FormatCSV   ExportFormat = "csv"
	FormatExcel ExportFormat = "xlsx"
	FormatPDF   ExportFormat = "pdf"
)

// ContentType returns the MIME type of the format
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrArchiveDisabled = errors.New("report archiving is not configured")
)

// File is a generated report ready to stream or archive
type File struct {
	Name        string       `json:"name"`
	Format      ExportFormat `json:"format"`
	Data        []byte       `json:"-"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// ContentType returns the MIME type of the file
func (f *File) ContentType() string {
	return f.Format.ContentType()
}

// ArchivedFile is a report stored in object storage
type ArchivedFile struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
