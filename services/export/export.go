// Package export renders the rows of a list page as a PDF or XLSX document.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	PDF  Format = "pdf"
	XLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case PDF, XLSX:
		return f, nil
	case "":
		return PDF, nil
	}
	return "", errors.Wrap(ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// Filename returns a download name for a document titled title.
func (f Format) Filename(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		}
		return '-'
	}, title)
	return fmt.Sprintf("%s.%s", strings.Trim(name, "-"), f)
}

// Document is a titled table.
type Document struct {
	Title       string
	Subtitle    string
	Headers     []string
	Rows        [][]string
	GeneratedAt time.Time
}

// Service produces documents. The zero value is ready to use.
type Service struct{}

func NewService() *Service { return &Service{} }

// Export writes doc to w in format f.
func (s *Service) Export(w io.Writer, f Format, doc Document) error {
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}
	switch f {
	case PDF:
		return writePDF(w, doc)
	case XLSX:
		return writeXLSX(w, doc)
	}
	return errors.Wrap(ErrUnknownFormat, string(f))
}

func writePDF(w io.Writer, doc Document) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	// title
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 8, tr(doc.Title))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(100, 100, 100)
	sub := "Generated on " + doc.GeneratedAt.Format("January 02, 2006 at 3:04 PM")
	if doc.Subtitle != "" {
		sub = doc.Subtitle + " | " + sub
	}
	pdf.Cell(0, 5, tr(sub))
	pdf.Ln(8)
	pdf.SetTextColor(0, 0, 0)

	if len(doc.Headers) == 0 {
		return pdf.Output(w)
	}

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(doc.Headers))

	// header row
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(40, 145, 108)
	pdf.SetTextColor(255, 255, 255)
	for _, h := range doc.Headers {
		pdf.CellFormat(colW, 8, fit(pdf, tr(h), colW), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Arial", "", 9)
	pdf.SetFillColor(245, 245, 245)
	if len(doc.Rows) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 10, "No records.")
	}
	for i, row := range doc.Rows {
		fill := i%2 == 0
		for j := range doc.Headers {
			var cell string
			if j < len(row) {
				cell = row[j]
			}
			pdf.CellFormat(colW, 7, fit(pdf, tr(cell), colW), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}

// fit shortens s until it fits in a cell of width w.
func fit(pdf *gofpdf.Fpdf, s string, w float64) string {
	const pad = 2
	if pdf.GetStringWidth(s)+pad <= w {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...")+pad > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}

func writeXLSX(w io.Writer, doc Document) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cErr := f.Close(); err == nil {
			err = cErr
		}
	}()

	sheet := sheetName(doc.Title)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	if len(doc.Headers) > 0 {
		if err := f.SetSheetRow(sheet, "A1", &doc.Headers); err != nil {
			return errors.Wrap(err, "writing headers")
		}
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return errors.Wrap(err, "creating header style")
		}
		last, _ := excelize.CoordinatesToCellName(len(doc.Headers), 1)
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return errors.Wrap(err, "styling headers")
		}
		lastCol, _ := excelize.ColumnNumberToName(len(doc.Headers))
		_ = f.SetColWidth(sheet, "A", lastCol, 24)
	}

	for i := range doc.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &doc.Rows[i]); err != nil {
			return errors.Wrapf(err, "writing row %d", i+1)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

// sheetName makes title a valid worksheet name.
func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return ' '
		}
		return r
	}, strings.TrimSpace(title))
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	if name == "" {
		name = "Sheet1"
	}
	return name
}
