package formatter

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// Next to the binary in the container image
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"

	// When running from the repo root
	pdfFontSourcePath = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct {
	fontPaths []string
}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{fontPaths: []string{pdfFontRuntimePath, pdfFontSourcePath}}
}

func (pf *PDFFormatter) resolveFontPath() string {
	for _, p := range pf.fontPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (pf *PDFFormatter) Format(t *Transcript) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Core fonts only cover cp1252, so text is translated when the TTF is missing.
	fontName := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath := pf.resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
		tr = func(s string) string { return s }
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.Cell(0, 10, tr(t.title()))
	pdf.Ln(14)

	for _, e := range t.Entries {
		pdf.SetFont(fontName, "B", 11)
		_, lineHeight := pdf.GetFontSize()
		if e.Speaker != "" {
			pdf.Cell(0, lineHeight*1.5, tr(e.Speaker+":"))
			pdf.Ln(lineHeight * 1.5)
		}
		pdf.SetFont(fontName, "", 11)
		pdf.MultiCell(0, lineHeight*1.5, tr(e.Text), "", "", false)
		pdf.Ln(2)
	}

	if t.Sources != "" {
		pdf.Ln(4)
		pdf.SetFont(fontName, "B", 13)
		pdf.Cell(0, 8, "Sources")
		pdf.Ln(10)
		pdf.SetFont(fontName, "", 9)
		_, lineHeight := pdf.GetFontSize()
		pdf.MultiCell(0, lineHeight*1.4, tr(t.Sources), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
