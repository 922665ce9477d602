package export

import (
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin     = 10.0 // mm
	pdfWrapWidth  = 180.0
	pdfLineHeight = 10.0
	pdfBlockGap   = 4.0
	pdfIndentStep = 6.0
	pdfFont       = "Helvetica"
)

// WritePDF renders blocks onto A4 pages and writes the document to w.
func WritePDF(w io.Writer, blocks []Block) error {
	pdf := layoutPDF(blocks)
	return pdf.Output(w)
}

func layoutPDF(blocks []Block) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()

	// Core fonts are cp1252; characters outside it print as '.'.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()
	y := pdfMargin

	for _, b := range blocks {
		st := StyleFor(b.Kind)
		fontStyle := ""
		if st.Bold {
			fontStyle = "B"
		}
		pdf.SetFont(pdfFont, fontStyle, st.PDFSize)

		x := pdfMargin + float64(b.Indent)*pdfIndentStep
		lines := wrapText(pdf, tr(b.Text), pdfWrapWidth-(x-pdfMargin))
		blockHeight := float64(len(lines)) * pdfLineHeight

		if y+blockHeight > pageHeight-pdfMargin && y > pdfMargin {
			pdf.AddPage()
			y = pdfMargin
		}
		for i, line := range lines {
			pdf.Text(x, y+float64(i)*pdfLineHeight, line)
		}
		y += blockHeight + pdfBlockGap
	}
	return pdf
}

// wrapText breaks s, already translated to the font's single-byte encoding, into lines
// no wider than width. Words longer than a line are split between bytes. fpdf's own
// SplitText indexes widths by rune and cannot take translated text.
func wrapText(pdf *fpdf.Fpdf, s string, width float64) []string {
	var lines []string
	line := ""
	for _, word := range strings.Split(s, " ") {
		if word == "" {
			continue
		}
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if pdf.GetStringWidth(candidate) <= width {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		line = word
		for len(line) > 1 && pdf.GetStringWidth(line) > width {
			n := 1
			for n < len(line) && pdf.GetStringWidth(line[:n+1]) <= width {
				n++
			}
			lines = append(lines, line[:n])
			line = line[n:]
		}
	}
	if line != "" || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines
}
