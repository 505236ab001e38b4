package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// BuildPDF renders a title page followed by per-chapter heading, italic
// outline, and wrapped paragraph blocks. gofpdf's auto page-break keeps the
// layout page-aware.
func BuildPDF(title string, chapters []Chapter) ([]byte, error) {
	const margin = 25.0

	doc := gofpdf.New("P", "mm", "Letter", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin)

	pageW, _ := doc.GetPageSize()
	textW := pageW - margin*2

	// Title page
	doc.AddPage()
	doc.SetFont("Helvetica", "", 24)
	doc.SetY(80)
	doc.MultiCell(textW, 12, title, "", "C", false)

	doc.AddPage()
	for _, ch := range chapters {
		doc.SetFont("Helvetica", "B", 16)
		doc.MultiCell(textW, 8, fmt.Sprintf("%d. %s", ch.Position, ch.Title), "", "L", false)
		doc.Ln(2)

		if ch.Outline != "" {
			doc.SetFont("Helvetica", "I", 10)
			doc.SetX(margin + 5)
			doc.MultiCell(textW-10, 4.5, ch.Outline, "", "L", false)
			doc.Ln(4)
		}

		doc.SetFont("Helvetica", "", 11)
		for _, p := range ch.Paragraphs {
			doc.MultiCell(textW, 5, p.Content, "", "L", false)
			doc.Ln(4)
		}
		doc.Ln(6)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
