package parser

import (
	"DocuGraph/internal/models"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFParser extracts per-page plain text from PDF files. Scanned or
// image-only PDFs come back empty here; route those through the mineru
// backend instead.
type PDFParser struct {
	StartPage int
	EndPage   int
}

// Parse returns one text block per non-empty page.
func (p *PDFParser) Parse(ctx context.Context, filePath string) ([]models.ContentBlock, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	first := 1
	if p.StartPage > 0 {
		first = p.StartPage
	}
	last := reader.NumPage()
	if p.EndPage > 0 && p.EndPage < last {
		last = p.EndPage
	}

	var blocks []models.ContentBlock
	for pageNum := first; pageNum <= last; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		blocks = append(blocks, models.ContentBlock{
			Type:    models.BlockText,
			PageIdx: pageNum - 1,
			Text:    text,
		})
	}
	return blocks, nil
}
