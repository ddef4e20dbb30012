// Package parser turns source documents into flat content-block lists. Two
// backends are available: the MinerU command line tool for OCR/layout-heavy
// input, and a set of native Go readers for plain formats.
package parser

import (
	"DocuGraph/internal/config"
	"DocuGraph/internal/models"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedFormat is returned for input no backend can handle.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Parser converts one file into its content-block list.
type Parser interface {
	Parse(ctx context.Context, filePath string) ([]models.ContentBlock, error)
}

// New creates the parser for the configured backend.
func New(cfg *config.ParserConfig) (Parser, error) {
	switch cfg.Backend {
	case "mineru":
		return NewMinerU(cfg), nil
	case "native", "":
		return NewNative(cfg), nil
	default:
		return nil, fmt.Errorf("unknown parser backend: %s", cfg.Backend)
	}
}

// Native dispatches to a format-specific reader chosen by file extension,
// falling back to content sniffing for unknown extensions.
type Native struct {
	pdf   *PDFParser
	xlsx  *XlsxParser
	docx  *DocxParser
	text  *TextParser
	image *ImageParser
}

// NewNative creates the native parser family.
func NewNative(cfg *config.ParserConfig) *Native {
	return &Native{
		pdf:   &PDFParser{StartPage: cfg.StartPage, EndPage: cfg.EndPage},
		xlsx:  &XlsxParser{},
		docx:  &DocxParser{},
		text:  &TextParser{},
		image: &ImageParser{},
	}
}

// Parse reads the file with the reader matching its format.
func (n *Native) Parse(ctx context.Context, filePath string) ([]models.ContentBlock, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return n.pdf.Parse(ctx, filePath)
	case ".xlsx", ".xls":
		return n.xlsx.Parse(ctx, filePath)
	case ".docx", ".doc":
		return n.docx.Parse(ctx, filePath)
	case ".txt", ".md":
		return n.text.Parse(ctx, filePath)
	case ".html", ".htm":
		return n.text.ParseHTML(ctx, filePath)
	case ".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".tif", ".gif", ".webp":
		return n.image.Parse(ctx, filePath)
	}

	// Unknown extension; sniff the content type.
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}
	switch {
	case mtype.Is("application/pdf"):
		return n.pdf.Parse(ctx, filePath)
	case mtype.Is("text/html"):
		return n.text.ParseHTML(ctx, filePath)
	case strings.HasPrefix(mtype.String(), "text/"):
		return n.text.Parse(ctx, filePath)
	case strings.HasPrefix(mtype.String(), "image/"):
		return n.image.Parse(ctx, filePath)
	}

	return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, filePath, mtype.String())
}

// ImageParser wraps a standalone image file into a single image block so it
// flows through the modal pipeline like an embedded figure.
type ImageParser struct{}

// Parse returns one image block referencing the file itself.
func (p *ImageParser) Parse(ctx context.Context, filePath string) ([]models.ContentBlock, error) {
	return []models.ContentBlock{
		{
			Type:    models.BlockImage,
			PageIdx: 0,
			ImgPath: filePath,
		},
	}, nil
}
