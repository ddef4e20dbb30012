package parser

import (
	"DocuGraph/internal/models"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// TextParser reads plain text and Markdown files. Markdown headings become
// leveled text blocks and image references become image blocks, so figures in
// Markdown documents flow through the modal pipeline.
type TextParser struct{}

// headingRegex matches Markdown ATX headings.
var headingRegex = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)

// imageRegex matches Markdown image syntax (e.g., ![alt text](path/to/image.jpg)).
var imageRegex = regexp.MustCompile(`^!\[(.*?)\]\((.*?)\)$`)

// Parse reads a text or Markdown file into content blocks.
func (p *TextParser) Parse(ctx context.Context, filePath string) ([]models.ContentBlock, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return markdownToBlocks(string(content), filepath.Dir(filePath)), nil
}

// ParseHTML converts an HTML file to Markdown first, then parses it like any
// Markdown file.
func (p *TextParser) ParseHTML(ctx context.Context, filePath string) ([]models.ContentBlock, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	markdown, err := htmltomarkdown.ConvertString(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to convert html: %w", err)
	}
	return markdownToBlocks(markdown, filepath.Dir(filePath)), nil
}

// markdownToBlocks splits Markdown text into heading, paragraph and image
// blocks. Relative image paths are resolved against baseDir; remote URLs are
// kept as-is and will fail later if a vision call needs the bytes.
func markdownToBlocks(text, baseDir string) []models.ContentBlock {
	var blocks []models.ContentBlock
	var paragraph []string

	flush := func() {
		if len(paragraph) == 0 {
			return
		}
		blocks = append(blocks, models.ContentBlock{
			Type:    models.BlockText,
			PageIdx: 0,
			Text:    strings.Join(paragraph, "\n"),
		})
		paragraph = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if m := headingRegex.FindStringSubmatch(trimmed); m != nil {
			flush()
			blocks = append(blocks, models.ContentBlock{
				Type:      models.BlockText,
				PageIdx:   0,
				Text:      strings.TrimSpace(m[2]),
				TextLevel: len(m[1]),
			})
			continue
		}
		if m := imageRegex.FindStringSubmatch(trimmed); m != nil {
			flush()
			imgPath := m[2]
			if !filepath.IsAbs(imgPath) && !strings.Contains(imgPath, "://") {
				imgPath = filepath.Join(baseDir, imgPath)
			}
			block := models.ContentBlock{
				Type:    models.BlockImage,
				PageIdx: 0,
				ImgPath: imgPath,
			}
			if alt := strings.TrimSpace(m[1]); alt != "" {
				block.ImgCaption = []string{alt}
			}
			blocks = append(blocks, block)
			continue
		}
		paragraph = append(paragraph, trimmed)
	}
	flush()
	return blocks
}
