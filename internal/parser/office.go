package parser

import (
	"DocuGraph/internal/models"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/unidoc/unioffice/v2/document"
	"github.com/xuri/excelize/v2"
)

// XlsxParser reads Excel workbooks. Each sheet becomes one table block
// holding the sheet rendered as a Markdown table; embedded pictures become
// image blocks.
type XlsxParser struct{}

// Parse reads every sheet of the workbook.
func (p *XlsxParser) Parse(ctx context.Context, filePath string) ([]models.ContentBlock, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var blocks []models.ContentBlock
	for sheetIdx, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			// Skip sheet if rows can't be read
			continue
		}
		if len(rows) > 0 {
			blocks = append(blocks, models.ContentBlock{
				Type:         models.BlockTable,
				PageIdx:      sheetIdx,
				TableCaption: []string{sheetName},
				TableBody:    rowsToMarkdown(rows),
			})
		}

		pictures, err := f.GetPictures(sheetName, "")
		if err != nil {
			continue
		}
		for picIdx, pic := range pictures {
			imgPath, err := saveEmbeddedImage(filePath, fmt.Sprintf("%s_%d%s", sheetName, picIdx, pic.Extension), pic.File)
			if err != nil {
				continue
			}
			blocks = append(blocks, models.ContentBlock{
				Type:       models.BlockImage,
				PageIdx:    sheetIdx,
				ImgPath:    imgPath,
				ImgCaption: []string{fmt.Sprintf("Image from sheet %s", sheetName)},
			})
		}
	}
	return blocks, nil
}

// rowsToMarkdown renders sheet rows as a Markdown table, first row as header.
func rowsToMarkdown(rows [][]string) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(rows[0], " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(rows[0])) + "\n")
	for _, row := range rows[1:] {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return b.String()
}

// DocxParser reads Word documents. Each paragraph becomes a text block, with
// heading styles mapped to text levels; embedded images become image blocks.
type DocxParser struct{}

// Parse reads the document's paragraphs and images.
func (p *DocxParser) Parse(ctx context.Context, filePath string) ([]models.ContentBlock, error) {
	doc, err := document.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	var blocks []models.ContentBlock
	for _, para := range doc.Paragraphs() {
		var text strings.Builder
		for _, run := range para.Runs() {
			text.WriteString(run.Text())
		}
		content := strings.TrimSpace(text.String())
		if content == "" {
			continue
		}
		blocks = append(blocks, models.ContentBlock{
			Type:      models.BlockText,
			PageIdx:   0,
			Text:      content,
			TextLevel: headingLevel(para),
		})
	}

	for imgIdx, imgRef := range doc.Images {
		tempPath := imgRef.Path()
		if tempPath == "" {
			continue
		}
		data, err := os.ReadFile(tempPath)
		if err != nil {
			continue
		}
		imgPath, err := saveEmbeddedImage(filePath, fmt.Sprintf("image_%d.%s", imgIdx, imgRef.Format()), data)
		if err != nil {
			continue
		}
		blocks = append(blocks, models.ContentBlock{
			Type:    models.BlockImage,
			PageIdx: 0,
			ImgPath: imgPath,
		})
	}
	return blocks, nil
}

// headingLevel maps Word heading styles to Markdown-like levels, 0 for body
// text.
func headingLevel(para document.Paragraph) int {
	ppr := para.X().PPr
	if ppr == nil || ppr.PStyle == nil {
		return 0
	}
	style := ppr.PStyle.ValAttr
	if !strings.HasPrefix(style, "Heading") {
		return 0
	}
	level, err := strconv.Atoi(strings.TrimPrefix(style, "Heading"))
	if err != nil || level < 1 {
		return 0
	}
	return level
}

// saveEmbeddedImage writes extracted image bytes next to the source file so
// downstream vision calls can read them back.
func saveEmbeddedImage(srcPath, name string, data []byte) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	dir := filepath.Join(os.TempDir(), "docugraph_images", stem)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
