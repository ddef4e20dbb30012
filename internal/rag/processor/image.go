package processor

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/prompts"
	"context"
	"encoding/base64"
	"fmt"
	"os"
)

// ImageProcessor describes image blocks with a vision model call. The source
// image must exist on disk; a missing or unreadable image fails the item.
type ImageProcessor struct {
	*Base
}

// Process analyzes one image block.
func (p *ImageProcessor) Process(ctx context.Context, item models.ModalItem, blocks []models.ContentBlock, filePath, entityName string) (*Result, error) {
	block := item.Block
	if block.ImgPath == "" {
		return nil, fmt.Errorf("image block has no image path")
	}

	raw, err := os.ReadFile(block.ImgPath)
	if err != nil {
		return nil, fmt.Errorf("image file not found or unreadable: %s: %w", block.ImgPath, err)
	}
	imageData := base64.StdEncoding.EncodeToString(raw)

	docContext := p.contextFor(blocks, item)
	prompt := prompts.Vision(entityName, block.ImgPath, block.ImgCaption, block.ImgFootnote, docContext)

	response, err := p.callCaption(ctx, prompts.ImageAnalysisSystem, prompt, imageData)
	if err != nil {
		return nil, fmt.Errorf("image description call failed: %w", err)
	}

	description, info := parseResponse(response, entityName, "image")

	chunkText := prompts.ImageChunk(block.ImgPath, block.ImgCaption, block.ImgFootnote, description)
	return p.finish(ctx, chunkText, description, info, filePath)
}
