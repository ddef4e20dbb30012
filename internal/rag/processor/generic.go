package processor

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/prompts"
	"context"
	"encoding/json"
	"fmt"
)

// GenericProcessor handles every block type without a specialized processor.
// The block's payload is stringified and analyzed as-is.
type GenericProcessor struct {
	*Base
}

// Process analyzes one generic block.
func (p *GenericProcessor) Process(ctx context.Context, item models.ModalItem, blocks []models.ContentBlock, filePath, entityName string) (*Result, error) {
	block := item.Block
	contentType := block.ContentType()
	content := stringifyBlock(block)

	docContext := p.contextFor(blocks, item)
	prompt := prompts.Generic(entityName, contentType, content, docContext)

	response, err := p.callCaption(ctx, prompts.GenericAnalysisSystem(contentType), prompt, "")
	if err != nil {
		return nil, fmt.Errorf("%s description call failed: %w", contentType, err)
	}

	description, info := parseResponse(response, entityName, contentType)

	chunkText := prompts.GenericChunk(contentType, content, description)
	return p.finish(ctx, chunkText, description, info, filePath)
}

// stringifyBlock renders whatever payload the block carries.
func stringifyBlock(block models.ContentBlock) string {
	if block.Text != "" {
		return block.Text
	}
	if len(block.Extra) > 0 {
		if data, err := json.Marshal(block.Extra); err == nil {
			return string(data)
		}
	}
	return fmt.Sprintf("%s block on page %d", block.ContentType(), block.PageIdx)
}
