package processor

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/prompts"
	"context"
	"fmt"
)

// TableProcessor describes table blocks from their structured fields.
type TableProcessor struct {
	*Base
}

// Process analyzes one table block.
func (p *TableProcessor) Process(ctx context.Context, item models.ModalItem, blocks []models.ContentBlock, filePath, entityName string) (*Result, error) {
	block := item.Block

	docContext := p.contextFor(blocks, item)
	prompt := prompts.Table(entityName, block.TableCaption, block.TableBody, block.TableFootnote, docContext)

	response, err := p.callCaption(ctx, prompts.TableAnalysisSystem, prompt, "")
	if err != nil {
		return nil, fmt.Errorf("table description call failed: %w", err)
	}

	description, info := parseResponse(response, entityName, "table")

	chunkText := prompts.TableChunk(block.TableCaption, block.TableBody, block.TableFootnote, description)
	return p.finish(ctx, chunkText, description, info, filePath)
}
