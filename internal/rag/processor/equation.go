package processor

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/prompts"
	"context"
	"fmt"
)

// EquationProcessor describes equation blocks from their text and format.
type EquationProcessor struct {
	*Base
}

// Process analyzes one equation block.
func (p *EquationProcessor) Process(ctx context.Context, item models.ModalItem, blocks []models.ContentBlock, filePath, entityName string) (*Result, error) {
	block := item.Block

	format := block.TextFormat
	if format == "" {
		format = "latex"
	}

	docContext := p.contextFor(blocks, item)
	prompt := prompts.Equation(entityName, block.Text, format, docContext)

	response, err := p.callCaption(ctx, prompts.EquationAnalysisSystem, prompt, "")
	if err != nil {
		return nil, fmt.Errorf("equation description call failed: %w", err)
	}

	description, info := parseResponse(response, entityName, "equation")

	chunkText := prompts.EquationChunk(block.Text, format, description)
	return p.finish(ctx, chunkText, description, info, filePath)
}
