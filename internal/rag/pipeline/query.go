package pipeline

import (
	"DocuGraph/internal/llm"
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"DocuGraph/internal/rag/prompts"
	"DocuGraph/pkg/logger"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// QueryPipeline answers questions over the ingested knowledge: retrieval from
// the chunk, entity and relationship vector indices, then answer synthesis
// with the chat model.
type QueryPipeline struct {
	storages *interfaces.Storages
	model    llm.ChatModel
	vision   llm.VisionModel
	log      *logger.Logger
}

// NewQueryPipeline creates a QueryPipeline. vision is only needed for
// multimodal queries and may be nil otherwise.
func NewQueryPipeline(storages *interfaces.Storages, model llm.ChatModel, vision llm.VisionModel, log *logger.Logger) *QueryPipeline {
	return &QueryPipeline{storages: storages, model: model, vision: vision, log: log}
}

// Query retrieves the passages most relevant to the question and asks the
// chat model to answer from them.
func (qp *QueryPipeline) Query(ctx context.Context, question string, topK int) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("empty query")
	}
	if topK <= 0 {
		topK = 5
	}

	passages, err := qp.retrieve(ctx, question, topK)
	if err != nil {
		return "", err
	}
	if len(passages) == 0 {
		return "", fmt.Errorf("no relevant knowledge found")
	}

	answer, err := qp.model.Complete(ctx, prompts.QASystem, prompts.QA(question, passages))
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}
	return answer, nil
}

// QueryWithMultimodal enhances the question with model-generated descriptions
// of the attached content blocks before retrieval. The attached content is
// analyzed transiently; nothing is ingested.
func (qp *QueryPipeline) QueryWithMultimodal(ctx context.Context, question string, attachments []models.ContentBlock, topK int) (string, error) {
	enhanced := question
	for i := range attachments {
		description, err := qp.describe(ctx, &attachments[i])
		if err != nil {
			qp.log.Warn(fmt.Sprintf("failed to describe query attachment: %v", err))
			continue
		}
		enhanced = fmt.Sprintf("%s\n\nAttached %s content: %s",
			enhanced, attachments[i].ContentType(), description)
	}
	return qp.Query(ctx, enhanced, topK)
}

// retrieve collects passages from all three vector indices. Chunk hits are
// resolved to their stored content; entity and relationship hits contribute
// their index content directly.
func (qp *QueryPipeline) retrieve(ctx context.Context, question string, topK int) ([]string, error) {
	var passages []string

	chunkHits, err := qp.storages.ChunksVDB.Query(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("chunk retrieval failed: %w", err)
	}
	ids := make([]string, 0, len(chunkHits))
	for _, hit := range chunkHits {
		ids = append(ids, hit.ID)
	}
	chunks, err := qp.storages.Chunks.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("chunk lookup failed: %w", err)
	}
	for _, chunk := range chunks {
		passages = append(passages, chunk.Content)
	}

	entityHits, err := qp.storages.EntitiesVDB.Query(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("entity retrieval failed: %w", err)
	}
	for _, hit := range entityHits {
		passages = append(passages, "Entity: "+hit.Content)
	}

	relHits, err := qp.storages.RelationshipsVDB.Query(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("relationship retrieval failed: %w", err)
	}
	for _, hit := range relHits {
		passages = append(passages, "Relationship: "+hit.Content)
	}

	return passages, nil
}

// describe generates a transient description of one attached content block.
func (qp *QueryPipeline) describe(ctx context.Context, block *models.ContentBlock) (string, error) {
	switch block.Type {
	case models.BlockImage:
		if qp.vision == nil {
			return "", fmt.Errorf("no vision model configured")
		}
		raw, err := os.ReadFile(block.ImgPath)
		if err != nil {
			return "", fmt.Errorf("failed to read attached image: %w", err)
		}
		prompt := prompts.Vision("", block.ImgPath, block.ImgCaption, block.ImgFootnote, "")
		return qp.vision.CompleteWithImage(ctx, prompts.ImageAnalysisSystem, prompt, base64.StdEncoding.EncodeToString(raw))
	case models.BlockTable:
		prompt := prompts.Table("", block.TableCaption, block.TableBody, block.TableFootnote, "")
		return qp.model.Complete(ctx, prompts.TableAnalysisSystem, prompt)
	case models.BlockEquation:
		format := block.TextFormat
		if format == "" {
			format = "latex"
		}
		prompt := prompts.Equation("", block.Text, format, "")
		return qp.model.Complete(ctx, prompts.EquationAnalysisSystem, prompt)
	default:
		contentType := block.ContentType()
		prompt := prompts.Generic("", contentType, block.Text, "")
		return qp.model.Complete(ctx, prompts.GenericAnalysisSystem(contentType), prompt)
	}
}
