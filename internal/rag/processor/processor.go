// Package processor contains the modal processor family: one processor per
// non-text content variant, sharing a common caption-call, response-parse
// and chunk/entity materialization path.
package processor

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/builder"
	"DocuGraph/internal/rag/contextual"
	"DocuGraph/pkg/logger"
	"DocuGraph/pkg/util"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// CaptionFunc is the description-generation model call. imageData is a
// base64-encoded image and may be empty for text-only prompts.
type CaptionFunc func(ctx context.Context, systemPrompt, prompt, imageData string) (string, error)

// Result is the outcome of processing one modal item.
type Result struct {
	Description  string
	EntityInfo   *models.EntityInfo
	ChunkResults []*models.ChunkExtraction
}

// Processor handles one modal content variant. blocks is the full block
// stream of the item's document, used for windowed context extraction.
// entityName, when non-empty, overrides the model-chosen entity name
// outright.
type Processor interface {
	Process(ctx context.Context, item models.ModalItem, blocks []models.ContentBlock, filePath, entityName string) (*Result, error)
}

// Base carries the collaborators shared by every processor variant. It holds
// no per-document state, so one Base serves concurrent documents.
type Base struct {
	builder          *builder.Builder
	caption          CaptionFunc
	contextExtractor *contextual.Extractor
	log              *logger.Logger
}

// NewBase creates the shared processor state.
func NewBase(b *builder.Builder, caption CaptionFunc, ce *contextual.Extractor, log *logger.Logger) *Base {
	return &Base{builder: b, caption: caption, contextExtractor: ce, log: log}
}

// contextFor retrieves windowed context for the item from its document's
// block stream. Context is an enhancement only; without an extractor or
// blocks it degrades to an empty string.
func (b *Base) contextFor(blocks []models.ContentBlock, item models.ModalItem) string {
	if b.contextExtractor == nil || len(blocks) == 0 {
		return ""
	}
	return b.contextExtractor.ExtractContext(blocks, item)
}

// callCaption invokes the description model.
// TODO: add bounded retry with backoff for transient caption call failures.
func (b *Base) callCaption(ctx context.Context, systemPrompt, prompt, imageData string) (string, error) {
	if b.caption == nil {
		return "", fmt.Errorf("no caption function configured")
	}
	return b.caption(ctx, systemPrompt, prompt, imageData)
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

type captionResponse struct {
	DetailedDescription string            `json:"detailed_description"`
	EntityInfo          models.EntityInfo `json:"entity_info"`
}

// parseResponse turns the model's JSON-shaped response into a description and
// entity metadata. A response that is not well-formed, or that misses
// required fields, falls back to a synthetic entity named after a hash of the
// response with a truncated summary. The entity name is disambiguated by
// appending the entity type unless an override name wins outright. This
// never fails; malformed model output degrades quality, not availability.
func parseResponse(response, overrideName, fallbackType string) (string, *models.EntityInfo) {
	match := jsonObjectPattern.FindString(response)
	if match != "" {
		var parsed captionResponse
		if err := json.Unmarshal([]byte(match), &parsed); err == nil &&
			parsed.DetailedDescription != "" &&
			parsed.EntityInfo.EntityName != "" &&
			parsed.EntityInfo.EntityType != "" &&
			parsed.EntityInfo.Summary != "" {

			info := parsed.EntityInfo
			info.EntityName = fmt.Sprintf("%s (%s)", info.EntityName, info.EntityType)
			if overrideName != "" {
				info.EntityName = overrideName
			}
			return parsed.DetailedDescription, &info
		}
	}

	name := overrideName
	if name == "" {
		name = fmt.Sprintf("%s_%s", fallbackType, util.MDHash(response))
	}
	summary := response
	if len(summary) > 100 {
		summary = summary[:100] + "..."
	}
	return response, &models.EntityInfo{
		EntityName: name,
		EntityType: fallbackType,
		Summary:    summary,
	}
}

// finish materializes the chunk and carrier entity for a completed analysis.
// description is the model's full analysis text, carried through to the
// caller alongside the entity metadata.
func (b *Base) finish(ctx context.Context, chunkText, description string, info *models.EntityInfo, filePath string) (*Result, error) {
	entityInfo, chunkResults, err := b.builder.CreateEntityAndChunk(ctx, chunkText, info, filePath)
	if err != nil {
		return nil, err
	}
	return &Result{
		Description:  description,
		EntityInfo:   entityInfo,
		ChunkResults: chunkResults,
	}, nil
}

// Registry dispatches modal items to the processor for their content type.
// Unknown types fall through to the generic processor.
type Registry struct {
	image    Processor
	table    Processor
	equation Processor
	generic  Processor
}

// NewRegistry wires the four processor variants over one shared Base.
func NewRegistry(base *Base) *Registry {
	return &Registry{
		image:    &ImageProcessor{Base: base},
		table:    &TableProcessor{Base: base},
		equation: &EquationProcessor{Base: base},
		generic:  &GenericProcessor{Base: base},
	}
}

// Get returns the processor responsible for the given block type.
func (r *Registry) Get(blockType models.BlockType) Processor {
	switch blockType {
	case models.BlockImage:
		return r.image
	case models.BlockTable:
		return r.table
	case models.BlockEquation:
		return r.equation
	default:
		return r.generic
	}
}
