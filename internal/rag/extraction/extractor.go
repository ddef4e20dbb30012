// Package extraction mines entities and relationships from text chunks using
// a language model.
package extraction

import (
	"DocuGraph/internal/llm"
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"DocuGraph/internal/rag/prompts"
	"DocuGraph/pkg/logger"
	"context"
	"encoding/json"
	"regexp"
	"time"
)

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// LLMExtractor implements entity/relationship extraction by asking a chat
// model for a JSON-shaped analysis of each chunk. A chunk whose response
// cannot be parsed yields an empty extraction rather than an error.
type LLMExtractor struct {
	model llm.ChatModel
	log   *logger.Logger
}

// NewLLMExtractor creates an LLMExtractor.
func NewLLMExtractor(model llm.ChatModel, log *logger.Logger) *LLMExtractor {
	return &LLMExtractor{model: model, log: log}
}

type extractionResponse struct {
	Entities []struct {
		EntityName  string `json:"entity_name"`
		EntityType  string `json:"entity_type"`
		Description string `json:"description"`
	} `json:"entities"`
	Relationships []struct {
		Src         string  `json:"src"`
		Tgt         string  `json:"tgt"`
		Description string  `json:"description"`
		Keywords    string  `json:"keywords"`
		Weight      float64 `json:"weight"`
	} `json:"relationships"`
}

// ExtractEntities runs extraction over every chunk and returns one result
// per chunk.
func (e *LLMExtractor) ExtractEntities(ctx context.Context, chunks map[string]*models.Chunk) ([]*models.ChunkExtraction, error) {
	var results []*models.ChunkExtraction
	for chunkID, chunk := range chunks {
		result := models.NewChunkExtraction(chunkID)

		response, err := e.model.Complete(ctx, "", prompts.EntityExtraction(chunk.Content))
		if err != nil {
			e.log.WithPayload(map[string]interface{}{"chunk_id": chunkID}).
				Warn("entity extraction model call failed: " + err.Error())
			results = append(results, result)
			continue
		}

		parsed, ok := parseExtractionResponse(response)
		if !ok {
			e.log.WithPayload(map[string]interface{}{"chunk_id": chunkID}).
				Warn("entity extraction response is not valid JSON, skipping chunk")
			results = append(results, result)
			continue
		}

		now := time.Now().Unix()
		for _, ent := range parsed.Entities {
			if ent.EntityName == "" {
				continue
			}
			result.Nodes[ent.EntityName] = append(result.Nodes[ent.EntityName], &models.Entity{
				EntityID:    ent.EntityName,
				EntityType:  ent.EntityType,
				Description: ent.Description,
				SourceID:    chunkID,
				FilePath:    chunk.FilePath,
				CreatedAt:   now,
			})
		}
		for _, rel := range parsed.Relationships {
			if rel.Src == "" || rel.Tgt == "" {
				continue
			}
			weight := rel.Weight
			if weight <= 0 {
				weight = 1.0
			}
			key := models.EdgeKey{Src: rel.Src, Tgt: rel.Tgt}
			result.Edges[key] = append(result.Edges[key], &models.Relationship{
				SrcID:       rel.Src,
				TgtID:       rel.Tgt,
				Description: rel.Description,
				Keywords:    rel.Keywords,
				Weight:      weight,
				SourceID:    chunkID,
				FilePath:    chunk.FilePath,
			})
		}

		results = append(results, result)
	}
	return results, nil
}

func parseExtractionResponse(response string) (*extractionResponse, bool) {
	match := jsonObjectPattern.FindString(response)
	if match == "" {
		return nil, false
	}
	var parsed extractionResponse
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return nil, false
	}
	return &parsed, true
}

// compile-time check to ensure LLMExtractor implements the Extractor interface
var _ interfaces.Extractor = (*LLMExtractor)(nil)
