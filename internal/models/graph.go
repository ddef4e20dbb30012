package models

// EntityInfo is the structured metadata of a synthesized modal description:
// the carrier entity under which a modal item enters the knowledge graph.
type EntityInfo struct {
	EntityName string `json:"entity_name"`
	EntityType string `json:"entity_type"`
	Summary    string `json:"summary"`
	ChunkID    string `json:"chunk_id,omitempty"`
}

// Entity is a knowledge-graph node. EntityID doubles as the node key.
type Entity struct {
	EntityID    string `json:"entity_id"`
	EntityType  string `json:"entity_type"`
	Description string `json:"description"`
	SourceID    string `json:"source_id"` // chunk identifier the entity was mined from
	FilePath    string `json:"file_path"`
	CreatedAt   int64  `json:"created_at"`
}

// Relationship is a directed knowledge-graph edge.
type Relationship struct {
	SrcID       string  `json:"src_id"`
	TgtID       string  `json:"tgt_id"`
	Description string  `json:"description"`
	Keywords    string  `json:"keywords"`
	Weight      float64 `json:"weight"`
	SourceID    string  `json:"source_id"`
	FilePath    string  `json:"file_path"`
}

// EdgeKey identifies a directed edge by its endpoints.
type EdgeKey struct {
	Src string
	Tgt string
}

// ChunkExtraction holds the entity/relationship extraction output for one
// chunk. In batch mode these are accumulated across a whole document and
// merged into the graph in a single coordinated pass.
type ChunkExtraction struct {
	ChunkID string
	Nodes   map[string][]*Entity
	Edges   map[EdgeKey][]*Relationship
}

// NewChunkExtraction returns an empty extraction result for a chunk.
func NewChunkExtraction(chunkID string) *ChunkExtraction {
	return &ChunkExtraction{
		ChunkID: chunkID,
		Nodes:   make(map[string][]*Entity),
		Edges:   make(map[EdgeKey][]*Relationship),
	}
}

// VectorRecord is one entry of a vector index. The storage layer embeds
// Content itself; callers never handle raw vectors.
type VectorRecord struct {
	ID      string            `json:"id"`
	Content string            `json:"content"`
	Meta    map[string]string `json:"meta,omitempty"`
	Score   float32           `json:"score,omitempty"`
}
