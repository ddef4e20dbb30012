package models

import "time"

// DocumentStatus is the per-document processing record. MultimodalProcessed
// is the resumption checkpoint: it is set only after every modal item of the
// document has produced its chunk and the graph merge completed, or when the
// document has no modal items at all.
type DocumentStatus struct {
	DocID                 string    `bson:"_id" json:"doc_id"`
	FilePath              string    `bson:"file_path" json:"file_path"`
	ChunkCount            int       `bson:"chunk_count" json:"chunk_count"`
	MultimodalChunkIDs    []string  `bson:"multimodal_chunk_ids" json:"multimodal_chunk_ids"`
	MultimodalChunksCount int       `bson:"multimodal_chunks_count" json:"multimodal_chunks_count"`
	MultimodalProcessed   bool      `bson:"multimodal_processed" json:"multimodal_processed"`
	CreatedAt             time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time `bson:"updated_at" json:"updated_at"`
}
