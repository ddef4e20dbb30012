package models

// Chunk is a persisted unit of retrievable text. Its identifier is a pure
// deterministic function of Content ("chunk-" + md5), which makes
// re-insertion of identical content idempotent.
type Chunk struct {
	ID              string `bson:"_id" json:"id"`
	Content         string `bson:"content" json:"content"`
	Tokens          int    `bson:"tokens" json:"tokens"`
	ChunkOrderIndex int    `bson:"chunk_order_index" json:"chunk_order_index"`
	FullDocID       string `bson:"full_doc_id" json:"full_doc_id"`
	FilePath        string `bson:"file_path" json:"file_path"`
}
