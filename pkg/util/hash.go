package util

import (
	"crypto/md5"
	"encoding/hex"
)

// Well-known identifier prefixes shared by the ingestion pipeline. Chunk,
// entity and relationship identifiers are pure functions of their content,
// which makes every re-insertion of identical content idempotent at the
// storage-record level.
const (
	ChunkIDPrefix    = "chunk-"
	EntityIDPrefix   = "ent-"
	RelationIDPrefix = "rel-"
	DocIDPrefix      = "doc-"
	CacheIDPrefix    = "parse-"
)

// MDHashID returns prefix + hex(md5(content)).
func MDHashID(content, prefix string) string {
	sum := md5.Sum([]byte(content))
	return prefix + hex.EncodeToString(sum[:])
}

// MDHash returns the bare hex md5 of content, used for fallback entity names.
func MDHash(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
