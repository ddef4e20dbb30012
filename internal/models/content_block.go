package models

import (
	"encoding/json"
	"strings"
)

// BlockType tags the variant of a ContentBlock.
type BlockType string

const (
	BlockText     BlockType = "text"
	BlockImage    BlockType = "image"
	BlockTable    BlockType = "table"
	BlockEquation BlockType = "equation"
	// BlockGeneric is the catch-all tag assigned to any block whose parser
	// type is not one of the known variants. The original parser type is
	// preserved in RawType.
	BlockGeneric BlockType = "generic"
)

// ContentBlock is one unit of parsed document content. Blocks are produced by
// a parser backend and are immutable afterwards. The field set is the union of
// all variants; which fields are meaningful depends on Type.
type ContentBlock struct {
	Type    BlockType `json:"type"`
	RawType string    `json:"-"` // parser's original type tag when Type == BlockGeneric

	// Positional metadata.
	PageIdx int `json:"page_idx"`
	Index   int `json:"-"` // ordinal within the block stream, assigned after parsing

	// Text variant (also used for equations, where Text holds the formula).
	Text      string `json:"text,omitempty"`
	TextLevel int    `json:"text_level,omitempty"`

	// Image variant.
	ImgPath     string   `json:"img_path,omitempty"`
	ImgCaption  []string `json:"img_caption,omitempty"`
	ImgFootnote []string `json:"img_footnote,omitempty"`

	// Table variant.
	TableCaption  []string `json:"table_caption,omitempty"`
	TableBody     string   `json:"table_body,omitempty"`
	TableFootnote []string `json:"table_footnote,omitempty"`

	// Equation variant.
	TextFormat string `json:"text_format,omitempty"`

	// Generic variant: whatever the parser emitted beyond the known fields.
	Extra map[string]interface{} `json:"-"`
}

// knownBlockKeys lists the JSON keys consumed by the typed fields above; any
// other key lands in Extra so generic blocks keep their full payload.
var knownBlockKeys = map[string]struct{}{
	"type": {}, "page_idx": {}, "text": {}, "text_level": {},
	"img_path": {}, "img_caption": {}, "img_footnote": {},
	"table_caption": {}, "table_body": {}, "table_footnote": {},
	"text_format": {},
}

// UnmarshalJSON decodes a parser content-list entry, normalizing unknown type
// tags to BlockGeneric and collecting unknown keys into Extra.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	type alias ContentBlock
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*b = ContentBlock(a)

	switch b.Type {
	case BlockText, BlockImage, BlockTable, BlockEquation:
	default:
		b.RawType = string(b.Type)
		b.Type = BlockGeneric
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if _, ok := knownBlockKeys[k]; ok {
			continue
		}
		if b.Extra == nil {
			b.Extra = make(map[string]interface{})
		}
		b.Extra[k] = v
	}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON: generic blocks are written
// back with their original type tag and Extra keys inlined, so a decode and
// re-encode of a parser content list is lossless.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	type alias ContentBlock
	data, err := json.Marshal(alias(b))
	if err != nil {
		return nil, err
	}
	if b.RawType == "" && len(b.Extra) == 0 {
		return data, nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if b.RawType != "" {
		raw["type"] = b.RawType
	}
	for k, v := range b.Extra {
		if _, ok := knownBlockKeys[k]; !ok {
			raw[k] = v
		}
	}
	return json.Marshal(raw)
}

// ContentType returns the parser-facing type name of the block, preserving
// the original tag for generic blocks.
func (b *ContentBlock) ContentType() string {
	if b.Type == BlockGeneric && b.RawType != "" {
		return b.RawType
	}
	return string(b.Type)
}

// SalientContent returns the part of the block that identifies its content:
// page text, image path, table body or equation text. The content-derived
// document identifier is a hash over the concatenation of these values, so
// byte-identical re-submitted content reuses the same identifier even when
// the file name differs.
func (b *ContentBlock) SalientContent() string {
	switch b.Type {
	case BlockText:
		return b.Text
	case BlockImage:
		return b.ImgPath
	case BlockTable:
		return b.TableBody
	case BlockEquation:
		return b.Text
	default:
		parts := make([]string, 0, len(b.Extra))
		for _, v := range b.Extra {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "")
	}
}

// ModalItem is a non-text content block tagged with its originating document
// for citation. It is created during classification and consumed exactly once
// by a modal processor; the derived chunk is the durable artifact.
type ModalItem struct {
	Block    ContentBlock
	DocID    string
	FileName string
	PageIdx  int
	Index    int // ordinal position within the full block stream
}
