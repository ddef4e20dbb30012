// Package contextual retrieves neighboring text around a modal item to
// ground its description. Context is an enhancement, not a correctness
// requirement: extraction never fails, it degrades to an empty string.
package contextual

import (
	"DocuGraph/internal/config"
	"DocuGraph/internal/models"
	"fmt"
	"strings"
)

// Tokenizer is the subset of tokenizer behavior truncation needs. It is
// optional; without one the same algorithm runs over character counts.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// Extractor collects windowed context for a modal item from the full content
// block stream of its document.
type Extractor struct {
	cfg       config.ContextConfig
	tokenizer Tokenizer
}

// New creates an Extractor. tokenizer may be nil.
func New(cfg config.ContextConfig, tokenizer Tokenizer) *Extractor {
	if len(cfg.FilterTypes) == 0 {
		cfg.FilterTypes = []string{"text"}
	}
	return &Extractor{cfg: cfg, tokenizer: tokenizer}
}

// ExtractContext returns the surrounding text for the item at the given page
// and stream position. Mode "page" windows by page index, anything else
// windows by stream position.
func (e *Extractor) ExtractContext(blocks []models.ContentBlock, item models.ModalItem) string {
	if len(blocks) == 0 {
		return ""
	}

	var context string
	switch e.cfg.Mode {
	case "chunk":
		context = e.chunkContext(blocks, item.Index)
	default:
		context = e.pageContext(blocks, item.PageIdx)
	}
	return e.truncate(context)
}

// pageContext collects text from every block whose page index falls within
// [currentPage - window, currentPage + window]. Blocks on other pages are
// prefixed with a page marker.
func (e *Extractor) pageContext(blocks []models.ContentBlock, currentPage int) string {
	startPage := currentPage - e.cfg.Window
	if startPage < 0 {
		startPage = 0
	}
	endPage := currentPage + e.cfg.Window

	var parts []string
	for _, block := range blocks {
		if block.PageIdx < startPage || block.PageIdx > endPage {
			continue
		}
		text := e.textFromBlock(block)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if block.PageIdx != currentPage {
			parts = append(parts, fmt.Sprintf("[Page %d] %s", block.PageIdx, text))
		} else {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// chunkContext collects the window nearest preceding and following blocks in
// stream order, excluding the current item itself.
func (e *Extractor) chunkContext(blocks []models.ContentBlock, currentIndex int) string {
	start := currentIndex - e.cfg.Window
	if start < 0 {
		start = 0
	}
	end := currentIndex + e.cfg.Window + 1
	if end > len(blocks) {
		end = len(blocks)
	}

	var parts []string
	for i := start; i < end; i++ {
		if i == currentIndex {
			continue
		}
		text := e.textFromBlock(blocks[i])
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// textFromBlock extracts the context-worthy text of a single block according
// to the type filter and caption toggle.
func (e *Extractor) textFromBlock(block models.ContentBlock) string {
	if !e.typeAllowed(block.ContentType()) {
		// Captions may contribute even when the block type itself is
		// filtered out.
		if e.cfg.IncludeCaptions {
			switch block.Type {
			case models.BlockImage:
				if len(block.ImgCaption) > 0 {
					return fmt.Sprintf("[Image: %s]", strings.Join(block.ImgCaption, ", "))
				}
			case models.BlockTable:
				if len(block.TableCaption) > 0 {
					return fmt.Sprintf("[Table: %s]", strings.Join(block.TableCaption, ", "))
				}
			}
		}
		return ""
	}

	if block.Type == models.BlockText {
		if e.cfg.IncludeHeaders && block.TextLevel > 0 {
			return strings.Repeat("#", block.TextLevel) + " " + block.Text
		}
		return block.Text
	}
	return ""
}

func (e *Extractor) typeAllowed(contentType string) bool {
	for _, t := range e.cfg.FilterTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// truncate limits context to the configured token budget, preferring a cut at
// the last sentence or line boundary past 80% of the budget. Without a
// tokenizer the same algorithm runs over characters.
func (e *Extractor) truncate(context string) string {
	if context == "" || e.cfg.MaxTokens <= 0 {
		return context
	}

	if e.tokenizer != nil {
		tokens := e.tokenizer.Encode(context)
		if len(tokens) <= e.cfg.MaxTokens {
			return context
		}
		return cutAtBoundary(e.tokenizer.Decode(tokens[:e.cfg.MaxTokens]))
	}

	if len(context) <= e.cfg.MaxTokens {
		return context
	}
	return cutAtBoundary(context[:e.cfg.MaxTokens])
}

func cutAtBoundary(truncated string) string {
	threshold := int(float64(len(truncated)) * 0.8)
	lastPeriod := strings.LastIndex(truncated, ".")
	lastNewline := strings.LastIndex(truncated, "\n")

	switch {
	case lastPeriod > threshold:
		return truncated[:lastPeriod+1]
	case lastNewline > threshold:
		return truncated[:lastNewline]
	default:
		return truncated + "..."
	}
}
