package classifier

import (
	"DocuGraph/internal/config"
	"DocuGraph/internal/models"
	"strings"
)

// Classifier splits a parsed content-block list into a plain-text stream and
// an ordered list of modal items. Every input block ends up in exactly one of
// the two outputs.
type Classifier struct {
	includeHeaders bool
}

// New creates a Classifier from the context configuration.
func New(cfg *config.ContextConfig) *Classifier {
	return &Classifier{includeHeaders: cfg.IncludeHeaders}
}

// Classify walks the block stream in order, concatenating text blocks into a
// single string separated by blank lines and collecting every non-text block
// as a ModalItem annotated with its page index and stream position.
func (c *Classifier) Classify(blocks []models.ContentBlock, docID, fileName string) (string, []models.ModalItem) {
	var textParts []string
	var modalItems []models.ModalItem

	for i, block := range blocks {
		if block.Type == models.BlockText {
			text := strings.TrimSpace(block.Text)
			if text == "" {
				continue
			}
			if c.includeHeaders && block.TextLevel > 0 {
				text = strings.Repeat("#", block.TextLevel) + " " + text
			}
			textParts = append(textParts, text)
			continue
		}

		modalItems = append(modalItems, models.ModalItem{
			Block:    block,
			DocID:    docID,
			FileName: fileName,
			PageIdx:  block.PageIdx,
			Index:    i,
		})
	}

	return strings.Join(textParts, "\n\n"), modalItems
}
