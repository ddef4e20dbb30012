package classifier

import (
	"DocuGraph/internal/config"
	"DocuGraph/internal/models"
	"testing"
)

func TestClassifySeparatesTextAndModal(t *testing.T) {
	blocks := []models.ContentBlock{
		{Type: models.BlockText, Text: "Intro", PageIdx: 0},
		{Type: models.BlockImage, ImgPath: "fig1.png", PageIdx: 0},
		{Type: models.BlockText, Text: "Conclusion", PageIdx: 1},
	}

	c := New(&config.ContextConfig{})
	text, items := c.Classify(blocks, "doc-1", "paper.pdf")

	if text != "Intro\n\nConclusion" {
		t.Errorf("text = %q, want %q", text, "Intro\n\nConclusion")
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Block.ImgPath != "fig1.png" {
		t.Errorf("item ImgPath = %q", items[0].Block.ImgPath)
	}
	if items[0].Index != 1 {
		t.Errorf("item Index = %d, want 1", items[0].Index)
	}
	if items[0].DocID != "doc-1" || items[0].FileName != "paper.pdf" {
		t.Errorf("item citation = (%q, %q)", items[0].DocID, items[0].FileName)
	}
}

func TestClassifyHeaderPrefix(t *testing.T) {
	blocks := []models.ContentBlock{
		{Type: models.BlockText, Text: "Background", TextLevel: 2},
		{Type: models.BlockText, Text: "body text"},
	}

	withHeaders := New(&config.ContextConfig{IncludeHeaders: true})
	text, _ := withHeaders.Classify(blocks, "d", "f")
	if text != "## Background\n\nbody text" {
		t.Errorf("with headers: text = %q", text)
	}

	withoutHeaders := New(&config.ContextConfig{IncludeHeaders: false})
	text, _ = withoutHeaders.Classify(blocks, "d", "f")
	if text != "Background\n\nbody text" {
		t.Errorf("without headers: text = %q", text)
	}
}

func TestClassifySkipsEmptyText(t *testing.T) {
	blocks := []models.ContentBlock{
		{Type: models.BlockText, Text: "  \n "},
		{Type: models.BlockText, Text: "real"},
	}
	c := New(&config.ContextConfig{})
	text, items := c.Classify(blocks, "d", "f")
	if text != "real" {
		t.Errorf("text = %q, want %q", text, "real")
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
}

func TestClassifyKeepsEveryModalBlock(t *testing.T) {
	blocks := []models.ContentBlock{
		{Type: models.BlockTable, TableBody: "| a |"},
		{Type: models.BlockEquation, Text: "E=mc^2"},
		{Type: models.BlockGeneric, RawType: "audio"},
	}
	c := New(&config.ContextConfig{})
	_, items := c.Classify(blocks, "d", "f")
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	for i, item := range items {
		if item.Index != i {
			t.Errorf("items[%d].Index = %d, want %d", i, item.Index, i)
		}
	}
}
