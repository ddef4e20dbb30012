package parser

import (
	"DocuGraph/internal/config"
	"DocuGraph/internal/models"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMarkdownToBlocks(t *testing.T) {
	md := "# Title\n\nFirst paragraph\nstill first.\n\n![Figure 1](images/fig1.png)\n\nSecond paragraph."
	blocks := markdownToBlocks(md, "/docs")

	if len(blocks) != 4 {
		t.Fatalf("len(blocks) = %d, want 4: %v", len(blocks), blocks)
	}

	if blocks[0].Type != models.BlockText || blocks[0].Text != "Title" || blocks[0].TextLevel != 1 {
		t.Errorf("heading block = %+v", blocks[0])
	}
	if blocks[1].Text != "First paragraph\nstill first." {
		t.Errorf("paragraph block = %q", blocks[1].Text)
	}
	if blocks[2].Type != models.BlockImage {
		t.Fatalf("blocks[2].Type = %q, want image", blocks[2].Type)
	}
	if blocks[2].ImgPath != filepath.Join("/docs", "images/fig1.png") {
		t.Errorf("image path = %q", blocks[2].ImgPath)
	}
	if len(blocks[2].ImgCaption) != 1 || blocks[2].ImgCaption[0] != "Figure 1" {
		t.Errorf("image caption = %v", blocks[2].ImgCaption)
	}
	if blocks[3].Text != "Second paragraph." {
		t.Errorf("trailing paragraph = %q", blocks[3].Text)
	}
}

func TestMarkdownToBlocksRemoteImageKept(t *testing.T) {
	blocks := markdownToBlocks("![alt](https://example.com/a.png)", "/docs")
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	if blocks[0].ImgPath != "https://example.com/a.png" {
		t.Errorf("remote image path rewritten: %q", blocks[0].ImgPath)
	}
}

func TestTextParserReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	if err := os.WriteFile(path, []byte("## Heading\n\nbody"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	p := &TextParser{}
	blocks, err := p.Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2", len(blocks))
	}
	if blocks[0].TextLevel != 2 {
		t.Errorf("TextLevel = %d, want 2", blocks[0].TextLevel)
	}
}

func TestNativeDispatchUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	if err := os.WriteFile(path, []byte{0x00, 0x01, 0x02, 0x03}, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	n := NewNative(&config.ParserConfig{})
	if _, err := n.Parse(context.Background(), path); err == nil {
		t.Errorf("expected error for unsupported binary file")
	}
}
