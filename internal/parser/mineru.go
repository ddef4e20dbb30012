package parser

import (
	"DocuGraph/internal/config"
	"DocuGraph/internal/models"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// MinerU shells out to the mineru command line tool and reads back the
// content list JSON it produces.
type MinerU struct {
	cfg *config.ParserConfig
}

// NewMinerU creates a MinerU-backed parser.
func NewMinerU(cfg *config.ParserConfig) *MinerU {
	return &MinerU{cfg: cfg}
}

// Parse runs mineru on the file and loads the resulting content list.
func (m *MinerU) Parse(ctx context.Context, filePath string) ([]models.ContentBlock, error) {
	outputDir := m.cfg.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(os.TempDir(), "mineru_output")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	args := m.buildArgs(filePath, outputDir)
	cmd := exec.CommandContext(ctx, "mineru", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("mineru failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	listPath, err := m.findContentList(filePath, outputDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read content list: %w", err)
	}
	var blocks []models.ContentBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode content list: %w", err)
	}

	// Image paths in the content list are relative to the images directory
	// next to the content list file.
	base := filepath.Dir(listPath)
	for i := range blocks {
		if blocks[i].ImgPath != "" && !filepath.IsAbs(blocks[i].ImgPath) {
			blocks[i].ImgPath = filepath.Join(base, blocks[i].ImgPath)
		}
	}
	return blocks, nil
}

// buildArgs assembles the mineru command line from the parser config.
func (m *MinerU) buildArgs(filePath, outputDir string) []string {
	cfg := m.cfg
	method := cfg.ParseMethod
	if method == "" {
		method = "auto"
	}
	backend := cfg.MineruBackend
	if backend == "" {
		backend = "pipeline"
	}
	source := cfg.Source
	if source == "" {
		source = "huggingface"
	}

	args := []string{
		"-p", filePath,
		"-o", outputDir,
		"-m", method,
		"-b", backend,
		"--source", source,
	}
	if cfg.Lang != "" {
		args = append(args, "-l", cfg.Lang)
	}
	if cfg.StartPage > 0 {
		args = append(args, "-s", strconv.Itoa(cfg.StartPage))
	}
	if cfg.EndPage > 0 {
		args = append(args, "-e", strconv.Itoa(cfg.EndPage))
	}
	if !cfg.Formula {
		args = append(args, "-f", "false")
	}
	if !cfg.Table {
		args = append(args, "-t", "false")
	}
	if cfg.Device != "" {
		args = append(args, "-d", cfg.Device)
	}
	return args
}

// findContentList locates the content list JSON under the output directory.
// Newer mineru versions write it at the top level, older ones nest it under
// {stem}/{method}/.
func (m *MinerU) findContentList(filePath, outputDir string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	method := m.cfg.ParseMethod
	if method == "" {
		method = "auto"
	}

	candidates := []string{
		filepath.Join(outputDir, stem+"_content_list.json"),
		filepath.Join(outputDir, stem, method, stem+"_content_list.json"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("content list not found under %s for %s", outputDir, stem)
}
