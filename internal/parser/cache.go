package parser

import (
	"DocuGraph/internal/config"
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"DocuGraph/pkg/logger"
	"DocuGraph/pkg/util"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/djherbis/times"
)

// cacheConfig is the allow-list of parser settings that change parse output.
// Every field participates in the cache key.
type cacheConfig struct {
	Backend       string
	MineruBackend string
	ParseMethod   string
	Lang          string
	Device        string
	Source        string
	StartPage     int
	EndPage       int
	Formula       bool
	Table         bool
}

// cacheEntry is the stored value for one parsed (file, configuration) pair.
type cacheEntry struct {
	Blocks []models.ContentBlock `json:"blocks"`
}

// CachingParser wraps a Parser with a KV-backed cache. The key hashes the
// absolute path, the file's modification time and the full configuration
// allow-list, so entries for different configurations of one file coexist
// and a modified file simply misses. Cache failures never fail a parse; they
// degrade to a miss.
type CachingParser struct {
	inner Parser
	store interfaces.KVStore
	cfg   cacheConfig
	log   *logger.Logger
}

// NewCachingParser wraps inner with a parse cache over store.
func NewCachingParser(inner Parser, store interfaces.KVStore, cfg *config.ParserConfig, log *logger.Logger) *CachingParser {
	return &CachingParser{
		inner: inner,
		store: store,
		cfg: cacheConfig{
			Backend:       cfg.Backend,
			MineruBackend: cfg.MineruBackend,
			ParseMethod:   cfg.ParseMethod,
			Lang:          cfg.Lang,
			Device:        cfg.Device,
			Source:        cfg.Source,
			StartPage:     cfg.StartPage,
			EndPage:       cfg.EndPage,
			Formula:       cfg.Formula,
			Table:         cfg.Table,
		},
		log: log,
	}
}

// Parse returns cached blocks when the file and configuration are unchanged,
// otherwise parses and stores the result.
func (c *CachingParser) Parse(ctx context.Context, filePath string) ([]models.ContentBlock, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		absPath = filePath
	}

	modTime, statErr := fileModTime(absPath)
	if statErr != nil {
		return c.inner.Parse(ctx, filePath)
	}
	key := c.cacheKey(absPath, modTime)

	if blocks, ok := c.lookup(ctx, key); ok {
		c.log.WithFile(filePath).Debug("parse cache hit")
		return blocks, nil
	}

	blocks, err := c.inner.Parse(ctx, filePath)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, blocks, filePath)
	return blocks, nil
}

// cacheKey hashes a canonical serialization of the file identity and the
// configuration allow-list. Map keys marshal in sorted order, so equal
// tuples always hash to the same key.
func (c *CachingParser) cacheKey(absPath string, modTime int64) string {
	payload, _ := json.Marshal(map[string]interface{}{
		"path":           absPath,
		"mod_time":       modTime,
		"backend":        c.cfg.Backend,
		"mineru_backend": c.cfg.MineruBackend,
		"parse_method":   c.cfg.ParseMethod,
		"lang":           c.cfg.Lang,
		"device":         c.cfg.Device,
		"source":         c.cfg.Source,
		"start_page":     c.cfg.StartPage,
		"end_page":       c.cfg.EndPage,
		"formula":        c.cfg.Formula,
		"table":          c.cfg.Table,
	})
	return util.MDHashID(string(payload), util.CacheIDPrefix)
}

// lookup loads one cache entry. Any decode or storage error is treated as a
// miss.
func (c *CachingParser) lookup(ctx context.Context, key string) ([]models.ContentBlock, bool) {
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn(fmt.Sprintf("parse cache read failed: %v", err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	return entry.Blocks, true
}

// put stores one cache entry. Failures are logged and ignored.
func (c *CachingParser) put(ctx context.Context, key string, blocks []models.ContentBlock, filePath string) {
	entry := cacheEntry{Blocks: blocks}
	data, err := json.Marshal(entry)
	if err != nil {
		c.log.WithFile(filePath).Warn(fmt.Sprintf("parse cache encode failed: %v", err))
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		c.log.WithFile(filePath).Warn(fmt.Sprintf("parse cache write failed: %v", err))
	}
}

// fileModTime returns the file's modification time in nanoseconds.
func fileModTime(path string) (int64, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return 0, err
	}
	return ts.ModTime().UnixNano(), nil
}
