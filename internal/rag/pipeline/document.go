// Package pipeline drives end-to-end document ingestion: parse, classify,
// insert text chunks, process modal items, merge the knowledge graph and
// record status. It also coordinates multi-file batch runs.
package pipeline

import (
	"DocuGraph/internal/config"
	"DocuGraph/internal/database/kafka"
	"DocuGraph/internal/models"
	"DocuGraph/internal/parser"
	"DocuGraph/internal/rag/classifier"
	"DocuGraph/internal/rag/interfaces"
	"DocuGraph/internal/rag/merge"
	"DocuGraph/internal/rag/processor"
	"DocuGraph/internal/rag/splitters"
	"DocuGraph/pkg/logger"
	"DocuGraph/pkg/util"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// stage labels the pipeline state machine for logging and error wrapping.
type stage string

const (
	stageNotStarted      stage = "not_started"
	stageParsed          stage = "parsed"
	stageTextInserted    stage = "text_inserted"
	stageModalProcessing stage = "modal_processing"
	stageComplete        stage = "complete"
)

// EventSink receives document lifecycle events. The Kafka publisher
// implements it; a nil sink disables events.
type EventSink interface {
	Publish(ctx context.Context, event *kafka.DocumentEvent) error
}

// Archiver stores a copy of the source document after successful ingestion.
// A nil archiver disables archiving.
type Archiver interface {
	Archive(ctx context.Context, filePath string) error
}

// DocumentPipeline ingests one document at a time per document identifier.
// Two concurrent ingestions of the same content serialize on a per-document
// lock; different documents proceed in parallel.
type DocumentPipeline struct {
	parser     parser.Parser
	classifier *classifier.Classifier
	splitter   *splitters.TokenSplitter
	registry   *processor.Registry
	merger     *merge.Coordinator
	storages   *interfaces.Storages
	processing config.ProcessingConfig
	events     EventSink
	archiver   Archiver
	log        *logger.Logger

	locks sync.Map // docID -> *sync.Mutex
}

// NewDocumentPipeline wires the ingestion stages together. events and
// archiver may be nil.
func NewDocumentPipeline(
	p parser.Parser,
	cls *classifier.Classifier,
	splitter *splitters.TokenSplitter,
	registry *processor.Registry,
	merger *merge.Coordinator,
	storages *interfaces.Storages,
	processing config.ProcessingConfig,
	events EventSink,
	archiver Archiver,
	log *logger.Logger,
) *DocumentPipeline {
	return &DocumentPipeline{
		parser:     p,
		classifier: cls,
		splitter:   splitter,
		registry:   registry,
		merger:     merger,
		storages:   storages,
		processing: processing,
		events:     events,
		archiver:   archiver,
		log:        log,
	}
}

// ProcessDocument ingests one file end to end and returns the final status
// record. Re-submitting byte-identical content is idempotent: the document
// identifier derives from the content, and a fully processed document is
// skipped without any model calls.
func (dp *DocumentPipeline) ProcessDocument(ctx context.Context, filePath string) (*models.DocumentStatus, error) {
	log := dp.log.WithFile(filePath)
	currentStage := stageNotStarted

	blocks, err := dp.parser.Parse(ctx, filePath)
	if err != nil {
		dp.publish(ctx, kafka.EventDocumentFailed, "", filePath, err)
		return nil, fmt.Errorf("stage %s: parse failed: %w", currentStage, err)
	}
	currentStage = stageParsed

	docID := deriveDocID(blocks)
	log = log.WithDocID(docID)
	dp.publish(ctx, kafka.EventDocumentStarted, docID, filePath, nil)

	// One ingestion per document at a time. Identical content hashes to the
	// same identifier, so a concurrent duplicate waits and then hits the
	// resumption short-circuit.
	mu := dp.lockFor(docID)
	mu.Lock()
	defer mu.Unlock()

	fileName := filepath.Base(filePath)
	textStream, modalItems := dp.classifier.Classify(blocks, docID, fileName)
	modalItems = dp.filterEnabled(modalItems)

	if status, done := dp.alreadyProcessed(ctx, docID, len(modalItems)); done {
		log.Info("document already processed, skipping")
		dp.publish(ctx, kafka.EventDocumentCompleted, docID, filePath, nil)
		return status, nil
	}

	status := &models.DocumentStatus{
		DocID:     docID,
		FilePath:  fileName,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	chunkCount, err := dp.insertText(ctx, textStream, docID, fileName)
	if err != nil {
		dp.publish(ctx, kafka.EventDocumentFailed, docID, filePath, err)
		return nil, fmt.Errorf("stage %s: text insertion failed: %w", currentStage, err)
	}
	currentStage = stageTextInserted
	status.ChunkCount = chunkCount
	status.UpdatedAt = time.Now()
	if err := dp.storages.Status.Upsert(ctx, status); err != nil {
		return nil, fmt.Errorf("stage %s: status update failed: %w", currentStage, err)
	}

	currentStage = stageModalProcessing
	chunkIDs, chunkResults := dp.processModalItems(ctx, blocks, modalItems, fileName, log)

	if err := dp.merger.MergeAll(ctx, chunkResults, fileName); err != nil {
		dp.publish(ctx, kafka.EventDocumentFailed, docID, filePath, err)
		return nil, fmt.Errorf("stage %s: %w", currentStage, err)
	}

	currentStage = stageComplete
	status.MultimodalChunkIDs = chunkIDs
	status.MultimodalChunksCount = len(chunkIDs)
	status.MultimodalProcessed = true
	status.UpdatedAt = time.Now()
	if err := dp.storages.Status.Upsert(ctx, status); err != nil {
		return nil, fmt.Errorf("stage %s: status update failed: %w", currentStage, err)
	}

	dp.publish(ctx, kafka.EventDocumentCompleted, docID, filePath, nil)
	dp.archive(ctx, filePath, log)

	log.WithPayload(map[string]interface{}{
		"text_chunks":  chunkCount,
		"modal_chunks": len(chunkIDs),
	}).Info("document ingestion complete")
	return status, nil
}

// deriveDocID hashes the salient content of every block so the identifier is
// a pure function of document content, independent of file name or location.
func deriveDocID(blocks []models.ContentBlock) string {
	var b strings.Builder
	for i := range blocks {
		b.WriteString(blocks[i].SalientContent())
	}
	return util.MDHashID(b.String(), util.DocIDPrefix)
}

func (dp *DocumentPipeline) lockFor(docID string) *sync.Mutex {
	mu, _ := dp.locks.LoadOrStore(docID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// filterEnabled drops modal items whose type is disabled in the processing
// configuration. Generic blocks are always processed.
func (dp *DocumentPipeline) filterEnabled(items []models.ModalItem) []models.ModalItem {
	kept := items[:0]
	for _, item := range items {
		switch item.Block.Type {
		case models.BlockImage:
			if !dp.processing.EnableImage {
				continue
			}
		case models.BlockTable:
			if !dp.processing.EnableTable {
				continue
			}
		case models.BlockEquation:
			if !dp.processing.EnableEquation {
				continue
			}
		}
		kept = append(kept, item)
	}
	return kept
}

// alreadyProcessed reports whether a previous run fully handled this document.
func (dp *DocumentPipeline) alreadyProcessed(ctx context.Context, docID string, itemCount int) (*models.DocumentStatus, bool) {
	status, found, err := dp.storages.Status.GetByID(ctx, docID)
	if err != nil || !found {
		return nil, false
	}
	if status.MultimodalProcessed && status.MultimodalChunksCount >= itemCount {
		return status, true
	}
	return nil, false
}

// insertText splits the document's text stream into token-sized chunks and
// stores them in the chunk store and chunk vector index.
func (dp *DocumentPipeline) insertText(ctx context.Context, textStream, docID, fileName string) (int, error) {
	if strings.TrimSpace(textStream) == "" {
		return 0, nil
	}

	pieces := dp.splitter.Split(textStream)
	chunks := make(map[string]*models.Chunk, len(pieces))
	records := make(map[string]*models.VectorRecord, len(pieces))
	for i, piece := range pieces {
		chunkID := util.MDHashID(piece.Content, util.ChunkIDPrefix)
		chunks[chunkID] = &models.Chunk{
			ID:              chunkID,
			Content:         piece.Content,
			Tokens:          piece.Tokens,
			ChunkOrderIndex: i,
			FullDocID:       docID,
			FilePath:        fileName,
		}
		records[chunkID] = &models.VectorRecord{
			ID:      chunkID,
			Content: piece.Content,
			Meta: map[string]string{
				"full_doc_id": docID,
				"file_path":   fileName,
			},
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := dp.storages.Chunks.Upsert(gctx, chunks); err != nil {
			return fmt.Errorf("failed to store text chunks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := dp.storages.ChunksVDB.Upsert(gctx, records); err != nil {
			return fmt.Errorf("failed to index text chunks: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(pieces), nil
}

// processModalItems runs every modal item through its processor, isolating
// failures to the failing item. The extraction results of all successful
// items are accumulated for one coordinated merge.
func (dp *DocumentPipeline) processModalItems(ctx context.Context, blocks []models.ContentBlock, items []models.ModalItem, fileName string, log *logger.Logger) ([]string, []*models.ChunkExtraction) {
	if len(items) == 0 {
		return nil, nil
	}

	var chunkIDs []string
	var chunkResults []*models.ChunkExtraction
	for _, item := range items {
		proc := dp.registry.Get(item.Block.Type)
		result, err := proc.Process(ctx, item, blocks, fileName, "")
		if err != nil {
			log.WithPayload(map[string]interface{}{
				"content_type": item.Block.ContentType(),
				"page_idx":     item.PageIdx,
				"error":        err.Error(),
			}).Warn("modal item processing failed, skipping")
			continue
		}
		chunkIDs = append(chunkIDs, result.EntityInfo.ChunkID)
		chunkResults = append(chunkResults, result.ChunkResults...)
	}
	return chunkIDs, chunkResults
}

// publish sends a lifecycle event if an event sink is configured. Event
// delivery failures are logged, never fatal.
func (dp *DocumentPipeline) publish(ctx context.Context, eventType, docID, filePath string, cause error) {
	if dp.events == nil {
		return
	}
	event := &kafka.DocumentEvent{
		EventType: eventType,
		DocID:     docID,
		FilePath:  filePath,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if err := dp.events.Publish(ctx, event); err != nil {
		dp.log.WithFile(filePath).Warn(fmt.Sprintf("failed to publish %s event: %v", eventType, err))
	}
}

// archive uploads the source file if an archiver is configured.
func (dp *DocumentPipeline) archive(ctx context.Context, filePath string, log *logger.Logger) {
	if dp.archiver == nil {
		return
	}
	if err := dp.archiver.Archive(ctx, filePath); err != nil {
		log.Warn(fmt.Sprintf("failed to archive source file: %v", err))
	}
}
