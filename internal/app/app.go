// Package app wires configuration, storage backends, models and pipelines
// into a runnable application.
package app

import (
	"DocuGraph/internal/archive"
	"DocuGraph/internal/config"
	"DocuGraph/internal/database/kafka"
	"DocuGraph/internal/database/milvus"
	"DocuGraph/internal/database/minio"
	"DocuGraph/internal/database/mongo"
	"DocuGraph/internal/database/mysql"
	"DocuGraph/internal/database/neo4j"
	"DocuGraph/internal/database/redis"
	"DocuGraph/internal/embedding"
	"DocuGraph/internal/llm"
	"DocuGraph/internal/parser"
	"DocuGraph/internal/rag/builder"
	"DocuGraph/internal/rag/classifier"
	"DocuGraph/internal/rag/contextual"
	"DocuGraph/internal/rag/extraction"
	"DocuGraph/internal/rag/interfaces"
	"DocuGraph/internal/rag/merge"
	"DocuGraph/internal/rag/pipeline"
	"DocuGraph/internal/rag/processor"
	"DocuGraph/internal/rag/splitters"
	"DocuGraph/internal/rag/storages/docstore"
	"DocuGraph/internal/rag/storages/graphstore"
	"DocuGraph/internal/rag/storages/kvstore"
	"DocuGraph/internal/rag/storages/statusstore"
	"DocuGraph/internal/rag/storages/vectorstore"
	"DocuGraph/internal/rag/tokenizer"
	"DocuGraph/internal/report"
	"DocuGraph/pkg/logger"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// App holds the wired application components.
type App struct {
	Config   *config.AppConfig
	Logger   *logger.Logger
	Storages *interfaces.Storages
	Pipeline *pipeline.DocumentPipeline
	Batch    *pipeline.BatchCoordinator
	Query    *pipeline.QueryPipeline

	events *kafka.EventPublisher
	milvus *milvus.MilvusClient
	neo4j  *neo4j.Neo4jClient
}

// Build constructs the full application from configuration. Every backend in
// the configuration is connected eagerly so misconfiguration fails at
// startup, not mid-ingestion.
func Build(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	level, err := logrus.ParseLevel(cfg.Service.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	log := logger.New(cfg.Service.Name, uuid.New().String())

	// Storage backends.
	redisClient, err := redis.GetClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	mongoClient, err := mongo.GetClient(&cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("mongo: %w", err)
	}
	milvusClient, err := milvus.GetClient(ctx, &cfg.Milvus)
	if err != nil {
		return nil, fmt.Errorf("milvus: %w", err)
	}
	neo4jClient, err := neo4j.GetClient(ctx, &cfg.Neo4j)
	if err != nil {
		return nil, fmt.Errorf("neo4j: %w", err)
	}

	// Models.
	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	chatModel, err := llm.NewChatModel(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("chat model: %w", err)
	}
	visionModel, err := llm.NewVisionModel(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("vision model: %w", err)
	}

	chunksVDB, err := vectorstore.NewMilvusVectorIndex(ctx, milvusClient, embedder, cfg.Milvus.ChunksCollection)
	if err != nil {
		return nil, fmt.Errorf("chunk index: %w", err)
	}
	entitiesVDB, err := vectorstore.NewMilvusVectorIndex(ctx, milvusClient, embedder, cfg.Milvus.EntitiesCollection)
	if err != nil {
		return nil, fmt.Errorf("entity index: %w", err)
	}
	relationshipsVDB, err := vectorstore.NewMilvusVectorIndex(ctx, milvusClient, embedder, cfg.Milvus.RelationshipsCollection)
	if err != nil {
		return nil, fmt.Errorf("relationship index: %w", err)
	}

	storages := &interfaces.Storages{
		Chunks:           docstore.NewMongoChunkStore(mongoClient, cfg.Mongo.Database, "chunks"),
		ChunksVDB:        chunksVDB,
		EntitiesVDB:      entitiesVDB,
		RelationshipsVDB: relationshipsVDB,
		Graph:            graphstore.NewNeo4jGraphStorage(neo4jClient),
		Status:           statusstore.NewMongoStatusStore(mongoClient, cfg.Mongo.Database, "document_status"),
	}

	// Parsing.
	docParser, err := parser.New(&cfg.Parser)
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	if cfg.Parser.EnableCache {
		cache := kvstore.NewRedisKVStore(redisClient, "docugraph")
		docParser = parser.NewCachingParser(docParser, cache, &cfg.Parser, log)
	}

	// Pipeline stages.
	tok, err := tokenizer.New()
	if err != nil {
		return nil, fmt.Errorf("tokenizer: %w", err)
	}
	splitter := splitters.NewTokenSplitter(tok, cfg.Processing.ChunkSize, cfg.Processing.ChunkOverlap)
	extractor := extraction.NewLLMExtractor(chatModel, log)
	b := builder.New(storages, extractor, tok, log)
	contextExtractor := contextual.New(cfg.Context, tok)
	caption := func(ctx context.Context, systemPrompt, prompt, imageData string) (string, error) {
		if imageData != "" {
			return visionModel.CompleteWithImage(ctx, systemPrompt, prompt, imageData)
		}
		return chatModel.Complete(ctx, systemPrompt, prompt)
	}
	base := processor.NewBase(b, caption, contextExtractor, log)
	registry := processor.NewRegistry(base)
	merger := merge.NewCoordinator(storages, log)

	// Optional side channels.
	var events *kafka.EventPublisher
	var sink pipeline.EventSink
	if cfg.Kafka.Enabled {
		kafkaClient, err := kafka.GetClient(&cfg.Kafka)
		if err != nil {
			return nil, fmt.Errorf("kafka: %w", err)
		}
		events = kafka.NewEventPublisher(kafkaClient)
		sink = events
	}

	var archiver pipeline.Archiver
	if cfg.MinIO.Enabled {
		minioClient, err := minio.GetClient(&cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		if err := minio.EnsureBucket(ctx, cfg.MinIO.Bucket); err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		archiver = archive.NewMinIOArchiver(minioClient, cfg.MinIO.Bucket, log)
	}

	var reports pipeline.ReportStore
	if cfg.MySQL.Address != "" {
		db, err := mysql.GetDB(&cfg.MySQL)
		if err != nil {
			return nil, fmt.Errorf("mysql: %w", err)
		}
		reports, err = report.NewStore(db)
		if err != nil {
			return nil, fmt.Errorf("report store: %w", err)
		}
	}

	dp := pipeline.NewDocumentPipeline(docParser, classifier.New(&cfg.Context), splitter,
		registry, merger, storages, cfg.Processing, sink, archiver, log)
	bc, err := pipeline.NewBatchCoordinator(dp, cfg.Batch, sink, reports, log)
	if err != nil {
		return nil, fmt.Errorf("batch coordinator: %w", err)
	}
	qp := pipeline.NewQueryPipeline(storages, chatModel, visionModel, log)

	return &App{
		Config:   cfg,
		Logger:   log,
		Storages: storages,
		Pipeline: dp,
		Batch:    bc,
		Query:    qp,
		events:   events,
		milvus:   milvusClient,
		neo4j:    neo4jClient,
	}, nil
}

// Close releases connections held by the application.
func (a *App) Close() {
	ctx := context.Background()
	if a.events != nil {
		_ = a.events.Close()
	}
	_ = redis.Close()
	_ = mongo.Close(ctx)
	if a.milvus != nil {
		a.milvus.Close()
	}
	if a.neo4j != nil {
		a.neo4j.Close(ctx)
	}
	_ = mysql.Close()
}
