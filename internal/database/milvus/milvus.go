package milvus

import (
	"DocuGraph/internal/config"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

var (
	instance *MilvusClient
	once     sync.Once
	initErr  error
)

// MilvusClient 包含了 Milvus 客户端实例和相关配置。
// 所有向量集合共享同一套 Schema: id (VarChar, PK) / content (VarChar) / embedding (FloatVector)。
type MilvusClient struct {
	Client client.Client        // Milvus 客户端实例。
	Config *config.MilvusConfig // Milvus 配置。
}

// GetClient 使用单例模式创建并返回一个 Milvus 客户端实例。
func GetClient(ctx context.Context, cfg *config.MilvusConfig) (*MilvusClient, error) {
	once.Do(func() {
		// 使用配置中的地址创建 Milvus 客户端。
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
		if err != nil {
			initErr = fmt.Errorf("无法连接到 Milvus: %w", err)
			return
		}
		log.Println("✅ 成功连接到 Milvus!")
		instance = &MilvusClient{Client: c, Config: cfg}
	})
	return instance, initErr
}

// Close 安全地关闭与 Milvus 的连接。
func (c *MilvusClient) Close() {
	if c.Client != nil {
		c.Client.Close()
		log.Println("ℹ️ 已安全关闭 Milvus 连接。")
	}
}

// HealthCheck 检查 Milvus 连接的健康状况。
func (c *MilvusClient) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("Milvus client is nil")
	}
	_, err := c.Client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("Milvus health check failed: %w", err)
	}
	return nil
}

// EnsureCollection 确保指定的集合存在，不存在时按统一 Schema 创建并建立索引。
func (c *MilvusClient) EnsureCollection(ctx context.Context, collName string) error {
	exists, err := c.Client.HasCollection(ctx, collName)
	if err != nil {
		return fmt.Errorf("检查集合是否存在时出错: %w", err)
	}
	if !exists {
		schema := entity.NewSchema().
			WithName(collName).
			WithField(entity.NewField().WithName("id").
				WithDataType(entity.FieldTypeVarChar).WithMaxLength(128).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName("content").
				WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
			WithField(entity.NewField().WithName("embedding").
				WithDataType(entity.FieldTypeFloatVector).WithDim(int64(c.Config.Dim)))

		if err := c.Client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("创建集合 '%s' 失败: %w", collName, err)
		}

		idx, err := entity.NewIndexIvfFlat(entity.COSINE, 128)
		if err != nil {
			return fmt.Errorf("构建索引失败: %w", err)
		}
		if err := c.Client.CreateIndex(ctx, collName, "embedding", idx, false); err != nil {
			return fmt.Errorf("为集合 '%s' 创建索引失败: %w", collName, err)
		}
		log.Printf("✅ 成功创建集合: %s", collName)
	}

	if err := c.Client.LoadCollection(ctx, collName, false); err != nil {
		return fmt.Errorf("加载 Milvus 集合 '%s' 失败: %w", collName, err)
	}
	return nil
}

// Upsert 将一批记录写入指定集合，主键相同的记录会被覆盖。
func (c *MilvusClient) Upsert(ctx context.Context, collName string, ids, contents []string, vectors [][]float32) error {
	if len(ids) != len(contents) || len(ids) != len(vectors) {
		return fmt.Errorf("mismatch between ids (%d), contents (%d) and vectors (%d)",
			len(ids), len(contents), len(vectors))
	}
	if len(ids) == 0 {
		return nil
	}

	idCol := entity.NewColumnVarChar("id", ids)
	contentCol := entity.NewColumnVarChar("content", contents)
	vectorCol := entity.NewColumnFloatVector("embedding", len(vectors[0]), vectors)

	if _, err := c.Client.Upsert(ctx, collName, "", idCol, contentCol, vectorCol); err != nil {
		return fmt.Errorf("failed to upsert data into Milvus: %w", err)
	}
	return nil
}

// SearchHit 是一次向量检索命中的结果。
type SearchHit struct {
	ID      string
	Content string
	Score   float32
}

// Search 在指定集合中执行向量相似度检索，返回 topK 个最相近的记录。
func (c *MilvusClient) Search(ctx context.Context, collName string, vector []float32, topK int) ([]SearchHit, error) {
	sp, _ := entity.NewIndexIvfFlatSearchParam(10)
	searchVectors := []entity.Vector{entity.FloatVector(vector)}

	results, err := c.Client.Search(
		ctx,
		collName,
		nil,
		"",
		[]string{"id", "content"},
		searchVectors,
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("在集合 '%s' 中搜索失败: %w", collName, err)
	}

	var hits []SearchHit
	for _, result := range results {
		var idCol *entity.ColumnVarChar
		var contentCol *entity.ColumnVarChar
		for _, field := range result.Fields {
			switch field.Name() {
			case "id":
				idCol, _ = field.(*entity.ColumnVarChar)
			case "content":
				contentCol, _ = field.(*entity.ColumnVarChar)
			}
		}
		if idCol == nil {
			continue
		}
		for i := 0; i < result.ResultCount; i++ {
			id, err := idCol.ValueByIdx(i)
			if err != nil {
				continue
			}
			hit := SearchHit{ID: id, Score: result.Scores[i]}
			if contentCol != nil {
				hit.Content, _ = contentCol.ValueByIdx(i)
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// DeleteByIDs 按主键删除指定集合中的记录。
func (c *MilvusClient) DeleteByIDs(ctx context.Context, collName string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", id)
	}
	expr := fmt.Sprintf("id in [%s]", strings.Join(quoted, ", "))
	if err := c.Client.Delete(ctx, collName, "", expr); err != nil {
		return fmt.Errorf("failed to delete data from Milvus: %w", err)
	}
	return nil
}

// FlushCollection 手动触发一次刷新操作，将内存中的数据写入磁盘。
func (c *MilvusClient) FlushCollection(ctx context.Context, collName string) error {
	if err := c.Client.Flush(ctx, collName, false); err != nil {
		return fmt.Errorf("刷新集合 '%s' 失败: %w", collName, err)
	}
	return nil
}

// DropCollection 删除整个集合。
func (c *MilvusClient) DropCollection(ctx context.Context, collName string) error {
	if err := c.Client.DropCollection(ctx, collName); err != nil {
		return fmt.Errorf("删除集合 '%s' 失败: %w", collName, err)
	}
	log.Printf("✅ 成功删除集合: %s", collName)
	return nil
}
