package mongo

import (
	"DocuGraph/internal/config"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

var (
	client  *mongo.Client
	once    sync.Once
	initErr error
)

// GetClient 使用单例模式初始化并返回一个 MongoDB 客户端实例。
// MongoDB 在本系统中承载文本块存储 (chunks) 与文档处理状态 (document_status)。
func GetClient(cfg *config.MongoConfig) (*mongo.Client, error) {
	once.Do(func() {
		clientOptions := options.Client().ApplyURI(cfg.Address)
		if cfg.Username != "" && cfg.Password != "" {
			clientOptions.SetAuth(options.Credential{
				Username: cfg.Username,
				Password: cfg.Password,
			})
		}

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		c, err := mongo.Connect(ctx, clientOptions)
		if err != nil {
			initErr = fmt.Errorf("无法连接到 MongoDB: %w", err)
			return
		}

		// Ping 检查连接是否成功。
		if err = c.Ping(ctx, nil); err != nil {
			initErr = fmt.Errorf("无法 Ping MongoDB: %w", err)
			return
		}

		log.Println("✅ 成功连接到 MongoDB!")
		client = c
	})

	return client, initErr
}

// Close 安全地断开单例的 MongoDB 客户端连接。
func Close(ctx context.Context) error {
	if client != nil {
		return client.Disconnect(ctx)
	}
	return nil
}
