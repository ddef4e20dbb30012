package redis

import (
	"DocuGraph/internal/config"
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
)

var (
	client  *redis.Client
	once    sync.Once
	initErr error
)

// GetClient 使用单例模式初始化并返回一个 Redis 客户端实例。
// Redis 在本系统中承载文档解析结果缓存 (KVStore)。
func GetClient(cfg *config.RedisConfig) (*redis.Client, error) {
	once.Do(func() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		// 使用 Ping 检查连接是否成功。
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			initErr = fmt.Errorf("无法连接到 Redis: %w", err)
			return
		}

		log.Println("✅ 成功连接到 Redis!")
		client = rdb
	})

	return client, initErr
}

// Close 安全地关闭单例的 Redis 连接。
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}
