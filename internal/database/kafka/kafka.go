package kafka

import (
	"DocuGraph/internal/config"
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaClient 持有 Kafka writer 的单例实例。
type KafkaClient struct {
	Writer *kafka.Writer
	Conn   *kafka.Conn // 用于管理的连接
	Config *config.KafkaConfig
}

var (
	client  *KafkaClient
	once    sync.Once
	initErr error
)

// GetClient 使用单例模式初始化并返回一个 KafkaClient 实例。
// 首次调用时，它会连接到 Kafka 并自动创建事件主题。
func GetClient(cfg *config.KafkaConfig) (*KafkaClient, error) {
	once.Do(func() {
		if len(cfg.Brokers) == 0 {
			initErr = fmt.Errorf("未配置 Kafka brokers")
			return
		}

		// 1. 建立管理连接
		conn, err := kafka.Dial("tcp", cfg.Brokers[0])
		if err != nil {
			initErr = fmt.Errorf("kafka 初始化连接失败: %w", err)
			return
		}

		// 2. 检查事件主题是否存在，不存在则创建
		partitions, err := conn.ReadPartitions()
		if err != nil {
			initErr = fmt.Errorf("无法读取 Kafka 分区信息: %w", err)
			conn.Close()
			return
		}
		exists := false
		for _, p := range partitions {
			if p.Topic == DocumentEventTopic {
				exists = true
				break
			}
		}
		if !exists {
			log.Printf("主题 '%s' 不存在，准备创建...", DocumentEventTopic)
			err = conn.CreateTopics(kafka.TopicConfig{
				Topic:             DocumentEventTopic,
				NumPartitions:     1, // 使用默认值
				ReplicationFactor: 1, // 使用默认值
			})
			if err != nil {
				initErr = fmt.Errorf("自动创建 Kafka 主题失败: %w", err)
				conn.Close()
				return
			}
		}

		// 3. 创建用于生产的 Writer
		writer := &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		}

		log.Println("✅ 成功初始化 Kafka 客户端!")
		client = &KafkaClient{Writer: writer, Conn: conn, Config: cfg}
	})

	return client, initErr
}

// Close 安全地关闭单例的 Kafka 连接。
func (c *KafkaClient) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Writer != nil {
		if err := c.Writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("关闭 Kafka writer 失败: %w", err))
		}
	}
	if c.Conn != nil {
		if err := c.Conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("关闭 Kafka 管理连接失败: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("关闭 Kafka 客户端时发生多个错误: %v", errs)
	}
	return nil
}

// HealthCheck 检查 Kafka 连接的健康状况。
func (c *KafkaClient) HealthCheck(ctx context.Context) error {
	if c == nil || c.Conn == nil {
		return fmt.Errorf("kafka 客户端未初始化，无法进行健康检查")
	}
	_, err := c.Conn.Controller()
	return err
}

// GetControllerInfo 返回 Kafka 控制器的信息。
func (c *KafkaClient) GetControllerInfo() (string, error) {
	if c == nil || c.Conn == nil {
		return "", fmt.Errorf("kafka 客户端未初始化")
	}
	controller, err := c.Conn.Controller()
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)), nil
}
