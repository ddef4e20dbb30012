package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const DocumentEventTopic = "document_events"

// 文档处理生命周期事件类型。
const (
	EventDocumentStarted   = "document_started"
	EventDocumentCompleted = "document_completed"
	EventDocumentFailed    = "document_failed"
	EventBatchCompleted    = "batch_completed"
)

// DocumentEvent 描述文档处理流水线中发生的一次状态变更。
type DocumentEvent struct {
	EventType string    `json:"event_type"`
	DocID     string    `json:"doc_id,omitempty"`
	FilePath  string    `json:"file_path,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher 封装了向 Kafka 发送文档处理事件的逻辑。
type EventPublisher struct {
	writer *kafka.Writer
}

// NewEventPublisher 创建一个新的 EventPublisher 实例。
func NewEventPublisher(client *KafkaClient) *EventPublisher {
	// 为事件主题创建一个新的 writer 实例配置
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      client.Config.Brokers,
		Topic:        DocumentEventTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	})
	return &EventPublisher{writer: writer}
}

// Publish 将 DocumentEvent 序列化为 JSON 并发送到 Kafka。
func (p *EventPublisher) Publish(ctx context.Context, event *DocumentEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	key := event.DocID
	if key == "" {
		key = event.RunID
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: jsonData,
	})
	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close 关闭底层的 writer 连接。
func (p *EventPublisher) Close() error {
	return p.writer.Close()
}
