package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServiceConfig 定义了服务自身的基础配置。
type ServiceConfig struct {
	Name     string `yaml:"name"`     // 服务名称 (用于日志与事件标识)
	HTTPAddr string `yaml:"httpAddr"` // HTTP 服务监听地址 (例如: ":8080")
	LogLevel string `yaml:"logLevel"` // 日志级别 (debug/info/warn/error)
}

// RedisConfig 定义了 Redis 数据库的连接配置。
type RedisConfig struct {
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
}

// MongoConfig 定义了 MongoDB 数据库的连接配置。
type MongoConfig struct {
	Address  string `yaml:"address"`  // MongoDB 服务器地址
	Username string `yaml:"username"` // 用户名
	Password string `yaml:"password"` // 密码
	Database string `yaml:"database"` // 数据库名称
}

// MySQLConfig 定义了 MySQL 数据库的连接配置。
type MySQLConfig struct {
	Address         string `yaml:"address"`         // MySQL 服务器地址
	Username        string `yaml:"username"`        // 用户名
	Password        string `yaml:"password"`        // 密码
	Database        string `yaml:"database"`        // 数据库名称
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // 最大打开连接数
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // 最大空闲连接数
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // 连接最大生命周期 (秒)
}

// MilvusConfig 定义了 Milvus 向量数据库的连接配置。
// 三个集合分别承载文本块、实体与关系的向量索引。
type MilvusConfig struct {
	Address                 string `yaml:"address"`                 // Milvus 服务地址
	ChunksCollection        string `yaml:"chunksCollection"`        // 文本块向量集合名称
	EntitiesCollection      string `yaml:"entitiesCollection"`      // 实体向量集合名称
	RelationshipsCollection string `yaml:"relationshipsCollection"` // 关系向量集合名称
	Dim                     int    `yaml:"dim"`                     // 向量维度
}

// Neo4jConfig 定义了 Neo4j 图数据库的连接配置。
type Neo4jConfig struct {
	Uri      string `yaml:"uri"`      // Neo4j 数据库URI (例如: "bolt://localhost:7687")
	Username string `yaml:"username"` // 用户名
	Password string `yaml:"password"` // 密码
	Database string `yaml:"database"` // 数据库名称
}

// MinIOConfig 定义了 MinIO 对象存储的连接配置。
type MinIOConfig struct {
	Enabled   bool   `yaml:"enabled"`   // 是否在文档处理完成后归档源文件
	Endpoint  string `yaml:"endpoint"`  // MinIO 服务端点
	AccessKey string `yaml:"accessKey"` // 访问密钥
	SecretKey string `yaml:"secretKey"` // Secret 密钥
	Bucket    string `yaml:"bucket"`    // 默认存储桶名称
	Secure    bool   `yaml:"secure"`    // 是否使用HTTPS
}

// KafkaConfig 定义了 Kafka 消息队列的连接配置。
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"` // 是否发布文档处理生命周期事件
	Brokers []string `yaml:"brokers"` // Kafka Broker 地址列表
}

// ModelConfig 定义了单个模型的名称与密钥。
type ModelConfig struct {
	Name    string `yaml:"name"`    // 模型名称
	APIKey  string `yaml:"apiKey"`  // API 密钥
	BaseURL string `yaml:"baseURL"` // 自定义服务地址 (可选)
}

// LLMConfig 定义了语言/视觉模型的配置。
type LLMConfig struct {
	Provider    string      `yaml:"provider"`    // 模型提供方: "openai", "ollama", "gemini"
	Model       ModelConfig `yaml:"model"`       // 文本补全模型
	VisionModel ModelConfig `yaml:"visionModel"` // 视觉模型 (为空时退回文本模型)
}

// EmbeddingConfig 定义了向量化模型的配置。
type EmbeddingConfig struct {
	Provider string      `yaml:"provider"` // 模型提供方: "openai", "ollama", "google"
	Model    ModelConfig `yaml:"model"`    // Embedding 模型
}

// ParserConfig 定义了文档解析后端的配置。
type ParserConfig struct {
	Backend       string `yaml:"backend"`       // 解析后端: "mineru" 或 "native"
	MineruBackend string `yaml:"mineruBackend"` // mineru 推理后端 (例如: "pipeline", "vlm-transformers")
	ParseMethod   string `yaml:"parseMethod"`   // 解析方法 (例如: "auto", "ocr", "txt")
	OutputDir     string `yaml:"outputDir"`     // 解析产物输出目录
	Lang          string `yaml:"lang"`          // 文档语言 (OCR 优化用)
	Device        string `yaml:"device"`        // 推理设备 (例如: "cpu", "cuda")
	StartPage     int    `yaml:"startPage"`     // 起始页 (0-based, -1 表示不限)
	EndPage       int    `yaml:"endPage"`       // 结束页 (0-based, -1 表示不限)
	Formula       bool   `yaml:"formula"`       // 是否启用公式解析
	Table         bool   `yaml:"table"`         // 是否启用表格解析
	Source        string `yaml:"source"`        // 模型来源 (例如: "huggingface")
	EnableCache   bool   `yaml:"enableCache"`   // 是否启用解析结果缓存
}

// ContextConfig 定义了多模态内容上下文提取的配置。
type ContextConfig struct {
	Window          int      `yaml:"window"`          // 上下文窗口大小 (页数或块数)
	Mode            string   `yaml:"mode"`            // 寻址模式: "page" 或 "chunk"
	MaxTokens       int      `yaml:"maxTokens"`       // 上下文最大 token 预算
	IncludeHeaders  bool     `yaml:"includeHeaders"`  // 是否保留标题层级标记
	IncludeCaptions bool     `yaml:"includeCaptions"` // 是否纳入图片/表格标题
	FilterTypes     []string `yaml:"filterTypes"`     // 参与上下文的内容类型 (默认仅 "text")
}

// ProcessingConfig 定义了文档处理流水线的配置。
type ProcessingConfig struct {
	ChunkSize      int  `yaml:"chunkSize"`      // 文本分块大小 (token)
	ChunkOverlap   int  `yaml:"chunkOverlap"`   // 文本分块重叠 (token)
	EnableImage    bool `yaml:"enableImage"`    // 是否处理图片内容
	EnableTable    bool `yaml:"enableTable"`    // 是否处理表格内容
	EnableEquation bool `yaml:"enableEquation"` // 是否处理公式内容
}

// BatchConfig 定义了批量处理的配置。
type BatchConfig struct {
	MaxConcurrentFiles  int      `yaml:"maxConcurrentFiles"`  // 同时处理的最大文件数
	SupportedExtensions []string `yaml:"supportedExtensions"` // 支持的文件扩展名列表
	Recursive           bool     `yaml:"recursive"`           // 是否递归处理子目录
	FileTimeoutSeconds  int      `yaml:"fileTimeoutSeconds"`  // 单文件处理超时 (秒, 0 表示不限)
}

// AppConfig 是应用的全局配置。
type AppConfig struct {
	Service    ServiceConfig    `yaml:"service"`
	Redis      RedisConfig      `yaml:"redis"`
	Mongo      MongoConfig      `yaml:"mongo"`
	MySQL      MySQLConfig      `yaml:"mysql"`
	Milvus     MilvusConfig     `yaml:"milvus"`
	Neo4j      Neo4jConfig      `yaml:"neo4j"`
	MinIO      MinIOConfig      `yaml:"minio"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	LLM        LLMConfig        `yaml:"llm"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Parser     ParserConfig     `yaml:"parser"`
	Context    ContextConfig    `yaml:"context"`
	Processing ProcessingConfig `yaml:"processing"`
	Batch      BatchConfig      `yaml:"batch"`
}

// Load 从指定路径读取并解析 YAML 配置文件。
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取配置文件 %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置文件 %s: %w", path, err)
	}
	return cfg, nil
}

// Default 返回一份带有合理默认值的配置。
func Default() *AppConfig {
	return &AppConfig{
		Service: ServiceConfig{
			Name:     "docugraph",
			HTTPAddr: ":8080",
			LogLevel: "info",
		},
		Parser: ParserConfig{
			Backend:       "native",
			MineruBackend: "pipeline",
			ParseMethod:   "auto",
			OutputDir:     "./output",
			StartPage:     -1,
			EndPage:       -1,
			Formula:       true,
			Table:         true,
			Source:        "huggingface",
			EnableCache:   true,
		},
		Context: ContextConfig{
			Window:          1,
			Mode:            "page",
			MaxTokens:       2000,
			IncludeHeaders:  true,
			IncludeCaptions: true,
			FilterTypes:     []string{"text"},
		},
		Processing: ProcessingConfig{
			ChunkSize:      1200,
			ChunkOverlap:   100,
			EnableImage:    true,
			EnableTable:    true,
			EnableEquation: true,
		},
		Batch: BatchConfig{
			MaxConcurrentFiles: 4,
			SupportedExtensions: []string{
				"*.pdf", "*.jpg", "*.jpeg", "*.png", "*.bmp", "*.tiff", "*.tif", "*.gif", "*.webp",
				"*.doc", "*.docx", "*.xls", "*.xlsx",
				"*.txt", "*.md", "*.html", "*.htm",
			},
			Recursive:          true,
			FileTimeoutSeconds: 300,
		},
	}
}
