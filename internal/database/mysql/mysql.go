package mysql

import (
	"DocuGraph/internal/config"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var (
	dbInstance *gorm.DB
	once       sync.Once
	initErr    error
)

// GetDB 使用单例模式初始化并返回一个 GORM 数据库实例。
// MySQL 在本系统中持久化批量摄取的运行报告 (ingest_records)。
func GetDB(cfg *config.MySQLConfig) (*gorm.DB, error) {
	once.Do(func() {
		dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.Username,
			cfg.Password,
			cfg.Address,
			cfg.Database,
		)

		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
		if err != nil {
			initErr = fmt.Errorf("无法连接到 MySQL: %w", err)
			return
		}

		// 配置底层连接池。
		sqlDB, err := db.DB()
		if err != nil {
			initErr = fmt.Errorf("无法获取底层 SQL DB 实例: %w", err)
			return
		}
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

		log.Println("✅ 成功连接到 MySQL!")
		dbInstance = db
	})

	return dbInstance, initErr
}

// Close 安全地关闭单例的数据库连接。
func Close() error {
	if dbInstance != nil {
		sqlDB, err := dbInstance.DB()
		if err != nil {
			return fmt.Errorf("获取底层 SQL DB 实例失败: %w", err)
		}
		return sqlDB.Close()
	}
	return nil
}
