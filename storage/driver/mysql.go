package driver

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kvRecord 键值表
type kvRecord struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:longtext"`
	UpdatedAt time.Time
}

func (kvRecord) TableName() string {
	return "qrtool_kv"
}

// MySQLStorage MySQL存储实现（使用GORM）
type MySQLStorage struct {
	db *gorm.DB
}

// NewMySQLStorage 创建MySQL存储实例
func NewMySQLStorage(dsn string) (*MySQLStorage, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("无法连接到MySQL数据库: %w", err)
	}
	return NewGormStorage(db)
}

// NewGormStorage 基于已打开的连接创建存储，并迁移表结构
func NewGormStorage(db *gorm.DB) (*MySQLStorage, error) {
	if err := db.AutoMigrate(&kvRecord{}); err != nil {
		return nil, fmt.Errorf("迁移表结构失败: %w", err)
	}
	return &MySQLStorage{db: db}, nil
}

// Get 读取键值
func (s *MySQLStorage) Get(key string, v any) (bool, error) {
	var rec kvRecord
	err := s.db.First(&rec, "`key` = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if rec.Value == "" || rec.Value == "null" {
		return false, nil
	}

	if err := json.Unmarshal([]byte(rec.Value), v); err != nil {
		return true, fmt.Errorf("解析 %s 失败: %w", key, err)
	}
	return true, nil
}

// Set 写入键值，已存在则覆盖
func (s *MySQLStorage) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	rec := kvRecord{Key: key, Value: string(raw), UpdatedAt: time.Now()}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
}

// Location 数据库和表名
func (s *MySQLStorage) Location() string {
	return "MySQL " + s.db.Migrator().CurrentDatabase() + "." + kvRecord{}.TableName()
}

// Close 关闭存储
func (s *MySQLStorage) Close() error {
	// 获取底层sql.DB并关闭
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
