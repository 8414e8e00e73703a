package storage

import (
	"fmt"

	"qrtool/config"
	"qrtool/storage/driver"
)

// NewStorage 根据配置创建存储实例
func NewStorage(cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case config.StorageTypeJSON:
		return driver.NewJSONStorage(cfg.JSONPath)
	case config.StorageTypeMySQL:
		return driver.NewMySQLStorage(cfg.MySQL.DSN())
	default:
		return nil, fmt.Errorf("不支持的存储类型: %s", cfg.Type)
	}
}
