package driver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const storeFileName = "store.json"

// JSONStorage JSON文件存储实现，所有键保存在同一个文件中
type JSONStorage struct {
	filePath string
	mu       sync.Mutex
	records  map[string]json.RawMessage
}

// NewJSONStorage 创建JSON存储实例
func NewJSONStorage(dir string) (*JSONStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("存储目录为空")
	}

	// 确保存储目录存在
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	s := &JSONStorage{
		filePath: filepath.Join(dir, storeFileName),
		records:  make(map[string]json.RawMessage),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load 读取存储文件，文件不存在视为空存储
func (s *JSONStorage) load() error {
	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	// 文件损坏时移到一边，以空存储继续，由上层回退到默认值
	if err := json.Unmarshal(data, &s.records); err != nil {
		s.records = make(map[string]json.RawMessage)
		return os.Rename(s.filePath, s.filePath+".corrupt")
	}
	return nil
}

// Get 读取键值
func (s *JSONStorage) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.records[key]
	s.mu.Unlock()

	if !ok || len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("解析 %s 失败: %w", key, err)
	}
	return true, nil
}

// Set 写入键值并立即落盘
func (s *JSONStorage) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = raw
	return s.flush()
}

// flush 先写临时文件再重命名，避免写一半的文件
func (s *JSONStorage) flush() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}

	tmp := fmt.Sprintf("%s.%s.tmp", s.filePath, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Location 存储文件路径
func (s *JSONStorage) Location() string {
	return s.filePath
}

// Close 关闭存储
func (s *JSONStorage) Close() error {
	return nil
}
