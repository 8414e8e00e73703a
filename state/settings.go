package state

import (
	"sync"

	"qrtool/model"
	"qrtool/storage"

	"go.uber.org/zap"
)

// Settings 设置模型，每次修改后通过 onChange 写回存储
type Settings struct {
	mu       sync.RWMutex
	current  model.Setting
	onChange func(model.Setting)
}

// NewSettings 创建设置模型
func NewSettings(initial model.Setting, onChange func(model.Setting)) *Settings {
	initial.SaveHistoryMaxCount = model.ClampHistoryCount(initial.SaveHistoryMaxCount)
	return &Settings{
		current:  initial,
		onChange: onChange,
	}
}

// LoadSetting 读取持久化的设置并逐字段覆盖默认值；读取失败时返回默认值
func LoadSetting(store storage.Storage, log *zap.Logger) model.Setting {
	setting := model.DefaultSetting()

	// 反序列化到已填充默认值的结构体上，缺失的字段保留默认值
	loaded := setting
	found, err := store.Get(storage.KeySetting, &loaded)
	if err != nil {
		log.Warn("设置数据损坏，使用默认设置", zap.Error(err))
		return setting
	}
	if !found {
		return setting
	}

	loaded.SaveHistoryMaxCount = model.ClampHistoryCount(loaded.SaveHistoryMaxCount)
	return loaded
}

// Get 返回当前设置
func (s *Settings) Get() model.Setting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update 合并补丁、限制条数范围并写回存储
func (s *Settings) Update(patch model.SettingPatch) model.Setting {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = patch.Apply(s.current)
	if s.onChange != nil {
		s.onChange(s.current)
	}
	return s.current
}
