package state

import (
	"sync"

	"qrtool/model"
	"qrtool/storage"

	"go.uber.org/zap"
)

// State 应用状态，由组合根创建并传给各组件。所有修改都经过具名方法，保证写回存储集中在一处
type State struct {
	mu       sync.Mutex
	Settings *Settings
	History  *History
}

// Load 从存储加载设置与解码记录，并挂上写回钩子
func Load(store storage.Storage, log *zap.Logger) *State {
	setting := LoadSetting(store, log)
	entries := LoadHistory(store, log)

	s := &State{}
	s.Settings = NewSettings(setting, persist[model.Setting](store, log, storage.KeySetting))
	s.History = NewHistory(entries, s.Settings.Get, persist[[]model.HistoryEntry](store, log, storage.KeyDecodeHistory))

	// 启动时按当前上限裁剪
	s.History.Truncate(s.Settings.Get().SaveHistoryMaxCount)

	log.Info("状态加载完成",
		zap.Bool("saveHistory", setting.IsSaveHistory),
		zap.Int("maxCount", setting.SaveHistoryMaxCount),
		zap.Int("history", s.History.Len()),
	)
	return s
}

// UpdateSettings 更新设置。关闭"保存解析记录"时同时清空记录；调小上限时裁剪记录
func (s *State) UpdateSettings(patch model.SettingPatch) model.Setting {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.Settings.Get()
	after := s.Settings.Update(patch)

	if before.IsSaveHistory && !after.IsSaveHistory {
		s.History.Clear()
	} else if after.SaveHistoryMaxCount < before.SaveHistoryMaxCount {
		s.History.Truncate(after.SaveHistoryMaxCount)
	}
	return after
}

// persist 返回写回钩子，写入失败只记录日志
func persist[T any](store storage.Storage, log *zap.Logger, key string) func(T) {
	return func(v T) {
		if err := store.Set(key, v); err != nil {
			log.Error("写入存储失败", zap.String("key", key), zap.Error(err))
		}
	}
}
