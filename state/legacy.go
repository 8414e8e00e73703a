package state

import (
	"encoding/json"

	"qrtool/model"
	"qrtool/storage"

	"go.uber.org/zap"
)

// LoadHistory 读取解码记录，兼容早期只保存字符串的格式
func LoadHistory(store storage.Storage, log *zap.Logger) []model.HistoryEntry {
	var raw []json.RawMessage
	found, err := store.Get(storage.KeyDecodeHistory, &raw)
	if err != nil {
		log.Warn("解码记录数据损坏，使用空记录", zap.Error(err))
		return []model.HistoryEntry{}
	}
	if !found {
		return []model.HistoryEntry{}
	}

	entries, dropped := normalizeHistory(raw)
	if dropped > 0 {
		log.Info("丢弃无法识别的解码记录", zap.Int("count", dropped))
	}
	return entries
}

// normalizeHistory 字符串记录升级为 {text}，没有文本的记录丢弃
func normalizeHistory(raw []json.RawMessage) ([]model.HistoryEntry, int) {
	entries := make([]model.HistoryEntry, 0, len(raw))
	dropped := 0

	for _, item := range raw {
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			if text == "" {
				dropped++
				continue
			}
			entries = append(entries, model.HistoryEntry{Text: text})
			continue
		}

		var obj struct {
			Text       string          `json:"text"`
			CreateTime json.RawMessage `json:"createTime"`
		}
		if err := json.Unmarshal(item, &obj); err != nil || obj.Text == "" {
			dropped++
			continue
		}

		// 时间格式不识别时按缺失处理，不补当前时间
		entry := model.HistoryEntry{Text: obj.Text}
		var ms float64
		if len(obj.CreateTime) > 0 && json.Unmarshal(obj.CreateTime, &ms) == nil && ms > 0 {
			entry.CreateTime = int64(ms)
		}
		entries = append(entries, entry)
	}
	return entries, dropped
}
