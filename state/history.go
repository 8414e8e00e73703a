package state

import (
	"errors"
	"regexp"
	"sync"
	"time"

	"qrtool/model"
)

// 删除记录错误
var (
	ErrIndexOutOfRange = errors.New("history index out of range")
	ErrEntryNotFound   = errors.New("history entry not found")
)

// History 解码记录，最新的在最前面
type History struct {
	mu       sync.RWMutex
	entries  []model.HistoryEntry
	setting  func() model.Setting
	onChange func([]model.HistoryEntry)
	now      func() time.Time
}

// NewHistory 创建解码记录，setting 返回当前设置
func NewHistory(entries []model.HistoryEntry, setting func() model.Setting, onChange func([]model.HistoryEntry)) *History {
	return &History{
		entries:  clone(entries),
		setting:  setting,
		onChange: onChange,
		now:      time.Now,
	}
}

// Entries 返回记录副本
func (h *History) Entries() []model.HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return clone(h.entries)
}

// Len 记录条数
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Append 在最前面插入一条记录。空文本或未开启保存时不做任何修改
func (h *History) Append(text string) []model.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	// 持锁后再读设置，与 State.UpdateSettings 的清空和裁剪串行
	setting := h.setting()

	if text == "" || !setting.IsSaveHistory {
		return clone(h.entries)
	}

	next := make([]model.HistoryEntry, 0, len(h.entries)+1)
	next = append(next, model.NewHistoryEntry(text, h.now()))
	for _, e := range h.entries {
		if setting.IsRemoveDuplicates && e.Text == text {
			continue
		}
		next = append(next, e)
	}

	if limit := model.ClampHistoryCount(setting.SaveHistoryMaxCount); len(next) > limit {
		next = next[:limit]
	}

	return h.replace(next)
}

// DeleteAt 删除指定下标的记录
func (h *History) DeleteAt(index int) ([]model.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if index < 0 || index >= len(h.entries) {
		return clone(h.entries), ErrIndexOutOfRange
	}

	next := make([]model.HistoryEntry, 0, len(h.entries)-1)
	next = append(next, h.entries[:index]...)
	next = append(next, h.entries[index+1:]...)
	return h.replace(next), nil
}

// Delete 删除与 entry 文本和时间都相同的第一条记录
func (h *History) Delete(entry model.HistoryEntry) ([]model.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, e := range h.entries {
		if e == entry {
			next := make([]model.HistoryEntry, 0, len(h.entries)-1)
			next = append(next, h.entries[:i]...)
			next = append(next, h.entries[i+1:]...)
			return h.replace(next), nil
		}
	}
	return clone(h.entries), ErrEntryNotFound
}

// Clear 清空记录
func (h *History) Clear() []model.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.replace([]model.HistoryEntry{})
}

// Truncate 保留前 limit 条，条数未超出时不写存储
func (h *History) Truncate(limit int) []model.HistoryEntry {
	limit = model.ClampHistoryCount(limit)

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) <= limit {
		return clone(h.entries)
	}
	return h.replace(clone(h.entries[:limit]))
}

// Search 按正则过滤记录并保持原顺序。空模式或非法正则返回全部记录
func (h *History) Search(pattern string) []model.HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var re *regexp.Regexp
	if pattern != "" {
		// 输入过程中的非法正则不报错，按未筛选处理
		re, _ = regexp.Compile(pattern)
	}

	entries := make([]model.HistoryEntry, 0, len(h.entries))
	for _, e := range h.entries {
		if re != nil && !re.MatchString(e.Text) {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// replace 整体替换并写回存储，调用方需持有写锁
func (h *History) replace(next []model.HistoryEntry) []model.HistoryEntry {
	h.entries = next
	if h.onChange != nil {
		h.onChange(clone(next))
	}
	return clone(next)
}

func clone(entries []model.HistoryEntry) []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(entries))
	copy(out, entries)
	return out
}
