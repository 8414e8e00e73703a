package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"qrtool/model"
	"qrtool/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore 内存存储，值按 JSON 保存以贴近真实驱动
type memStore struct {
	data   map[string][]byte
	writes map[string]int
	failOn string
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, writes: map[string]int{}}
}

func (m *memStore) Get(key string, v any) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, err
	}
	return true, nil
}

func (m *memStore) Set(key string, v any) error {
	if key == m.failOn {
		return errors.New("disk full")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.writes[key]++
	return nil
}

func (m *memStore) Location() string { return "memory" }

func (m *memStore) Close() error { return nil }

func (m *memStore) put(key, raw string) {
	m.data[key] = []byte(raw)
}

func (m *memStore) history(t *testing.T) []model.HistoryEntry {
	t.Helper()
	var entries []model.HistoryEntry
	_, err := m.Get(storage.KeyDecodeHistory, &entries)
	require.NoError(t, err)
	return entries
}

func texts(entries []model.HistoryEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Text)
	}
	return out
}

func newState(t *testing.T, store *memStore, patch model.SettingPatch) *State {
	t.Helper()
	s := Load(store, zap.NewNop())
	s.UpdateSettings(patch)
	return s
}

func TestLoad_EmptyStorageReturnsDefaults(t *testing.T) {
	s := Load(newMemStore(), zap.NewNop())

	assert.Equal(t, model.DefaultSetting(), s.Settings.Get())
	assert.Empty(t, s.History.Entries())
}

func TestLoadSetting_MergesOverDefaults(t *testing.T) {
	store := newMemStore()
	store.put(storage.KeySetting, `{"isRemoveDuplicates":true,"qrCodeColor":"#123456"}`)

	got := LoadSetting(store, zap.NewNop())

	want := model.DefaultSetting()
	want.IsRemoveDuplicates = true
	want.QRCodeColor = "#123456"
	assert.Equal(t, want, got)
}

func TestLoadSetting_MalformedFallsBackToDefaults(t *testing.T) {
	store := newMemStore()
	store.put(storage.KeySetting, `"not an object"`)

	assert.Equal(t, model.DefaultSetting(), LoadSetting(store, zap.NewNop()))
}

func TestLoadSetting_ClampsStoredCount(t *testing.T) {
	store := newMemStore()
	store.put(storage.KeySetting, `{"saveHistoryMaxCount":0}`)

	assert.Equal(t, 1, LoadSetting(store, zap.NewNop()).SaveHistoryMaxCount)
}

func TestLoadHistory_UpgradesLegacyEntries(t *testing.T) {
	store := newMemStore()
	store.put(storage.KeyDecodeHistory, `["old", {"text":"new","createTime":1700000000000}, {"createTime":1}, "", {"text":"iso","createTime":"2024-01-01"}]`)

	got := LoadHistory(store, zap.NewNop())

	require.Len(t, got, 3)
	assert.Equal(t, model.HistoryEntry{Text: "old"}, got[0])
	assert.False(t, got[0].HasCreateTime())
	assert.Equal(t, model.HistoryEntry{Text: "new", CreateTime: 1700000000000}, got[1])
	assert.Equal(t, model.HistoryEntry{Text: "iso"}, got[2])
}

func TestLoadHistory_MalformedFallsBackToEmpty(t *testing.T) {
	store := newMemStore()
	store.put(storage.KeyDecodeHistory, `{"text":"not an array"}`)

	assert.Empty(t, LoadHistory(store, zap.NewNop()))
}

func TestLoad_TruncatesToCap(t *testing.T) {
	store := newMemStore()
	store.put(storage.KeySetting, `{"saveHistoryMaxCount":2}`)
	store.put(storage.KeyDecodeHistory, `["a","b","c"]`)

	s := Load(store, zap.NewNop())

	assert.Equal(t, []string{"a", "b"}, texts(s.History.Entries()))
	assert.Equal(t, []string{"a", "b"}, texts(store.history(t)))
}

func TestAppend_EvictsOldestBeyondCap(t *testing.T) {
	store := newMemStore()
	s := newState(t, store, model.SettingPatch{SaveHistoryMaxCount: model.Int(3)})

	for _, text := range []string{"a", "b", "c", "d"} {
		s.History.Append(text)
	}

	assert.Equal(t, []string{"d", "c", "b"}, texts(s.History.Entries()))
	assert.Equal(t, []string{"d", "c", "b"}, texts(store.history(t)))
}

func TestAppend_RemovesDuplicates(t *testing.T) {
	store := newMemStore()
	s := newState(t, store, model.SettingPatch{
		SaveHistoryMaxCount: model.Int(20),
		IsRemoveDuplicates:  model.Bool(true),
	})

	s.History.Append("x")
	s.History.Append("y")
	got := s.History.Append("x")

	assert.Equal(t, []string{"x", "y"}, texts(got))
}

func TestAppend_KeepsDuplicatesWhenDisabled(t *testing.T) {
	s := newState(t, newMemStore(), model.SettingPatch{})

	s.History.Append("x")
	got := s.History.Append("x")

	assert.Equal(t, []string{"x", "x"}, texts(got))
}

func TestAppend_InvariantsHoldForEverySequence(t *testing.T) {
	s := newState(t, newMemStore(), model.SettingPatch{
		SaveHistoryMaxCount: model.Int(5),
		IsRemoveDuplicates:  model.Bool(true),
	})

	for i := 0; i < 60; i++ {
		text := fmt.Sprintf("v%d", (i*7)%9)
		got := s.History.Append(text)

		require.LessOrEqual(t, len(got), 5)
		require.Equal(t, text, got[0].Text)

		seen := map[string]bool{}
		for _, e := range got {
			require.False(t, seen[e.Text], "duplicate %q after appending %q", e.Text, text)
			seen[e.Text] = true
		}
	}
}

func TestAppend_NoOps(t *testing.T) {
	store := newMemStore()
	s := newState(t, store, model.SettingPatch{})
	s.History.Append("keep")
	before := s.History.Entries()
	writes := store.writes[storage.KeyDecodeHistory]

	assert.Equal(t, before, s.History.Append(""))

	s.Settings.Update(model.SettingPatch{IsSaveHistory: model.Bool(false)})
	assert.Equal(t, before, s.History.Append("ignored"))

	assert.Equal(t, before, s.History.Entries())
	assert.Equal(t, writes, store.writes[storage.KeyDecodeHistory])
}

func TestAppend_SetsCreateTime(t *testing.T) {
	s := newState(t, newMemStore(), model.SettingPatch{})
	at := time.Date(2024, 3, 5, 8, 9, 10, 0, time.Local)
	s.History.now = func() time.Time { return at }

	got := s.History.Append("x")
	assert.Equal(t, model.NewHistoryEntry("x", at), got[0])
}

// changeSettingsDuringAppend 让下一次 Append 读到旧设置后，另一个协程立刻修改设置
func changeSettingsDuringAppend(t *testing.T, s *State, patch model.SettingPatch, applied func(model.Setting) bool) <-chan struct{} {
	t.Helper()
	done := make(chan struct{})
	read := s.History.setting
	var once sync.Once
	s.History.setting = func() model.Setting {
		snapshot := read()
		once.Do(func() {
			go func() {
				s.UpdateSettings(patch)
				close(done)
			}()
			require.Eventually(t, func() bool { return applied(s.Settings.Get()) }, time.Second, time.Millisecond)
		})
		return snapshot
	}
	return done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("settings update did not finish")
	}
}

func TestAppend_DisablingHistoryMidAppendLeavesLogEmpty(t *testing.T) {
	store := newMemStore()
	s := newState(t, store, model.SettingPatch{})
	done := changeSettingsDuringAppend(t, s, model.SettingPatch{IsSaveHistory: model.Bool(false)},
		func(st model.Setting) bool { return !st.IsSaveHistory })

	s.History.Append("late")
	waitDone(t, done)

	assert.False(t, s.Settings.Get().IsSaveHistory)
	assert.Empty(t, s.History.Entries())
	assert.Empty(t, store.history(t))
}

func TestAppend_LoweringCapMidAppendKeepsCap(t *testing.T) {
	store := newMemStore()
	s := newState(t, store, model.SettingPatch{})
	for _, text := range []string{"a", "b", "c"} {
		s.History.Append(text)
	}
	done := changeSettingsDuringAppend(t, s, model.SettingPatch{SaveHistoryMaxCount: model.Int(2)},
		func(st model.Setting) bool { return st.SaveHistoryMaxCount == 2 })

	s.History.Append("d")
	waitDone(t, done)

	assert.Equal(t, []string{"d", "c"}, texts(s.History.Entries()))
	assert.Equal(t, []string{"d", "c"}, texts(store.history(t)))
}

func TestDeleteAt(t *testing.T) {
	store := newMemStore()
	s := newState(t, store, model.SettingPatch{})
	for _, text := range []string{"a", "b", "c"} {
		s.History.Append(text)
	}

	got, err := s.History.DeleteAt(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, texts(got))
	assert.Equal(t, []string{"c", "a"}, texts(store.history(t)))
}

func TestDeleteAt_OutOfRange(t *testing.T) {
	s := newState(t, newMemStore(), model.SettingPatch{})
	s.History.Append("a")
	before := s.History.Entries()

	for _, index := range []int{-1, 1, 10} {
		_, err := s.History.DeleteAt(index)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
	assert.Equal(t, before, s.History.Entries())
}

func TestDelete_MatchesTextAndTime(t *testing.T) {
	store := newMemStore()
	s := newState(t, store, model.SettingPatch{})
	tick := time.Date(2024, 3, 5, 8, 0, 0, 0, time.Local)
	s.History.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	for _, text := range []string{"a", "b", "a"} {
		s.History.Append(text)
	}
	entries := s.History.Entries()

	// 删除较早的 "a"，同文本的新记录保留
	got, err := s.History.Delete(entries[2])
	require.NoError(t, err)
	assert.Equal(t, entries[:2], got)
	assert.Equal(t, entries[:2], store.history(t))
}

func TestDelete_NotFound(t *testing.T) {
	s := newState(t, newMemStore(), model.SettingPatch{})
	s.History.Append("a")
	before := s.History.Entries()

	_, err := s.History.Delete(model.HistoryEntry{Text: "a"})
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.Equal(t, before, s.History.Entries())
}

func TestClear(t *testing.T) {
	store := newMemStore()
	s := newState(t, store, model.SettingPatch{})
	s.History.Append("a")

	assert.Empty(t, s.History.Clear())
	assert.Empty(t, store.history(t))
	assert.Contains(t, string(store.data[storage.KeyDecodeHistory]), "[]")
}

func TestSearch(t *testing.T) {
	s := newState(t, newMemStore(), model.SettingPatch{})
	for _, text := range []string{"https://a.com", "hello", "https://b.org", "world"} {
		s.History.Append(text)
	}
	all := s.History.Entries()

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"empty pattern", "", texts(all)},
		{"regex", `^https://`, []string{"https://b.org", "https://a.com"}},
		{"plain text", "l", []string{"world", "hello"}},
		{"no match", "zzz", []string{}},
		{"invalid regex", "[unclosed", texts(all)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, texts(s.History.Search(tt.pattern)))
		})
	}
}

func TestUpdateSettings_DisablingHistoryClearsLog(t *testing.T) {
	store := newMemStore()
	s := newState(t, store, model.SettingPatch{})
	s.History.Append("a")
	s.History.Append("b")

	got := s.UpdateSettings(model.SettingPatch{IsSaveHistory: model.Bool(false)})

	assert.False(t, got.IsSaveHistory)
	assert.Empty(t, s.History.Entries())
	assert.Empty(t, store.history(t))

	// 重新开启不会恢复旧记录
	s.UpdateSettings(model.SettingPatch{IsSaveHistory: model.Bool(true)})
	assert.Empty(t, s.History.Entries())
}

func TestUpdateSettings_OtherChangesKeepLog(t *testing.T) {
	s := newState(t, newMemStore(), model.SettingPatch{})
	s.History.Append("a")

	s.UpdateSettings(model.SettingPatch{QRCodeColor: model.String("#ff0000")})
	assert.Equal(t, []string{"a"}, texts(s.History.Entries()))
}

func TestUpdateSettings_LoweringCapTruncates(t *testing.T) {
	s := newState(t, newMemStore(), model.SettingPatch{})
	for _, text := range []string{"a", "b", "c"} {
		s.History.Append(text)
	}

	s.UpdateSettings(model.SettingPatch{SaveHistoryMaxCount: model.Int(2)})
	assert.Equal(t, []string{"c", "b"}, texts(s.History.Entries()))
}

func TestUpdateSettings_ClampsAndPersists(t *testing.T) {
	store := newMemStore()
	s := Load(store, zap.NewNop())

	got := s.UpdateSettings(model.SettingPatch{SaveHistoryMaxCount: model.Int(1000)})
	assert.Equal(t, 100, got.SaveHistoryMaxCount)

	got = s.UpdateSettings(model.SettingPatch{SaveHistoryMaxCount: model.Int(0)})
	assert.Equal(t, 1, got.SaveHistoryMaxCount)

	var stored model.Setting
	found, err := store.Get(storage.KeySetting, &stored)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, got, stored)
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	store := newMemStore()
	store.failOn = storage.KeyDecodeHistory
	s := newState(t, store, model.SettingPatch{})

	got := s.History.Append("a")
	assert.Equal(t, []string{"a"}, texts(got))
	assert.Empty(t, store.history(t))
}
