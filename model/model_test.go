package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampHistoryCount(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero", 0, 1},
		{"negative", -5, 1},
		{"lower bound", 1, 1},
		{"in range", 42, 42},
		{"upper bound", 100, 100},
		{"above", 101, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampHistoryCount(tt.in))
		})
	}
}

func TestSettingPatch_Apply(t *testing.T) {
	base := DefaultSetting()

	got := SettingPatch{
		IsRemoveDuplicates:  Bool(true),
		SaveHistoryMaxCount: Int(500),
		QRCodeColor:         String("#ff0000"),
	}.Apply(base)

	assert.True(t, got.IsRemoveDuplicates)
	assert.Equal(t, MaxHistoryCount, got.SaveHistoryMaxCount)
	assert.Equal(t, "#ff0000", got.QRCodeColor)
	// 未指定的字段保持不变
	assert.Equal(t, base.IsSaveHistory, got.IsSaveHistory)
	assert.Equal(t, base.QRCodeBgColor, got.QRCodeBgColor)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/a?b=c"))
	assert.True(t, IsURL("ftp://files.example.com"))
	assert.False(t, IsURL("example.com"))
	assert.False(t, IsURL("wxp://f2f1T"))
}

func TestFormatTime(t *testing.T) {
	now := time.Date(2024, 3, 5, 8, 9, 10, 0, time.Local)

	assert.Equal(t, "刚刚", FormatTime(now.Add(-3*time.Second), now))
	assert.Equal(t, "2024-3-5 08:08:10", FormatTime(now.Add(-time.Minute), now))
}

func TestHistoryEntry_CreateTime(t *testing.T) {
	legacy := HistoryEntry{Text: "a"}
	assert.False(t, legacy.HasCreateTime())

	at := time.Date(2024, 3, 5, 8, 9, 10, 0, time.Local)
	e := NewHistoryEntry("b", at)
	assert.True(t, e.HasCreateTime())
	assert.Equal(t, at.UnixMilli(), e.CreateTime)
	assert.True(t, at.Equal(e.Created()))
}
