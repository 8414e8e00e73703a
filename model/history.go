package model

import (
	"regexp"
	"time"
)

var urlPattern = regexp.MustCompile(`^(https?|ftp)://.*`)

// HistoryEntry 一条解码记录
type HistoryEntry struct {
	Text       string `json:"text"`
	CreateTime int64  `json:"createTime,omitempty"` // 毫秒时间戳，旧数据可能缺失
}

// NewHistoryEntry 创建 at 时刻的解码记录
func NewHistoryEntry(text string, at time.Time) HistoryEntry {
	return HistoryEntry{
		Text:       text,
		CreateTime: at.UnixMilli(),
	}
}

// HasCreateTime 旧格式迁移来的记录没有时间
func (e HistoryEntry) HasCreateTime() bool {
	return e.CreateTime > 0
}

// Created 返回创建时间
func (e HistoryEntry) Created() time.Time {
	return time.UnixMilli(e.CreateTime)
}

// IsURL 文本是否为可打开的链接
func (e HistoryEntry) IsURL() bool {
	return IsURL(e.Text)
}

// IsURL 判断文本是否为 http/https/ftp 链接
func IsURL(text string) bool {
	return urlPattern.MatchString(text)
}

// FormatTime 10 秒以内显示"刚刚"，其余显示年月日时分秒
func FormatTime(t, now time.Time) string {
	if now.Sub(t) < 10*time.Second {
		return "刚刚"
	}
	return t.Format("2006-1-2 15:04:05")
}
