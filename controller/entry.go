package controller

import (
	"fmt"
	"strings"

	"qrtool/model"

	"go.uber.org/zap"
)

// EntryKind 启动方式
type EntryKind string

const (
	EntryText    EntryKind = "text"    // 直接使用文本
	EntryURL     EntryKind = "url"     // 使用链接，为空时读取剪贴板中的链接
	EntryImage   EntryKind = "img"     // base64 图片
	EntryFile    EntryKind = "file"    // 图片文件路径
	EntryKeyword EntryKind = "keyword" // 关键字，扫码/截图时截屏识别
)

var scanKeywords = []string{"扫码", "截图", "scan", "screenshot"}

// Entry 启动时带入的内容
type Entry struct {
	Kind    EntryKind
	Payload string
}

// IsScanKeyword 关键字是否要求截屏识别
func IsScanKeyword(payload string) bool {
	lower := strings.ToLower(payload)
	for _, k := range scanKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Enter 处理启动内容
func (c *Controller) Enter(e Entry) error {
	c.log.Info("处理启动内容", zap.String("kind", string(e.Kind)))

	switch e.Kind {
	case EntryText:
		c.setText(e.Payload)
		return nil
	case EntryURL:
		return c.enterURL(e.Payload)
	case EntryImage:
		_, err := c.DecodePayload(e.Payload)
		return err
	case EntryFile:
		_, err := c.DecodeFile(e.Payload)
		return err
	case EntryKeyword:
		if !IsScanKeyword(e.Payload) {
			return nil
		}
		_, err := c.Scan()
		return err
	default:
		return fmt.Errorf("未知的启动方式: %s", e.Kind)
	}
}

func (c *Controller) enterURL(url string) error {
	c.setText("")
	if url == "" {
		text, err := c.deps.Clipboard.ReadText()
		if err != nil {
			c.log.Warn("读取剪贴板文本失败", zap.Error(err))
		}
		url = strings.TrimSpace(text)
	}

	if !model.IsURL(url) {
		c.notify(LevelInfo, "未获取到链接")
		return nil
	}
	c.setText(url)
	return nil
}
