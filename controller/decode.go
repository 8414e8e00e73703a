package controller

import (
	"errors"
	"fmt"
	"image"

	"qrtool/clipboard"
	"qrtool/qr"

	"go.uber.org/zap"
)

// 解码结果错误
var (
	ErrNotFound     = errors.New("未识别到二维码")
	ErrDecodeFailed = errors.New("二维码解析出错")
)

// Decode 识别图像中的二维码：成功时更新当前文本，按设置自动复制并写入记录。
// 失败只提示，不修改记录，也不重试
func (c *Controller) Decode(img image.Image) (string, error) {
	return c.decode(img, false)
}

// DecodeWatched 识别剪贴板监听到的图片，没有二维码时不提示
func (c *Controller) DecodeWatched(img image.Image) (string, error) {
	return c.decode(img, true)
}

func (c *Controller) decode(img image.Image, quiet bool) (string, error) {
	text, err := c.deps.Decoder.Decode(img)
	if err != nil {
		c.log.Warn("二维码解析出错", zap.Error(err))
		if !quiet {
			c.notify(LevelError, "解析二维码出错")
		}
		return "", fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	if text == "" {
		if !quiet {
			c.notify(LevelError, "未识别到二维码")
		}
		return "", ErrNotFound
	}

	c.setText(text)
	setting := c.state.Settings.Get()

	message := "解析成功"
	if setting.IsAutoCopyCode {
		if err := c.deps.Clipboard.CopyText(text); err != nil {
			c.log.Warn("自动复制解析结果失败", zap.Error(err))
			message = "解析成功，自动复制失败"
		} else {
			message = "解析成功，自动复制成功"
		}
	}

	if setting.IsSaveHistory {
		c.state.History.Append(text)
		c.refreshHistory()
	}

	c.log.Info("二维码解析成功", zap.Int("length", len(text)))
	c.notify(LevelSuccess, message)
	return text, nil
}

// DecodeFile 读取图片文件并识别
func (c *Controller) DecodeFile(path string) (string, error) {
	img, err := qr.LoadImage(path)
	if err != nil {
		c.log.Warn("读取图片失败", zap.String("path", path), zap.Error(err))
		c.notify(LevelError, "读取图片失败")
		return "", err
	}
	return c.Decode(img)
}

// DecodePayload 识别 base64 编码的图片
func (c *Controller) DecodePayload(payload string) (string, error) {
	img, err := qr.ParsePayload(payload)
	if err != nil {
		c.log.Warn("图片数据无效", zap.Error(err))
		c.notify(LevelError, "图片数据无效")
		return "", err
	}
	return c.Decode(img)
}

// Scan 截屏并识别
func (c *Controller) Scan() (string, error) {
	img, err := c.deps.Screen.Capture()
	if err != nil {
		c.log.Warn("截屏失败", zap.Error(err))
		c.notify(LevelError, "截屏失败")
		return "", err
	}
	return c.Decode(img)
}

// PasteImage 识别剪贴板中的图片
func (c *Controller) PasteImage() (string, error) {
	img, err := c.deps.Clipboard.ReadImage()
	if err != nil {
		if errors.Is(err, clipboard.ErrNoImageData) {
			c.notify(LevelInfo, "剪贴板中没有图片")
		} else {
			c.log.Warn("读取剪贴板图片失败", zap.Error(err))
			c.notify(LevelError, "读取剪贴板图片失败")
		}
		return "", err
	}
	return c.Decode(img)
}
