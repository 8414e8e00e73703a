package qr

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
)

// ErrEmptyContent 没有可生成二维码的内容
var ErrEmptyContent = errors.New("二维码内容为空")

// ErrInvalidColor 颜色格式错误
var ErrInvalidColor = errors.New("无效的颜色")

// Style 二维码样式
type Style struct {
	Foreground string // #rgb / #rrggbb / #rrggbbaa
	Background string
	Size       int // 像素
}

func (s Style) build(text string) (*goqrcode.QRCode, error) {
	if text == "" {
		return nil, ErrEmptyContent
	}

	fg, err := ParseHexColor(s.Foreground)
	if err != nil {
		return nil, err
	}
	bg, err := ParseHexColor(s.Background)
	if err != nil {
		return nil, err
	}

	q, err := goqrcode.New(text, goqrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("生成二维码失败: %w", err)
	}
	q.ForegroundColor = fg
	q.BackgroundColor = bg
	return q, nil
}

// Render 生成 PNG 编码的二维码
func Render(text string, style Style) ([]byte, error) {
	q, err := style.build(text)
	if err != nil {
		return nil, err
	}
	return q.PNG(style.size())
}

// RenderImage 生成二维码图像，用于界面展示
func RenderImage(text string, style Style) (image.Image, error) {
	q, err := style.build(text)
	if err != nil {
		return nil, err
	}
	return q.Image(style.size()), nil
}

func (s Style) size() int {
	if s.Size <= 0 {
		return 512
	}
	return s.Size
}

// ParseHexColor 解析 #rgb、#rrggbb、#rrggbbaa 格式的颜色
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// HexColor 将颜色格式化为 #rrggbb，不透明度不足时为 #rrggbbaa
func HexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}
