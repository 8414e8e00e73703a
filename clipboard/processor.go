package clipboard

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"

	atotto "github.com/atotto/clipboard"
	"go.uber.org/zap"
	"golang.design/x/clipboard"
)

// 预定义错误变量
var (
	ErrNoImageData      = errors.New("剪贴板中没有图片数据")
	ErrImageUnsupported = errors.New("当前环境不支持图片剪贴板")
)

// Processor 剪贴板读写
type Processor struct {
	log    *zap.Logger
	native bool // golang.design/x/clipboard 初始化成功

	mu      sync.Mutex
	written string // 最近一次本程序写入的图片哈希
}

// NewProcessor 初始化剪贴板。系统剪贴板不可用时文本退回 atotto 实现，图片不可用
func NewProcessor(log *zap.Logger) *Processor {
	p := &Processor{log: log, native: true}
	if err := clipboard.Init(); err != nil {
		log.Warn("剪贴板初始化失败，文本复制改用命令行工具", zap.Error(err))
		p.native = false
	}
	return p
}

// CopyText 复制文本
func (p *Processor) CopyText(text string) error {
	if !p.native {
		return atotto.WriteAll(text)
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// ReadText 读取剪贴板文本
func (p *Processor) ReadText() (string, error) {
	if !p.native {
		return atotto.ReadAll()
	}
	return string(clipboard.Read(clipboard.FmtText)), nil
}

// CopyImage 复制 PNG 图片
func (p *Processor) CopyImage(data []byte) error {
	if !p.native {
		return ErrImageUnsupported
	}
	if len(data) == 0 {
		return ErrNoImageData
	}
	p.mu.Lock()
	p.written = imageID(data)
	p.mu.Unlock()

	clipboard.Write(clipboard.FmtImage, data)
	p.log.Debug("图片已写入剪贴板", zap.Int("bytes", len(data)))
	return nil
}

// ReadImage 读取剪贴板中的图片
func (p *Processor) ReadImage() (image.Image, error) {
	if !p.native {
		return nil, ErrImageUnsupported
	}

	data := clipboard.Read(clipboard.FmtImage)
	if len(data) == 0 {
		return nil, ErrNoImageData
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("图片解码失败: %w", err)
	}
	return img, nil
}

// Native 系统剪贴板是否可用
func (p *Processor) Native() bool {
	return p.native
}

// ownImage 判断图片是否为本程序刚写入的
func (p *Processor) ownImage(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return id == p.written
}

// 图片内容哈希作为唯一标识
func imageID(data []byte) string {
	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:])
}
