package clipboard

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"

	"go.uber.org/zap"
	"golang.design/x/clipboard"
)

// Monitor 监听剪贴板中的新图片
type Monitor struct {
	processor *Processor
	log       *zap.Logger
	changes   chan image.Image

	mu        sync.Mutex
	cancel    context.CancelFunc
	lastImage string // 上次图片哈希
}

// NewMonitor 创建剪贴板监听器
func NewMonitor(p *Processor, log *zap.Logger) *Monitor {
	return &Monitor{
		processor: p,
		log:       log,
		changes:   make(chan image.Image, 1),
	}
}

// Start 开始监听剪贴板图片变化
func (m *Monitor) Start() error {
	if !m.processor.Native() {
		return ErrImageUnsupported
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return errors.New("监控器已在运行中")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	// 每次启动使用新通道，上一轮的通道由其监听协程关闭
	out := make(chan image.Image, 1)
	m.changes = out
	go m.forward(clipboard.Watch(ctx, clipboard.FmtImage), out)
	return nil
}

// forward 转发新图片，in 关闭后关闭 out
func (m *Monitor) forward(in <-chan []byte, out chan image.Image) {
	defer close(out)
	for data := range in {
		m.handleImage(out, data)
	}
	m.log.Info("剪贴板监听退出")
}

// Stop 停止监听
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.cancel = nil
}

// Changes 新图片通知通道，Stop 后关闭
func (m *Monitor) Changes() <-chan image.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.changes
}

func (m *Monitor) handleImage(out chan<- image.Image, data []byte) {
	if len(data) == 0 {
		return
	}

	id := imageID(data)

	// 忽略自己复制出去的二维码
	if m.processor.ownImage(id) {
		return
	}

	m.mu.Lock()
	if id == m.lastImage {
		m.mu.Unlock()
		return
	}
	m.lastImage = id
	m.mu.Unlock()

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		m.log.Warn("剪贴板图片解码失败", zap.Error(err))
		return
	}

	// 通道满时丢弃，只保留待处理的一张
	select {
	case out <- img:
		m.log.Debug("检测到剪贴板图片", zap.String("id", id))
	default:
		m.log.Debug("通知通道已满，丢弃图片", zap.String("id", id))
	}
}
