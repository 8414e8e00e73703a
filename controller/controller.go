package controller

import (
	"errors"
	"image"
	"strings"
	"sync"
	"time"

	"qrtool/debounce"
	"qrtool/model"
	"qrtool/qr"
	"qrtool/state"

	"go.uber.org/zap"
)

// AutoCopyDelay 停止输入后自动复制二维码的等待时间
const AutoCopyDelay = 1000 * time.Millisecond

// Level 提示级别
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// View 界面需要实现的接口，可能在非界面协程中被调用
type View interface {
	SetText(text string)
	ShowHistory(entries []model.HistoryEntry)
	ShowSetting(setting model.Setting)
	Notify(level Level, message string)
}

// Decoder 二维码识别
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// Clipboard 剪贴板读写
type Clipboard interface {
	CopyText(text string) error
	CopyImage(png []byte) error
	ReadText() (string, error)
	ReadImage() (image.Image, error)
}

// Capturer 截屏
type Capturer interface {
	Capture() (image.Image, error)
}

// Opener 打开外部链接
type Opener interface {
	OpenURL(url string) error
}

// Deps 外部能力
type Deps struct {
	Decoder   Decoder
	Clipboard Clipboard
	Screen    Capturer
	Opener    Opener
}

// Controller 处理界面动作、启动参数和解码流程
type Controller struct {
	state    *state.State
	deps     Deps
	log      *zap.Logger
	qrSize   int
	autoCopy *debounce.Debouncer

	mu      sync.Mutex
	view    View
	text   string // 当前文本
	search string // 当前搜索条件
}

// New 创建控制器
func New(st *state.State, deps Deps, log *zap.Logger, qrSize int) *Controller {
	return &Controller{
		state:    st,
		deps:     deps,
		log:      log,
		qrSize:   qrSize,
		autoCopy: debounce.New(AutoCopyDelay),
		view:     nopView{},
	}
}

// Attach 绑定界面并推送初始状态
func (c *Controller) Attach(v View) {
	c.mu.Lock()
	c.view = v
	c.mu.Unlock()

	v.ShowSetting(c.state.Settings.Get())
	c.refreshHistory()
}

func (c *Controller) currentView() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) notify(level Level, message string) {
	c.currentView().Notify(level, message)
}

// Text 当前文本
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Setting 当前设置
func (c *Controller) Setting() model.Setting {
	return c.state.Settings.Get()
}

// Style 按当前设置生成二维码样式
func (c *Controller) Style() qr.Style {
	s := c.state.Settings.Get()
	return qr.Style{
		Foreground: s.QRCodeColor,
		Background: s.QRCodeBgColor,
		Size:       c.qrSize,
	}
}

// setText 程序设置当前文本并同步到界面
func (c *Controller) setText(text string) {
	c.mu.Lock()
	c.text = text
	v := c.view
	c.mu.Unlock()
	v.SetText(text)
}

// TextChanged 用户编辑文本。开启自动复制时，停止输入 1 秒后复制二维码
func (c *Controller) TextChanged(text string) {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()

	c.autoCopy.Cancel()
	if strings.TrimSpace(text) == "" || !c.state.Settings.Get().IsAutoCopyQrcode {
		return
	}

	c.autoCopy.Trigger(func() {
		if err := c.copyQRCode(); err != nil {
			c.log.Warn("自动复制二维码失败", zap.Error(err))
			c.notify(LevelError, "自动复制失败")
			return
		}
		c.notify(LevelSuccess, "自动复制成功")
	})
}

func (c *Controller) copyQRCode() error {
	png, err := qr.Render(c.Text(), c.Style())
	if err != nil {
		return err
	}
	return c.deps.Clipboard.CopyImage(png)
}

// CopyQRCode 复制当前二维码图片
func (c *Controller) CopyQRCode() error {
	if err := c.copyQRCode(); err != nil {
		if errors.Is(err, qr.ErrEmptyContent) {
			c.notify(LevelInfo, "请先输入二维码内容")
		} else {
			c.log.Warn("复制二维码失败", zap.Error(err))
			c.notify(LevelError, "复制失败")
		}
		return err
	}
	c.notify(LevelSuccess, "复制成功")
	return nil
}

// SaveCurrentText 将当前文本保存到记录
func (c *Controller) SaveCurrentText() {
	text := c.Text()
	if strings.TrimSpace(text) == "" {
		c.notify(LevelInfo, "没有可保存的内容")
		return
	}
	if !c.state.Settings.Get().IsSaveHistory {
		c.notify(LevelInfo, "未开启保存解析记录")
		return
	}

	c.state.History.Append(text)
	c.refreshHistory()
	c.notify(LevelSuccess, "已保存到记录")
}

// UpdateSettings 修改设置
func (c *Controller) UpdateSettings(patch model.SettingPatch) model.Setting {
	setting := c.state.UpdateSettings(patch)
	if !setting.IsAutoCopyQrcode {
		c.autoCopy.Cancel()
	}

	c.log.Debug("设置已更新", zap.Any("setting", setting))
	c.currentView().ShowSetting(setting)
	c.refreshHistory()
	return setting
}

// Search 按正则筛选记录
func (c *Controller) Search(pattern string) []model.HistoryEntry {
	c.mu.Lock()
	c.search = pattern
	c.mu.Unlock()
	return c.refreshHistory()
}

// DeleteHistory 删除界面上展示的那条记录。按内容和时间匹配，列表刷新前有新记录插入也不会删错
func (c *Controller) DeleteHistory(entry model.HistoryEntry) error {
	if _, err := c.state.History.Delete(entry); err != nil {
		c.log.Error("删除记录失败", zap.String("text", entry.Text), zap.Error(err))
		return err
	}
	c.refreshHistory()
	return nil
}

// ClearHistory 清空记录
func (c *Controller) ClearHistory() {
	c.state.History.Clear()
	c.refreshHistory()
}

// CopyEntry 复制记录文本
func (c *Controller) CopyEntry(text string) error {
	if err := c.deps.Clipboard.CopyText(text); err != nil {
		c.log.Warn("复制文本失败", zap.Error(err))
		c.notify(LevelError, "复制失败")
		return err
	}
	c.notify(LevelSuccess, "复制成功")
	return nil
}

// OpenEntry 打开记录中的链接
func (c *Controller) OpenEntry(text string) error {
	if !model.IsURL(text) {
		return nil
	}
	if err := c.deps.Opener.OpenURL(text); err != nil {
		c.log.Warn("打开链接失败", zap.String("url", text), zap.Error(err))
		c.notify(LevelError, "打开链接失败")
		return err
	}
	return nil
}

// Close 取消待执行的自动复制
func (c *Controller) Close() {
	c.autoCopy.Cancel()
}

func (c *Controller) refreshHistory() []model.HistoryEntry {
	c.mu.Lock()
	pattern := c.search
	c.mu.Unlock()

	entries := c.state.History.Search(pattern)
	c.currentView().ShowHistory(entries)
	return entries
}

type nopView struct{}

func (nopView) SetText(string)                    {}
func (nopView) ShowHistory([]model.HistoryEntry) {}
func (nopView) ShowSetting(model.Setting)        {}
func (nopView) Notify(Level, string)              {}
