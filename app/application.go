package app

import (
	"errors"
	"fmt"

	"qrtool/clipboard"
	"qrtool/config"
	"qrtool/controller"
	"qrtool/host"
	"qrtool/logger"
	"qrtool/qr"
	"qrtool/state"
	"qrtool/storage"
	"qrtool/ui"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"
)

const appID = "com.qrtool.desktop"

// Application 应用程序核心
type Application struct {
	fyneApp fyne.App
	config  *config.AppConfig
	log     *zap.Logger
	storage storage.Storage
	monitor *clipboard.Monitor
	ctrl    *controller.Controller
	window  *ui.Window
	entry   *controller.Entry
}

// New 创建应用实例。entry 为启动时带入的内容，可以为空
func New(configPath string, entry *controller.Entry) (*Application, error) {
	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	log := logger.New(cfg.Log)

	// 创建存储
	store, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		log.Error("创建存储失败", zap.String("type", string(cfg.Storage.Type)), zap.Error(err))
		return nil, err
	}

	st := state.Load(store, log)
	processor := clipboard.NewProcessor(log)

	ctrl := controller.New(st, controller.Deps{
		Decoder:   qr.NewDecoder(),
		Clipboard: processor,
		Screen:    host.Screen{},
		Opener:    host.Opener{},
	}, log, cfg.QRSize)

	// 初始化Fyne应用
	fyneApp := app.NewWithID(appID)

	a := &Application{
		fyneApp: fyneApp,
		config:  cfg,
		log:     log,
		storage: store,
		monitor: clipboard.NewMonitor(processor, log),
		ctrl:    ctrl,
		entry:   entry,
	}

	// 创建主窗口
	a.window = ui.NewWindow(fyneApp, ctrl, cfg, store.Location(), log)
	ctrl.Attach(a.window)

	if cfg.WatchClipboard {
		a.setupClipboardListener()
	}

	return a, nil
}

// Run 运行应用
func (a *Application) Run() {
	if a.entry != nil {
		entry := *a.entry
		go func() {
			if err := a.ctrl.Enter(entry); err != nil {
				a.log.Warn("处理启动内容失败", zap.String("kind", string(entry.Kind)), zap.Error(err))
			}
		}()
	}

	a.window.ShowAndRun()

	a.monitor.Stop()
	a.ctrl.Close()
	if err := a.storage.Close(); err != nil {
		a.log.Error("关闭存储失败", zap.Error(err))
	}
	a.log.Info("应用退出")
	_ = a.log.Sync()
}

// 监听剪贴板图片，出现新图片时自动识别
func (a *Application) setupClipboardListener() {
	if err := a.monitor.Start(); err != nil {
		if errors.Is(err, clipboard.ErrImageUnsupported) {
			a.log.Warn("当前环境不支持监听剪贴板图片")
			return
		}
		a.log.Error("启动剪贴板监控失败", zap.Error(err))
		return
	}

	go func() {
		for img := range a.monitor.Changes() {
			if _, err := a.ctrl.DecodeWatched(img); err != nil {
				a.log.Debug("剪贴板图片未识别", zap.Error(err))
			}
		}
	}()
}
