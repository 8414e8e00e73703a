package ui

import (
	"errors"
	"sync"
	"time"

	"qrtool/config"
	"qrtool/controller"
	"qrtool/model"
	"qrtool/qr"
	"qrtool/ui/component"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

const (
	statusDuration = 3 * time.Second        // 提示信息显示时长
	scanHideDelay  = 300 * time.Millisecond // 截屏前等待窗口隐藏
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// Window 应用主窗口，实现 controller.View
type Window struct {
	fyne.Window
	app  fyne.App
	ctrl *controller.Controller
	log  *zap.Logger

	textEntry     *widget.Entry
	qrImage       *canvas.Image
	status        *widget.Label
	historyList   *component.HistoryList
	searchBar     *component.SearchBar
	settingsPanel *component.SettingsPanel
	contentTabs   *container.AppTabs

	suppress bool // 程序写入文本框时不触发编辑回调

	statusMu    sync.Mutex
	statusTimer *time.Timer
}

// NewWindow 创建主窗口，storageLocation 显示在设置页
func NewWindow(app fyne.App, ctrl *controller.Controller, cfg *config.AppConfig, storageLocation string, log *zap.Logger) *Window {
	win := app.NewWindow("二维码助手")
	win.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	win.SetMaster()

	w := &Window{
		Window: win,
		app:    app,
		ctrl:   ctrl,
		log:    log,
	}

	// 初始化UI
	w.initUI(storageLocation)
	w.watchTheme()

	return w
}

// 初始化UI
func (w *Window) initUI(storageLocation string) {
	w.textEntry = widget.NewMultiLineEntry()
	w.textEntry.Wrapping = fyne.TextWrapWord
	w.textEntry.SetPlaceHolder("输入文本生成二维码，或截屏/粘贴/打开图片识别二维码")
	w.textEntry.OnChanged = func(text string) {
		if w.suppress {
			return
		}
		w.ctrl.TextChanged(text)
		w.renderQR()
	}

	w.qrImage = canvas.NewImageFromImage(nil)
	w.qrImage.FillMode = canvas.ImageFillContain
	w.qrImage.ScaleMode = canvas.ImageScalePixels
	w.qrImage.SetMinSize(fyne.NewSize(240, 240))

	w.status = widget.NewLabel("")
	w.status.Truncation = fyne.TextTruncateEllipsis

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ViewFullScreenIcon(), w.scan),
		widget.NewToolbarAction(theme.ContentPasteIcon(), func() {
			go w.ctrl.PasteImage()
		}),
		widget.NewToolbarAction(theme.FolderOpenIcon(), w.openFile),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentCopyIcon(), func() {
			_ = w.ctrl.CopyQRCode()
		}),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), w.ctrl.SaveCurrentText),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() {
			w.textEntry.SetText("")
		}),
	)

	split := container.NewHSplit(w.textEntry, w.qrImage)
	split.Offset = 0.45
	mainContent := container.NewBorder(toolbar, w.status, nil, nil, split)

	// 解码记录
	w.searchBar = component.NewSearchBar(func(text string) {
		w.ctrl.Search(text)
	})
	w.historyList = component.NewHistoryList(
		func(e model.HistoryEntry) {
			_ = w.ctrl.Enter(controller.Entry{Kind: controller.EntryText, Payload: e.Text})
			w.contentTabs.SelectIndex(0)
		},
		func(e model.HistoryEntry) {
			_ = w.ctrl.CopyEntry(e.Text)
		},
		func(e model.HistoryEntry) {
			go w.ctrl.OpenEntry(e.Text)
		},
		func(e model.HistoryEntry) {
			_ = w.ctrl.DeleteHistory(e)
		},
	)
	clearBtn := widget.NewButtonWithIcon("清空记录", theme.DeleteIcon(), func() {
		dialog.ShowConfirm("清空记录", "确定清空所有解析记录？", func(ok bool) {
			if ok {
				w.ctrl.ClearHistory()
			}
		}, w.Window)
	})
	historyContent := container.NewBorder(w.searchBar, clearBtn, nil, nil, w.historyList)

	w.settingsPanel = component.NewSettingsPanel(w.Window, storageLocation, func(patch model.SettingPatch) {
		w.ctrl.UpdateSettings(patch)
	})

	w.contentTabs = container.NewAppTabs(
		container.NewTabItemWithIcon("二维码", theme.HomeIcon(), mainContent),
		container.NewTabItemWithIcon("解析记录", theme.HistoryIcon(), historyContent),
		container.NewTabItemWithIcon("设置", theme.SettingsIcon(), w.settingsPanel),
	)

	// 拖入图片文件直接识别
	w.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		if len(uris) == 0 {
			return
		}
		path := uris[0].Path()
		go w.ctrl.DecodeFile(path)
	})

	w.SetContent(w.contentTabs)
}

// 截屏前先隐藏窗口，避免识别到自身
func (w *Window) scan() {
	w.Hide()
	go func() {
		time.Sleep(scanHideDelay)
		_, _ = w.ctrl.Scan()
		fyne.Do(func() {
			w.Show()
			w.contentTabs.SelectIndex(0)
		})
	}()
}

func (w *Window) openFile() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w.Window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()
		go w.ctrl.DecodeFile(path)
	}, w.Window)
	open.SetFilter(storage.NewExtensionFileFilter(imageExtensions))
	open.Show()
}

// 按当前文本和颜色重新生成二维码，必须在界面线程调用
func (w *Window) renderQR() {
	text := w.ctrl.Text()
	if text == "" {
		w.qrImage.Image = nil
		w.qrImage.Refresh()
		return
	}

	img, err := qr.RenderImage(text, w.ctrl.Style())
	if err != nil {
		w.log.Debug("生成二维码失败", zap.Error(err))
		w.qrImage.Image = nil
		w.qrImage.Refresh()
		if errors.Is(err, qr.ErrInvalidColor) {
			w.showStatus(controller.LevelError, "二维码颜色无效")
		} else {
			w.showStatus(controller.LevelError, "内容过长，无法生成二维码")
		}
		return
	}
	w.qrImage.Image = img
	w.qrImage.Refresh()
}

// 系统切换深色模式时重绘界面
func (w *Window) watchTheme() {
	changes := make(chan fyne.Settings, 1)
	w.app.Settings().AddChangeListener(changes)
	go func() {
		for s := range changes {
			w.log.Debug("系统主题变化", zap.Stringer("variant", variantName(s.ThemeVariant())))
			fyne.Do(func() {
				w.Content().Refresh()
			})
		}
	}()
}

// SetText 写入文本框并刷新二维码
func (w *Window) SetText(text string) {
	fyne.Do(func() {
		w.suppress = true
		w.textEntry.SetText(text)
		w.suppress = false
		w.renderQR()
	})
}

// ShowHistory 刷新记录列表
func (w *Window) ShowHistory(entries []model.HistoryEntry) {
	fyne.Do(func() {
		w.historyList.UpdateEntries(entries)
	})
}

// ShowSetting 刷新设置面板，颜色可能变化所以同时重绘二维码
func (w *Window) ShowSetting(setting model.Setting) {
	fyne.Do(func() {
		w.settingsPanel.SetSetting(setting)
		w.renderQR()
	})
}

// Notify 在状态栏显示提示，几秒后自动清除
func (w *Window) Notify(level controller.Level, message string) {
	fyne.Do(func() {
		w.showStatus(level, message)
	})
}

func (w *Window) showStatus(level controller.Level, message string) {
	switch level {
	case controller.LevelSuccess:
		w.status.Importance = widget.SuccessImportance
	case controller.LevelError:
		w.status.Importance = widget.DangerImportance
	default:
		w.status.Importance = widget.MediumImportance
	}
	w.status.SetText(message)

	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	if w.statusTimer != nil {
		w.statusTimer.Stop()
	}
	w.statusTimer = time.AfterFunc(statusDuration, func() {
		fyne.Do(func() {
			if w.status.Text == message {
				w.status.SetText("")
			}
		})
	})
}

type variantName fyne.ThemeVariant

func (v variantName) String() string {
	if fyne.ThemeVariant(v) == theme.VariantDark {
		return "dark"
	}
	return "light"
}
