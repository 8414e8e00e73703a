package component

import (
	"image/color"
	"strconv"

	"qrtool/model"
	"qrtool/qr"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// SettingsPanel 设置面板组件
type SettingsPanel struct {
	*container.Scroll
	saveHistoryCheck  *widget.Check
	dedupeCheck       *widget.Check
	autoCopyCodeCheck *widget.Check
	autoCopyQRCheck   *widget.Check
	maxCountEntry     *widget.Entry
	fgSwatch          *canvas.Rectangle
	bgSwatch          *canvas.Rectangle
	window            fyne.Window
	onChange          func(model.SettingPatch)

	current  model.Setting
	updating bool // 程序刷新控件时不回调
}

// NewSettingsPanel 创建设置面板
func NewSettingsPanel(window fyne.Window, location string, onChange func(model.SettingPatch)) *SettingsPanel {
	panel := &SettingsPanel{
		window:   window,
		onChange: onChange,
	}

	panel.saveHistoryCheck = widget.NewCheck("保存解析记录", func(checked bool) {
		if checked || !panel.current.IsSaveHistory {
			panel.emit(model.SettingPatch{IsSaveHistory: model.Bool(checked)})
			return
		}
		// 关闭时会清空记录，先确认
		dialog.ShowConfirm("关闭保存记录", "关闭后将清空所有解析记录，是否继续？", func(ok bool) {
			if ok {
				panel.emit(model.SettingPatch{IsSaveHistory: model.Bool(false)})
				return
			}
			panel.SetSetting(panel.current)
		}, panel.window)
	})

	panel.dedupeCheck = widget.NewCheck("记录去重", func(checked bool) {
		panel.emit(model.SettingPatch{IsRemoveDuplicates: model.Bool(checked)})
	})
	panel.autoCopyCodeCheck = widget.NewCheck("解析后自动复制内容", func(checked bool) {
		panel.emit(model.SettingPatch{IsAutoCopyCode: model.Bool(checked)})
	})
	panel.autoCopyQRCheck = widget.NewCheck("输入后自动复制二维码", func(checked bool) {
		panel.emit(model.SettingPatch{IsAutoCopyQrcode: model.Bool(checked)})
	})

	// 最大记录数，确认后才生效，避免输入过程中裁剪记录
	panel.maxCountEntry = widget.NewEntry()
	panel.maxCountEntry.Validator = func(text string) error {
		_, err := strconv.Atoi(text)
		return err
	}
	panel.maxCountEntry.OnSubmitted = func(string) { panel.submitMaxCount() }
	applyBtn := widget.NewButton("确定", panel.submitMaxCount)

	panel.fgSwatch = newSwatch()
	panel.bgSwatch = newSwatch()
	fgBtn := widget.NewButton("前景色", func() {
		panel.pickColor("二维码颜色", func(hex string) {
			panel.emit(model.SettingPatch{QRCodeColor: model.String(hex)})
		})
	})
	bgBtn := widget.NewButton("背景色", func() {
		panel.pickColor("二维码背景色", func(hex string) {
			panel.emit(model.SettingPatch{QRCodeBgColor: model.String(hex)})
		})
	})
	resetBtn := widget.NewButton("恢复默认颜色", func() {
		def := model.DefaultSetting()
		panel.emit(model.SettingPatch{
			QRCodeColor:   model.String(def.QRCodeColor),
			QRCodeBgColor: model.String(def.QRCodeBgColor),
		})
	})

	storageInfo := widget.NewLabel(location)
	storageInfo.Wrapping = fyne.TextWrapWord

	content := container.NewVBox(
		panel.saveHistoryCheck,
		panel.dedupeCheck,
		widget.NewLabel("最大记录数 (1-100):"),
		container.NewBorder(nil, nil, nil, applyBtn, panel.maxCountEntry),
		widget.NewSeparator(),
		panel.autoCopyCodeCheck,
		panel.autoCopyQRCheck,
		widget.NewSeparator(),
		container.NewHBox(panel.fgSwatch, fgBtn, panel.bgSwatch, bgBtn, resetBtn),
		widget.NewSeparator(),
		widget.NewLabel("存储位置:"),
		storageInfo,
	)

	panel.Scroll = container.NewScroll(content)
	return panel
}

// SetSetting 刷新控件显示，必须在界面线程调用
func (p *SettingsPanel) SetSetting(s model.Setting) {
	p.updating = true
	defer func() { p.updating = false }()

	p.current = s
	p.saveHistoryCheck.SetChecked(s.IsSaveHistory)
	p.dedupeCheck.SetChecked(s.IsRemoveDuplicates)
	p.autoCopyCodeCheck.SetChecked(s.IsAutoCopyCode)
	p.autoCopyQRCheck.SetChecked(s.IsAutoCopyQrcode)
	p.maxCountEntry.SetText(strconv.Itoa(s.SaveHistoryMaxCount))

	// 去重和上限只在保存记录时有意义
	if s.IsSaveHistory {
		p.dedupeCheck.Enable()
		p.maxCountEntry.Enable()
	} else {
		p.dedupeCheck.Disable()
		p.maxCountEntry.Disable()
	}

	setSwatch(p.fgSwatch, s.QRCodeColor)
	setSwatch(p.bgSwatch, s.QRCodeBgColor)
}

func (p *SettingsPanel) emit(patch model.SettingPatch) {
	if p.updating || p.onChange == nil {
		return
	}
	p.onChange(patch)
}

func (p *SettingsPanel) submitMaxCount() {
	n, err := strconv.Atoi(p.maxCountEntry.Text)
	if err != nil {
		p.maxCountEntry.SetText(strconv.Itoa(p.current.SaveHistoryMaxCount))
		return
	}
	p.emit(model.SettingPatch{SaveHistoryMaxCount: model.Int(n)})
}

func (p *SettingsPanel) pickColor(title string, apply func(hex string)) {
	picker := dialog.NewColorPicker(title, "", func(c color.Color) {
		apply(qr.HexColor(c))
	}, p.window)
	picker.Advanced = true
	picker.Show()
}

func newSwatch() *canvas.Rectangle {
	r := canvas.NewRectangle(color.Black)
	r.StrokeColor = color.Gray{Y: 160}
	r.StrokeWidth = 1
	r.SetMinSize(fyne.NewSize(24, 24))
	return r
}

func setSwatch(r *canvas.Rectangle, hex string) {
	c, err := qr.ParseHexColor(hex)
	if err != nil {
		return
	}
	r.FillColor = c
	r.Refresh()
}
