package component

import (
	"image/color"
	"time"

	"qrtool/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// 列表中单条内容最多显示的字符数
const previewRunes = 100

// HistoryList 解码记录列表组件
type HistoryList struct {
	*widget.List
	entries  []model.HistoryEntry
	onSelect func(model.HistoryEntry) // 点击条目，填入文本框
	onCopy   func(model.HistoryEntry) // 复制回调
	onOpen   func(model.HistoryEntry) // 打开链接回调
	onDelete func(model.HistoryEntry) // 删除回调
}

// NewHistoryList 创建记录列表
func NewHistoryList(
	onSelect func(model.HistoryEntry),
	onCopy func(model.HistoryEntry),
	onOpen func(model.HistoryEntry),
	onDelete func(model.HistoryEntry),
) *HistoryList {
	list := &HistoryList{
		onSelect: onSelect,
		onCopy:   onCopy,
		onOpen:   onOpen,
		onDelete: onDelete,
	}

	list.List = widget.NewList(
		func() int {
			return len(list.entries)
		},
		func() fyne.CanvasObject {
			return list.createItemWidget()
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			list.updateItemWidget(i, o)
		},
	)

	list.OnSelected = func(i widget.ListItemID) {
		if i >= 0 && i < len(list.entries) && list.onSelect != nil {
			list.onSelect(list.entries[i])
		}
		list.Unselect(i)
	}

	return list
}

// UpdateEntries 替换列表内容，必须在界面线程调用
func (l *HistoryList) UpdateEntries(entries []model.HistoryEntry) {
	next := make([]model.HistoryEntry, len(entries))
	copy(next, entries)
	l.entries = next
	l.UnselectAll()
	l.Refresh()
}

// 创建列表项控件
func (l *HistoryList) createItemWidget() fyne.CanvasObject {
	content := widget.NewLabel("")
	content.Wrapping = fyne.TextWrapWord

	timestamp := widget.NewLabel("")
	timestamp.TextStyle = fyne.TextStyle{Italic: true}

	copyBtn := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {})
	openBtn := widget.NewButtonWithIcon("", theme.ComputerIcon(), func() {})
	deleteBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {})

	copyBtn.Importance = widget.LowImportance
	openBtn.Importance = widget.LowImportance
	deleteBtn.Importance = widget.LowImportance

	item := container.NewBorder(
		nil, nil, nil,
		container.NewHBox(copyBtn, openBtn, deleteBtn),
		container.NewVBox(content, timestamp),
	)

	return container.NewVBox(
		item,
		canvas.NewLine(color.Gray{Y: 200}),
	)
}

// 更新列表项控件
func (l *HistoryList) updateItemWidget(i int, o fyne.CanvasObject) {
	if i < 0 || i >= len(l.entries) {
		return
	}
	entry := l.entries[i]

	box := o.(*fyne.Container)
	item := box.Objects[0].(*fyne.Container)
	main := item.Objects[0].(*fyne.Container)
	buttons := item.Objects[1].(*fyne.Container)

	contentLabel := main.Objects[0].(*widget.Label)
	timeLabel := main.Objects[1].(*widget.Label)
	copyBtn := buttons.Objects[0].(*widget.Button)
	openBtn := buttons.Objects[1].(*widget.Button)
	deleteBtn := buttons.Objects[2].(*widget.Button)

	contentLabel.SetText(preview(entry.Text))

	if entry.HasCreateTime() {
		timeLabel.SetText(model.FormatTime(entry.Created(), time.Now()))
		timeLabel.Show()
	} else {
		timeLabel.Hide()
	}

	copyBtn.OnTapped = func() {
		if l.onCopy != nil {
			l.onCopy(entry)
		}
	}

	// 只有链接才显示打开按钮
	if entry.IsURL() {
		openBtn.Show()
		openBtn.OnTapped = func() {
			if l.onOpen != nil {
				l.onOpen(entry)
			}
		}
	} else {
		openBtn.Hide()
		openBtn.OnTapped = nil
	}

	deleteBtn.OnTapped = func() {
		if l.onDelete != nil {
			l.onDelete(entry)
		}
	}
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewRunes {
		return string(runes[:previewRunes]) + "..."
	}
	return text
}
