package model

// 解析记录条数范围
const (
	MinHistoryCount     = 1
	MaxHistoryCount     = 100
	DefaultHistoryCount = 20
)

// Setting 用户偏好设置
type Setting struct {
	IsSaveHistory       bool   `json:"isSaveHistory"`       // 是否保存解析记录
	IsRemoveDuplicates  bool   `json:"isRemoveDuplicates"`  // 保存时是否去重
	SaveHistoryMaxCount int    `json:"saveHistoryMaxCount"` // 保留条数
	IsAutoCopyCode      bool   `json:"isAutoCopyCode"`      // 解码文本自动复制
	IsAutoCopyQrcode    bool   `json:"isAutoCopyQrcode"`    // 二维码图片自动复制
	QRCodeColor         string `json:"qrCodeColor"`
	QRCodeBgColor       string `json:"qrCodeBgColor"`
}

// DefaultSetting 返回默认设置
func DefaultSetting() Setting {
	return Setting{
		IsSaveHistory:       true,
		IsRemoveDuplicates:  false,
		SaveHistoryMaxCount: DefaultHistoryCount,
		IsAutoCopyCode:      false,
		IsAutoCopyQrcode:    false,
		QRCodeColor:         "#000000",
		QRCodeBgColor:       "#ffffff",
	}
}

// ClampHistoryCount 将条数限制在 [1,100]，0 或负数按 1 处理
func ClampHistoryCount(n int) int {
	if n < MinHistoryCount {
		return MinHistoryCount
	}
	if n > MaxHistoryCount {
		return MaxHistoryCount
	}
	return n
}

// SettingPatch 局部更新，nil 字段保持原值
type SettingPatch struct {
	IsSaveHistory       *bool
	IsRemoveDuplicates  *bool
	SaveHistoryMaxCount *int
	IsAutoCopyCode      *bool
	IsAutoCopyQrcode    *bool
	QRCodeColor         *string
	QRCodeBgColor       *string
}

// Apply 合并补丁并返回新设置
func (p SettingPatch) Apply(s Setting) Setting {
	if p.IsSaveHistory != nil {
		s.IsSaveHistory = *p.IsSaveHistory
	}
	if p.IsRemoveDuplicates != nil {
		s.IsRemoveDuplicates = *p.IsRemoveDuplicates
	}
	if p.SaveHistoryMaxCount != nil {
		s.SaveHistoryMaxCount = *p.SaveHistoryMaxCount
	}
	if p.IsAutoCopyCode != nil {
		s.IsAutoCopyCode = *p.IsAutoCopyCode
	}
	if p.IsAutoCopyQrcode != nil {
		s.IsAutoCopyQrcode = *p.IsAutoCopyQrcode
	}
	if p.QRCodeColor != nil {
		s.QRCodeColor = *p.QRCodeColor
	}
	if p.QRCodeBgColor != nil {
		s.QRCodeBgColor = *p.QRCodeBgColor
	}
	s.SaveHistoryMaxCount = ClampHistoryCount(s.SaveHistoryMaxCount)
	return s
}

// Bool 便于构造补丁
func Bool(v bool) *bool { return &v }

// Int 便于构造补丁
func Int(v int) *int { return &v }

// String 便于构造补丁
func String(v string) *string { return &v }
