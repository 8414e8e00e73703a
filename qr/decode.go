package qr

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
)

// Decoder 二维码识别
type Decoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

// NewDecoder 创建识别器
func NewDecoder() *Decoder {
	return &Decoder{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Decode 识别图像中的二维码。图像中没有二维码时返回空字符串和 nil
func (d *Decoder) Decode(img image.Image) (string, error) {
	if img == nil {
		return "", errors.New("图像为空")
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("图像转换失败: %w", err)
	}

	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, d.hints)
	if err != nil {
		var notFound gozxing.NotFoundException
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("二维码识别失败: %w", err)
	}
	return result.GetText(), nil
}
