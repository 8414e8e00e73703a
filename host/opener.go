package host

import (
	"fmt"

	"qrtool/model"

	"github.com/skratchdot/open-golang/open"
)

// Opener 用系统默认程序打开链接
type Opener struct{}

// OpenURL 打开 http/https/ftp 链接，其它文本拒绝打开
func (Opener) OpenURL(url string) error {
	if !model.IsURL(url) {
		return fmt.Errorf("不是可打开的链接: %q", url)
	}
	return open.Start(url)
}
