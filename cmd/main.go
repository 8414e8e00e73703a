package main

import (
	"fmt"
	"os"
	"strings"

	"qrtool/app"
	"qrtool/config"
	"qrtool/controller"

	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("qrtool", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", config.DefaultPath(), "配置文件路径")
	text := flags.StringP("text", "t", "", "启动时显示的文本")
	url := flags.StringP("url", "u", "", "启动时显示的链接，传空字符串则读取剪贴板")
	img := flags.String("image", "", "base64 编码的图片，启动时识别")
	file := flags.StringP("file", "f", "", "图片文件路径，启动时识别")
	scan := flags.BoolP("scan", "s", false, "启动时截屏识别")
	_ = flags.Parse(os.Args[1:])

	entry := parseEntry(flags, *text, *url, *img, *file, *scan)

	// 创建应用
	application, err := app.New(*configPath, entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建应用失败: %v\n", err)
		os.Exit(1)
	}

	// 运行应用
	application.Run()
}

// parseEntry 按参数决定启动方式，没有参数时返回 nil
func parseEntry(flags *pflag.FlagSet, text, url, img, file string, scan bool) *controller.Entry {
	switch {
	case scan:
		return &controller.Entry{Kind: controller.EntryKeyword, Payload: "scan"}
	case flags.Changed("file"):
		return &controller.Entry{Kind: controller.EntryFile, Payload: file}
	case flags.Changed("image"):
		return &controller.Entry{Kind: controller.EntryImage, Payload: img}
	case flags.Changed("url"):
		return &controller.Entry{Kind: controller.EntryURL, Payload: url}
	case flags.Changed("text"):
		return &controller.Entry{Kind: controller.EntryText, Payload: text}
	}

	// 位置参数：包含扫码关键字时截屏，否则作为文本
	args := strings.TrimSpace(strings.Join(flags.Args(), " "))
	if args == "" {
		return nil
	}
	if controller.IsScanKeyword(args) {
		return &controller.Entry{Kind: controller.EntryKeyword, Payload: args}
	}
	return &controller.Entry{Kind: controller.EntryText, Payload: args}
}
