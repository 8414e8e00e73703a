package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const appDirName = "qrtool"

// StorageType 存储类型
type StorageType string

const (
	StorageTypeJSON  StorageType = "json"
	StorageTypeMySQL StorageType = "mysql"
)

// StorageConfig 存储配置
type StorageConfig struct {
	Type     StorageType `mapstructure:"type"`
	JSONPath string      `mapstructure:"json_path"` // 为空时使用用户配置目录
	MySQL    MySQLConfig `mapstructure:"mysql"`
}

// MySQLConfig MySQL数据库配置
type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// DSN 构建连接串
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// WindowConfig 窗口配置
type WindowConfig struct {
	Width  float32 `mapstructure:"width"`
	Height float32 `mapstructure:"height"`
}

// AppConfig 应用配置
type AppConfig struct {
	Storage        StorageConfig `mapstructure:"storage"`
	Log            LogConfig     `mapstructure:"log"`
	Window         WindowConfig  `mapstructure:"window"`
	QRSize         int           `mapstructure:"qr_size"`         // 生成二维码图片的像素尺寸
	WatchClipboard bool          `mapstructure:"watch_clipboard"` // 监听剪贴板图片并自动解码
}

// Dir 应用数据目录
func Dir() string {
	appDataDir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(appDataDir, appDirName)
}

// DefaultPath 默认配置文件路径
func DefaultPath() string {
	return filepath.Join(Dir(), "config.json")
}

func setDefaults(v *viper.Viper) {
	dir := Dir()
	v.SetDefault("storage.type", string(StorageTypeJSON))
	v.SetDefault("storage.json_path", dir)
	v.SetDefault("storage.mysql.host", "localhost")
	v.SetDefault("storage.mysql.port", 3306)
	v.SetDefault("storage.mysql.user", "root")
	v.SetDefault("storage.mysql.password", "")
	v.SetDefault("storage.mysql.database", "qrtool")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(dir, "logs", "qrtool.log"))
	v.SetDefault("window.width", 760)
	v.SetDefault("window.height", 480)
	v.SetDefault("qr_size", 512)
	v.SetDefault("watch_clipboard", false)
}

// Load 读取配置文件，文件不存在时使用默认配置；环境变量 QRTOOL_* 覆盖文件
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("QRTOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *AppConfig) Validate() error {
	switch c.Storage.Type {
	case StorageTypeJSON:
		if c.Storage.JSONPath == "" {
			c.Storage.JSONPath = Dir()
		}
	case StorageTypeMySQL:
		if c.Storage.MySQL.Host == "" || c.Storage.MySQL.Database == "" {
			return errors.New("mysql 存储需要 host 和 database")
		}
		if c.Storage.MySQL.Port <= 0 || c.Storage.MySQL.Port > 65535 {
			return fmt.Errorf("无效的 mysql 端口: %d", c.Storage.MySQL.Port)
		}
	default:
		return fmt.Errorf("不支持的存储类型: %s", c.Storage.Type)
	}

	if c.QRSize <= 0 {
		c.QRSize = 512
	}
	return nil
}
