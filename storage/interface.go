package storage

// 持久化记录的键
const (
	KeySetting       = "setting"
	KeyDecodeHistory = "DecodeHistory"
)

// Storage 键值存储接口，值以 JSON 形式保存
type Storage interface {
	// Get 读取键对应的值到 v，键不存在时返回 false
	Get(key string, v any) (bool, error)

	// Set 写入键值
	Set(key string, v any) error

	// Location 存储位置描述，用于界面展示
	Location() string

	// 关闭存储
	Close() error
}
