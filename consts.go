package bttnotice

import "time"

// prefix 目前使用的缓存 Key 前缀
var prefix = "btt-notice:"

// SetPrefix 设置全局缓存 Key 前缀。
// 这应该在任何其他操作之前调用。
func SetPrefix(p string) {
	prefix = p
	if len(prefix) > 0 && prefix[len(prefix)-1] != ':' {
		prefix += ":"
	}
}

// SuffixMessage 升级提示缓存
const SuffixMessage = "update_message:"

// KeyMessage 返回升级提示文档的缓存 Key。
// hash: 文件 URL 与当前版本的摘要，见 ComputeCacheKey。
func KeyMessage(hash string) string {
	return prefix + SuffixMessage + hash
}

// 默认值
const (
	DefaultBaseURL  = "https://raw.githubusercontent.com/dynamiccreative/setting-plugin/refs/heads/main/"
	DefaultCacheTTL = time.Hour
	FetchTimeout    = 10 * time.Second
	MaxBodySize     = 1 << 20 // 1MB
)

// 消息展示
const (
	MaxMessageLength = 1500
	Ellipsis         = "..."
)

// Hook 注册信息
const (
	HookPrefix   = "in_plugin_update_message-"
	HookPriority = 20
)

// UserAgent 请求头
const UserAgent = "btt-notice/1.0"
