package bttnotice

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/apex/log/handlers/text"
)

// Notice 是主要入口点：解析并展示升级提示。
type Notice struct {
	cfg     PluginConfig
	store   Store
	fetcher Fetcher
	logger  log.Interface

	mu      sync.RWMutex // 保护 baseURL / ttl
	baseURL string
	ttl     time.Duration
}

// Option 配置 Notice。
type Option func(*Notice)

// WithBaseURL 设置远程文件所在目录。
func WithBaseURL(u string) Option {
	return func(n *Notice) {
		n.baseURL = NormalizeBaseURL(u)
	}
}

// WithCacheTTL 设置缓存时长，负数按 0 处理（永不过期）。
func WithCacheTTL(d time.Duration) Option {
	return func(n *Notice) {
		if d < 0 {
			d = 0
		}
		n.ttl = d
	}
}

// WithStore 替换缓存实现。
func WithStore(s Store) Option {
	return func(n *Notice) {
		if s != nil {
			n.store = s
		}
	}
}

// WithFetcher 替换远程获取实现。
func WithFetcher(f Fetcher) Option {
	return func(n *Notice) {
		if f != nil {
			n.fetcher = f
		}
	}
}

// WithLogger 注入日志实例。
func WithLogger(l log.Interface) Option {
	return func(n *Notice) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithDebug 打开调试日志（输出到 stderr）。关闭时不输出任何日志。
func WithDebug(enabled bool) Option {
	return func(n *Notice) {
		n.logger = newLogger(enabled)
	}
}

func newLogger(debug bool) log.Interface {
	if !debug {
		return &log.Logger{Handler: discard.New(), Level: log.FatalLevel}
	}
	return &log.Logger{Handler: text.New(os.Stderr), Level: log.DebugLevel}
}

// New 创建一个新的 Notice 实例。
// cfg: 插件配置，之后不会修改。
func New(cfg PluginConfig, opts ...Option) *Notice {
	n := &Notice{
		cfg:     cfg,
		store:   NewMemoryStore(),
		fetcher: NewHTTPFetcher(FetchTimeout),
		logger:  newLogger(false),
		baseURL: DefaultBaseURL,
		ttl:     DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Config 返回插件配置。
func (n *Notice) Config() PluginConfig {
	return n.cfg
}

// SetBaseURL 修改远程目录，立即生效，不清理已有缓存。
func (n *Notice) SetBaseURL(u string) {
	n.mu.Lock()
	n.baseURL = NormalizeBaseURL(u)
	n.mu.Unlock()
}

// SetCacheTTL 修改缓存时长（秒），负数按 0 处理。
func (n *Notice) SetCacheTTL(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	n.mu.Lock()
	n.ttl = time.Duration(seconds) * time.Second
	n.mu.Unlock()
}

func (n *Notice) cacheTTL() time.Duration {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ttl
}

// BaseURL 返回当前远程目录。
func (n *Notice) BaseURL() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.baseURL
}

// FileURL 返回远程文档地址。
func (n *Notice) FileURL() string {
	return BuildFileURL(n.BaseURL(), n.cfg.Repo)
}

// CacheKey 返回当前配置对应的缓存 Key。
func (n *Notice) CacheKey() string {
	return KeyMessage(ComputeCacheKey(n.FileURL(), n.cfg.Version))
}

// RuleSet 返回缓存或远程的规则集，失败时返回错误。
func (n *Notice) RuleSet(ctx context.Context) (*RuleSet, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return n.load(ctx)
}

// Resolve 返回目标版本对应的提示文本。
// target 为空（或只有空白）时使用当前版本。任何失败都返回 false，不会向上抛出。
func (n *Notice) Resolve(ctx context.Context, target string) (string, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	if target = strings.TrimSpace(target); target == "" {
		target = n.cfg.Version
	}

	rs, err := n.load(ctx)
	if err != nil {
		return "", false
	}

	rule := Match(rs.Messages, target, n.cfg.Version)
	if rule == nil {
		n.logger.WithField("target", target).Debug("no matching update message")
		return "", false
	}
	return Sanitize(rule.Message)
}

// ClearCache 删除当前配置的缓存。没有缓存时同样成功。
func (n *Notice) ClearCache(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return n.store.Delete(ctx, n.CacheKey())
}

// DebugInfo 返回诊断信息，不访问缓存和远程。
func (n *Notice) DebugInfo(target string) DebugInfo {
	if target == "" {
		target = n.cfg.Version
	}
	return DebugInfo{
		FileURL:        n.FileURL(),
		CurrentVersion: n.cfg.Version,
		UpdateVersion:  target,
		Config:         n.cfg,
	}
}
