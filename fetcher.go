package bttnotice

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// FetchResponse 远程请求结果。
type FetchResponse struct {
	StatusCode int
	Body       []byte
}

// Fetcher 负责获取远程文档。
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResponse, error)
}

// HTTPFetcher 默认的 HTTP 实现。
type HTTPFetcher struct {
	Client      *http.Client
	Timeout     time.Duration
	MaxBodySize int64
}

// NewHTTPFetcher 创建带超时的 HTTPFetcher。
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = timeout
	return &HTTPFetcher{
		Client:      client,
		Timeout:     timeout,
		MaxBodySize: MaxBodySize,
	}
}

// Fetch 发送 GET 请求并绕过中间缓存。
// 非 2xx 不视为错误，由调用方检查 StatusCode。
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*FetchResponse, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", UserAgent)

	client := f.Client
	if client == nil {
		client = cleanhttp.DefaultClient()
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	limit := f.MaxBodySize
	if limit <= 0 {
		limit = MaxBodySize
	}
	// 多读一个字节用于判断是否超限
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("body exceeds %d bytes", limit)
	}

	return &FetchResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
