package bttnotice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/apex/log"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrEmptyBody        = errors.New("empty body")
	ErrMalformedJSON    = errors.New("malformed json")
	ErrMissingMessages  = errors.New("messages array missing")
	ErrNoMessages       = errors.New("messages array empty")
	ErrIncompleteRule   = errors.New("first message missing required fields")
)

// ParseRuleSet 解析并校验远程文档。
// 只校验第一条规则的完整性，后续不完整的规则保留，匹配时跳过。
func ParseRuleSet(data []byte) (*RuleSet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyBody
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// 合法 JSON 但顶层不是对象
			return nil, ErrMissingMessages
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	raw, ok := doc["messages"]
	if !ok {
		return nil, ErrMissingMessages
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, ErrMissingMessages
	}
	if len(items) == 0 {
		return nil, ErrNoMessages
	}

	rs := &RuleSet{Messages: make([]MessageRule, 0, len(items))}
	for i, item := range items {
		var w wireRule
		if err := json.Unmarshal(item, &w); err != nil {
			// 非对象元素视为不完整规则
			w = wireRule{}
		}
		rule := w.toRule()
		if i == 0 && !rule.Complete() {
			return nil, ErrIncompleteRule
		}
		rs.Messages = append(rs.Messages, rule)
	}
	return rs, nil
}

// load 先查缓存，未命中时从远程获取。
func (n *Notice) load(ctx context.Context) (*RuleSet, error) {
	key := n.CacheKey()
	logger := n.logger.WithField("key", key)

	// 1. 缓存
	cached, err := n.store.Get(ctx, key)
	switch {
	case err == nil:
		rs, perr := ParseRuleSet(cached)
		if perr == nil {
			return rs, nil
		}
		// 缓存内容损坏，删除后重新获取
		logger.WithError(perr).Warn("discard corrupt cache entry")
		if derr := n.store.Delete(ctx, key); derr != nil {
			logger.WithError(derr).Warn("delete cache entry failed")
		}
	case !errors.Is(err, ErrCacheMiss):
		// 缓存不可用时直接走远程
		logger.WithError(err).Warn("cache get failed")
	}

	// 2. 远程
	return n.fetch(ctx, key)
}

// fetch 获取、校验并写入缓存。任何失败都不写缓存。
func (n *Notice) fetch(ctx context.Context, key string) (*RuleSet, error) {
	url := n.FileURL()
	logger := n.logger.WithFields(log.Fields{"url": url, "key": key})

	resp, err := n.fetcher.Fetch(ctx, url)
	if err != nil {
		logger.WithError(err).Error("fetch update message failed")
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		logger.WithField("status", resp.StatusCode).Debug("unexpected status")
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	rs, err := ParseRuleSet(resp.Body)
	if err != nil {
		logger.WithError(err).Error("invalid update message document")
		return nil, err
	}

	ttl := n.cacheTTL()
	if err := n.store.Set(ctx, key, resp.Body, ttl); err != nil {
		logger.WithError(err).Warn("cache set failed")
	} else {
		logger.WithField("ttl", ttl).Debug("update message cached")
	}

	return rs, nil
}
