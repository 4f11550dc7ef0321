package bttnotice

import (
	"bytes"
	"encoding/json"
	"strings"
)

// PluginConfig 插件配置，构造时传入，之后不再修改。
type PluginConfig struct {
	Slug    string `json:"slug"`    // 插件标识，用于 Hook 名称
	Repo    string `json:"repo"`    // 仓库名，决定远程文件名 update-<repo>.json
	Version string `json:"version"` // 当前已安装版本
}

// MessageRule 定义单条升级提示规则。
// 升级到 UpdateVersion 且当前版本不高于 MinVersion 时显示 Message。
type MessageRule struct {
	UpdateVersion string `json:"update_version"`
	MinVersion    string `json:"min_version"`
	Message       string `json:"message"`

	complete bool
}

// Complete 表示三个必填字段是否都存在。
func (r MessageRule) Complete() bool {
	return r.complete
}

// RuleSet 远程文档解析结果。列表顺序即优先级。
type RuleSet struct {
	Messages []MessageRule `json:"messages"`
}

// UpdateResponse 宿主更新检查响应中 Hook 需要的部分。
type UpdateResponse struct {
	Slug       string `json:"slug"`
	NewVersion string `json:"new_version"`
	URL        string `json:"url"`
	Package    string `json:"package"`
}

// DebugInfo 诊断信息，不走缓存也不做校验。
type DebugInfo struct {
	FileURL        string       `json:"file_url"`
	CurrentVersion string       `json:"current_version"`
	UpdateVersion  string       `json:"update_version"`
	Config         PluginConfig `json:"config"`
}

// wireRule 是规则的线上格式。字段缺失或为 null 时指针为 nil。
type wireRule struct {
	UpdateVersion *flexString `json:"update_version"`
	MinVersion    *flexString `json:"min_version"`
	Message       *flexString `json:"message"`
}

func (w wireRule) toRule() MessageRule {
	r := MessageRule{complete: w.UpdateVersion != nil && w.MinVersion != nil && w.Message != nil}
	if w.UpdateVersion != nil {
		r.UpdateVersion = string(*w.UpdateVersion)
	}
	if w.MinVersion != nil {
		r.MinVersion = string(*w.MinVersion)
	}
	if w.Message != nil {
		r.Message = string(*w.Message)
	}
	return r
}

// flexString 接受 JSON 字符串或数字（保留字面量），例如 "min_version": 1.5。
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(strings.TrimSpace(n.String()))
	return nil
}
