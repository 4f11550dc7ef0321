package bttnotice

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	goversion "github.com/hashicorp/go-version"
)

// Match 为给定的目标版本和当前版本查找第一条适用规则。
// 规则按照 Slice 顺序匹配，一旦匹配成功立即返回（列表顺序即优先级）。
//
// 匹配条件: rule.UpdateVersion == target 且 installed <= rule.MinVersion。
func Match(rules []MessageRule, target, installed string) *MessageRule {
	target = strings.TrimSpace(target)
	for i := range rules {
		rule := &rules[i]
		if matchOne(rule, target, installed) {
			return rule
		}
	}
	return nil
}

func matchOne(rule *MessageRule, target, installed string) bool {
	if !rule.Complete() {
		return false
	}
	update := strings.TrimSpace(rule.UpdateVersion)
	if update == "" || update != target {
		return false
	}
	cmp, err := CompareVersions(installed, rule.MinVersion)
	if err != nil {
		return false
	}
	return cmp <= 0
}

// CompareVersions 比较两个版本号，返回 -1 / 0 / 1。
// 优先按语义化版本比较；无法解析时（例如 1.4.0.1）退回到 go-version。
// 数值相等时段数多的版本更大，即 1.5.0 > 1.5。
func CompareVersions(a, b string) (int, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)

	cmp, err := compareNumeric(a, b)
	if err != nil || cmp != 0 {
		return cmp, err
	}
	return compareInt(segmentCount(a), segmentCount(b)), nil
}

func compareNumeric(a, b string) (int, error) {
	sa, errA := semver.NewVersion(a)
	sb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return sa.Compare(sb), nil
	}

	va, err := goversion.NewVersion(a)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", a, err)
	}
	vb, err := goversion.NewVersion(b)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", b, err)
	}
	return va.Compare(vb), nil
}

// segmentCount 返回版本核心部分（去掉 v 前缀和 -/+ 后缀）的段数。
func segmentCount(v string) int {
	v = strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	return strings.Count(v, ".") + 1
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
