package bttnotice

import (
	"strings"
	"unicode/utf8"
)

// Sanitize 去除首尾空白并限制长度。
// 为空时返回 false；超过 MaxMessageLength 个字符时截断并追加 Ellipsis。
func Sanitize(content string) (string, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", false
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		runes := []rune(content)
		content = string(runes[:MaxMessageLength]) + Ellipsis
	}
	return content, true
}
