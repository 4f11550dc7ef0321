package bttnotice

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// ComputeCacheKey 返回 (文件 URL + 当前版本) 的 MD5 Hex，用于 KeyMessage。
// baseURL 与 repo 都包含在 fileURL 中，因此任一变化都会得到新的 Key。
func ComputeCacheKey(fileURL, version string) string {
	sum := md5.Sum([]byte(fileURL + version))
	return hex.EncodeToString(sum[:])
}

// BuildFileURL 拼接远程文件地址: baseURL + "update-" + repo + ".json"。
func BuildFileURL(baseURL, repo string) string {
	return baseURL + "update-" + repo + ".json"
}

// NormalizeBaseURL 去掉末尾的 / 和 \ 后补一个 /。
func NormalizeBaseURL(u string) string {
	return strings.TrimRight(u, `/\`) + "/"
}
