// btt-notice 查询插件升级提示。
//
// 用法:
//
//	btt-notice --repo demo --version 1.4.0 resolve 2.0.0
//	btt-notice --repo demo --version 1.4.0 --redis localhost:6379 clear-cache
//	btt-notice --repo demo --version 1.4.0 debug 2.0.0
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
