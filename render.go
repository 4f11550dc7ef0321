package bttnotice

import (
	"context"
	"fmt"
	"io"
	"strings"
)

const noticeFormat = `<hr class="e-major-update-warning__separator" /><div class="e-major-update-warning" style="display:block;">%s</div>`

// Hook 描述宿主需要注册的回调。Notice 本身不做注册。
type Hook struct {
	Name     string
	Priority int
	Callback func(ctx context.Context, w io.Writer, pluginData map[string]any, resp *UpdateResponse)
}

// Hook 返回更新页提示的回调。
func (n *Notice) Hook() Hook {
	return Hook{
		Name:     HookPrefix + n.cfg.Slug,
		Priority: HookPriority,
		Callback: n.DisplayUpdateMessage,
	}
}

// DisplayUpdateMessage 宿主回调入口，从更新响应中取新版本号。
func (n *Notice) DisplayUpdateMessage(ctx context.Context, w io.Writer, _ map[string]any, resp *UpdateResponse) {
	if resp == nil {
		return
	}
	n.Render(ctx, w, resp.NewVersion)
}

// Render 有提示时输出 HTML 片段，否则不输出。
// 目标版本为空视为无提示；消息内容按原样输出（允许 HTML）。
func (n *Notice) Render(ctx context.Context, w io.Writer, target string) {
	if w == nil || strings.TrimSpace(target) == "" {
		return
	}
	msg, ok := n.Resolve(ctx, target)
	if !ok {
		return
	}
	if _, err := fmt.Fprintf(w, noticeFormat, msg); err != nil {
		n.logger.WithError(err).Warn("write update message failed")
	}
}
