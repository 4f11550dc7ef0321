package bttnotice

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, sampleDoc)
	n := newTestNotice(srv, "1.4.0")

	var buf bytes.Buffer
	n.Render(context.Background(), &buf, "2.0.0")
	assert.Equal(t,
		`<hr class="e-major-update-warning__separator" /><div class="e-major-update-warning" style="display:block;">Upgrading to 2.0 changes X</div>`,
		buf.String())
}

func TestRender_NoNotice(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, sampleDoc)
	ctx := context.Background()

	var buf bytes.Buffer
	newTestNotice(srv, "2.1.0").Render(ctx, &buf, "3.0.0")
	assert.Empty(t, buf.String())

	// 无效目标版本
	newTestNotice(srv, "1.4.0").Render(ctx, &buf, "   ")
	assert.Empty(t, buf.String())

	// 远程失败
	bad := newTestServer(t, http.StatusInternalServerError, "")
	newTestNotice(bad, "1.4.0").Render(ctx, &buf, "2.0.0")
	assert.Empty(t, buf.String())

	assert.NotPanics(t, func() {
		newTestNotice(srv, "1.4.0").Render(ctx, nil, "2.0.0")
	})
}

func TestRender_NilContext(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, sampleDoc)
	n := newTestNotice(srv, "1.4.0")

	var buf bytes.Buffer
	assert.NotPanics(t, func() {
		//nolint:staticcheck
		n.Render(nil, &buf, "2.0.0")
	})
	assert.Contains(t, buf.String(), "Upgrading to 2.0 changes X")
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRender_WriteError(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, sampleDoc)
	n := newTestNotice(srv, "1.4.0")
	assert.NotPanics(t, func() {
		n.Render(context.Background(), errWriter{}, "2.0.0")
	})
}

func TestHook(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, sampleDoc)
	n := newTestNotice(srv, "1.4.0")

	h := n.Hook()
	assert.Equal(t, "in_plugin_update_message-demo/demo.php", h.Name)
	assert.Equal(t, 20, h.Priority)

	var buf bytes.Buffer
	h.Callback(context.Background(), &buf, map[string]any{"Name": "Demo"}, &UpdateResponse{NewVersion: "2.0.0"})
	assert.Contains(t, buf.String(), "Upgrading to 2.0 changes X")

	buf.Reset()
	h.Callback(context.Background(), &buf, nil, nil)
	assert.Empty(t, buf.String())

	h.Callback(context.Background(), &buf, nil, &UpdateResponse{})
	assert.Empty(t, buf.String())
}
