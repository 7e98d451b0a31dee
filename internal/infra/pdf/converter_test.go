package pdf

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConvertRejectsEmptyDocument(t *testing.T) {
	c := NewConverter(Config{}, newTestLogger())
	defer c.Close()

	_, err := c.Convert(context.Background(), nil)
	require.Error(t, err)
}

func TestConvertFailsWhenBrowserMissing(t *testing.T) {
	c := NewConverter(Config{
		ExecPath: filepath.Join(t.TempDir(), "no-such-chrome"),
		Timeout:  5 * time.Second,
	}, newTestLogger())
	defer c.Close()

	_, err := c.Convert(context.Background(), []byte("<html><body>hi</body></html>"))
	require.Error(t, err)
}

func TestConvertHonoursCancelledContext(t *testing.T) {
	c := NewConverter(Config{MaxConcurrent: 1}, newTestLogger())
	defer c.Close()

	// occupy the only slot
	c.slots <- struct{}{}
	defer func() { <-c.slots }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Convert(ctx, []byte("<html></html>"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestConvertPrintsPDF(t *testing.T) {
	path := lookupChrome()
	if path == "" {
		t.Skip("no chrome binary available")
	}
	c := NewConverter(Config{ExecPath: path, Timeout: 30 * time.Second}, newTestLogger())
	defer c.Close()

	out, err := c.Convert(context.Background(), []byte("<!DOCTYPE html><html><body><h1>癸酉 辛酉 戊寅 癸丑</h1></body></html>"))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func lookupChrome() string {
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "headless-shell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
