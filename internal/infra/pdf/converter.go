package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/yanqian/bazi-report/internal/domain/report"
)

// A4 in inches.
const (
	paperWidth  = 8.27
	paperHeight = 11.69
)

// Config controls the headless browser.
type Config struct {
	ExecPath      string
	Timeout       time.Duration
	MaxConcurrent int
}

// Converter prints HTML documents to PDF through headless Chrome. One browser
// process is shared; every conversion gets its own tab.
type Converter struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	slots    chan struct{}
	logger   *slog.Logger
}

var _ report.PDFConverter = (*Converter)(nil)

// NewConverter prepares the browser allocator. Chrome starts on first use.
func NewConverter(cfg Config, logger *slog.Logger) *Converter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 2
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Converter{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  cfg.Timeout,
		slots:    make(chan struct{}, cfg.MaxConcurrent),
		logger:   logger.With("component", "pdf.chrome"),
	}
}

// Convert renders html in a fresh tab and prints it to an A4 PDF.
func (c *Converter) Convert(ctx context.Context, html []byte) ([]byte, error) {
	if len(html) == 0 {
		return nil, errors.New("pdf: empty document")
	}

	select {
	case c.slots <- struct{}{}:
		defer func() { <-c.slots }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	tabCtx, cancelTab := chromedp.NewContext(c.allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	runCtx, cancelRun := context.WithTimeout(tabCtx, c.timeout)
	defer cancelRun()

	start := time.Now()
	var out []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				Do(ctx)
			out = buf
			return err
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("pdf: print: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("pdf: browser returned an empty document")
	}

	c.logger.Debug("pdf printed", "bytes", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// Close shuts the browser down.
func (c *Converter) Close() {
	c.cancel()
}
