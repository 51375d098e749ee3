package render

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const defaultPDFTimeout = 15 * time.Second

// PDFRenderer prints the HTML document with headless Chromium.
type PDFRenderer struct {
	html         *HTMLRenderer
	chromiumPath string
	timeout      time.Duration
}

func NewPDFRenderer(html *HTMLRenderer, chromiumPath string, timeout time.Duration) *PDFRenderer {
	if html == nil {
		html = NewHTMLRenderer()
	}
	if timeout <= 0 {
		timeout = defaultPDFTimeout
	}
	return &PDFRenderer{html: html, chromiumPath: chromiumPath, timeout: timeout}
}

// Render returns the PDF bytes. A missing Chromium surfaces as an error so
// the caller can report it.
func (r *PDFRenderer) Render(ctx context.Context, view DocumentView) ([]byte, error) {
	html, err := r.html.Render(view)
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if r.chromiumPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.chromiumPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	runCtx, cancelRun := chromedp.NewContext(allocCtx)
	defer cancelRun()
	runCtx, cancelTimeout := context.WithTimeout(runCtx, r.timeout)
	defer cancelTimeout()

	var pdf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("data:text/html,"+url.PathEscape(html)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}
