// Package browser captures page snapshots for the analyze handler. A
// Snapshotter owns its Chrome connection explicitly: callers construct it,
// use it, and close it; nothing lingers as process-wide state.
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/net/html"

	"codewright/internal/logging"
)

// Snapshot is a text rendering of a page suitable for backend analysis.
type Snapshot struct {
	URL   string
	Title string
	Text  string
}

// Snapshotter drives a headless browser to capture page content.
type Snapshotter struct {
	mu      sync.Mutex
	browser *rod.Browser
}

// NewSnapshotter creates an unconnected snapshotter. The browser is launched
// lazily on first capture and torn down by Close.
func NewSnapshotter() *Snapshotter {
	return &Snapshotter{}
}

func (s *Snapshotter) ensureStarted(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		return nil
	}

	url, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return fmt.Errorf("failed to launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(url).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}
	s.browser = browser
	return nil
}

// Capture navigates to a URL and returns a text snapshot of the rendered
// page.
func (s *Snapshotter) Capture(ctx context.Context, pageURL string) (*Snapshot, error) {
	if err := s.ensureStarted(ctx); err != nil {
		return nil, err
	}

	logging.Get(logging.CategoryBrowser).Info("capturing %s", pageURL)

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	defer page.Close()

	if err := page.Context(ctx).WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	content, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}

	title := ""
	if info, err := page.Info(); err == nil {
		title = info.Title
	}

	return &Snapshot{
		URL:   pageURL,
		Title: title,
		Text:  HTMLToText(content),
	}, nil
}

// Close tears down the browser connection.
func (s *Snapshotter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.browser = nil
	return err
}

// HTMLToText flattens an HTML document into readable text, skipping script
// and style subtrees.
func HTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var sb strings.Builder
	extractText(doc, &sb)
	return collapseBlank(sb.String())
}

func extractText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "head":
			return
		case "p", "div", "br", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
			sb.WriteString("\n")
		}
	}
	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, sb)
	}
}

// collapseBlank removes runs of blank lines left behind by block elements.
func collapseBlank(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
