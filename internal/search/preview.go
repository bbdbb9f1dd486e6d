package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultPreviewBytes = 2 << 20
	maxHeadings         = 5
)

// Preview summarizes a resource page.
type Preview struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Headings    []string `json:"headings,omitempty"`
}

// Previewer fetches pages and extracts a short summary.
type Previewer struct {
	client   *http.Client
	maxBytes int64
}

// NewPreviewer returns a Previewer reading at most maxBytes per page. Zero
// uses a 2 MiB limit.
func NewPreviewer(maxBytes int64) *Previewer {
	if maxBytes <= 0 {
		maxBytes = defaultPreviewBytes
	}
	return &Previewer{
		client:   &http.Client{Timeout: 20 * time.Second},
		maxBytes: maxBytes,
	}
}

func (p *Previewer) Preview(ctx context.Context, rawURL string) (Preview, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Preview{}, fmt.Errorf("preview: unsupported url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Preview{}, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return Preview{}, fmt.Errorf("preview: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Preview{}, fmt.Errorf("preview: status %d", resp.StatusCode)
	}
	if resp.ContentLength > p.maxBytes {
		return Preview{}, fmt.Errorf("preview: page too large")
	}
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if ct != "" && !strings.Contains(ct, "text/html") {
		return Preview{}, fmt.Errorf("preview: unsupported content-type: %s", ct)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes))
	if err != nil {
		return Preview{}, fmt.Errorf("preview: read body: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return Preview{}, fmt.Errorf("preview: parse html: %w", err)
	}

	out := Preview{
		URL:   u.String(),
		Title: collapse(doc.Find("title").First().Text()),
	}
	if d, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		out.Description = collapse(d)
	} else if d, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		out.Description = collapse(d)
	}

	root := doc.Find("main, article")
	if root.Length() == 0 {
		root = doc.Selection
	}
	root.Find("h1,h2,h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := collapse(s.Text()); t != "" {
			out.Headings = append(out.Headings, t)
		}
		return len(out.Headings) < maxHeadings
	})
	return out, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
