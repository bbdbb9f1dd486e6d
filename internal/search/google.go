package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultGoogleURL is the Custom Search JSON API endpoint.
const DefaultGoogleURL = "https://www.googleapis.com/customsearch/v1"

// GoogleClient queries the Google Custom Search JSON API.
type GoogleClient struct {
	baseURL  string
	apiKey   string
	engineID string
	client   *http.Client
}

// NewGoogleClient creates a client. An empty baseURL uses DefaultGoogleURL.
func NewGoogleClient(apiKey, engineID, baseURL string) *GoogleClient {
	if baseURL == "" {
		baseURL = DefaultGoogleURL
	}
	return &GoogleClient{
		baseURL:  baseURL,
		apiKey:   apiKey,
		engineID: engineID,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type googleResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
		Pagemap     struct {
			Thumbnails []struct {
				Src string `json:"src"`
			} `json:"cse_thumbnail"`
		} `json:"pagemap"`
	} `json:"items"`
}

type googleError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *GoogleClient) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	num := opts.Num
	if num <= 0 || num > 10 {
		num = 10
	}
	start := opts.Start
	if start <= 0 {
		start = 1
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("cx", c.engineID)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(num))
	q.Set("start", strconv.Itoa(start))
	if opts.SiteSearch != "" {
		q.Set("siteSearch", opts.SiteSearch)
	}
	if opts.DateRestrict != "" {
		q.Set("dateRestrict", opts.DateRestrict)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var ge googleError
		if json.Unmarshal(b, &ge) == nil && ge.Error.Message != "" {
			return nil, fmt.Errorf("search error %d: %s", resp.StatusCode, ge.Error.Message)
		}
		return nil, fmt.Errorf("search error %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var gr googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	out := make([]Result, 0, len(gr.Items))
	for _, it := range gr.Items {
		r := Result{
			Title:       it.Title,
			URL:         it.Link,
			Description: it.Snippet,
			DisplayLink: it.DisplayLink,
		}
		if len(it.Pagemap.Thumbnails) > 0 {
			r.Thumbnail = it.Pagemap.Thumbnails[0].Src
		}
		out = append(out, r)
	}
	return out, nil
}
