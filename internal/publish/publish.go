// Package publish polls the public blog API for the most recently
// published post so the dashboard can link to it.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNoPosts reports a reachable feed with nothing published yet.
var ErrNoPosts = errors.New("publish: feed has no posts")

// UpstreamError reports a blog API failure (network error or non-2xx).
type UpstreamError struct {
	Status int
	Reason string
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("publish: upstream returned %d: %s", e.Status, e.Reason)
	}
	return "publish: upstream unreachable: " + e.Reason
}

// LatestPost is the newest post on the blog.
type LatestPost struct {
	URL   string `json:"url"`
	Date  string `json:"date"`
	Title string `json:"title"`
}

// Client fetches posts from a WordPress-style REST feed
// (e.g. https://example.com/wp-json/wp/v2/posts).
type Client struct {
	FeedURL    string
	HTTPClient *http.Client
}

func NewClient(feedURL string) *Client {
	return &Client{
		FeedURL:    feedURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Latest returns the single most recent post.
func (c *Client) Latest(ctx context.Context) (*LatestPost, error) {
	q := url.Values{}
	q.Set("per_page", "1")
	q.Set("orderby", "date")
	q.Set("order", "desc")
	q.Set("_fields", "link,date,title")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.FeedURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, &UpstreamError{Status: resp.StatusCode, Reason: string(body)}
	}

	var posts []struct {
		Link  string `json:"link"`
		Date  string `json:"date"`
		Title struct {
			Rendered string `json:"rendered"`
		} `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Reason: "malformed feed: " + err.Error()}
	}
	if len(posts) == 0 {
		return nil, ErrNoPosts
	}

	return &LatestPost{
		URL:   posts[0].Link,
		Date:  posts[0].Date,
		Title: posts[0].Title.Rendered,
	}, nil
}
