package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultEmojiPalette is what the emoji picker offers.
var DefaultEmojiPalette = []string{
	"😀", "😊", "😍", "🥳", "🎉", "😌", "😴", "🤒",
	"😐", "😕", "😢", "😭", "😠", "😤", "😱", "🥘",
}

// TodayHeader formats the journal's date heading, e.g. "October\n04, 2026".
func TodayHeader(t time.Time) string {
	return fmt.Sprintf("%s\n%02d, %d", t.Month(), t.Day(), t.Year())
}

// PageProps is the extra data the journal page renders with.
type PageProps struct {
	FavoriteColor string `json:"favoriteColor"`
}

// PropsError is returned when the props endpoint answers with a non-2xx status.
type PropsError struct {
	Status int
	Body   string
}

func (e *PropsError) Error() string {
	return fmt.Sprintf("data fetching failed with status %d: %s", e.Status, e.Body)
}

// PagePropsClient fetches page props from GET <BaseURL>/api/example.
type PagePropsClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Retry      RetryPolicy
}

func NewPagePropsClient(baseURL string) *PagePropsClient {
	return &PagePropsClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		Retry:      DefaultRetryPolicy,
	}
}

// Fetch calls the props endpoint on behalf of the bearer token.
func (c *PagePropsClient) Fetch(ctx context.Context, bearer string) (PageProps, error) {
	var props PageProps
	err := c.Retry.Do(ctx, "fetch page props", func() error {
		var err error
		props, err = c.fetchOnce(ctx, bearer)
		return err
	})
	return props, err
}

func (c *PagePropsClient) fetchOnce(ctx context.Context, bearer string) (PageProps, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/example", nil)
	if err != nil {
		return PageProps{}, err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else {
		req.Header.Set("Authorization", "unauthenticated")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return PageProps{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return PageProps{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return PageProps{}, &PropsError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var props PageProps
	if err := json.Unmarshal(body, &props); err != nil {
		return PageProps{}, fmt.Errorf("decode page props: %w", err)
	}
	return props, nil
}
