package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const DefaultBaseURL = "https://api.thingspeak.com"

// FeedQuery addresses one bounded fetch against a channel. ReadKey is empty
// for public channels. Results and Days map straight onto the provider's
// query parameters; zero values are omitted.
type FeedQuery struct {
	ChannelID string
	ReadKey   string
	Results   int
	Days      int
}

// Client fetches raw readings from the remote telemetry provider. One
// instance is shared by all in-flight device fetches; the embedded
// http.Client timeout bounds every request below the poll interval.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string, timeout time.Duration) *Client {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{base: base, http: &http.Client{Timeout: timeout}}
}

// FetchFeeds returns the most recent readings for one channel in
// provider-native order (newest first for single-result fetches). Expected
// failure classes (network error, non-2xx, malformed body) come back as an
// empty slice with the failure logged; only a missing channel id is a
// caller error.
func (c *Client) FetchFeeds(ctx context.Context, q FeedQuery) ([]Feed, error) {
	if strings.TrimSpace(q.ChannelID) == "" {
		return nil, errors.New("telemetry: channel id is required")
	}

	u := fmt.Sprintf("%s/channels/%s/feeds.json", c.base, url.PathEscape(q.ChannelID))
	params := url.Values{}
	if q.ReadKey != "" {
		params.Set("api_key", q.ReadKey)
	}
	if q.Results > 0 {
		params.Set("results", strconv.Itoa(q.Results))
	}
	if q.Days > 0 {
		params.Set("days", strconv.Itoa(q.Days))
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	// One short retry inside the timeout budget; anything more waits for
	// the next tick.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 2 * time.Second

	var feeds []Feed
	err := backoff.Retry(func() error {
		var ferr error
		feeds, ferr = c.fetchOnce(ctx, u)
		return ferr
	}, backoff.WithContext(backoff.WithMaxRetries(bo, 1), ctx))
	if err != nil {
		log.Printf("telemetry: channel %s fetch failed: %v", q.ChannelID, err)
		return nil, nil
	}
	return feeds, nil
}

func (c *Client) fetchOnce(ctx context.Context, u string) ([]Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused across retries.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("provider status %d", resp.StatusCode)
	}

	var body feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode feeds: %w", err)
	}
	return body.Feeds, nil
}

// VerifyChannel is the provisioning-time handshake: it confirms the channel
// exists and the credential (if any) can read it.
func (c *Client) VerifyChannel(ctx context.Context, channelID, readKey string) bool {
	_, err := c.FetchFeeds(ctx, FeedQuery{ChannelID: channelID, ReadKey: readKey, Results: 1})
	if err != nil {
		return false
	}
	// FetchFeeds swallows transport failures, so re-check reachability with
	// a bare status probe.
	u := fmt.Sprintf("%s/channels/%s/feeds.json?results=1", c.base, url.PathEscape(channelID))
	if readKey != "" {
		u += "&api_key=" + url.QueryEscape(readKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode == http.StatusOK
}
