package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const feedsBody = `{
  "channel": {"id": 123, "name": "tank-1"},
  "feeds": [
    {"created_at": "2024-01-01T00:00:00Z", "entry_id": 10,
     "field1": "22.5", "field2": "46", "field3": null}
  ]
}`

func newTestClient(h http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(h)
	return NewClient(srv.URL, 2*time.Second), srv
}

func TestFetchFeedsOK(t *testing.T) {
	var gotPath, gotQuery string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(feedsBody))
	})
	defer srv.Close()

	feeds, err := c.FetchFeeds(context.Background(), FeedQuery{
		ChannelID: "123", ReadKey: "RKEY", Results: 1,
	})
	if err != nil {
		t.Fatalf("FetchFeeds: %v", err)
	}
	if gotPath != "/channels/123/feeds.json" {
		t.Fatalf("path = %s", gotPath)
	}
	if gotQuery != "api_key=RKEY&results=1" {
		t.Fatalf("query = %s", gotQuery)
	}
	if len(feeds) != 1 {
		t.Fatalf("feeds = %d, want 1", len(feeds))
	}

	f := feeds[0]
	if f.EntryID != 10 {
		t.Fatalf("entry_id = %d", f.EntryID)
	}
	if !f.CreatedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("created_at = %v", f.CreatedAt)
	}
	if f.Fields["field1"] != "22.5" || f.Fields["field2"] != "46" {
		t.Fatalf("fields = %v", f.Fields)
	}
	// Null fields mean "configured but unreported" and must stay absent.
	if _, ok := f.Fields["field3"]; ok {
		t.Fatal("null field3 must not appear in the field map")
	}
}

func TestFetchFeedsPublicChannelOmitsKey(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("api_key") {
			t.Error("public channel fetch must not send api_key")
		}
		_, _ = w.Write([]byte(`{"feeds": []}`))
	})
	defer srv.Close()

	feeds, err := c.FetchFeeds(context.Background(), FeedQuery{ChannelID: "42", Results: 1})
	if err != nil {
		t.Fatalf("FetchFeeds: %v", err)
	}
	if len(feeds) != 0 {
		t.Fatalf("feeds = %v, want empty", feeds)
	}
}

func TestFetchFeedsExpectedFailuresReturnEmpty(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"malformed body": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"feeds": [`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			c, srv := newTestClient(h)
			defer srv.Close()

			feeds, err := c.FetchFeeds(context.Background(), FeedQuery{ChannelID: "1"})
			if err != nil {
				t.Fatalf("expected failure class must not surface an error, got %v", err)
			}
			if len(feeds) != 0 {
				t.Fatalf("feeds = %v, want empty", feeds)
			}
		})
	}
}

func TestFetchFeedsMissingChannelIsCallerError(t *testing.T) {
	c := NewClient("http://localhost:0", time.Second)
	if _, err := c.FetchFeeds(context.Background(), FeedQuery{}); err == nil {
		t.Fatal("missing channel id must return an error")
	}
}

func TestVerifyChannel(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") == "good" {
			_, _ = w.Write([]byte(`{"feeds": []}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer srv.Close()

	if !c.VerifyChannel(context.Background(), "7", "good") {
		t.Fatal("reachable channel reported unreachable")
	}
	if c.VerifyChannel(context.Background(), "7", "bad") {
		t.Fatal("unauthorized channel reported reachable")
	}
}
