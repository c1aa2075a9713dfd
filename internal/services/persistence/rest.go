package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/evaratech/aquanode/internal/model"
)

// RESTStore is the secondary store: the same logical tables exposed over a
// Supabase-style REST surface with header API-key auth. Used when the
// primary is unreachable.
type RESTStore struct {
	base   string
	apiKey string
	http   *http.Client
}

func NewRESTStore(base, apiKey string, timeout time.Duration) *RESTStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RESTStore{
		base:   strings.TrimRight(strings.TrimSpace(base), "/"),
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
	}
}

func (s *RESTStore) Name() string { return "rest" }

func (s *RESTStore) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.base+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if body != nil {
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("rest %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("rest %s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (s *RESTStore) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var probe []NodeRow
	return s.do(ctx, http.MethodGet, "/rest/v1/nodes?limit=1", nil, &probe)
}

func (s *RESTStore) GetNodes(ctx context.Context, limit, offset int) ([]NodeRow, error) {
	path := fmt.Sprintf("/rest/v1/nodes?limit=%d&offset=%d&order=id", limit, offset)
	var out []NodeRow
	if err := s.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RESTStore) GetNode(ctx context.Context, nodeID string) (NodeRow, error) {
	path := "/rest/v1/nodes?id=eq." + url.QueryEscape(nodeID)
	var out []NodeRow
	if err := s.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return NodeRow{}, err
	}
	if len(out) == 0 {
		return NodeRow{}, ErrNotFound
	}
	return out[0], nil
}

func (s *RESTStore) GetUser(ctx context.Context, userID string) (UserRow, error) {
	path := "/rest/v1/users_profiles?id=eq." + url.QueryEscape(userID)
	var out []UserRow
	if err := s.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return UserRow{}, err
	}
	if len(out) == 0 {
		return UserRow{}, ErrNotFound
	}
	return out[0], nil
}

func (s *RESTStore) CreateUser(ctx context.Context, user UserRow) error {
	return s.do(ctx, http.MethodPost, "/rest/v1/users_profiles", user, nil)
}

func (s *RESTStore) UpdateNodeState(ctx context.Context, nodeID string, state model.NodeState) error {
	path := "/rest/v1/nodes?id=eq." + url.QueryEscape(nodeID)
	return s.do(ctx, http.MethodPatch, path, map[string]string{"state": string(state)}, nil)
}

func (s *RESTStore) InsertHistory(ctx context.Context, rec HistoryRow) error {
	return s.do(ctx, http.MethodPost, "/rest/v1/node_history", rec, nil)
}

func (s *RESTStore) GetHistory(ctx context.Context, nodeID string, limit int) ([]HistoryRow, error) {
	path := "/rest/v1/node_history?node_id=eq." + url.QueryEscape(nodeID) +
		"&order=period_start.desc&limit=" + strconv.Itoa(limit)
	var out []HistoryRow
	if err := s.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
