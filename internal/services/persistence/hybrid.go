package persistence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/evaratech/aquanode/internal/model"
)

// Store presents one interface over two interchangeable backing stores.
// Initialize memoizes which mode is active, and every call that fails on
// the preferred backend makes exactly one fallback attempt on the other in
// the same call, flipping the memoized mode when the fallback succeeds,
// so the process drifts back to the primary without a restart.
type Store struct {
	backends [2]backend // 0 primary, 1 secondary
	breakers [2]*gobreaker.CircuitBreaker
	active   atomic.Int32
}

func NewStore(primary, secondary backend) *Store {
	s := &Store{backends: [2]backend{primary, secondary}}
	for i, b := range s.backends {
		s.breakers[i] = mkBreaker(b.Name())
	}
	return s
}

func mkBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  15 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		// A definitive miss is a healthy answer and must not open the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})
}

// Initialize probes the primary with a short timeout, then the secondary.
// An error here means no store is reachable at all; the caller is expected
// to degrade (keep ticking and logging), not crash.
func (s *Store) Initialize(ctx context.Context) error {
	for i, b := range s.backends {
		if err := b.Probe(ctx); err != nil {
			log.Printf("persistence: %s probe failed: %v", b.Name(), err)
			continue
		}
		s.active.Store(int32(i))
		log.Printf("persistence: using %s store", b.Name())
		return nil
	}
	return ErrUnavailable
}

// ActiveMode reports which backend currently answers first.
func (s *Store) ActiveMode() string {
	return s.backends[s.active.Load()].Name()
}

// do dispatches one query: preferred backend first, then exactly one
// fallback attempt before surfacing an error.
func (s *Store) do(kind QueryKind, fn func(b backend) error) error {
	first := s.active.Load()
	order := [2]int32{first, 1 - first}

	var firstErr error
	for attempt, idx := range order {
		b := s.backends[idx]
		_, err := s.breakers[idx].Execute(func() (any, error) {
			return nil, fn(b)
		})
		if err == nil {
			if attempt == 1 {
				s.active.Store(idx)
				fallbacksTotal.WithLabelValues(b.Name()).Inc()
				log.Printf("persistence: %s failed for %s, switched to %s", s.backends[first].Name(), kind, b.Name())
			}
			return nil
		}
		if errors.Is(err, ErrNotFound) {
			// A definitive miss is an answer, not an outage.
			return err
		}
		if attempt == 0 {
			firstErr = err
			log.Printf("persistence: %s %s error: %v (trying fallback)", b.Name(), kind, err)
		} else {
			return fmt.Errorf("%s failed on both stores: %v; fallback: %w", kind, firstErr, err)
		}
	}
	return firstErr
}

func (s *Store) GetNodes(ctx context.Context, limit, offset int) ([]NodeRow, error) {
	var out []NodeRow
	err := s.do(QueryGetNodes, func(b backend) error {
		var ferr error
		out, ferr = b.GetNodes(ctx, limit, offset)
		return ferr
	})
	return out, err
}

func (s *Store) GetNode(ctx context.Context, nodeID string) (NodeRow, error) {
	var out NodeRow
	err := s.do(QueryGetNode, func(b backend) error {
		var ferr error
		out, ferr = b.GetNode(ctx, nodeID)
		return ferr
	})
	return out, err
}

func (s *Store) GetUser(ctx context.Context, userID string) (UserRow, error) {
	var out UserRow
	err := s.do(QueryGetUser, func(b backend) error {
		var ferr error
		out, ferr = b.GetUser(ctx, userID)
		return ferr
	})
	return out, err
}

func (s *Store) CreateUser(ctx context.Context, user UserRow) error {
	return s.do(QueryCreateUser, func(b backend) error {
		return b.CreateUser(ctx, user)
	})
}

func (s *Store) UpdateNodeState(ctx context.Context, nodeID string, state model.NodeState) error {
	return s.do(QueryUpdateNodeState, func(b backend) error {
		return b.UpdateNodeState(ctx, nodeID, state)
	})
}

func (s *Store) InsertHistory(ctx context.Context, rec HistoryRow) error {
	return s.do(QueryInsertHistory, func(b backend) error {
		return b.InsertHistory(ctx, rec)
	})
}

func (s *Store) GetHistory(ctx context.Context, nodeID string, limit int) ([]HistoryRow, error) {
	var out []HistoryRow
	err := s.do(QueryGetHistory, func(b backend) error {
		var ferr error
		out, ferr = b.GetHistory(ctx, nodeID, limit)
		return ferr
	})
	return out, err
}
