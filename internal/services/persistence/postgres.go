package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evaratech/aquanode/internal/model"
)

// PostgresStore is the primary structured store. The pool is the one shared
// mutable resource crossing tick concurrency boundaries; pgxpool is safe
// for concurrent use.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 8
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

const nodeColumns = `id, hardware_key, label, analytics_kind, state, capacity_l,
	channel_id, read_key, write_key, field_mapping, extra_channel_id`

func (s *PostgresStore) GetNodes(ctx context.Context, limit, offset int) ([]NodeRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+nodeColumns+` FROM nodes ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get_nodes: %w", err)
	}
	defer rows.Close()

	var out []NodeRow
	for rows.Next() {
		r, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("get_nodes scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetNode(ctx context.Context, nodeID string) (NodeRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE id = $1`, nodeID)
	if err != nil {
		return NodeRow{}, fmt.Errorf("get_node: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return NodeRow{}, err
		}
		return NodeRow{}, ErrNotFound
	}
	return scanNode(rows)
}

func scanNode(rows pgx.Rows) (NodeRow, error) {
	var (
		r       NodeRow
		mapping []byte
	)
	err := rows.Scan(&r.ID, &r.HardwareKey, &r.Label, &r.Kind, &r.State,
		&r.CapacityL, &r.ChannelID, &r.ReadKey, &r.WriteKey, &mapping, &r.ExtraChannel)
	if err != nil {
		return NodeRow{}, err
	}
	if len(mapping) > 0 {
		if err := json.Unmarshal(mapping, &r.FieldMapping); err != nil {
			return NodeRow{}, fmt.Errorf("field_mapping for node %s: %w", r.ID, err)
		}
	}
	return r, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, userID string) (UserRow, error) {
	var u UserRow
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, role, plan, community_id FROM users_profiles WHERE id = $1`,
		userID).Scan(&u.ID, &u.Email, &u.Role, &u.Plan, &u.CommunityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserRow{}, ErrNotFound
	}
	if err != nil {
		return UserRow{}, fmt.Errorf("get_user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user UserRow) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users_profiles (id, email, role, plan, community_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.Role, user.Plan, user.CommunityID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("create_user: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateNodeState(ctx context.Context, nodeID string, state model.NodeState) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE nodes SET state = $1 WHERE id = $2`, string(state), nodeID)
	if err != nil {
		return fmt.Errorf("update_node_state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) InsertHistory(ctx context.Context, rec HistoryRow) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO node_history
		   (node_id, period_type, period_start, consumption_l, avg_level_percent, peak_flow, feed_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.NodeID, rec.PeriodType, rec.PeriodStart, rec.ConsumptionL,
		rec.AvgLevelPercent, rec.PeakFlow, rec.FeedCount)
	if err != nil {
		return fmt.Errorf("insert_history: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetHistory(ctx context.Context, nodeID string, limit int) ([]HistoryRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT node_id, period_type, period_start, consumption_l, avg_level_percent, peak_flow, feed_count
		 FROM node_history WHERE node_id = $1 ORDER BY period_start DESC LIMIT $2`,
		nodeID, limit)
	if err != nil {
		return nil, fmt.Errorf("get_history: %w", err)
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(&h.NodeID, &h.PeriodType, &h.PeriodStart,
			&h.ConsumptionL, &h.AvgLevelPercent, &h.PeakFlow, &h.FeedCount); err != nil {
			return nil, fmt.Errorf("get_history scan: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
