package persistence

import (
	"context"
	"errors"

	"github.com/evaratech/aquanode/internal/model"
)

var (
	// ErrNotFound means the row does not exist in whichever store answered.
	ErrNotFound = errors.New("persistence: not found")
	// ErrUnavailable means neither backend could serve the call.
	ErrUnavailable = errors.New("persistence: no store reachable")
)

// QueryKind enumerates the closed query surface. Callers go through the
// typed Store methods; the kinds exist for dispatch, metrics, and logs,
// never for ad hoc query construction.
type QueryKind string

const (
	QueryGetNodes        QueryKind = "get_nodes"
	QueryGetNode         QueryKind = "get_node"
	QueryGetUser         QueryKind = "get_user"
	QueryCreateUser      QueryKind = "create_user"
	QueryUpdateNodeState QueryKind = "update_node_state"
	QueryInsertHistory   QueryKind = "insert_history"
	QueryGetHistory      QueryKind = "get_history"
)

// backend is one backing store. Both implementations return the normalized
// row shapes from rows.go so the hybrid layer can swap them freely.
type backend interface {
	Name() string
	Probe(ctx context.Context) error
	GetNodes(ctx context.Context, limit, offset int) ([]NodeRow, error)
	GetNode(ctx context.Context, nodeID string) (NodeRow, error)
	GetUser(ctx context.Context, userID string) (UserRow, error)
	CreateUser(ctx context.Context, user UserRow) error
	UpdateNodeState(ctx context.Context, nodeID string, state model.NodeState) error
	InsertHistory(ctx context.Context, rec HistoryRow) error
	GetHistory(ctx context.Context, nodeID string, limit int) ([]HistoryRow, error)
}
