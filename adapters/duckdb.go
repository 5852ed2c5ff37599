package adapters

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/pkg/errors"
)

const duckdbSchema = `CREATE TABLE IF NOT EXISTS tree_roots (
	root_key VARCHAR PRIMARY KEY,
	name VARCHAR NOT NULL,
	type VARCHAR NOT NULL,
	parent VARCHAR,
	children VARCHAR NOT NULL
)`

// DuckDBStore keeps the root document in a DuckDB table with children encoded as JSON.
type DuckDBStore struct {
	conn   *sql.DB
	logger util.Logger
}

// NewDuckDBStore opens (creating if needed) the database at path.
// An empty path opens an in-memory database.
func NewDuckDBStore(ctx context.Context, path string) (*DuckDBStore, error) {
	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(err, "duckdb open")
	}
	// in-memory databases are per connection
	conn.SetMaxOpenConns(1)
	if _, err := conn.ExecContext(ctx, duckdbSchema); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "duckdb create schema")
	}
	logger := util.GetLogger("DuckDBStore")
	logger.Info().Str("path", path).Msg("Opened duckdb store")
	return &DuckDBStore{conn: conn, logger: logger}, nil
}

func (s *DuckDBStore) FindRoot(ctx context.Context) (*treefs.Node, error) {
	var (
		root     treefs.Node
		typ      string
		children string
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT root_key, name, type, children FROM tree_roots WHERE name = ? AND parent IS NULL LIMIT 1`,
		treefs.RootName,
	).Scan(&root.Key, &root.Name, &typ, &children)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "duckdb find root")
	}
	root.Type = treefs.NodeType(typ)
	if err := json.Unmarshal([]byte(children), &root.Children); err != nil {
		return nil, errors.Wrap(err, "duckdb decode children")
	}
	return root.Clone(), nil
}

func (s *DuckDBStore) CreateRoot(ctx context.Context, root *treefs.Node) (*treefs.Node, error) {
	created := root.Clone()
	created.Key = uuid.NewString()
	children, err := encodeChildren(created.Children)
	if err != nil {
		return nil, err
	}
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO tree_roots (root_key, name, type, parent, children) VALUES (?, ?, ?, NULL, ?)`,
		created.Key, created.Name, string(created.Type), children,
	)
	if err != nil {
		return nil, errors.Wrap(err, "duckdb insert root")
	}
	s.logger.Debug().Str("key", created.Key).Msg("Created root document")
	return created, nil
}

func (s *DuckDBStore) ReplaceChildren(ctx context.Context, rootKey string, children []*treefs.Node) (treefs.UpdateResult, error) {
	encoded, err := encodeChildren(children)
	if err != nil {
		return treefs.UpdateResult{}, err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return treefs.UpdateResult{}, errors.Wrap(err, "duckdb begin")
	}
	defer tx.Rollback() //nolint:errcheck

	var res treefs.UpdateResult
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tree_roots WHERE root_key = ?`, rootKey,
	).Scan(&res.MatchedCount); err != nil {
		return treefs.UpdateResult{}, errors.Wrap(err, "duckdb match root")
	}
	// unchanged children report zero modified rows, as a document store would
	r, err := tx.ExecContext(ctx,
		`UPDATE tree_roots SET children = ? WHERE root_key = ? AND children <> ?`,
		encoded, rootKey, encoded,
	)
	if err != nil {
		return treefs.UpdateResult{}, errors.Wrap(err, "duckdb update children")
	}
	if res.ModifiedCount, err = r.RowsAffected(); err != nil {
		return treefs.UpdateResult{}, errors.Wrap(err, "duckdb rows affected")
	}
	if err := tx.Commit(); err != nil {
		return treefs.UpdateResult{}, errors.Wrap(err, "duckdb commit")
	}
	return res, nil
}

func (s *DuckDBStore) Close(context.Context) error {
	return errors.Wrap(s.conn.Close(), "duckdb close")
}

func encodeChildren(children []*treefs.Node) (string, error) {
	if children == nil {
		children = []*treefs.Node{}
	}
	b, err := json.Marshal(children)
	if err != nil {
		return "", errors.Wrap(err, "encode children")
	}
	return string(b), nil
}
