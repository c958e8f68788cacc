package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/isdelr/ender-crm/internal/database"
)

// SQLStore keeps sessions in the application's database.
type SQLStore struct {
	db *database.DB
}

// NewSQLStore creates a session store backed by the sessions table.
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Session, error) {
	var data string
	err := s.db.QueryRowContext(ctx, s.db.Rebind("SELECT data FROM sessions WHERE id = ?"), id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = s.Delete(ctx, id)
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (s *SQLStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE sessions SET data = ?, expires_at = ? WHERE id = ?"),
		string(data), sess.ExpiresAt.UTC(), sess.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind("INSERT INTO sessions(id, data, expires_at) VALUES(?, ?, ?)"),
		sess.ID, string(data), sess.ExpiresAt.UTC())
	return err
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM sessions WHERE id = ?"), id)
	return err
}
