package storage

import (
	"database/sql"
	"errors"
	"time"
)

// SQLRecords backs RecordStore with the records table created by internal/db.
// Works unchanged on sqlite and postgres.
type SQLRecords struct{ db *sql.DB }

func NewSQLRecords(db *sql.DB) *SQLRecords { return &SQLRecords{db: db} }

func (s *SQLRecords) Load(key string) ([]byte, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM records WHERE key=$1`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (s *SQLRecords) Save(key string, data []byte) error {
	_, err := s.db.Exec(`INSERT INTO records (key, data, updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (key) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`,
		key, string(data), time.Now().Unix())
	return err
}

func (s *SQLRecords) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM records WHERE key=$1`, key)
	return err
}
