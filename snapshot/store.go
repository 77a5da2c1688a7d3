// Package snapshot keeps a local copy of fetched rows in a SQL database so
// they can be inspected without calling the remote service again.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

const table = "records"

// batchSize 一条 INSERT 最多写入的行数
const batchSize = 100

var (
	ErrUnknownDriver = errors.New("snapshot: unsupported driver")
)

var (
	keyColumns    = []string{"kind", "id"}
	updateColumns = []string{"name", "payload", "fetched_at"}
)

type Store struct {
	db      *sql.DB
	dialect Dialect
	sb      sq.StatementBuilderType
}

// Open opens the database with one of the supported drivers, "sqlite3" or
// "mysql".
func Open(driver string, dsn string) (*Store, error) {
	dialect, ok := dialectOf(driver)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return OpenDB(db, dialect), nil
}

// OpenDB 可以传入已有的 *sql.DB，例如测试中的 sqlmock
func OpenDB(db *sql.DB, dialect Dialect) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		sb:      sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the records table when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS "+table+" ("+
		"kind VARCHAR(64) NOT NULL, "+
		"id VARCHAR(128) NOT NULL, "+
		"name VARCHAR(512) NOT NULL, "+
		"payload TEXT NOT NULL, "+
		"fetched_at BIGINT NOT NULL, "+
		"PRIMARY KEY (kind, id))")
	return err
}

// Save upserts records in one transaction. A record whose (kind, id) is
// already stored replaces the old row.
func (s *Store) Save(ctx context.Context, records []Record) (err error) {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		query, args := s.buildUpsert(records[start:end])
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// buildUpsert
// INSERT INTO `records`(`kind`,`id`,`name`,`payload`,`fetched_at`) VALUES(?,?,?,?,?),(?,?,?,?,?) ON ...;
func (s *Store) buildUpsert(records []Record) (string, []any) {
	q := s.dialect.quoter()
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	quote(&sb, q, table)
	sb.WriteByte('(')
	cols := append(append([]string{}, keyColumns...), updateColumns...)
	for i, col := range cols {
		if i > 0 {
			sb.WriteByte(',')
		}
		quote(&sb, q, col)
	}
	sb.WriteString(") VALUES")

	args := make([]any, 0, len(records)*len(cols))
	for i, r := range records {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("(?,?,?,?,?)")
		args = append(args, r.Kind, r.ID, r.Name, string(r.Payload), r.FetchedAt.UnixMilli())
	}
	s.dialect.buildUpsert(&sb, keyColumns, updateColumns)
	sb.WriteByte(';')
	return sb.String(), args
}

// List returns the records of kind ordered by id.
func (s *Store) List(ctx context.Context, kind string) ([]Record, error) {
	query, args, err := s.sb.Select("kind", "id", "name", "payload", "fetched_at").
		From(table).
		Where(sq.Eq{"kind": kind}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []Record{}
	for rows.Next() {
		var (
			r       Record
			payload string
			millis  int64
		)
		if err = rows.Scan(&r.Kind, &r.ID, &r.Name, &payload, &millis); err != nil {
			return nil, err
		}
		r.Payload = []byte(payload)
		r.FetchedAt = time.UnixMilli(millis)
		res = append(res, r)
	}
	return res, rows.Err()
}

// Kinds returns every kind that has at least one record, with its row count.
func (s *Store) Kinds(ctx context.Context) (map[string]int, error) {
	query, args, err := s.sb.Select("kind", "COUNT(*)").
		From(table).
		GroupBy("kind").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[string]int)
	for rows.Next() {
		var (
			kind string
			cnt  int
		)
		if err = rows.Scan(&kind, &cnt); err != nil {
			return nil, err
		}
		res[kind] = cnt
	}
	return res, rows.Err()
}

// Purge deletes every record of kind.
func (s *Store) Purge(ctx context.Context, kind string) (int64, error) {
	query, args, err := s.sb.Delete(table).Where(sq.Eq{"kind": kind}).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
