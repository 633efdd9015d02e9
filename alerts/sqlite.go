package alerts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open alerts db: %w", err)
	}
	// One connection serializes writers; SQLite would answer concurrent
	// ones with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create alerts schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, a Alert) error {
	var triggered sql.NullTime
	if a.TriggeredAt != nil {
		triggered = sql.NullTime{Time: a.TriggeredAt.UTC(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts
		(id, symbol, price, condition, channels, status, created_at, triggered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Symbol, a.Price, string(a.Condition), joinChannels(a.Channels),
		string(a.Status), a.CreatedAt.UTC(), triggered,
	)
	if err != nil {
		return fmt.Errorf("insert alert %s: %w", a.ID, err)
	}
	return nil
}

const selectAlert = `
		SELECT id, symbol, price, condition, channels, status, created_at, triggered_at
		FROM alerts`

type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(row scanner) (Alert, error) {
	var (
		a         Alert
		cond      string
		channels  string
		status    string
		triggered sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.Symbol, &a.Price, &cond, &channels, &status, &a.CreatedAt, &triggered); err != nil {
		return Alert{}, err
	}
	a.Condition = Condition(cond)
	a.Channels = splitChannels(channels)
	a.Status = Status(status)
	a.CreatedAt = a.CreatedAt.UTC()
	if triggered.Valid {
		t := triggered.Time.UTC()
		a.TriggeredAt = &t
	}
	return a, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Alert, error) {
	a, err := scanAlert(s.db.QueryRowContext(ctx, selectAlert+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Alert{}, fmt.Errorf("alert %q: %w", id, ErrNotFound)
		}
		return Alert{}, fmt.Errorf("get alert %s: %w", id, err)
	}
	return a, nil
}

func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]Alert, error) {
	var (
		where []string
		args  []any
	)
	if f.Symbol != "" {
		where = append(where, "symbol = ?")
		args = append(args, f.Symbol)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	q := selectAlert
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) SetStatus(ctx context.Context, id string, from, to Status, at time.Time) error {
	var triggered sql.NullTime
	if to == Triggered {
		triggered = sql.NullTime{Time: at.UTC(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET status = ?, triggered_at = ? WHERE id = ? AND status = ?`,
		string(to), triggered, id, string(from))
	if err != nil {
		return fmt.Errorf("update alert %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// Nothing changed: either the alert is gone or another writer moved it.
	cur, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: alert %q is %s, not %s", ErrInvalidTransition, id, cur.Status, from)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete alert %s: %w", id, err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("alert %q: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
