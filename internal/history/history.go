// Package history 把每次成功的余额查询追加到 sqlite，作为审计日志。
// 它不是会话状态的来源，会话重启后不会从这里恢复。
package history

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/betbot/exchangett/internal/session"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var log = logrus.WithField("module", "history")

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// SourceSession 由会话事件写入的记录
const SourceSession = "session"

// Entry 一条余额记录
type Entry struct {
	ID      int64     `json:"id"`
	Account string    `json:"account"`
	Balance string    `json:"balance"`
	Source  string    `json:"source"`
	TS      time.Time `json:"ts"`
}

// Wei 余额的整数形式
func (e Entry) Wei() *big.Int {
	v, ok := new(big.Int).SetString(e.Balance, 10)
	if !ok {
		return new(big.Int)
	}
	return v
}

// Store sqlite 余额历史
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open 打开（必要时创建）数据库并迁移表结构。path 为 ":memory:" 时使用内存库。
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history db path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite：单连接更稳定
	db.SetMaxIdleConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`
CREATE TABLE IF NOT EXISTS balance_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  account TEXT NOT NULL,
  balance_wei TEXT NOT NULL,
  source TEXT NOT NULL,
  ts TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_balance_history_account_id ON balance_history(account, id DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record 追加一条记录
func (s *Store) Record(ctx context.Context, account string, balance *big.Int, source string) error {
	if account == "" {
		return fmt.Errorf("record balance: empty account")
	}
	if balance == nil {
		balance = new(big.Int)
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO balance_history (account, balance_wei, source, ts)
VALUES (?,?,?,?)
`, account, balance.String(), source, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert balance: %w", err)
	}
	return nil
}

// List 按写入顺序倒序返回记录；account 为空时返回所有账户。
func (s *Store) List(ctx context.Context, account string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, account, balance_wei, source, ts
FROM balance_history
WHERE (?='' OR account=?)
ORDER BY id DESC
LIMIT ?
`, account, account, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			ts string
		)
		if err := rows.Scan(&e.ID, &e.Account, &e.Balance, &e.Source, &ts); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.TS = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// OnStateChanged 实现 session.Handler：每次余额提交后记一笔
func (s *Store) OnStateChanged(ctx context.Context, e *session.StateChangedEvent) error {
	if e.Reason != session.ReasonBalance || e.Current.Address == "" {
		return nil
	}
	if err := s.Record(ctx, e.Current.Address, e.Current.Balance, SourceSession); err != nil {
		log.Warnf("记录余额失败: %v", err)
		return err
	}
	return nil
}
