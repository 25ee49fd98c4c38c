// Package sqlite 基于 SQLite 的用户与成绩存储
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/game"
	"github.com/decker502/matreshka/pkg/storage/sqlite/migrations"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const currentUserKey = "current_user"

// Store 在 SQLite 中保存用户、偏好和最佳成绩
// 实现 game.UserStore
type Store struct {
	sqlDB     *sql.DB
	currentID string
	now       func() time.Time
}

var _ game.UserStore = (*Store)(nil)

// Open 打开 path 处的数据库，执行迁移并恢复上次登录的用户
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	ctx := context.Background()
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store := &Store{sqlDB: sqlDB, now: time.Now}
	if err := store.restoreCurrentUser(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Printf("[SQLiteStore] Opened %s (current user: %q)", cleanPath, store.CurrentUser())
	return store, nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func userKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (s *Store) restoreCurrentUser(ctx context.Context) error {
	var id string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, currentUserKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load current user: %w", err)
	}

	var exists int
	err = s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check current user: %w", err)
	}
	s.currentID = id
	return nil
}

func (s *Store) setCurrent(ctx context.Context, id string) error {
	s.currentID = id
	if id == "" {
		_, err := s.sqlDB.ExecContext(ctx, `DELETE FROM app_state WHERE key = ?`, currentUserKey)
		if err != nil {
			return fmt.Errorf("clear current user: %w", err)
		}
		return nil
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`,
		s.now().UTC().UnixMilli(), id,
	); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO app_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		currentUserKey, id,
	); err != nil {
		return fmt.Errorf("save current user: %w", err)
	}
	return nil
}

type userRow struct {
	id           string
	username     string
	passwordHash string
}

func (s *Store) findUser(ctx context.Context, username string) (userRow, bool, error) {
	var row userRow
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE username_key = ?`,
		userKey(username),
	).Scan(&row.id, &row.username, &row.passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return userRow{}, false, nil
	}
	if err != nil {
		return userRow{}, false, fmt.Errorf("find user: %w", err)
	}
	return row, true, nil
}

func (s *Store) createUser(ctx context.Context, username, passwordHash string) (string, error) {
	username = strings.TrimSpace(username)
	if err := game.ValidateUsername(username); err != nil {
		return "", err
	}
	if _, exists, err := s.findUser(ctx, username); err != nil {
		return "", err
	} else if exists {
		return "", fmt.Errorf("%w: %s", game.ErrUserExists, username)
	}

	id := uuid.NewString()
	now := s.now().UTC().UnixMilli()
	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, username, username_key, password_hash, difficulty, avatar_color, volume, registered_at, last_login_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, username, userKey(username), passwordHash,
		string(config.DefaultDifficulty), string(config.DefaultAvatarColor), "0.80",
		now, now,
	); err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	log.Printf("[SQLiteStore] Created user %s", username)
	return id, nil
}

// Register 注册带密码的用户并登录
func (s *Store) Register(username, password string) error {
	if err := game.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := game.HashPassword(password)
	if err != nil {
		return err
	}
	ctx := context.Background()
	id, err := s.createUser(ctx, username, hash)
	if err != nil {
		return err
	}
	return s.setCurrent(ctx, id)
}

// Login 校验密码并切换当前用户
func (s *Store) Login(username, password string) error {
	ctx := context.Background()
	row, ok, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}
	if !ok {
		return game.ErrBadCredentials
	}
	if row.passwordHash != "" {
		if err := game.CheckPassword(row.passwordHash, password); err != nil {
			return err
		}
	}
	return s.setCurrent(ctx, row.id)
}

// UseProfile 切换到无密码档案，不存在则创建
func (s *Store) UseProfile(username string) error {
	ctx := context.Background()
	row, ok, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}
	if ok {
		if row.passwordHash != "" {
			return game.ErrBadCredentials
		}
		return s.setCurrent(ctx, row.id)
	}
	id, err := s.createUser(ctx, username, "")
	if err != nil {
		return err
	}
	return s.setCurrent(ctx, id)
}

// Logout 退出当前用户
func (s *Store) Logout() {
	if err := s.setCurrent(context.Background(), ""); err != nil {
		log.Printf("[SQLiteStore] Warning: %v", err)
	}
}

// CurrentUser 当前用户名，未登录返回空串
func (s *Store) CurrentUser() string {
	if s.currentID == "" {
		return ""
	}
	var name string
	if err := s.sqlDB.QueryRow(`SELECT username FROM users WHERE id = ?`, s.currentID).Scan(&name); err != nil {
		return ""
	}
	return name
}

// Users 按注册顺序列出用户
func (s *Store) Users() ([]game.UserInfo, error) {
	rows, err := s.sqlDB.QueryContext(context.Background(),
		`SELECT username, avatar_color, difficulty, registered_at FROM users ORDER BY registered_at, username_key`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []game.UserInfo
	for rows.Next() {
		var info game.UserInfo
		var registeredAt int64
		if err := rows.Scan(&info.Username, &info.AvatarColor, &info.Difficulty, &registeredAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		info.RegisteredAt = time.UnixMilli(registeredAt).UTC()
		users = append(users, info)
	}
	return users, rows.Err()
}

// BestScore 当前用户某关的最佳成绩，没有记录返回 0
func (s *Store) BestScore(level config.LevelID) (int, error) {
	if s.currentID == "" {
		return 0, game.ErrNoUser
	}
	var score int
	err := s.sqlDB.QueryRowContext(context.Background(),
		`SELECT score FROM scores WHERE user_id = ? AND level = ?`, s.currentID, string(level),
	).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load best score: %w", err)
	}
	return score, nil
}

// SetBestScore 写入当前用户某关的最佳成绩
func (s *Store) SetBestScore(level config.LevelID, score int) error {
	if s.currentID == "" {
		return game.ErrNoUser
	}
	if _, err := s.sqlDB.ExecContext(context.Background(),
		`INSERT INTO scores (user_id, level, score, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, level) DO UPDATE SET score = excluded.score, updated_at = excluded.updated_at`,
		s.currentID, string(level), score, s.now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("save best score: %w", err)
	}
	return nil
}

func preferenceColumn(field string) (string, error) {
	switch field {
	case game.PrefDifficulty:
		return "difficulty", nil
	case game.PrefAvatarColor:
		return "avatar_color", nil
	case game.PrefVolume:
		return "volume", nil
	}
	return "", fmt.Errorf("%w: %s", game.ErrUnknownPreference, field)
}

// UserPreference 读取当前用户的偏好
func (s *Store) UserPreference(field string) (string, error) {
	if s.currentID == "" {
		return "", game.ErrNoUser
	}
	column, err := preferenceColumn(field)
	if err != nil {
		return "", err
	}
	var value string
	if err := s.sqlDB.QueryRowContext(context.Background(),
		`SELECT `+column+` FROM users WHERE id = ?`, s.currentID,
	).Scan(&value); err != nil {
		return "", fmt.Errorf("load preference %s: %w", field, err)
	}
	if value == "" {
		return game.DefaultPreference(field)
	}
	return value, nil
}

// SetUserPreference 校验并保存当前用户的偏好
func (s *Store) SetUserPreference(field, value string) error {
	if s.currentID == "" {
		return game.ErrNoUser
	}
	column, err := preferenceColumn(field)
	if err != nil {
		return err
	}
	normalized, err := game.NormalizePreference(field, value)
	if err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(context.Background(),
		`UPDATE users SET `+column+` = ? WHERE id = ?`, normalized, s.currentID,
	); err != nil {
		return fmt.Errorf("save preference %s: %w", field, err)
	}
	return nil
}

// ResetProgress 删除当前用户的全部成绩
func (s *Store) ResetProgress() error {
	if s.currentID == "" {
		return game.ErrNoUser
	}
	if _, err := s.sqlDB.ExecContext(context.Background(),
		`DELETE FROM scores WHERE user_id = ?`, s.currentID,
	); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	return nil
}

// DeleteUser 删除用户及其成绩
func (s *Store) DeleteUser(username string) error {
	ctx := context.Background()
	row, ok, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", game.ErrUserNotFound, username)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM scores WHERE user_id = ?`, row.id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete scores: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, row.id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete user: %w", err)
	}

	if s.currentID == row.id {
		return s.setCurrent(ctx, "")
	}
	return nil
}

// TopScores 某关的排行榜，按分数降序、同分按用户名升序，只包含正分
func (s *Store) TopScores(level config.LevelID, limit int) ([]game.ScoreEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.sqlDB.QueryContext(context.Background(),
		`SELECT u.username, u.avatar_color, sc.score
		 FROM scores sc JOIN users u ON u.id = sc.user_id
		 WHERE sc.level = ? AND sc.score > 0
		 ORDER BY sc.score DESC, u.username ASC
		 LIMIT ?`,
		string(level), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()

	entries := make([]game.ScoreEntry, 0)
	for rows.Next() {
		var e game.ScoreEntry
		if err := rows.Scan(&e.Username, &e.AvatarColor, &e.Score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
