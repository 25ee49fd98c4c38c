package sqlite

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/game"
	"golang.org/x/crypto/bcrypt"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	old := game.PasswordHashCost
	game.PasswordHashCost = bcrypt.MinCost
	t.Cleanup(func() { game.PasswordHashCost = old })

	path := filepath.Join(t.TempDir(), "matreshka.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	_, path := openTestStore(t)

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() {
		_ = sqlDB.Close()
	}()

	for _, table := range []string{"users", "scores", "app_state", migrationTable} {
		var name string
		err := sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s: %v", table, err)
		}
	}
}

func TestReopenKeepsUserAndScores(t *testing.T) {
	store, path := openTestStore(t)
	if err := store.Register("Olga", "matr"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := store.SetBestScore(config.LevelGrowth, 310); err != nil {
		t.Fatalf("set best: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if reopened.CurrentUser() != "Olga" {
		t.Errorf("current user = %q, want Olga", reopened.CurrentUser())
	}
	best, err := reopened.BestScore(config.LevelGrowth)
	if err != nil || best != 310 {
		t.Errorf("best = %d, %v; want 310", best, err)
	}
	// 迁移只记录一次
	var applied int
	if err := reopened.sqlDB.QueryRow(`SELECT COUNT(*) FROM ` + migrationTable).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied migrations = %d, want 2", applied)
	}
}

func TestAccounts(t *testing.T) {
	store, _ := openTestStore(t)

	if _, err := store.BestScore(config.LevelMatch); !errors.Is(err, game.ErrNoUser) {
		t.Errorf("expected ErrNoUser, got %v", err)
	}
	if err := store.Register("ivan", "pw"); err == nil {
		t.Error("expected short password to be rejected")
	}
	if err := store.Register("ivan", "password"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := store.Register("IVAN", "password"); !errors.Is(err, game.ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}

	store.Logout()
	if store.CurrentUser() != "" {
		t.Fatalf("expected logout")
	}
	if err := store.Login("ivan", "nope"); !errors.Is(err, game.ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials, got %v", err)
	}
	if err := store.UseProfile("ivan"); !errors.Is(err, game.ErrBadCredentials) {
		t.Errorf("expected password user to reject UseProfile, got %v", err)
	}
	if err := store.Login("Ivan", "password"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if store.CurrentUser() != "ivan" {
		t.Errorf("current user = %q", store.CurrentUser())
	}

	if err := store.UseProfile("guest"); err != nil {
		t.Fatalf("use profile: %v", err)
	}
	users, err := store.Users()
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %v", users)
	}
}

func TestPreferences(t *testing.T) {
	store, _ := openTestStore(t)
	if err := store.UseProfile("prefs"); err != nil {
		t.Fatalf("use profile: %v", err)
	}

	if v, _ := store.UserPreference(game.PrefDifficulty); v != "medium" {
		t.Errorf("default difficulty = %q", v)
	}
	if err := store.SetUserPreference(game.PrefAvatarColor, "green"); err != nil {
		t.Fatalf("set avatar: %v", err)
	}
	if v, _ := store.UserPreference(game.PrefAvatarColor); v != "green" {
		t.Errorf("avatar = %q, want green", v)
	}
	if err := store.SetUserPreference(game.PrefVolume, "1.5"); err == nil {
		t.Error("expected out-of-range volume to fail")
	}
	if _, err := store.UserPreference("theme"); !errors.Is(err, game.ErrUnknownPreference) {
		t.Errorf("expected ErrUnknownPreference, got %v", err)
	}
}

func TestTopScoresAndDelete(t *testing.T) {
	store, _ := openTestStore(t)
	seed := []struct {
		name  string
		score int
	}{
		{"zoe", 200}, {"adam", 200}, {"mila", 900}, {"none", 0},
	}
	for _, s := range seed {
		if err := store.UseProfile(s.name); err != nil {
			t.Fatalf("use profile %s: %v", s.name, err)
		}
		if err := store.SetBestScore(config.LevelAssembly, s.score); err != nil {
			t.Fatalf("set best: %v", err)
		}
	}

	top, err := store.TopScores(config.LevelAssembly, game.LeaderboardSize)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	want := []string{"mila", "adam", "zoe"}
	if len(top) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), top)
	}
	for i, name := range want {
		if top[i].Username != name {
			t.Errorf("top[%d] = %s, want %s", i, top[i].Username, name)
		}
	}

	if err := store.UseProfile("mila"); err != nil {
		t.Fatalf("use profile: %v", err)
	}
	if err := store.ResetProgress(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if best, _ := store.BestScore(config.LevelAssembly); best != 0 {
		t.Errorf("best after reset = %d", best)
	}

	if err := store.DeleteUser("MILA"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.CurrentUser() != "" {
		t.Error("deleting the current user should log out")
	}
	if err := store.DeleteUser("mila"); !errors.Is(err, game.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	top, _ = store.TopScores(config.LevelAssembly, 1)
	if len(top) != 1 || top[0].Username != "adam" {
		t.Errorf("expected adam alone at limit 1, got %v", top)
	}
}

func TestExtractUpMigration(t *testing.T) {
	got := extractUpMigration("-- +migrate Up\nCREATE X;\n-- +migrate Down\nDROP X;")
	if got != "\nCREATE X;\n" {
		t.Errorf("extractUpMigration = %q", got)
	}
	if got := extractUpMigration("SELECT 1;"); got != "SELECT 1;" {
		t.Errorf("no markers should return content, got %q", got)
	}
}
