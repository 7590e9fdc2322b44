package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mart-ng/mart-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CONSTRAINT uq_orders_tracking_number UNIQUE (tracking_number)",
		"CHECK (total_amount >= 0)",
		"'pending', 'payment_confirmed', 'payment_not_confirmed'",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS orders",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestUsersMigrationContainsVerificationTables(t *testing.T) {
	content := readMigration(t, "*_create_users.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CONSTRAINT uq_users_email UNIQUE (email)",
		"CREATE TABLE IF NOT EXISTS email_verification_tokens",
		"CONSTRAINT uq_email_verification_tokens_user UNIQUE (user_id)",
		"CHECK (attempts >= 0)",
		"FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
