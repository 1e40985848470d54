package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateMigrationsDir(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestMigrationsCoverCoreTables(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	wanted := map[string]bool{
		"users":            false,
		"products":         false,
		"orders":           false,
		"order_line_items": false,
		"payments":         false,
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join("migrations", e.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		txt := string(b)
		for table := range wanted {
			if strings.Contains(txt, "CREATE TABLE "+table) {
				wanted[table] = true
			}
		}
	}

	for table, found := range wanted {
		if !found {
			t.Errorf("no migration creates table %s", table)
		}
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Coupon Redemptions!")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasSuffix(path, "_add_coupon_redemptions.sql") {
		t.Fatalf("unexpected filename: %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration fails validation: %v", err)
	}
}
