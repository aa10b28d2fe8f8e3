package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsArePaired(t *testing.T) {
	names, err := fs.Glob(FS, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("no migrations embedded")
	}
	seen := map[string]int{}
	for _, name := range names {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			seen[strings.TrimSuffix(name, ".up.sql")]++
		case strings.HasSuffix(name, ".down.sql"):
			seen[strings.TrimSuffix(name, ".down.sql")]--
		default:
			t.Errorf("unexpected file %s", name)
		}
	}
	for base, n := range seen {
		if n != 0 {
			t.Errorf("migration %s is missing its up or down file", base)
		}
	}
}

func TestOutboxSchemaMatchesStore(t *testing.T) {
	body, err := fs.ReadFile(FS, "000002_outbox.up.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, col := range []string{"aggregate_id", "payload", "delivered_at", "processed_events"} {
		if !strings.Contains(string(body), col) {
			t.Errorf("outbox schema lacks %s", col)
		}
	}
}
