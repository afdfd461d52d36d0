package db

import (
	"strings"
	"testing"
)

func TestMemoryDSN(t *testing.T) {
	if got := MemoryDSN(""); got != "file:journal?mode=memory&cache=private" {
		t.Fatalf("default dsn = %q", got)
	}
	if got := MemoryDSN("x"); !strings.HasPrefix(got, "file:x?") {
		t.Fatalf("dsn = %q", got)
	}
}

func TestInitDB_CreatesSchemaInMemory(t *testing.T) {
	conn, err := InitDB(MemoryDSN("schema_test"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer conn.Close()

	var n int
	err = conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type IN ('table', 'index') AND name LIKE 'launch_events%'`).Scan(&n)
	if err != nil {
		t.Fatalf("query schema: %v", err)
	}
	if n != 2 {
		t.Fatalf("schema objects = %d, want table and index", n)
	}

	if _, err := conn.Exec(`INSERT INTO launch_events (id, occurred_at, type, message) VALUES ('a', CURRENT_TIMESTAMP, 'FIRE', 'x')`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	again, err := InitDB(MemoryDSN("schema_test"))
	if err != nil {
		t.Fatalf("second InitDB: %v", err)
	}
	defer again.Close()
	if err := again.QueryRow(`SELECT COUNT(*) FROM launch_events`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("a fresh open must start empty, got %d rows", n)
	}
}
