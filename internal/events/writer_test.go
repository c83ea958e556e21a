package events_test

import (
	"context"
	"testing"
	"time"

	"flowapp/internal/db"
	"flowapp/internal/events"
	"flowapp/internal/migrate"
)

func TestAppendWithDefaultClock(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	w := events.Writer{DB: conn}
	ctx := context.Background()
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	err = w.Append(ctx, tx, "order.created", "rest-1", "order", "ORD-1", "user-1", events.EventPayload{"total": 28.19})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if w.Now != nil {
		t.Fatalf("Append must not install a clock on the writer")
	}

	var ts string
	if err := conn.QueryRow(`SELECT ts FROM events WHERE entity_id='ORD-1'`).Scan(&ts); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Fatalf("event ts %q: %v", ts, err)
	}
}
