package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// AuditEntry is one row of audit_log.
type AuditEntry struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Details    map[string]interface{}
	At         time.Time
}

// WriteAudit appends entry to audit_log and returns the row id.
func WriteAudit(ctx context.Context, exec Execer, entry AuditEntry) (string, error) {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return "", fmt.Errorf("encode audit details: %w", err)
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	id := uuid.NewString()
	_, err = exec.ExecContext(ctx, `
		INSERT INTO audit_log (id, actor_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, details, entry.At)
	if err != nil {
		return "", fmt.Errorf("insert audit_log: %w", err)
	}
	return id, nil
}
