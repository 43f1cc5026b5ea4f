package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rkellett/quarrel/internal/host"
)

// ActorRepository persists actor documents as JSONB and implements the
// host actor-store contract. Embedded documents (injuries, madness and
// mutation items) live in their own table keyed by actor.
type ActorRepository struct {
	db *pgxpool.Pool
}

// NewActorRepository creates an ActorRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewActorRepository(db *pgxpool.Pool) *ActorRepository {
	return &ActorRepository{db: db}
}

var _ host.ActorStore = (*ActorRepository)(nil)

// Create inserts a new actor document and returns its id.
//
// Precondition: doc must be JSON-serializable.
func (r *ActorRepository) Create(ctx context.Context, doc map[string]any) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx, `
		INSERT INTO actors (id, doc) VALUES ($1, $2)`,
		id, doc,
	)
	if err != nil {
		return "", fmt.Errorf("inserting actor: %w", err)
	}
	return id, nil
}

// Get retrieves an actor document by id.
//
// Postcondition: Returns the document or host.ErrActorNotFound.
func (r *ActorRepository) Get(ctx context.Context, id string) (map[string]any, error) {
	var doc map[string]any
	err := r.db.QueryRow(ctx, `SELECT doc FROM actors WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("actor %q: %w", id, host.ErrActorNotFound)
		}
		return nil, fmt.Errorf("loading actor: %w", err)
	}
	return doc, nil
}

// Update applies dot-path partial updates inside a transaction. The row
// is locked for the read-modify-write so concurrent wear applications
// serialize instead of clobbering each other.
//
// Postcondition: Either all changes are applied or none are.
func (r *ActorRepository) Update(ctx context.Context, id string, changes map[string]any) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning actor update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var doc map[string]any
	err = tx.QueryRow(ctx, `SELECT doc FROM actors WHERE id = $1 FOR UPDATE`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("actor %q: %w", id, host.ErrActorNotFound)
		}
		return fmt.Errorf("locking actor: %w", err)
	}

	if err := host.ApplyChanges(doc, changes); err != nil {
		return fmt.Errorf("applying actor changes: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE actors SET doc = $2, updated_at = NOW() WHERE id = $1`,
		id, doc,
	); err != nil {
		return fmt.Errorf("writing actor: %w", err)
	}
	return tx.Commit(ctx)
}

// Delete removes an actor and, via cascade, its embedded documents.
func (r *ActorRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM actors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting actor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("actor %q: %w", id, host.ErrActorNotFound)
	}
	return nil
}

// CreateEmbedded inserts embedded documents on the actor and returns
// their generated ids in input order.
//
// Precondition: the actor must exist; docType must be non-empty.
func (r *ActorRepository) CreateEmbedded(ctx context.Context, actorID, docType string, docs []map[string]any) ([]string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning embedded insert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM actors WHERE id = $1)`, actorID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking actor: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("actor %q: %w", actorID, host.ErrActorNotFound)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := uuid.NewString()
		if _, err := tx.Exec(ctx, `
			INSERT INTO actor_items (id, actor_id, doc_type, doc) VALUES ($1, $2, $3, $4)`,
			id, actorID, docType, doc,
		); err != nil {
			return nil, fmt.Errorf("inserting %s item: %w", docType, err)
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteEmbedded removes embedded documents by id. Unknown ids are
// ignored.
func (r *ActorRepository) DeleteEmbedded(ctx context.Context, actorID, docType string, ids []string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM actor_items WHERE actor_id = $1 AND doc_type = $2 AND id = ANY($3)`,
		actorID, docType, ids,
	)
	if err != nil {
		return fmt.Errorf("deleting %s items: %w", docType, err)
	}
	return nil
}

// ListEmbedded returns the embedded documents of one type on an actor,
// oldest first.
func (r *ActorRepository) ListEmbedded(ctx context.Context, actorID, docType string) ([]map[string]any, error) {
	rows, err := r.db.Query(ctx, `
		SELECT doc FROM actor_items
		WHERE actor_id = $1 AND doc_type = $2
		ORDER BY created_at ASC`,
		actorID, docType,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s items: %w", docType, err)
	}
	defer rows.Close()

	docs := make([]map[string]any, 0)
	for rows.Next() {
		var doc map[string]any
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning %s item: %w", docType, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
