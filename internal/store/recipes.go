package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/pigment-mcp/internal/recipe"
)

// SaveRecipe inserts r, or updates it when a recipe with the same id exists.
//
// New recipes without an id get one. An update keeps the stored CreatedAt
// and sets UpdatedAt to now. The saved recipe is returned.
func (s *Store) SaveRecipe(ctx context.Context, r recipe.Recipe) (recipe.Recipe, error) {
	if r.ID == "" {
		r.ID = recipe.NewID()
	}
	now := s.now()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var created string
		err := tx.QueryRowContext(ctx, "SELECT created_at FROM recipes WHERE id = ?", r.ID).Scan(&created)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if r.CreatedAt.IsZero() {
				r.CreatedAt = now
			}
		case err != nil:
			return fmt.Errorf("look up recipe: %w", err)
		default:
			t, err := time.Parse(timeLayout, created)
			if err != nil {
				return fmt.Errorf("parse created_at of %q: %w", r.ID, err)
			}
			r.CreatedAt = t
		}
		r.CreatedAt = r.CreatedAt.UTC()
		r.UpdatedAt = now

		body, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode recipe: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO recipes(id, name, created_at, updated_at, body) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				updated_at = excluded.updated_at,
				body = excluded.body
		`, r.ID, r.Name, r.CreatedAt.Format(timeLayout), r.UpdatedAt.Format(timeLayout), string(body))
		if err != nil {
			return fmt.Errorf("upsert recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return recipe.Recipe{}, err
	}
	return r, nil
}

// Recipe returns the saved recipe id.
func (s *Store) Recipe(ctx context.Context, id string) (recipe.Recipe, error) {
	var body string
	err := s.db.QueryRowContext(ctx, "SELECT body FROM recipes WHERE id = ?", id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return recipe.Recipe{}, fmt.Errorf("%w: recipe %q", ErrNotFound, id)
	}
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("query recipe: %w", err)
	}
	return decodeRecipe(body)
}

// Recipes lists saved recipes, newest first.
func (s *Store) Recipes(ctx context.Context) ([]recipe.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT body FROM recipes ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	out := []recipe.Recipe{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		r, err := decodeRecipe(body)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	return out, nil
}

// DeleteRecipe removes the saved recipe id.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: recipe %q", ErrNotFound, id)
	}
	return nil
}

func decodeRecipe(body string) (recipe.Recipe, error) {
	var r recipe.Recipe
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return recipe.Recipe{}, fmt.Errorf("decode recipe: %w", err)
	}
	return r, nil
}
