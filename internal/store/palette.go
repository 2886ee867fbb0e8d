package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
	"github.com/ironsheep/pigment-mcp/internal/palette"
)

const paletteSeededKey = "palette_seeded"

// seedPalette installs the default palette the first time a database is
// opened. A palette the user later empties stays empty.
func (s *Store) seedPalette(ctx context.Context) error {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", paletteSeededKey).Scan(&value)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check palette seed: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := replaceColors(ctx, tx, palette.Default()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO settings(key, value) VALUES (?, ?)", paletteSeededKey, "1"); err != nil {
			return fmt.Errorf("mark palette seeded: %w", err)
		}
		s.logger.Info("seeded default palette", "colors", palette.Default().Len())
		return nil
	})
}

// Palette returns the stored palette in insertion order.
func (s *Store) Palette(ctx context.Context) (palette.Palette, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT body FROM palette_colors ORDER BY position, id")
	if err != nil {
		return palette.Palette{}, fmt.Errorf("query palette: %w", err)
	}
	defer rows.Close()

	colors := []colormodel.Color{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return palette.Palette{}, fmt.Errorf("scan palette color: %w", err)
		}
		var c colormodel.Color
		if err := json.Unmarshal([]byte(body), &c); err != nil {
			return palette.Palette{}, fmt.Errorf("decode palette color: %w", err)
		}
		colors = append(colors, c)
	}
	if err := rows.Err(); err != nil {
		return palette.Palette{}, fmt.Errorf("iterate palette: %w", err)
	}
	return palette.Palette{Colors: colors}, nil
}

// AddColor appends c to the palette. A color without an id gets a fresh one;
// the stored color is returned.
func (s *Store) AddColor(ctx context.Context, c colormodel.Color) (colormodel.Color, error) {
	if c.ID == "" {
		c.ID = colormodel.NewID()
	}
	body, err := json.Marshal(c)
	if err != nil {
		return colormodel.Color{}, fmt.Errorf("encode color: %w", err)
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM palette_colors WHERE id = ?", c.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check color id: %w", err)
		}
		if exists > 0 {
			return fmt.Errorf("%w: color %q", ErrDuplicateID, c.ID)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO palette_colors(id, position, body)
			VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM palette_colors), ?)
		`, c.ID, string(body))
		if err != nil {
			return fmt.Errorf("insert color: %w", err)
		}
		return nil
	})
	if err != nil {
		return colormodel.Color{}, err
	}
	return c, nil
}

// RemoveColor deletes the color id from the palette.
func (s *Store) RemoveColor(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM palette_colors WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete color: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete color: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: color %q", ErrNotFound, id)
	}
	return nil
}

// ReplacePalette swaps the whole palette for p.
func (s *Store) ReplacePalette(ctx context.Context, p palette.Palette) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return replaceColors(ctx, tx, p)
	})
}

// ResetPalette restores the default palette.
func (s *Store) ResetPalette(ctx context.Context) (palette.Palette, error) {
	p := palette.Default()
	if err := s.ReplacePalette(ctx, p); err != nil {
		return palette.Palette{}, err
	}
	return p, nil
}

func replaceColors(ctx context.Context, tx *sql.Tx, p palette.Palette) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM palette_colors"); err != nil {
		return fmt.Errorf("clear palette: %w", err)
	}
	for i, c := range p.Colors {
		body, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode color %q: %w", c.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO palette_colors(id, position, body) VALUES (?, ?, ?)",
			c.ID, i, string(body),
		); err != nil {
			return fmt.Errorf("insert color %q: %w", c.ID, err)
		}
	}
	return nil
}
