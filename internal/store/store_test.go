package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
	"github.com/ironsheep/pigment-mcp/internal/palette"
	"github.com/ironsheep/pigment-mcp/internal/recipe"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "pigments.db")
	s, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

// fixedClock makes s report times starting at base, one minute apart.
func fixedClock(s *Store, base time.Time) {
	next := base
	s.now = func() time.Time {
		t := next
		next = next.Add(time.Minute)
		return t
	}
}

func TestOpen_SeedsDefaultPalette(t *testing.T) {
	s, _ := openTestStore(t)

	p, err := s.Palette(context.Background())
	require.NoError(t, err)
	require.Equal(t, palette.Default().Len(), p.Len())
	for i, c := range palette.Default().Colors {
		assert.Equal(t, c.ID, p.Colors[i].ID)
		assert.Equal(t, c.Hex, p.Colors[i].Hex)
		assert.Equal(t, c.Name, p.Colors[i].Name)
		assert.Equal(t, c.LAB, p.Colors[i].LAB)
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)

	require.NoError(t, s.RemoveColor(ctx, "black-1"))
	require.NoError(t, s.RemoveColor(ctx, "white-1"))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	p, err := reopened.Palette(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Len(), "reopening must neither re-run migrations nor re-seed")
}

func TestOpen_EmptiedPaletteStaysEmpty(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)

	require.NoError(t, s.ReplacePalette(ctx, palette.New()))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	p, err := reopened.Palette(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
	assert.NotNil(t, p.Colors)
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), MemoryPath, nil)
	require.NoError(t, err)
	defer s.Close()

	p, err := s.Palette(context.Background())
	require.NoError(t, err)
	assert.Equal(t, palette.Default().Len(), p.Len())
}

func TestAddAndRemoveColor(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	ochre := colormodel.MustHex("#CC7722", colormodel.WithID("ochre"), colormodel.WithName("Yellow Ochre"))
	got, err := s.AddColor(ctx, ochre)
	require.NoError(t, err)
	assert.Equal(t, "ochre", got.ID)

	_, err = s.AddColor(ctx, ochre)
	require.ErrorIs(t, err, ErrDuplicateID)

	p, err := s.Palette(ctx)
	require.NoError(t, err)
	last := p.Colors[p.Len()-1]
	assert.Equal(t, "ochre", last.ID, "new colors go to the end")
	assert.Equal(t, "Yellow Ochre", last.Name)

	require.NoError(t, s.RemoveColor(ctx, "ochre"))
	require.ErrorIs(t, s.RemoveColor(ctx, "ochre"), ErrNotFound)

	p, err = s.Palette(ctx)
	require.NoError(t, err)
	_, found := p.ColorByID("ochre")
	assert.False(t, found)
}

func TestAddColor_AssignsID(t *testing.T) {
	s, _ := openTestStore(t)

	c := colormodel.MustHex("#123456")
	c.ID = ""
	got, err := s.AddColor(context.Background(), c)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
}

func TestResetPalette(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	require.NoError(t, s.ReplacePalette(ctx, palette.New(colormodel.MustHex("#ABCDEF", colormodel.WithID("x")))))
	p, err := s.ResetPalette(ctx)
	require.NoError(t, err)
	assert.Equal(t, palette.Default().Len(), p.Len())

	stored, err := s.Palette(ctx)
	require.NoError(t, err)
	assert.Equal(t, palette.Default().Len(), stored.Len())
	_, found := stored.ColorByID("x")
	assert.False(t, found)
}

func testRecipe(t *testing.T, name string) recipe.Recipe {
	t.Helper()
	r := recipe.New(
		colormodel.MustHex("#800080"),
		colormodel.MustHex("#800080"),
		[]recipe.Ingredient{{ColorID: "red-1", Proportion: 0.5}, {ColorID: "blue-1", Proportion: 0.5}},
	)
	r.Name = name
	return r
}

func TestSaveRecipe_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixedClock(s, base)

	r := testRecipe(t, "Purple")
	r.CreatedAt = time.Time{}
	saved, err := s.SaveRecipe(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, r.ID, saved.ID)
	assert.True(t, saved.CreatedAt.Equal(base))
	assert.True(t, saved.UpdatedAt.Equal(base))

	got, err := s.Recipe(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Purple", got.Name)
	assert.Equal(t, r.Ingredients, got.Ingredients)
	assert.Equal(t, r.TargetColor.Hex, got.TargetColor.Hex)
	assert.Equal(t, r.TargetColor.ID, got.TargetColor.ID)
	assert.Equal(t, r.TargetColor.LAB, got.TargetColor.LAB)
	assert.True(t, got.CreatedAt.Equal(base))
}

func TestSaveRecipe_UpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixedClock(s, base)

	saved, err := s.SaveRecipe(ctx, testRecipe(t, "Purple"))
	require.NoError(t, err)
	created := saved.CreatedAt

	saved.Name = "Royal purple"
	saved.Notes = "add blue slowly"
	saved.CreatedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	updated, err := s.SaveRecipe(ctx, saved)
	require.NoError(t, err)

	assert.True(t, updated.CreatedAt.Equal(created), "created_at must come from the stored row")
	assert.True(t, updated.UpdatedAt.Equal(base.Add(time.Minute)))

	got, err := s.Recipe(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Royal purple", got.Name)
	assert.Equal(t, "add blue slowly", got.Notes)

	all, err := s.Recipes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecipes_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	empty, err := s.Recipes(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i, name := range []string{"first", "second", "third"} {
		r := testRecipe(t, name)
		r.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		saved, err := s.SaveRecipe(ctx, r)
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}

	all, err := s.Recipes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestDeleteRecipe(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	saved, err := s.SaveRecipe(ctx, testRecipe(t, ""))
	require.NoError(t, err)

	require.NoError(t, s.DeleteRecipe(ctx, saved.ID))
	require.ErrorIs(t, s.DeleteRecipe(ctx, saved.ID), ErrNotFound)

	_, err = s.Recipe(ctx, saved.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
