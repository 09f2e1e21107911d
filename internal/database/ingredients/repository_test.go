package ingredients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/foodgram/internal/database/dbtest"
	"github.com/mrlokans/foodgram/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	return NewRepository(dbtest.NewDB(t))
}

func names(items []entities.Ingredient) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.Name)
	}
	return out
}

func TestRepository_CreateIngredient(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateIngredient(ctx, "flour", "g")
	require.NoError(t, err)

	// Same name with another unit is a distinct ingredient
	_, err = repo.CreateIngredient(ctx, "flour", "cup")
	require.NoError(t, err)

	_, err = repo.CreateIngredient(ctx, "flour", "g")
	assert.ErrorIs(t, err, ErrIngredientExists)
}

func TestRepository_ImportIngredients(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateIngredient(ctx, "sugar", "g")
	require.NoError(t, err)

	inserted, err := repo.ImportIngredients(ctx, []entities.Ingredient{
		{Name: "sugar", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "egg", MeasurementUnit: "pcs"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)

	all, err := repo.SearchIngredients(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"egg", "salt", "sugar"}, names(all))
}

func TestRepository_SearchIngredients(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for _, n := range []string{"Sugar", "salt", "sour cream", "pasta", "Мука", "мускат", "100% juice"} {
		_, err := repo.CreateIngredient(ctx, n, "g")
		require.NoError(t, err)
	}

	tests := []struct {
		prefix   string
		expected []string
	}{
		{prefix: "s", expected: []string{"Sugar", "salt", "sour cream"}},
		{prefix: "SU", expected: []string{"Sugar"}},
		{prefix: "so", expected: []string{"sour cream"}},
		{prefix: "мук", expected: []string{"Мука"}},
		{prefix: "Му", expected: []string{"Мука", "мускат"}},
		{prefix: "100%", expected: []string{"100% juice"}},
		{prefix: "%", expected: []string{}},
		{prefix: "x", expected: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			found, err := repo.SearchIngredients(ctx, tt.prefix)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.expected, names(found))
		})
	}
}

func TestRepository_IngredientsByID(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	flour, err := repo.CreateIngredient(ctx, "flour", "g")
	require.NoError(t, err)

	found, err := repo.IngredientsByID(ctx, []uint{flour.ID, 9999})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, "flour", found[flour.ID].Name)

	_, err = repo.GetIngredientByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrIngredientNotFound)
}
