package shoppinglist

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/foodgram/internal/database/cart"
	"github.com/mrlokans/foodgram/internal/database/dbtest"
	"github.com/mrlokans/foodgram/internal/database/ingredients"
	"github.com/mrlokans/foodgram/internal/database/recipes"
	"github.com/mrlokans/foodgram/internal/entities"
	"github.com/mrlokans/foodgram/internal/logging"
)

// mockStore serves all three reader interfaces from memory.
type mockStore struct {
	entries     map[uint][]entities.CartEntry
	lines       map[uint][]entities.RecipeIngredient
	ingredients map[uint]entities.Ingredient

	cartErr       error
	linesErr      error
	ingredientErr error
	lineCalls     int
}

func newMockStore() *mockStore {
	return &mockStore{
		entries:     map[uint][]entities.CartEntry{},
		lines:       map[uint][]entities.RecipeIngredient{},
		ingredients: map[uint]entities.Ingredient{},
	}
}

func (m *mockStore) CartEntries(_ context.Context, userID uint) ([]entities.CartEntry, error) {
	return m.entries[userID], m.cartErr
}

func (m *mockStore) RecipeLines(_ context.Context, recipeID uint) ([]entities.RecipeIngredient, error) {
	m.lineCalls++
	return m.lines[recipeID], m.linesErr
}

func (m *mockStore) IngredientsByID(_ context.Context, ids []uint) (map[uint]entities.Ingredient, error) {
	if m.ingredientErr != nil {
		return nil, m.ingredientErr
	}
	out := map[uint]entities.Ingredient{}
	for _, id := range ids {
		if ing, ok := m.ingredients[id]; ok {
			out[id] = ing
		}
	}
	return out, nil
}

func (m *mockStore) ingredient(id uint, name, unit string) {
	m.ingredients[id] = entities.Ingredient{ID: id, Name: name, MeasurementUnit: unit}
}

func (m *mockStore) recipe(id uint, lines ...[2]int) {
	for _, l := range lines {
		m.lines[id] = append(m.lines[id], entities.RecipeIngredient{RecipeID: id, IngredientID: uint(l[0]), Amount: l[1]})
	}
}

func (m *mockStore) addToCart(userID, recipeID uint) {
	m.entries[userID] = append(m.entries[userID], entities.CartEntry{UserID: userID, RecipeID: recipeID})
}

func newAggregator(m *mockStore) *Aggregator {
	return NewAggregator(m, m, m)
}

func TestAggregator_Build(t *testing.T) {
	ctx := context.Background()

	t.Run("single recipe", func(t *testing.T) {
		m := newMockStore()
		m.ingredient(1, "flour", "g")
		m.ingredient(2, "sugar", "g")
		m.recipe(10, [2]int{1, 200}, [2]int{2, 100})
		m.addToCart(7, 10)

		list, err := newAggregator(m).Build(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, []string{"flour: 200 g;", "sugar: 100 g;"}, list.Lines())
	})

	t.Run("sums across recipes in first-seen order", func(t *testing.T) {
		m := newMockStore()
		m.ingredient(1, "flour", "g")
		m.ingredient(3, "egg", "pcs")
		m.recipe(10, [2]int{1, 200})
		m.recipe(11, [2]int{1, 150}, [2]int{3, 2})
		m.addToCart(7, 10)
		m.addToCart(7, 11)

		list, err := newAggregator(m).Build(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, "flour: 350 g;\negg: 2 pcs;", list.Render())
	})

	t.Run("same ingredient twice in one recipe", func(t *testing.T) {
		m := newMockStore()
		m.ingredient(1, "butter", "g")
		m.recipe(10, [2]int{1, 20}, [2]int{1, 30})
		m.addToCart(7, 10)

		list, err := newAggregator(m).Build(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, []string{"butter: 50 g;"}, list.Lines())
	})

	t.Run("duplicate cart entries each contribute", func(t *testing.T) {
		m := newMockStore()
		m.ingredient(1, "flour", "g")
		m.recipe(10, [2]int{1, 200})
		m.addToCart(7, 10)
		m.addToCart(7, 10)

		list, err := newAggregator(m).Build(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, []string{"flour: 400 g;"}, list.Lines())
	})

	t.Run("empty cart", func(t *testing.T) {
		m := newMockStore()

		list, err := newAggregator(m).Build(ctx, 7)

		require.NoError(t, err)
		assert.Zero(t, list.Len())
		assert.Equal(t, "", list.Render())
	})

	t.Run("zero amount still listed", func(t *testing.T) {
		m := newMockStore()
		m.ingredient(1, "salt", "pinch")
		m.recipe(10, [2]int{1, 0})
		m.addToCart(7, 10)

		list, err := newAggregator(m).Build(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, []string{"salt: 0 pinch;"}, list.Lines())
	})
}

func TestAggregator_MissingIngredientIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{}) })

	m := newMockStore()
	m.ingredient(1, "flour", "g")
	m.recipe(10, [2]int{1, 200}, [2]int{99, 5})
	m.addToCart(7, 10)

	list, err := newAggregator(m).Build(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, []string{"flour: 200 g;"}, list.Lines())
	assert.Contains(t, buf.String(), `"ingredient_id":99`)
}

func TestAggregator_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("anonymous user rejected before any query", func(t *testing.T) {
		m := newMockStore()
		_, err := newAggregator(m).Build(ctx, 0)
		assert.ErrorIs(t, err, ErrAuthenticationRequired)
		assert.Zero(t, m.lineCalls)
	})

	tests := []struct {
		name  string
		setup func(m *mockStore)
	}{
		{name: "cart failure", setup: func(m *mockStore) { m.cartErr = boom }},
		{name: "lines failure", setup: func(m *mockStore) { m.linesErr = boom }},
		{name: "ingredient failure", setup: func(m *mockStore) { m.ingredientErr = boom }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockStore()
			m.ingredient(1, "flour", "g")
			m.recipe(10, [2]int{1, 200})
			m.addToCart(7, 10)
			tt.setup(m)

			list, err := newAggregator(m).Build(ctx, 7)

			assert.ErrorIs(t, err, boom)
			assert.Nil(t, list)
		})
	}
}

func TestAggregator_WithRepositories(t *testing.T) {
	db := dbtest.NewDB(t)
	ctx := context.Background()
	cartRepo := cart.NewRepository(db)
	agg := NewAggregator(cartRepo, recipes.NewRepository(db), ingredients.NewRepository(db))

	user := dbtest.CreateUser(t, db, "shopper")
	flour := dbtest.CreateIngredient(t, db, "flour", "g")
	sugar := dbtest.CreateIngredient(t, db, "sugar", "g")
	egg := dbtest.CreateIngredient(t, db, "egg", "pcs")

	x := dbtest.CreateRecipe(t, db, user, "x", dbtest.Line{Ingredient: flour, Amount: 200}, dbtest.Line{Ingredient: sugar, Amount: 100})
	y := dbtest.CreateRecipe(t, db, user, "y", dbtest.Line{Ingredient: flour, Amount: 150}, dbtest.Line{Ingredient: egg, Amount: 2})

	require.NoError(t, cartRepo.AddToCart(ctx, user.ID, x.ID))
	require.NoError(t, cartRepo.AddToCart(ctx, user.ID, y.ID))

	first, err := agg.Build(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"flour: 350 g;", "sugar: 100 g;", "egg: 2 pcs;"}, first.Lines())

	second, err := agg.Build(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Render(), second.Render(), "repeated builds are identical")

	var lineCount int64
	require.NoError(t, db.Model(&entities.RecipeIngredient{}).Count(&lineCount).Error)
	assert.Equal(t, int64(4), lineCount, "aggregation never writes")

	require.NoError(t, cartRepo.RemoveFromCart(ctx, user.ID, x.ID))

	after, err := agg.Build(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"flour: 150 g;", "egg: 2 pcs;"}, after.Lines())
}
