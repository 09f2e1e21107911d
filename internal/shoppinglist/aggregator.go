// Package shoppinglist builds the downloadable shopping list for a user's cart.
//
// For every cart entry the ingredient lines of its recipe are fetched and
// amounts are summed per ingredient, regardless of which recipe contributed
// them. Output keeps the order in which ingredients were first met (cart
// entries in insertion order, lines in insertion order within a recipe).
//
// Nothing is persisted: the running totals live in memory for the duration
// of one Build call.
package shoppinglist

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrlokans/foodgram/internal/entities"
	"github.com/mrlokans/foodgram/internal/logging"
)

// ErrAuthenticationRequired is returned for the anonymous user (ID 0).
var ErrAuthenticationRequired = errors.New("authentication credentials were not provided")

type CartReader interface {
	CartEntries(ctx context.Context, userID uint) ([]entities.CartEntry, error)
}

type LineReader interface {
	RecipeLines(ctx context.Context, recipeID uint) ([]entities.RecipeIngredient, error)
}

type IngredientReader interface {
	IngredientsByID(ctx context.Context, ids []uint) (map[uint]entities.Ingredient, error)
}

// Aggregator builds shopping lists from injected stores; it holds no state
// between calls and is safe for concurrent use.
type Aggregator struct {
	cart        CartReader
	lines       LineReader
	ingredients IngredientReader
}

func NewAggregator(cart CartReader, lines LineReader, ingredients IngredientReader) *Aggregator {
	return &Aggregator{cart: cart, lines: lines, ingredients: ingredients}
}

// totals accumulates amounts per ingredient in first-seen order.
type totals struct {
	order  []uint
	amount map[uint]int
}

func newTotals() *totals {
	return &totals{amount: make(map[uint]int)}
}

func (t *totals) add(ingredientID uint, amount int) {
	if _, seen := t.amount[ingredientID]; !seen {
		t.order = append(t.order, ingredientID)
	}
	t.amount[ingredientID] += amount
}

// Build aggregates the cart of userID. Any store failure is returned as-is
// (wrapped); a line whose ingredient no longer exists is skipped with a
// warning.
func (a *Aggregator) Build(ctx context.Context, userID uint) (*List, error) {
	if userID == 0 {
		return nil, ErrAuthenticationRequired
	}

	entries, err := a.cart.CartEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	acc := newTotals()
	for _, entry := range entries {
		lines, err := a.lines.RecipeLines(ctx, entry.RecipeID)
		if err != nil {
			return nil, fmt.Errorf("failed to load lines of recipe %d: %w", entry.RecipeID, err)
		}
		for _, line := range lines {
			acc.add(line.IngredientID, line.Amount)
		}
	}

	list := &List{}
	if len(acc.order) == 0 {
		return list, nil
	}

	known, err := a.ingredients.IngredientsByID(ctx, acc.order)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}

	for _, id := range acc.order {
		ingredient, ok := known[id]
		if !ok {
			logging.Ctx(ctx).Warn().
				Uint("user_id", userID).
				Uint("ingredient_id", id).
				Msg("shopping list: ingredient not found, skipping")
			continue
		}
		list.Items = append(list.Items, Item{
			IngredientID: id,
			Name:         ingredient.Name,
			Unit:         ingredient.MeasurementUnit,
			Amount:       acc.amount[id],
		})
	}
	return list, nil
}
