package http

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/foodgram/internal/database/cart"
	"github.com/mrlokans/foodgram/internal/database/favourites"
	"github.com/mrlokans/foodgram/internal/database/recipes"
	"github.com/mrlokans/foodgram/internal/metrics"
	"github.com/mrlokans/foodgram/internal/shoppinglist"
)

// CartController serves the per-user recipe collections: favorites and the
// shopping cart, plus the aggregated shopping list download.
type CartController struct {
	recipes   RecipeStore
	favorites FavoriteStore
	cart      CartStore
	lists     ShoppingListBuilder
	present   *presenter
}

func NewCartController(recipes RecipeStore, favorites FavoriteStore, cart CartStore, lists ShoppingListBuilder, present *presenter) *CartController {
	return &CartController{
		recipes:   recipes,
		favorites: favorites,
		cart:      cart,
		lists:     lists,
		present:   present,
	}
}

// POST /api/recipes/:id/favorite/
func (cc *CartController) AddFavorite(c *gin.Context) {
	cc.add(c, "favorite", func(userID, recipeID uint) error {
		err := cc.favorites.AddFavorite(c.Request.Context(), userID, recipeID)
		if errors.Is(err, favourites.ErrAlreadyFavorited) {
			return errDuplicate{err}
		}
		return err
	})
}

// DELETE /api/recipes/:id/favorite/
func (cc *CartController) RemoveFavorite(c *gin.Context) {
	cc.remove(c, "favorite", func(userID, recipeID uint) error {
		err := cc.favorites.RemoveFavorite(c.Request.Context(), userID, recipeID)
		if errors.Is(err, favourites.ErrNotFavorited) {
			return errAbsent{err}
		}
		return err
	})
}

// POST /api/recipes/:id/shopping_cart/
func (cc *CartController) AddToCart(c *gin.Context) {
	cc.add(c, "shopping cart", func(userID, recipeID uint) error {
		err := cc.cart.AddToCart(c.Request.Context(), userID, recipeID)
		if errors.Is(err, cart.ErrAlreadyInCart) {
			return errDuplicate{err}
		}
		return err
	})
}

// DELETE /api/recipes/:id/shopping_cart/
func (cc *CartController) RemoveFromCart(c *gin.Context) {
	cc.remove(c, "shopping cart", func(userID, recipeID uint) error {
		err := cc.cart.RemoveFromCart(c.Request.Context(), userID, recipeID)
		if errors.Is(err, cart.ErrNotInCart) {
			return errAbsent{err}
		}
		return err
	})
}

// DownloadShoppingList aggregates every cart entry of the caller into a
// plain-text attachment. Failures answer 500 without a partial body.
// GET /api/recipes/download_shopping_cart/
func (cc *CartController) DownloadShoppingList(c *gin.Context) {
	list, err := cc.lists.Build(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "build shopping list")
		return
	}
	metrics.ObserveShoppingList(list.Len())

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", shoppinglist.Filename))
	c.Data(200, "text/plain; charset=UTF-8", []byte(list.Render()))
}

type errDuplicate struct{ error }

type errAbsent struct{ error }

func (cc *CartController) add(c *gin.Context, op string, add func(userID, recipeID uint) error) {
	recipeID, ok := parseIDParam(c, "id", "recipe")
	if !ok {
		return
	}
	recipe, err := cc.recipes.GetRecipeByID(c.Request.Context(), recipeID)
	if err != nil {
		if errors.Is(err, recipes.ErrRecipeNotFound) {
			respondNotFound(c, "recipe")
			return
		}
		respondInternalError(c, err, "add to "+op)
		return
	}

	if err := add(GetUserID(c), recipeID); err != nil {
		var dup errDuplicate
		if errors.As(err, &dup) {
			respondBadRequest(c, dup.Error())
			return
		}
		respondInternalError(c, err, "add to "+op)
		return
	}
	respondCreated(c, cc.present.shortRecipe(c, recipe))
}

func (cc *CartController) remove(c *gin.Context, op string, remove func(userID, recipeID uint) error) {
	recipeID, ok := parseIDParam(c, "id", "recipe")
	if !ok {
		return
	}
	exists, err := cc.recipes.RecipeExists(c.Request.Context(), recipeID)
	if err != nil {
		respondInternalError(c, err, "remove from "+op)
		return
	}
	if !exists {
		respondNotFound(c, "recipe")
		return
	}

	if err := remove(GetUserID(c), recipeID); err != nil {
		var absent errAbsent
		if errors.As(err, &absent) {
			respondNotFound(c, op+" entry")
			return
		}
		respondInternalError(c, err, "remove from "+op)
		return
	}
	respondNoContent(c)
}
