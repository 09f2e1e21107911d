package http

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/foodgram/internal/auth"
	"github.com/mrlokans/foodgram/internal/database/recipes"
	"github.com/mrlokans/foodgram/internal/entities"
	"github.com/mrlokans/foodgram/internal/media"
)

type recipeLineRequest struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount" binding:"required,min=1,max=32000"`
}

// recipeRequest is the body of both create and update. Image is required on
// create only; the handler checks that.
type recipeRequest struct {
	Ingredients []recipeLineRequest `json:"ingredients" binding:"required,min=1,unique=ID,dive"`
	Tags        []uint              `json:"tags" binding:"required,min=1,unique"`
	Image       string              `json:"image"`
	Name        string              `json:"name" binding:"required,max=200"`
	Text        string              `json:"text" binding:"required"`
	CookingTime int                 `json:"cooking_time" binding:"required,min=1,max=32000"`
}

func (r recipeRequest) input(image string) recipes.Input {
	lines := make([]recipes.Line, 0, len(r.Ingredients))
	for _, l := range r.Ingredients {
		lines = append(lines, recipes.Line{IngredientID: l.ID, Amount: l.Amount})
	}
	return recipes.Input{
		Name:        r.Name,
		Text:        r.Text,
		Image:       image,
		CookingTime: r.CookingTime,
		TagIDs:      r.Tags,
		Lines:       lines,
	}
}

// RecipesController serves /api/recipes/.
type RecipesController struct {
	store     RecipeStore
	images    ImageStore
	present   *presenter
	paginator Paginator
	audit     AuditLog // optional
}

func NewRecipesController(store RecipeStore, images ImageStore, present *presenter, paginator Paginator, audit AuditLog) *RecipesController {
	return &RecipesController{
		store:     store,
		images:    images,
		present:   present,
		paginator: paginator,
		audit:     audit,
	}
}

// List returns a page of recipes, newest first.
// GET /api/recipes/?author=&tags=&is_favorited=&is_in_shopping_cart=
func (rc *RecipesController) List(c *gin.Context) {
	req, ok := rc.paginator.Parse(c)
	if !ok {
		return
	}

	filter := recipes.Filter{
		TagSlugs:    c.QueryArray("tags"),
		UserID:      GetUserID(c),
		IsFavorited: parseBoolQuery(c, "is_favorited"),
		IsInCart:    parseBoolQuery(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondFieldError(c, "author", "must be a user id")
			return
		}
		filter.AuthorID = uint(author)
	}

	list, total, err := rc.store.ListRecipes(c.Request.Context(), filter, req.Limit, req.Offset())
	if err != nil {
		respondInternalError(c, err, "list recipes")
		return
	}
	if !rc.paginator.InRange(c, req, total) {
		return
	}

	results, err := rc.present.recipes(c, list)
	if err != nil {
		respondInternalError(c, err, "list recipes")
		return
	}
	c.JSON(200, newPage(c, req, total, results))
}

// GET /api/recipes/:id/
func (rc *RecipesController) Get(c *gin.Context) {
	recipe, ok := rc.loadRecipe(c)
	if !ok {
		return
	}
	rc.respondRecipe(c, 200, recipe)
}

// Create publishes a recipe authored by the caller.
// POST /api/recipes/
func (rc *RecipesController) Create(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if req.Image == "" {
		respondFieldError(c, "image", "this field is required")
		return
	}

	image, ok := rc.saveImage(c, req.Image)
	if !ok {
		return
	}

	recipe, err := rc.store.CreateRecipe(c.Request.Context(), GetUserID(c), req.input(image))
	if err != nil {
		rc.images.DeleteQuietly(image)
		rc.respondWriteError(c, err, "create recipe")
		return
	}
	rc.respondRecipe(c, 201, recipe)
}

// Update replaces a recipe's fields, tags and ingredient lines. Only the
// author or an admin may do so. A new image replaces the old file.
// PATCH /api/recipes/:id/
func (rc *RecipesController) Update(c *gin.Context) {
	recipe, ok := rc.loadRecipe(c)
	if !ok {
		return
	}
	if !canModify(c, recipe) {
		respondForbidden(c)
		return
	}

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	var image string
	if req.Image != "" {
		if image, ok = rc.saveImage(c, req.Image); !ok {
			return
		}
	}

	updated, replaced, err := rc.store.UpdateRecipe(c.Request.Context(), recipe.ID, req.input(image))
	if err != nil {
		if image != "" {
			rc.images.DeleteQuietly(image)
		}
		rc.respondWriteError(c, err, "update recipe")
		return
	}
	if replaced != "" {
		rc.images.DeleteQuietly(replaced)
	}
	rc.respondRecipe(c, 200, updated)
}

// Delete removes a recipe and its image. Author or admin only.
// DELETE /api/recipes/:id/
func (rc *RecipesController) Delete(c *gin.Context) {
	recipe, ok := rc.loadRecipe(c)
	if !ok {
		return
	}
	if !canModify(c, recipe) {
		respondForbidden(c)
		return
	}

	image, err := rc.store.DeleteRecipe(c.Request.Context(), recipe.ID)
	if err != nil {
		if errors.Is(err, recipes.ErrRecipeNotFound) {
			respondNotFound(c, "recipe")
			return
		}
		respondInternalError(c, err, "delete recipe")
		return
	}
	if image != "" {
		rc.images.DeleteQuietly(image)
	}
	if rc.audit != nil {
		rc.audit.LogRecipeDelete(c.Request.Context(), GetUserID(c), recipe.ID, recipe.Name)
	}
	respondNoContent(c)
}

func (rc *RecipesController) loadRecipe(c *gin.Context) (*entities.Recipe, bool) {
	id, ok := parseIDParam(c, "id", "recipe")
	if !ok {
		return nil, false
	}
	recipe, err := rc.store.GetRecipeByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, recipes.ErrRecipeNotFound) {
			respondNotFound(c, "recipe")
			return nil, false
		}
		respondInternalError(c, err, "get recipe")
		return nil, false
	}
	return recipe, true
}

func (rc *RecipesController) saveImage(c *gin.Context, dataURI string) (string, bool) {
	image, err := rc.images.SaveDataURI(dataURI)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) || errors.Is(err, media.ErrImageTooLarge) {
			respondFieldError(c, "image", err.Error())
			return "", false
		}
		respondInternalError(c, err, "save image")
		return "", false
	}
	return image, true
}

func (rc *RecipesController) respondWriteError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, recipes.ErrUnknownTag):
		respondFieldError(c, "tags", err.Error())
	case errors.Is(err, recipes.ErrUnknownIngredient):
		respondFieldError(c, "ingredients", err.Error())
	case errors.Is(err, recipes.ErrRecipeNotFound):
		respondNotFound(c, "recipe")
	default:
		respondInternalError(c, err, op)
	}
}

func (rc *RecipesController) respondRecipe(c *gin.Context, status int, recipe *entities.Recipe) {
	dto, err := rc.present.recipe(c, recipe)
	if err != nil {
		respondInternalError(c, err, "render recipe")
		return
	}
	c.JSON(status, dto)
}

func canModify(c *gin.Context, recipe *entities.Recipe) bool {
	return recipe.AuthorID == GetUserID(c) || auth.IsAdmin(c)
}
