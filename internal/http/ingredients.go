package http

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/foodgram/internal/database/ingredients"
)

type createIngredientRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=200"`
}

// IngredientsController serves /api/ingredients/.
type IngredientsController struct {
	store IngredientStore
}

func NewIngredientsController(store IngredientStore) *IngredientsController {
	return &IngredientsController{store: store}
}

// List returns all ingredients, narrowed by a case-insensitive name prefix
// in ?name=. Not paginated.
// GET /api/ingredients/
func (ic *IngredientsController) List(c *gin.Context) {
	list, err := ic.store.SearchIngredients(c.Request.Context(), strings.TrimSpace(c.Query("name")))
	if err != nil {
		respondInternalError(c, err, "list ingredients")
		return
	}
	c.JSON(200, toIngredientDTOs(list))
}

// GET /api/ingredients/:id/
func (ic *IngredientsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "ingredient")
	if !ok {
		return
	}

	ingredient, err := ic.store.GetIngredientByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ingredients.ErrIngredientNotFound) {
			respondNotFound(c, "ingredient")
			return
		}
		respondInternalError(c, err, "get ingredient")
		return
	}
	c.JSON(200, toIngredientDTO(*ingredient))
}

// Create adds an ingredient. Admin only.
// POST /api/ingredients/
func (ic *IngredientsController) Create(c *gin.Context) {
	var req createIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	ingredient, err := ic.store.CreateIngredient(c.Request.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.MeasurementUnit))
	if err != nil {
		if errors.Is(err, ingredients.ErrIngredientExists) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create ingredient")
		return
	}
	respondCreated(c, toIngredientDTO(*ingredient))
}
