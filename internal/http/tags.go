package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/foodgram/internal/database/tags"
)

type createTagRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Color string `json:"color" binding:"required,hexcolor"`
	Slug  string `json:"slug" binding:"omitempty,max=200,slug"`
}

// TagsController serves /api/tags/. Tags are not paginated.
type TagsController struct {
	store TagStore
}

func NewTagsController(store TagStore) *TagsController {
	return &TagsController{store: store}
}

// GET /api/tags/
func (tc *TagsController) List(c *gin.Context) {
	list, err := tc.store.GetTags(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list tags")
		return
	}
	c.JSON(200, toTagDTOs(list))
}

// GET /api/tags/:id/
func (tc *TagsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "tag")
	if !ok {
		return
	}

	tag, err := tc.store.GetTagByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, tags.ErrTagNotFound) {
			respondNotFound(c, "tag")
			return
		}
		respondInternalError(c, err, "get tag")
		return
	}
	c.JSON(200, toTagDTO(*tag))
}

// Create adds a tag. Admin only.
// POST /api/tags/
func (tc *TagsController) Create(c *gin.Context) {
	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	tag, err := tc.store.CreateTag(c.Request.Context(), req.Name, req.Color, req.Slug)
	if err != nil {
		if errors.Is(err, tags.ErrTagExists) || errors.Is(err, tags.ErrInvalidTag) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create tag")
		return
	}
	respondCreated(c, toTagDTO(*tag))
}
