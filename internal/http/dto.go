package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/foodgram/internal/entities"
)

// --- Response DTOs ---

type UserDTO struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// RegisteredUserDTO is returned once on sign-up.
type RegisteredUserDTO struct {
	Email     string `json:"email"`
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type TagDTO struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type IngredientDTO struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// RecipeIngredientDTO is an ingredient with its amount in a recipe; ID is
// the ingredient's.
type RecipeIngredientDTO struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeDTO struct {
	ID               uint                  `json:"id"`
	Tags             []TagDTO              `json:"tags"`
	Author           UserDTO               `json:"author"`
	Ingredients      []RecipeIngredientDTO `json:"ingredients"`
	IsFavorited      bool                  `json:"is_favorited"`
	IsInShoppingCart bool                  `json:"is_in_shopping_cart"`
	Name             string                `json:"name"`
	Image            string                `json:"image"`
	Text             string                `json:"text"`
	CookingTime      int                   `json:"cooking_time"`
	PubDate          time.Time             `json:"pub_date"`
}

// ShortRecipeDTO is used in favorite, cart and subscription responses.
type ShortRecipeDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionDTO is a followed author with a preview of their recipes.
type SubscriptionDTO struct {
	UserDTO
	Recipes      []ShortRecipeDTO `json:"recipes"`
	RecipesCount int64            `json:"recipes_count"`
}

// --- Plain mappings ---

func toUserDTO(u *entities.User, subscribed bool) UserDTO {
	return UserDTO{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func toRegisteredUserDTO(u *entities.User) RegisteredUserDTO {
	return RegisteredUserDTO{
		Email:     u.Email,
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func toTagDTO(t entities.Tag) TagDTO {
	return TagDTO{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func toTagDTOs(tags []entities.Tag) []TagDTO {
	out := make([]TagDTO, 0, len(tags))
	for _, t := range tags {
		out = append(out, toTagDTO(t))
	}
	return out
}

func toIngredientDTO(i entities.Ingredient) IngredientDTO {
	return IngredientDTO{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func toIngredientDTOs(items []entities.Ingredient) []IngredientDTO {
	out := make([]IngredientDTO, 0, len(items))
	for _, i := range items {
		out = append(out, toIngredientDTO(i))
	}
	return out
}

// --- Viewer-dependent mappings ---

// presenter maps entities to DTOs for one request, resolving per-viewer
// flags (subscriptions, favorites, cart) in one query per flag and page.
type presenter struct {
	subscriptions SubscriptionChecker
	favorites     FavoriteStore
	cart          CartStore
	images        ImageStore
}

func (p *presenter) imageURL(c *gin.Context, rel string) string {
	return absoluteURL(c, p.images.URL(rel))
}

func (p *presenter) users(c *gin.Context, list []entities.User) ([]UserDTO, error) {
	ids := make([]uint, 0, len(list))
	for _, u := range list {
		ids = append(ids, u.ID)
	}
	subscribed, err := p.subscriptions.SubscribedAmong(c.Request.Context(), GetUserID(c), ids)
	if err != nil {
		return nil, err
	}

	out := make([]UserDTO, 0, len(list))
	for i := range list {
		out = append(out, toUserDTO(&list[i], subscribed[list[i].ID]))
	}
	return out, nil
}

func (p *presenter) user(c *gin.Context, u *entities.User) (UserDTO, error) {
	out, err := p.users(c, []entities.User{*u})
	if err != nil {
		return UserDTO{}, err
	}
	return out[0], nil
}

func (p *presenter) recipes(c *gin.Context, list []entities.Recipe) ([]RecipeDTO, error) {
	ctx := c.Request.Context()
	viewer := GetUserID(c)

	recipeIDs := make([]uint, 0, len(list))
	authorIDs := make([]uint, 0, len(list))
	for _, r := range list {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	flags, err := p.viewerFlags(ctx, viewer, recipeIDs, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]RecipeDTO, 0, len(list))
	for i := range list {
		r := &list[i]
		lines := make([]RecipeIngredientDTO, 0, len(r.Ingredients))
		for _, line := range r.Ingredients {
			lines = append(lines, RecipeIngredientDTO{
				ID:              line.IngredientID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			})
		}
		out = append(out, RecipeDTO{
			ID:               r.ID,
			Tags:             toTagDTOs(r.Tags),
			Author:           toUserDTO(&r.Author, flags.subscribed[r.AuthorID]),
			Ingredients:      lines,
			IsFavorited:      flags.favorited[r.ID],
			IsInShoppingCart: flags.inCart[r.ID],
			Name:             r.Name,
			Image:            p.imageURL(c, r.Image),
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			PubDate:          r.PubDate,
		})
	}
	return out, nil
}

func (p *presenter) recipe(c *gin.Context, r *entities.Recipe) (RecipeDTO, error) {
	out, err := p.recipes(c, []entities.Recipe{*r})
	if err != nil {
		return RecipeDTO{}, err
	}
	return out[0], nil
}

func (p *presenter) shortRecipe(c *gin.Context, r *entities.Recipe) ShortRecipeDTO {
	return ShortRecipeDTO{
		ID:          r.ID,
		Name:        r.Name,
		Image:       p.imageURL(c, r.Image),
		CookingTime: r.CookingTime,
	}
}

func (p *presenter) shortRecipes(c *gin.Context, list []entities.Recipe) []ShortRecipeDTO {
	out := make([]ShortRecipeDTO, 0, len(list))
	for i := range list {
		out = append(out, p.shortRecipe(c, &list[i]))
	}
	return out
}

type viewerFlags struct {
	subscribed map[uint]bool
	favorited  map[uint]bool
	inCart     map[uint]bool
}

func (p *presenter) viewerFlags(ctx context.Context, viewer uint, recipeIDs, authorIDs []uint) (viewerFlags, error) {
	flags := viewerFlags{
		subscribed: map[uint]bool{},
		favorited:  map[uint]bool{},
		inCart:     map[uint]bool{},
	}
	if viewer == 0 || len(recipeIDs) == 0 {
		return flags, nil
	}

	var err error
	if flags.subscribed, err = p.subscriptions.SubscribedAmong(ctx, viewer, authorIDs); err != nil {
		return flags, err
	}
	if flags.favorited, err = p.favorites.FavoritedAmong(ctx, viewer, recipeIDs); err != nil {
		return flags, err
	}
	if flags.inCart, err = p.cart.InCartAmong(ctx, viewer, recipeIDs); err != nil {
		return flags, err
	}
	return flags, nil
}
