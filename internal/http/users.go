package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/foodgram/internal/auth"
	"github.com/mrlokans/foodgram/internal/database/users"
	"github.com/mrlokans/foodgram/internal/entities"
)

type registerRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required"`
}

type profileRequest struct {
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	Username  *string `json:"username" binding:"omitempty,max=150,username"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Role      *string `json:"role" binding:"omitempty,oneof=user admin"`
}

type setPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

// UsersController serves /api/users/.
type UsersController struct {
	store     UserStore
	accounts  AccountService
	recipes   AuthorRecipes
	present   *presenter
	paginator Paginator
}

func NewUsersController(store UserStore, accounts AccountService, recipes AuthorRecipes, present *presenter, paginator Paginator) *UsersController {
	return &UsersController{
		store:     store,
		accounts:  accounts,
		recipes:   recipes,
		present:   present,
		paginator: paginator,
	}
}

// List returns a page of users.
// GET /api/users/
func (uc *UsersController) List(c *gin.Context) {
	req, ok := uc.paginator.Parse(c)
	if !ok {
		return
	}

	list, total, err := uc.store.ListUsers(c.Request.Context(), req.Limit, req.Offset())
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	if !uc.paginator.InRange(c, req, total) {
		return
	}

	results, err := uc.present.users(c, list)
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	c.JSON(200, newPage(c, req, total, results))
}

// Register creates an account.
// POST /api/users/
func (uc *UsersController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := uc.accounts.CreateUser(c.Request.Context(), auth.NewUser{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      entities.UserRoleUser,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			respondBadRequest(c, err.Error())
		case isPasswordError(err):
			respondFieldError(c, "password", err.Error())
		default:
			respondInternalError(c, err, "register user")
		}
		return
	}
	respondCreated(c, toRegisteredUserDTO(user))
}

// Get returns one user.
// GET /api/users/:id/
func (uc *UsersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}
	uc.respondUser(c, id)
}

// Me returns the caller's profile.
// GET /api/users/me/
func (uc *UsersController) Me(c *gin.Context) {
	uc.respondUser(c, GetUserID(c))
}

func (uc *UsersController) respondUser(c *gin.Context, id uint) {
	user, err := uc.store.GetUserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "get user")
		return
	}

	dto, err := uc.present.user(c, user)
	if err != nil {
		respondInternalError(c, err, "get user")
		return
	}
	c.JSON(200, dto)
}

// UpdateMe edits the caller's profile. Only admins may change roles; the
// field is silently ignored for everybody else.
// PATCH /api/users/me/
func (uc *UsersController) UpdateMe(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	update := users.ProfileUpdate{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.Role != nil && auth.IsAdmin(c) {
		role := entities.UserRole(*req.Role)
		update.Role = &role
	}

	user, err := uc.store.UpdateProfile(c.Request.Context(), GetUserID(c), update)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUserExists):
			respondBadRequest(c, err.Error())
		case errors.Is(err, users.ErrUserNotFound):
			respondNotFound(c, "user")
		default:
			respondInternalError(c, err, "update profile")
		}
		return
	}

	dto, err := uc.present.user(c, user)
	if err != nil {
		respondInternalError(c, err, "update profile")
		return
	}
	c.JSON(200, dto)
}

// SetPassword changes the caller's password.
// POST /api/users/set_password/
func (uc *UsersController) SetPassword(c *gin.Context) {
	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	err := uc.accounts.ChangePassword(c.Request.Context(), GetUserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidPassword):
			respondFieldError(c, "current_password", "current password is incorrect")
		case isPasswordError(err):
			respondFieldError(c, "new_password", err.Error())
		default:
			respondInternalError(c, err, "set password")
		}
		return
	}
	respondSuccess(c, "password changed")
}

// Subscriptions lists the authors the caller follows, each with a preview
// of their recipes limited by ?recipes_limit=.
// GET /api/users/subscriptions/
func (uc *UsersController) Subscriptions(c *gin.Context) {
	req, ok := uc.paginator.Parse(c)
	if !ok {
		return
	}

	authors, total, err := uc.store.ListSubscriptions(c.Request.Context(), GetUserID(c), req.Limit, req.Offset())
	if err != nil {
		respondInternalError(c, err, "list subscriptions")
		return
	}
	if !uc.paginator.InRange(c, req, total) {
		return
	}

	results, err := uc.subscriptionDTOs(c, authors)
	if err != nil {
		respondInternalError(c, err, "list subscriptions")
		return
	}
	c.JSON(200, newPage(c, req, total, results))
}

// Subscribe follows an author.
// POST /api/users/:id/subscribe/
func (uc *UsersController) Subscribe(c *gin.Context) {
	authorID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if err := uc.store.Subscribe(ctx, GetUserID(c), authorID); err != nil {
		switch {
		case errors.Is(err, users.ErrUserNotFound):
			respondNotFound(c, "user")
		case errors.Is(err, users.ErrSelfSubscription), errors.Is(err, users.ErrAlreadySubscribed):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "subscribe")
		}
		return
	}

	author, err := uc.store.GetUserByID(ctx, authorID)
	if err != nil {
		respondInternalError(c, err, "subscribe")
		return
	}
	results, err := uc.subscriptionDTOs(c, []entities.User{*author})
	if err != nil {
		respondInternalError(c, err, "subscribe")
		return
	}
	respondCreated(c, results[0])
}

// Unsubscribe stops following an author.
// DELETE /api/users/:id/subscribe/
func (uc *UsersController) Unsubscribe(c *gin.Context) {
	authorID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := uc.store.GetUserByID(ctx, authorID); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "unsubscribe")
		return
	}

	if err := uc.store.Unsubscribe(ctx, GetUserID(c), authorID); err != nil {
		if errors.Is(err, users.ErrNotSubscribed) {
			respondNotFound(c, "subscription")
			return
		}
		respondInternalError(c, err, "unsubscribe")
		return
	}
	respondNoContent(c)
}

func (uc *UsersController) subscriptionDTOs(c *gin.Context, authors []entities.User) ([]SubscriptionDTO, error) {
	ctx := c.Request.Context()
	limit := parsePositiveQuery(c, "recipes_limit")

	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	counts, err := uc.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}
	userDTOs, err := uc.present.users(c, authors)
	if err != nil {
		return nil, err
	}

	out := make([]SubscriptionDTO, 0, len(authors))
	for i, author := range authors {
		preview, err := uc.recipes.RecipesByAuthor(ctx, author.ID, limit)
		if err != nil {
			return nil, err
		}
		out = append(out, SubscriptionDTO{
			UserDTO:      userDTOs[i],
			Recipes:      uc.present.shortRecipes(c, preview),
			RecipesCount: counts[author.ID],
		})
	}
	return out, nil
}

func isPasswordError(err error) bool {
	return errors.Is(err, auth.ErrPasswordTooShort) ||
		errors.Is(err, auth.ErrPasswordTooLong) ||
		errors.Is(err, auth.ErrPasswordAllNumeric)
}
