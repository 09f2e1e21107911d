package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/foodgram/internal/database/dbtest"
	"github.com/mrlokans/foodgram/internal/entities"
)

func TestAudit_RecipeDeleteListed(t *testing.T) {
	env := newAPIEnv(t)
	author, authorToken := env.user("author")
	_, userToken := env.user("viewer")
	_, adminToken := env.admin("boss")
	recipe := dbtest.CreateRecipe(t, env.db, author, "Pancakes")

	w := env.do(http.MethodDelete, fmt.Sprintf("/api/recipes/%d/", recipe.ID), authorToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	env.audit.Wait()

	t.Run("anonymous", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/audit/", "", nil).Code)
	})

	t.Run("not an admin", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/audit/", userToken, nil).Code)
	})

	t.Run("filtered by type", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/audit/?event_type=recipe", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		page := decode[Page[entities.AuditEvent]](t, w)
		require.Equal(t, int64(1), page.Count)
		event := page.Results[0]
		assert.Equal(t, "recipe_delete", event.Action)
		assert.Equal(t, author.ID, event.UserID)
		require.NotNil(t, event.EntityID)
		assert.Equal(t, recipe.ID, *event.EntityID)
	})

	t.Run("filtered by user", func(t *testing.T) {
		w := env.do(http.MethodGet, fmt.Sprintf("/api/audit/?user=%d", author.ID+100), adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(0), decode[Page[entities.AuditEvent]](t, w).Count)
	})

	t.Run("unknown type", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/audit/?event_type=everything", adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
