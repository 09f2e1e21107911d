package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/foodgram/internal/auth"
	"github.com/mrlokans/foodgram/internal/config"
	"github.com/mrlokans/foodgram/internal/database"
	auditRepo "github.com/mrlokans/foodgram/internal/database/audit"
	"github.com/mrlokans/foodgram/internal/database/ingredients"
	"github.com/mrlokans/foodgram/internal/database/tags"
	"github.com/mrlokans/foodgram/internal/entities"
	"github.com/mrlokans/foodgram/internal/importers"
)

type testEnv struct {
	dir string
	cfg *config.Config
	out *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		dir: dir,
		cfg: &config.Config{
			Database: config.Database{Path: filepath.Join(dir, "foodgram.db")},
			Log:      config.Log{Level: "error", Format: "json"},
			Auth:     config.Auth{BcryptCost: 4, MinPasswordLength: 8},
			Audit:    config.Audit{Enabled: true},
		},
		out: &bytes.Buffer{},
	}
}

func (e *testEnv) run(t *testing.T, args ...string) error {
	t.Helper()
	app := New("test", func() *config.Config { return e.cfg }, e.out)
	return app.Run(context.Background(), append([]string{name}, args...))
}

func (e *testEnv) writeFile(t *testing.T, filename, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (e *testEnv) openDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewDatabase(e.cfg.Database.Path, false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func (e *testEnv) auditEvents(t *testing.T, eventType entities.AuditEventType) []entities.AuditEvent {
	t.Helper()
	events, _, err := auditRepo.NewRepository(e.openDB(t).DB).ListEvents(context.Background(), auditRepo.Filter{EventType: eventType}, 50, 0)
	require.NoError(t, err)
	return events
}

func TestImportIngredients_CSV(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "ingredients.csv", "name,measurement_unit\nflour,g\nsugar,g\n,g\nflour,g\n")

	require.NoError(t, env.run(t, "import-ingredients", "--file", path))
	assert.Contains(t, env.out.String(), "ingredients: read 3, imported 2, skipped 1")

	stored, err := ingredients.NewRepository(env.openDB(t).DB).SearchIngredients(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "flour", stored[0].Name)

	events := env.auditEvents(t, entities.AuditEventImport)
	require.Len(t, events, 1)
	assert.Equal(t, "ingredients_import", events[0].Action)
	assert.Equal(t, entities.AuditStatusSuccess, events[0].Status)
}

func TestImportIngredients_Rerun(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "ingredients.json", `[{"name":"salt","measurement_unit":"g"}]`)

	require.NoError(t, env.run(t, "import-ingredients", "--file", path))
	env.out.Reset()
	require.NoError(t, env.run(t, "import-ingredients", "--file", path))
	assert.Contains(t, env.out.String(), "imported 0, skipped 1")
}

func TestImportIngredients_ExplicitFormat(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "fixture.txt", "- name: milk\n  measurement_unit: ml\n")

	require.NoError(t, env.run(t, "import-ingredients", "--file", path, "--format", "yaml"))
	assert.Contains(t, env.out.String(), "imported 1")
}

func TestImportIngredients_Errors(t *testing.T) {
	env := newTestEnv(t)

	t.Run("unknown extension", func(t *testing.T) {
		path := env.writeFile(t, "ingredients.xml", "<x/>")
		err := env.run(t, "import-ingredients", "--file", path)
		assert.ErrorIs(t, err, importers.ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		err := env.run(t, "import-ingredients", "--file", filepath.Join(env.dir, "nope.json"))
		assert.Error(t, err)
	})

	t.Run("file flag required", func(t *testing.T) {
		assert.Error(t, env.run(t, "import-ingredients"))
	})
}

func TestImportTags(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "tags.yaml", `
- name: Dessert
  color: "#FF00FF"
  slug: dessert
- name: breakfast
  color: "#000000"
- name: Nameless
`)

	require.NoError(t, env.run(t, "import-tags", "--file", path))
	out := env.out.String()
	assert.Contains(t, out, "tags: read 2, imported 1, skipped 1")
	assert.Contains(t, out, "missing name or color")

	all, err := tags.NewRepository(env.openDB(t).DB).GetTags(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestImport_AuditDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Audit.Enabled = false
	path := env.writeFile(t, "tags.json", `[{"name":"Snack","color":"#123456"}]`)

	require.NoError(t, env.run(t, "import-tags", "--file", path))
	assert.Empty(t, env.auditEvents(t, ""))
}

func TestImportTags_RejectsCSV(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "tags.csv", "name,color\nx,#000000\n")

	err := env.run(t, "import-tags", "--file", path)
	assert.ErrorIs(t, err, importers.ErrUnsupportedFormat)
}

func TestCreateAdmin(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.run(t, "create-admin",
		"--email", "root@example.com",
		"--username", "root",
		"--password", "correct-horse-battery"))
	assert.Contains(t, env.out.String(), "created admin root")

	svc := auth.NewService(env.openDB(t).DB, env.cfg.Auth)
	user, err := svc.Authenticate(context.Background(), "root@example.com", "correct-horse-battery")
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleAdmin, user.Role)
	assert.Equal(t, "Admin", user.FirstName)

	events := env.auditEvents(t, entities.AuditEventAdmin)
	require.Len(t, events, 1)
	assert.Equal(t, user.ID, events[0].UserID)
}

func TestCreateAdmin_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	args := []string{"create-admin", "--email", "root@example.com", "--username", "root", "--password", "correct-horse-battery"}

	require.NoError(t, env.run(t, args...))
	err := env.run(t, args...)
	assert.ErrorIs(t, err, auth.ErrUserExists)
}

func TestCreateAdmin_WeakPassword(t *testing.T) {
	env := newTestEnv(t)

	err := env.run(t, "create-admin", "--email", "a@example.com", "--username", "a", "--password", "12345678")
	assert.ErrorIs(t, err, auth.ErrPasswordAllNumeric)
}
