// Package audit records security-relevant actions (logins, recipe
// deletions, fixture imports, administrator creation) to the audit_events
// table and prunes them after a retention period.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mrlokans/foodgram/internal/database/audit"
	"github.com/mrlokans/foodgram/internal/entities"
	"github.com/mrlokans/foodgram/internal/logging"
)

// DefaultRetention keeps events for 90 days.
const DefaultRetention = 90 * 24 * time.Hour

// Service provides high-level audit logging functionality.
type Service struct {
	repo      *audit.Repository
	retention time.Duration
	wg        sync.WaitGroup
}

// NewService creates a new audit service. A non-positive retention falls
// back to DefaultRetention.
func NewService(repo *audit.Repository, retention time.Duration) *Service {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Service{repo: repo, retention: retention}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking). The
// write outlives ctx's cancellation but keeps its values.
func (s *Service) LogAsync(ctx context.Context, event *entities.AuditEvent) {
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(ctx, event); err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("action", event.Action).Msg("failed to log audit event")
		}
	}()
}

// Wait blocks until every pending LogAsync write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogAuth records a login or logout. userID is 0 for failed logins of
// unknown accounts; the attempted email goes into the description.
func (s *Service) LogAuth(ctx context.Context, userID uint, email, action, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventAuth,
		Action:      action,
		Description: truncate(email, 500),
		IPAddress:   ipAddr,
		UserAgent:   truncate(userAgent, 500),
		Status:      entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(ctx, event)
}

// LogRecipeDelete records a recipe removed by its author or an admin.
func (s *Service) LogRecipeDelete(ctx context.Context, userID, recipeID uint, name string) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventRecipe,
		Action:      "recipe_delete",
		Description: truncate("Deleted recipe: "+name, 500),
		EntityType:  "recipe",
		EntityID:    &recipeID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(ctx, event)
}

// LogImport records a fixture import run. kind is "ingredients" or "tags".
func (s *Service) LogImport(ctx context.Context, kind string, imported, skipped int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventImport,
		Action:      kind + "_import",
		Description: fmt.Sprintf("Imported %d %s, skipped %d", imported, kind, skipped),
		EntityType:  kind,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(ctx, event)
}

// LogAdminCreated records an administrator account created from the CLI.
func (s *Service) LogAdminCreated(ctx context.Context, user *entities.User) {
	userID := user.ID
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventAdmin,
		Action:      "admin_create",
		Description: "Created administrator " + user.Username,
		EntityType:  "user",
		EntityID:    &userID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(ctx, event)
}

// ListEvents retrieves paginated audit events.
func (s *Service) ListEvents(ctx context.Context, filter audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.ListEvents(ctx, filter, limit, offset)
}

// PurgeOldEvents removes events older than the retention period.
func (s *Service) PurgeOldEvents(ctx context.Context) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, time.Now().Add(-s.retention))
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
