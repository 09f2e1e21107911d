package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/foodgram/internal/database/audit"
	"github.com/mrlokans/foodgram/internal/entities"
)

// AuditController serves the admin-only audit trail.
type AuditController struct {
	log       AuditLog
	paginator Paginator
}

func NewAuditController(log AuditLog, paginator Paginator) *AuditController {
	return &AuditController{log: log, paginator: paginator}
}

// List returns a page of audit events, newest first.
// GET /api/audit/?event_type=&user=
func (ac *AuditController) List(c *gin.Context) {
	filter := audit.Filter{UserID: uint(parsePositiveQuery(c, "user"))}
	if raw := c.Query("event_type"); raw != "" {
		eventType := entities.AuditEventType(raw)
		switch eventType {
		case entities.AuditEventAuth, entities.AuditEventRecipe, entities.AuditEventImport, entities.AuditEventAdmin:
			filter.EventType = eventType
		default:
			respondFieldError(c, "event_type", "unknown event type")
			return
		}
	}

	req, ok := ac.paginator.Parse(c)
	if !ok {
		return
	}

	events, total, err := ac.log.ListEvents(c.Request.Context(), filter, req.Limit, req.Offset())
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	if !ac.paginator.InRange(c, req, total) {
		return
	}
	c.JSON(200, newPage(c, req, total, events))
}
