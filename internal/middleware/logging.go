// internal/middleware/logging.go
package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fuelwatch/compliance-backend/internal/models"
)

// RequestLogger emits one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).Milliseconds(),
			"ip":       c.ClientIP(),
		}
		if actor, ok := GetActor(c); ok {
			fields["actor_id"] = actor.ID
		}

		entry := logrus.WithFields(fields)
		if c.Writer.Status() >= 500 {
			entry.Error("Request processed")
		} else {
			entry.Info("Request processed")
		}
	}
}

// AuditTrail records mutating requests in the audit log. Service-level entries
// carry the precise diff; this layer adds the transport view (entity guessed
// from the route, client IP).
func AuditTrail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Writer.Status() >= 400 {
			return
		}

		entry := &models.AuditLog{
			EntityType: entityFromPath(c.Request.URL.Path),
			Action:     auditAction(c.Request.Method),
			IPAddress:  c.ClientIP(),
			Diff: models.JSONB{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
				"status": c.Writer.Status(),
			},
		}

		if actor, ok := GetActor(c); ok {
			id := actor.ID
			entry.ActorID = &id
			entry.CompanyID = actor.CompanyID
		}
		if entityID := entityIDFromPath(c.Request.URL.Path); entityID != nil {
			entry.EntityID = entityID
		}

		go func() {
			if err := db.Create(entry).Error; err != nil {
				logrus.WithError(err).Error("Failed to write request audit entry")
			}
		}()
	}
}

func auditAction(method string) models.AuditAction {
	switch method {
	case "POST":
		return models.AuditActionCreate
	case "DELETE":
		return models.AuditActionDelete
	default:
		return models.AuditActionUpdate
	}
}

func entityFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if part == "v1" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	if len(parts) > 0 {
		return parts[0]
	}
	return "unknown"
}

func entityIDFromPath(path string) *uuid.UUID {
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if parsed, err := uuid.Parse(part); err == nil {
			return &parsed
		}
	}
	return nil
}
