package audit

import (
	"github.com/EdwinEstrella/ironcore-gym/internal/auth"
	"github.com/EdwinEstrella/ironcore-gym/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionCancel = "cancel"
)

// Entry is one tenant write.
type Entry struct {
	GymID      string
	UserID     string
	Action     string
	Resource   string
	ResourceID string
}

func Log(e Entry) {
	logger.Info("audit",
		"gym_id", e.GymID,
		"user_id", e.UserID,
		"action", e.Action,
		"resource", e.Resource,
		"resource_id", e.ResourceID,
	)
}

// Record logs a write made by the authenticated user of the request.
func Record(c *gin.Context, action, resource, resourceID string) {
	gymID, _ := auth.GetGymID(c)
	userID, _ := auth.GetUserID(c)
	Log(Entry{
		GymID:      gymID,
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
	})
}
