package devserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"servio/internal/domain"
	"servio/internal/pkg/response"
)

// listNotifications returns the whole feed; addressee filtering is the
// client's job.
func (s *Server) listNotifications(c *gin.Context) {
	var rows []Notification
	err := s.db.WithContext(c.Request.Context()).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list notifications")
		return
	}

	out := make([]domain.Notification, 0, len(rows))
	for _, n := range rows {
		out = append(out, n.toDomain())
	}
	response.Success(c, http.StatusOK, out)
}

type updateNotificationRequest struct {
	Read bool `json:"read"`
}

func (s *Server) updateNotification(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id := c.Param("id")

	var req updateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "read flag is required")
		return
	}

	row, ok := s.ownedNotification(c, id, userID)
	if !ok {
		return
	}

	err := s.db.WithContext(c.Request.Context()).
		Model(&Notification{}).
		Where("id = ?", row.ID).
		Update("read", req.Read).Error
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update notification")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": req.Read})
}

func (s *Server) deleteNotification(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id := c.Param("id")

	row, ok := s.ownedNotification(c, id, userID)
	if !ok {
		return
	}

	err := s.db.WithContext(c.Request.Context()).Delete(&Notification{}, "id = ?", row.ID).Error
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete notification")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) ownedNotification(c *gin.Context, id string, userID int64) (*Notification, bool) {
	var row Notification
	err := s.db.WithContext(c.Request.Context()).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
			return nil, false
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load notification")
		return nil, false
	}
	if row.UserID != userID {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not your notification")
		return nil, false
	}
	return &row, true
}
