package devserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servio/internal/domain"
	"servio/internal/pkg/response"
)

func (s *Server) providerBookings(c *gin.Context) {
	providerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || providerID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid provider ID")
		return
	}
	s.listBookings(c, "provider_id = ?", providerID)
}

func (s *Server) customerBookings(c *gin.Context) {
	s.listBookings(c, "customer_id = ?", c.GetInt64("user_id"))
}

func (s *Server) listBookings(c *gin.Context, cond string, arg int64) {
	var rows []Booking
	err := s.db.WithContext(c.Request.Context()).
		Where(cond, arg).
		Order("scheduled_at").
		Find(&rows).Error
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list bookings")
		return
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, b := range rows {
		out = append(out, b.toDomain())
	}
	response.Success(c, http.StatusOK, out)
}
