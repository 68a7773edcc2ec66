package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servio/internal/domain"
	"servio/internal/pkg/response"
)

func (s *Server) listCustomers(c *gin.Context) {
	s.listByRole(c, domain.RoleCustomer)
}

func (s *Server) listProviders(c *gin.Context) {
	s.listByRole(c, domain.RoleServiceProvider)
}

func (s *Server) listByRole(c *gin.Context, role string) {
	var accounts []Account
	err := s.db.WithContext(c.Request.Context()).
		Where("role = ?", role).
		Order("id").
		Find(&accounts).Error
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list users")
		return
	}

	users := make([]domain.User, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, a.toUser())
	}
	response.Success(c, http.StatusOK, users)
}
