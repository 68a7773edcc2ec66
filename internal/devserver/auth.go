package devserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"servio/internal/pkg/response"
)

type loginRequest struct {
	UserName string `json:"userName" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", "userName and password are required")
		return
	}

	var account Account
	err := s.db.WithContext(c.Request.Context()).
		Where("user_name = ?", req.UserName).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Unknown user or wrong password")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to look up account")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Unknown user or wrong password")
		return
	}

	token, err := s.jwt.Issue(account.ID, account.Role)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to issue token")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"authToken": token,
		"user":      account.toUser(),
	})
}
