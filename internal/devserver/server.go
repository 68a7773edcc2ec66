// Package devserver is a local stand-in for the marketplace backend: the
// exact REST surface the client consumes, nothing more. It exists so the
// module runs and integration-tests end to end without the production
// backend.
package devserver

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"servio/internal/middleware"
	"servio/internal/pkg/jwt"
)

type Server struct {
	db  *gorm.DB
	jwt *jwt.Service
}

func New(db *gorm.DB, jwtSvc *jwt.Service) (*Server, error) {
	if err := db.AutoMigrate(&Account{}, &Message{}, &Notification{}, &Booking{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Server{db: db, jwt: jwtSvc}, nil
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS())

	api := r.Group("/api")
	api.POST("/auth/login", s.login)

	protected := api.Group("/")
	protected.Use(middleware.Auth(s.jwt))
	{
		protected.GET("/customers/getAll", s.listCustomers)
		protected.GET("/service-providers/getAll", s.listProviders)

		protected.GET("/messages/getAll", s.listMessages)
		protected.POST("/messages/postMessage", s.postMessage)
		protected.PUT("/messages/update/:id", s.updateMessage)

		protected.GET("/notifications/getAll", s.listNotifications)
		protected.PUT("/notifications/update/:id", s.updateNotification)
		protected.DELETE("/notifications/delete/:id", s.deleteNotification)

		protected.GET("/bookings/provider/:id", s.providerBookings)
		protected.GET("/bookings/customer", s.customerBookings)
	}

	return r
}
