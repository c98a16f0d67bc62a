package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kotonoha-dev/booking_api/internal/auth"
	"github.com/kotonoha-dev/booking_api/internal/config"
	"go.uber.org/zap"
)

// NewRouter собирает gin-роутер со всеми эндпоинтами и middleware
func NewRouter(cfg *config.Config, verifier auth.Verifier, h *Handler, logger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	// Неподдерживаемый метод это явный 405, а не 404
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/slots", h.ListSlots)
		api.GET("/teachers", h.ListTeachers)
		api.GET("/subjects", h.ListSubjects)

		authorized := api.Group("")
		authorized.Use(AuthMiddleware(verifier, h.users, logger))
		{
			authorized.GET("/users/me", h.GetMe)
			authorized.PUT("/users/me", h.UpdateMe)
			authorized.GET("/bookings", h.ListBookings)
			authorized.POST("/bookings", h.CreateBooking)
			authorized.GET("/bookings/:id", h.GetBooking)
			authorized.DELETE("/bookings/:id", h.CancelBooking)
		}

		// Сидирование дефолтной сетки доступно только вне production
		if !cfg.IsProduction() {
			api.POST("/admin/seed", h.SeedSlots)
		}
	}

	return r
}
