package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RouterConfig wires the handlers mounted by NewRouter.
type RouterConfig struct {
	Auth          *AuthHandler
	Vacations     *VacationHandler
	Notifications *NotificationHandler
	Users         *UserHandler
	Tokens        *TokenManager
	Identifier    Identifier
	Logger        *slog.Logger
	// CORSOrigins lists browser origins allowed to call the API; empty disables CORS.
	CORSOrigins []string
	// LoginRate and LoginBurst throttle credential endpoints per client IP.
	LoginRate  rate.Limit
	LoginBurst int
}

// passwordChangeRoutes stay reachable while the caller holds a temporary password.
var passwordChangeRoutes = []string{"/password", "/logout"}

// NewRouter builds the gin engine serving the JSON API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	useJSONFieldNames()
	responder := newResponder(cfg.Logger)

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(cfg.Logger))
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{"Content-Length", requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	throttle := rateLimitByIP(cfg.LoginRate, cfg.LoginBurst, responder)
	router.NoRoute(func(c *gin.Context) {
		responder.abort(c, http.StatusNotFound, "not_found", "route not found")
	})

	if cfg.Auth != nil {
		router.POST("/login", throttle, cfg.Auth.Login)
		router.POST("/logout", cfg.Auth.Logout)
	}

	protected := router.Group("/")
	protected.Use(RequireSession(cfg.Tokens, cfg.Identifier, cfg.Logger, passwordChangeRoutes...))

	if cfg.Auth != nil {
		protected.POST("/password", throttle, cfg.Auth.ChangePassword)
	}

	if cfg.Vacations != nil {
		protected.GET("/me/balance", cfg.Vacations.Balance)
		protected.POST("/vacations", cfg.Vacations.Submit)
		protected.GET("/vacations", cfg.Vacations.History)
		protected.DELETE("/vacations/:id", cfg.Vacations.Cancel)
		protected.GET("/approvals", cfg.Vacations.Pending)
		protected.POST("/approvals/:id/approve", cfg.Vacations.Approve)
		protected.POST("/approvals/:id/reject", cfg.Vacations.Reject)
	}

	if cfg.Notifications != nil {
		protected.GET("/notifications", cfg.Notifications.Inbox)
		protected.GET("/notifications/unread", cfg.Notifications.UnreadCount)
		protected.POST("/notifications/read", cfg.Notifications.MarkRead)
	}

	if cfg.Users != nil {
		admin := protected.Group("/admin/users")
		admin.GET("", cfg.Users.List)
		admin.POST("", cfg.Users.Create)
		admin.PUT("/:id", cfg.Users.Update)
		admin.DELETE("/:id", cfg.Users.Delete)
		admin.POST("/:id/reset-password", cfg.Users.ResetPassword)
	}

	return router
}
