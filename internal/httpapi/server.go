// Package httpapi serves the repository over a local HTTP API for a web or
// mobile front end, with websocket streams for live cart and order updates.
package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/repository"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCORSOrigins enables CORS for the given origins.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = append(s.origins, origins...)
	}
}

// Server adapts a Repository to HTTP.
type Server struct {
	repo     *repository.Repository
	logger   *slog.Logger
	origins  []string
	upgrader websocket.Upgrader
}

// New creates a Server over repo.
func New(repo *repository.Repository, opts ...Option) *Server {
	s := &Server{
		repo:   repo,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	if len(s.origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.origins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/tenants", s.listTenants)
	r.GET("/tenants/:id", s.getTenant)
	r.GET("/tenants/:id/menus", s.listTenantMenus)
	r.GET("/menus", s.listMenus)
	r.GET("/menus/:id", s.getMenu)
	r.GET("/categories", s.listCategories)

	r.POST("/users", s.register)
	r.GET("/users/:id", s.getUser)

	r.GET("/users/:id/cart", s.getCart)
	r.POST("/users/:id/cart", s.addToCart)
	r.DELETE("/users/:id/cart", s.clearCart)
	r.PATCH("/cart/:id", s.updateCartLine)
	r.DELETE("/cart/:id", s.removeCartLine)

	r.POST("/users/:id/checkout", s.checkout)
	r.GET("/users/:id/orders", s.listOrders)
	r.GET("/users/:id/orders/export", s.exportOrders)
	r.GET("/orders/:id", s.getOrder)
	r.POST("/orders/:id/complete", s.completeOrder)
	r.POST("/orders/:id/cancel", s.cancelOrder)
	r.POST("/orders/:id/pay", s.markPaid)
	r.POST("/orders/:id/cancel-payment", s.cancelPayment)

	r.GET("/ws/users/:id/cart", s.streamCart)
	r.GET("/ws/users/:id/orders", s.streamOrders)

	return r
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.origins) == 0 {
		return true
	}
	for _, o := range s.origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// pathID parses the :id path parameter. On failure it writes a 400 and
// returns false.
func (s *Server) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		s.badRequest(c, "invalid id "+strconv.Quote(c.Param("id")))
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body. An empty body decodes to the zero value.
func (s *Server) bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		s.badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}
