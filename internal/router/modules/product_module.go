package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gymbro/gymbro-api/internal/container"
	handlers "github.com/gymbro/gymbro-api/internal/interface/http"
	"github.com/gymbro/gymbro-api/internal/interface/middleware"
	"github.com/gymbro/gymbro-api/pkg/token"
)

// ProductModule wires the catalog routes.
// Public: search, search bar, show. Writes require an access token.
type ProductModule struct {
	Handler *handlers.ProductHandler
	Tokens  *token.Service
}

func NewProductModule(h *handlers.ProductHandler, tokens *token.Service) *ProductModule {
	return &ProductModule{Handler: h, Tokens: tokens}
}

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	readLimiter := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/products", readLimiter, m.Handler.Search)
	rg.GET("/products/searchbar", readLimiter, m.Handler.SearchBar)
	rg.GET("/products/:id", readLimiter, m.Handler.Show)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/products", m.Handler.Store)
		auth.PUT("/products/:id", m.Handler.Update)
		auth.DELETE("/products/:id", m.Handler.Destroy)
	}
}
