package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("report", "/reports")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.Register(group)
	assert.Len(t, r.registrars, 1)
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/reports/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterUseScopesToAPI(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r := NewRouter(engine)
	r.Use(func(c *gin.Context) {
		c.Header("X-API", "1")
		c.Next()
	})
	r.Register(NewDomainGroup("system", "/system").GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	}))
	r.Setup()

	assert.Equal(t, "1", serve(engine, http.MethodGet, "/api/v1/system/ping").Header().Get("X-API"))
	assert.Empty(t, serve(engine, http.MethodGet, "/health").Header().Get("X-API"))
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("ledger", "/ledger")
		assert.Equal(t, "ledger", g.Name())
		assert.Equal(t, "/ledger", g.Prefix())
	})

	t.Run("registers GET and POST routes", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("ledger", "")
		g.GET("/sales", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
			POST("/sales", func(c *gin.Context) { c.String(http.StatusCreated, "created") })

		g.RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/sales").Code)
		assert.Equal(t, http.StatusCreated, serve(engine, http.MethodPost, "/api/v1/sales").Code)
	})

	t.Run("route level middleware runs before the handler", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("report", "/reports")
		g.GET("/export",
			func(c *gin.Context) { c.AbortWithStatus(http.StatusTooManyRequests) },
			func(c *gin.Context) { c.String(http.StatusOK, "file") },
		)

		g.RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodGet, "/api/v1/reports/export").Code)
	})

	t.Run("applies middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("report", "/reports")
		g.Use(func(c *gin.Context) {
			c.Header("X-Test-Middleware", "applied")
			c.Next()
		})
		g.GET("/daily", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/reports/daily")
		assert.Equal(t, "applied", w.Header().Get("X-Test-Middleware"))
	})

	t.Run("creates subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("admin", "/admin")
		g.Group("reports", "/reports").GET("/warmer", func(c *gin.Context) {
			c.String(http.StatusOK, "status")
		})

		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/admin/reports/warmer")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "status", w.Body.String())
	})
}
