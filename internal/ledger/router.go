package ledger

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the handlers behind CORS, with the API under /api and a
// health check at /health.
func NewRouter(h *Handler, origins []string) *gin.Engine {
	r := gin.Default()

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !allowsAll(origins),
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", h.healthCheck)
	h.Register(r.Group("/api"))
	return r
}

func allowsAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
