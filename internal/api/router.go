package api

import (
	"net/http" // HTTP status codes
	"time"     // CORS preflight cache

	"finance_tracker/internal/middleware" // Auth and access log
	"finance_tracker/internal/repository" // Health check
	"finance_tracker/internal/service"    // Use cases
	"finance_tracker/internal/utils"      // Token verification

	"github.com/gin-contrib/cors" // CORS middleware
	"github.com/gin-gonic/gin"    // Gin web framework
	"github.com/sirupsen/logrus"  // Logging library
)

// Deps are the collaborators the HTTP layer is wired to
type Deps struct {
	Store      *repository.Store
	Tokens     *utils.TokenService
	Users      *service.UserService
	Ledger     *service.LedgerService
	Categories *service.CategoryService
}

// NewRouter builds the gin engine with every route registered
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// Any origin may call the API; credentials travel in the Authorization header
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:   []string{middleware.RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/health", HealthHandler(d.Store))

	auth := middleware.JWTAuthMiddleware(d.Tokens)

	// User routes
	users := r.Group("/users")
	users.POST("/register", RegisterHandler(d.Users))            // Registration endpoint
	users.POST("/login", LoginHandler(d.Users))                  // Login endpoint
	users.PUT("", auth, ChangePasswordHandler(d.Users))          // Change password endpoint
	users.GET("/:username", auth, GetUserHandler(d.Users))       // Get user endpoint
	users.DELETE("/:username", auth, DeleteUserHandler(d.Users)) // Delete user endpoint

	// Category routes
	r.GET("/categories", ListCategoriesHandler(d.Categories))  // List categories endpoint
	r.POST("/categories", CreateCategoryHandler(d.Categories)) // Create category endpoint

	// Transaction routes; reads are public, writes need a bearer token
	txs := r.Group("/transactions")
	txs.GET("", ListTransactionsHandler(d.Ledger))               // Query endpoint
	txs.GET("/:id", GetTransactionHandler(d.Ledger))             // Get transaction endpoint
	txs.POST("", auth, CreateTransactionHandler(d.Ledger))       // Create endpoint
	txs.PUT("/:id", auth, UpdateTransactionHandler(d.Ledger))    // Update endpoint
	txs.DELETE("/:id", auth, DeleteTransactionHandler(d.Ledger)) // Delete endpoint

	return r
}

// HealthHandler reports whether the database is reachable
func HealthHandler(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			logrus.WithField("error", err.Error()).Error("Health check failed")
			respondStatus(c, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
