package handler

import (
	"MongoDbWithGo/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterOptions struct {
	AllowedOrigins    []string
	RequestsPerSecond float64
	Burst             int
	// EnableSwagger serves the API docs under /swagger.
	EnableSwagger bool
}

// NewRouter registers every route on a gin engine.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.Default()
	config := cors.DefaultConfig()
	if len(opts.AllowedOrigins) == 0 || (len(opts.AllowedOrigins) == 1 && opts.AllowedOrigins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = opts.AllowedOrigins
	}
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	config.ExposeHeaders = append(config.ExposeHeaders, middleware.RequestIDHeader)
	router.Use(cors.New(config))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RateLimitMiddleware(opts.RequestsPerSecond, opts.Burst))

	router.GET("/health", h.Health)

	// Collection operations
	router.POST("/create", h.Create)
	router.POST("/create-many", h.CreateMany)
	router.GET("/all", h.GetAll)
	router.GET("/get-by-id/:id", h.GetByID)
	router.PUT("/replace/:id", h.Replace)
	router.PATCH("/update-field/:id", h.UpdateField)
	router.DELETE("/delete/:id", h.Delete)
	router.GET("/count/estimated", h.EstimatedDocumentCount)
	router.GET("/count", h.CountDocuments)

	// Database operations
	database := router.Group("/")
	if h.issuer != nil {
		router.POST("/login", h.Login)
		database.Use(middleware.AuthMiddleware(h.issuer))
	}
	{
		database.POST("/create-collection/:name", h.CreateCollection)
		database.DELETE("/drop-collection/:name", h.DropCollection)
		database.GET("/list-collections", h.ListCollections)
		database.POST("/rename-collection/:oldName/:newName", h.RenameCollection)
		database.GET("/get-collection/:name", h.GetCollection)
		database.POST("/get-collection/:name", h.GetCollection)
	}

	filters := router.Group("/api/mongofilters")
	{
		filters.GET("/eq", h.Equal)
		filters.GET("/ne", h.NotEqual)
		filters.GET("/gt", h.GreaterThan)
		filters.GET("/gte", h.GreaterThanOrEqual)
		filters.GET("/lt", h.LessThan)
		filters.GET("/lte", h.LessThanOrEqual)
		filters.GET("/in", h.In)
		filters.GET("/nin", h.NotIn)
		filters.GET("/and", h.And)
		filters.GET("/or", h.Or)
		filters.GET("/exists", h.Exists)
		filters.GET("/type", h.Type)
		filters.GET("/regex", h.Regex)
		filters.GET("/all", h.All)
		filters.GET("/elemMatch", h.ElemMatch)
		filters.GET("/size", h.Size)
	}

	if opts.EnableSwagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return router
}
