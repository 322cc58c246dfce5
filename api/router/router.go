package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"review-dashboard/api/handlers"
	"review-dashboard/api/middleware"
	"review-dashboard/db"
	"review-dashboard/services"
)

func New(reviewSvc *services.ReviewService) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.RequestLoggingMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		// Try ping MongoDB
		if err := db.Database().RunCommand(context.Background(), bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/reviews/upload", handlers.UploadReviewsHandler(reviewSvc))
		api.GET("/reviews/analysis/:batchId", handlers.GetAnalysisHandler(reviewSvc))
	}

	return r
}
