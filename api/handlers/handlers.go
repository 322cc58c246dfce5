package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"review-dashboard/analysis"
	"review-dashboard/models"
	"review-dashboard/services"
)

// ReviewService is the slice of the service layer the HTTP handlers need.
type ReviewService interface {
	SubmitBatch(ctx context.Context, file io.Reader) (string, error)
	GetAnalysis(ctx context.Context, batchID string) (services.AnalysisResult, error)
}

// UploadReviewsHandler godoc
// @Summary      Upload a review batch
// @Description  Accepts a CSV of reviews and starts background analysis
// @Tags         reviews
// @Param        file  formData  file  true  "CSV file, review text in the first column"
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /reviews/upload [post]
func UploadReviewsHandler(svc ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file upload"})
			return
		}
		defer f.Close()

		batchID, err := svc.SubmitBatch(c.Request.Context(), f)
		if err != nil {
			if errors.Is(err, analysis.ErrQueueFull) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis queue is full, try again later"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"batchId": batchID,
			"message": "File uploaded and analysis started.",
		})
	}
}

// GetAnalysisHandler godoc
// @Summary      Get batch analysis
// @Description  Returns the analysis summary, or the batch status while processing
// @Tags         reviews
// @Param        batchId  path  string  true  "Batch ID"
// @Produce      json
// @Success      200  {object}  models.AnalysisSummary
// @Router       /reviews/analysis/{batchId} [get]
func GetAnalysisHandler(svc ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		batchID := c.Param("batchId")

		res, err := svc.GetAnalysis(c.Request.Context(), batchID)
		if err != nil {
			if errors.Is(err, services.ErrBatchNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if res.Summary != nil {
			c.JSON(http.StatusOK, res.Summary)
			return
		}
		if res.Status == models.BatchFailed {
			// Terminal but summary-less: the failure write itself failed.
			c.JSON(http.StatusOK, gin.H{"status": res.Status, "message": "Analysis failed"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": res.Status, "message": "Analysis in progress"})
	}
}
