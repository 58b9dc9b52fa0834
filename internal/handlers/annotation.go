package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oncall-dev/oncall/db"
	"github.com/oncall-dev/oncall/internal/models"
	"gorm.io/gorm"
)

type AnnotationRequest struct {
	Annotation string `json:"annotation"`
}

func findIncident(ctx *gin.Context) (models.Incident, bool) {
	var incident models.Incident

	err := db.DB.Where("external_incident_id = ?", ctx.Param("incident_id")).First(&incident).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "incident does not exist"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve incident"})
		}
		return models.Incident{}, false
	}

	return incident, true
}

// UpsertAnnotation creates an incident's annotation or, when one already
// exists, overwrites its text in place. The annotation keeps its identity
// and creation time across updates.
func UpsertAnnotation(ctx *gin.Context) {
	if ctx.ContentType() != "application/json" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "requests must of type application/json"})
		return
	}

	incident, ok := findIncident(ctx)

	if !ok {
		return
	}

	var req AnnotationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil || req.Annotation == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "annotation is a required argument"})
		return
	}

	var annotation models.Annotation

	if incident.AnnotationID != nil {
		if err := db.DB.First(&annotation, *incident.AnnotationID).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve annotation"})
			return
		}

		if err := db.DB.Model(&annotation).Update("summary", req.Annotation).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update annotation"})
			return
		}

		annotation.Summary = req.Annotation
	} else {
		annotation = models.Annotation{Summary: req.Annotation}

		if err := db.DB.Create(&annotation).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create annotation"})
			return
		}

		if err := db.DB.Model(&incident).Update("annotation_id", annotation.ID).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link annotation"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"annotation": AnnotationSummary{
		ID:        annotation.ID,
		Summary:   annotation.Summary,
		CreatedAt: annotation.CreatedAt.Format(time.RFC3339),
	}})
}

// DeleteAnnotation removes an incident's annotation and clears the link.
// Deleting an incident without an annotation is a no-op.
func DeleteAnnotation(ctx *gin.Context) {
	incident, ok := findIncident(ctx)

	if !ok {
		return
	}

	if incident.AnnotationID != nil {
		annotationID := *incident.AnnotationID

		if err := db.DB.Model(&incident).Update("annotation_id", nil).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlink annotation"})
			return
		}

		if err := db.DB.Unscoped().Delete(&models.Annotation{}, annotationID).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete annotation"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"annotation": nil})
}
