package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oncall-dev/oncall/db"
)

type ActionableRequest struct {
	Actionable string `json:"actionable"`
}

// SetActionable records whether a human judged the incident to have
// warranted action. Only the literals "true" and "false" are accepted,
// case-insensitively.
func SetActionable(ctx *gin.Context) {
	if ctx.ContentType() != "application/json" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "requests must of type application/json"})
		return
	}

	incident, ok := findIncident(ctx)

	if !ok {
		return
	}

	var req ActionableRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "actionable must be either true or false"})
		return
	}

	var actionable bool

	switch strings.ToLower(req.Actionable) {
	case "true":
		actionable = true
	case "false":
		actionable = false
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "actionable must be either true or false"})
		return
	}

	if err := db.DB.Model(&incident).Update("actionable", actionable).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update incident"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"actionable": actionable})
}
