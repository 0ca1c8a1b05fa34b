package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResolveIdentity returns the support identity for a primary-directory user,
// creating the mirror on first reference.
func ResolveIdentity(c *gin.Context) {
	var req struct {
		PrimaryUserID string `json:"primary_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	primaryID, err := primitive.ObjectIDFromHex(req.PrimaryUserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid primary_user_id"})
		return
	}

	su, err := Svcs.Identity.ResolveHuman(c.Request.Context(), primaryID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "identity": su})
}

// ResolveBot returns the bot identity with the given name, creating it on
// first use.
func ResolveBot(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	bot, err := Svcs.Identity.ResolveBot(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "bot": bot})
}
