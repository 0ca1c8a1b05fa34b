package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sendMessageRequest struct {
	SenderID string `json:"sender_id" binding:"required"`
	Message  string `json:"message"`
	IsFile   bool   `json:"is_file"`
	Path     string `json:"path"`
	IsBot    bool   `json:"is_bot"`
}

// SendMessage appends a message to a room. Appends are status-agnostic: the
// room may have been closed concurrently and the append still succeeds.
func SendMessage(c *gin.Context) {
	chatroomID, ok := pathID(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	senderID, err := primitive.ObjectIDFromHex(req.SenderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sender_id"})
		return
	}
	if req.Message == "" && !req.IsFile {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty message"})
		return
	}

	msg, err := Svcs.Message.Append(c.Request.Context(), chatroomID, senderID, req.Message, req.IsFile, req.Path, req.IsBot)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": msg})
}

// ListMessages returns a page of room history ordered ascending by
// (created_time, id), resumable via the after query parameter.
func ListMessages(c *gin.Context) {
	chatroomID, ok := pathID(c)
	if !ok {
		return
	}

	var after *primitive.ObjectID
	if v := c.Query("after"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid after cursor"})
			return
		}
		after = &id
	}

	var limit int64
	if v := c.Query("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	msgs, err := Svcs.Message.List(c.Request.Context(), chatroomID, after, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "messages": msgs})
}
