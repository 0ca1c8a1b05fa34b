package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marketdesk/support-chat/internal/api/ws"
)

type openSupportRoomRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	OwnerID      string `json:"owner_id"`
	SuperAdminID string `json:"super_admin_id"`
	AdminID      string `json:"admin_id"`
}

// OpenSupportRoom finds or creates the open support room for a client. When
// the routing ids are omitted they are derived from the primary directory's
// hierarchy.
func OpenSupportRoom(c *gin.Context) {
	var req openSupportRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	ownerID, superAdminID, adminID, ok := routingFromRequest(c, userID, req)
	if !ok {
		return
	}

	room, err := Svcs.Chat.OpenSupportRoom(c.Request.Context(), userID, ownerID, superAdminID, adminID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "chatroom": room})
}

// routingFromRequest uses explicit ids when all three are present and
// otherwise derives the hierarchy for the user.
func routingFromRequest(c *gin.Context, userID primitive.ObjectID, req openSupportRoomRequest) (owner, superAdmin, admin primitive.ObjectID, ok bool) {
	if req.OwnerID != "" || req.SuperAdminID != "" || req.AdminID != "" {
		var err error
		if owner, err = primitive.ObjectIDFromHex(req.OwnerID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner_id"})
			return
		}
		if superAdmin, err = primitive.ObjectIDFromHex(req.SuperAdminID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid super_admin_id"})
			return
		}
		if admin, err = primitive.ObjectIDFromHex(req.AdminID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin_id"})
			return
		}
		return owner, superAdmin, admin, true
	}

	rt, err := Svcs.Identity.RoutingFor(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if rt.OwnerID == nil || rt.SuperAdminID == nil || rt.AdminID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation: missing routing fields"})
		return
	}
	return *rt.OwnerID, *rt.SuperAdminID, *rt.AdminID, true
}

// OpenStaffBotRoom finds or creates the single open staff-bot room for a
// staff member. The response includes the staff member's hierarchy linkage
// for display; the room itself persists no routing fields.
func OpenStaffBotRoom(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	room, err := Svcs.Chat.OpenStaffBotRoom(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	linkage, err := Svcs.Identity.StaffBotLinkage(c.Request.Context(), userID)
	if err != nil {
		// linkage is informational; the room open already succeeded
		c.JSON(http.StatusOK, gin.H{"status": "success", "chatroom": room})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "chatroom": room, "linkage": linkage})
}

// CloseRoom transitions a room to closed; closing an already-closed room is
// a success.
func CloseRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	room, err := Svcs.Chat.CloseRoom(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "chatroom": room})
}

// ChatroomWS upgrades the connection to a websocket presence session for the
// room.
func ChatroomWS(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	role := ws.NormalizeRole(c.Query("role"))
	ws.ServeChatroomWS(c.Writer, c.Request, id, role)
}
