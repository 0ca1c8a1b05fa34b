package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marketdesk/support-chat/internal/models"
	"github.com/marketdesk/support-chat/internal/repositories"
)

// PresenceRole names one of the four per-room presence flags.
type PresenceRole string

const (
	PresenceUser       PresenceRole = "user"
	PresenceSuperAdmin PresenceRole = "super_admin"
	PresenceOwner      PresenceRole = "owner"
	PresenceAdmin      PresenceRole = "admin"
)

// staffBotTitle is written when a staff-bot room is first created.
const staffBotTitle = "My Bot Chat"

// ChatroomService owns the room lifecycle and its uniqueness rules: at most
// one open support room per (user, owner) and at most one open staff-bot
// room per user. Both rules are backed by partial unique indexes, so a
// concurrent creator losing the insert race re-reads the winner's room and
// the caller never sees a conflict.
type ChatroomService struct {
	rooms repositories.ChatroomRepository
}

func NewChatroomService(r repositories.ChatroomRepository) *ChatroomService {
	return &ChatroomService{rooms: r}
}

// OpenSupportRoom finds the open room for (userID, ownerID) or creates one
// with the given routing hierarchy. The call is idempotent: repeated or
// concurrent invocations for the same key all return the same room.
func (s *ChatroomService) OpenSupportRoom(ctx context.Context, userID, ownerID, superAdminID, adminID primitive.ObjectID) (*models.Chatroom, error) {
	room := &models.Chatroom{
		RoomType:     models.RoomTypeSupport,
		UserID:       userID,
		OwnerID:      &ownerID,
		SuperAdminID: &superAdminID,
		AdminID:      &adminID,
		Status:       models.StatusOpen,
	}
	if err := s.Validate(room); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	existing, err := s.rooms.FindOpenSupport(ctx, userID, ownerID)
	if err == nil {
		_ = s.rooms.Touch(ctx, existing.ID, now)
		existing.UpdatedTime = now
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	room.CreatedTime = now
	room.UpdatedTime = now
	if err := s.rooms.Insert(ctx, room); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			// lost the open race; the winner's room is the caller's room
			return s.rooms.FindOpenSupport(ctx, userID, ownerID)
		}
		return nil, err
	}
	return room, nil
}

// OpenStaffBotRoom finds or creates the single open staff-bot room for a
// user. Routing fields are always persisted as nil for this room type.
func (s *ChatroomService) OpenStaffBotRoom(ctx context.Context, userID primitive.ObjectID) (*models.Chatroom, error) {
	room := &models.Chatroom{
		RoomType: models.RoomTypeStaffBot,
		UserID:   userID,
		Status:   models.StatusOpen,
		Title:    staffBotTitle,
	}
	if err := s.Validate(room); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	existing, err := s.rooms.FindOpenStaffBot(ctx, userID)
	if err == nil {
		_ = s.rooms.Touch(ctx, existing.ID, now)
		existing.UpdatedTime = now
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	room.CreatedTime = now
	room.UpdatedTime = now
	if err := s.rooms.Insert(ctx, room); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return s.rooms.FindOpenStaffBot(ctx, userID)
		}
		return nil, err
	}
	return room, nil
}

// CloseRoom transitions open -> closed. Closing an already-closed room
// returns it unchanged: the second closer of a double-close race observes
// success, not an error. There is no transition out of closed.
func (s *ChatroomService) CloseRoom(ctx context.Context, id primitive.ObjectID) (*models.Chatroom, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if room.Status == models.StatusClosed {
		return room, nil
	}

	now := time.Now().UTC()
	if err := s.rooms.SetStatus(ctx, id, models.StatusClosed, now); err != nil {
		return nil, err
	}
	room.Status = models.StatusClosed
	room.UpdatedTime = now
	return room, nil
}

// Validate enforces the per-room-type routing rules before every write.
// Support rooms must carry the full hierarchy and are rejected otherwise;
// staff-bot rooms must not, and offending fields are cleared rather than
// rejected. The reject-vs-normalize asymmetry mirrors the fields being
// required for one type and forbidden for the other.
func (s *ChatroomService) Validate(room *models.Chatroom) error {
	if room.UserID.IsZero() {
		return &ValidationError{Reason: "missing user id"}
	}
	switch room.RoomType {
	case models.RoomTypeSupport:
		if nilOrZero(room.OwnerID) || nilOrZero(room.SuperAdminID) || nilOrZero(room.AdminID) {
			return &ValidationError{Reason: "missing routing fields"}
		}
	case models.RoomTypeStaffBot:
		room.OwnerID, room.SuperAdminID, room.AdminID = nil, nil, nil
	default:
		return &ValidationError{Reason: "unknown room type " + room.RoomType}
	}
	return nil
}

// SetActive toggles one presence flag, last write wins. Presence is
// informational for consumers of the room and never feeds the uniqueness
// logic.
func (s *ChatroomService) SetActive(ctx context.Context, id primitive.ObjectID, role PresenceRole, active bool) error {
	field, ok := presenceField(role)
	if !ok {
		return &ValidationError{Reason: "unknown presence role " + string(role)}
	}
	err := s.rooms.SetPresence(ctx, id, field, active, time.Now().UTC())
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func presenceField(role PresenceRole) (string, bool) {
	switch role {
	case PresenceUser:
		return "is_user_active", true
	case PresenceSuperAdmin:
		return "is_superadmin_active", true
	case PresenceOwner:
		return "is_owner_active", true
	case PresenceAdmin:
		return "is_admin_active", true
	}
	return "", false
}

func nilOrZero(id *primitive.ObjectID) bool {
	return id == nil || id.IsZero()
}
