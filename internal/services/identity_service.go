package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marketdesk/support-chat/internal/config"
	"github.com/marketdesk/support-chat/internal/models"
	"github.com/marketdesk/support-chat/internal/repositories"
)

// maxHierarchyHops caps parent-chain walks so a corrupt directory containing
// a parent cycle cannot loop forever.
const maxHierarchyHops = 12

// IdentityService is the identity registry: it reconciles primary-directory
// users and bot identities into addressable support-side participants, and
// resolves the staff hierarchy above a user.
type IdentityService struct {
	identities repositories.IdentityRepository
	primary    repositories.PrimaryUserRepository
	roles      config.RoleSet
}

func NewIdentityService(identities repositories.IdentityRepository, primary repositories.PrimaryUserRepository, roles config.RoleSet) *IdentityService {
	return &IdentityService{identities: identities, primary: primary, roles: roles}
}

// ResolveHuman returns the support identity mirroring the given primary user,
// creating it lazily on first reference. Concurrent first references resolve
// to a single record: the losing writer re-reads the winner instead of
// erroring. Returns ErrNotFound when the primary user does not exist.
func (s *IdentityService) ResolveHuman(ctx context.Context, primaryID primitive.ObjectID) (*models.SupportIdentity, error) {
	su, err := s.identities.FindByPrimaryUserID(ctx, primaryID)
	if err == nil {
		s.refreshIfStale(ctx, su)
		return su, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	pu, err := s.primary.FindByID(ctx, primaryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	role := pu.Role
	su = &models.SupportIdentity{
		PrimaryUserID: &pu.ID,
		Role:          &role,
		ParentID:      pu.ParentID,
		IsBot:         false,
		Name:          pu.Name,
		UserName:      pu.UserName,
		Phone:         pu.Phone,
		CreatedTime:   now,
		UpdatedTime:   now,
	}
	if err := s.identities.Insert(ctx, su); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			// a concurrent resolver won the race; its record is ours too
			return s.identities.FindByPrimaryUserID(ctx, primaryID)
		}
		return nil, err
	}
	return su, nil
}

// refreshIfStale backfills mirrored display fields that were missing at
// creation time and bumps updated_time. Failures here never fail resolution.
func (s *IdentityService) refreshIfStale(ctx context.Context, su *models.SupportIdentity) {
	if su.Name == "" || su.Phone == "" {
		if pu, err := s.primary.FindByID(ctx, *su.PrimaryUserID); err == nil {
			_ = s.identities.RefreshMirror(ctx, su.ID, pu.Name, pu.UserName, pu.Phone)
			su.Name, su.UserName, su.Phone = pu.Name, pu.UserName, pu.Phone
			su.UpdatedTime = time.Now().UTC()
			return
		}
	}
	_ = s.identities.Touch(ctx, su.ID)
	su.UpdatedTime = time.Now().UTC()
}

// ResolveBot finds or creates the bot identity with the given name.
// Subsequent calls are idempotent no-ops returning the existing record.
func (s *IdentityService) ResolveBot(ctx context.Context, name string) (*models.Bot, error) {
	b, err := s.identities.FindBotByName(ctx, name)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	b = &models.Bot{Name: name, CreatedTime: now, UpdatedTime: now}
	if err := s.identities.InsertBot(ctx, b); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return s.identities.FindBotByName(ctx, name)
		}
		return nil, err
	}
	return b, nil
}

// ResolveOwnerSuperAdmin walks the parent chain until it reaches a user
// holding the super-admin role and returns that user's id. A broken or
// overlong chain yields nil without error.
func (s *IdentityService) ResolveOwnerSuperAdmin(ctx context.Context, id primitive.ObjectID) (*primitive.ObjectID, error) {
	current := id
	for i := 0; i < maxHierarchyHops; i++ {
		pu, err := s.primary.FindByID(ctx, current)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		if pu.Role == s.roles.SuperAdmin {
			owner := pu.ID
			return &owner, nil
		}
		if pu.ParentID == nil {
			return nil, nil
		}
		current = *pu.ParentID
	}
	return nil, nil
}

// Routing is the staff hierarchy responsible for a support room.
type Routing struct {
	OwnerID      *primitive.ObjectID `json:"owner_id,omitempty"`
	SuperAdminID *primitive.ObjectID `json:"super_admin_id,omitempty"`
	AdminID      *primitive.ObjectID `json:"admin_id,omitempty"`
}

// RoutingFor derives the routing hierarchy for a client: the immediate
// parent keeps the legacy super_admin slot, the parent-of-parent is the
// admin, and the owner is the chain-walked super-admin with the immediate
// parent as fallback.
func (s *IdentityService) RoutingFor(ctx context.Context, primaryID primitive.ObjectID) (Routing, error) {
	var rt Routing

	su, err := s.ResolveHuman(ctx, primaryID)
	if err != nil {
		return rt, err
	}

	rt.SuperAdminID = su.ParentID
	if su.ParentID != nil {
		if parent, err := s.primary.FindByID(ctx, *su.ParentID); err == nil && parent.ParentID != nil {
			rt.AdminID = parent.ParentID
		}
	}

	owner, err := s.ResolveOwnerSuperAdmin(ctx, primaryID)
	if err != nil {
		return rt, err
	}
	if owner == nil {
		owner = su.ParentID
	}
	rt.OwnerID = owner
	return rt, nil
}

// StaffBotLinkage reports, for informational purposes, where a staff member
// sits in the hierarchy when they open a bot chat. Staff-bot rooms persist
// no routing fields; this only annotates API responses.
func (s *IdentityService) StaffBotLinkage(ctx context.Context, primaryID primitive.ObjectID) (Routing, error) {
	var rt Routing

	pu, err := s.primary.FindByID(ctx, primaryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return rt, ErrNotFound
		}
		return rt, err
	}

	self := pu.ID
	switch pu.Role {
	case s.roles.SuperAdmin:
		rt.OwnerID = &self
	case s.roles.Admin:
		// an admin's parent is the owner
		rt.AdminID = &self
		rt.OwnerID = pu.ParentID
	case s.roles.Master:
		// a master's parent is the admin, whose parent is the owner
		rt.SuperAdminID = &self
		rt.AdminID = pu.ParentID
		if pu.ParentID != nil {
			if admin, err := s.primary.FindByID(ctx, *pu.ParentID); err == nil && admin.ParentID != nil {
				rt.OwnerID = admin.ParentID
			}
		}
		if rt.OwnerID == nil {
			owner, err := s.ResolveOwnerSuperAdmin(ctx, primaryID)
			if err != nil {
				return rt, err
			}
			rt.OwnerID = owner
		}
	}
	return rt, nil
}
