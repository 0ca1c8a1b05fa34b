package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marketdesk/support-chat/internal/models"
	"github.com/marketdesk/support-chat/internal/repositories"
)

// fakeChatroomRepo is an in-memory ChatroomRepository that enforces the same
// conditional uniqueness the store's partial indexes do: insert and the
// uniqueness check happen under one lock, so concurrent service calls race
// exactly as they would against the real store.
type fakeChatroomRepo struct {
	mu    sync.Mutex
	rooms map[primitive.ObjectID]*models.Chatroom

	// beforeInsert, when set, runs ahead of an Insert attempt. Tests use it
	// to wedge a winning writer between find and insert.
	beforeInsert func()
}

func newFakeChatroomRepo() *fakeChatroomRepo {
	return &fakeChatroomRepo{rooms: make(map[primitive.ObjectID]*models.Chatroom)}
}

func (f *fakeChatroomRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chatroom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *room
	return &cp, nil
}

func (f *fakeChatroomRepo) FindOpenSupport(ctx context.Context, userID, ownerID primitive.ObjectID) (*models.Chatroom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if room := f.openSupportLocked(userID, ownerID); room != nil {
		cp := *room
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeChatroomRepo) FindOpenStaffBot(ctx context.Context, userID primitive.ObjectID) (*models.Chatroom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if room := f.openStaffBotLocked(userID); room != nil {
		cp := *room
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeChatroomRepo) Insert(ctx context.Context, room *models.Chatroom) error {
	if f.beforeInsert != nil {
		f.beforeInsert()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if room.Status == models.StatusOpen {
		switch room.RoomType {
		case models.RoomTypeSupport:
			if room.OwnerID != nil && f.openSupportLocked(room.UserID, *room.OwnerID) != nil {
				return repositories.ErrDuplicateKey
			}
		case models.RoomTypeStaffBot:
			if f.openStaffBotLocked(room.UserID) != nil {
				return repositories.ErrDuplicateKey
			}
		}
	}
	room.ID = primitive.NewObjectID()
	cp := *room
	f.rooms[room.ID] = &cp
	return nil
}

func (f *fakeChatroomRepo) openSupportLocked(userID, ownerID primitive.ObjectID) *models.Chatroom {
	for _, room := range f.rooms {
		if room.RoomType == models.RoomTypeSupport && room.Status == models.StatusOpen &&
			room.UserID == userID && room.OwnerID != nil && *room.OwnerID == ownerID {
			return room
		}
	}
	return nil
}

func (f *fakeChatroomRepo) openStaffBotLocked(userID primitive.ObjectID) *models.Chatroom {
	for _, room := range f.rooms {
		if room.RoomType == models.RoomTypeStaffBot && room.Status == models.StatusOpen && room.UserID == userID {
			return room
		}
	}
	return nil
}

func (f *fakeChatroomRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status string, when time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return repositories.ErrNotFound
	}
	room.Status = status
	room.UpdatedTime = when
	return nil
}

func (f *fakeChatroomRepo) SetPresence(ctx context.Context, id primitive.ObjectID, field string, active bool, when time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return repositories.ErrNotFound
	}
	switch field {
	case "is_user_active":
		room.IsUserActive = active
	case "is_superadmin_active":
		room.IsSuperadminActive = active
	case "is_owner_active":
		room.IsOwnerActive = active
	case "is_admin_active":
		room.IsAdminActive = active
	}
	room.UpdatedTime = when
	return nil
}

func (f *fakeChatroomRepo) Touch(ctx context.Context, id primitive.ObjectID, when time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return repositories.ErrNotFound
	}
	room.UpdatedTime = when
	return nil
}

func (f *fakeChatroomRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rooms)
}

// fakeMessageRepo stores messages in insertion order, which stands in for
// the monotonic _id tiebreak of the real store.
type fakeMessageRepo struct {
	mu   sync.Mutex
	msgs []models.Message
}

func (f *fakeMessageRepo) Insert(ctx context.Context, m *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = primitive.NewObjectID()
	f.msgs = append(f.msgs, *m)
	return nil
}

func (f *fakeMessageRepo) LastCreatedTime(ctx context.Context, chatroomID primitive.ObjectID) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last time.Time
	for _, m := range f.msgs {
		if m.ChatroomID == chatroomID && m.CreatedTime.After(last) {
			last = m.CreatedTime
		}
	}
	return last, nil
}

func (f *fakeMessageRepo) List(ctx context.Context, chatroomID primitive.ObjectID, after *primitive.ObjectID, limit int64) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var inRoom []models.Message
	for _, m := range f.msgs {
		if m.ChatroomID == chatroomID {
			inRoom = append(inRoom, m)
		}
	}
	sort.SliceStable(inRoom, func(i, j int) bool {
		return inRoom[i].CreatedTime.Before(inRoom[j].CreatedTime)
	})

	start := 0
	if after != nil {
		found := false
		for i, m := range inRoom {
			if m.ID == *after {
				start = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil, repositories.ErrNotFound
		}
	}

	end := len(inRoom)
	if limit > 0 && start+int(limit) < end {
		end = start + int(limit)
	}
	return inRoom[start:end], nil
}

// fakeIdentityRepo enforces one identity per primary user and one bot per
// name, again under a single lock.
type fakeIdentityRepo struct {
	mu         sync.Mutex
	byPrimary  map[primitive.ObjectID]*models.SupportIdentity
	botsByName map[string]*models.Bot

	beforeInsert func()
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{
		byPrimary:  make(map[primitive.ObjectID]*models.SupportIdentity),
		botsByName: make(map[string]*models.Bot),
	}
}

func (f *fakeIdentityRepo) FindByPrimaryUserID(ctx context.Context, primaryID primitive.ObjectID) (*models.SupportIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	su, ok := f.byPrimary[primaryID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *su
	return &cp, nil
}

func (f *fakeIdentityRepo) Insert(ctx context.Context, su *models.SupportIdentity) error {
	if f.beforeInsert != nil {
		f.beforeInsert()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if su.PrimaryUserID != nil {
		if _, exists := f.byPrimary[*su.PrimaryUserID]; exists {
			return repositories.ErrDuplicateKey
		}
	}
	su.ID = primitive.NewObjectID()
	cp := *su
	f.byPrimary[*su.PrimaryUserID] = &cp
	return nil
}

func (f *fakeIdentityRepo) RefreshMirror(ctx context.Context, id primitive.ObjectID, name, userName, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, su := range f.byPrimary {
		if su.ID == id {
			su.Name, su.UserName, su.Phone = name, userName, phone
			su.UpdatedTime = time.Now().UTC()
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeIdentityRepo) Touch(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, su := range f.byPrimary {
		if su.ID == id {
			su.UpdatedTime = time.Now().UTC()
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeIdentityRepo) FindBotByName(ctx context.Context, name string) (*models.Bot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.botsByName[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeIdentityRepo) InsertBot(ctx context.Context, b *models.Bot) error {
	if f.beforeInsert != nil {
		f.beforeInsert()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.botsByName[b.Name]; exists {
		return repositories.ErrDuplicateKey
	}
	b.ID = primitive.NewObjectID()
	cp := *b
	f.botsByName[b.Name] = &cp
	return nil
}

func (f *fakeIdentityRepo) identityCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byPrimary)
}

// fakePrimaryRepo is a static primary directory.
type fakePrimaryRepo struct {
	users map[primitive.ObjectID]*models.PrimaryUser
}

func newFakePrimaryRepo() *fakePrimaryRepo {
	return &fakePrimaryRepo{users: make(map[primitive.ObjectID]*models.PrimaryUser)}
}

func (f *fakePrimaryRepo) add(pu models.PrimaryUser) {
	f.users[pu.ID] = &pu
}

func (f *fakePrimaryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrimaryUser, error) {
	pu, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *pu
	return &cp, nil
}

func (f *fakePrimaryRepo) FindSaasAdmins(ctx context.Context, adminRoleID primitive.ObjectID) ([]models.PrimaryUser, error) {
	var admins []models.PrimaryUser
	for _, pu := range f.users {
		if pu.Role == adminRoleID && pu.Saas {
			admins = append(admins, *pu)
		}
	}
	return admins, nil
}
