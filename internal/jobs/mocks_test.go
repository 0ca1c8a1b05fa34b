package jobs

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marketdesk/support-chat/internal/models"
	"github.com/marketdesk/support-chat/internal/repositories"
)

type fakePrefsRepo struct {
	byRole map[string][]int64
	err    error
}

func (f *fakePrefsRepo) ChatIDsForRole(ctx context.Context, role string) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byRole[role], nil
}

// fakeSink records every delivery instead of calling Telegram.
type fakeSink struct {
	mu        sync.Mutex
	messages  []sentMessage
	documents []sentDocument
	fail      bool
}

type sentMessage struct {
	dest    int64
	payload string
}

type sentDocument struct {
	dest     int64
	caption  string
	filename string
	content  []byte
}

func (f *fakeSink) Send(destination int64, payload string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false
	}
	f.messages = append(f.messages, sentMessage{dest: destination, payload: payload})
	return true
}

func (f *fakeSink) SendDocument(destination int64, caption, filename string, content []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false
	}
	f.documents = append(f.documents, sentDocument{dest: destination, caption: caption, filename: filename, content: content})
	return true
}

type fakePrimaryRepo struct {
	admins []models.PrimaryUser
}

func (f *fakePrimaryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrimaryUser, error) {
	for i := range f.admins {
		if f.admins[i].ID == id {
			cp := f.admins[i]
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakePrimaryRepo) FindSaasAdmins(ctx context.Context, adminRoleID primitive.ObjectID) ([]models.PrimaryUser, error) {
	var out []models.PrimaryUser
	for _, pu := range f.admins {
		if pu.Role == adminRoleID && pu.Saas {
			out = append(out, pu)
		}
	}
	return out, nil
}
