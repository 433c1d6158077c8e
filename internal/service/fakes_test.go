package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/seed-hypermedia/mintter-sub004/internal/entity"
	"github.com/seed-hypermedia/mintter-sub004/internal/repository/contract"
	"github.com/seed-hypermedia/mintter-sub004/internal/repository/specification"
	"github.com/seed-hypermedia/mintter-sub004/internal/repository/unitofwork"
	"github.com/seed-hypermedia/mintter-sub004/pkg/events"

	"github.com/google/uuid"
)

// fakeStore is an in-memory document table shared by every unit of work.
type fakeStore struct {
	mu        sync.Mutex
	documents map[uuid.UUID]entity.Document
	commits   int
	rollbacks int
}

func newFakeStore() *fakeStore {
	return &fakeStore{documents: map[uuid.UUID]entity.Document{}}
}

func (s *fakeStore) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: s}
}

type fakeUnitOfWork struct {
	store *fakeStore
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }

func (u *fakeUnitOfWork) Commit() error {
	u.store.mu.Lock()
	u.store.commits++
	u.store.mu.Unlock()
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	u.store.mu.Lock()
	u.store.rollbacks++
	u.store.mu.Unlock()
	return nil
}

func (u *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return &fakeDocumentRepository{store: u.store}
}

type fakeDocumentRepository struct {
	store *fakeStore
}

// cloneDocument round-trips through JSON so callers never share block slices.
func cloneDocument(d entity.Document) *entity.Document {
	data, _ := json.Marshal(d)
	var out entity.Document
	_ = json.Unmarshal(data, &out)
	return &out
}

func matches(d entity.Document, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if d.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if d.UserId != s.UserID {
				return false
			}
		case specification.TextContains:
			q := strings.ToLower(strings.TrimSpace(s.Query))
			if q != "" && !strings.Contains(strings.ToLower(d.Title+" "+d.PlainText), q) {
				return false
			}
		}
	}
	return true
}

func (r *fakeDocumentRepository) Create(ctx context.Context, document *entity.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.documents[document.Id] = *cloneDocument(*document)
	return nil
}

func (r *fakeDocumentRepository) Update(ctx context.Context, document *entity.Document) error {
	return r.Create(ctx, document)
}

func (r *fakeDocumentRepository) UpdatePlainText(ctx context.Context, id uuid.UUID, version int, plainText string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, ok := r.store.documents[id]
	if ok && d.Version == version {
		d.PlainText = plainText
		r.store.documents[id] = d
	}
	return nil
}

func (r *fakeDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.documents, id)
	return nil
}

func (r *fakeDocumentRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeDocumentRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Document
	for _, d := range r.store.documents {
		if matches(d, specs) {
			out = append(out, cloneDocument(d))
		}
	}
	return out, nil
}

func (r *fakeDocumentRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakeEventPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakeEventPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages map[uuid.UUID][][]byte
}

func (b *fakeBroadcaster) Publish(documentID uuid.UUID, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.messages == nil {
		b.messages = map[uuid.UUID][][]byte{}
	}
	b.messages[documentID] = append(b.messages[documentID], payload)
}
