package syncx

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dkazakov/fieldsale/internal/client/api"
	"github.com/dkazakov/fieldsale/internal/client/models"
	"github.com/dkazakov/fieldsale/internal/common"
	"github.com/dkazakov/fieldsale/internal/logging"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeMeta is an in-memory metadata.Repository.
type fakeMeta struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{data: make(map[string][]byte)}
}

func (m *fakeMeta) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *fakeMeta) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *fakeMeta) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *fakeMeta) List(ctx context.Context) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		out[k] = append([]byte(nil), v...)
	}
	return out, nil
}

func (m *fakeMeta) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}

// fakeConn is a hand-driven ConnectivitySource.
type fakeConn struct {
	mu     sync.Mutex
	online bool
	subs   map[int]func(bool)
	next   int
}

func newFakeConn(online bool) *fakeConn {
	return &fakeConn{online: online, subs: make(map[int]func(bool))}
}

func (c *fakeConn) IsOnline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

func (c *fakeConn) Subscribe(fn func(bool)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *fakeConn) set(online bool) {
	c.mu.Lock()
	if c.online == online {
		c.mu.Unlock()
		return
	}
	c.online = online
	fns := make([]func(bool), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(online)
	}
}

// fakeAPI overrides just the endpoints a test exercises.
type fakeAPI struct {
	api.Client
	createContactFn func(ctx context.Context, c *models.Contact) (*models.Contact, error)
	updateContactFn func(ctx context.Context, c *models.Contact) (*models.Contact, error)
	deleteContactFn func(ctx context.Context, serverID int64) error
	createProductFn func(ctx context.Context, p *models.Product) (*models.Product, error)
	updateProductFn func(ctx context.Context, p *models.Product) (*models.Product, error)
}

func (f *fakeAPI) CreateContact(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	return f.createContactFn(ctx, c)
}

func (f *fakeAPI) UpdateContact(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	return f.updateContactFn(ctx, c)
}

func (f *fakeAPI) DeleteContact(ctx context.Context, serverID int64) error {
	return f.deleteContactFn(ctx, serverID)
}

func (f *fakeAPI) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	return f.createProductFn(ctx, p)
}

func (f *fakeAPI) UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	return f.updateProductFn(ctx, p)
}

// fakeContactStore is a map-backed cache.Store[models.Contact].
type fakeContactStore struct {
	mu   sync.Mutex
	rows map[int64]models.Contact
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{rows: make(map[int64]models.Contact)}
}

func (s *fakeContactStore) Upsert(ctx context.Context, c *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[c.ID.Int64()] = *c
	return nil
}

func (s *fakeContactStore) DeleteByID(ctx context.Context, owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *fakeContactStore) GetByID(ctx context.Context, owner, id int64) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := c
	return &out, nil
}

func (s *fakeContactStore) GetAllByOwner(ctx context.Context, owner int64) ([]models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Contact
	for _, c := range s.rows {
		if !c.Deleted {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeContactStore) GetDirty(ctx context.Context, owner int64) ([]models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Contact
	for _, c := range s.rows {
		if c.Dirty || c.Deleted {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeContactStore) LowestLocalID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lowest := int64(-1)
	for id := range s.rows {
		if id < lowest {
			lowest = id
		}
	}
	return lowest, nil
}

func (s *fakeContactStore) Remap(ctx context.Context, owner, oldID int64, c *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, oldID)
	s.rows[c.ID.Int64()] = *c
	return nil
}

func (s *fakeContactStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[int64]models.Contact)
	return nil
}

// fakeProductStore is a map-backed cache.Store[models.Product].
type fakeProductStore struct {
	mu   sync.Mutex
	rows map[int64]models.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{rows: make(map[int64]models.Product)}
}

func (s *fakeProductStore) Upsert(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[p.ID.Int64()] = *p
	return nil
}

func (s *fakeProductStore) DeleteByID(ctx context.Context, owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *fakeProductStore) GetByID(ctx context.Context, owner, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := p
	return &out, nil
}

func (s *fakeProductStore) GetAllByOwner(ctx context.Context, owner int64) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, p := range s.rows {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeProductStore) GetDirty(ctx context.Context, owner int64) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, p := range s.rows {
		if p.Dirty {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeProductStore) LowestLocalID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lowest := int64(-1)
	for id := range s.rows {
		if id < lowest {
			lowest = id
		}
	}
	return lowest, nil
}

func (s *fakeProductStore) Remap(ctx context.Context, owner, oldID int64, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, oldID)
	s.rows[p.ID.Int64()] = *p
	return nil
}

func (s *fakeProductStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[int64]models.Product)
	return nil
}

// newTestScheduler returns a scheduler with millisecond backoff and offline
// polling so retry tests stay fast.
func newTestScheduler(t *testing.T, online func() bool) *Scheduler {
	t.Helper()
	s := NewScheduler(online, discardLogger())
	s.offlineWait = time.Millisecond
	s.newBackoff = func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	}
	t.Cleanup(s.Close)
	return s
}
