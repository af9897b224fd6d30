package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/harborbank/ledger-service/internal/models"
)

// record wraps an account with its own lock so mutations on different ids
// proceed independently. The deleted flag closes the race between a Mutate
// that looked the record up and a Delete that removed it from the map.
type record struct {
	mu      sync.Mutex
	deleted bool
	account models.Account
}

// MemoryStore is an in-process AccountStore and UserStore. It backs dev mode
// and the test suite. All reads return copies, never internal pointers.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	accounts map[int64]*record
	users    map[string]models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[int64]*record),
		users:    make(map[string]models.User),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, account *models.Account) (*models.Account, error) {
	now := time.Now().UTC()
	stored := *account
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.mu.Lock()
	s.nextID++
	stored.ID = s.nextID
	s.accounts[stored.ID] = &record{account: stored}
	s.mu.Unlock()

	out := stored
	return &out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (*models.Account, error) {
	rec, ok := s.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, ErrNotFound
	}
	out := rec.account
	return &out, nil
}

func (s *MemoryStore) Update(ctx context.Context, account *models.Account) error {
	rec, ok := s.lookup(account.ID)
	if !ok {
		return ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return ErrNotFound
	}
	stored := *account
	stored.CreatedAt = rec.account.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	rec.account = stored
	return nil
}

func (s *MemoryStore) Mutate(ctx context.Context, id int64, fn func(*models.Account) error) (*models.Account, error) {
	rec, ok := s.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, ErrNotFound
	}
	working := rec.account
	if err := fn(&working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now().UTC()
	rec.account = working
	out := working
	return &out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	rec, ok := s.lookup(id)
	if !ok {
		return ErrNotFound
	}
	rec.mu.Lock()
	if rec.deleted {
		rec.mu.Unlock()
		return ErrNotFound
	}
	rec.deleted = true
	rec.mu.Unlock()

	s.mu.Lock()
	delete(s.accounts, id)
	s.mu.Unlock()
	return nil
}

// ListAll returns a snapshot in id (insertion) order. Each record is copied
// under its own lock, so no torn record is ever returned; records mutated
// concurrently may reflect either the old or the new state.
func (s *MemoryStore) ListAll(ctx context.Context) ([]models.Account, error) {
	s.mu.RLock()
	recs := make([]*record, 0, len(s.accounts))
	for _, rec := range s.accounts {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	accounts := make([]models.Account, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		if !rec.deleted {
			accounts = append(accounts, rec.account)
		}
		rec.mu.Unlock()
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (s *MemoryStore) lookup(id int64) (*record, bool) {
	s.mu.RLock()
	rec, ok := s.accounts[id]
	s.mu.RUnlock()
	return rec, ok
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return ErrEmailTaken
	}
	s.users[user.Email] = *user
	return nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	out := user
	return &out, nil
}
