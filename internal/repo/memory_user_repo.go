package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/docask/docask/internal/model"
	"github.com/docask/docask/internal/pkg/errs"
)

// MemoryUserRepo keeps accounts in process memory. It serves deployments
// that run the memory passage index without Postgres; accounts do not
// survive a restart there, matching the rest of that mode.
type MemoryUserRepo struct {
	mu      sync.RWMutex
	byEmail map[string]model.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byEmail: make(map[string]model.User)}
}

func (r *MemoryUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return fmt.Errorf("%w: email already registered", errs.ErrConflict)
	}
	r.byEmail[user.Email] = *user
	return nil
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	clone := user
	return &clone, nil
}
