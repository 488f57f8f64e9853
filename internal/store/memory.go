package store

import (
	"context"
	"sync"

	"github.com/eventrite/eventrite/models"
)

// Memory is an in-memory UserStore for tests and local development. It
// enforces the same email and username uniqueness the database indexes do.
type Memory struct {
	mu     sync.RWMutex
	nextID uint
	users  map[uint]models.User
}

func NewMemory() *Memory {
	return &Memory{users: make(map[uint]models.User)}
}

func (s *Memory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
	}
	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = *user
	return nil
}

func (s *Memory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.Email == email })
}

func (s *Memory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.Username == username })
}

func (s *Memory) FindByID(_ context.Context, id uint) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.ID == id })
}

// Count reports the number of stored users.
func (s *Memory) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Memory) find(match func(models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}
