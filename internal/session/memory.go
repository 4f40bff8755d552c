package session

import (
	"context"
	"sync"

	"post-bot/internal/model"
)

// Compile-time check to ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// MemoryStore — хранилище сессий в памяти процесса. Содержимое живет до рестарта.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[int64]*model.DraftPost
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[int64]*model.DraftPost)}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (*model.DraftPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.drafts[userID]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return post, nil
}

func (s *MemoryStore) Put(_ context.Context, post *model.DraftPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[post.UserID] = post
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
	return nil
}
