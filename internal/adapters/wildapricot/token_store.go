package wildapricot

import (
	"sync"

	"github.com/example/watools/internal/ports/secondary"
)

// MemoryTokenStore keeps access tokens for the life of the process.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*secondary.AccessToken
}

// NewMemoryTokenStore creates an empty token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]*secondary.AccessToken)}
}

// Get returns the token stored under key.
func (s *MemoryTokenStore) Get(key string) (*secondary.AccessToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[key]
	return tok, ok
}

// Put stores a token under key. A nil token removes the entry.
func (s *MemoryTokenStore) Put(key string, token *secondary.AccessToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == nil {
		delete(s.tokens, key)
		return
	}
	s.tokens[key] = token
}

var _ secondary.TokenStore = (*MemoryTokenStore)(nil)
