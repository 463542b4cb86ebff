package credentialsrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/credentials"
)

var _ credentials.Store = (*FakeCredentialStore)(nil)

// FakeCredentialStore keeps bundles in memory, one per origin
type FakeCredentialStore struct {
	bundles map[string]credentials.Bundle // origin to bundle
	origin  string
	lock    *sync.RWMutex
	loads   *int
}

func NewFakeCredentialStore() *FakeCredentialStore {
	return &FakeCredentialStore{
		bundles: make(map[string]credentials.Bundle),
		lock:    &sync.RWMutex{},
		loads:   new(int),
	}
}

// ForOrigin returns a view of the same backing map scoped to origin
func (s *FakeCredentialStore) ForOrigin(origin string) *FakeCredentialStore {
	return &FakeCredentialStore{
		bundles: s.bundles,
		origin:  origin,
		lock:    s.lock,
		loads:   s.loads,
	}
}

func (s *FakeCredentialStore) Load(_ context.Context) (credentials.Bundle, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	*s.loads++
	return s.bundles[s.origin], nil
}

func (s *FakeCredentialStore) Save(_ context.Context, b credentials.Bundle) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.bundles[s.origin] = s.bundles[s.origin].Merge(b)
	return nil
}

func (s *FakeCredentialStore) Replace(_ context.Context, b credentials.Bundle) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if b.IsEmpty() {
		delete(s.bundles, s.origin)
		return nil
	}
	s.bundles[s.origin] = b
	return nil
}

func (s *FakeCredentialStore) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.bundles, s.origin)
	return nil
}

// Loads returns how many times Load was called across all views
func (s *FakeCredentialStore) Loads() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return *s.loads
}
