package state

import "sync"

// Store serializes all access to the container. Every reader and
// writer runs under the same mutex, giving callbacks exclusive use of
// the container for their whole duration.
type Store struct {
	mu        sync.Mutex
	container *Container
}

// NewStore wraps a container. A nil container gets replaced with a
// fresh one.
func NewStore(c *Container) *Store {
	if c == nil {
		c = NewContainer()
	}
	return &Store{container: c}
}

// View runs fn with exclusive read access to the container. The
// callback must not retain the container or anything reachable from it
// past its return.
func (s *Store) View(fn func(*Container) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.container)
}

// Borrow runs fn with exclusive write access to the container, under
// the same exclusion as View.
func (s *Store) Borrow(fn func(*Container) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.container)
}

// Replace swaps in a new container, used after restoring a snapshot.
func (s *Store) Replace(c *Container) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.container = c
}
