package wizard

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const DefaultTTL = 30 * time.Minute

// Store keeps wizard state per browser in memory. Entries expire after the
// TTL and are copied in and out, so callers never share a State.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		cache: cache.New(ttl, ttl),
		ttl:   ttl,
	}
}

// Load returns the state for browserID, or a fresh one at the credentials
// step.
func (s *Store) Load(browserID string) State {
	if v, ok := s.cache.Get(browserID); ok {
		if st, ok := v.(State); ok {
			return st
		}
	}
	return State{Step: StepCredentials}
}

// Save stores st, refreshing its TTL. A completed wizard is forgotten.
func (s *Store) Save(browserID string, st State) {
	if st.Step == StepComplete {
		s.cache.Delete(browserID)
		return
	}
	s.cache.Set(browserID, st, s.ttl)
}

func (s *Store) Reset(browserID string) {
	s.cache.Delete(browserID)
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}
