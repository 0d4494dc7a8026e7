// Package store implements the in-memory timeline entity store: merge-on-put
// ingestion, a bidirectional relation graph, cursor-paginated filtered
// queries with field projection, and per-domain access control enforced at
// read time through an injected predicate.
package store

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/chroniclehq/chronicle/pkg/model"
)

const (
	// DefaultDomainID is assigned to entities read back without a domain.
	DefaultDomainID = "DEFAULT"
	// DefaultLimit caps query results when the caller gives no limit.
	DefaultLimit = 100
)

// ErrStopped is returned by domain writes after the store has been stopped.
var ErrStopped = errors.New("timeline store is stopped")

// CheckACL is the injected read-side access predicate. It is called once
// per candidate entity in selection order and must not mutate the entity.
type CheckACL func(*model.Entity) bool

// MemoryStore is a volatile, queryable store for timeline entities guarded
// by per-entity access-control domains. Every public operation runs under
// one global mutex; there is no finer-grained locking and no partial
// visibility between operations.
type MemoryStore struct {
	mu sync.Mutex

	entities       OrderedMapAdapter[EntityKey, *model.Entity]
	insertTimes    MapAdapter[EntityKey, int64]
	domainsByID    MapAdapter[string, *model.Domain]
	domainsByOwner MapAdapter[string, map[string]*model.Domain]

	stopped bool

	defaultDomainID string
	defaultLimit    int64
	now             func() int64
	log             *slog.Logger
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithDefaultDomainID overrides the domain id assigned to entities that
// have none at read time.
func WithDefaultDomainID(id string) Option {
	return func(s *MemoryStore) { s.defaultDomainID = id }
}

// WithDefaultLimit overrides the default query result cap.
func WithDefaultLimit(limit int64) Option {
	return func(s *MemoryStore) { s.defaultLimit = limit }
}

// WithClock overrides the wall-clock millisecond source. Used by tests to
// make insert and domain timestamps deterministic.
func WithClock(now func() int64) Option {
	return func(s *MemoryStore) { s.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *MemoryStore) { s.log = log }
}

// NewMemoryStore creates an empty store. All indices live for the lifetime
// of the store; the only terminal transition is Stop.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		entities: NewTreeMap(EntityKey.Compare, func(e *model.Entity) EntityKey {
			return EntityKey{ID: e.ID, Type: e.Type}
		}),
		insertTimes:     NewHashMap[EntityKey, int64](),
		domainsByID:     NewHashMap[string, *model.Domain](),
		domainsByOwner:  NewHashMap[string, map[string]*model.Domain](),
		defaultDomainID: DefaultDomainID,
		defaultLimit:    DefaultLimit,
		now:             func() int64 { return time.Now().UnixMilli() },
		log:             slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stop transitions the store into its terminal state. Afterwards reads
// return empty results and writes fail with an I/O error; the transition is
// one-way and observed atomically by all callers.
func (s *MemoryStore) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Stopped reports whether Stop has been called.
func (s *MemoryStore) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// PutDomain creates or replaces an access-control domain. The created time
// is fixed at the first write for an id; the modified time is refreshed on
// every write. The owner index is keyed by domain id, so replacing a record
// never leaves a stale entry behind, even when the owner changes.
func (s *MemoryStore) PutDomain(domain *model.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.log.Info("store stopped, rejecting domain put", "domain", domain.ID)
		return ErrStopped
	}

	existing, _ := s.domainsByID.Get(domain.ID)
	now := s.now()
	stored := &model.Domain{
		ID:           domain.ID,
		Description:  domain.Description,
		Owner:        domain.Owner,
		Readers:      domain.Readers,
		Writers:      domain.Writers,
		CreatedTime:  now,
		ModifiedTime: now,
	}
	if existing != nil {
		stored.CreatedTime = existing.CreatedTime
		if existing.Owner != stored.Owner {
			if owned, ok := s.domainsByOwner.Get(existing.Owner); ok {
				delete(owned, existing.ID)
			}
		}
	}
	s.domainsByID.Put(stored.ID, stored)

	owned, ok := s.domainsByOwner.Get(stored.Owner)
	if !ok {
		owned = make(map[string]*model.Domain)
		s.domainsByOwner.Put(stored.Owner, owned)
	}
	owned[stored.ID] = stored
	return nil
}

// GetDomain returns a copy of the domain with the given id, or nil if the
// domain does not exist or the store is stopped.
func (s *MemoryStore) GetDomain(domainID string) *model.Domain {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.log.Info("store stopped, returning nil domain")
		return nil
	}
	domain, ok := s.domainsByID.Get(domainID)
	if !ok {
		return nil
	}
	return domain.Clone()
}

// ACLDomainLookup returns a domain lookup intended for use inside an
// injected ACL predicate. The predicate runs while the store's lock is
// already held, so this lookup reads the domain index directly instead of
// reacquiring the lock. It is not safe to call from anywhere else.
func (s *MemoryStore) ACLDomainLookup() func(domainID string) *model.Domain {
	return func(domainID string) *model.Domain {
		domain, ok := s.domainsByID.Get(domainID)
		if !ok {
			return nil
		}
		return domain.Clone()
	}
}

// GetDomains returns copies of all domains belonging to the owner, newest
// first: created time descending, ties broken by modified time descending.
func (s *MemoryStore) GetDomains(owner string) *model.DomainList {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.log.Info("store stopped, returning nil domains")
		return nil
	}
	list := &model.DomainList{Domains: []*model.Domain{}}
	owned, ok := s.domainsByOwner.Get(owner)
	if !ok {
		return list
	}
	for _, domain := range owned {
		list.Domains = append(list.Domains, domain.Clone())
	}
	sort.SliceStable(list.Domains, func(i, j int) bool {
		a, b := list.Domains[i], list.Domains[j]
		if a.CreatedTime != b.CreatedTime {
			return a.CreatedTime > b.CreatedTime
		}
		return a.ModifiedTime > b.ModifiedTime
	})
	return list
}
