// Package acl builds the read-side access predicates injected into the
// timeline store. An entity is readable when its domain is the default
// domain, the caller owns the domain, or the domain's readers spec admits
// the caller.
package acl

import (
	"strings"

	"github.com/chroniclehq/chronicle/internal/store"
	"github.com/chroniclehq/chronicle/pkg/model"
)

// DomainLookup resolves a domain id to its record, or nil if unknown.
type DomainLookup func(id string) *model.Domain

// Checker evaluates domain read access for callers.
type Checker struct {
	lookup          DomainLookup
	defaultDomainID string
}

// NewChecker creates a checker over the given domain lookup. For predicates
// handed to the store's entity scan, the lookup must be one that is safe to
// call while the store's lock is held.
func NewChecker(lookup DomainLookup, defaultDomainID string) *Checker {
	return &Checker{lookup: lookup, defaultDomainID: defaultDomainID}
}

// ReadCheck returns the per-query predicate for one caller. Domain
// decisions are cached for the lifetime of the predicate, so a scan
// touching many entities of the same domain resolves it once.
func (c *Checker) ReadCheck(caller string) store.CheckACL {
	decisions := make(map[string]bool)
	return func(entity *model.Entity) bool {
		domainID := entity.DomainID
		if domainID == "" || domainID == c.defaultDomainID {
			return true
		}
		if allowed, ok := decisions[domainID]; ok {
			return allowed
		}
		allowed := c.allows(caller, domainID)
		decisions[domainID] = allowed
		return allowed
	}
}

// Readable reports whether the caller may read entities of one domain.
func (c *Checker) Readable(caller, domainID string) bool {
	if domainID == "" || domainID == c.defaultDomainID {
		return true
	}
	return c.allows(caller, domainID)
}

func (c *Checker) allows(caller, domainID string) bool {
	domain := c.lookup(domainID)
	if domain == nil {
		// An entity pointing at a domain that was never written is not
		// readable by anyone.
		return false
	}
	if caller == "" {
		return false
	}
	if domain.Owner == caller {
		return true
	}
	return specAdmits(domain.Readers, caller)
}

// specAdmits evaluates a readers/writers spec: "*" admits everyone,
// otherwise the spec is a comma- or space-separated user list.
func specAdmits(spec, user string) bool {
	spec = strings.TrimSpace(spec)
	if spec == "*" {
		return true
	}
	for _, name := range strings.FieldsFunc(spec, func(r rune) bool {
		return r == ' ' || r == ','
	}) {
		if name == user {
			return true
		}
	}
	return false
}
