package acl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chroniclehq/chronicle/pkg/model"
)

func lookupFrom(domains map[string]*model.Domain) DomainLookup {
	return func(id string) *model.Domain {
		return domains[id]
	}
}

func TestReadableDefaultDomain(t *testing.T) {
	checker := NewChecker(lookupFrom(nil), "DEFAULT")

	assert.True(t, checker.Readable("", "DEFAULT"))
	assert.True(t, checker.Readable("", ""))
	assert.False(t, checker.Readable("", "private"))
}

func TestReadableOwnerAndReaders(t *testing.T) {
	checker := NewChecker(lookupFrom(map[string]*model.Domain{
		"team-a": {ID: "team-a", Owner: "alice", Readers: "bob, carol"},
		"public": {ID: "public", Owner: "alice", Readers: "*"},
	}), "DEFAULT")

	assert.True(t, checker.Readable("alice", "team-a"))
	assert.True(t, checker.Readable("bob", "team-a"))
	assert.True(t, checker.Readable("carol", "team-a"))
	assert.False(t, checker.Readable("mallory", "team-a"))
	assert.False(t, checker.Readable("", "team-a"))

	assert.True(t, checker.Readable("anyone", "public"))
	// The wildcard still requires an authenticated caller.
	assert.False(t, checker.Readable("", "public"))
}

func TestReadableUnknownDomainDenied(t *testing.T) {
	checker := NewChecker(lookupFrom(nil), "DEFAULT")
	assert.False(t, checker.Readable("alice", "ghost"))
}

func TestReadCheckCachesDecisions(t *testing.T) {
	lookups := 0
	checker := NewChecker(func(id string) *model.Domain {
		lookups++
		return &model.Domain{ID: id, Owner: "alice"}
	}, "DEFAULT")

	check := checker.ReadCheck("alice")
	for range 5 {
		assert.True(t, check(&model.Entity{ID: "e", Type: "t", DomainID: "team-a"}))
	}
	assert.Equal(t, 1, lookups)

	// A fresh predicate resolves again.
	check = checker.ReadCheck("alice")
	assert.True(t, check(&model.Entity{ID: "e", Type: "t", DomainID: "team-a"}))
	assert.Equal(t, 2, lookups)
}

func TestSpecAdmits(t *testing.T) {
	assert.True(t, specAdmits("*", "anyone"))
	assert.True(t, specAdmits("alice bob", "bob"))
	assert.True(t, specAdmits("alice,bob", "bob"))
	assert.True(t, specAdmits(" alice , bob ", "alice"))
	assert.False(t, specAdmits("alice bob", "carol"))
	assert.False(t, specAdmits("", "alice"))
}
