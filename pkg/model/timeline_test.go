package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chroniclehq/chronicle/pkg/model"
)

func i64(v int64) *int64 { return &v }

func TestSortEvents(t *testing.T) {
	events := []model.Event{
		{Timestamp: 10, Type: "b"},
		{Timestamp: 30, Type: "a"},
		{Timestamp: 10, Type: "a"},
		{Timestamp: 20, Type: "c"},
	}
	model.SortEvents(events)

	assert.Equal(t, int64(30), events[0].Timestamp)
	assert.Equal(t, int64(20), events[1].Timestamp)
	// Equal timestamps order by event type.
	assert.Equal(t, "a", events[2].Type)
	assert.Equal(t, "b", events[3].Type)
}

func TestEntityCompare(t *testing.T) {
	entities := []*model.Entity{
		{ID: "2", Type: "app", StartTime: i64(10)},
		{ID: "1", Type: "container", StartTime: i64(99)},
		{ID: "1", Type: "app", StartTime: i64(5)},
		{ID: "1", Type: "app", StartTime: i64(50)},
	}
	model.SortEntities(entities)

	assert.Equal(t, "app", entities[0].Type)
	assert.Equal(t, "1", entities[0].ID)
	// Same type and id order by start time descending.
	assert.Equal(t, int64(50), *entities[0].StartTime)
	assert.Equal(t, int64(5), *entities[1].StartTime)
	assert.Equal(t, "2", entities[2].ID)
	assert.Equal(t, "container", entities[3].Type)
}

func TestAddRelatedEntityIsSetLike(t *testing.T) {
	e := &model.Entity{}
	e.AddRelatedEntity("app", "a")
	e.AddRelatedEntity("app", "a")
	e.AddRelatedEntity("app", "b")

	assert.Equal(t, []string{"a", "b"}, e.RelatedEntities["app"])
}

func TestAddPrimaryFilterIsSetLike(t *testing.T) {
	e := &model.Entity{}
	e.AddPrimaryFilter("user", "alice")
	e.AddPrimaryFilter("user", "alice")
	e.AddPrimaryFilter("user", int32(7))

	assert.Equal(t, []any{"alice", int32(7)}, e.PrimaryFilters["user"])
	assert.True(t, e.MatchPrimaryFilter(model.NameValue{Name: "user", Value: int32(7)}))
	assert.False(t, e.MatchPrimaryFilter(model.NameValue{Name: "user", Value: "bob"}))
	assert.False(t, e.MatchPrimaryFilter(model.NameValue{Name: "group", Value: "alice"}))
}

func TestParseFields(t *testing.T) {
	fields, err := model.ParseFields("EVENTS, other_info")
	require.NoError(t, err)
	assert.True(t, fields.Has(model.FieldEvents))
	assert.True(t, fields.Has(model.FieldOtherInfo))
	assert.False(t, fields.Has(model.FieldPrimaryFilters))

	fields, err = model.ParseFields("LASTEVENTONLY")
	require.NoError(t, err)
	assert.True(t, fields.Has(model.FieldLastEventOnly))

	fields, err = model.ParseFields("")
	require.NoError(t, err)
	assert.Zero(t, fields)

	_, err = model.ParseFields("bogus")
	assert.Error(t, err)
}

func TestCloneEventsIsDeep(t *testing.T) {
	events := []model.Event{{Timestamp: 1, Type: "x", Info: map[string]any{"k": "v"}}}
	cloned := model.CloneEvents(events)
	cloned[0].Info["k"] = "mutated"

	assert.Equal(t, "v", events[0].Info["k"])
}
