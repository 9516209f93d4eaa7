package report

import (
	"testing"

	"github.com/corey/tagreport/internal/domain/keyspace"
	"github.com/corey/tagreport/internal/domain/resolver"
	"github.com/corey/tagreport/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDecoded() *keyspace.Decoded {
	return &keyspace.Decoded{
		Tags: []keyspace.TagRule{
			{ID: "t1", Name: "Music"},
			{ID: "t2", Name: "Sports"},
		},
		Users: map[string]*keyspace.User{
			"u2": {ID: "u2", Name: "bob", Atags: []string{}, Ptags: []string{}},
			"u1": {
				ID:    "u1",
				Name:  "alice",
				Atags: []string{"t2:0.5", "t1:1.0"},
				Ptags: []string{"t3:0.2", "t1:0.9"},
			},
		},
	}
}

func TestRules_KeepSourceOrder(t *testing.T) {
	rules := Rules(makeDecoded())
	assert.Equal(t, []resolver.Rule{
		{Prefix: "t1", Name: "Music"},
		{Prefix: "t2", Name: "Sports"},
	}, rules)
}

func TestBuild_ResolvesAndSorts(t *testing.T) {
	d := makeDecoded()
	res := Build(d, resolver.New(Rules(d), resolver.PriorityLongest))

	require.Len(t, res.Report, 2)
	alice := res.Report["alice"]
	require.NotNil(t, alice)
	assert.Equal(t, "alice", alice.Name)
	assert.Equal(t, []string{"Music:1.0", "Sports:0.5"}, alice.Atags)
	assert.Equal(t, []string{"Music:0.9", "t3:0.2"}, alice.Ptags)
	assert.Empty(t, res.Collisions)
}

func TestBuild_EmptyTagLists(t *testing.T) {
	d := makeDecoded()
	res := Build(d, resolver.New(Rules(d), resolver.PriorityLongest))

	bob := res.Report["bob"]
	require.NotNil(t, bob)
	assert.NotNil(t, bob.Atags)
	assert.NotNil(t, bob.Ptags)
	assert.Empty(t, bob.Atags)
	assert.Empty(t, bob.Ptags)
}

func TestBuild_NameCollisionLastWriteWins(t *testing.T) {
	d := &keyspace.Decoded{
		Users: map[string]*keyspace.User{
			"u2": {ID: "u2", Name: "sam", Atags: []string{"later"}, Ptags: []string{}},
			"u1": {ID: "u1", Name: "sam", Atags: []string{"earlier"}, Ptags: []string{}},
		},
	}
	res := Build(d, resolver.New(nil, resolver.PriorityLongest))

	require.Len(t, res.Report, 1)
	assert.Equal(t, []string{"later"}, res.Report["sam"].Atags)
	assert.Equal(t, []Collision{{Name: "sam", Replaced: "u1", ReplacedBy: "u2"}}, res.Collisions)
}

func TestBuild_NoUsers(t *testing.T) {
	d := &keyspace.Decoded{Users: map[string]*keyspace.User{}}
	res := Build(d, resolver.New(nil, resolver.PriorityLongest))
	assert.Equal(t, ports.Report{}, res.Report)
}
