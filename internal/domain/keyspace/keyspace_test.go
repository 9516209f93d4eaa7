package keyspace

import (
	"encoding/json"
	"testing"

	"github.com/corey/tagreport/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entry builds a ports.Entry with a JSON-encoded value.
func entry(t *testing.T, key string, value any) ports.Entry {
	t.Helper()
	raw, err := json.Marshal(value)
	require.NoError(t, err)
	return ports.Entry{Key: key, Value: raw}
}

func store(entries ...ports.Entry) *ports.RawStore {
	return &ports.RawStore{Entries: entries}
}

func TestDecode_Basic(t *testing.T) {
	s := store(
		entry(t, "tag:t1", "Music"),
		entry(t, "tag:t2", "Sports"),
		entry(t, "user:u1:name", "alice"),
		entry(t, "user:u1:atags", []string{"t1:1.0", "t2:0.5"}),
		entry(t, "user:u1:ptags", []string{"t2:0.4"}),
	)

	d, err := Decode(s, LastWriteWins)
	require.NoError(t, err)

	assert.Equal(t, []TagRule{{ID: "t1", Name: "Music"}, {ID: "t2", Name: "Sports"}}, d.Tags)
	require.Contains(t, d.Users, "u1")
	u := d.Users["u1"]
	assert.Equal(t, "alice", u.Name)
	assert.Equal(t, []string{"t1:1.0", "t2:0.5"}, u.Atags)
	assert.Equal(t, []string{"t2:0.4"}, u.Ptags)
	assert.Empty(t, d.Skipped)
}

func TestDecode_MissingTagListsDefaultEmpty(t *testing.T) {
	d, err := Decode(store(entry(t, "user:u1:name", "bob")), LastWriteWins)
	require.NoError(t, err)

	u := d.Users["u1"]
	require.NotNil(t, u)
	assert.NotNil(t, u.Atags)
	assert.NotNil(t, u.Ptags)
	assert.Empty(t, u.Atags)
	assert.Empty(t, u.Ptags)
}

func TestDecode_TagsBeforeName(t *testing.T) {
	// Attribute order in the store does not matter.
	d, err := Decode(store(
		entry(t, "user:u1:atags", []string{"x"}),
		entry(t, "user:u1:name", "carol"),
	), LastWriteWins)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, d.Users["u1"].Atags)
}

func TestDecode_UserWithoutNameIgnored(t *testing.T) {
	d, err := Decode(store(entry(t, "user:u9:atags", []string{"t1"})), LastWriteWins)
	require.NoError(t, err)
	assert.Empty(t, d.Users)
}

func TestDecode_IgnoresOtherNamespaces(t *testing.T) {
	d, err := Decode(store(
		entry(t, "post:p1:tags", []string{"t1"}),
		entry(t, "index:users", []string{"u1"}),
		entry(t, "tag", "no id"),
		entry(t, "user:u1", "too short"),
	), LastWriteWins)
	require.NoError(t, err)
	assert.Empty(t, d.Tags)
	assert.Empty(t, d.Users)
	assert.Empty(t, d.Skipped)
}

func TestDecode_TagIDIsSecondSegment(t *testing.T) {
	d, err := Decode(store(entry(t, "tag:t1:extra", "Music")), LastWriteWins)
	require.NoError(t, err)
	assert.Equal(t, []TagRule{{ID: "t1", Name: "Music"}}, d.Tags)
}

func TestDecode_SkipsUnusableValues(t *testing.T) {
	d, err := Decode(store(
		entry(t, "tag:t1", 42),
		entry(t, "user:u1:name", []string{"not", "a", "string"}),
		entry(t, "user:u2:name", "dave"),
		entry(t, "user:u2:atags", "t1"),
		entry(t, "user:u2:ptags", nil),
	), LastWriteWins)
	require.NoError(t, err)

	assert.Empty(t, d.Tags)
	assert.NotContains(t, d.Users, "u1")
	require.Contains(t, d.Users, "u2")
	assert.Empty(t, d.Users["u2"].Atags)
	assert.Empty(t, d.Users["u2"].Ptags)

	keys := make([]string, 0, len(d.Skipped))
	for _, s := range d.Skipped {
		keys = append(keys, s.Key)
	}
	assert.ElementsMatch(t, []string{"tag:t1", "user:u1:name", "user:u2:atags", "user:u2:ptags"}, keys)
}

func TestDecode_NonStringListMembersDropped(t *testing.T) {
	d, err := Decode(store(
		entry(t, "user:u1:name", "erin"),
		entry(t, "user:u1:atags", []any{"t1", 3, nil, "t2"}),
	), LastWriteWins)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, d.Users["u1"].Atags)
}

func TestDecode_LastWriteWins(t *testing.T) {
	d, err := Decode(store(
		entry(t, "tag:t1", "Old"),
		entry(t, "tag:t2", "Sports"),
		entry(t, "tag:t1", "New"),
		entry(t, "user:u1:name", "first"),
		entry(t, "user:u1:name", "second"),
	), LastWriteWins)
	require.NoError(t, err)

	// t1 keeps its first-seen position with the last value.
	assert.Equal(t, []TagRule{{ID: "t1", Name: "New"}, {ID: "t2", Name: "Sports"}}, d.Tags)
	assert.Equal(t, "second", d.Users["u1"].Name)
	assert.Equal(t, 2, d.Duplicates)
}

func TestDecode_StrictRejectsDuplicates(t *testing.T) {
	_, err := Decode(store(
		entry(t, "tag:t1", "Old"),
		entry(t, "tag:t1", "New"),
	), Strict)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "tag:t1")
}

func TestDecode_NilStore(t *testing.T) {
	d, err := Decode(nil, LastWriteWins)
	require.NoError(t, err)
	assert.Empty(t, d.Users)
	assert.Empty(t, d.Tags)
}

func TestUserIDs_Sorted(t *testing.T) {
	d, err := Decode(store(
		entry(t, "user:u3:name", "c"),
		entry(t, "user:u1:name", "a"),
		entry(t, "user:u10:name", "b"),
	), LastWriteWins)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u10", "u3"}, d.UserIDs())
}

func TestParseMergePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MergePolicy
		wantErr bool
	}{
		{"", LastWriteWins, false},
		{"last_write_wins", LastWriteWins, false},
		{" strict ", Strict, false},
		{"first_wins", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMergePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
