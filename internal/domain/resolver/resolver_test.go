package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_PrefixSubstitution(t *testing.T) {
	r := New([]Rule{{"t1", "Music"}, {"t2", "Sports"}}, PriorityInsertion)
	assert.Equal(t, "Music_rock", r.Resolve("t1_rock"))
	assert.Equal(t, "Sports", r.Resolve("t2"))
}

func TestResolve_NoMatchPassThrough(t *testing.T) {
	r := New([]Rule{{"t1", "Music"}, {"t2", "Sports"}}, PriorityLongest)
	assert.Equal(t, "t3_other", r.Resolve("t3_other"))
	assert.Equal(t, "", r.Resolve(""))
}

func TestResolve_OnlyLeadingOccurrence(t *testing.T) {
	r := New([]Rule{{"ab", "X"}}, PriorityLongest)
	assert.Equal(t, "X_ab_ab", r.Resolve("ab_ab_ab"))
}

func TestResolve_NotAPrefix(t *testing.T) {
	r := New([]Rule{{"t1", "Music"}}, PriorityLongest)
	assert.Equal(t, "xt1", r.Resolve("xt1"))
}

func TestResolve_WeightSuffixKept(t *testing.T) {
	r := New([]Rule{{"42", "jazz"}}, PriorityLongest)
	assert.Equal(t, "jazz:0.75", r.Resolve("42:0.75"))
}

func TestResolve_PriorityLongest(t *testing.T) {
	// "t1" is listed first but "t10" is more specific.
	r := New([]Rule{{"t1", "One"}, {"t10", "Ten"}}, PriorityLongest)
	assert.Equal(t, "Ten:1", r.Resolve("t10:1"))
	assert.Equal(t, "One:1", r.Resolve("t1:1"))
}

func TestResolve_PriorityInsertion(t *testing.T) {
	// First match wins in source order, even when a longer prefix exists.
	r := New([]Rule{{"t1", "One"}, {"t10", "Ten"}}, PriorityInsertion)
	assert.Equal(t, "One0:1", r.Resolve("t10:1"))

	r = New([]Rule{{"t10", "Ten"}, {"t1", "One"}}, PriorityInsertion)
	assert.Equal(t, "Ten:1", r.Resolve("t10:1"))
}

func TestResolve_EmptyPrefix(t *testing.T) {
	// Longest: the empty prefix only applies when nothing else matches.
	r := New([]Rule{{"", "any-"}, {"t1", "One"}}, PriorityLongest)
	assert.Equal(t, "One", r.Resolve("t1"))
	assert.Equal(t, "any-zz", r.Resolve("zz"))

	// Insertion: an earlier empty prefix shadows every later rule.
	r = New([]Rule{{"", "any-"}, {"t1", "One"}}, PriorityInsertion)
	assert.Equal(t, "any-t1", r.Resolve("t1"))
}

func TestNew_DoesNotMutateRules(t *testing.T) {
	in := []Rule{{"a", "A"}, {"abc", "ABC"}, {"ab", "AB"}}
	r := New(in, PriorityLongest)
	assert.Equal(t, "ABC-x", r.Resolve("abc-x"))
	assert.Equal(t, "AB-x", r.Resolve("ab-x"))
	assert.Equal(t, []Rule{{"a", "A"}, {"abc", "ABC"}, {"ab", "AB"}}, in)

	r = New(in, PriorityInsertion)
	assert.Equal(t, "Abc-x", r.Resolve("abc-x"))
}

func TestResolveAll_Sorted(t *testing.T) {
	r := New([]Rule{{"t1", "Music"}, {"t2", "Sports"}}, PriorityLongest)
	assert.Equal(t, []string{"Music", "Sports"}, r.ResolveAll([]string{"t2", "t1"}))

	empty := r.ResolveAll(nil)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityLongest, p)

	p, err = ParsePriority("insertion")
	require.NoError(t, err)
	assert.Equal(t, PriorityInsertion, p)

	_, err = ParsePriority("random")
	assert.Error(t, err)
}
