// Package accuracy scores predicted tags (ptags) against actual tags (atags).
//
// For every tag in the union of a user's atags and ptags, with actual weight a
// and predicted weight p (0 when the tag is absent from that side), the
// difference d = |p - a| is subtracted from the running total when a == 0 and
// added otherwise. Accuracy is 1 - total/count. The metric is asymmetric on
// purpose: weight predicted for absent tags lowers the total, so accuracy can
// exceed 1.
package accuracy

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/corey/tagreport/internal/ports"
)

// DefaultSentinel is the aggregate pseudo-user excluded from scoring.
const DefaultSentinel = "popular"

// ErrMalformedTag is returned for a tag without a ":weight" suffix or whose
// weight is not a finite real number.
var ErrMalformedTag = errors.New("malformed tag")

// UserScore is the contribution of one user.
type UserScore struct {
	Name  string
	Total float64
	Tags  int
}

// Accuracy returns the user's own accuracy, 1 when it has no tags.
func (u UserScore) Accuracy() float64 {
	return ratio(u.Total, u.Tags)
}

// Result is the outcome of a scoring pass.
type Result struct {
	Accuracy float64
	Total    float64
	Tags     int
	Users    []UserScore // sorted by name
	Skipped  int         // sentinel entries excluded
}

// Percent returns the accuracy as a percentage rounded half away from zero.
func (r *Result) Percent() int {
	return Percent(r.Accuracy)
}

// Percent converts an accuracy ratio to a rounded integer percentage.
func Percent(accuracy float64) int {
	return int(math.Round(accuracy * 100))
}

// Score computes the ptags accuracy of a report. Entries named sentinel are
// skipped; an empty sentinel disables the exclusion. A report with no
// scoreable tags has accuracy 1.
func Score(report ports.Report, sentinel string) (*Result, error) {
	names := make([]string, 0, len(report))
	for name := range report {
		names = append(names, name)
	}
	sort.Strings(names)

	res := &Result{}
	for _, name := range names {
		if sentinel != "" && name == sentinel {
			res.Skipped++
			continue
		}
		us, err := scoreUser(name, report[name])
		if err != nil {
			return nil, err
		}
		res.Users = append(res.Users, us)
		res.Total += us.Total
		res.Tags += us.Tags
	}
	res.Accuracy = ratio(res.Total, res.Tags)
	return res, nil
}

func scoreUser(name string, rec *ports.UserRecord) (UserScore, error) {
	us := UserScore{Name: name}
	if rec == nil {
		return us, nil
	}
	actual, err := weights(rec.Atags)
	if err != nil {
		return us, fmt.Errorf("user %q atags: %w", name, err)
	}
	predicted, err := weights(rec.Ptags)
	if err != nil {
		return us, fmt.Errorf("user %q ptags: %w", name, err)
	}

	for _, tag := range union(actual, predicted) {
		a, inA := actual[tag]
		p, inP := predicted[tag]
		if !inA && !inP {
			continue
		}
		d := math.Abs(p - a)
		if a == 0 {
			us.Total -= d
		} else {
			us.Total += d
		}
		us.Tags++
	}
	return us, nil
}

// weights parses "<name>:<weight>" tags into a name -> weight map.
// A repeated name keeps its last weight.
func weights(tags []string) (map[string]float64, error) {
	m := make(map[string]float64, len(tags))
	for _, tag := range tags {
		name, w, err := ParseTag(tag)
		if err != nil {
			return nil, err
		}
		m[name] = w
	}
	return m, nil
}

// ParseTag splits a weighted tag on its first colon.
func ParseTag(tag string) (string, float64, error) {
	name, raw, ok := strings.Cut(tag, ":")
	if !ok {
		return "", 0, fmt.Errorf("%w: %q has no weight", ErrMalformedTag, tag)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return "", 0, fmt.Errorf("%w: %q has invalid weight %q", ErrMalformedTag, tag, raw)
	}
	return name, w, nil
}

// union returns the keys of both maps, sorted so summation order is stable.
func union(a, b map[string]float64) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func ratio(total float64, count int) float64 {
	if count == 0 {
		return 1
	}
	return 1 - total/float64(count)
}
