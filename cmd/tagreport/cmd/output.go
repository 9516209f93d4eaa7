package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/corey/tagreport/internal/app"
	"github.com/corey/tagreport/internal/domain/accuracy"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// paint wraps s in an ANSI color unless colors are disabled.
func paint(color, s string) string {
	if noColor {
		return s
	}
	return color + s + colorReset
}

// formatAnalyze summarises an analyze pass.
//
//	⚡ analysis.json │ 3 users, 12 tag rules from 40 entries │ 2ms
//	  ⚠ 1 skipped, 1 name collision
func formatAnalyze(res *app.AnalyzeResult, output string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s │ %d users, %d tag rules from %d entries │ %s\n",
		paint(colorBold, "⚡ "+output),
		res.Users, res.TagRules, res.Entries,
		paint(colorGray, formatElapsed(res.Elapsed)))

	var warns []string
	if n := len(res.Skipped); n > 0 {
		warns = append(warns, fmt.Sprintf("%d skipped", n))
	}
	if n := len(res.Collisions); n > 0 {
		warns = append(warns, plural(n, "name collision", "name collisions"))
	}
	if len(warns) > 0 {
		fmt.Fprintf(&b, "  %s\n", paint(colorYellow, "⚠ "+strings.Join(warns, ", ")))
	}
	return b.String()
}

// formatScore renders the accuracy line. With verbose, one line per scored
// user precedes it.
//
//	  alice    total=+0.4000  tags=3  accuracy=87%
//	ptags_accuracy=87%
func formatScore(res *accuracy.Result, verbose bool) string {
	var b strings.Builder
	if verbose {
		width := 0
		for _, u := range res.Users {
			if len(u.Name) > width {
				width = len(u.Name)
			}
		}
		for _, u := range res.Users {
			fmt.Fprintf(&b, "  %-*s  total=%+.4f  tags=%d  accuracy=%d%%\n",
				width, u.Name, u.Total, u.Tags, accuracy.Percent(u.Accuracy()))
		}
		if res.Skipped > 0 {
			fmt.Fprintf(&b, "  %s\n", paint(colorGray, plural(res.Skipped, "sentinel entry skipped", "sentinel entries skipped")))
		}
	}
	fmt.Fprintf(&b, "ptags_accuracy=%d%%\n", res.Percent())
	return b.String()
}

func formatElapsed(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// ok marks a successful step.
func ok(msg string) string {
	return paint(colorGreen, "✓ ") + msg
}
