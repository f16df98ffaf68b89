// Package progress prints human-readable progress lines for split and
// restore operations. A Reporter's methods match the engine's
// notification hook signatures, so the CLI just plugs one in.
package progress

import (
	"fmt"
	"time"
)

// Reporter throttles progress output so a fast operation does not
// flood the terminal. It is not safe for concurrent use; each
// operation gets its own Reporter.
type Reporter struct {
	start       time.Time
	lastOutput  time.Time
	lastPercent float64
}

func NewReporter() *Reporter {
	now := time.Now()
	return &Reporter{start: now, lastOutput: now}
}

// Update is the engine's progress hook. It prints at most a few lines
// per second, plus one line on completion.
func (r *Reporter) Update(done, total uint64) {
	percent := 100.0
	if total > 0 {
		percent = float64(done) / float64(total) * 100
	}

	completed := percent >= 100 && r.lastPercent < 100
	if !completed && time.Since(r.lastOutput) < time.Second && percent-r.lastPercent < 10 {
		return
	}
	r.lastOutput = time.Now()
	r.lastPercent = percent

	if total > 0 {
		fmt.Printf("  %s of %s (%.1f%%)\n", FormatSize(done), FormatSize(total), percent)
	} else {
		fmt.Printf("  %s\n", FormatSize(done))
	}
}

// Say is the engine's message hook.
func (r *Reporter) Say(text string) {
	fmt.Println(text)
}

// FormatSize returns a human-readable byte count, e.g. "1.5 MiB".
func FormatSize(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
