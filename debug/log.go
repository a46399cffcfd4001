// Package debug is a category-tagged trace log. The TUI owns the
// terminal, so nothing may print to stdout while it runs.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// sink is where lines go. A nil w means logging is off.
type sink struct {
	w    io.Writer
	file *os.File // set when w is the log file, synced per line
}

var (
	mu       sync.Mutex
	cur      sink
	counters = map[string]int{}
)

// LogPath returns ~/.config/go-arp/debug.log
func LogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-arp", "debug.log"), nil
}

// Enable starts debug logging to LogPath, truncating the previous run
func Enable() error {
	mu.Lock()
	on := cur.w != nil
	mu.Unlock()
	if on {
		return nil
	}

	path, err := LogPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("debug log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("debug log: %w", err)
	}
	swap(sink{w: f, file: f})
	Log("debug", "=== go-arp debug log ===")
	return nil
}

// SetOutput sends log lines to w instead of the log file. A nil w turns
// logging off.
func SetOutput(w io.Writer) {
	swap(sink{w: w})
}

// Disable stops debug logging
func Disable() {
	swap(sink{})
}

func swap(next sink) {
	mu.Lock()
	prev := cur
	cur = next
	mu.Unlock()
	if prev.file != nil {
		prev.file.Close()
	}
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if cur.w == nil {
		return
	}
	fmt.Fprintf(cur.w, "[%s] %-10s %s\n",
		time.Now().Format("15:04:05.000"), category, fmt.Sprintf(format, args...))
	if cur.file != nil {
		cur.file.Sync()
	}
}

// LogEvery logs only every n-th call with the same category and format.
// Meant for per-block and per-poll noise.
func LogEvery(n int, category, format string, args ...any) {
	n = max(n, 1)
	key := category + "\x00" + format
	mu.Lock()
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
