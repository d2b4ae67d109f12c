package runner

import (
	"io"
	"strings"
	"sync"
)

// diagnosisPattern maps a stderr fragment to a short hint.
type diagnosisPattern struct {
	pattern string
	hint    string
}

var diagnosisPatterns = []diagnosisPattern{
	{"command not found", "toolchain not installed"},
	{": not found", "toolchain not installed"},
	{"is not recognized as an internal or external command", "toolchain not installed"},
	{"executable file not found", "toolchain not installed"},
	{"permission denied", "permission denied"},
	{"cannot find module", "missing dependency"},
	{"modulenotfounderror", "missing dependency"},
	{"cannot load such file", "missing dependency"},
	{"no such file or directory", "missing file"},
}

// diagnosisWriter passes stderr through unchanged and remembers the first
// known failure pattern it sees.
type diagnosisWriter struct {
	w    io.Writer
	hint string
	mu   sync.Mutex
}

func newDiagnosisWriter(w io.Writer) *diagnosisWriter {
	return &diagnosisWriter{w: w}
}

func (dw *diagnosisWriter) Write(p []byte) (int, error) {
	n, err := dw.w.Write(p)

	dw.mu.Lock()
	if dw.hint == "" {
		lower := strings.ToLower(string(p))
		for _, dp := range diagnosisPatterns {
			if strings.Contains(lower, dp.pattern) {
				dw.hint = dp.hint
				break
			}
		}
	}
	dw.mu.Unlock()

	return n, err
}

// Hint returns the detected hint, or "" when nothing matched.
func (dw *diagnosisWriter) Hint() string {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return dw.hint
}

// withHint appends a diagnosis hint to a failure message.
func withHint(msg, hint string) string {
	if hint == "" {
		return msg
	}
	return msg + " (" + hint + ")"
}
