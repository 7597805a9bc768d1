package printer

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func newTestPrinter(t *testing.T) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var out, errOut bytes.Buffer
	return New(&out, &errOut), &out, &errOut
}

func TestSuccess_AddsCheckmarkOnce(t *testing.T) {
	p, out, _ := newTestPrinter(t)

	p.Success("seeded %d pets\n", 2)
	p.Success("✓ already prefixed\n")

	assert.Equal(t, "✓ seeded 2 pets\n✓ already prefixed\n", out.String())
}

func TestWarningAndStep(t *testing.T) {
	p, out, _ := newTestPrinter(t)

	p.Warning("no pets\n")
	p.Step("refreshing\n")

	assert.Contains(t, out.String(), "⚠️  no pets\n")
	assert.Contains(t, out.String(), "→ refreshing\n")
}

func TestError_WritesToErrOut(t *testing.T) {
	p, out, errOut := newTestPrinter(t)

	err := p.Error("storage unavailable", "could not open the database", []string{"check DB_DSN", "use STORAGE_DRIVER=memory"})

	assert.EqualError(t, err, "storage unavailable")
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "storage unavailable\n\n")
	assert.Contains(t, errOut.String(), "Either:\n  1. check DB_DSN\n  2. use STORAGE_DRIVER=memory\n")
}

func TestError_SingleSuggestion(t *testing.T) {
	p, _, errOut := newTestPrinter(t)

	_ = p.Error("bad config", "", []string{"run with --config"})

	assert.Equal(t, "bad config\n\n\nrun with --config\n", errOut.String())
}

func TestErrorWithContext_SortedKeys(t *testing.T) {
	p, _, errOut := newTestPrinter(t)

	_ = p.ErrorWithContext("Failed to start", "dial tcp: refused", map[string]string{
		"storage": "postgres",
		"env":     "development",
	}, nil)

	assert.Equal(t, "Failed to start\n\ndial tcp: refused\n\n  env: development\n  storage: postgres\n", errOut.String())
}
