package reload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/paycalc/factory"
	"github.com/warp/paycalc/payroll"
)

func writeSet(t *testing.T, path, name string) {
	t.Helper()
	cs := payroll.Alberta2025()
	cs.Name = name
	data, err := factory.NewConstantSetFactory().MarshalYAML(cs)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	writeSet(t, path, "first")

	var got []string
	w := NewWatcher(path, func(cs payroll.ConstantSet) error { got = append(got, cs.Name); return nil }, nil)

	require.NoError(t, w.Reload())
	assert.Equal(t, []string{"first"}, got)

	// An invalid edit is reported and not delivered.
	require.NoError(t, os.WriteFile(path, []byte("id: [broken"), 0o600))
	assert.Error(t, w.Reload())
	assert.Len(t, got, 1)
}

func TestReload_NonFiniteEditKeepsPreviousSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	writeSet(t, path, "good")

	var got []string
	w := NewWatcher(path, func(cs payroll.ConstantSet) error { got = append(got, cs.Name); return nil }, nil)
	require.NoError(t, w.Reload())

	// GIVEN: an edit that sets the CPP rate to .nan
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	edited := strings.Replace(string(data), "rate: 0.0595", "rate: .nan", 1)
	require.NotEqual(t, string(data), edited)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o600))

	// THEN: the reload fails cleanly and nothing new is delivered
	require.NotPanics(t, func() { err = w.Reload() })
	assert.Error(t, err)
	assert.Equal(t, []string{"good"}, got)
}

func TestReload_ReportsInstallError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	writeSet(t, path, "good")

	w := NewWatcher(path, func(payroll.ConstantSet) error { return errors.New("install failed") }, nil)
	assert.EqualError(t, w.Reload(), "install failed")
}

func TestRun_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rates.yaml")
	writeSet(t, path, "before")

	changes := make(chan string, 8)
	w := NewWatcher(path, func(cs payroll.ConstantSet) error { changes <- cs.Name; return nil }, nil)
	w.Debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Writes to other files in the directory are ignored; keep writing the
	// watched file until the watcher is up and reports the change.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o600))

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
wait:
	for {
		select {
		case name := <-changes:
			assert.Equal(t, "after", name)
			break wait
		case <-tick.C:
			writeSet(t, path, "after")
		case <-deadline:
			t.Fatal("no reload within 5s")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope", "rates.yaml"), func(payroll.ConstantSet) error { return nil }, nil)
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to watch"))
}
