package testsupport

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/goliatone/go-cache-convergence/convergence"
	"github.com/goliatone/go-cache-convergence/refresh"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t *testing.T, path string, dest interface{}) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// Processed builds a pending update acknowledging target, processed and
// cached at the given times.
func Processed(target convergence.Target, processedAt, cachedAt time.Time) refresh.PendingUpdate {
	return refresh.PendingUpdate{
		Details:     target.Fields(),
		ProcessedAt: processedAt,
		CachedAt:    cachedAt,
	}
}

// InFlight builds a pending update acknowledging target that has not been
// processed yet.
func InFlight(target convergence.Target, cachedAt time.Time) refresh.PendingUpdate {
	return refresh.PendingUpdate{
		Details:  target.Fields(),
		CachedAt: cachedAt,
	}
}
