package mutation

import (
	"os"
	"path/filepath"
	"testing"
)

// writeStub drops an executable shell script named like an engine binary
// into dir, so engine drivers can be exercised without the real tools.
func writeStub(t *testing.T, dir, name, script string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write stub %s: %v", name, err)
	}
}

// stubPath keeps the system shell reachable when PATH is replaced.
func stubPath() string {
	return "/usr/bin:/bin"
}
