package gpu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/seyud/gpugov/internal/file"
)

// fixtureRoot builds a temporary rootfs with the given nodes and redirects
// the file package at it for the duration of the test.
func fixtureRoot(t *testing.T, nodes map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range nodes {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := file.SetRoot(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { file.SetRoot("/") })

	return dir
}

func readNode(t *testing.T, dir, name string) string {
	t.Helper()

	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
