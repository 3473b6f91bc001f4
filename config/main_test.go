package config

import (
	"fmt"
	"os"
	"testing"
)

// TestMain runs before all tests in the config package. It ensures GO_ENV
// is set to "test" so that a stray DATABASE_URL from a developer shell can
// never point config tests at a real database.
func TestMain(m *testing.M) {
	if env := os.Getenv("GO_ENV"); env != "test" {
		fmt.Fprintf(os.Stderr,
			"SAFETY CHECK FAILED: config tests must run with GO_ENV=test (current: %q).\n"+
				"Run them with: GO_ENV=test go test ./...\n", env)
		os.Exit(1)
	}

	os.Exit(m.Run())
}
