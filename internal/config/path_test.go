package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Run("tilde prefix", func(t *testing.T) {
		assert.Equal(t, filepath.Join(home, "data/dengi.db"), ExpandPath("~/data/dengi.db"))
	})

	t.Run("bare tilde", func(t *testing.T) {
		assert.Equal(t, home, ExpandPath("~"))
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("DENGI_TEST_DIR", "/tmp/dengi")
		assert.Equal(t, "/tmp/dengi/db", ExpandPath("$DENGI_TEST_DIR/db"))
	})

	t.Run("plain paths pass through", func(t *testing.T) {
		assert.Equal(t, "/var/lib/dengi.db", ExpandPath("/var/lib/dengi.db"))
		assert.Equal(t, "", ExpandPath(""))
	})
}
