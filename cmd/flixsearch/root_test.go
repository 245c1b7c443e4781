package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "flixsearch", cmd.Use)
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		assert.NotEmpty(t, cmd.Short)
		assert.NotEmpty(t, cmd.Long)
		assert.NotEmpty(t, cmd.Version)
	})

	t.Run("has persistent flags", func(t *testing.T) {
		t.Parallel()

		verbose := cmd.PersistentFlags().Lookup("verbose")
		require.NotNil(t, verbose)
		assert.Equal(t, "v", verbose.Shorthand)
		assert.Equal(t, "false", verbose.DefValue)

		cfg := cmd.PersistentFlags().Lookup("config")
		require.NotNil(t, cfg)
		assert.Equal(t, "c", cfg.Shorthand)
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()

		names := make([]string, 0)
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		for _, want := range []string{"search", "serve", "servers", "init", "version"} {
			assert.Contains(t, names, want)
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		assert.True(t, cmd.SilenceUsage)
		assert.True(t, cmd.SilenceErrors)
	})
}
