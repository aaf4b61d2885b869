package cli

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/qntmpulse/pulse/internal/config"
)

func TestSelectLevel(t *testing.T) {
	tests := []struct {
		name       string
		verbose    bool
		quiet      bool
		configured string
		want       zerolog.Level
	}{
		{name: "default is info", want: zerolog.InfoLevel},
		{name: "configured level applies", configured: "debug", want: zerolog.DebugLevel},
		{name: "configured error level", configured: "error", want: zerolog.ErrorLevel},
		{name: "verbose flag wins over config", verbose: true, configured: "error", want: zerolog.DebugLevel},
		{name: "quiet flag wins over config", quiet: true, configured: "debug", want: zerolog.WarnLevel},
		{name: "unparseable level falls back to info", configured: "loud", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectLevel(tt.verbose, tt.quiet, tt.configured))
		})
	}
}

func TestRotationLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulse.log")

	t.Run("configured rotation values apply", func(t *testing.T) {
		lj := newRotationLogger(path, config.LoggingConfig{MaxSizeMB: 25, MaxBackups: 7})
		assert.Equal(t, path, lj.Filename)
		assert.Equal(t, 25, lj.MaxSize)
		assert.Equal(t, 7, lj.MaxBackups)
	})

	t.Run("zero values fall back to defaults", func(t *testing.T) {
		def := config.DefaultConfig().Logging
		lj := newRotationLogger(path, config.LoggingConfig{})
		assert.Equal(t, def.MaxSizeMB, lj.MaxSize)
		assert.Equal(t, def.MaxBackups, lj.MaxBackups)
	})
}
