package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GITIX_TEST_DIR", "logs")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "tilde", in: "~/gitix.log", want: filepath.Join(home, "gitix.log")},
		{name: "bare tilde", in: "~", want: home},
		{name: "env", in: "/tmp/$GITIX_TEST_DIR/debug.log", want: "/tmp/logs/debug.log"},
		{name: "tilde user untouched", in: "~other/x", want: "~other/x"},
		{name: "plain", in: "relative/path", want: "relative/path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
