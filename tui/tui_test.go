package tui

import (
	"os"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestProfileFromEnv(t *testing.T) {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		t.Skip("NO_COLOR is set in the test environment")
	}
	tests := []struct {
		name    string
		env     map[string]string
		want    termenv.Profile
		changed bool
	}{
		{name: "nothing set", env: map[string]string{}, want: termenv.Ascii, changed: false},
		{name: "explicit 256", env: map[string]string{ColorEnv: "256"}, want: termenv.ANSI256, changed: true},
		{name: "explicit none beats force", env: map[string]string{ColorEnv: "none", "CLICOLOR_FORCE": "1"}, want: termenv.Ascii, changed: true},
		{name: "force", env: map[string]string{"CLICOLOR_FORCE": "1"}, want: termenv.TrueColor, changed: true},
		{name: "colorterm", env: map[string]string{"COLORTERM": "truecolor"}, want: termenv.TrueColor, changed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{ColorEnv, "CLICOLOR_FORCE", "COLORTERM"} {
				t.Setenv(key, tt.env[key])
			}
			got, changed := profileFromEnv()
			assert.Equal(t, tt.changed, changed)
			if changed {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
