package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewThemeWithName(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"kanagawa", []string{"kanagawa", "plain"}},
		{"Terminal", []string{"terminal", "plain"}},
		{"no_color", []string{"plain"}},
		{"unknown", []string{"kanagawa", "plain"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			th := NewThemeWithName(tt.input)
			// Without a color-capable terminal every name renders plain.
			assert.Contains(t, tt.want, th.Name)
		})
	}
}

func TestRenderStatusKeepsText(t *testing.T) {
	for _, status := range []string{"success", "error", "warning", "info", "other"} {
		assert.Contains(t, RenderStatus(status, "hello"), "hello")
	}
}

func TestSetIcons(t *testing.T) {
	t.Cleanup(func() { SetIcons(false) })

	SetIcons(true)
	assert.Equal(t, asciiIconLive, IconLive)
	assert.Contains(t, RenderLiveness(true), "live")
	assert.Contains(t, RenderLiveness(false), "dead")

	SetIcons(false)
	assert.Equal(t, nerdIconLive, IconLive)
}
