package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme("dark") })

	SetTheme("light")
	assert.Equal(t, "light", Current())
	assert.Equal(t, Light.Bg, CBg)
	assert.Equal(t, Light.Accent2, CAccent2)

	SetTheme("solarized")
	assert.Equal(t, "dark", Current())
	assert.Equal(t, Dark.Bg, CBg)
	assert.Equal(t, Dark.Text, CText)
}

func TestKeyKeepsLabel(t *testing.T) {
	assert.Contains(t, Key("Esc"), "Esc")
}
