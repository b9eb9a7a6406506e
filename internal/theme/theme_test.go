package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTheme(t *testing.T) {
	assert.Equal(t, Nord(), GetTheme(NordName))
	assert.Equal(t, Light(), GetTheme(LightName))
	assert.Equal(t, Dracula(), GetTheme(""))
	assert.Equal(t, Dracula(), GetTheme("no-such-theme"))
}

func TestAvailableThemes(t *testing.T) {
	assert.Equal(t, []string{"dracula", "light", "nord"}, AvailableThemes())
	for _, name := range AvailableThemes() {
		assert.True(t, IsKnown(name))
	}
	assert.False(t, IsKnown("solarized"))
}
