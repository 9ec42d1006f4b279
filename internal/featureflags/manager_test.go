package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("sign_up=on,post_images=off,a=true,b=false,c=1,d=0")

	for _, name := range []string{"sign_up", "a", "c"} {
		assert.True(t, m.Enabled(name, 1), name)
	}
	for _, name := range []string{"post_images", "b", "d", "missing"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
}

func TestEnabled_IsCaseInsensitive(t *testing.T) {
	m := NewManager(" Sign_Up = ON ")
	assert.True(t, m.Enabled("SIGN_UP", 0))
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,post_images=25%,broken=abc%")

	assert.True(t, m.Enabled("always", 1))
	assert.True(t, m.Enabled("always", 0))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("broken", 1))

	first := m.Enabled("post_images", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("post_images", 42), "rollout must be deterministic per user")
	}

	assert.False(t, m.Enabled("post_images", 0), "partial rollout requires a user")
}

func TestEnabled_PercentageSpreadsUsers(t *testing.T) {
	m := NewManager("post_images=50%")
	enabled := 0
	for id := uint(1); id <= 1000; id++ {
		if m.Enabled("post_images", id) {
			enabled++
		}
	}
	assert.InDelta(t, 500, enabled, 100)
}

func TestWithDefaults(t *testing.T) {
	m := NewManager("post_images=off").WithDefaults(map[string]string{
		"sign_up":     "on",
		"post_images": "on",
	})

	assert.True(t, m.Enabled("sign_up", 0))
	assert.False(t, m.Enabled("post_images", 1), "configured value wins over default")
	assert.Equal(t, []string{"post_images", "sign_up"}, m.Names())
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off,=on,w= ")

	assert.Equal(t, []string{"x", "y", "z"}, m.Names())

	snap := m.Snapshot(123)
	assert.Len(t, snap, 3)
	assert.True(t, snap["x"])
	assert.False(t, snap["z"])
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled("sign_up", 1))
}
