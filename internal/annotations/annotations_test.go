package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "organizr.expectedbehaviors.com/enabled", Key(Enabled))
	assert.Equal(t, "organizr.expectedbehaviors.com/url-local", Key(URLLocal))
}

func TestGet_TrimsWhitespace(t *testing.T) {
	ann := map[string]string{Key(Name): "  Movie Manager  "}
	assert.Equal(t, "Movie Manager", Get(ann, Name))
	assert.Empty(t, Get(ann, URL))
	assert.Empty(t, Get(nil, Name))
}

func TestIsEnabled(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"True", true},
		{"TRUE", true},
		{" true ", true},
		{"false", false},
		{"yes", false},
		{"1", false},
		{"", false},
	}

	for _, test := range tests {
		ann := map[string]string{Key(Enabled): test.value}
		assert.Equal(t, test.expected, IsEnabled(ann), "value %q", test.value)
	}

	assert.False(t, IsEnabled(nil))
	assert.False(t, IsEnabled(map[string]string{}))
}

func TestBool(t *testing.T) {
	tests := []struct {
		value    string
		def      bool
		expected bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"YES", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", true, true},
	}

	for _, test := range tests {
		ann := map[string]string{Key(Splash): test.value}
		assert.Equal(t, test.expected, Bool(ann, Splash, test.def), "value %q default %v", test.value, test.def)
	}
}

func TestInt(t *testing.T) {
	t.Run("parses valid integer", func(t *testing.T) {
		ann := map[string]string{Key(GroupID): "2"}
		n, ok := Int(ann, GroupID, 1)
		assert.True(t, ok)
		assert.Equal(t, 2, n)
	})

	t.Run("absent yields default without error", func(t *testing.T) {
		n, ok := Int(map[string]string{}, GroupID, 1)
		assert.True(t, ok)
		assert.Equal(t, 1, n)
	})

	t.Run("malformed yields default and false", func(t *testing.T) {
		ann := map[string]string{Key(Order): "third"}
		n, ok := Int(ann, Order, 0)
		assert.False(t, ok)
		assert.Equal(t, 0, n)
	})
}
