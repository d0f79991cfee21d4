package icons

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "Radarr", "radarr"},
		{"strips dashes", "home-assistant", "homeassistant"},
		{"strips underscores", "home_assistant", "homeassistant"},
		{"strips dots", "node.red", "nodered"},
		{"empty", "", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Normalize(test.input))
		})
	}
}

func TestResolve(t *testing.T) {
	t.Run("known app", func(t *testing.T) {
		assert.Equal(t, "plugins/images/tabs/radarr.png", Resolve("radarr"))
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, "plugins/images/tabs/radarr.png", Resolve("Radarr"))
	})

	t.Run("dashes and underscores ignored", func(t *testing.T) {
		assert.Equal(t, "plugins/images/tabs/homeassistant.png", Resolve("Home-Assistant"))
		assert.Equal(t, "plugins/images/tabs/homeassistant.png", Resolve("home_assistant"))
	})

	t.Run("uptime kuma variants", func(t *testing.T) {
		assert.Equal(t, "plugins/images/tabs/uptimekuma.png", Resolve("uptime-kuma"))
		assert.Equal(t, "plugins/images/tabs/uptimekuma.png", Resolve("uptimekuma"))
	})

	t.Run("unknown app", func(t *testing.T) {
		assert.Empty(t, Resolve("totally-unknown-app-12345"))
	})

	t.Run("empty string", func(t *testing.T) {
		assert.Empty(t, Resolve(""))
	})

	t.Run("url passthrough", func(t *testing.T) {
		assert.Equal(t, "https://example.com/icon.png", Resolve("https://example.com/icon.png"))
		assert.Equal(t, "http://example.com/icon.png", Resolve("http://example.com/icon.png"))
	})

	t.Run("absolute path passthrough", func(t *testing.T) {
		assert.Equal(t, "/custom/icons/myapp.svg", Resolve("/custom/icons/myapp.svg"))
	})

	t.Run("fontawesome passthrough", func(t *testing.T) {
		assert.Equal(t, "fontawesome::home", Resolve("fontawesome::home"))
	})

	t.Run("common homelab apps covered", func(t *testing.T) {
		apps := []string{
			"sonarr", "radarr", "lidarr", "readarr", "prowlarr", "bazarr",
			"sabnzbd", "qbittorrent", "transmission", "deluge", "nzbget",
			"plex", "jellyfin", "emby",
			"grafana", "portainer", "pihole", "organizr", "ombi", "tautulli",
		}
		for _, app := range apps {
			assert.NotEmpty(t, Resolve(app), "missing icon for %s", app)
		}
	})
}

func TestNormalizeSpec(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		prefix   string
		expected string
	}{
		{"filename only group", "media.png", GroupIconPathPrefix, "plugins/images/groups/media.png"},
		{"filename only category", "apps.png", CategoryIconPathPrefix, "plugins/images/categories/apps.png"},
		{"https url passthrough", "https://example.com/icon.png", GroupIconPathPrefix, "https://example.com/icon.png"},
		{"full path passthrough", "plugins/custom/groups/my.png", GroupIconPathPrefix, "plugins/custom/groups/my.png"},
		{"empty returns empty", "", GroupIconPathPrefix, ""},
		{"whitespace returns empty", "   ", GroupIconPathPrefix, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, NormalizeSpec(test.value, test.prefix))
		})
	}
}

func TestKnown_SortedAndLookup(t *testing.T) {
	names := Known()
	assert.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i], "Known() must be sorted")
	}

	icon, ok := Lookup("radarr")
	assert.True(t, ok)
	assert.Equal(t, "plugins/images/tabs/radarr.png", icon)
}
