package icons

import (
	"sort"
	"strings"
)

// Organizr ships its built-in tab images under plugins/images/tabs/ and also
// recognises fontawesome::<icon-name> references. The mapping below covers
// the most common homelab apps; keys are normalized app names.
var iconMap = map[string]string{
	// *arr suite
	"bazarr":   "plugins/images/tabs/bazarr.png",
	"lidarr":   "plugins/images/tabs/lidarr.png",
	"prowlarr": "plugins/images/tabs/prowlarr.png",
	"radarr":   "plugins/images/tabs/radarr.png",
	"readarr":  "plugins/images/tabs/readarr.png",
	"sonarr":   "plugins/images/tabs/sonarr.png",
	"whisparr": "plugins/images/tabs/whisparr.png",
	// Download clients
	"deluge":       "plugins/images/tabs/deluge.png",
	"nzbget":       "plugins/images/tabs/nzbget.png",
	"qbittorrent":  "plugins/images/tabs/qbittorrent.png",
	"rtorrent":     "plugins/images/tabs/rtorrent.png",
	"rutorrent":    "plugins/images/tabs/rutorrent.png",
	"sabnzbd":      "plugins/images/tabs/sabnzbd.png",
	"transmission": "plugins/images/tabs/transmission.png",
	// Media servers
	"emby":     "plugins/images/tabs/emby.png",
	"jellyfin": "plugins/images/tabs/jellyfin.png",
	"plex":     "plugins/images/tabs/plex.png",
	// Media management
	"calibre":    "plugins/images/tabs/calibre.png",
	"calibreweb": "plugins/images/tabs/calibreweb.png",
	"kavita":     "plugins/images/tabs/kavita.png",
	"komga":      "plugins/images/tabs/komga.png",
	"mylar":      "plugins/images/tabs/mylar.png",
	"ombi":       "plugins/images/tabs/ombi.png",
	"overseerr":  "plugins/images/tabs/overseerr.png",
	"petio":      "plugins/images/tabs/petio.png",
	"tautulli":   "plugins/images/tabs/tautulli.png",
	// Home automation
	"homeassistant": "plugins/images/tabs/homeassistant.png",
	"nodered":       "plugins/images/tabs/nodered.png",
	// Infrastructure / admin
	"grafana":   "plugins/images/tabs/grafana.png",
	"portainer": "plugins/images/tabs/portainer.png",
	"proxmox":   "plugins/images/tabs/proxmox.png",
	"unraid":    "plugins/images/tabs/unraid.png",
	"truenas":   "plugins/images/tabs/truenas.png",
	// Networking / DNS
	"pihole":  "plugins/images/tabs/pihole.png",
	"adguard": "plugins/images/tabs/adguard.png",
	"nginx":   "plugins/images/tabs/nginx.png",
	"traefik": "plugins/images/tabs/traefik.png",
	"unifi":   "plugins/images/tabs/unifi.png",
	// Dashboards
	"organizr": "plugins/images/tabs/organizr.png",
	"heimdall": "plugins/images/tabs/heimdall.png",
	"homepage": "plugins/images/tabs/homepage.png",
	// Development
	"gitea":   "plugins/images/tabs/gitea.png",
	"gitlab":  "plugins/images/tabs/gitlab.png",
	"jenkins": "plugins/images/tabs/jenkins.png",
	// Storage
	"minio":     "plugins/images/tabs/minio.png",
	"nextcloud": "plugins/images/tabs/nextcloud.png",
	"syncthing": "plugins/images/tabs/syncthing.png",
	// Misc
	"bitwarden":      "plugins/images/tabs/bitwarden.png",
	"vaultwarden":    "plugins/images/tabs/vaultwarden.png",
	"bookstack":      "plugins/images/tabs/bookstack.png",
	"duplicati":      "plugins/images/tabs/duplicati.png",
	"filebrowser":    "plugins/images/tabs/filebrowser.png",
	"gaps":           "plugins/images/tabs/gaps.png",
	"guacamole":      "plugins/images/tabs/guacamole.png",
	"jackett":        "plugins/images/tabs/jackett.png",
	"monica":         "plugins/images/tabs/monica.png",
	"netdata":        "plugins/images/tabs/netdata.png",
	"nzbhydra":       "plugins/images/tabs/nzbhydra.png",
	"requestrr":      "plugins/images/tabs/requestrr.png",
	"speedtest":      "plugins/images/tabs/speedtest.png",
	"tdarr":          "plugins/images/tabs/tdarr.png",
	"uptimekuma":     "plugins/images/tabs/uptimekuma.png",
	"watchtower":     "plugins/images/tabs/watchtower.png",
	"audiobookshelf": "plugins/images/tabs/audiobookshelf.png",
	"immich":         "plugins/images/tabs/immich.png",
	"longhorn":       "plugins/images/tabs/longhorn.png",
	// FontAwesome fallbacks for very common concepts
	"settings": "fontawesome::cog",
	"home":     "fontawesome::home",
	"search":   "fontawesome::search",
	"music":    "fontawesome::music",
	"video":    "fontawesome::video",
	"download": "fontawesome::download",
}

// Default path prefixes for group and category icons when only a filename
// is given in an annotation.
const (
	GroupIconPathPrefix    = "plugins/images/groups/"
	CategoryIconPathPrefix = "plugins/images/categories/"
)

// Normalize lowercases an app name and strips every character outside
// [a-z0-9], so "Home-Assistant", "home_assistant" and "homeassistant" all
// compare equal.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Resolve returns the Organizr image string for an app name, or "" when
// nothing matches.
//
// Values that are already fully specified pass through verbatim: http(s)
// URLs, absolute paths, and fontawesome:: references. Everything else is
// normalized and looked up in the built-in icon table.
func Resolve(appName string) string {
	if appName == "" {
		return ""
	}

	if strings.HasPrefix(appName, "http://") ||
		strings.HasPrefix(appName, "https://") ||
		strings.HasPrefix(appName, "/") {
		return appName
	}

	if strings.HasPrefix(appName, "fontawesome::") {
		return appName
	}

	return iconMap[Normalize(appName)]
}

// NormalizeSpec completes a group or category icon annotation to a full
// path or URL.
//
//   - empty value: returns ""
//   - http(s) URL: returned as-is
//   - contains "/": treated as a full path, returned as-is
//   - otherwise: treated as a bare filename and joined onto pathPrefix
//     (e.g. "media.png" -> "plugins/images/groups/media.png")
func NormalizeSpec(value, pathPrefix string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
		return v
	}
	if strings.Contains(v, "/") {
		return v
	}
	return strings.TrimSuffix(pathPrefix, "/") + "/" + v
}

// Known returns the normalized names of every icon in the built-in table,
// sorted, with their image strings. Used by the icons CLI command.
func Known() []string {
	names := make([]string, 0, len(iconMap))
	for name := range iconMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the image string for an already-normalized name.
func Lookup(normalized string) (string, bool) {
	icon, ok := iconMap[normalized]
	return icon, ok
}
