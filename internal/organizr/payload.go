package organizr

import (
	"net/url"
	"strconv"

	"github.com/expectedbehaviors/organizr-tab-controller/pkg/tabs"
)

// v2Payload serializes a tab into the JSON body the v2 API expects.
// Order and ID are omitted when unset so the server keeps its own values.
func v2Payload(tab tabs.Tab) map[string]any {
	payload := map[string]any{
		"name":        tab.Name,
		"url":         tab.URL,
		"url_local":   tab.LocalURL,
		"ping_url":    tab.PingURL,
		"image":       tab.Image,
		"type":        int(tab.Type),
		"group_id":    tab.GroupID,
		"category_id": tab.CategoryID,
		"default":     boolInt(tab.Default),
		"enabled":     boolInt(tab.Active),
		"splash":      boolInt(tab.Splash),
		"ping":        boolInt(tab.Ping),
		"preload":     boolInt(tab.Preload),
	}
	if tab.Order != 0 {
		payload["order"] = tab.Order
	}
	if tab.ID != 0 {
		payload["id"] = tab.ID
	}
	return payload
}

// v1Payload serializes a tab into the legacy data[...] form fields. The
// action is one of addNewTab, editTab, or changeType.
func v1Payload(tab tabs.Tab, action string) url.Values {
	form := url.Values{}
	form.Set("data[action]", action)
	form.Set("data[tabName]", tab.Name)
	form.Set("data[tabURL]", tab.URL)
	form.Set("data[tabLocalURL]", orNull(tab.LocalURL))
	form.Set("data[pingURL]", orNull(tab.PingURL))
	form.Set("data[tabImage]", tab.Image)
	form.Set("data[tabType]", strconv.Itoa(int(tab.Type)))
	form.Set("data[tabGroupID]", strconv.Itoa(tab.GroupID))
	form.Set("data[tabCategoryID]", strconv.Itoa(tab.CategoryID))
	form.Set("data[default]", boolField(tab.Default))
	form.Set("data[enabled]", boolField(tab.Active))
	form.Set("data[splash]", boolField(tab.Splash))
	form.Set("data[ping]", boolField(tab.Ping))
	form.Set("data[preload]", boolField(tab.Preload))
	if tab.Order != 0 {
		form.Set("data[tabOrder]", strconv.Itoa(tab.Order))
	}
	if tab.ID != 0 {
		form.Set("data[id]", strconv.Itoa(tab.ID))
	}
	return form
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// The v1 endpoint treats an empty local/ping URL as the literal string
// "null" rather than an empty field.
func orNull(s string) string {
	if s == "" {
		return "null"
	}
	return s
}

// parseTab decodes one raw API tab object into the Tab model. The API
// is inconsistent across Organizr versions: numerics arrive as ints or
// strings, booleans as 0/1, and field names vary between snake_case and
// the legacy tabName style. Unknown tab type codes degrade to iframe.
func parseTab(raw map[string]any) tabs.Tab {
	typeCode := intField(raw, 1, "type", "tab_type", "tabType")
	tabType := tabs.TabType(typeCode)
	switch tabType {
	case tabs.TypeInternal, tabs.TypeIframe, tabs.TypeNewWindow:
	default:
		tabType = tabs.TypeIframe
	}

	return tabs.Tab{
		ID:         intField(raw, 0, "id"),
		Name:       strField(raw, "name", "tab_name", "tabName"),
		URL:        strField(raw, "url", "tab_url", "tabURL"),
		LocalURL:   strField(raw, "url_local", "tabLocalURL"),
		PingURL:    strField(raw, "ping_url", "pingURL"),
		Image:      strField(raw, "image", "tab_image", "tabImage"),
		Type:       tabType,
		GroupID:    intField(raw, 1, "group_id", "tabGroupID"),
		CategoryID: intField(raw, 0, "category_id", "tabCategoryID"),
		Order:      intField(raw, 0, "order", "tab_order", "tabOrder"),
		Default:    intField(raw, 0, "default") == 1,
		Active:     intField(raw, 1, "enabled", "active") == 1,
		Splash:     intField(raw, 0, "splash") == 1,
		Ping:       intField(raw, 1, "ping") == 1,
		Preload:    intField(raw, 0, "preload") == 1,
	}
}

// intField returns the first present key coerced to int, falling back to
// def when the key is absent or not numeric.
func intField(raw map[string]any, def int, keys ...string) int {
	for _, key := range keys {
		val, ok := raw[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case float64:
			return int(v)
		case int:
			return v
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		case bool:
			return boolInt(v)
		}
		return def
	}
	return def
}

func strField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if val, ok := raw[key]; ok {
			if s, ok := val.(string); ok {
				return s
			}
		}
	}
	return ""
}
