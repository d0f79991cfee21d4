package organizr

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/expectedbehaviors/organizr-tab-controller/pkg/icons"
	"github.com/expectedbehaviors/organizr-tab-controller/pkg/logging"
)

// The groups and categories endpoints only exist on the v2 API, and not
// on every Organizr build at that. All lookups here degrade gracefully:
// a missing endpoint yields an empty list and the defaults apply.

func (c *Client) categoriesURL(suffix string) string {
	return c.baseURL + "/api/v2/categories" + suffix
}

func (c *Client) groupsURL(suffix string) string {
	return c.baseURL + "/api/v2/groups" + suffix
}

// ListCategories fetches the tab categories. Returns an empty list when
// the endpoint is unavailable.
func (c *Client) ListCategories(ctx context.Context) []map[string]any {
	return c.listNamed(ctx, c.categoriesURL(""), "categories")
}

// ListGroups fetches the user groups controlling tab visibility. Returns
// an empty list when the endpoint is unavailable.
func (c *Client) ListGroups(ctx context.Context) []map[string]any {
	return c.listNamed(ctx, c.groupsURL(""), "groups")
}

func (c *Client) listNamed(ctx context.Context, url, what string) []map[string]any {
	if c.version != APIVersionV2 {
		return nil
	}
	body, err := c.do(ctx, http.MethodGet, url, nil, "", "list "+what)
	if err != nil {
		logging.Warn(subsystem, "Failed to list %s: %v", what, err)
		return nil
	}
	items, ok := extractList(body, what)
	if !ok {
		return nil
	}
	return items
}

// ResolveGroupID resolves a group name to its ID, case-insensitively.
// Unknown names fall back to group 1, the Organizr default.
func (c *Client) ResolveGroupID(ctx context.Context, name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return 1
	}
	for _, g := range c.ListGroups(ctx) {
		if strings.EqualFold(strings.TrimSpace(strField(g, "name", "group_name")), name) {
			if id := intField(g, 0, "id", "group_id"); id != 0 {
				return id
			}
		}
	}
	logging.Debug(subsystem, "Group %q not found, using default group", name)
	return 1
}

// EnsureCategory resolves a category name to its ID, creating the
// category when it does not exist yet. A non-empty icon is normalized
// and applied when it differs from the current one. Returns zero when
// the category cannot be resolved or created.
func (c *Client) EnsureCategory(ctx context.Context, name, icon string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0
	}

	var normalized string
	if icon != "" {
		normalized = icons.NormalizeSpec(icon, icons.CategoryIconPathPrefix)
	}

	for _, cat := range c.ListCategories(ctx) {
		if !strings.EqualFold(strings.TrimSpace(strField(cat, "name", "category_name")), name) {
			continue
		}
		id := intField(cat, 0, "id", "category_id")
		if id == 0 {
			continue
		}
		if normalized != "" && strField(cat, "image", "icon") != normalized {
			c.updateCategoryIcon(ctx, id, normalized)
		}
		return id
	}

	id, err := c.createCategory(ctx, name, normalized)
	if err != nil {
		logging.Warn(subsystem, "Failed to create category %q: %v", name, err)
		return 0
	}
	if id != 0 {
		logging.Info(subsystem, "Created category %q with ID %d", name, id)
	}
	return id
}

// EnsureGroupIcon updates an existing group's icon. Groups are never
// created; an unknown group name is a no-op.
func (c *Client) EnsureGroupIcon(ctx context.Context, name, icon string) {
	name = strings.TrimSpace(name)
	if name == "" || icon == "" {
		return
	}
	normalized := icons.NormalizeSpec(icon, icons.GroupIconPathPrefix)

	for _, g := range c.ListGroups(ctx) {
		if !strings.EqualFold(strings.TrimSpace(strField(g, "name", "group_name")), name) {
			continue
		}
		id := intField(g, 0, "id", "group_id")
		if id != 0 && strField(g, "image", "icon") != normalized {
			c.updateGroupIcon(ctx, id, normalized)
		}
		return
	}
}

func (c *Client) createCategory(ctx context.Context, name, icon string) (int, error) {
	payload := map[string]any{"name": name}
	if icon != "" {
		payload["image"] = icon
	}
	body, err := c.doJSON(ctx, http.MethodPost, c.categoriesURL(""), payload, "create category")
	if err != nil {
		return 0, err
	}
	if created, ok := extractObject(body); ok {
		return intField(created, 0, "id"), nil
	}
	return 0, nil
}

func (c *Client) updateCategoryIcon(ctx context.Context, id int, icon string) {
	_, err := c.doJSON(ctx, http.MethodPut, c.categoriesURL(fmt.Sprintf("/%d", id)),
		map[string]any{"image": icon}, fmt.Sprintf("update category %d icon", id))
	if err != nil {
		logging.Warn(subsystem, "Failed to update category %d icon: %v", id, err)
	}
}

func (c *Client) updateGroupIcon(ctx context.Context, id int, icon string) {
	_, err := c.doJSON(ctx, http.MethodPut, c.groupsURL(fmt.Sprintf("/%d", id)),
		map[string]any{"image": icon}, fmt.Sprintf("update group %d icon", id))
	if err != nil {
		logging.Warn(subsystem, "Failed to update group %d icon: %v", id, err)
	}
}
