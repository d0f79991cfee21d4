package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expectedbehaviors/organizr-tab-controller/pkg/tabs"
)

func desiredRadarr() tabs.Tab {
	return tabs.Tab{
		Name:      "Radarr",
		URL:       "https://radarr.example.com",
		LocalURL:  "http://radarr.media.svc.cluster.local:7878",
		PingURL:   "radarr.media:7878",
		Image:     "plugins/images/tabs/radarr.png",
		Type:      tabs.TypeIframe,
		GroupID:   1,
		Active:    true,
		Ping:      true,
		ManagedBy: "media/ingress/radarr",
	}
}

func actualFromDesired(id int, desired tabs.Tab) tabs.Tab {
	actual := desired
	actual.ID = id
	actual.ManagedBy = ""
	return actual
}

func TestDiff_CreateNewTab(t *testing.T) {
	actions := Diff([]tabs.Tab{desiredRadarr()}, nil, tabs.PolicyUpsert)

	require.Len(t, actions.Create, 1)
	assert.Equal(t, "Radarr", actions.Create[0].Name)
	assert.Zero(t, actions.Create[0].ID)
	assert.Empty(t, actions.Update)
	assert.Empty(t, actions.Delete)
	assert.False(t, actions.Empty())
}

func TestDiff_NoChangesNeeded(t *testing.T) {
	desired := desiredRadarr()
	actual := actualFromDesired(1, desired)

	actions := Diff([]tabs.Tab{desired}, []tabs.Tab{actual}, tabs.PolicyUpsert)

	assert.True(t, actions.Empty())
}

func TestDiff_Idempotence(t *testing.T) {
	// Reflecting the first pass's creates back into the actual set (with
	// IDs assigned) must make the second pass a no-op.
	desired := []tabs.Tab{desiredRadarr()}

	first := Diff(desired, nil, tabs.PolicySync)
	require.Len(t, first.Create, 1)

	actual := make([]tabs.Tab, 0, len(first.Create))
	for i, created := range first.Create {
		actual = append(actual, actualFromDesired(i+1, created))
	}

	second := Diff(desired, actual, tabs.PolicySync)
	assert.True(t, second.Empty())
}

func TestDiff_UpdateOnContentChange(t *testing.T) {
	desired := desiredRadarr()
	desired.Type = tabs.TypeNewWindow

	actual := actualFromDesired(1, desiredRadarr())

	actions := Diff([]tabs.Tab{desired}, []tabs.Tab{actual}, tabs.PolicyUpsert)

	require.Len(t, actions.Update, 1)
	assert.Equal(t, 1, actions.Update[0].ID)
	assert.Equal(t, tabs.TypeNewWindow, actions.Update[0].Type)
	assert.Empty(t, actions.Create)
	assert.Empty(t, actions.Delete)
}

func TestDiff_UpdatePreservesActualOrder(t *testing.T) {
	desired := desiredRadarr()
	desired.Type = tabs.TypeNewWindow // force an update

	actual := actualFromDesired(1, desiredRadarr())
	actual.Order = 4

	actions := Diff([]tabs.Tab{desired}, []tabs.Tab{actual}, tabs.PolicyUpsert)

	require.Len(t, actions.Update, 1)
	assert.Equal(t, 4, actions.Update[0].Order, "unset desired order is backfilled from actual")
}

func TestDiff_UpdateKeepsExplicitDesiredOrder(t *testing.T) {
	desired := desiredRadarr()
	desired.Type = tabs.TypeNewWindow
	desired.Order = 2

	actual := actualFromDesired(1, desiredRadarr())
	actual.Order = 4

	actions := Diff([]tabs.Tab{desired}, []tabs.Tab{actual}, tabs.PolicyUpsert)

	require.Len(t, actions.Update, 1)
	assert.Equal(t, 2, actions.Update[0].Order)
}

func TestDiff_DeleteInSyncMode(t *testing.T) {
	orphan := tabs.Tab{ID: 1, Name: "Orphan", URL: "https://orphan.example.com", Type: tabs.TypeIframe}

	actions := Diff(nil, []tabs.Tab{orphan}, tabs.PolicySync)

	require.Len(t, actions.Delete, 1)
	assert.Equal(t, 1, actions.Delete[0].ID)
}

func TestDiff_NoDeleteInUpsertMode(t *testing.T) {
	orphan := tabs.Tab{ID: 1, Name: "Orphan", URL: "https://orphan.example.com", Type: tabs.TypeIframe}

	actions := Diff(nil, []tabs.Tab{orphan}, tabs.PolicyUpsert)

	assert.Empty(t, actions.Delete)
	assert.True(t, actions.Empty())
}

func TestDiff_InternalTabsNeverDeleted(t *testing.T) {
	homepage := tabs.Tab{ID: 1, Name: "Homepage", URL: "api/v2/page/homepage", Type: tabs.TypeInternal}

	actions := Diff(nil, []tabs.Tab{homepage}, tabs.PolicySync)

	assert.Empty(t, actions.Delete)
}

func TestDiff_MatchByNameFallback(t *testing.T) {
	// URL annotation changed; the old tab no longer matches by URL but
	// does by name, so it is updated in place rather than recreated.
	desired := desiredRadarr()
	desired.URL = "https://new-radarr.example.com"

	actual := actualFromDesired(1, desiredRadarr())
	actual.URL = "https://old-radarr.example.com"

	actions := Diff([]tabs.Tab{desired}, []tabs.Tab{actual}, tabs.PolicyUpsert)

	require.Len(t, actions.Update, 1)
	assert.Equal(t, 1, actions.Update[0].ID)
	assert.Equal(t, "https://new-radarr.example.com", actions.Update[0].URL)
	assert.Empty(t, actions.Create)
}

func TestDiff_NameMatchIsCaseInsensitive(t *testing.T) {
	desired := desiredRadarr()
	desired.URL = "https://new-radarr.example.com"

	actual := actualFromDesired(1, desiredRadarr())
	actual.URL = "https://old-radarr.example.com"
	actual.Name = "RADARR"

	actions := Diff([]tabs.Tab{desired}, []tabs.Tab{actual}, tabs.PolicyUpsert)

	require.Len(t, actions.Update, 1)
	assert.Equal(t, 1, actions.Update[0].ID)
}

func TestDiff_MultipleResources(t *testing.T) {
	radarr := desiredRadarr()
	sonarr := tabs.Tab{
		Name: "Sonarr", URL: "https://sonarr.example.com",
		Type: tabs.TypeIframe, GroupID: 1, Active: true,
	}

	actual := actualFromDesired(1, radarr)

	actions := Diff([]tabs.Tab{radarr, sonarr}, []tabs.Tab{actual}, tabs.PolicyUpsert)

	require.Len(t, actions.Create, 1)
	assert.Equal(t, "Sonarr", actions.Create[0].Name)
	assert.Empty(t, actions.Update)
}

func TestDiff_DuplicateActualsFirstInListOrderWins(t *testing.T) {
	desired := desiredRadarr()
	desired.Type = tabs.TypeNewWindow

	first := actualFromDesired(1, desiredRadarr())
	second := actualFromDesired(2, desiredRadarr())

	actions := Diff([]tabs.Tab{desired}, []tabs.Tab{first, second}, tabs.PolicySync)

	require.Len(t, actions.Update, 1)
	assert.Equal(t, 1, actions.Update[0].ID, "first duplicate in list order is matched")
	// The second duplicate stays unclaimed and is deleted under sync.
	require.Len(t, actions.Delete, 1)
	assert.Equal(t, 2, actions.Delete[0].ID)
}

func TestDiff_Deterministic(t *testing.T) {
	desired := []tabs.Tab{desiredRadarr()}
	actual := []tabs.Tab{actualFromDesired(1, desiredRadarr()), {ID: 2, Name: "Orphan", URL: "https://o.example.com", Type: tabs.TypeIframe}}

	first := Diff(desired, actual, tabs.PolicySync)
	second := Diff(desired, actual, tabs.PolicySync)

	assert.Equal(t, first, second)
}
