package organizr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expectedbehaviors/organizr-tab-controller/pkg/tabs"
)

func sampleTab() tabs.Tab {
	return tabs.Tab{
		Name:     "Radarr",
		URL:      "https://radarr.example.com",
		LocalURL: "http://radarr.media.svc.cluster.local:7878",
		PingURL:  "radarr.media:7878",
		Image:    "radarr.png",
		Type:     tabs.TypeIframe,
		GroupID:  1,
		Active:   true,
		Ping:     true,
	}
}

func TestListTabs_V2Envelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "bare array",
			body: `[{"id": 5, "name": "Radarr", "url": "https://radarr.example.com"}]`,
			want: 1,
		},
		{
			name: "data envelope",
			body: `{"data": [{"id": 5, "name": "Radarr", "url": "https://radarr.example.com"}]}`,
			want: 1,
		},
		{
			name: "nested tabs key",
			body: `{"data": {"tabs": [{"id": 5, "name": "Radarr", "url": "https://radarr.example.com"}]}}`,
			want: 1,
		},
		{
			name: "unexpected shape yields empty",
			body: `{"message": "hello"}`,
			want: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v2/tabs", r.URL.Path)
				assert.Equal(t, "secret", r.Header.Get("Token"))
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "secret")
			got, err := c.ListTabs(context.Background())
			require.NoError(t, err)
			require.Len(t, got, tc.want)
			if tc.want > 0 {
				assert.Equal(t, 5, got[0].ID)
				assert.Equal(t, "Radarr", got[0].Name)
			}
		})
	}
}

func TestListTabs_TolerantFieldCoercion(t *testing.T) {
	// Some Organizr builds return every numeric as a string and use the
	// legacy tabName field style.
	body := `{"data": [{
		"id": "7",
		"tabName": "Sonarr",
		"tabURL": "https://sonarr.example.com",
		"tabLocalURL": "http://sonarr:8989",
		"tabType": "2",
		"tabGroupID": "3",
		"tabCategoryID": "2",
		"tabOrder": "4",
		"enabled": "1",
		"ping": "0"
	}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, "secret").ListTabs(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	tab := got[0]
	assert.Equal(t, 7, tab.ID)
	assert.Equal(t, "Sonarr", tab.Name)
	assert.Equal(t, "https://sonarr.example.com", tab.URL)
	assert.Equal(t, "http://sonarr:8989", tab.LocalURL)
	assert.Equal(t, tabs.TypeNewWindow, tab.Type)
	assert.Equal(t, 3, tab.GroupID)
	assert.Equal(t, 2, tab.CategoryID)
	assert.Equal(t, 4, tab.Order)
	assert.True(t, tab.Active)
	assert.False(t, tab.Ping)
}

func TestListTabs_UnknownTypeDegradesToIframe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "name": "X", "url": "https://x", "type": 9}]`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, "secret").ListTabs(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tabs.TypeIframe, got[0].Type)
}

func TestCreateTab_V2(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v2/tabs", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{"data": {"id": 42}}`))
	}))
	defer srv.Close()

	created, err := NewClient(srv.URL, "secret").CreateTab(context.Background(), sampleTab())
	require.NoError(t, err)

	assert.Equal(t, 42, created.ID)
	assert.Equal(t, "Radarr", payload["name"])
	assert.Equal(t, float64(1), payload["type"])
	assert.Equal(t, float64(1), payload["enabled"])
	assert.NotContains(t, payload, "id")
	assert.NotContains(t, payload, "order", "unset order must not be sent")
}

func TestUpdateTab_V2(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		w.Write([]byte(`{"data": true}`))
	}))
	defer srv.Close()

	tab := sampleTab()
	tab.ID = 42
	require.NoError(t, NewClient(srv.URL, "secret").UpdateTab(context.Background(), tab))
	assert.Equal(t, "/api/v2/tabs/42", gotPath)
}

func TestUpdateTab_RequiresID(t *testing.T) {
	err := NewClient("http://unused", "secret").UpdateTab(context.Background(), sampleTab())
	assert.Error(t, err)
}

func TestDeleteTab_V2(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Write([]byte(`{"data": true}`))
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, "secret").DeleteTab(context.Background(), 42))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/v2/tabs/42", gotPath)
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "bad token"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "wrong").ListTabs(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "bad token")
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v2/ping", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()
		assert.True(t, NewClient(srv.URL, "secret").HealthCheck(context.Background()))
	})

	t.Run("unreachable", func(t *testing.T) {
		assert.False(t, NewClient("http://127.0.0.1:1", "secret").HealthCheck(context.Background()))
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()
		assert.False(t, NewClient(srv.URL, "secret").HealthCheck(context.Background()))
	})
}

func TestSetToken_AffectsSubsequentRequests(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Token"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "old")
	_, err := c.ListTabs(context.Background())
	require.NoError(t, err)

	c.SetToken("rotated")
	_, err = c.ListTabs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"old", "rotated"}, seen)
}

func TestV1Dialect(t *testing.T) {
	type call struct {
		path string
		form map[string]string
	}
	var calls []call

	tabListBody := `{"data": {"tabs": [{"id": 9, "name": "Radarr", "url": "https://radarr.example.com"}]}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(tabListBody))
			return
		}
		require.NoError(t, r.ParseForm())
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		calls = append(calls, call{path: r.URL.Path, form: form})
		w.Write([]byte(`{"data": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", WithAPIVersion(APIVersionV1))

	t.Run("list uses v1 endpoint", func(t *testing.T) {
		got, err := c.ListTabs(context.Background())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 9, got[0].ID)
	})

	t.Run("create re-lists to recover the ID", func(t *testing.T) {
		calls = nil
		created, err := c.CreateTab(context.Background(), sampleTab())
		require.NoError(t, err)
		assert.Equal(t, 9, created.ID)

		require.Len(t, calls, 1)
		assert.Equal(t, "addNewTab", calls[0].form["data[action]"])
		assert.Equal(t, "Radarr", calls[0].form["data[tabName]"])
		assert.Equal(t, "radarr.media:7878", calls[0].form["data[pingURL]"])
	})

	t.Run("empty optional URLs are sent as null", func(t *testing.T) {
		calls = nil
		tab := sampleTab()
		tab.LocalURL = ""
		tab.PingURL = ""
		_, err := c.CreateTab(context.Background(), tab)
		require.NoError(t, err)

		require.NotEmpty(t, calls)
		assert.Equal(t, "null", calls[0].form["data[tabLocalURL]"])
		assert.Equal(t, "null", calls[0].form["data[pingURL]"])
	})

	t.Run("update sends editTab then changeType", func(t *testing.T) {
		calls = nil
		tab := sampleTab()
		tab.ID = 9
		tab.Type = tabs.TypeNewWindow
		require.NoError(t, c.UpdateTab(context.Background(), tab))

		require.Len(t, calls, 2)
		assert.Equal(t, "editTab", calls[0].form["data[action]"])
		assert.Equal(t, "changeType", calls[1].form["data[action]"])
		assert.Equal(t, "9", calls[1].form["data[id]"])
		assert.Equal(t, "2", calls[1].form["data[tabType]"])
	})

	t.Run("delete sends deleteTab with the ID", func(t *testing.T) {
		calls = nil
		require.NoError(t, c.DeleteTab(context.Background(), 9))

		require.Len(t, calls, 1)
		assert.Equal(t, "deleteTab", calls[0].form["data[action]"])
		assert.Equal(t, "9", calls[0].form["data[id]"])
	})
}
