package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tablesort/internal/config"
	"github.com/JonMunkholm/tablesort/internal/store"
	"github.com/JonMunkholm/tablesort/internal/widget"
)

const sizesTable = `<table>
<thead><tr><th>Name</th><th>Size</th></tr></thead>
<tbody>
<tr class="foswikiTableEven"><td>alpha</td><td>4.9GB</td></tr>
<tr class="foswikiTableOdd"><td>beta</td><td>1 KB</td></tr>
<tr class="foswikiTableEven"><td>gamma</td><td>10 MB</td></tr>
</tbody>
</table>`

const pricesBody = `{
	"rows": [["Widget", "1,234.56"], ["Gadget", "12,50"], ["Doohickey", "$99,00"]],
	"order": [{"column": 1, "dir": "DESC"}]
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	cfg.Rate.Enabled = false
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *store.MemoryStore) {
	t.Helper()
	profiles := store.NewMemoryStore()
	srv, err := NewServer(cfg, profiles)
	require.NoError(t, err)
	return srv, profiles
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.10:5000"
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, code, resp.Code)
	assert.NotEmpty(t, resp.Message)
}

// ----------------------------------------------------------------------------
// Server Tests
// ----------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, contentSecurityPolicy, rec.Header().Get("Content-Security-Policy"))
}

func TestSecurityHeaders_CSPDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.EnableCSP = false
	srv, _ := newTestServer(t, cfg)

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := do(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tablesort_rate_limited_total")
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	srv, _ := newTestServer(t, cfg)

	rec := do(t, srv, http.MethodGet, "/api/kinds", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/kinds", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health checks need no key")
}

func TestRateLimited(t *testing.T) {
	cfg := testConfig(t)
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 1}
	srv, _ := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, srv, http.MethodGet, "/healthz", "").Code)
}

func TestNewServer_InvalidProxy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.TrustedProxies = []string{"proxy.local"}
	_, err := NewServer(cfg, store.NewMemoryStore())
	assert.Error(t, err)
}

// ----------------------------------------------------------------------------
// Kinds and Defaults Tests
// ----------------------------------------------------------------------------

func TestKinds(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := do(t, srv, http.MethodGet, "/api/kinds", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[map[string][]string](t, rec)
	assert.Equal(t, []string{"date-foswiki", "currency", "formatted-number", "metric", "num", "string"}, resp["kinds"])
	assert.Len(t, resp["funcs"], 18)
	assert.Equal(t, "date-foswiki-pre", resp["funcs"][0])
}

func TestDefaults(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := do(t, srv, http.MethodGet, "/api/defaults?scroller=true&buttons=copy,%20csv", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[widget.Settings](t, rec)
	assert.Equal(t, widget.Layout(widget.Options{Scroller: true, Buttons: []string{"copy"}}), resp.Dom)
	assert.Equal(t, []string{"copy", "csv"}, resp.Buttons)
	assert.Equal(t, 1000, resp.SearchDelay)
}

func TestDefaults_Profile(t *testing.T) {
	srv, profiles := newTestServer(t, testConfig(t))
	_, err := profiles.Put(context.Background(), store.Profile{
		Name:    "wiki",
		Options: widget.Options{SearchMode: widget.SearchMulti, DateTimeFormat: "DD.MM.YYYY"},
	})
	require.NoError(t, err)

	rec := do(t, srv, http.MethodGet, "/api/defaults?profile=wiki", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[widget.Settings](t, rec)
	assert.Contains(t, resp.ContainerClasses, widget.SearchMultiClass)
	assert.Equal(t, "DD.MM.YYYY", resp.DateTimeFormat)
}

func TestDefaults_Invalid(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	assertErrorCode(t, do(t, srv, http.MethodGet, "/api/defaults?searchMode=fuzzy", ""),
		http.StatusBadRequest, "OPTION_INVALID")
	assertErrorCode(t, do(t, srv, http.MethodGet, "/api/defaults?scroller=maybe", ""),
		http.StatusBadRequest, "REQUEST_INVALID")
	assertErrorCode(t, do(t, srv, http.MethodGet, "/api/defaults?profile=missing", ""),
		http.StatusNotFound, "PROFILE_NOT_FOUND")
}

// ----------------------------------------------------------------------------
// Classify Tests
// ----------------------------------------------------------------------------

type classifyResult struct {
	Values []struct {
		Kind string   `json:"kind"`
		Key  *float64 `json:"key"`
	} `json:"values"`
	Kind string `json:"kind"`
}

func TestClassify(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := do(t, srv, http.MethodPost, "/api/classify", `{"values": ["1,234.56", "12,50"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[classifyResult](t, rec)
	assert.Equal(t, "currency", resp.Kind)
	require.Len(t, resp.Values, 2)
	assert.Equal(t, "currency", resp.Values[0].Kind)
	require.NotNil(t, resp.Values[0].Key)
	assert.InDelta(t, 1234.56, *resp.Values[0].Key, 1e-9)
	assert.InDelta(t, 12.5, *resp.Values[1].Key, 1e-9)
}

func TestClassify_DateFormat(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := do(t, srv, http.MethodPost, "/api/classify",
		`{"values": ["2024-01-05", ""], "dateTimeFormat": "YYYY-MM-DD"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[classifyResult](t, rec)
	assert.Equal(t, "moment-YYYY-MM-DD", resp.Kind)
	require.NotNil(t, resp.Values[0].Key)
	assert.Equal(t, float64(1704412800000), *resp.Values[0].Key)
	assert.Nil(t, resp.Values[1].Key, "blank dates sort last and have no finite key")
}

func TestClassify_Profile(t *testing.T) {
	srv, profiles := newTestServer(t, testConfig(t))
	_, err := profiles.Put(context.Background(), store.Profile{
		Name:    "german",
		Options: widget.Options{DateTimeFormat: "DD.MM.YYYY"},
	})
	require.NoError(t, err)

	rec := do(t, srv, http.MethodPost, "/api/classify",
		`{"values": ["05.01.2024"], "profile": "german"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[classifyResult](t, rec)
	assert.Equal(t, "moment-DD.MM.YYYY", resp.Kind)
	require.NotNil(t, resp.Values[0].Key)
	assert.Equal(t, float64(1704412800000), *resp.Values[0].Key)
}

func TestClassify_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sorting.SampleSize = 2
	srv, _ := newTestServer(t, cfg)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"too many values", `{"values": ["1", "2", "3"]}`, http.StatusRequestEntityTooLarge, "REQUEST_TOO_MANY"},
		{"unsupported format", `{"values": ["1"], "dateTimeFormat": "Q YYYY"}`, http.StatusBadRequest, "DATE_FORMAT_UNSUPPORTED"},
		{"unknown locale", `{"values": ["1"], "dateTimeFormat": "YYYY", "dateTimeLocale": "xx"}`, http.StatusBadRequest, "LOCALE_UNKNOWN"},
		{"malformed", `{"values": [`, http.StatusBadRequest, "REQUEST_INVALID"},
		{"unknown field", `{"cells": []}`, http.StatusBadRequest, "REQUEST_INVALID"},
		{"unknown profile", `{"values": ["1"], "profile": "missing"}`, http.StatusNotFound, "PROFILE_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertErrorCode(t, do(t, srv, http.MethodPost, "/api/classify", tt.body), tt.status, tt.code)
		})
	}
}

// ----------------------------------------------------------------------------
// Sort Tests
// ----------------------------------------------------------------------------

type sortResult struct {
	Rows   [][]any           `json:"rows"`
	Perm   []int             `json:"perm"`
	Kinds  map[string]string `json:"kinds"`
	Styles []widget.Style    `json:"styles"`
}

func TestSort(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := do(t, srv, http.MethodPost, "/api/sort", pricesBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[sortResult](t, rec)
	assert.Equal(t, []int{0, 2, 1}, resp.Perm)
	assert.Equal(t, map[string]string{"1": "currency"}, resp.Kinds)
	assert.Equal(t, "Widget", resp.Rows[0][0])
	assert.Equal(t, "Gadget", resp.Rows[2][0])
	assert.Nil(t, resp.Styles)
}

func TestSort_ProfileRules(t *testing.T) {
	srv, profiles := newTestServer(t, testConfig(t))
	_, err := profiles.Put(context.Background(), store.Profile{
		Name: "shop",
		Options: widget.Options{
			RowClass: `data["Price"] == "12,50" ? "cheap" : ""`,
			RowCss:   `index == 0 ? "red" : ""`,
		},
	})
	require.NoError(t, err)

	body := `{
		"rows": [["Widget", "1,234.56"], ["Gadget", "12,50"], ["Doohickey", "$99,00"]],
		"order": [{"column": 1, "dir": "desc"}],
		"profile": "shop",
		"columns": ["Name", "Price"]
	}`
	rec := do(t, srv, http.MethodPost, "/api/sort", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[sortResult](t, rec)
	require.Len(t, resp.Styles, 3)
	assert.Equal(t, map[string]string{"background-color": "red"}, resp.Styles[0].CSS)
	assert.Empty(t, resp.Styles[1].Class)
	assert.Equal(t, "cheap", resp.Styles[2].Class)
}

func TestSort_RuleFailureLeavesRowUnstyled(t *testing.T) {
	srv, profiles := newTestServer(t, testConfig(t))
	_, err := profiles.Put(context.Background(), store.Profile{
		Name:    "broken",
		Options: widget.Options{RowClass: `data["Missing"]`},
	})
	require.NoError(t, err)

	rec := do(t, srv, http.MethodPost, "/api/sort",
		`{"rows": [["a"], ["b"]], "order": [{"column": 0}], "profile": "broken"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[sortResult](t, rec)
	require.Len(t, resp.Styles, 2)
	assert.True(t, resp.Styles[0].IsZero())
}

func TestSort_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sorting.MaxRows = 3
	srv, _ := newTestServer(t, cfg)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"column range", `{"rows": [["a"]], "order": [{"column": 5}]}`, http.StatusBadRequest, "COLUMN_RANGE"},
		{"unknown profile", `{"rows": [], "profile": "nope"}`, http.StatusNotFound, "PROFILE_NOT_FOUND"},
		{"too many rows", `{"rows": [["a"], ["b"], ["c"], ["d"]]}`, http.StatusRequestEntityTooLarge, "REQUEST_TOO_MANY"},
		{"object cell", `{"rows": [[{"a": 1}]]}`, http.StatusBadRequest, "REQUEST_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertErrorCode(t, do(t, srv, http.MethodPost, "/api/sort", tt.body), tt.status, tt.code)
		})
	}
}

func TestSort_BodyTooLarge(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.MaxBodyBytes = 16
	srv, _ := newTestServer(t, cfg)

	assertErrorCode(t, do(t, srv, http.MethodPost, "/api/sort", pricesBody),
		http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE")
}

func TestSortHTML(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := do(t, srv, http.MethodPost, "/api/sort/html?column=size", sizesTable)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	out := rec.Body.String()
	assert.Less(t, strings.Index(out, "beta"), strings.Index(out, "gamma"))
	assert.Less(t, strings.Index(out, "gamma"), strings.Index(out, "alpha"))
	assert.Contains(t, out, "<th>Name</th>")
}

func TestSortHTML_ProfileStyles(t *testing.T) {
	srv, profiles := newTestServer(t, testConfig(t))
	_, err := profiles.Put(context.Background(), store.Profile{
		Name:    "sizes",
		Options: widget.Options{RowCss: `data["Name"] == "gamma" ? "yellow" : ""`},
	})
	require.NoError(t, err)

	rec := do(t, srv, http.MethodPost, "/api/sort/html?column=Size&dir=desc&profile=sizes", sizesTable)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `style="background-color: yellow"`)
}

func TestSortHTML_Errors(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"missing column", "/api/sort/html", sizesTable, http.StatusBadRequest, "REQUEST_INVALID"},
		{"unknown column", "/api/sort/html?column=Weight", sizesTable, http.StatusBadRequest, "COLUMN_UNKNOWN"},
		{"no table", "/api/sort/html?column=Size", "<p>no table</p>", http.StatusBadRequest, "HTML_NO_TABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertErrorCode(t, do(t, srv, http.MethodPost, tt.target, tt.body), tt.status, tt.code)
		})
	}
}

// ----------------------------------------------------------------------------
// Profile Tests
// ----------------------------------------------------------------------------

func TestProfiles_CRUD(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := do(t, srv, http.MethodPut, "/api/profiles/wiki",
		`{"dateTimeFormat": "DD.MM.YYYY", "searchMode": "MULTI"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[store.Profile](t, rec)
	assert.Equal(t, "wiki", created.Name)
	assert.Equal(t, widget.SearchMulti, created.Options.SearchMode)

	rec = do(t, srv, http.MethodGet, "/api/profiles/wiki", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[store.Profile](t, rec).ID)

	rec = do(t, srv, http.MethodGet, "/api/profiles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string][]store.Profile](t, rec)["profiles"], 1)

	rec = do(t, srv, http.MethodDelete, "/api/profiles/wiki", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assertErrorCode(t, do(t, srv, http.MethodGet, "/api/profiles/wiki", ""),
		http.StatusNotFound, "PROFILE_NOT_FOUND")
	assertErrorCode(t, do(t, srv, http.MethodDelete, "/api/profiles/wiki", ""),
		http.StatusNotFound, "PROFILE_NOT_FOUND")
}

func TestProfiles_EmptyList(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := do(t, srv, http.MethodGet, "/api/profiles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"profiles": []}`, rec.Body.String())
}

func TestProfiles_PutErrors(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	assertErrorCode(t, do(t, srv, http.MethodPut, "/api/profiles/-wiki", `{}`),
		http.StatusBadRequest, "PROFILE_INVALID_NAME")
	assertErrorCode(t, do(t, srv, http.MethodPut, "/api/profiles/wiki", `{"rowClass": "1 + 1"}`),
		http.StatusBadRequest, "RULE_INVALID")
	assertErrorCode(t, do(t, srv, http.MethodPut, "/api/profiles/wiki", `{"pageLength": -1}`),
		http.StatusBadRequest, "OPTION_INVALID")
}
