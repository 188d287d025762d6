package server_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formguard/internal/formsource"
	"github.com/goliatone/go-formguard/internal/server"
	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/testsupport"
)

const wechatIPhone = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148 MicroMessenger/8.0.40"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	markup, err := os.ReadFile(testsupport.FixturePath(testsupport.SignupPage))
	require.NoError(t, err)

	catalog := formsource.NewCatalog()
	require.NoError(t, catalog.Add(formsource.Page{ID: "signup", Title: "Meetup signup", Markup: markup}))

	srv, err := server.New(server.Options{
		Catalog: catalog,
		Logger:  log.New(io.Discard),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestServer_Health(t *testing.T) {
	ts := newServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK\n", readBody(t, resp))
}

func TestServer_ServesStylesheet(t *testing.T) {
	ts := newServer(t)

	resp, err := http.Get(ts.URL + "/assets/formguard.css")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), ".error-message")
}

func TestServer_IndexListsForms(t *testing.T) {
	ts := newServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/forms/signup"`)
	assert.Contains(t, body, "Meetup signup")
}

func TestServer_PageAdaptsToUserAgent(t *testing.T) {
	ts := newServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/forms/signup", nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", wechatIPhone)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := dom.ParseString(body)
	require.NoError(t, err)
	bodyNode := doc.Body()
	for _, class := range []string{"mobile-device", "wechat-browser", "ios-device"} {
		assert.True(t, dom.HasClass(bodyNode, class), "expected body class %s", class)
	}
	assert.NotNil(t, doc.FindOne("//meta[@name='viewport']"))
	assert.NotNil(t, doc.FindOne("//img[contains(@class,'qr-code')]"), "expected QR decorator to render")

	desktop, err := http.Get(ts.URL + "/forms/signup")
	require.NoError(t, err)
	assert.NotContains(t, readBody(t, desktop), "mobile-device")
}

func TestServer_UnknownForm(t *testing.T) {
	ts := newServer(t)

	resp, err := http.Get(ts.URL + "/forms/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_SubmitBlockedReturnsAnnotatedPage(t *testing.T) {
	ts := newServer(t)

	resp, err := http.PostForm(ts.URL+"/forms/signup", url.Values{
		"name":  {"Ada"},
		"email": {"not-an-email"},
	})
	require.NoError(t, err)
	body := readBody(t, resp)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	doc, err := dom.ParseString(body)
	require.NoError(t, err)
	notes := testsupport.Annotations(doc)
	assert.Equal(t, "Enter a valid email address.", notes["email"])
	assert.Equal(t, "This field is required.", notes["phone"])
	assert.NotContains(t, notes, "name")

	button := doc.FindOne("//button[@type='submit']")
	assert.Equal(t, "Sign up", strings.TrimSpace(dom.TextContent(button)))
	assert.False(t, dom.Disabled(button))
}

func TestServer_SubmitAllowed(t *testing.T) {
	ts := newServer(t)

	resp, err := http.PostForm(ts.URL+"/forms/signup", url.Values{
		"name":     {"Ada"},
		"email":    {"ada@example.com"},
		"phone":    {"13800138000"},
		"topics[]": {"go", "data"},
	})
	require.NoError(t, err)
	body := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Equal(t, "signup", payload["form"])
	assert.Equal(t, "allowed", payload["state"])
	assert.NotEmpty(t, payload["attempt"])
}

func TestServer_ValidateAPI(t *testing.T) {
	ts := newServer(t)

	cases := []struct {
		body string
		want map[string]any
	}{
		{
			body: `{"name":"phone","kind":"phone","value":"12345"}`,
			want: map[string]any{"name": "phone", "valid": false, "message": "Enter a valid mobile number."},
		},
		{
			body: `{"name":"guests","kind":"number","value":"3","min":"0","max":"5"}`,
			want: map[string]any{"name": "guests", "valid": true},
		},
		{
			body: `{"name":"topics[]","kind":"checkbox-group","required":true,"checked":[]}`,
			want: map[string]any{"name": "topics[]", "valid": false, "message": "This field is required."},
		},
		{
			body: `{"name":"mobile","kind":"tel","value":"12345"}`,
			want: map[string]any{"name": "mobile", "valid": false, "message": "Enter a valid mobile number."},
		},
		{
			body: `{"name":"seats","kind":"range","value":"9","max":"5"}`,
			want: map[string]any{"name": "seats", "valid": false, "message": "Value must be at most 5."},
		},
		{
			body: `{"name":"plan","kind":"radio","required":true,"checked":["pro"]}`,
			want: map[string]any{"name": "plan", "valid": true},
		},
	}
	for _, tc := range cases {
		resp, err := http.Post(ts.URL+"/api/validate", "application/json", bytes.NewBufferString(tc.body))
		require.NoError(t, err)
		body := readBody(t, resp)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(body), &got))
		assert.Equal(t, tc.want, got)
	}

	resp, err := http.Post(ts.URL+"/api/validate", "application/json", strings.NewReader(`{"unknown":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/validate", "application/json", strings.NewReader(`{"name":"when","kind":"date","value":"x"}`))
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, `unknown kind`)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	srv, err := server.New(server.Options{Catalog: formsource.NewCatalog(), Logger: log.New(io.Discard)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}

func TestNew_RequiresCatalog(t *testing.T) {
	_, err := server.New(server.Options{})
	assert.Error(t, err)
}
