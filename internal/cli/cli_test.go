package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/foxy/foxy-go/internal/listener"
	"github.com/foxy/foxy-go/internal/version"
	"github.com/foxy/foxy-go/pkg/client"
	"github.com/foxy/foxy-go/pkg/config"
	"github.com/foxy/foxy-go/pkg/signer"
)

var foxyEnv = []string{
	"FOXY_API_CLIENT_ID", "FOXY_API_CLIENT_SECRET", "FOXY_API_REFRESH_TOKEN", "FOXY_API_URL",
	"FOXY_API_VERSION", "FOXY_LOG_LEVEL", "FOXY_LOG_SILENT", "FOXY_STORE_SECRET", "FOXY_WEBHOOK_KEY",
	"FOXY_CACHE_KIND", "FOXY_CACHE_DIR", "FOXY_CACHE_DSN", "FOXY_CACHE_TABLE",
}

// isolate runs the test in an empty working and config directory with no
// FOXY_* variables set.
func isolate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, k := range foxyEnv {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("FOXY_LOG_SILENT", "true")
	chdir(t, home)
	color.NoColor = true
}

func setCredentials(t *testing.T, endpoint string) {
	t.Setenv("FOXY_API_CLIENT_ID", "0")
	t.Setenv("FOXY_API_CLIENT_SECRET", "1")
	t.Setenv("FOXY_API_REFRESH_TOKEN", "42")
	t.Setenv("FOXY_API_URL", endpoint)
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "foxy CLI "+version.Version)
	assert.Contains(t, out, "Config file: none")

	out, err = runCLI(t, "", "version", "-j")
	require.NoError(t, err)
	assert.Equal(t, version.Version, gjson.Get(out, "version").String())
	assert.Equal(t, "1", gjson.Get(out, "api_version").String())
}

func TestInvalidLogLevel(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, "", "--log-level", "loud", "version")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestSignMessage(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "", "sign", "message", "My secret message", "--secret", "1")
	require.NoError(t, err)
	assert.Equal(t, "070273763c37748d6da8ef8dde7ef847857c4d61a7016244df0b2843dbf417aa\n", out)

	t.Setenv("FOXY_STORE_SECRET", "Your store's secret key.")
	out, err = runCLI(t, "", "sign", "message", "My secret message", "-j")
	require.NoError(t, err)
	assert.Equal(t, "107366608bb74161b5c679fa4f9f0149eafa340574b60ef75a2e4fa26e103497", gjson.Get(out, "signed").String())
}

func TestSignWithoutSecret(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, "", "sign", "message", "anything")
	assert.ErrorIs(t, err, signer.ErrNoSecret)
}

func TestSignURL(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "", "sign", "url", "--secret", "1", "http://storename?code=ABC123&name=name&value=My Example Product")
	require.NoError(t, err)
	assert.Equal(t, "http://storename/?"+
		"code||376d15f565ec374d45571878a14d3f5a705c7ea6b9aea42c1e1b3a39ac1ba7f8=ABC123&"+
		"name||a0db12544b12078e411f2bb388c470bf099a14b21035d782ecb1bd5bef89a0e0=name&"+
		"value||dd47bac2aeb87bd6c118d3f89797ab6eddb058ce17a1e302233ba7a00e7b4db4=My+Example+Product\n", out)
}

func TestSignFields(t *testing.T) {
	isolate(t)
	s := signer.New("1")

	want, err := s.Name("quantity", "ABC123", "", signer.Editable())
	require.NoError(t, err)
	out, err := runCLI(t, "", "sign", "name", "quantity", "--code", "ABC123", "--secret", "1")
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)

	want, err = s.Value("size", "ABC123", "PARENT", signer.Fixed("large"))
	require.NoError(t, err)
	out, err = runCLI(t, "", "sign", "value", "size", "-c", "ABC123", "-p", "PARENT", "-v", "large", "--secret", "1")
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)

	_, err = runCLI(t, "", "sign", "name", "quantity", "--secret", "1")
	assert.Error(t, err)
}

func TestSignHTML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	unchanged := "<p>Nothing to sign</p>"

	out, err := runCLI(t, unchanged, "sign", "html", "--secret", "1")
	require.NoError(t, err)
	assert.Equal(t, unchanged, out)

	doc := `<html><body><a href="http://storename/?code=ABC123&name=name&value=My Example Product">Buy</a></body></html>`
	in := filepath.Join(dir, "cart.html")
	outFile := filepath.Join(dir, "cart.signed.html")
	require.NoError(t, os.WriteFile(in, []byte(doc), 0600))

	out, err = runCLI(t, "", "sign", "html", "--secret", "1", "-i", in, "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed")
	signed, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(signed), "code||376d15f565ec374d45571878a14d3f5a705c7ea6b9aea42c1e1b3a39ac1ba7f8=ABC123")

	out, err = runCLI(t, "", "sign", "html", "--secret", "1", "-i", in)
	require.NoError(t, err)
	assert.Contains(t, out, "code||376d15f565ec374d45571878a14d3f5a705c7ea6b9aea42c1e1b3a39ac1ba7f8=ABC123")
}

func TestSSO(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "", "sso",
		"--customer", "customer_01", "--secret", "yes, very",
		"--domain", "https://foxy-demo.foxycart.com", "--timestamp", "1585402055672")
	require.NoError(t, err)
	assert.Equal(t, "https://foxy-demo.foxycart.com/checkout?fc_customer_id=customer_01"+
		"&fc_auth_token=fd4cc69122044310b2b2f2d6a52cd87ed127c649&timestamp=1585402055672\n", out)

	_, err = runCLI(t, "", "sso", "--customer", "customer_01", "--domain", "https://foxy-demo.foxycart.com")
	assert.Error(t, err)
}

func TestWebhookVerify(t *testing.T) {
	isolate(t)
	const sig = "055c620a2d1e459b9c4ed676146a6cce9d2ec2e7caf3dba64608c30c4477f532"

	out, err := runCLI(t, "", "webhook", "verify", "--key", "is definitely right",
		"--signature", sig, "--payload", "this, on the other hand")
	require.NoError(t, err)
	assert.Contains(t, out, "Signature is valid")

	t.Setenv("FOXY_WEBHOOK_KEY", "is definitely right")
	out, err = runCLI(t, "this, on the other hand", "webhook", "verify", "-s", sig, "-j")
	require.NoError(t, err)
	assert.True(t, gjson.Get(out, "valid").Bool())

	out, err = runCLI(t, "tampered", "webhook", "verify", "-s", sig)
	assert.ErrorIs(t, err, ErrAlreadyHandled)
	assert.Contains(t, out, "Signature is invalid")
}

func TestWebhookVerifyWithoutKey(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, "", "webhook", "verify", "-s", "x", "--payload", "y")
	assert.ErrorIs(t, err, errMissingWebhookKey)
}

func TestResolveOffline(t *testing.T) {
	isolate(t)
	setCredentials(t, "https://api.foxy.test")

	out, err := runCLI(t, "", "resolve", "fx:reporting")
	require.NoError(t, err)
	assert.Equal(t, "https://api.foxy.test/reporting\n", out)

	out, err = runCLI(t, "", "resolve", "--base", "https://api.foxy.test/stores", "8", "-j")
	require.NoError(t, err)
	assert.Equal(t, "https://api.foxy.test/stores/8", gjson.Get(out, "url").String())
}

func TestResolveRequiresCredentials(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, "", "resolve", "fx:reporting")
	assert.Error(t, err)
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

func newTestAPI(t *testing.T) (*httptest.Server, func() recordedRequest) {
	var (
		mu   sync.Mutex
		last recordedRequest
	)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			w.Write([]byte(`{"access_token":"token_mock","expires_in":3600}`))
			return
		}
		if r.Header.Get("Authorization") != "Bearer token_mock" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		last = recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)}
		mu.Unlock()

		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"message":"created"}`))
		default:
			w.Write([]byte(`{"_links":{"self":{"href":"` + srv.URL + r.URL.Path + `"}},` +
				`"locale_code":"en_US","date_created":"2016-02-05T10:25:26-0800","password_hash":"x"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func() recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return last
	}
}

func TestGet(t *testing.T) {
	isolate(t)
	srv, last := newTestAPI(t)
	setCredentials(t, srv.URL)

	out, err := runCLI(t, "", "get", "fx:reporting", "--query", "limit=5", "--zoom", "items:item_options", "--fields", "id")
	require.NoError(t, err)
	assert.Contains(t, out, "locale_code: en-US")
	assert.Contains(t, out, "2016-02-05T10:25:26-08:00")
	assert.Contains(t, out, "password_hash: x")

	req := last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/reporting", req.Path)
	assert.Contains(t, req.Query, "limit=5")
	assert.Contains(t, req.Query, "zoom=items%3Aitem_options")
	assert.Contains(t, req.Query, "fields=id")

	out, err = runCLI(t, "", "get", "fx:reporting", "--sanitize", "sensitive", "-j")
	require.NoError(t, err)
	assert.Equal(t, "en-US", gjson.Get(out, "locale_code").String())
	assert.False(t, gjson.Get(out, "password_hash").Exists())
}

func TestGetWithBody(t *testing.T) {
	isolate(t)
	srv, last := newTestAPI(t)
	setCredentials(t, srv.URL)

	out, err := runCLI(t, "", "get", "--base", srv.URL+"/customers", "-X", "post",
		"--body", `{"email":"jane@example.com"}`, "--set", "first_name=Jane", "--set", "is_anonymous=false")
	require.NoError(t, err)
	assert.Contains(t, out, "message: created")

	req := last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/customers", req.Path)
	assert.JSONEq(t, `{"email":"jane@example.com","first_name":"Jane","is_anonymous":false}`, req.Body)

	out, err = runCLI(t, "", "get", "--base", srv.URL+"/customers/5", "-X", "DELETE")
	require.NoError(t, err)
	assert.Equal(t, "204 No Content\n", out)
	assert.Equal(t, "/customers/5", last().Path)
}

func TestGetInvalidFlags(t *testing.T) {
	isolate(t)
	setCredentials(t, "https://api.foxy.test")

	_, err := runCLI(t, "", "get", "fx:store", "--query", "novalue")
	assert.ErrorContains(t, err, "invalid query parameter")

	_, err = runCLI(t, "", "get", "fx:store", "--sanitize", "everything")
	assert.ErrorContains(t, err, "unknown sanitizer")

	_, err = runCLI(t, "", "get", "fx:store", "--set", "novalue")
	assert.ErrorIs(t, err, client.ErrInvalidField)
}

func TestToken(t *testing.T) {
	isolate(t)
	srv, _ := newTestAPI(t)
	setCredentials(t, srv.URL)

	out, err := runCLI(t, "", "token")
	require.NoError(t, err)
	assert.Equal(t, "token_mock\n", out)
}

func TestConfigShowAndCreate(t *testing.T) {
	isolate(t)
	t.Setenv("FOXY_API_CLIENT_ID", "0")
	t.Setenv("FOXY_API_CLIENT_SECRET", "client-secret")

	out, err := runCLI(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Api Credentials")
	assert.Contains(t, out, "cl*********et")
	assert.NotContains(t, out, "client-secret")

	file := filepath.Join(t.TempDir(), "foxy.toml")
	_, err = runCLI(t, "", "config", "create", file)
	require.NoError(t, err)
	_, err = runCLI(t, "", "config", "create", file)
	assert.ErrorContains(t, err, "already exists")

	os.Unsetenv("FOXY_API_CLIENT_ID")
	os.Unsetenv("FOXY_API_CLIENT_SECRET")
	out, err = runCLI(t, "", "--config", file, "config", "show", "-j")
	require.NoError(t, err)
	assert.Equal(t, "0", gjson.Get(out, "ClientID").String())
	assert.Equal(t, "cl*********et", gjson.Get(out, "ClientSecret").String())
}

func TestConfigCreateDefaultLocation(t *testing.T) {
	isolate(t)
	t.Setenv("FOXY_API_CLIENT_ID", "7")

	_, err := runCLI(t, "", "config", "create")
	require.NoError(t, err)
	path, err := GetDefaultConfigPath()
	require.NoError(t, err)
	assert.FileExists(t, path)

	os.Unsetenv("FOXY_API_CLIENT_ID")
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Config file: "+path)
}

func TestParseZoom(t *testing.T) {
	assert.Equal(t, "items:item_options,customer",
		client.SerializeZoom(parseZoom([]string{"items:item_options", "customer"})))
	assert.Equal(t, "a:b:c", client.SerializeZoom(parseZoom([]string{"a:b:c"})))
	assert.Empty(t, parseZoom(nil))
}

func TestEventPrinter(t *testing.T) {
	color.NoColor = true
	jsonOutput = false
	var out bytes.Buffer
	p := newEventPrinter(&out, true)
	p.Print(listener.Event{
		RequestID: "req-1",
		Type:      "transaction/created",
		Received:  p.start.Add(1500 * time.Millisecond),
		Payload:   []byte(`{"id":1,"_links":{"self":{"href":"https://api.foxycart.com/transactions/1"}}}`),
	})

	s := out.String()
	assert.Contains(t, s, "[00:01.500] transaction/created")
	assert.Contains(t, s, "▶ https://api.foxycart.com/transactions/1")
	assert.Contains(t, s, "(req-1)")
	assert.Contains(t, s, `"id": 1`)
}

func TestIndentMultiline(t *testing.T) {
	assert.Equal(t, "a", indentMultiline("a", "  "))
	assert.Equal(t, "a\n  b\n  c", indentMultiline("a\nb\nc", "  "))
}
