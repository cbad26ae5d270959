package discovery

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fischerling/cspot-go/src/librespot/cryptoport"
)

func newTestEndpoint(t *testing.T) *Endpoint {
	t.Helper()
	ep, err := NewEndpoint("test-receiver", cryptoport.OSPort{})
	require.NoError(t, err)
	return ep
}

func TestEndpointGetInfoIdempotentBeforePost(t *testing.T) {
	ep := newTestEndpoint(t)
	mux := http.NewServeMux()
	ep.RegisterHandlers(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	var first []byte
	for i := 0; i < 3; i++ {
		resp, err := http.Get(server.URL + "/spotify_info")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()

		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))

		require.Equal(t, float64(101), body["status"])
		require.False(t, ep.AuthReady())

		if i == 0 {
			first = raw
		} else {
			require.Equal(t, first, raw, "GET /spotify_info must return byte-identical JSON before any POST")
		}
	}
}

func TestEndpointPostInfoAlwaysRespondsErrorOK(t *testing.T) {
	ep := newTestEndpoint(t)
	mux := http.NewServeMux()
	ep.RegisterHandlers(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	form := url.Values{}
	form.Set("garbage", "true")

	resp, err := http.Post(server.URL+"/spotify_info", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()

	require.Equal(t, "ERROR-OK", body["statusString"])
	require.False(t, ep.AuthReady(), "malformed post must not flip authReady")
}

func TestEndpointCloseSetsClosed(t *testing.T) {
	ep := newTestEndpoint(t)
	mux := http.NewServeMux()
	ep.RegisterHandlers(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	require.False(t, ep.Closed())
	resp, err := http.Get(server.URL + "/close")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, ep.Closed())
}

func TestEndpointPublicKeyWidth(t *testing.T) {
	ep := newTestEndpoint(t)
	info := ep.LoginBlob().GetInfo()
	pubKeyB64, ok := info["publicKey"].(string)
	require.True(t, ok)

	decoded, err := cryptoport.OSPort{}.DecodeBase64(pubKeyB64)
	require.NoError(t, err)
	require.Len(t, decoded, 96)
}

func TestEndpointDeviceIDIs40Hex(t *testing.T) {
	ep := newTestEndpoint(t)
	id := ep.LoginBlob().DeviceID()
	require.Len(t, id, 40)
	for _, c := range id {
		require.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'), "unexpected hex digit %q", c)
	}
}
