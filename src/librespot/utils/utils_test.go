package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fischerling/cspot-go/src/librespot/cerrors"
)

// swapApResolveURL points apResolveURL at a test server for the
// duration of one test and returns a func to restore it.
func swapApResolveURL(url string) func() {
	orig := apResolveURL
	apResolveURL = url
	return func() { apResolveURL = orig }
}

func TestResolveAccessPointParsesFirstEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ap_list":["ap-gew4.spotify.com:4070","ap-gew1.spotify.com:4070"]}`))
	}))
	defer server.Close()

	restore := swapApResolveURL(server.URL + "/")
	defer restore()

	host, port, err := ResolveAccessPoint(server.Client())
	require.NoError(t, err)
	require.Equal(t, "ap-gew4.spotify.com", host)
	require.Equal(t, 4070, port)
}

func TestResolveAccessPointNoApAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ap_list":[]}`))
	}))
	defer server.Close()

	restore := swapApResolveURL(server.URL + "/")
	defer restore()

	_, _, err := ResolveAccessPoint(server.Client())
	require.ErrorIs(t, err, cerrors.ErrNoAp)
}

func TestResolveAccessPointNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	restore := swapApResolveURL(server.URL + "/")
	defer restore()

	_, _, err := ResolveAccessPoint(server.Client())
	require.ErrorIs(t, err, cerrors.ErrResolveFailed)
}

func TestGenerateDeviceIDStableAndWidth(t *testing.T) {
	id1 := GenerateDeviceID("my speaker")
	id2 := GenerateDeviceID("my speaker")
	require.Equal(t, id1, id2)
	require.Len(t, id1, 40)
	require.Regexp(t, "^142137fd329622137a149016[0-9a-f]{16}$", id1)
}

func TestGenerateDeviceIDDiffersByName(t *testing.T) {
	require.NotEqual(t, GenerateDeviceID("speaker-a"), GenerateDeviceID("speaker-b"))
}
