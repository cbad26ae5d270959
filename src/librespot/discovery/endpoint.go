package discovery

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/fischerling/cspot-go/src/librespot/cryptoport"
)

// DefaultPort is the ZeroConf HTTP endpoint's default listening port.
const DefaultPort = 7864

// Endpoint is the ZeroConf credential-exchange state machine: it
// serves /spotify_info (GET and POST) and /close. It does not
// advertise itself over mDNS; Announce does that separately.
type Endpoint struct {
	blob *LoginBlob

	authReady atomic.Bool
	closed    atomic.Bool
}

// NewEndpoint creates an Endpoint for the given device name, backed by
// port for its cryptographic operations.
func NewEndpoint(deviceName string, port cryptoport.Port) (*Endpoint, error) {
	blob, err := NewLoginBlob(deviceName, port)
	if err != nil {
		return nil, err
	}
	return &Endpoint{blob: blob}, nil
}

// LoginBlob returns the endpoint's credential blob. Credentials() is
// only meaningful once AuthReady() is true.
func (e *Endpoint) LoginBlob() *LoginBlob { return e.blob }

// AuthReady reports whether a POST has successfully populated
// credentials.
func (e *Endpoint) AuthReady() bool { return e.authReady.Load() }

// Closed reports whether /close has been hit.
func (e *Endpoint) Closed() bool { return e.closed.Load() }

// RegisterHandlers wires the three ZeroConf routes onto mux.
func (e *Endpoint) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/spotify_info", e.handleSpotifyInfo)
	mux.HandleFunc("/close", e.handleClose)
}

func (e *Endpoint) handleSpotifyInfo(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		e.handleGetInfo(w, r)
	case http.MethodPost:
		e.handlePostInfo(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (e *Endpoint) handleGetInfo(w http.ResponseWriter, r *http.Request) {
	body, err := e.blob.GetInfoJSON()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// handlePostInfo decodes the form body and feeds it to LoginBlob. Per
// spec, decode failures are never surfaced to the controller: the
// response is always the fixed ERROR-OK envelope, and the only
// observable effect of failure is that AuthReady never flips.
func (e *Endpoint) handlePostInfo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		ready, err := e.blob.SetInfo(url.Values(r.PostForm))
		if err == nil && ready {
			e.authReady.Store(true)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":       101,
		"spotifyError": 0,
		"statusString": "ERROR-OK",
	})
}

func (e *Endpoint) handleClose(w http.ResponseWriter, r *http.Request) {
	e.closed.Store(true)
	w.WriteHeader(http.StatusOK)
}
