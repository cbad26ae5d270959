// Package utils holds the small helpers shared by the handshake and
// session layers: AP resolution and the device ID used in both the
// ZeroConf blob and the login packet's SystemInfo.
package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fischerling/cspot-go/src/librespot/cerrors"
)

// apResolveURL is the well-known endpoint that returns a list of
// currently reachable Access Points. It is a var, not a const, so
// tests can point it at a local httptest server.
var apResolveURL = "https://apresolve.spotify.com/"

type apResolveResponse struct {
	APList []string `json:"ap_list"`
}

// ResolveAccessPoint fetches and picks the first reachable Access
// Point address, splitting "host:port" on the last colon (so bracketed
// IPv6 literals are not mishandled).
func ResolveAccessPoint(client *http.Client) (host string, port int, err error) {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Get(apResolveURL)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", cerrors.ErrResolveFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("%w: status %d", cerrors.ErrResolveFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", cerrors.ErrResolveFailed, err)
	}

	var parsed apResolveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", 0, fmt.Errorf("%w: %v", cerrors.ErrResolveFailed, err)
	}
	if len(parsed.APList) == 0 {
		return "", 0, cerrors.ErrNoAp
	}

	addr := parsed.APList[0]
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("%w: malformed ap address %q", cerrors.ErrResolveFailed, addr)
	}
	host = strings.TrimSuffix(strings.TrimPrefix(addr[:idx], "["), "]")
	portNum, err := strconv.Atoi(addr[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("%w: malformed ap port %q", cerrors.ErrResolveFailed, addr)
	}
	return host, portNum, nil
}

// DialAccessPoint connects to host:port with a bounded dial timeout.
func DialAccessPoint(host string, port int) (net.Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("cspot: tcp connect failed: %w", err)
	}
	return conn, nil
}

// GenerateDeviceID derives this process's device ID the same way a
// LoginBlob does, so the ID presented in SystemInfo at login time
// matches the one advertised earlier over ZeroConf.
func GenerateDeviceID(name string) string {
	return fmt.Sprintf("142137fd329622137a149016%016x", stableHash(name))
}

func stableHash(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}
