package discovery

import (
	"fmt"

	"github.com/badfortrains/mdns"
)

// MDNSAnnouncer advertises a Spotify Connect device on the local
// network via _spotify-connect._tcp, the same discovery transport the
// teacher project uses.
type MDNSAnnouncer struct {
	server *mdns.Server
}

// Announce registers deviceName as a Spotify Connect device listening
// on httpPort, advertising the TXT records a controller expects to
// find the ZeroConf credential-exchange endpoint.
func Announce(deviceName string, httpPort int) (*MDNSAnnouncer, error) {
	txt := []string{"VERSION=1.0", "CPath=/spotify_info", "Stack=SP"}

	service, err := mdns.NewMDNSService(
		deviceName,
		"_spotify-connect._tcp",
		"",
		"",
		httpPort,
		nil,
		txt,
	)
	if err != nil {
		return nil, fmt.Errorf("discovery: mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("discovery: mdns server: %w", err)
	}

	return &MDNSAnnouncer{server: server}, nil
}

// Shutdown stops advertising the device.
func (a *MDNSAnnouncer) Shutdown() error {
	return a.server.Shutdown()
}
