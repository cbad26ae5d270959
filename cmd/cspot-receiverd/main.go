// Command cspot-receiverd runs a ZeroConf discovery endpoint for one
// receiver device: it advertises itself over mDNS and HTTP, waits for a
// controller to hand it credentials, then authenticates against an
// Access Point and prints the resulting canonical username.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fischerling/cspot-go/src/librespot/connection"
	"github.com/fischerling/cspot-go/src/librespot/core"
	"github.com/fischerling/cspot-go/src/librespot/cryptoport"
	"github.com/fischerling/cspot-go/src/librespot/discovery"
)

func main() {
	deviceName := flag.String("device-name", "cspot-go", "remote name advertised over ZeroConf")
	httpPort := flag.Int("port", discovery.DefaultPort, "HTTP port for the /spotify_info discovery endpoint")
	pollInterval := flag.Duration("poll-interval", 1000*time.Millisecond, "poll interval while waiting for a controller to POST credentials")
	receiveTimeout := flag.Duration("receive-timeout", connection.DefaultReceiveTimeout, "timeout for each read from the Access Point during handshake and login")
	flag.Parse()

	if err := run(*deviceName, *httpPort, *pollInterval, *receiveTimeout); err != nil {
		log.Fatalf("cspot-receiverd: %v", err)
	}
}

func run(deviceName string, httpPort int, pollInterval, receiveTimeout time.Duration) error {
	port := cryptoport.OSPort{}

	endpoint, err := discovery.NewEndpoint(deviceName, port)
	if err != nil {
		return fmt.Errorf("create endpoint: %w", err)
	}

	mux := http.NewServeMux()
	endpoint.RegisterHandlers(mux)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", httpPort),
		Handler: mux,
	}

	announcer, err := discovery.Announce(deviceName, httpPort)
	if err != nil {
		return fmt.Errorf("mdns announce: %w", err)
	}
	defer announcer.Shutdown()

	group, ctx := errgroup.WithContext(context.Background())

	group.Go(func() error {
		log.Printf("cspot-receiverd: listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		err := waitForCredentials(ctx, endpoint, pollInterval)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return err
	})

	if err := group.Wait(); err != nil {
		return err
	}

	blob := endpoint.LoginBlob()
	log.Printf("cspot-receiverd: credentials ready for %q, authenticating against access point", blob.Credentials().Username)

	session := core.NewSession(nil, receiveTimeout)
	if err := session.Connect(); err != nil {
		return fmt.Errorf("connect to access point: %w", err)
	}
	welcome, err := session.Authenticate(blob, blob.DeviceID())
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	log.Printf("cspot-receiverd: authenticated as %q", welcome.CanonicalUsername)
	return nil
}

// waitForCredentials blocks until the discovery endpoint reports
// authReady (a controller has POSTed valid credentials) or the close
// endpoint has been hit, polling at pollInterval.
func waitForCredentials(ctx context.Context, endpoint *discovery.Endpoint, pollInterval time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if endpoint.Closed() {
				return errors.New("cspot-receiverd: discovery endpoint closed before authentication")
			}
			if endpoint.AuthReady() {
				return nil
			}
		}
	}
}
