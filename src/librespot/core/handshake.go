// Package core orchestrates a cspot-go session: the Access Point
// handshake that derives Shannon session keys, and the authentication
// exchange that trades a LoginBlob's credentials for a welcome from
// the Access Point.
package core

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/fischerling/cspot-go/src/librespot/cerrors"
	"github.com/fischerling/cspot-go/src/librespot/connection"
	"github.com/fischerling/cspot-go/src/librespot/crypto"
	"github.com/fischerling/cspot-go/src/librespot/spotify"
	"github.com/fischerling/cspot-go/src/librespot/utils"
)

// spotifyVersion is the fixed client build version advertised in
// ClientHello, matching cspot-ng's SPOTIFY_VERSION constant.
const spotifyVersion = 0x10800000000

// clientHelloPadding is the single padding byte cspot-ng appends to
// ClientHello.
const clientHelloPadding = 0x1e

// handshakeResult carries the raw connection and key material a
// ShannonStream needs once the AP handshake completes.
type handshakeResult struct {
	conn    net.Conn
	sendKey []byte
	recvKey []byte
}

// runHandshake resolves an Access Point, performs the ClientHello /
// APResponse / ClientResponsePlaintext exchange, and returns the
// connection along with the derived Shannon send/recv keys.
// receiveTimeout bounds the APResponse read; <= 0 means no deadline.
func runHandshake(httpClient *http.Client, receiveTimeout time.Duration) (*handshakeResult, error) {
	host, apPort, err := utils.ResolveAccessPoint(httpClient)
	if err != nil {
		return nil, err
	}

	conn, err := utils.DialAccessPoint(host, apPort)
	if err != nil {
		return nil, err
	}

	keys, err := crypto.GenerateKeys()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", cerrors.ErrHandshakeFailed, err)
	}

	hello := spotify.ClientHello{
		BuildInfo: spotify.BuildInfo{
			Product:  spotify.ProductClient,
			Platform: spotify.PlatformLinuxX86,
			Version:  spotifyVersion,
		},
		CryptosuitesSupported: []spotify.Cryptosuite{spotify.CryptosuiteShannon},
		ClientNonce:           keys.ClientNonce(),
		Padding:               []byte{clientHelloPadding},
		ServerKeysKnown:       1,
		DiffieHellmanGc:       keys.PubKey(),
		Autoupdate2:           true,
	}
	helloBytes := hello.Marshal()

	plain := connection.NewPlainConnection(conn)

	helloPacket, err := plain.SendPrefixPacket([]byte{0x00, 0x04}, helloBytes)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", cerrors.ErrHandshakeFailed, err)
	}

	helloResponse, err := plain.RecvPacket(receiveTimeout)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", cerrors.ErrHandshakeFailed, err)
	}

	if len(helloResponse) < 4 {
		conn.Close()
		return nil, fmt.Errorf("%w: short ap response", cerrors.ErrHandshakeFailed)
	}
	apResponse, err := spotify.UnmarshalAPResponseMessage(helloResponse[4:])
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", cerrors.ErrHandshakeFailed, err)
	}
	if !apResponse.HasChallenge {
		conn.Close()
		return nil, fmt.Errorf("%w: no challenge in ap response", cerrors.ErrHandshakeFailed)
	}

	sharedKeys := keys.AddRemoteKey(apResponse.DiffieHellmanGs, helloPacket, helloResponse)

	response := spotify.ClientResponsePlaintext{HMAC: sharedKeys.Challenge()}
	if _, err := plain.SendPrefixPacket(nil, response.Marshal()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", cerrors.ErrHandshakeFailed, err)
	}

	return &handshakeResult{
		conn:    conn,
		sendKey: sharedKeys.SendKey(),
		recvKey: sharedKeys.RecvKey(),
	}, nil
}
