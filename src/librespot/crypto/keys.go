package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
)

// PrivateKeys holds the ephemeral DH keypair and client nonce used for
// a single AP handshake attempt. It is created once per connection and
// discarded once the shared keys have been derived.
type PrivateKeys struct {
	dh          DHKeyPair
	clientNonce []byte
}

// GenerateKeys creates a fresh DH keypair and a random 16-byte client
// nonce for a new handshake attempt.
func GenerateKeys() (PrivateKeys, error) {
	dh, err := GenerateDHKeyPair()
	if err != nil {
		return PrivateKeys{}, err
	}
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return PrivateKeys{}, err
	}
	return PrivateKeys{dh: dh, clientNonce: nonce}, nil
}

// PubKey returns the 96-byte DH public key to advertise in ClientHello.
func (k PrivateKeys) PubKey() []byte {
	return k.dh.PublicKey()
}

// ClientNonce returns the 16-byte nonce advertised in ClientHello.
func (k PrivateKeys) ClientNonce() []byte {
	return k.clientNonce
}

// SharedKeys is the key material derived once the server's DH public
// value is known: the challenge MAC to send back, and the Shannon
// send/recv keys for the resulting encrypted channel.
type SharedKeys struct {
	challenge []byte
	sendKey   []byte
	recvKey   []byte
}

// Challenge returns the 20-byte HMAC the client must echo back in
// ClientResponsePlaintext to complete the handshake.
func (s SharedKeys) Challenge() []byte { return s.challenge }

// SendKey returns the 32-byte Shannon key for the client->server
// direction.
func (s SharedKeys) SendKey() []byte { return s.sendKey }

// RecvKey returns the 32-byte Shannon key for the server->client
// direction.
func (s SharedKeys) RecvKey() []byte { return s.recvKey }

// AddRemoteKey derives the shared session keys from the server's DH
// public value (remotePublic) and the full client-hello / server-hello
// frames exchanged so far (helloPacket, helloResponse). It implements
// the 5xHMAC-SHA1 key schedule described in the Access Point handshake:
// D = HMAC(shared,[1]||M) || ... || HMAC(shared,[5]||M), M = helloPacket||helloResponse.
func (k PrivateKeys) AddRemoteKey(remotePublic, helloPacket, helloResponse []byte) SharedKeys {
	shared := k.dh.SharedSecret(remotePublic)

	m := make([]byte, 0, len(helloPacket)+len(helloResponse))
	m = append(m, helloPacket...)
	m = append(m, helloResponse...)

	var d []byte
	for x := byte(1); x <= 5; x++ {
		mac := hmac.New(sha1.New, shared)
		mac.Write([]byte{x})
		mac.Write(m)
		d = mac.Sum(d)
	}

	macKey := d[0:20]
	sendKey := d[20:52]
	recvKey := d[52:84]

	challengeMac := hmac.New(sha1.New, macKey)
	challengeMac.Write(m)

	return SharedKeys{
		challenge: challengeMac.Sum(nil),
		sendKey:   sendKey,
		recvKey:   recvKey,
	}
}
