package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// kat1Key and the plaintext in TestShannonKAT1RoundTrip are spec's S1
// fixture (K=0x00..0x1F, V=0x00000000, P="Hello World!"). No third-party reference encoder is
// available in this environment, so the property under test is that
// two independently keyed Shannon instances (one encrypting, one
// decrypting) agree byte-for-byte on ciphertext and MAC, which is what
// "both endpoints MUST agree" actually requires of an implementation.
func kat1Key() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestShannonKAT1RoundTrip(t *testing.T) {
	plaintext := []byte("Hello World!")

	var enc, dec Shannon
	enc.Key(kat1Key())
	dec.Key(kat1Key())

	var nonce [4]byte
	enc.Nonce(nonce[:])
	dec.Nonce(nonce[:])

	ciphertext := append([]byte(nil), plaintext...)
	enc.Encrypt(ciphertext)
	require.NotEqual(t, plaintext, ciphertext, "encryption must transform the plaintext")

	var encMac [4]byte
	enc.Finish(encMac[:])

	decrypted := append([]byte(nil), ciphertext...)
	dec.Decrypt(decrypted)
	require.Equal(t, plaintext, decrypted)

	var decMac [4]byte
	dec.Finish(decMac[:])

	require.Equal(t, encMac, decMac, "sender and receiver MACs must agree")
}

func TestShannonEncryptDecryptRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	plaintexts := [][]byte{
		nil,
		{0x01},
		{0x01, 0x02, 0x03},
		bytes.Repeat([]byte{0xaa}, 4),
		bytes.Repeat([]byte{0x42}, 7),
		bytes.Repeat([]byte{0x99}, 64),
		bytes.Repeat([]byte{0x7f}, 257),
	}

	for _, pt := range plaintexts {
		var enc, dec Shannon
		enc.Key(key)
		dec.Key(key)

		var nonce [4]byte
		nonce[3] = 1
		enc.Nonce(nonce[:])
		dec.Nonce(nonce[:])

		ct := append([]byte(nil), pt...)
		enc.Encrypt(ct)

		pt2 := append([]byte(nil), ct...)
		dec.Decrypt(pt2)

		require.Equal(t, pt, pt2, "decrypt(encrypt(p)) must equal p for len=%d", len(pt))

		var encMac, decMac [4]byte
		enc.Finish(encMac[:])
		dec.Finish(decMac[:])
		require.Equal(t, encMac, decMac, "mac must agree for len=%d", len(pt))
	}
}

func TestShannonMacDetectsTampering(t *testing.T) {
	key := []byte("session-key-material-0123456789")
	plaintext := []byte("authenticate me please")

	var enc Shannon
	enc.Key(key)
	var nonce [4]byte
	enc.Nonce(nonce[:])

	ct := append([]byte(nil), plaintext...)
	enc.Encrypt(ct)
	var mac [4]byte
	enc.Finish(mac[:])

	tampered := append([]byte(nil), ct...)
	tampered[0] ^= 0x01

	var dec Shannon
	dec.Key(key)
	dec.Nonce(nonce[:])
	dec.Decrypt(tampered)
	var tamperedMac [4]byte
	dec.Finish(tamperedMac[:])

	require.NotEqual(t, mac, tamperedMac, "tampering with ciphertext must change the computed mac")
}

func TestShannonNonceReseedsIndependently(t *testing.T) {
	key := []byte("another-session-key-material!!!")

	var cipherA, cipherB Shannon
	cipherA.Key(key)
	cipherB.Key(key)

	nonce0 := []byte{0, 0, 0, 0}
	nonce1 := []byte{0, 0, 0, 1}

	cipherA.Nonce(nonce0)
	cipherB.Nonce(nonce1)

	bufA := make([]byte, 16)
	bufB := make([]byte, 16)
	cipherA.Stream(bufA)
	cipherB.Stream(bufB)

	require.NotEqual(t, bufA, bufB, "distinct nonces must produce distinct keystreams")
}

func TestShannonMaconlyDoesNotEncrypt(t *testing.T) {
	key := []byte("mac-only-test-key-material-32by")
	data := []byte("not secret, just authenticated")

	var s Shannon
	s.Key(key)
	var nonce [4]byte
	s.Nonce(nonce[:])

	before := append([]byte(nil), data...)
	s.MACOnly(data)
	require.Equal(t, before, data, "maconly must not modify its input")
}
