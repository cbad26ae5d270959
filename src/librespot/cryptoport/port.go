// Package cryptoport defines the capability set the core relies on for
// every external cryptographic primitive it does not implement itself
// (base64, SHA1/HMAC, PBKDF2, AES, and the DH session used per
// connection attempt), plus the concrete OS-backed implementation and
// a deterministic test double.
package cryptoport

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	libcrypto "github.com/fischerling/cspot-go/src/librespot/crypto"
)

// Port is the capability set external collaborators must provide. It
// is the Go mirror of cspot-ng's `interfaces/Crypto.hpp`.
type Port interface {
	DecodeBase64(s string) ([]byte, error)
	EncodeBase64(b []byte) string

	SHA1(data []byte) []byte
	HMACSHA1(key, data []byte) []byte
	PBKDF2HMACSHA1(password, salt []byte, iterations, keyLen int) []byte

	AESCTRXCrypt(key16, iv16, data []byte) error
	AESECBDecrypt(key16, data []byte) error

	DHInit() (DHSession, error)
	RandomBytes(n int) ([]byte, error)
}

// DHSession is a single-use Diffie-Hellman exchange: created once per
// connection attempt (ZeroConf credential exchange or AP handshake) and
// discarded once the shared secret has been used.
type DHSession interface {
	PublicKey() []byte
	SharedSecret(remotePublic []byte) []byte
}

// OSPort is the production Port backed by the Go standard library plus
// golang.org/x/crypto/pbkdf2 for PBKDF2-HMAC-SHA1.
type OSPort struct{}

var _ Port = OSPort{}

func (OSPort) DecodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("cryptoport: decode base64: %w", err)
	}
	return b, nil
}

func (OSPort) EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func (OSPort) SHA1(data []byte) []byte {
	sum := sha1.Sum(data)
	return sum[:]
}

func (OSPort) HMACSHA1(key, data []byte) []byte {
	mac := hmac.New(sha1.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func (OSPort) PBKDF2HMACSHA1(password, salt []byte, iterations, keyLen int) []byte {
	return pbkdf2.Key(password, salt, iterations, keyLen, sha1.New)
}

// AESCTRXCrypt encrypts or decrypts data in place with AES-128-CTR
// (the operation is its own inverse). iv16 is not advanced by the
// caller-visible state; this core only ever decrypts a single blob per
// session so the post-call counter value is never observed.
func (OSPort) AESCTRXCrypt(key16, iv16, data []byte) error {
	block, err := aes.NewCipher(key16)
	if err != nil {
		return fmt.Errorf("cryptoport: aes-ctr: %w", err)
	}
	stream := cipher.NewCTR(block, iv16)
	stream.XORKeyStream(data, data)
	return nil
}

// AESECBDecrypt decrypts data in place, 16 bytes at a time, with no
// padding. len(data) must be a multiple of 16. The standard library
// intentionally offers no ECB cipher.Mode (it is unsafe for general
// use), so each block is decrypted directly via cipher.Block.
func (OSPort) AESECBDecrypt(key16, data []byte) error {
	block, err := aes.NewCipher(key16)
	if err != nil {
		return fmt.Errorf("cryptoport: aes-ecb: %w", err)
	}
	bs := block.BlockSize()
	if len(data)%bs != 0 {
		return fmt.Errorf("cryptoport: aes-ecb: data length %d not a multiple of %d", len(data), bs)
	}
	for off := 0; off < len(data); off += bs {
		block.Decrypt(data[off:off+bs], data[off:off+bs])
	}
	return nil
}

func (OSPort) DHInit() (DHSession, error) {
	kp, err := libcrypto.GenerateDHKeyPair()
	if err != nil {
		return nil, fmt.Errorf("cryptoport: dh init: %w", err)
	}
	return dhSession{kp: kp}, nil
}

func (OSPort) RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("cryptoport: random bytes: %w", err)
	}
	return b, nil
}

type dhSession struct {
	kp libcrypto.DHKeyPair
}

func (d dhSession) PublicKey() []byte { return d.kp.PublicKey() }

func (d dhSession) SharedSecret(remotePublic []byte) []byte {
	return d.kp.SharedSecret(remotePublic)
}
