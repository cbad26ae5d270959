package crypto

import (
	"crypto/rand"
	"math/big"
)

// dhKeyBytes is the fixed width of every DH value on the wire: private
// keys, public keys, and the derived shared secret are all left-padded
// to this width.
const dhKeyBytes = 96

// oakleyGroup1Prime is the well-known 768-bit MODP prime from RFC 2409
// ("Oakley Group 1"), used verbatim by the Spotify Access Point
// handshake.
var oakleyGroup1Prime = mustBigIntFromBytes([]byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xc9, 0x0f, 0xda, 0xa2,
	0x21, 0x68, 0xc2, 0x34, 0xc4, 0xc6, 0x62, 0x8b, 0x80, 0xdc, 0x1c, 0xd1,
	0x29, 0x02, 0x4e, 0x08, 0x8a, 0x67, 0xcc, 0x74, 0x02, 0x0b, 0xbe, 0xa6,
	0x3b, 0x13, 0x9b, 0x22, 0x51, 0x4a, 0x08, 0x79, 0x8e, 0x34, 0x04, 0xdd,
	0xef, 0x95, 0x19, 0xb3, 0xcd, 0x3a, 0x43, 0x1b, 0x30, 0x2b, 0x0a, 0x6d,
	0xf2, 0x5f, 0x14, 0x37, 0x4f, 0xe1, 0x35, 0x6d, 0x6d, 0x51, 0xc2, 0x45,
	0xe4, 0x85, 0xb5, 0x76, 0x62, 0x5e, 0x7e, 0xc6, 0xf4, 0x4c, 0x42, 0xe9,
	0xa6, 0x3a, 0x36, 0x20, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
})

var oakleyGroup1Generator = big.NewInt(2)

func mustBigIntFromBytes(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// padLeft returns b left-padded with zero bytes to exactly n bytes,
// truncating leading bytes if b is somehow longer (never expected for
// values that are already reduced mod the 768-bit prime).
func padLeft(b []byte, n int) []byte {
	if len(b) >= n {
		return b[len(b)-n:]
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

// DHKeyPair is a single-use Diffie-Hellman keypair over Oakley Group 1.
type DHKeyPair struct {
	private *big.Int
	public  *big.Int
}

// GenerateDHKeyPair creates a fresh keypair: a random 96-byte private
// exponent and its corresponding public value g^private mod p.
func GenerateDHKeyPair() (DHKeyPair, error) {
	priv := make([]byte, dhKeyBytes)
	if _, err := rand.Read(priv); err != nil {
		return DHKeyPair{}, err
	}
	private := new(big.Int).SetBytes(priv)
	public := new(big.Int).Exp(oakleyGroup1Generator, private, oakleyGroup1Prime)
	return DHKeyPair{private: private, public: public}, nil
}

// PublicKey returns the 96-byte big-endian public value.
func (kp DHKeyPair) PublicKey() []byte {
	return padLeft(kp.public.Bytes(), dhKeyBytes)
}

// SharedSecret computes remotePublic^private mod p, left-padded to 96
// bytes.
func (kp DHKeyPair) SharedSecret(remotePublic []byte) []byte {
	remote := new(big.Int).SetBytes(remotePublic)
	shared := new(big.Int).Exp(remote, kp.private, oakleyGroup1Prime)
	return padLeft(shared.Bytes(), dhKeyBytes)
}
