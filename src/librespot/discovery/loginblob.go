// Package discovery implements the ZeroConf credential-exchange
// protocol: a LoginBlob that decrypts a locally-transmitted credential
// blob into usable Spotify login credentials, and an Endpoint that
// exposes it over HTTP and mDNS to a controller on the local network.
package discovery

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fischerling/cspot-go/src/librespot/cerrors"
	"github.com/fischerling/cspot-go/src/librespot/cryptoport"
	"github.com/fischerling/cspot-go/src/librespot/utils"
)

const (
	protocolVersion = "2.7.1"
	libraryVersion  = "1.0.0"
	brandName       = "cspot"
)

// Credentials is the result of a successful LoginBlob decode: a
// username and the opaque auth_data a Session can present to an
// Access Point, tagged with the auth_type that says how to interpret
// auth_data.
type Credentials struct {
	Username string
	AuthType uint32
	AuthData []byte
}

// LoginBlob holds one device's ZeroConf identity (its device ID and DH
// keypair) and, once SetInfo succeeds, the decoded Credentials.
type LoginBlob struct {
	port cryptoport.Port

	deviceName string
	deviceID   string
	dh         cryptoport.DHSession

	hasCredentials bool
	credentials    Credentials
}

// NewLoginBlob creates a LoginBlob for the given human-readable device
// name, generating the DH keypair whose public half is advertised via
// GetInfo for the lifetime of this blob.
func NewLoginBlob(deviceName string, port cryptoport.Port) (*LoginBlob, error) {
	dh, err := port.DHInit()
	if err != nil {
		return nil, fmt.Errorf("discovery: new login blob: %w", err)
	}
	return &LoginBlob{
		port:       port,
		deviceName: deviceName,
		deviceID:   utils.GenerateDeviceID(deviceName),
		dh:         dh,
	}, nil
}

// DeviceID returns this blob's 40-hex-char device ID.
func (b *LoginBlob) DeviceID() string { return b.deviceID }

// Credentials returns the decoded credentials. Valid only after
// SetInfo has returned nil.
func (b *LoginBlob) Credentials() Credentials { return b.credentials }

// GetInfo returns the fixed-shape JSON object a controller GETs from
// /spotify_info. Field names are taken verbatim from the cspot-ng
// reference implementation; as a map it carries no field order, and
// GetInfoJSON emits the keys in sorted order.
func (b *LoginBlob) GetInfo() map[string]any {
	availability := ""
	if b.hasCredentials {
		availability = b.credentials.Username
	}

	return map[string]any{
		"status":           101,
		"statusString":     "OK",
		"version":          protocolVersion,
		"spotifyError":     0,
		"libraryVersion":   libraryVersion,
		"accountReq":       "PREMIUM",
		"brandDisplayName": brandName,
		"modelDisplayName": b.deviceName,
		"voiceSupport":     "NO",
		"availability":     availability,
		"productID":        0,
		"tokenType":        "default",
		"groupStatus":      "NONE",
		"resolverVersion":  "0",
		"scope":            "streaming,client-authorization-universal",
		"activeUser":       "",
		"deviceID":         b.deviceID,
		"remoteName":       b.deviceName,
		"publicKey":        b.port.EncodeBase64(b.dh.PublicKey()),
		"deviceType":       "SPEAKER",
	}
}

// GetInfoJSON renders GetInfo as its canonical JSON bytes.
func (b *LoginBlob) GetInfoJSON() ([]byte, error) {
	return json.Marshal(b.GetInfo())
}

// SetInfo parses a POST body already decoded into key/value form (per
// application/x-www-form-urlencoded, percent and + decoded) and, on
// success, populates Credentials and reports true.
func (b *LoginBlob) SetInfo(form url.Values) (bool, error) {
	username := form.Get("userName")
	if username == "" {
		username = form.Get("username")
	}
	blobB64 := form.Get("blob")
	clientKeyB64 := form.Get("clientKey")
	deviceName := form.Get("deviceName")

	if username == "" || blobB64 == "" || clientKeyB64 == "" || deviceName == "" {
		return false, cerrors.ErrMissingField
	}

	clientKey, err := b.port.DecodeBase64(clientKeyB64)
	if err != nil {
		return false, cerrors.ErrBadBase64
	}
	blob, err := b.port.DecodeBase64(blobB64)
	if err != nil {
		return false, cerrors.ErrBadBase64
	}

	shared := b.dh.SharedSecret(clientKey)

	partial, err := decodeBlob(b.port, blob, shared)
	if err != nil {
		return false, err
	}

	loginData, err := decodeBlobSecondary(b.port, partial, username, deviceName)
	if err != nil {
		return false, err
	}

	creds, err := parseLoginData(loginData)
	if err != nil {
		return false, err
	}
	creds.Username = username

	b.credentials = creds
	b.hasCredentials = true
	return true, nil
}

// decodeBlob is stage 1 of the blob decode: verify the HMAC-SHA1
// checksum and AES-128-CTR decrypt the ciphertext.
func decodeBlob(port cryptoport.Port, blob, shared []byte) ([]byte, error) {
	const ivSize = 16
	const checksumSize = 20

	if len(blob) < ivSize+checksumSize {
		return nil, cerrors.ErrTruncatedBlob
	}

	iv := append([]byte(nil), blob[:ivSize]...)
	ciphertext := append([]byte(nil), blob[ivSize:len(blob)-checksumSize]...)
	checksum := blob[len(blob)-checksumSize:]

	baseKey := port.SHA1(shared)[:ivSize]
	checksumKey := port.HMACSHA1(baseKey, []byte("checksum"))
	encryptionKey := port.HMACSHA1(baseKey, []byte("encryption"))[:ivSize]

	mac := port.HMACSHA1(checksumKey, ciphertext)
	if !hmacEqual(mac, checksum) {
		return nil, cerrors.ErrBadMac
	}

	if err := port.AESCTRXCrypt(encryptionKey, iv, ciphertext); err != nil {
		return nil, fmt.Errorf("discovery: decode blob: %w", err)
	}
	return ciphertext, nil
}

func hmacEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// decodeBlobSecondary is stage 2: the stage-1 output is itself base64
// of an AES-128-ECB-encrypted buffer keyed from a PBKDF2 derivation of
// the username and the POST body's raw deviceName field (not this
// blob's own persistent device ID: the secret has to match whatever
// the controller hashed when it encrypted the blob), followed by a
// custom un-whitening pass.
func decodeBlobSecondary(port cryptoport.Port, partial []byte, username, deviceName string) ([]byte, error) {
	blobData, err := port.DecodeBase64(string(partial))
	if err != nil {
		return nil, cerrors.ErrBadBase64
	}

	secret := sha1Bytes(deviceName)
	pkBase := port.PBKDF2HMACSHA1(secret, []byte(username), 256, 20)

	hashed := port.SHA1(pkBase)
	// The trailing four bytes look like a length marker but are never
	// consumed; AES-128 only uses the first 16 bytes of key.
	key := append(append([]byte(nil), hashed...), 0x00, 0x00, 0x00, 0x14)

	if len(blobData)%16 != 0 || len(blobData) < 16 {
		return nil, cerrors.ErrTruncatedBlob
	}
	if err := port.AESECBDecrypt(key[:16], blobData); err != nil {
		return nil, cerrors.ErrBadPadding
	}

	n := len(blobData)
	for i := 0; i < n-16; i++ {
		blobData[n-1-i] ^= blobData[n-17-i]
	}
	return blobData, nil
}

// sha1Bytes is a small helper so decodeBlobSecondary reads like the
// cspot-ng reference's sha1_init/update/final sequence without needing
// the port's streaming SHA1 (which this module's Port never exposes
// beyond the one-shot SHA1(data) form).
func sha1Bytes(s string) []byte {
	sum := sha1.Sum([]byte(s))
	return sum[:]
}

// readVarint reads the blob decoder's 1-or-2-byte length encoding:
// byte&0x80==0 means a one-byte value; otherwise the low 7 bits of the
// first byte and the 7 bits of the second form a 14-bit value. Larger
// values are not representable: a second byte with its top bit set is
// a decode error.
func readVarint(data []byte, pos int) (value uint32, next int, err error) {
	if pos >= len(data) {
		return 0, pos, cerrors.ErrTruncatedBlob
	}
	b0 := data[pos]
	if b0&0x80 == 0 {
		return uint32(b0), pos + 1, nil
	}
	if pos+1 >= len(data) {
		return 0, pos, cerrors.ErrTruncatedBlob
	}
	b1 := data[pos+1]
	if b1&0x80 != 0 {
		return 0, pos, cerrors.ErrBadPadding
	}
	return uint32(b0&0x7f) | uint32(b1)<<7, pos + 2, nil
}

// parseLoginData walks the cleartext login_data layout: skip a byte,
// skip a varint-length field, skip a byte, read auth_type, skip a
// byte, read auth_size bytes as auth_data.
func parseLoginData(data []byte) (Credentials, error) {
	pos := 0

	advance := func(n int) error {
		if pos+n > len(data) {
			return cerrors.ErrTruncatedBlob
		}
		pos += n
		return nil
	}

	if err := advance(1); err != nil {
		return Credentials{}, err
	}

	l1, next, err := readVarint(data, pos)
	if err != nil {
		return Credentials{}, err
	}
	pos = next
	if err := advance(int(l1)); err != nil {
		return Credentials{}, err
	}

	if err := advance(1); err != nil {
		return Credentials{}, err
	}

	authType, next, err := readVarint(data, pos)
	if err != nil {
		return Credentials{}, err
	}
	pos = next

	if err := advance(1); err != nil {
		return Credentials{}, err
	}

	authSize, next, err := readVarint(data, pos)
	if err != nil {
		return Credentials{}, err
	}
	pos = next

	if pos+int(authSize) > len(data) {
		return Credentials{}, cerrors.ErrTruncatedBlob
	}
	authData := append([]byte(nil), data[pos:pos+int(authSize)]...)

	return Credentials{AuthType: authType, AuthData: authData}, nil
}

// writeVarint is the inverse of readVarint, used only by tests to
// synthesize blobs for the round-trip property.
func writeVarint(v uint32) []byte {
	if v < 0x80 {
		return []byte{byte(v)}
	}
	return []byte{byte(v&0x7f) | 0x80, byte(v >> 7)}
}
