// Package cerrors defines the error taxonomy surfaced by a cspot-go
// session, matching the policy table of the handshake/session design:
// each kind is either fatal to the session or retryable by the caller.
package cerrors

import "errors"

var (
	// ErrTimeout is returned when a receive exceeds its deadline.
	ErrTimeout = errors.New("cspot: receive timeout")
	// ErrResolveFailed is returned when the AP resolver returns a
	// non-200 status.
	ErrResolveFailed = errors.New("cspot: ap resolve failed")
	// ErrNoAp is returned when the AP resolver returns an empty list.
	ErrNoAp = errors.New("cspot: no access point available")
	// ErrHandshakeFailed covers any protocol-level failure during the
	// AP handshake (short read, decode error, missing challenge).
	ErrHandshakeFailed = errors.New("cspot: ap handshake failed")
	// ErrBadMac is returned when a Shannon-framed packet's MAC does not
	// verify, or when a login blob's checksum does not match.
	ErrBadMac = errors.New("cspot: mac verification failed")
	// ErrAuthDeclined is returned when the AP rejects the login
	// credentials (command 0xad).
	ErrAuthDeclined = errors.New("cspot: authentication declined")
	// ErrTruncatedBlob is returned when a login blob is shorter than
	// its fixed-size fields require.
	ErrTruncatedBlob = errors.New("cspot: truncated login blob")
	// ErrMissingField is returned when a ZeroConf POST body is missing
	// a required field.
	ErrMissingField = errors.New("cspot: missing required field")
	// ErrBadBase64 is returned when a field expected to be base64 does
	// not decode.
	ErrBadBase64 = errors.New("cspot: invalid base64")
	// ErrBadPadding is returned when AES-ECB output cannot be
	// interpreted (not used for padding validation per se, since the
	// blob format carries no PKCS#7 padding, but kept for decode
	// failures downstream of the ECB stage).
	ErrBadPadding = errors.New("cspot: invalid padding")
)

// UnexpectedCommand is returned by Session.Authenticate when the AP
// responds with a command byte that is neither the success nor the
// decline code.
type UnexpectedCommand struct {
	Command byte
}

func (e *UnexpectedCommand) Error() string {
	return "cspot: unexpected command from ap: " + byteHex(e.Command)
}

func byteHex(b byte) string {
	const hex = "0123456789abcdef"
	return "0x" + string([]byte{hex[b>>4], hex[b&0xf]})
}
