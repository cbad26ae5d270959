// Package spotify hand-encodes the small set of Keyexchange and
// Authentication protocol messages the core needs (ClientHello,
// APResponseMessage, ClientResponsePlaintext, ClientResponseEncrypted,
// APWelcome), using the wire-level primitives from
// google.golang.org/protobuf/encoding/protowire. A full generated
// pb.go (via protoc) is out of scope for this exercise — the protobuf
// serializer itself is an external collaborator per design, and this
// package is the thin, hand-written stand-in for it.
package spotify

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Enumerations used by the messages below. Values follow the
// Keyexchange/Authentication proto definitions used by the Spotify
// Connect wire protocol.
type (
	Product            int32
	Platform           int32
	Cryptosuite         int32
	AuthenticationType  int32
	CPUFamily           int32
	OS                  int32
)

const (
	ProductClient Product = 0x01

	PlatformLinuxX86 Platform = 0x02

	CryptosuiteShannon Cryptosuite = 0x00

	AuthUserPass               AuthenticationType = 0x00
	AuthStoredSpotifyCredentials AuthenticationType = 0x01
	AuthSpotifyToken           AuthenticationType = 0x02

	CPUUnknown CPUFamily = 0x00
	OSUnknown  OS        = 0x00
)

// appendTagged helpers keep each message's Marshal readable: one line
// per field, matching the field's proto wire type.

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	return appendBytesField(b, num, []byte(v))
}

func appendMessageField(b []byte, num protowire.Number, msg []byte) []byte {
	return appendBytesField(b, num, msg)
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	u := uint64(0)
	if v {
		u = 1
	}
	return appendVarintField(b, num, u)
}

// field is one decoded top-level field: its number, wire type, and raw
// value bytes (for BytesType) or raw uint64 (for VarintType/Fixed*).
type field struct {
	num   protowire.Number
	typ   protowire.Type
	bytes []byte
	u64   uint64
}

// parseFields performs a single flat pass over a message's wire bytes,
// collecting each top-level field. Nested messages are re-parsed by
// the caller via parseFields on the matching field's bytes.
func parseFields(b []byte) ([]field, error) {
	var out []field
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("spotify: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		var f field
		f.num = num
		f.typ = typ

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("spotify: bad varint: %w", protowire.ParseError(n))
			}
			f.u64 = v
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("spotify: bad bytes: %w", protowire.ParseError(n))
			}
			f.bytes = append([]byte(nil), v...)
			b = b[n:]
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return nil, fmt.Errorf("spotify: bad fixed32: %w", protowire.ParseError(n))
			}
			f.u64 = uint64(v)
			b = b[n:]
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, fmt.Errorf("spotify: bad fixed64: %w", protowire.ParseError(n))
			}
			f.u64 = v
			b = b[n:]
		default:
			return nil, fmt.Errorf("spotify: unsupported wire type %v", typ)
		}

		out = append(out, f)
	}
	return out, nil
}

func findField(fields []field, num protowire.Number) (field, bool) {
	for _, f := range fields {
		if f.num == num {
			return f, true
		}
	}
	return field{}, false
}
