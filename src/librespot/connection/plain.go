// Package connection implements the two transport layers above a raw
// TCP byte stream used by the Access Point handshake: PlainConnection
// (length-prefixed framing before any encryption exists) and
// ShannonStream (the Shannon-encrypted, nonce-sequenced PacketStream
// used for every message after the handshake completes).
package connection

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// PacketStream is a framed, command-tagged transport: the interface
// Session talks to regardless of whether it is backed by the plain
// pre-handshake stream or the Shannon-encrypted post-handshake one.
// timeout bounds RecvPacket's read; timeout <= 0 means no deadline.
type PacketStream interface {
	SendPacket(cmd byte, payload []byte) error
	RecvPacket(timeout time.Duration) (cmd byte, payload []byte, err error)
}

// PlainConnection is the raw length-prefixed framing used for the
// ClientHello/APResponse/ClientResponsePlaintext exchange, before any
// Shannon key material exists.
type PlainConnection struct {
	rw io.ReadWriter
}

// NewPlainConnection wraps rw (typically a net.Conn) in the prefixed
// framing the AP handshake uses.
func NewPlainConnection(rw io.ReadWriter) *PlainConnection {
	return &PlainConnection{rw: rw}
}

// SendPrefixPacket writes prefix || be32(len(prefix)+4+len(data)) ||
// data and returns the full frame it sent (the caller needs it intact
// to feed the handshake's key schedule).
func (c *PlainConnection) SendPrefixPacket(prefix, data []byte) ([]byte, error) {
	size := uint32(len(prefix) + 4 + len(data))
	frame := make([]byte, 0, size)
	frame = append(frame, prefix...)
	frame = binary.BigEndian.AppendUint32(frame, size)
	frame = append(frame, data...)

	if _, err := c.rw.Write(frame); err != nil {
		return nil, fmt.Errorf("connection: send prefix packet: %w", err)
	}
	return frame, nil
}

// RecvPacket reads a 4-byte big-endian total length followed by that
// many bytes, and returns the length field plus payload as one slice
// (callers skip the length field themselves, matching the handshake's
// "skip first 4 bytes" step). timeout bounds the whole read; timeout
// <= 0 means no deadline.
func (c *PlainConnection) RecvPacket(timeout time.Duration) ([]byte, error) {
	if err := armReadDeadline(c.rw, timeout); err != nil {
		return nil, fmt.Errorf("connection: set read deadline: %w", err)
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(c.rw, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("connection: recv packet length: %w", asRecvError(err))
	}
	total := binary.BigEndian.Uint32(lenBuf[:])
	if total < 4 {
		return nil, fmt.Errorf("connection: recv packet: invalid length %d", total)
	}
	rest := make([]byte, total-4)
	if _, err := io.ReadFull(c.rw, rest); err != nil {
		return nil, fmt.Errorf("connection: recv packet body: %w", asRecvError(err))
	}
	return append(lenBuf[:], rest...), nil
}
