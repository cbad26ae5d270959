package connection

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/fischerling/cspot-go/src/librespot/cerrors"
	"github.com/fischerling/cspot-go/src/librespot/crypto"
)

const macSize = 4

// ShannonStream is the framed, Shannon-encrypted PacketStream used for
// every message after the Access Point handshake completes. It
// exclusively owns the underlying byte stream and the send/recv
// cipher pair.
type ShannonStream struct {
	rw io.ReadWriter

	sendCipher crypto.Shannon
	recvCipher crypto.Shannon

	sendSeq uint32
	recvSeq uint32
}

var _ PacketStream = (*ShannonStream)(nil)

// NewShannonStream keys send/recv ciphers from the handshake-derived
// keys and seeds both with nonce 0, matching the nonce-sequencing
// invariant that sender and receiver each start at sequence 0 and
// advance strictly by one per packet in their own direction.
func NewShannonStream(rw io.ReadWriter, sendKey, recvKey []byte) *ShannonStream {
	s := &ShannonStream{rw: rw}
	s.sendCipher.Key(sendKey)
	s.recvCipher.Key(recvKey)

	var zero [4]byte
	s.sendCipher.Nonce(zero[:])
	s.recvCipher.Nonce(zero[:])
	return s
}

// SendPacket frames, encrypts, and writes one packet:
// [command(1) || len_be(2) || payload(len)] encrypted, followed by a
// 4-byte MAC, then advances the send nonce.
func (s *ShannonStream) SendPacket(cmd byte, payload []byte) error {
	if len(payload) > 0xffff {
		return fmt.Errorf("connection: payload too large: %d bytes", len(payload))
	}

	plain := make([]byte, 0, 3+len(payload))
	plain = append(plain, cmd)
	plain = binary.BigEndian.AppendUint16(plain, uint16(len(payload)))
	plain = append(plain, payload...)

	s.sendCipher.Encrypt(plain)

	var mac [macSize]byte
	s.sendCipher.Finish(mac[:])

	out := append(plain, mac[:]...)
	if _, err := s.rw.Write(out); err != nil {
		return fmt.Errorf("connection: send packet: %w", err)
	}

	s.sendSeq++
	s.sendCipher.Nonce(be32(s.sendSeq))
	return nil
}

// RecvPacket reads, decrypts, and MAC-verifies one packet, then
// advances the recv nonce. timeout bounds the whole read (header,
// payload, and MAC); timeout <= 0 means no deadline. A deadline that
// expires mid-read surfaces as cerrors.ErrTimeout.
func (s *ShannonStream) RecvPacket(timeout time.Duration) (byte, []byte, error) {
	if err := armReadDeadline(s.rw, timeout); err != nil {
		return 0, nil, fmt.Errorf("connection: set read deadline: %w", err)
	}

	header := make([]byte, 3)
	if _, err := io.ReadFull(s.rw, header); err != nil {
		return 0, nil, fmt.Errorf("connection: recv header: %w", asRecvError(err))
	}
	s.recvCipher.Decrypt(header)

	cmd := header[0]
	size := binary.BigEndian.Uint16(header[1:3])

	payload := make([]byte, size)
	if size > 0 {
		if _, err := io.ReadFull(s.rw, payload); err != nil {
			return 0, nil, fmt.Errorf("connection: recv payload: %w", asRecvError(err))
		}
	}
	s.recvCipher.Decrypt(payload)

	wireMac := make([]byte, macSize)
	if _, err := io.ReadFull(s.rw, wireMac); err != nil {
		return 0, nil, fmt.Errorf("connection: recv mac: %w", asRecvError(err))
	}

	var expected [macSize]byte
	s.recvCipher.Finish(expected[:])
	if !macEqual(wireMac, expected[:]) {
		return 0, nil, cerrors.ErrBadMac
	}

	s.recvSeq++
	s.recvCipher.Nonce(be32(s.recvSeq))

	return cmd, payload, nil
}

func be32(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

func macEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
