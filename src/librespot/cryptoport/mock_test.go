package cryptoport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockPortFixedSharedSecret(t *testing.T) {
	shared := make([]byte, 96)
	for i := range shared {
		shared[i] = 0x01
	}
	m := &MockPort{FixedShared: shared}

	dh, err := m.DHInit()
	require.NoError(t, err)
	require.Equal(t, shared, dh.SharedSecret([]byte{0x02}))
	require.Equal(t, shared, dh.SharedSecret([]byte{0x03, 0x04}))
}

func TestMockPortFixedRandomRepeats(t *testing.T) {
	m := &MockPort{FixedRandom: []byte{0xaa, 0xbb}}
	b, err := m.RandomBytes(5)
	require.NoError(t, err)
	require.Equal(t, []byte{0xaa, 0xbb, 0xaa, 0xbb, 0xaa}, b)
}

func TestMockPortRandomFallsBackToOS(t *testing.T) {
	m := &MockPort{}
	b, err := m.RandomBytes(8)
	require.NoError(t, err)
	require.Len(t, b, 8)
}

func TestMockPortDefaultPublicKeyWidth(t *testing.T) {
	m := &MockPort{}
	dh, err := m.DHInit()
	require.NoError(t, err)
	require.Len(t, dh.PublicKey(), 96)
}
