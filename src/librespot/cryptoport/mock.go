package cryptoport

// MockPort is a deterministic Port test double: DH sessions return a
// fixed shared secret regardless of the remote key, and random bytes
// are taken from a caller-supplied, repeating source. It lets tests
// pin down the DH shared secret (the LoginBlob decode tests use it to
// build blobs against a known secret) without needing real randomness.
type MockPort struct {
	OSPort

	// FixedShared, when non-nil, is returned verbatim by every
	// DHSession.SharedSecret call produced by this port.
	FixedShared []byte
	// FixedPublic, when non-nil, is returned by every
	// DHSession.PublicKey call produced by this port.
	FixedPublic []byte
	// FixedRandom, when non-nil, is returned (truncated/repeated to
	// length) by RandomBytes instead of crypto/rand.
	FixedRandom []byte
}

var _ Port = (*MockPort)(nil)

func (m *MockPort) DHInit() (DHSession, error) {
	return mockDHSession{m: m}, nil
}

func (m *MockPort) RandomBytes(n int) ([]byte, error) {
	if m.FixedRandom == nil {
		return m.OSPort.RandomBytes(n)
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = m.FixedRandom[i%len(m.FixedRandom)]
	}
	return out, nil
}

type mockDHSession struct {
	m *MockPort
}

func (d mockDHSession) PublicKey() []byte {
	if d.m.FixedPublic != nil {
		return d.m.FixedPublic
	}
	return make([]byte, 96)
}

func (d mockDHSession) SharedSecret(remotePublic []byte) []byte {
	if d.m.FixedShared != nil {
		return d.m.FixedShared
	}
	return make([]byte, 96)
}
