package connection

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/fischerling/cspot-go/src/librespot/cerrors"
)

// DefaultReceiveTimeout is the receive timeout used when a caller
// doesn't configure one explicitly.
const DefaultReceiveTimeout = 1000 * time.Millisecond

// deadlineSetter is the subset of net.Conn that RecvPacket needs to
// bound a read. Test doubles that don't support deadlines (e.g. a
// bytes.Buffer) simply never time out.
type deadlineSetter interface {
	SetReadDeadline(t time.Time) error
}

// armReadDeadline sets rw's read deadline timeout from now, if rw
// supports it and timeout is positive. timeout <= 0 means "no deadline".
func armReadDeadline(rw io.ReadWriter, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}
	d, ok := rw.(deadlineSetter)
	if !ok {
		return nil
	}
	return d.SetReadDeadline(time.Now().Add(timeout))
}

// asRecvError maps a deadline-exceeded read error to cerrors.ErrTimeout
// so callers can branch with errors.Is regardless of the underlying
// transport.
func asRecvError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return cerrors.ErrTimeout
	}
	return err
}
