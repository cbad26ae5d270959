package core

import (
	"net/http"
	"time"

	"github.com/fischerling/cspot-go/src/librespot/cerrors"
	"github.com/fischerling/cspot-go/src/librespot/connection"
	"github.com/fischerling/cspot-go/src/librespot/discovery"
	"github.com/fischerling/cspot-go/src/librespot/spotify"
)

const (
	cmdLogin       = 0xab
	cmdAPWelcome   = 0xac
	cmdAuthFailure = 0xad

	// systemInformationString identifies the SystemInfo.system_information_string
	// field of a login request.
	systemInformationString = "cspot-player"
	// versionString identifies the login request's version_string field.
	versionString = "cspot-1.1"
)

// Session owns one logical connection to an Access Point: the raw
// handshake that establishes Shannon keys, and the login exchange that
// turns a LoginBlob's decoded Credentials into an authenticated
// PacketStream.
type Session struct {
	httpClient     *http.Client
	receiveTimeout time.Duration

	stream connection.PacketStream
}

// NewSession creates a Session that will resolve and connect to an
// Access Point using httpClient for the apresolve HTTP request (nil
// selects http.DefaultClient). receiveTimeout bounds every subsequent
// read from the Access Point (the handshake's APResponse and
// Authenticate's reply); <= 0 selects connection.DefaultReceiveTimeout.
func NewSession(httpClient *http.Client, receiveTimeout time.Duration) *Session {
	if receiveTimeout <= 0 {
		receiveTimeout = connection.DefaultReceiveTimeout
	}
	return &Session{httpClient: httpClient, receiveTimeout: receiveTimeout}
}

// Connect performs the Access Point handshake, after which the session
// is ready for Authenticate. Connect must be called exactly once before
// Authenticate.
func (s *Session) Connect() error {
	result, err := runHandshake(s.httpClient, s.receiveTimeout)
	if err != nil {
		return err
	}
	s.stream = connection.NewShannonStream(result.conn, result.sendKey, result.recvKey)
	return nil
}

// Authenticate sends a login request built from blob's decoded
// Credentials and the given deviceID (normally the same ID the blob
// itself advertised over ZeroConf), then waits for the Access Point's
// reply.
//
// On success it returns the decoded APWelcome. A well-formed decline
// (command 0xad) is reported as cerrors.ErrAuthDeclined; any other
// reply command is reported via *cerrors.UnexpectedCommand.
func (s *Session) Authenticate(blob *discovery.LoginBlob, deviceID string) (spotify.APWelcome, error) {
	creds := blob.Credentials()

	login := spotify.ClientResponseEncrypted{
		LoginCredentials: spotify.LoginCredentials{
			Username: creds.Username,
			Typ:      spotify.AuthenticationType(creds.AuthType),
			AuthData: creds.AuthData,
		},
		SystemInfo: spotify.SystemInfo{
			CPUFamily:               spotify.CPUUnknown,
			OS:                      spotify.OSUnknown,
			SystemInformationString: systemInformationString,
			DeviceID:                deviceID,
		},
		VersionString: versionString,
	}

	if err := s.stream.SendPacket(cmdLogin, login.Marshal()); err != nil {
		return spotify.APWelcome{}, err
	}

	cmd, payload, err := s.stream.RecvPacket(s.receiveTimeout)
	if err != nil {
		return spotify.APWelcome{}, err
	}

	switch cmd {
	case cmdAPWelcome:
		return spotify.UnmarshalAPWelcome(payload)
	case cmdAuthFailure:
		return spotify.APWelcome{}, cerrors.ErrAuthDeclined
	default:
		return spotify.APWelcome{}, &cerrors.UnexpectedCommand{Command: cmd}
	}
}
