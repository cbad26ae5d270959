package spotify

import "google.golang.org/protobuf/encoding/protowire"

// Field numbers below are internal to this module's wire codec; they
// are not required to match Spotify's real (undocumented) schema, only
// to round-trip consistently between this client's own encoder and
// decoder, which is all the core protocol in spec.md requires.
const (
	fnBuildInfoProduct  protowire.Number = 1
	fnBuildInfoPlatform protowire.Number = 2
	fnBuildInfoVersion  protowire.Number = 3

	fnDHHelloGc              protowire.Number = 1
	fnDHHelloServerKeysKnown protowire.Number = 2

	fnLoginCryptoHelloDH protowire.Number = 10

	fnFeatureSetAutoupdate2 protowire.Number = 1

	fnClientHelloBuildInfo     protowire.Number = 1
	fnClientHelloCryptosuite   protowire.Number = 3
	fnClientHelloLoginCrypto   protowire.Number = 5
	fnClientHelloClientNonce   protowire.Number = 6
	fnClientHelloPadding       protowire.Number = 7
	fnClientHelloFeatureSet    protowire.Number = 8

	fnDHChallengeGs protowire.Number = 1

	fnLoginChallengeDH protowire.Number = 10

	fnAPChallengeLoginCrypto protowire.Number = 10

	fnAPResponseChallenge protowire.Number = 10

	fnDHResponseHmac protowire.Number = 1

	fnLoginResponseDH protowire.Number = 10

	fnClientResponsePlaintextLoginCrypto protowire.Number = 1

	fnLoginCredentialsUsername protowire.Number = 1
	fnLoginCredentialsTyp      protowire.Number = 2
	fnLoginCredentialsAuthData protowire.Number = 3

	fnSystemInfoCPUFamily protowire.Number = 1
	fnSystemInfoOS        protowire.Number = 3
	fnSystemInfoString    protowire.Number = 5
	fnSystemInfoDeviceID  protowire.Number = 6

	fnClientResponseEncryptedLoginCredentials protowire.Number = 10
	fnClientResponseEncryptedSystemInfo       protowire.Number = 20
	fnClientResponseEncryptedVersionString    protowire.Number = 30

	fnAPWelcomeCanonicalUsername        protowire.Number = 1
	fnAPWelcomeReusableAuthCredentials  protowire.Number = 11
)

// ClientHello is the first message sent to the Access Point.
type ClientHello struct {
	BuildInfo             BuildInfo
	CryptosuitesSupported []Cryptosuite
	ClientNonce           []byte
	Padding               []byte
	ServerKeysKnown       uint32
	DiffieHellmanGc       []byte
	Autoupdate2           bool
}

type BuildInfo struct {
	Product  Product
	Platform Platform
	Version  uint64
}

// Marshal encodes the ClientHello to its wire representation.
func (c ClientHello) Marshal() []byte {
	dh := appendBytesField(nil, fnDHHelloGc, c.DiffieHellmanGc)
	dh = appendVarintField(dh, fnDHHelloServerKeysKnown, uint64(c.ServerKeysKnown))
	loginCrypto := appendMessageField(nil, fnLoginCryptoHelloDH, dh)

	build := appendVarintField(nil, fnBuildInfoProduct, uint64(c.BuildInfo.Product))
	build = appendVarintField(build, fnBuildInfoPlatform, uint64(c.BuildInfo.Platform))
	build = appendVarintField(build, fnBuildInfoVersion, c.BuildInfo.Version)

	features := appendBoolField(nil, fnFeatureSetAutoupdate2, c.Autoupdate2)

	var out []byte
	out = appendMessageField(out, fnClientHelloBuildInfo, build)
	for _, cs := range c.CryptosuitesSupported {
		out = appendVarintField(out, fnClientHelloCryptosuite, uint64(cs))
	}
	out = appendMessageField(out, fnClientHelloLoginCrypto, loginCrypto)
	out = appendBytesField(out, fnClientHelloClientNonce, c.ClientNonce)
	out = appendBytesField(out, fnClientHelloPadding, c.Padding)
	out = appendMessageField(out, fnClientHelloFeatureSet, features)
	return out
}

// APResponseMessage is the server's hello response, reduced to whether
// it carried a DH challenge and the server's DH public value.
type APResponseMessage struct {
	HasChallenge    bool
	DiffieHellmanGs []byte
}

// UnmarshalAPResponseMessage decodes the server's hello response.
func UnmarshalAPResponseMessage(b []byte) (APResponseMessage, error) {
	top, err := parseFields(b)
	if err != nil {
		return APResponseMessage{}, err
	}
	challengeField, ok := findField(top, fnAPResponseChallenge)
	if !ok {
		return APResponseMessage{}, nil
	}

	challenge, err := parseFields(challengeField.bytes)
	if err != nil {
		return APResponseMessage{}, err
	}
	loginCryptoField, ok := findField(challenge, fnAPChallengeLoginCrypto)
	if !ok {
		return APResponseMessage{}, nil
	}

	loginCrypto, err := parseFields(loginCryptoField.bytes)
	if err != nil {
		return APResponseMessage{}, err
	}
	dhField, ok := findField(loginCrypto, fnLoginChallengeDH)
	if !ok {
		return APResponseMessage{}, nil
	}

	dh, err := parseFields(dhField.bytes)
	if err != nil {
		return APResponseMessage{}, err
	}
	gsField, ok := findField(dh, fnDHChallengeGs)
	if !ok {
		return APResponseMessage{}, nil
	}

	return APResponseMessage{HasChallenge: true, DiffieHellmanGs: gsField.bytes}, nil
}

// ClientResponsePlaintext is the reply carrying the challenge HMAC.
type ClientResponsePlaintext struct {
	HMAC []byte
}

func (c ClientResponsePlaintext) Marshal() []byte {
	dh := appendBytesField(nil, fnDHResponseHmac, c.HMAC)
	loginCrypto := appendMessageField(nil, fnLoginResponseDH, dh)
	return appendMessageField(nil, fnClientResponsePlaintextLoginCrypto, loginCrypto)
}

// LoginCredentials carries the credentials derived from a LoginBlob.
type LoginCredentials struct {
	Username string
	Typ      AuthenticationType
	AuthData []byte
}

// SystemInfo describes the client platform presented during login.
type SystemInfo struct {
	CPUFamily               CPUFamily
	OS                      OS
	SystemInformationString string
	DeviceID                string
}

// ClientResponseEncrypted is the 0xab login-request payload.
type ClientResponseEncrypted struct {
	LoginCredentials LoginCredentials
	SystemInfo       SystemInfo
	VersionString    string
}

func (c ClientResponseEncrypted) Marshal() []byte {
	creds := appendStringField(nil, fnLoginCredentialsUsername, c.LoginCredentials.Username)
	creds = appendVarintField(creds, fnLoginCredentialsTyp, uint64(c.LoginCredentials.Typ))
	creds = appendBytesField(creds, fnLoginCredentialsAuthData, c.LoginCredentials.AuthData)

	sysinfo := appendVarintField(nil, fnSystemInfoCPUFamily, uint64(c.SystemInfo.CPUFamily))
	sysinfo = appendVarintField(sysinfo, fnSystemInfoOS, uint64(c.SystemInfo.OS))
	sysinfo = appendStringField(sysinfo, fnSystemInfoString, c.SystemInfo.SystemInformationString)
	sysinfo = appendStringField(sysinfo, fnSystemInfoDeviceID, c.SystemInfo.DeviceID)

	var out []byte
	out = appendMessageField(out, fnClientResponseEncryptedLoginCredentials, creds)
	out = appendMessageField(out, fnClientResponseEncryptedSystemInfo, sysinfo)
	out = appendStringField(out, fnClientResponseEncryptedVersionString, c.VersionString)
	return out
}

// APWelcome is the 0xac login-success payload.
type APWelcome struct {
	CanonicalUsername       string
	ReusableAuthCredentials []byte
}

func UnmarshalAPWelcome(b []byte) (APWelcome, error) {
	fields, err := parseFields(b)
	if err != nil {
		return APWelcome{}, err
	}
	var w APWelcome
	if f, ok := findField(fields, fnAPWelcomeCanonicalUsername); ok {
		w.CanonicalUsername = string(f.bytes)
	}
	if f, ok := findField(fields, fnAPWelcomeReusableAuthCredentials); ok {
		w.ReusableAuthCredentials = f.bytes
	}
	return w, nil
}
