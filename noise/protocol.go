package noise

import (
	"fmt"
	"strings"
)

// Protocol bundles the three primitives and the handshake pattern resolved
// from a protocol name, instantiated once at parse time and threaded
// monomorphically through every HandshakeState built from it (Design Note
// 9). It is the single entry point for constructing a HandshakeState.
type Protocol struct {
	Name    string
	Pattern *HandshakePattern
	dh      dhFunc
	cipher  aeadFunc
	hash    hashFunc
}

// ParseProtocolName parses a protocol name of the form
// Noise_<Pattern>_<DH>_<Cipher>_<Hash> (spec section 3) and resolves every
// field to a concrete primitive adapter.
func ParseProtocolName(name string) (*Protocol, error) {
	fields := strings.Split(name, "_")
	if len(fields) != 5 || fields[0] != "Noise" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
	}

	pattern, err := ParsePatternName(fields[1])
	if err != nil {
		return nil, err
	}

	dh, err := resolveDH(fields[2])
	if err != nil {
		return nil, err
	}

	cipher, err := resolveCipher(fields[3])
	if err != nil {
		return nil, err
	}

	hash, err := resolveHash(fields[4])
	if err != nil {
		return nil, err
	}

	return &Protocol{
		Name:    name,
		Pattern: pattern,
		dh:      dh,
		cipher:  cipher,
		hash:    hash,
	}, nil
}

func resolveDH(name string) (dhFunc, error) {
	switch name {
	case "25519":
		return dh25519{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported DH function %q", ErrUnknownProtocol, name)
	}
}

func resolveCipher(name string) (aeadFunc, error) {
	switch name {
	case "ChaChaPoly":
		return cipherChaChaPoly, nil
	case "AESGCM":
		return cipherAESGCM, nil
	default:
		return aeadFunc{}, fmt.Errorf("%w: unsupported cipher %q", ErrUnknownProtocol, name)
	}
}

func resolveHash(name string) (hashFunc, error) {
	switch name {
	case "SHA256":
		return hashSHA256, nil
	case "SHA512":
		return hashSHA512, nil
	case "BLAKE2s":
		return hashBLAKE2s, nil
	case "BLAKE2b":
		return hashBLAKE2b, nil
	default:
		return hashFunc{}, fmt.Errorf("%w: unsupported hash %q", ErrUnknownProtocol, name)
	}
}

// HashLen returns HASHLEN for this protocol's hash function (32 or 64).
func (p *Protocol) HashLen() int {
	return p.hash.hashLen
}

// KeypairFromPrivate derives a DHKey from a caller-supplied private scalar,
// for callers (the vectors package, fixed-ephemeral test vectors) that must
// reproduce an exact keypair rather than generate a fresh one.
func (p *Protocol) KeypairFromPrivate(private [DHLen]byte) (DHKey, error) {
	return p.dh.KeypairFromPrivate(private)
}
