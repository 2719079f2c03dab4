package noise

import (
	"crypto/rand"

	"golang.org/x/crypto/curve25519"
)

// DHLen is the length in bytes of a public key and a DH shared secret for
// every DH function set currently supported (only "25519").
const DHLen = 32

// DHKey is a Diffie-Hellman keypair. Presence is tracked by pointer (a nil
// *DHKey is "absent", as in Keys and HandshakeState) rather than by treating
// an all-zero Public as absent.
type DHKey struct {
	Private [DHLen]byte
	Public  [DHLen]byte
}

// dhFunc is the DH adapter contract described in spec section 4.6. It is
// implemented once (dh25519) and selected at Protocol parse time, per
// Design Note 9's "monomorphic" primitive selection.
type dhFunc interface {
	// GenerateKeypair returns a fresh ephemeral or static keypair using
	// an OS CSPRNG.
	GenerateKeypair() (DHKey, error)

	// KeypairFromPrivate derives the public half of a keypair from a
	// caller-supplied 32-byte private scalar.
	KeypairFromPrivate(private [DHLen]byte) (DHKey, error)

	// DH performs a Diffie-Hellman calculation, returning ErrDHFailed
	// if the primitive detects a degenerate (low-order) result.
	DH(local DHKey, remotePublic [DHLen]byte) ([DHLen]byte, error)
}

type dh25519 struct{}

func (dh25519) GenerateKeypair() (DHKey, error) {
	var kp DHKey
	if _, err := rand.Read(kp.Private[:]); err != nil {
		return DHKey{}, err
	}
	clampPrivate(&kp.Private)
	pub, err := curve25519.X25519(kp.Private[:], curve25519.Basepoint)
	if err != nil {
		return DHKey{}, err
	}
	copy(kp.Public[:], pub)
	return kp, nil
}

func (dh25519) KeypairFromPrivate(private [DHLen]byte) (DHKey, error) {
	kp := DHKey{Private: private}
	clampPrivate(&kp.Private)
	pub, err := curve25519.X25519(kp.Private[:], curve25519.Basepoint)
	if err != nil {
		return DHKey{}, err
	}
	copy(kp.Public[:], pub)
	return kp, nil
}

func (dh25519) DH(local DHKey, remotePublic [DHLen]byte) ([DHLen]byte, error) {
	var out [DHLen]byte
	shared, err := curve25519.X25519(local.Private[:], remotePublic[:])
	if err != nil {
		return out, ErrDHFailed
	}
	copy(out[:], shared)
	return out, nil
}

// clampPrivate applies the X25519 clamping rules so that keys generated or
// imported here always behave as valid curve25519 scalars, matching the
// teacher's GeneratePrivateKey in crypto/keyexchange.go.
func clampPrivate(k *[DHLen]byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}

// Destroy zeroes the private half of the keypair. Public material is not
// secret and is left intact.
func (k *DHKey) Destroy() {
	zero(k.Private[:])
}
