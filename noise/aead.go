package noise

import (
	stdaes "crypto/aes"
	stdcipher "crypto/cipher"
	"encoding/binary"

	"golang.org/x/crypto/chacha20poly1305"
)

// aeadKeyLen and aeadNonceLen are fixed across every supported cipher, per
// spec section 2's "AEAD cipher primitive": 32-byte key, 12-byte nonce,
// 16-byte tag.
const (
	aeadKeyLen   = 32
	aeadNonceLen = 12
	aeadTagLen   = 16
)

// aeadFunc is the AEAD adapter contract of spec section 2/4.1. Both
// supported ciphers are constructed from a raw 32-byte key on every call
// rather than cached, mirroring the teacher's NewAEAD in
// crypto/ciphersuites.go, which re-derives the cipher.AEAD per key.
type aeadFunc struct {
	name string
	new  func(key [aeadKeyLen]byte) (stdcipher.AEAD, error)
}

var (
	cipherChaChaPoly = aeadFunc{
		name: "ChaChaPoly",
		new: func(key [aeadKeyLen]byte) (stdcipher.AEAD, error) {
			return chacha20poly1305.New(key[:])
		},
	}
	cipherAESGCM = aeadFunc{
		name: "AESGCM",
		new: func(key [aeadKeyLen]byte) (stdcipher.AEAD, error) {
			block, err := stdaes.NewCipher(key[:])
			if err != nil {
				return nil, err
			}
			return stdcipher.NewGCM(block)
		},
	}
)

// nonce96 builds the 12-byte Noise nonce for counter n: 4 zero bytes
// followed by the 8-byte little-endian encoding of n (spec section 4.1).
func nonce96(n uint64) [aeadNonceLen]byte {
	var out [aeadNonceLen]byte
	binary.LittleEndian.PutUint64(out[4:], n)
	return out
}
