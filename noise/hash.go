package noise

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	xhkdf "golang.org/x/crypto/hkdf"
)

// hashFunc is the Hash adapter contract of spec section 4.7: a fixed digest
// length plus hash/hmac/hkdf2/hkdf3 derived mechanically from the standard
// library's hash.Hash, following the same "adapt a stdlib/x-crypto hash
// constructor" shape the teacher uses for sha256 throughout crypto/noise.go.
type hashFunc struct {
	name    string
	hashLen int
	newHash func() hash.Hash
}

func (h hashFunc) Hash(data []byte) []byte {
	d := h.newHash()
	d.Write(data)
	return d.Sum(nil)
}

func (h hashFunc) HMAC(key, data []byte) []byte {
	m := hmac.New(h.newHash, key)
	m.Write(data)
	return m.Sum(nil)
}

// HKDF2 implements the two-output HKDF construction of spec section 4.2:
// (ck, tempK) = HKDF2(ck, ikm). Internally this is RFC 5869 extract-then-
// expand with an empty info string, which is exactly what Noise's own HKDF
// definition reduces to for fixed-length, label-free outputs.
func (h hashFunc) HKDF2(chainingKey, ikm []byte) (out1, out2 []byte) {
	prk := xhkdf.Extract(h.newHash, ikm, chainingKey)
	r := xhkdf.Expand(h.newHash, prk, nil)
	out1 = make([]byte, h.hashLen)
	out2 = make([]byte, h.hashLen)
	io.ReadFull(r, out1)
	io.ReadFull(r, out2)
	return out1, out2
}

// HKDF3 is the three-output variant used by mix_key_and_hash.
func (h hashFunc) HKDF3(chainingKey, ikm []byte) (out1, out2, out3 []byte) {
	prk := xhkdf.Extract(h.newHash, ikm, chainingKey)
	r := xhkdf.Expand(h.newHash, prk, nil)
	out1 = make([]byte, h.hashLen)
	out2 = make([]byte, h.hashLen)
	out3 = make([]byte, h.hashLen)
	io.ReadFull(r, out1)
	io.ReadFull(r, out2)
	io.ReadFull(r, out3)
	return out1, out2, out3
}

var (
	hashSHA256 = hashFunc{name: "SHA256", hashLen: 32, newHash: sha256.New}
	hashSHA512 = hashFunc{name: "SHA512", hashLen: 64, newHash: sha512.New}
	hashBLAKE2s = hashFunc{name: "BLAKE2s", hashLen: 32, newHash: func() hash.Hash {
		h, _ := blake2s.New256(nil)
		return h
	}}
	hashBLAKE2b = hashFunc{name: "BLAKE2b", hashLen: 64, newHash: func() hash.Hash {
		h, _ := blake2b.New512(nil)
		return h
	}}
)
