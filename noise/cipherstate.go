package noise

import "fmt"

// cipherState holds a symmetric key and a strictly increasing nonce counter,
// per spec section 4.1. A cipherState with no key is "transparent":
// EncryptWithAd/DecryptWithAd pass data through unchanged, which is what lets
// the handshake driver call these unconditionally before any DH has run.
type cipherState struct {
	aead  aeadFunc
	k     [aeadKeyLen]byte
	keyed bool
	n     uint64
}

func newCipherState(aead aeadFunc) *cipherState {
	return &cipherState{aead: aead}
}

// InitializeKey sets k and resets the nonce counter to zero.
func (c *cipherState) InitializeKey(k [aeadKeyLen]byte) {
	c.k = k
	c.keyed = true
	c.n = 0
}

// HasKey reports whether k is non-empty.
func (c *cipherState) HasKey() bool {
	return c.keyed
}

// SetNonce overrides the counter, used by rekey flows per spec section 4.1.
// No handshake pattern token invokes this; it exists for callers managing
// their own rekey schedule on the post-split transport CipherStates.
func (c *cipherState) SetNonce(n uint64) {
	c.n = n
}

// EncryptWithAd encrypts plaintext under (k, nonce(n), ad) and increments n.
// If no key is set, it returns plaintext unchanged (spec section 4.1).
func (c *cipherState) EncryptWithAd(ad, plaintext []byte) ([]byte, error) {
	if !c.keyed {
		out := make([]byte, len(plaintext))
		copy(out, plaintext)
		return out, nil
	}
	if c.n == ^uint64(0) {
		return nil, ErrNonceExhausted
	}
	aead, err := c.aead.new(c.k)
	if err != nil {
		return nil, fmt.Errorf("noise: cipher init: %w", err)
	}
	nonce := nonce96(c.n)
	out := aead.Seal(nil, nonce[:], plaintext, ad)
	c.n++
	return out, nil
}

// DecryptWithAd is the inverse of EncryptWithAd. On tag failure, n is NOT
// incremented (spec section 4.1) and ErrDecryptFailed is returned.
func (c *cipherState) DecryptWithAd(ad, ciphertext []byte) ([]byte, error) {
	if !c.keyed {
		out := make([]byte, len(ciphertext))
		copy(out, ciphertext)
		return out, nil
	}
	if c.n == ^uint64(0) {
		return nil, ErrNonceExhausted
	}
	aead, err := c.aead.new(c.k)
	if err != nil {
		return nil, fmt.Errorf("noise: cipher init: %w", err)
	}
	nonce := nonce96(c.n)
	out, err := aead.Open(nil, nonce[:], ciphertext, ad)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	c.n++
	return out, nil
}

// Destroy zeroes the key. The nonce counter is not secret.
func (c *cipherState) Destroy() {
	zero(c.k[:])
	c.keyed = false
}

// CipherState is the transport-phase handle returned by Split: one per
// direction. It exposes only the operations a post-handshake caller needs.
type CipherState struct {
	inner *cipherState
}

// EncryptWithAd encrypts plaintext under the transport key, incrementing
// the nonce counter.
func (c *CipherState) EncryptWithAd(ad, plaintext []byte) ([]byte, error) {
	return c.inner.EncryptWithAd(ad, plaintext)
}

// DecryptWithAd decrypts ciphertext under the transport key.
func (c *CipherState) DecryptWithAd(ad, ciphertext []byte) ([]byte, error) {
	return c.inner.DecryptWithAd(ad, ciphertext)
}

// SetNonce overrides the nonce counter, for callers implementing their own
// rekey or out-of-order delivery scheme.
func (c *CipherState) SetNonce(n uint64) {
	c.inner.SetNonce(n)
}

// Destroy zeroes the transport key.
func (c *CipherState) Destroy() {
	c.inner.Destroy()
}
