package noise

// symmetricState threads the rolling chaining key and transcript hash
// through every handshake operation, per spec section 4.2. It owns the
// single CipherState used for handshake-phase (not transport-phase)
// encryption.
type symmetricState struct {
	hash  hashFunc
	cs    *cipherState
	ck    []byte // len == hash.hashLen
	h     []byte // len == hash.hashLen
}

// initializeSymmetric seeds ck and h from the protocol name, per spec
// section 3: h = name, zero-padded to HASHLEN if short enough, else
// h = HASH(name); ck = h; cs starts unkeyed.
func initializeSymmetric(h hashFunc, aead aeadFunc, protocolName string) *symmetricState {
	name := []byte(protocolName)
	hv := make([]byte, h.hashLen)
	if len(name) <= h.hashLen {
		copy(hv, name)
	} else {
		copy(hv, h.Hash(name))
	}
	ck := make([]byte, h.hashLen)
	copy(ck, hv)
	return &symmetricState{
		hash: h,
		cs:   newCipherState(aead),
		ck:   ck,
		h:    hv,
	}
}

// MixKey derives a new chaining key and handshake cipher key from ikm, per spec
// section 4.2: (ck, tempK) = HKDF2(ck, ikm); tempK is truncated to 32 bytes
// even when HASHLEN is 64, and re-initializes cs.
func (s *symmetricState) MixKey(ikm []byte) {
	newCk, tempK := s.hash.HKDF2(s.ck, ikm)
	s.ck = newCk
	var k [aeadKeyLen]byte
	copy(k[:], tempK[:aeadKeyLen])
	s.cs.InitializeKey(k)
}

// MixHash folds data into the running transcript hash: h = HASH(h || data).
func (s *symmetricState) MixHash(data []byte) {
	buf := make([]byte, 0, len(s.h)+len(data))
	buf = append(buf, s.h...)
	buf = append(buf, data...)
	s.h = s.hash.Hash(buf)
}

// MixKeyAndHash mixes a PSK into both ck and h, per spec section 4.2:
// (ck, tempH, tempK) = HKDF3(ck, psk); mix_hash(tempH); cs re-initialized
// with tempK truncated to 32 bytes.
func (s *symmetricState) MixKeyAndHash(psk []byte) {
	newCk, tempH, tempK := s.hash.HKDF3(s.ck, psk)
	s.ck = newCk
	s.MixHash(tempH)
	var k [aeadKeyLen]byte
	copy(k[:], tempK[:aeadKeyLen])
	s.cs.InitializeKey(k)
}

// EncryptAndHash encrypts plaintext under h as associated data, then mixes
// the ciphertext into h.
func (s *symmetricState) EncryptAndHash(plaintext []byte) ([]byte, error) {
	ct, err := s.cs.EncryptWithAd(s.h, plaintext)
	if err != nil {
		return nil, err
	}
	s.MixHash(ct)
	return ct, nil
}

// DecryptAndHash decrypts ciphertext under h as associated data. The raw
// ciphertext (not the recovered plaintext) is mixed into h, and that mix
// happens even though the caller receives the plaintext, matching spec
// section 4.2's ordering ("mix_hash(ciphertext) BEFORE overwrite").
func (s *symmetricState) DecryptAndHash(ciphertext []byte) ([]byte, error) {
	pt, err := s.cs.DecryptWithAd(s.h, ciphertext)
	if err != nil {
		return nil, err
	}
	s.MixHash(ciphertext)
	return pt, nil
}

// Split derives the two transport CipherStates from the final chaining key,
// per spec section 4.2: (tempK1, tempK2) = HKDF2(ck, empty); each truncated
// to 32 bytes. c1 is initiator-to-responder, c2 is responder-to-initiator.
func (s *symmetricState) Split() (c1, c2 *CipherState) {
	k1, k2 := s.hash.HKDF2(s.ck, nil)
	var key1, key2 [aeadKeyLen]byte
	copy(key1[:], k1[:aeadKeyLen])
	copy(key2[:], k2[:aeadKeyLen])

	cs1 := newCipherState(s.cs.aead)
	cs1.InitializeKey(key1)
	cs2 := newCipherState(s.cs.aead)
	cs2.InitializeKey(key2)
	return &CipherState{inner: cs1}, &CipherState{inner: cs2}
}

// Destroy zeroes the chaining key, transcript hash, and handshake cipher
// key. The transcript hash is often retained by callers for channel
// binding; Destroy is for when the HandshakeState itself is being dropped
// and channel binding is no longer needed.
func (s *symmetricState) Destroy() {
	zero(s.ck)
	zero(s.h)
	s.cs.Destroy()
}

// HandshakeHash returns a copy of the current transcript hash, usable as a
// channel-binding value once the handshake has completed (spec section 4.5).
func (s *symmetricState) HandshakeHash() []byte {
	out := make([]byte, len(s.h))
	copy(out, s.h)
	return out
}
