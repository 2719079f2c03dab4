package noise

import "fmt"

// Role identifies which side of the handshake a HandshakeState drives.
// Message pattern index 0 is always written by the Initiator, index 1 by
// the Responder, and so on (spec section 3's alternating-ownership
// invariant).
type Role int

const (
	Initiator Role = iota
	Responder
)

// Keys supplies the local/remote key material a HandshakeState is
// initialized with. Any field may be nil/absent; absence is only an error
// if the active pattern's premessages or tokens require that field.
type Keys struct {
	// S is the local static keypair.
	S *DHKey
	// E is a caller-supplied local ephemeral keypair. Production callers
	// must leave this nil so a fresh ephemeral is generated per
	// handshake (spec section 5); a test harness may set it to
	// reproduce a fixed-ephemeral vector.
	E *DHKey
	// RS is the remote party's static public key, known in advance for
	// patterns with a static premessage token on the other side (N, K, X,
	// NK, XK, KN, KK, KX, IK) or learned from an 's' token read mid-handshake.
	RS *[DHLen]byte
	// RE is the remote party's ephemeral public key, only ever known in
	// advance for patterns with an 'e' premessage token on the other side.
	RE *[DHLen]byte
}

// HandshakeState drives writeMessage/readMessage over a Protocol's pattern,
// per spec section 4.4. It is not safe for concurrent use and is dead
// (all fields best treated as destroyed) once Split() has been called.
type HandshakeState struct {
	proto *Protocol
	ss    *symmetricState
	role  Role
	pattern *HandshakePattern

	s, e   *DHKey
	rs, re *[DHLen]byte

	msgIdx int
	done   bool

	psks   []byte
	pskIdx int
}

// Initialize constructs a HandshakeState for one party, per spec section
// 4.4: seeds the SymmetricState from the protocol name, mixes in the
// prologue, then mixes in premessage public keys (local ones for the party
// that owns them, remote ones — required present — for the other party).
func (p *Protocol) Initialize(role Role, prologue []byte, psks []byte, keys Keys) (*HandshakeState, error) {
	pattern := p.Pattern.clone()
	ss := initializeSymmetric(p.hash, p.cipher, p.Name)
	ss.MixHash(prologue)

	hs := &HandshakeState{
		proto:   p,
		ss:      ss,
		role:    role,
		pattern: pattern,
		s:       keys.S,
		e:       keys.E,
		rs:      keys.RS,
		re:      keys.RE,
		psks:    psks,
	}

	if err := hs.mixPreMessage(pattern.PreMessageInitiator, Initiator); err != nil {
		return nil, err
	}
	if err := hs.mixPreMessage(pattern.PreMessageResponder, Responder); err != nil {
		return nil, err
	}

	return hs, nil
}

// mixPreMessage mixes the premessage token owned by owner into the
// transcript hash: the local public key if hs.role == owner, else the
// corresponding remote public key (which must already be present).
func (hs *HandshakeState) mixPreMessage(token PreMessageToken, owner Role) error {
	if token == PreMessageNone {
		return nil
	}
	if hs.role == owner {
		switch token {
		case PreMessageS:
			if hs.s == nil {
				return fmt.Errorf("%w: local static key required by premessage", ErrMissingKey)
			}
			hs.ss.MixHash(hs.s.Public[:])
		case PreMessageE:
			if hs.e == nil {
				return fmt.Errorf("%w: local ephemeral key required by premessage", ErrMissingKey)
			}
			hs.ss.MixHash(hs.e.Public[:])
		}
		return nil
	}
	switch token {
	case PreMessageS:
		if hs.rs == nil {
			return fmt.Errorf("%w: remote static key required by premessage", ErrMissingKey)
		}
		hs.ss.MixHash(hs.rs[:])
	case PreMessageE:
		if hs.re == nil {
			return fmt.Errorf("%w: remote ephemeral key required by premessage", ErrMissingKey)
		}
		hs.ss.MixHash(hs.re[:])
	}
	return nil
}

// writerForIndex reports which Role writes message pattern index i.
func writerForIndex(i int) Role {
	if i%2 == 0 {
		return Initiator
	}
	return Responder
}

// WriteMessage processes the next unconsumed message pattern as the writer,
// appending the wire bytes for payload to out and returning them. If this
// call exhausts the pattern, the two transport CipherStates from Split are
// also returned (spec section 4.4); otherwise both are nil.
func (hs *HandshakeState) WriteMessage(out, payload []byte) ([]byte, *CipherState, *CipherState, error) {
	if hs.done {
		return nil, nil, nil, ErrHandshakeComplete
	}
	if hs.msgIdx >= len(hs.pattern.MessagePatterns) {
		return nil, nil, nil, ErrHandshakeComplete
	}
	if writerForIndex(hs.msgIdx) != hs.role {
		return nil, nil, nil, ErrOutOfTurn
	}
	if len(payload) > MaxMessageLen {
		return nil, nil, nil, ErrMessageTooLong
	}

	tokens := hs.pattern.MessagePatterns[hs.msgIdx]
	for _, tok := range tokens {
		switch tok {
		case TokenE:
			if hs.e == nil {
				kp, err := hs.proto.dh.GenerateKeypair()
				if err != nil {
					return nil, nil, nil, err
				}
				hs.e = &kp
			}
			out = append(out, hs.e.Public[:]...)
			hs.ss.MixHash(hs.e.Public[:])
			if len(hs.psks) > 0 {
				hs.ss.MixKey(hs.e.Public[:])
			}

		case TokenS:
			if hs.s == nil {
				return nil, nil, nil, fmt.Errorf("%w: local static key required by 's' token", ErrMissingKey)
			}
			ct, err := hs.ss.EncryptAndHash(hs.s.Public[:])
			if err != nil {
				return nil, nil, nil, err
			}
			out = append(out, ct...)

		case TokenEE, TokenES, TokenSE, TokenSS:
			ikm, err := hs.dhToken(tok)
			if err != nil {
				return nil, nil, nil, err
			}
			hs.ss.MixKey(ikm)

		case TokenPSK:
			psk, err := hs.nextPSK()
			if err != nil {
				return nil, nil, nil, err
			}
			hs.ss.MixKeyAndHash(psk)
		}
	}

	ct, err := hs.ss.EncryptAndHash(payload)
	if err != nil {
		return nil, nil, nil, err
	}
	out = append(out, ct...)

	hs.msgIdx++
	if hs.msgIdx >= len(hs.pattern.MessagePatterns) {
		hs.done = true
		c1, c2 := hs.ss.Split()
		return out, c1, c2, nil
	}
	return out, nil, nil, nil
}

// ReadMessage is the mirror of WriteMessage: it consumes message bytes for
// the next unprocessed message pattern as the reader, appending the
// recovered payload to out.
func (hs *HandshakeState) ReadMessage(out, message []byte) ([]byte, *CipherState, *CipherState, error) {
	if hs.done {
		return nil, nil, nil, ErrHandshakeComplete
	}
	if hs.msgIdx >= len(hs.pattern.MessagePatterns) {
		return nil, nil, nil, ErrHandshakeComplete
	}
	if writerForIndex(hs.msgIdx) == hs.role {
		return nil, nil, nil, ErrOutOfTurn
	}

	tokens := hs.pattern.MessagePatterns[hs.msgIdx]
	for _, tok := range tokens {
		switch tok {
		case TokenE:
			if len(message) < DHLen {
				return nil, nil, nil, ErrShortMessage
			}
			var re [DHLen]byte
			copy(re[:], message[:DHLen])
			message = message[DHLen:]
			hs.re = &re
			hs.ss.MixHash(hs.re[:])
			if len(hs.psks) > 0 {
				hs.ss.MixKey(hs.re[:])
			}

		case TokenS:
			expected := DHLen
			if hs.ss.cs.HasKey() {
				expected += aeadTagLen
			}
			if len(message) < expected {
				return nil, nil, nil, ErrShortMessage
			}
			rs, err := hs.ss.DecryptAndHash(message[:expected])
			if err != nil {
				return nil, nil, nil, err
			}
			message = message[expected:]
			var rsArr [DHLen]byte
			copy(rsArr[:], rs)
			hs.rs = &rsArr

		case TokenEE, TokenES, TokenSE, TokenSS:
			ikm, err := hs.dhToken(tok)
			if err != nil {
				return nil, nil, nil, err
			}
			hs.ss.MixKey(ikm)

		case TokenPSK:
			psk, err := hs.nextPSK()
			if err != nil {
				return nil, nil, nil, err
			}
			hs.ss.MixKeyAndHash(psk)
		}
	}

	expectedTrailer := 0
	if hs.ss.cs.HasKey() {
		expectedTrailer = aeadTagLen
	}
	if len(message) < expectedTrailer {
		return nil, nil, nil, ErrShortMessage
	}

	pt, err := hs.ss.DecryptAndHash(message)
	if err != nil {
		return nil, nil, nil, err
	}
	out = append(out, pt...)

	hs.msgIdx++
	if hs.msgIdx >= len(hs.pattern.MessagePatterns) {
		hs.done = true
		c1, c2 := hs.ss.Split()
		return out, c1, c2, nil
	}
	return out, nil, nil, nil
}

// dhToken performs the DH calculation for one of ee/es/se/ss, choosing the
// local/remote keypair per the table in spec section 4.4.
func (hs *HandshakeState) dhToken(tok Token) ([]byte, error) {
	var local *DHKey
	var remote *[DHLen]byte

	switch tok {
	case TokenEE:
		local, remote = hs.e, hs.re
	case TokenES:
		if hs.role == Initiator {
			local, remote = hs.e, hs.rs
		} else {
			local, remote = hs.s, hs.re
		}
	case TokenSE:
		if hs.role == Initiator {
			local, remote = hs.s, hs.re
		} else {
			local, remote = hs.e, hs.rs
		}
	case TokenSS:
		local, remote = hs.s, hs.rs
	}

	if local == nil || remote == nil {
		return nil, fmt.Errorf("%w: missing key for %s token", ErrMissingKey, tok)
	}
	shared, err := hs.proto.dh.DH(*local, *remote)
	if err != nil {
		return nil, err
	}
	return shared[:], nil
}

// nextPSK returns the next 32-byte slice of the PSK buffer and advances the
// cursor, or ErrMissingKey if the buffer has been exhausted or was never
// supplied.
func (hs *HandshakeState) nextPSK() ([]byte, error) {
	start := hs.pskIdx * 32
	end := start + 32
	if end > len(hs.psks) {
		return nil, fmt.Errorf("%w: psk buffer exhausted", ErrMissingKey)
	}
	hs.pskIdx++
	return hs.psks[start:end], nil
}

// HandshakeHash returns the current transcript hash, usable as a channel
// binding once the handshake is complete (spec section 4.5).
func (hs *HandshakeState) HandshakeHash() []byte {
	return hs.ss.HandshakeHash()
}

// LocalStatic and RemoteStatic expose the static keys a completed (or
// in-progress) handshake has learned, for callers that want to record the
// peer's identity.
func (hs *HandshakeState) LocalStatic() *DHKey      { return hs.s }
func (hs *HandshakeState) RemoteStatic() *[DHLen]byte { return hs.rs }

// Destroy zeroes every piece of secret state still owned by this
// HandshakeState: the symmetric state's chaining key and handshake cipher
// key, and both local keypairs. It does not touch CipherStates already
// returned by Split, since those have been transferred to the caller.
func (hs *HandshakeState) Destroy() {
	hs.ss.Destroy()
	if hs.s != nil {
		hs.s.Destroy()
	}
	if hs.e != nil {
		hs.e.Destroy()
	}
}
