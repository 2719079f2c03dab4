package noise

import "errors"

// Sentinel errors for every failure mode the handshake core can produce.
// Callers should compare with errors.Is, since most call sites wrap these
// with additional context via fmt.Errorf("%w", ...).
var (
	// ErrUnknownProtocol is returned when a protocol name does not parse
	// into a (pattern, DH, cipher, hash) tuple.
	ErrUnknownProtocol = errors.New("noise: unknown protocol name")

	// ErrUnknownPattern is returned by the pattern registry for a base
	// pattern name it does not recognize.
	ErrUnknownPattern = errors.New("noise: unknown handshake pattern")

	// ErrBadPatternModifier is returned for a psk modifier with an
	// out-of-range message index.
	ErrBadPatternModifier = errors.New("noise: bad pattern modifier")

	// ErrMissingKey is returned when a token requires a key (local or
	// remote, static or ephemeral) that was not supplied.
	ErrMissingKey = errors.New("noise: required key missing")

	// ErrShortMessage is returned when an input buffer is shorter than
	// the tokens being processed require.
	ErrShortMessage = errors.New("noise: message is too short")

	// ErrDecryptFailed is returned on AEAD tag verification failure. The
	// CipherState's nonce is left un-incremented.
	ErrDecryptFailed = errors.New("noise: decryption failed")

	// ErrNonceExhausted is returned once a CipherState's counter would
	// reach 2^64-1.
	ErrNonceExhausted = errors.New("noise: nonce space exhausted")

	// ErrDHFailed is returned by a DH adapter on a low-order point or
	// other primitive-level failure.
	ErrDHFailed = errors.New("noise: DH operation failed")

	// ErrOutOfTurn is returned when write/read is called against the
	// wrong side of the pattern's alternation.
	ErrOutOfTurn = errors.New("noise: called out of turn")

	// ErrHandshakeComplete is returned when write/read is called after
	// the pattern's message list has already been exhausted.
	ErrHandshakeComplete = errors.New("noise: handshake already complete")

	// ErrMessageTooLong is returned by WriteMessage when the caller-supplied
	// payload alone is longer than MaxMessageLen. The token fields and AEAD
	// tag written around the payload are not counted in this check.
	ErrMessageTooLong = errors.New("noise: message exceeds maximum length")
)

// MaxMessageLen is the maximum size, in bytes, of any handshake or
// transport message (spec section 6).
const MaxMessageLen = 65535
