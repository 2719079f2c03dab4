package noise

import (
	"fmt"
	"strconv"
	"strings"
)

// Token is the closed set of handshake-pattern operations from spec
// section 1/4.3. Keeping this a small int enum (rather than an open string
// or interface) lets the driver in handshake.go dispatch with an exhaustive
// switch, per Design Note 9.
type Token int

const (
	TokenE Token = iota
	TokenS
	TokenEE
	TokenES
	TokenSE
	TokenSS
	TokenPSK
)

func (t Token) String() string {
	switch t {
	case TokenE:
		return "e"
	case TokenS:
		return "s"
	case TokenEE:
		return "ee"
	case TokenES:
		return "es"
	case TokenSE:
		return "se"
	case TokenSS:
		return "ss"
	case TokenPSK:
		return "psk"
	default:
		return "?"
	}
}

// PreMessageToken is the token set allowed in a premessage: only e or s.
type PreMessageToken int

const (
	PreMessageNone PreMessageToken = iota
	PreMessageE
	PreMessageS
)

// HandshakePattern is the parsed form of a Noise pattern name, per spec
// section 3: optional premessage tokens for each party plus an ordered list
// of per-message token lists.
type HandshakePattern struct {
	Name                string
	Base                string
	PreMessageInitiator PreMessageToken
	PreMessageResponder PreMessageToken
	MessagePatterns     [][]Token
}

// OneWay reports whether this is one of the one-way patterns (N, K, X):
// after the handshake, only initiator-to-responder transport traffic is
// defined (spec section 4.3). It compares against Base, the pattern name
// as looked up in basePatterns, since Name carries psk modifiers appended
// by ParsePatternName (e.g. "Npsk0").
func (p *HandshakePattern) OneWay() bool {
	switch p.Base {
	case "N", "K", "X":
		return true
	default:
		return false
	}
}

// clone returns a deep copy so callers (HandshakeState) can hold and mutate
// their own copy of the message pattern list without aliasing the
// registry's canonical copy.
func (p *HandshakePattern) clone() *HandshakePattern {
	out := &HandshakePattern{
		Name:                p.Name,
		Base:                p.Base,
		PreMessageInitiator: p.PreMessageInitiator,
		PreMessageResponder: p.PreMessageResponder,
		MessagePatterns:     make([][]Token, len(p.MessagePatterns)),
	}
	for i, msg := range p.MessagePatterns {
		out.MessagePatterns[i] = append([]Token(nil), msg...)
	}
	return out
}

// basePatterns is the fixed table of fundamental Noise handshake patterns,
// per the Noise Protocol Framework specification's pattern tables (section
// 7.2/7.3 of noiseprotocol.org rev 34) and grounded on the parsed shape
// produced by other_examples' amvtek-KerPass patterns.go (premessages +
// ordered message token lists per sender).
var basePatterns = map[string]HandshakePattern{
	"N": {
		Name:                "N",
		PreMessageResponder: PreMessageS,
		MessagePatterns:     [][]Token{{TokenE, TokenES}},
	},
	"K": {
		Name:                "K",
		PreMessageInitiator: PreMessageS,
		PreMessageResponder: PreMessageS,
		MessagePatterns:     [][]Token{{TokenE, TokenES, TokenSS}},
	},
	"X": {
		Name:                "X",
		PreMessageResponder: PreMessageS,
		MessagePatterns:     [][]Token{{TokenE, TokenES, TokenS, TokenSS}},
	},
	"NN": {
		Name: "NN",
		MessagePatterns: [][]Token{
			{TokenE},
			{TokenE, TokenEE},
		},
	},
	"NK": {
		Name:                "NK",
		PreMessageResponder: PreMessageS,
		MessagePatterns: [][]Token{
			{TokenE, TokenES},
			{TokenE, TokenEE},
		},
	},
	"NX": {
		Name: "NX",
		MessagePatterns: [][]Token{
			{TokenE},
			{TokenE, TokenEE, TokenS, TokenES},
		},
	},
	"XN": {
		Name: "XN",
		MessagePatterns: [][]Token{
			{TokenE},
			{TokenE, TokenEE},
			{TokenS, TokenSE},
		},
	},
	"XK": {
		Name:                "XK",
		PreMessageResponder: PreMessageS,
		MessagePatterns: [][]Token{
			{TokenE, TokenES},
			{TokenE, TokenEE},
			{TokenS, TokenSE},
		},
	},
	"XX": {
		Name: "XX",
		MessagePatterns: [][]Token{
			{TokenE},
			{TokenE, TokenEE, TokenS, TokenES},
			{TokenS, TokenSE},
		},
	},
	"KN": {
		Name:                "KN",
		PreMessageInitiator: PreMessageS,
		MessagePatterns: [][]Token{
			{TokenE},
			{TokenE, TokenEE, TokenSE},
		},
	},
	"KK": {
		Name:                "KK",
		PreMessageInitiator: PreMessageS,
		PreMessageResponder: PreMessageS,
		MessagePatterns: [][]Token{
			{TokenE, TokenES, TokenSS},
			{TokenE, TokenEE, TokenSE},
		},
	},
	"KX": {
		Name:                "KX",
		PreMessageInitiator: PreMessageS,
		MessagePatterns: [][]Token{
			{TokenE},
			{TokenE, TokenEE, TokenSE, TokenS, TokenES},
		},
	},
	"IN": {
		Name: "IN",
		MessagePatterns: [][]Token{
			{TokenE, TokenS},
			{TokenE, TokenEE, TokenSE},
		},
	},
	"IK": {
		Name:                "IK",
		PreMessageResponder: PreMessageS,
		MessagePatterns: [][]Token{
			{TokenE, TokenES, TokenS, TokenSS},
			{TokenE, TokenEE, TokenSE},
		},
	},
	"IX": {
		Name: "IX",
		MessagePatterns: [][]Token{
			{TokenE, TokenS},
			{TokenE, TokenEE, TokenSE, TokenS, TokenES},
		},
	},
}

// baseNamesLongestFirst lists base pattern names ordered so that a greedy
// longest-prefix match picks the two-letter name first: the one-way names
// "N", "K" and "X" are prefixes of "NN", "KK", "XX" and others, so checking
// them first would mis-parse every interactive pattern.
var baseNamesLongestFirst = []string{
	"NN", "NK", "NX", "XN", "XK", "XX", "KN", "KK", "KX", "IN", "IK", "IX",
	"N", "K", "X",
}

// ParsePatternName parses a pattern name such as "XX", "IK", or "NNpsk2"
// into a HandshakePattern, per spec section 4.3. It rejects an unknown base
// name with ErrUnknownPattern and an out-of-range psk index with
// ErrBadPatternModifier.
func ParsePatternName(name string) (*HandshakePattern, error) {
	var base string
	for _, candidate := range baseNamesLongestFirst {
		if strings.HasPrefix(name, candidate) {
			base = candidate
			break
		}
	}
	if base == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
	bp, ok := basePatterns[base]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
	pattern := bp.clone()
	pattern.Base = base
	pattern.Name = name

	modifiers := name[len(base):]
	indices, err := parsePSKModifiers(modifiers)
	if err != nil {
		return nil, err
	}
	for _, idx := range indices {
		if idx < 0 || idx > len(pattern.MessagePatterns) {
			return nil, fmt.Errorf("%w: psk%d out of range for pattern %q", ErrBadPatternModifier, idx, base)
		}
		if idx == 0 {
			pattern.MessagePatterns[0] = append([]Token{TokenPSK}, pattern.MessagePatterns[0]...)
		} else {
			pattern.MessagePatterns[idx-1] = append(pattern.MessagePatterns[idx-1], TokenPSK)
		}
	}
	return pattern, nil
}

// parsePSKModifiers parses a concatenated run of "psk<digit>" modifiers,
// e.g. "psk0psk2", returning the parsed indices in order.
func parsePSKModifiers(s string) ([]int, error) {
	var indices []int
	for len(s) > 0 {
		if !strings.HasPrefix(s, "psk") {
			return nil, fmt.Errorf("%w: unrecognized modifier %q", ErrBadPatternModifier, s)
		}
		s = s[3:]
		if len(s) == 0 {
			return nil, fmt.Errorf("%w: psk modifier missing index", ErrBadPatternModifier)
		}
		digits := 0
		for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
			digits++
		}
		if digits == 0 {
			return nil, fmt.Errorf("%w: psk modifier missing index", ErrBadPatternModifier)
		}
		n, err := strconv.Atoi(s[:digits])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPatternModifier, err)
		}
		indices = append(indices, n)
		s = s[digits:]
	}
	return indices, nil
}
