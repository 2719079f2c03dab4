package noise

import (
	"errors"
	"testing"
)

func TestParsePatternNameBase(t *testing.T) {
	p, err := ParsePatternName("XX")
	if err != nil {
		t.Fatalf("ParsePatternName: %v", err)
	}
	if len(p.MessagePatterns) != 3 {
		t.Fatalf("got %d message patterns, want 3", len(p.MessagePatterns))
	}
	if p.OneWay() {
		t.Fatalf("XX should not be one-way")
	}
}

func TestOneWayIgnoresPSKModifiers(t *testing.T) {
	p, err := ParsePatternName("Npsk0")
	if err != nil {
		t.Fatalf("ParsePatternName: %v", err)
	}
	if !p.OneWay() {
		t.Fatalf("Npsk0 should still be one-way despite the psk0 modifier")
	}
}

func TestParsePatternNameUnknown(t *testing.T) {
	if _, err := ParsePatternName("ZZ"); !errors.Is(err, ErrUnknownPattern) {
		t.Fatalf("error = %v, want ErrUnknownPattern", err)
	}
}

func TestParsePatternNamePSK0InsertsAtFront(t *testing.T) {
	p, err := ParsePatternName("NNpsk0")
	if err != nil {
		t.Fatalf("ParsePatternName: %v", err)
	}
	if p.MessagePatterns[0][0] != TokenPSK {
		t.Fatalf("psk0 should insert psk at the front of message 0, got %v", p.MessagePatterns[0])
	}
}

func TestParsePatternNamePSKNAppendsAtEnd(t *testing.T) {
	p, err := ParsePatternName("NNpsk2")
	if err != nil {
		t.Fatalf("ParsePatternName: %v", err)
	}
	last := p.MessagePatterns[1]
	if last[len(last)-1] != TokenPSK {
		t.Fatalf("psk2 should append psk to the end of message 1, got %v", last)
	}
}

func TestParsePatternNamePSKOutOfRange(t *testing.T) {
	if _, err := ParsePatternName("NNpsk5"); !errors.Is(err, ErrBadPatternModifier) {
		t.Fatalf("error = %v, want ErrBadPatternModifier", err)
	}
}

func TestParsePatternNameStackedModifiers(t *testing.T) {
	p, err := ParsePatternName("NNpsk0psk2")
	if err != nil {
		t.Fatalf("ParsePatternName: %v", err)
	}
	if p.MessagePatterns[0][0] != TokenPSK {
		t.Fatalf("expected psk0 at front of message 0")
	}
	last := p.MessagePatterns[1]
	if last[len(last)-1] != TokenPSK {
		t.Fatalf("expected psk2 at end of message 1")
	}
}

func TestParseProtocolNameUnknownCipher(t *testing.T) {
	if _, err := ParseProtocolName("Noise_XX_25519_Bogus_SHA256"); !errors.Is(err, ErrUnknownProtocol) {
		t.Fatalf("error = %v, want ErrUnknownProtocol", err)
	}
}

func TestParseProtocolNameWrongFieldCount(t *testing.T) {
	if _, err := ParseProtocolName("Noise_XX_25519_ChaChaPoly"); !errors.Is(err, ErrUnknownProtocol) {
		t.Fatalf("error = %v, want ErrUnknownProtocol", err)
	}
}
