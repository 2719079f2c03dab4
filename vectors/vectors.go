// Package vectors decodes the Noise test-vector JSON corpus and drives a
// pair of noise.HandshakeStates through it, per spec.md section 6's
// "external harness" contract. Nothing here is imported by package noise:
// the core library stays I/O-free and unaware that vectors exist.
package vectors

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"noiseflow/noise"
)

// MessagePair is one handshake or transport exchange: the plaintext the
// sender fed in and the ciphertext the wire is expected to carry.
type MessagePair struct {
	Payload    string `json:"payload"`
	Ciphertext string `json:"ciphertext"`
}

// Vector is one decoded test case, field-for-field matching spec.md
// section 6's JSON schema.
type Vector struct {
	ProtocolName string `json:"protocol_name"`

	InitPrologue      string `json:"init_prologue"`
	InitPSKs          string `json:"init_psks,omitempty"`
	InitEphemeral     string `json:"init_ephemeral"`
	InitStatic        string `json:"init_static,omitempty"`
	InitRemoteStatic  string `json:"init_remote_static,omitempty"`

	RespPrologue     string `json:"resp_prologue"`
	RespPSKs         string `json:"resp_psks,omitempty"`
	RespStatic       string `json:"resp_static,omitempty"`
	RespEphemeral    string `json:"resp_ephemeral,omitempty"`
	RespRemoteStatic string `json:"resp_remote_static,omitempty"`

	HandshakeHash string `json:"handshake_hash"`

	Messages []MessagePair `json:"messages"`
}

// Suite is the top-level shape of a vector file: {"vectors": [...]}.
type Suite struct {
	Vectors []Vector `json:"vectors"`
}

// DecodeSuite reads a Suite from r.
func DecodeSuite(r io.Reader) (*Suite, error) {
	var s Suite
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("vectors: decode suite: %w", err)
	}
	return &s, nil
}

// Result reports the outcome of running one Vector.
type Result struct {
	Name    string
	Passed  bool
	Reason  string
}

func fail(name, format string, args ...interface{}) *Result {
	return &Result{Name: name, Passed: false, Reason: fmt.Sprintf(format, args...)}
}

func pass(name string) *Result {
	return &Result{Name: name, Passed: true}
}

func decodeHex(field, s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("vectors: field %s: %w", field, err)
	}
	return b, nil
}

// buildKeys decodes the optional static/ephemeral/remote-static hex fields
// for one side of a vector into a noise.Keys, applying the fixed-ephemeral
// test hook (spec.md section 5: "a test-only hook may inject a fixed
// ephemeral") whenever the vector supplies one.
func buildKeys(proto *noise.Protocol, staticHex, ephemeralHex, remoteStaticHex string) (noise.Keys, error) {
	var keys noise.Keys

	if staticHex != "" {
		priv, err := decodeHex("static", staticHex)
		if err != nil {
			return keys, err
		}
		var p [noise.DHLen]byte
		copy(p[:], priv)
		kp, err := proto.KeypairFromPrivate(p)
		if err != nil {
			return keys, err
		}
		keys.S = &kp
	}

	if ephemeralHex != "" {
		priv, err := decodeHex("ephemeral", ephemeralHex)
		if err != nil {
			return keys, err
		}
		var p [noise.DHLen]byte
		copy(p[:], priv)
		kp, err := proto.KeypairFromPrivate(p)
		if err != nil {
			return keys, err
		}
		keys.E = &kp
	}

	if remoteStaticHex != "" {
		pub, err := decodeHex("remote_static", remoteStaticHex)
		if err != nil {
			return keys, err
		}
		var rs [noise.DHLen]byte
		copy(rs[:], pub)
		keys.RS = &rs
	}

	return keys, nil
}

// Run drives an initiator and a responder HandshakeState through v in
// lock-step, checking every testable property from spec.md section 8:
// per-message wire bytes and recovered payloads, the final handshake hash,
// and transport-phase traffic in both directions (one-way patterns use only
// c1; interactive patterns alternate c1/c2 by message parity).
func Run(v Vector) *Result {
	proto, err := noise.ParseProtocolName(v.ProtocolName)
	if err != nil {
		return fail(v.ProtocolName, "parse protocol name: %v", err)
	}

	initPrologue, err := decodeHex("init_prologue", v.InitPrologue)
	if err != nil {
		return fail(v.ProtocolName, "%v", err)
	}
	respPrologue, err := decodeHex("resp_prologue", v.RespPrologue)
	if err != nil {
		return fail(v.ProtocolName, "%v", err)
	}
	initPSKs, err := decodeHex("init_psks", v.InitPSKs)
	if err != nil {
		return fail(v.ProtocolName, "%v", err)
	}
	respPSKs, err := decodeHex("resp_psks", v.RespPSKs)
	if err != nil {
		return fail(v.ProtocolName, "%v", err)
	}

	initKeys, err := buildKeys(proto, v.InitStatic, v.InitEphemeral, v.InitRemoteStatic)
	if err != nil {
		return fail(v.ProtocolName, "init keys: %v", err)
	}
	respKeys, err := buildKeys(proto, v.RespStatic, v.RespEphemeral, v.RespRemoteStatic)
	if err != nil {
		return fail(v.ProtocolName, "resp keys: %v", err)
	}

	initHS, err := proto.Initialize(noise.Initiator, initPrologue, initPSKs, initKeys)
	if err != nil {
		return fail(v.ProtocolName, "init handshake: %v", err)
	}
	respHS, err := proto.Initialize(noise.Responder, respPrologue, respPSKs, respKeys)
	if err != nil {
		return fail(v.ProtocolName, "resp handshake: %v", err)
	}

	numHandshakeMsgs := len(proto.Pattern.MessagePatterns)
	var c1i, c2i, c1r, c2r *noise.CipherState

	for i, msg := range v.Messages {
		wantPayload, err := decodeHex("payload", msg.Payload)
		if err != nil {
			return fail(v.ProtocolName, "message %d: %v", i, err)
		}
		wantCiphertext, err := decodeHex("ciphertext", msg.Ciphertext)
		if err != nil {
			return fail(v.ProtocolName, "message %d: %v", i, err)
		}

		if i < numHandshakeMsgs {
			sender, receiver := initHS, respHS
			if i%2 == 1 {
				sender, receiver = respHS, initHS
			}

			ct, c1, c2, err := sender.WriteMessage(nil, wantPayload)
			if err != nil {
				return fail(v.ProtocolName, "message %d write: %v", i, err)
			}
			if !bytesEqual(ct, wantCiphertext) {
				return fail(v.ProtocolName, "message %d: ciphertext mismatch", i)
			}

			pt, rc1, rc2, err := receiver.ReadMessage(nil, ct)
			if err != nil {
				return fail(v.ProtocolName, "message %d read: %v", i, err)
			}
			if !bytesEqual(pt, wantPayload) {
				return fail(v.ProtocolName, "message %d: payload mismatch", i)
			}

			if i%2 == 1 {
				c1i, c2i = rc1, rc2
				c1r, c2r = c1, c2
			} else {
				c1i, c2i = c1, c2
				c1r, c2r = rc1, rc2
			}
			continue
		}

		// Transport phase: one-way patterns use only c1 (initiator to
		// responder) repeatedly, per spec.md section 8 property 3.
		// Interactive patterns alternate direction by parity, per section 8
		// property 4: even offsets are initiator-to-responder (c1), odd
		// offsets are responder-to-initiator (c2), mirroring
		// cmd/noiseflow-demo's direction convention.
		sender, receiver := c1i, c1r
		if !proto.Pattern.OneWay() && (i-numHandshakeMsgs)%2 == 1 {
			sender, receiver = c2r, c2i
		}

		ct, err := sender.EncryptWithAd(nil, wantPayload)
		if err != nil {
			return fail(v.ProtocolName, "transport message %d encrypt: %v", i, err)
		}
		if !bytesEqual(ct, wantCiphertext) {
			return fail(v.ProtocolName, "transport message %d: ciphertext mismatch", i)
		}
		pt, err := receiver.DecryptWithAd(nil, ct)
		if err != nil {
			return fail(v.ProtocolName, "transport message %d decrypt: %v", i, err)
		}
		if !bytesEqual(pt, wantPayload) {
			return fail(v.ProtocolName, "transport message %d: payload mismatch", i)
		}
	}

	wantHash, err := decodeHex("handshake_hash", v.HandshakeHash)
	if err != nil {
		return fail(v.ProtocolName, "%v", err)
	}
	if len(wantHash) > 0 {
		gotHash := initHS.HandshakeHash()
		if !bytesEqual(gotHash, wantHash) {
			return fail(v.ProtocolName, "handshake hash mismatch")
		}
	}

	return pass(v.ProtocolName)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
