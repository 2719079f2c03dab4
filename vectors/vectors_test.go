package vectors

import (
	"encoding/hex"
	"testing"

	"noiseflow/noise"
)

// buildSelfConsistentVector drives a real Noise_NN handshake plus one
// transport message and hex-encodes the result into a Vector, so Run can be
// checked against data this package itself produced rather than an
// external fixture.
func buildSelfConsistentVector(t *testing.T) Vector {
	t.Helper()

	proto, err := noise.ParseProtocolName("Noise_NN_25519_ChaChaPoly_SHA256")
	if err != nil {
		t.Fatalf("ParseProtocolName: %v", err)
	}
	// Fixed ephemerals, recorded in the vector, so Run regenerates the
	// same wire bytes.
	var initEphPriv, respEphPriv [noise.DHLen]byte
	for i := range initEphPriv {
		initEphPriv[i] = byte(i + 1)
		respEphPriv[i] = byte(0x65 + i)
	}
	initEph, err := proto.KeypairFromPrivate(initEphPriv)
	if err != nil {
		t.Fatalf("KeypairFromPrivate: %v", err)
	}
	respEph, err := proto.KeypairFromPrivate(respEphPriv)
	if err != nil {
		t.Fatalf("KeypairFromPrivate: %v", err)
	}
	initHS, err := proto.Initialize(noise.Initiator, nil, nil, noise.Keys{E: &initEph})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	respHS, err := proto.Initialize(noise.Responder, nil, nil, noise.Keys{E: &respEph})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	v := Vector{
		ProtocolName:  "Noise_NN_25519_ChaChaPoly_SHA256",
		InitEphemeral: hex.EncodeToString(initEphPriv[:]),
		RespEphemeral: hex.EncodeToString(respEphPriv[:]),
	}

	msg1, _, _, err := initHS.WriteMessage(nil, []byte("ping"))
	if err != nil {
		t.Fatalf("WriteMessage 1: %v", err)
	}
	if _, _, _, err := respHS.ReadMessage(nil, msg1); err != nil {
		t.Fatalf("ReadMessage 1: %v", err)
	}
	v.Messages = append(v.Messages, MessagePair{Payload: hex.EncodeToString([]byte("ping")), Ciphertext: hex.EncodeToString(msg1)})

	msg2, respC1, respC2, err := respHS.WriteMessage(nil, []byte("pong"))
	if err != nil {
		t.Fatalf("WriteMessage 2: %v", err)
	}
	_, initC1, initC2, err := initHS.ReadMessage(nil, msg2)
	if err != nil {
		t.Fatalf("ReadMessage 2: %v", err)
	}
	v.Messages = append(v.Messages, MessagePair{Payload: hex.EncodeToString([]byte("pong")), Ciphertext: hex.EncodeToString(msg2)})

	// c1 is the initiator-to-responder direction on both sides: the
	// initiator encrypts with its own c1, the responder decrypts with
	// its own c1.
	transportCt, err := initC1.EncryptWithAd(nil, []byte("transport"))
	if err != nil {
		t.Fatalf("transport EncryptWithAd: %v", err)
	}
	if _, err := respC1.DecryptWithAd(nil, transportCt); err != nil {
		t.Fatalf("transport DecryptWithAd: %v", err)
	}
	_ = initC2
	_ = respC2
	v.Messages = append(v.Messages, MessagePair{Payload: hex.EncodeToString([]byte("transport")), Ciphertext: hex.EncodeToString(transportCt)})

	v.HandshakeHash = hex.EncodeToString(initHS.HandshakeHash())
	return v
}

func TestRunSelfConsistentVectorPasses(t *testing.T) {
	v := buildSelfConsistentVector(t)
	result := Run(v)
	if !result.Passed {
		t.Fatalf("Run failed: %s", result.Reason)
	}
}

func TestRunRejectsBadProtocolName(t *testing.T) {
	result := Run(Vector{ProtocolName: "not a protocol"})
	if result.Passed {
		t.Fatalf("expected failure for an invalid protocol name")
	}
}

func TestRunDetectsCiphertextMismatch(t *testing.T) {
	v := buildSelfConsistentVector(t)
	v.Messages[0].Ciphertext = hex.EncodeToString(make([]byte, 32))
	result := Run(v)
	if result.Passed {
		t.Fatalf("expected failure for a tampered ciphertext vector")
	}
}

// TestRunKnownAnswerVectorNN checks Run against a
// Noise_NN_25519_ChaChaPoly_SHA256 transcript computed by an independent,
// from-scratch Python implementation of X25519 (RFC 7748),
// ChaCha20-Poly1305 (RFC 8439), and the Noise handshake algorithm itself --
// not derived from this package's own output, so a systematic bug here (a
// wrong HKDF info byte, a wrong nonce encoding, and so on) cannot pass by
// construction the way a self-consistent vector would. It also carries three
// transport messages (two initiator-to-responder, one responder-to-initiator),
// exercising the parity alternation an interactive pattern requires.
func TestRunKnownAnswerVectorNN(t *testing.T) {
	v := Vector{
		ProtocolName:  "Noise_NN_25519_ChaChaPoly_SHA256",
		InitEphemeral: "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20",
		RespEphemeral: "65666768696a6b6c6d6e6f707172737475767778797a7b7c7d7e7f8081828384",
		HandshakeHash: "70c2f0254fd9ab6c577bcf5b0a97360ad255bb39630a936ce4eaa0badc9cec2b",
		Messages: []MessagePair{
			{Payload: "70696e67", Ciphertext: "07a37cbc142093c8b755dc1b10e86cb426374ad16aa853ed0bdfc0b2b86d1c7c70696e67"},
			{Payload: "706f6e67", Ciphertext: "5714769d116bf76436ae74bc793d2c30ad1903c59ac5273805c7e2698b410c368dfa929d4f312013efad40a71a6f89e591fc17be"},
			{Payload: "7472616e73706f72742d30", Ciphertext: "c2d9929a00fe0b216be4ca83c7aef967ef3869c2f35498a08ffa03"},
			{Payload: "7472616e73706f72742d31", Ciphertext: "f401db1bc1e7c55dcf03a93f9594c8361b28c14347249bbc8f3d36"},
			{Payload: "7472616e73706f72742d32", Ciphertext: "72701fbdf858a2fafd08eab10c12bc1975a5b28d46c61ed13c7dd0"},
		},
	}
	result := Run(v)
	if !result.Passed {
		t.Fatalf("Run failed: %s", result.Reason)
	}
}
