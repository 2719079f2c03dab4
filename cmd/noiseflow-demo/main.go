// Command noiseflow-demo runs a real Noise_XX handshake between two
// goroutines connected over an actual WebSocket (transport/wspipe), for
// manual smoke-testing outside of the vector corpus.
package main

import (
	"crypto/rand"
	"flag"
	"net"
	"os"
	"time"

	"noiseflow/internal/logging"
	"noiseflow/noise"
	"noiseflow/transport/wspipe"
)

const protocolName = "Noise_XX_25519_ChaChaPoly_SHA256"

func main() {
	var addr string
	flag.StringVar(&addr, "addr", "127.0.0.1:18427", "Local address for the demo WebSocket listener")
	flag.Parse()

	logger := logging.New(logging.LevelInfo, os.Stdout).With(map[string]interface{}{"component": "noiseflow-demo"})

	ln, err := wspipe.Listen(addr)
	if err != nil {
		logger.Error("listen failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer ln.Close()

	done := make(chan error, 2)
	go func() { done <- runResponder(ln, logger.With(map[string]interface{}{"role": "responder"})) }()

	time.Sleep(100 * time.Millisecond)
	go func() { done <- runInitiator("ws://"+addr+"/", logger.With(map[string]interface{}{"role": "initiator"})) }()

	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			logger.Error("demo party failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}
	logger.Info("demo handshake and transport exchange succeeded", nil)
}

func randomPrivate() [noise.DHLen]byte {
	var p [noise.DHLen]byte
	_, _ = rand.Read(p[:])
	return p
}

func newStaticHandshake(role noise.Role) (*noise.HandshakeState, error) {
	proto, err := noise.ParseProtocolName(protocolName)
	if err != nil {
		return nil, err
	}
	static, err := proto.KeypairFromPrivate(randomPrivate())
	if err != nil {
		return nil, err
	}
	return proto.Initialize(role, nil, nil, noise.Keys{S: &static})
}

func runInitiator(url string, logger *logging.Logger) error {
	hs, err := newStaticHandshake(noise.Initiator)
	if err != nil {
		return err
	}

	conn, err := wspipe.Dial(url)
	if err != nil {
		return err
	}
	defer conn.Close()

	c1, c2, err := driveHandshake(hs, conn, true)
	if err != nil {
		return err
	}

	ct, err := c1.EncryptWithAd(nil, []byte("hello from initiator"))
	if err != nil {
		return err
	}
	if _, err := conn.Write(ct); err != nil {
		return err
	}

	buf := make([]byte, noise.MaxMessageLen)
	n, err := conn.Read(buf)
	if err != nil {
		return err
	}
	pt, err := c2.DecryptWithAd(nil, buf[:n])
	if err != nil {
		return err
	}
	logger.Info("received transport message", map[string]interface{}{"payload": string(pt)})
	return nil
}

func runResponder(ln net.Listener, logger *logging.Logger) error {
	conn, err := ln.Accept()
	if err != nil {
		return err
	}
	defer conn.Close()

	hs, err := newStaticHandshake(noise.Responder)
	if err != nil {
		return err
	}

	c1, c2, err := driveHandshake(hs, conn, false)
	if err != nil {
		return err
	}

	buf := make([]byte, noise.MaxMessageLen)
	n, err := conn.Read(buf)
	if err != nil {
		return err
	}
	pt, err := c1.DecryptWithAd(nil, buf[:n])
	if err != nil {
		return err
	}
	logger.Info("received transport message", map[string]interface{}{"payload": string(pt)})

	ct, err := c2.EncryptWithAd(nil, []byte("hello from responder"))
	if err != nil {
		return err
	}
	_, err = conn.Write(ct)
	return err
}

// driveHandshake runs the Noise_XX three-message pattern over conn,
// writing when isInitiator matches the pattern's current writer and
// reading otherwise, until Split yields the transport CipherStates.
func driveHandshake(hs *noise.HandshakeState, conn net.Conn, isInitiator bool) (c1, c2 *noise.CipherState, err error) {
	turnToWrite := isInitiator
	buf := make([]byte, noise.MaxMessageLen)

	for {
		if turnToWrite {
			out, sc1, sc2, werr := hs.WriteMessage(nil, nil)
			if werr != nil {
				return nil, nil, werr
			}
			if _, werr := conn.Write(out); werr != nil {
				return nil, nil, werr
			}
			if sc1 != nil {
				return sc1, sc2, nil
			}
		} else {
			n, rerr := conn.Read(buf)
			if rerr != nil {
				return nil, nil, rerr
			}
			_, rc1, rc2, rerr := hs.ReadMessage(nil, buf[:n])
			if rerr != nil {
				return nil, nil, rerr
			}
			if rc1 != nil {
				return rc1, rc2, nil
			}
		}
		turnToWrite = !turnToWrite
	}
}
