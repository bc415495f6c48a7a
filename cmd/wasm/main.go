//go:build js && wasm

package main

import (
	"encoding/hex"
	"fmt"
	"syscall/js"

	"github.com/goccy/go-json"

	"github.com/smallyu/go-curves/internal/config"
	"github.com/smallyu/go-curves/internal/crypto/curves"
)

var cfg = config.Default()

func main() {
	c := make(chan struct{}, 0)

	fmt.Println("Go Curves WASM Initialized")

	js.Global().Set("GoCurves", map[string]interface{}{
		"KeyGen":      js.FuncOf(KeyGen),
		"Sign":        js.FuncOf(Sign),
		"Verify":      js.FuncOf(Verify),
		"HashToCurve": js.FuncOf(HashToCurve),
	})

	<-c
}

func marshal(v interface{}) interface{} {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: marshal failed: %v", err)
	}
	return string(b)
}

// KeyGen generates a key pair.
// Arguments:
// 0: scheme name
// Returns:
// JSON {privateKey, publicKey} with hex values
func KeyGen(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return "error: expected 1 argument (scheme)"
	}
	s, err := cfg.SignatureScheme(args[0].String())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	priv, err := s.GenerateKey()
	if err != nil {
		return fmt.Sprintf("error: keygen failed: %v", err)
	}
	pub, err := s.PublicKey(priv)
	if err != nil {
		return fmt.Sprintf("error: public key failed: %v", err)
	}
	return marshal(map[string]string{
		"privateKey": hex.EncodeToString(priv),
		"publicKey":  hex.EncodeToString(pub),
	})
}

// Sign signs a UTF-8 message.
// Arguments:
// 0: scheme name
// 1: hex private key
// 2: message
// Returns:
// hex signature
func Sign(this js.Value, args []js.Value) interface{} {
	if len(args) != 3 {
		return "error: expected 3 arguments (scheme, privateKeyHex, message)"
	}
	s, err := cfg.SignatureScheme(args[0].String())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	priv, err := hex.DecodeString(args[1].String())
	if err != nil {
		return fmt.Sprintf("error: invalid hex key: %v", err)
	}
	sig, err := s.Sign([]byte(args[2].String()), priv)
	if err != nil {
		return fmt.Sprintf("error: sign failed: %v", err)
	}
	return hex.EncodeToString(sig)
}

// Verify checks a signature.
// Arguments:
// 0: scheme name
// 1: hex public key
// 2: hex signature
// 3: message
// Returns:
// boolean; malformed input yields false
func Verify(this js.Value, args []js.Value) interface{} {
	if len(args) != 4 {
		return "error: expected 4 arguments (scheme, publicKeyHex, signatureHex, message)"
	}
	s, err := cfg.SignatureScheme(args[0].String())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	pub, err := hex.DecodeString(args[1].String())
	if err != nil {
		return false
	}
	sig, err := hex.DecodeString(args[2].String())
	if err != nil {
		return false
	}
	return s.Verify(sig, []byte(args[3].String()), pub)
}

// HashToCurve hashes a message to a point.
// Arguments:
// 0: curve name
// 1: message
// 2: optional domain separation tag
// Returns:
// hex compressed point
func HashToCurve(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || len(args) > 3 {
		return "error: expected 2 or 3 arguments (curve, message, dst)"
	}
	g, err := curves.ByName(args[0].String())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	var dst []byte
	if len(args) == 3 && args[2].String() != "" {
		dst = []byte(args[2].String())
	}
	p, err := g.HashToPoint([]byte(args[1].String()), dst)
	if err != nil {
		return fmt.Sprintf("error: hash failed: %v", err)
	}
	return hex.EncodeToString(p.Bytes())
}
