// Package signature defines the contract shared by the signature schemes
// of this module and a registry to look them up by name.
package signature

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/smallyu/go-curves/internal/telemetry"
)

// Common errors returned by the signature schemes
var (
	ErrUnknownScheme   = errors.New("signature: unknown scheme")
	ErrDuplicateScheme = errors.New("signature: scheme already registered")
	ErrEmptyBatch      = errors.New("signature: empty batch")
	ErrLengthMismatch  = errors.New("signature: batch inputs differ in length")
)

// Scheme is a signature scheme operating on encoded keys and signatures.
type Scheme interface {
	// Name returns the registry name of the scheme.
	Name() string

	// GenerateKey returns a fresh encoded private key.
	GenerateKey() ([]byte, error)

	// PublicKey derives the encoded public key of priv.
	PublicKey(priv []byte) ([]byte, error)

	// Sign signs msg with priv.
	Sign(msg, priv []byte) ([]byte, error)

	// Verify reports whether sig is a valid signature of msg under pub.
	// Malformed input of any kind yields false.
	Verify(sig, msg, pub []byte) bool
}

// Item is one (signature, message, public key) triple of a batch.
type Item struct {
	Signature []byte
	Message   []byte
	PublicKey []byte
}

// Aggregator is a scheme whose signatures and keys can be combined.
type Aggregator interface {
	Scheme

	// AggregateSignatures combines signatures into one.
	AggregateSignatures(sigs [][]byte) ([]byte, error)

	// AggregatePublicKeys combines public keys into one.
	AggregatePublicKeys(pubs [][]byte) ([]byte, error)

	// VerifyBatch checks an aggregated signature over distinct
	// (message, public key) pairs.
	VerifyBatch(sig []byte, msgs, pubs [][]byte) bool
}

var (
	mu      sync.RWMutex
	schemes = map[string]Scheme{}
)

// Register adds s to the registry. It fails if the name is taken.
func Register(s Scheme) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := schemes[s.Name()]; ok {
		return errors.Wrapf(ErrDuplicateScheme, "%q", s.Name())
	}
	schemes[s.Name()] = s
	log.WithField("scheme", s.Name()).Trace("signature scheme registered")
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(s Scheme) {
	if err := Register(s); err != nil {
		panic(err)
	}
}

// Lookup returns the scheme registered under name.
func Lookup(name string) (Scheme, error) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := schemes[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownScheme, "%q", name)
	}
	return s, nil
}

// Names lists the registered schemes in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(schemes))
	for name := range schemes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// GuardVerify runs a verification, turning a panic raised while parsing
// attacker-controlled bytes into false, and records the outcome.
func GuardVerify(scheme string, verify func() bool) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{"scheme": scheme, "panic": r}).Debug("verification panicked")
			ok = false
		}
		telemetry.ObserveVerify(scheme, ok)
	}()
	return verify()
}
