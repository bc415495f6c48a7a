package bls

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const keyGenSalt = "BLS-SIG-KEYGEN-SALT-"

// keyGenL is ceil(3·ceil(log2(r))/16).
const keyGenL = 48

func randomIKM() ([]byte, error) {
	ikm := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, ikm); err != nil {
		return nil, errors.Wrap(err, "bls: reading randomness")
	}
	return ikm, nil
}

// KeyGen derives a private key from at least 32 bytes of keying material
// with HKDF-SHA256, as in the IETF BLS signature draft.
func KeyGen(ikm, info []byte) ([]byte, error) {
	if len(ikm) < 32 {
		return nil, errors.Wrapf(ErrInvalidPrivateKey, "keying material of %d bytes", len(ikm))
	}
	r := scalars()
	salt := []byte(keyGenSalt)
	secret := append(append([]byte{}, ikm...), 0)
	lInfo := make([]byte, 2)
	binary.BigEndian.PutUint16(lInfo, keyGenL)
	expandInfo := append(append([]byte{}, info...), lInfo...)
	for {
		h := sha256.Sum256(salt)
		salt = h[:]
		prk := hkdf.Extract(sha256.New, secret, salt)
		okm := make([]byte, keyGenL)
		if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, expandInfo), okm); err != nil {
			return nil, errors.Wrap(err, "bls: hkdf expand")
		}
		sk := r.FromBig(new(big.Int).SetBytes(okm))
		if sk.Sign() != 0 {
			return r.Encode(sk), nil
		}
	}
}
