package bls

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/smallyu/go-curves/internal/crypto/polynomial"
	"github.com/smallyu/go-curves/pkg/signature"
)

// KeyShare is the private key share of participant Index.
type KeyShare struct {
	Index  int
	Secret []byte
}

// SignatureShare is a signature made with the key share of Index.
type SignatureShare struct {
	Index     int
	Signature []byte
}

// SplitKey deals priv into n shares of which any threshold recover
// signatures.
func SplitKey(priv []byte, threshold, n int) ([]KeyShare, error) {
	if threshold < 1 || threshold > n {
		return nil, errors.Errorf("bls: threshold %d of %d", threshold, n)
	}
	d, err := parsePrivateKey(priv)
	if err != nil {
		return nil, err
	}
	r := scalars()
	poly, err := polynomial.New(r, threshold-1, d)
	if err != nil {
		return nil, err
	}
	shares := make([]KeyShare, n)
	for i := range shares {
		x := big.NewInt(int64(i + 1))
		shares[i] = KeyShare{Index: i + 1, Secret: r.Encode(poly.Evaluate(x))}
	}
	return shares, nil
}

// RecoverSignature interpolates signature shares at zero. Exactly
// threshold distinct shares yield the signature of the dealt key.
func (s *Scheme[P, S]) RecoverSignature(shares []SignatureShare) ([]byte, error) {
	if len(shares) == 0 {
		return nil, errors.Wrap(signature.ErrEmptyBatch, "recover signature")
	}
	xs := make([]*big.Int, len(shares))
	for i, sh := range shares {
		if sh.Index <= 0 {
			return nil, signature.NewIndexedError(i, "share index must be positive", nil)
		}
		xs[i] = big.NewInt(int64(sh.Index))
	}
	lambdas, err := polynomial.LagrangeCoefficients(scalars(), xs, big.NewInt(0))
	if err != nil {
		return nil, err
	}
	acc := s.sig.curve.Zero()
	for i, sh := range shares {
		p, err := s.decodeSignature(sh.Signature)
		if err != nil {
			return nil, signature.NewIndexedError(i, "decode signature share", err)
		}
		term, err := p.MultiplyUnsafe(lambdas[i])
		if err != nil {
			return nil, signature.NewIndexedError(i, "weight signature share", err)
		}
		acc = acc.Add(term)
	}
	return s.sig.encode(acc, true)
}
