package curves

import (
	"crypto/sha256"
	"math/big"

	"github.com/smallyu/go-curves/internal/crypto/hashtocurve"
	"github.com/smallyu/go-curves/internal/crypto/weierstrass"
)

// P256Hasher is the P256_XMD:SHA-256_SSWU_RO_ suite of RFC 9380 section
// 8.2, with P256_XMD:SHA-256_SSWU_NU_ for EncodeToCurve.
var P256Hasher = newP256Hasher()

func newP256Hasher() *hashtocurve.Hasher[*big.Int] {
	f := P256Field
	sswu, err := weierstrass.MapToCurveSimpleSWU(f, weierstrass.SWUParams[*big.Int]{
		A: P256.A(),
		B: P256.B(),
		Z: f.Neg(f.FromUint64(10)),
	})
	if err != nil {
		panic(err)
	}
	return hashtocurve.MustHasher(hashtocurve.Config[*big.Int]{
		Curve: P256,
		Options: hashtocurve.Options{
			DST:    []byte("P256_XMD:SHA-256_SSWU_RO_"),
			P:      f.Order(),
			M:      1,
			K:      128,
			Expand: hashtocurve.XMD,
			Hash:   sha256.New,
		},
		EncodeDST: []byte("P256_XMD:SHA-256_SSWU_NU_"),
		MapToCurve: func(u []*big.Int) (*big.Int, *big.Int) {
			return sswu(f.FromBig(u[0]))
		},
	})
}
