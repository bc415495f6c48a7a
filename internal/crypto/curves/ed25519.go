package curves

import (
	"crypto/sha512"
	"math/big"

	fe "filippo.io/edwards25519/field"
	"github.com/pkg/errors"

	"github.com/smallyu/go-curves/internal/crypto/edwards"
	"github.com/smallyu/go-curves/internal/crypto/field"
)

// Ed25519Order is l = 2^252 + 27742317777372353535851937790883648493.
var Ed25519Order = func() *big.Int {
	c, _ := new(big.Int).SetString("27742317777372353535851937790883648493", 10)
	return c.Add(c, new(big.Int).Lsh(big.NewInt(1), 252))
}()

// Ed25519 is the twisted Edwards form of Curve25519,
// -x² + y² = 1 - (121665/121666)·x²·y², over filippo.io/edwards25519's
// field implementation.
var Ed25519 = newEd25519()

func newEd25519() *edwards.Curve[fe.Element] {
	f := field.Curve25519{}
	return edwards.MustCurve(edwards.Config[fe.Element]{
		Name:    "ed25519",
		Field:   f,
		A:       f.Neg(f.One()),
		D:       f.FromBig(hexInt("52036cee2b6ffe738cc740797779e89800700a4d4141d8ab75eb4dca135978a3")),
		N:       Ed25519Order,
		H:       big.NewInt(8),
		Gx:      f.FromBig(hexInt("216936d3cd6e53fec0a4e231fdd6dc5c692cc7609525a7b2c9562d608f25d51a")),
		Gy:      f.FromBig(hexInt("6666666666666666666666666666666666666666666666666666666666666658")),
		UVRatio: f.SqrtRatio,
	})
}

// ed25519Clamp clears the low three bits and the top bit and sets bit 254.
func ed25519Clamp(b []byte) []byte {
	b[0] &= 248
	b[31] &= 127
	b[31] |= 64
	return b
}

const dom2Prefix = "SigEd25519 no Ed25519 collisions"

// ed25519Dom2 is dom2(phflag, ctx) of RFC 8032 5.1.
func ed25519Dom2(data, ctx []byte, prehashed bool) ([]byte, error) {
	if len(ctx) > 255 {
		return nil, errors.Wrapf(edwards.ErrContext, "context of %d bytes", len(ctx))
	}
	flag := byte(0)
	if prehashed {
		flag = 1
	}
	out := make([]byte, 0, len(dom2Prefix)+2+len(ctx)+len(data))
	out = append(out, dom2Prefix...)
	out = append(out, flag, byte(len(ctx)))
	out = append(out, ctx...)
	return append(out, data...), nil
}

// ed25519CtxDomain additionally requires a non-empty context.
func ed25519CtxDomain(data, ctx []byte, prehashed bool) ([]byte, error) {
	if len(ctx) == 0 {
		return nil, errors.Wrap(edwards.ErrContext, "ed25519ctx needs a non-empty context")
	}
	return ed25519Dom2(data, ctx, prehashed)
}

func sha512Prehash(msg []byte) []byte {
	h := sha512.Sum512(msg)
	return h[:]
}

// The three RFC 8032 Ed25519 variants.
var (
	Ed25519Pure = edwards.NewEdDSA(Ed25519, edwards.EdDSAConfig{
		Name:              "ed25519",
		Hash:              sha512.New,
		AdjustScalarBytes: ed25519Clamp,
	})
	Ed25519ctx = edwards.NewEdDSA(Ed25519, edwards.EdDSAConfig{
		Name:              "ed25519ctx",
		Hash:              sha512.New,
		AdjustScalarBytes: ed25519Clamp,
		Domain:            ed25519CtxDomain,
	})
	Ed25519ph = edwards.NewEdDSA(Ed25519, edwards.EdDSAConfig{
		Name:              "ed25519ph",
		Hash:              sha512.New,
		AdjustScalarBytes: ed25519Clamp,
		Domain:            ed25519Dom2,
		Prehash:           sha512Prehash,
	})
)

// EdwardsToMontgomeryU maps an encoded Ed25519 public key to the
// X25519 u-coordinate u = (1 + y) / (1 - y).
func EdwardsToMontgomeryU(pub []byte) ([]byte, error) {
	p, err := Ed25519.FromBytes(pub, false)
	if err != nil {
		return nil, err
	}
	f := field.Curve25519{}
	_, y := p.ToAffine()
	u := f.Div(f.Add(f.One(), y), f.Sub(f.One(), y))
	return f.Encode(u), nil
}

// EdwardsToMontgomeryPriv returns the clamped X25519 scalar of an
// Ed25519 seed.
func EdwardsToMontgomeryPriv(priv []byte) ([]byte, error) {
	k, err := Ed25519Pure.ExpandPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	return k.Head, nil
}
