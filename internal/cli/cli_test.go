package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-curves/internal/telemetry"
)

func run(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	cmd := GetRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.Bytes(), err
}

func runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "curvetool %v", args)
	require.NoError(t, json.Unmarshal(out, v), "output %s", out)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	for _, scheme := range []string{"ed25519", "ecdsa-secp256k1", "ecdsa-p256", "bls-long", "bls-short", "bip340"} {
		t.Run(scheme, func(t *testing.T) {
			var kp keyPair
			runJSON(t, &kp, "keygen", "--scheme", scheme)
			assert.Equal(t, scheme, kp.Scheme)

			var sig signed
			runJSON(t, &sig, "sign", "--scheme", scheme, "--key", kp.PrivateKey, "--msg", "hello")

			var v verified
			runJSON(t, &v, "verify", "--scheme", scheme, "--pub", kp.PublicKey, "--sig", sig.Signature, "--msg", "hello")
			assert.True(t, v.Valid)

			out, err := run(t, "verify", "--scheme", scheme, "--pub", kp.PublicKey, "--sig", sig.Signature, "--msg", "hellp")
			assert.True(t, errors.Is(err, ErrVerificationFailed))
			require.NoError(t, json.Unmarshal(out, &v))
			assert.False(t, v.Valid)
		})
	}
}

func TestMessageHex(t *testing.T) {
	var kp keyPair
	runJSON(t, &kp, "keygen")
	assert.Equal(t, "ed25519", kp.Scheme)

	var a, b signed
	runJSON(t, &a, "sign", "--key", kp.PrivateKey, "--msg", "hi")
	runJSON(t, &b, "sign", "--key", kp.PrivateKey, "--msg-hex", "6869")
	assert.Equal(t, a.Signature, b.Signature)

	_, err := run(t, "sign", "--key", kp.PrivateKey)
	assert.Error(t, err)
	_, err = run(t, "sign", "--key", "zz", "--msg", "hi")
	assert.Error(t, err)
}

func TestHashToCurve(t *testing.T) {
	var a, b hashed
	runJSON(t, &a, "hash-to-curve", "--msg", "abc")
	runJSON(t, &b, "hash-to-curve", "--msg", "abc")
	assert.Equal(t, "p256", a.Curve)
	assert.Equal(t, a.Point, b.Point)
	assert.Len(t, a.Point, 66)

	var g1 hashed
	runJSON(t, &g1, "hash-to-curve", "--curve", "bls12381g1", "--dst", "QUUX-V01-CS02-with-BLS12381G1_XMD:SHA-256_SSWU_RO_", "--msg", "")
	assert.Len(t, g1.Point, 96)

	_, err := run(t, "hash-to-curve", "--curve", "secp256k1", "--msg", "abc")
	assert.Error(t, err)
	_, err = run(t, "hash-to-curve", "--curve", "nope", "--msg", "abc")
	assert.Error(t, err)
}

func TestAggregate(t *testing.T) {
	var k1, k2 keyPair
	runJSON(t, &k1, "keygen", "--scheme", "bls-long")
	runJSON(t, &k2, "keygen", "--scheme", "bls-long")
	var s1, s2 signed
	runJSON(t, &s1, "sign", "--scheme", "bls-long", "--key", k1.PrivateKey, "--msg", "one")
	runJSON(t, &s2, "sign", "--scheme", "bls-long", "--key", k2.PrivateKey, "--msg", "two")

	var agg aggregated
	runJSON(t, &agg, "aggregate",
		"--sig", s1.Signature, "--sig", s2.Signature,
		"--pub", k1.PublicKey, "--pub", k2.PublicKey,
		"--msg", "one", "--msg", "two", "--verify")
	require.NotNil(t, agg.Valid)
	assert.True(t, *agg.Valid)
	assert.NotEmpty(t, agg.PublicKey)

	_, err := run(t, "aggregate",
		"--sig", s1.Signature, "--sig", s2.Signature,
		"--pub", k1.PublicKey, "--pub", k2.PublicKey,
		"--msg", "one", "--msg", "tw0", "--verify")
	assert.True(t, errors.Is(err, ErrVerificationFailed))

	_, err = run(t, "aggregate", "--scheme", "ed25519", "--sig", s1.Signature)
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curvetool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheme: bls-short\nlogLevel: debug\nlogFormat: json\n"), 0o600))

	var kp keyPair
	runJSON(t, &kp, "--config", path, "keygen")
	assert.Equal(t, "bls-short", kp.Scheme)

	_, err := run(t, "--config", path, "--log-level", "loud", "keygen")
	assert.Error(t, err)
	_, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "keygen")
	assert.Error(t, err)
	_, err = run(t, "keygen", "--scheme", "rsa")
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	telemetry.ObserveVerify("cli-test", true)
	var samples []telemetry.Sample
	runJSON(t, &samples, "metrics")
	found := false
	for _, s := range samples {
		if s.Name == "curves_verify_total" && s.Labels["scheme"] == "cli-test" {
			found = true
			assert.GreaterOrEqual(t, s.Value, 1.0)
		}
	}
	assert.True(t, found)
}
