package telemetry

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(verifyTotal.WithLabelValues("bls", "valid"))
	ObserveVerify("bls", true)
	ObserveVerify("bls", false)
	assert.Equal(t, before+1, testutil.ToFloat64(verifyTotal.WithLabelValues("bls", "valid")))

	ObserveCache(true)
	ObserveCache(false)
	ObserveTable("secp256k1")

	samples, err := Snapshot()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, s := range samples {
		names[s.Name] = true
	}
	assert.True(t, names["curves_verify_total"])
	assert.True(t, names["curves_precompute_cache_total"])
	assert.True(t, names["curves_wnaf_tables_total"])
}

func TestHandler(t *testing.T) {
	ObserveTable("p256")
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if !strings.Contains(string(body), `curves_wnaf_tables_total{curve="p256"}`) {
		t.Fatalf("metrics output is missing the table counter:\n%s", body)
	}
}
