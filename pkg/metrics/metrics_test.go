package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "error", Result(errors.New("boom")))
}

func TestCountersAndHandler(t *testing.T) {
	before := testutil.ToFloat64(Mutations.WithLabelValues("append"))
	Mutations.WithLabelValues("append").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Mutations.WithLabelValues("append")))

	Regions.Set(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(Regions))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "geofencer_regions_mutations_total")
	assert.Contains(t, rec.Body.String(), "geofencer_regions_count 3")
}
