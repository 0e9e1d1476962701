package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersWithGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("eyecare", reg)

	m.UpstreamRequests.WithLabelValues("predict", "2xx").Inc()
	m.WizardTransitions.WithLabelValues("credentials", "otp_verification").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("predict", "2xx")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "eyecare_upstream_requests_total")
	assert.Contains(t, names, "eyecare_signup_transitions_total")

	// a second set on a fresh registry must not collide
	assert.NotPanics(t, func() { New("eyecare", prometheus.NewRegistry()) })
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "error", StatusClass(0))
	assert.Equal(t, "2xx", StatusClass(200))
	assert.Equal(t, "4xx", StatusClass(404))
	assert.Equal(t, "5xx", StatusClass(503))
}
