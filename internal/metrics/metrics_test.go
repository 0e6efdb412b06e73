package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()

	m.TurnCompleted("model")
	m.TurnCompleted("model")
	m.TurnCompleted("knowledge")
	m.ModelCall(time.Second, nil)
	m.ModelCall(2*time.Second, errors.New("timeout"))
	m.ContactSaved("ai_extraction", true)
	m.ContactSaved("contact_button", false)
	m.SendFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Turns.WithLabelValues("model")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("knowledge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModelFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContactsSaved.WithLabelValues("ai_extraction")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContactFailures.WithLabelValues("contact_button")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SendFailures))
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.SendFailed()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SendFailures))
}

func TestHandler(t *testing.T) {
	m := New()
	m.TurnCompleted("consultation")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `lead_assistant_turns_total{route="consultation"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}
