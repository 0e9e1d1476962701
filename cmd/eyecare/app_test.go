package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	t           *testing.T
	verified    bool
	verifyCalls int
	// rejectOTP answers a wrong otp with 400 instead of a negative flag.
	rejectOTP bool
	reg       map[string]string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/user-login":
		if r.URL.Query().Get("password") != "pw" {
			_, _ = io.WriteString(w, `[{"user_can_login":false,"is_user_valid":true,"is_valid_password":false}]`)
			return
		}
		_, _ = io.WriteString(w, `[{"user_can_login":true,"is_user_valid":true,"is_valid_password":true,"uuid":"u1"}]`)
	case "/user-signup":
		_, _ = io.WriteString(w, `{"otp_sent":true,"message":"OTP sent"}`)
	case "/verify-otp":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.verifyCalls++
		if body["otp"] != "123456" {
			if b.rejectOTP {
				w.WriteHeader(http.StatusBadRequest)
			}
			_, _ = io.WriteString(w, `{"authenticated":false,"error":"Invalid OTP"}`)
			return
		}
		b.verified = true
		_, _ = io.WriteString(w, `{"authenticated":true,"uuid":"u2"}`)
	case "/register-patient":
		assert.NoError(b.t, r.ParseForm())
		b.reg = map[string]string{}
		for k := range r.PostForm {
			b.reg[k] = r.PostForm.Get(k)
		}
		_, _ = io.WriteString(w, `{"message":"Patient registered"}`)
	case "/prediction-history":
		_, _ = io.WriteString(w, `[{"id":"h1","predicted_class":"normal","confidence":0.9,"timestamp":"2024-01-01"}]`)
	case "/nearest_eye_specialists":
		_, _ = io.WriteString(w, `[{"name":"Dr. Rao","lat":12.9,"lng":77.6,"distance_km":1.5}]`)
	case "/report":
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type harness struct {
	cfg     Config
	backend *backend
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := &backend{t: t}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	return &harness{
		cfg: Config{
			APIURL:      srv.URL,
			SessionFile: filepath.Join(t.TempDir(), "session.json"),
			LogLevel:    "disabled",
		},
		backend: b,
	}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), h.cfg, args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func TestSignInStatusLogout(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	_, err = h.run(t, "", "signin", "--email", "a@b.co", "--password", "nope")
	require.Error(t, err)
	assert.Equal(t, "Invalid password. Please try again.", message(err))

	out, err = h.run(t, "a@b.co\npw\n", "signin")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in.")

	out, err = h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as patient u1")

	out, err = h.run(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "h1"`)

	out, err = h.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out successfully")

	_, err = h.run(t, "", "history")
	require.Error(t, err)
	assert.Equal(t, "user is not logged in", message(err))
}

func TestSignUpWizard(t *testing.T) {
	h := newHarness(t)

	stdin := strings.Join([]string{
		"new@b.co", "pw",
		"back",
		"new@b.co", "pw",
		"000000",
		"123456",
		"Asha", "34", "Female", "9999999999", "Bengaluru",
	}, "\n") + "\n"

	out, err := h.run(t, stdin, "signup")
	require.NoError(t, err)
	assert.Contains(t, out, "Create your account")
	assert.Contains(t, out, "Invalid OTP")
	assert.Contains(t, out, "Patient registered")
	assert.True(t, h.backend.verified)
	assert.Equal(t, "Asha", h.backend.reg["name"])

	out, err = h.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as patient u2")

	out, err = h.run(t, "", "signup")
	require.NoError(t, err)
	assert.Contains(t, out, "Already signed in.")
}

func TestSignUpRetriesAfterUpstreamError(t *testing.T) {
	h := newHarness(t)
	h.backend.rejectOTP = true

	stdin := strings.Join([]string{
		"new@b.co", "pw",
		"000000",
		"123456",
		"Asha", "34", "Female", "9999999999", "Bengaluru",
	}, "\n") + "\n"

	out, err := h.run(t, stdin, "signup")
	require.NoError(t, err)
	assert.Contains(t, out, "Invalid OTP")
	assert.Equal(t, 2, h.backend.verifyCalls)
	assert.True(t, h.backend.verified)
	assert.Equal(t, "Asha", h.backend.reg["name"])
}

func TestSignUpStopsAtEndOfInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "new@b.co\n", "signup")
	assert.Error(t, err)
}

func TestDoctorsAndReport(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "doctors", "--lat", "12.9", "--lng", "77.6")
	require.NoError(t, err)
	assert.Contains(t, out, "Dr. Rao")

	_, err = h.run(t, "", "doctors", "--lat", "12.9")
	require.Error(t, err)

	_, err = h.run(t, "a@b.co\npw\n", "signin")
	require.NoError(t, err)
	_, err = h.run(t, "", "report", "--disease", "glaucoma")
	require.Error(t, err)
	assert.Equal(t, "Report service is unavailable. Please try again later.", message(err))
}

func TestPredictRequiresImage(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "predict")
	require.Error(t, err)
	assert.Equal(t, "Please upload a retinal scan to proceed", message(err))

	notImage := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notImage, []byte("plain text"), 0o600))
	_, err = h.run(t, "", "predict", notImage)
	require.Error(t, err)
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "frobnicate")
	assert.Error(t, err)
	_, err = h.run(t, "")
	assert.Error(t, err)
}
