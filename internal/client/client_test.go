package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/eyecare-portal/internal/session"
	"github.com/jwalitptl/eyecare-portal/pkg/errors"
	"github.com/jwalitptl/eyecare-portal/pkg/metrics"
)

type fixture struct {
	client  *Client
	session *session.Session
	metrics *metrics.Metrics
	calls   *int32
}

func newFixture(t *testing.T, handler http.HandlerFunc, opts ...Option) *fixture {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	m := metrics.New("test", prometheus.NewRegistry())
	opts = append([]Option{WithMetrics(m), WithLogger(zerolog.Nop())}, opts...)
	c, err := New(Config{BaseURL: srv.URL, BackfillConfidence: true}, opts...)
	require.NoError(t, err)

	sess := session.New(session.NewMemoryBackend(), session.UserIDKey, zerolog.Nop(), nil)
	return &fixture{client: c, session: sess, metrics: m, calls: &calls}
}

func (f *fixture) callCount() int {
	return int(atomic.LoadInt32(f.calls))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: ""})
	assert.Error(t, err)
}

func TestSignIn(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		outcome   LoginOutcome
		persisted string
	}{
		{
			name:      "success array envelope",
			body:      `[{"uuid":"u1","user_can_login":true,"is_user_valid":true,"is_valid_password":true}]`,
			outcome:   LoginSucceeded,
			persisted: "u1",
		},
		{
			name:      "success flat envelope",
			body:      `{"uuid":"u2","user_can_login":true,"is_user_valid":true,"is_valid_password":true}`,
			outcome:   LoginSucceeded,
			persisted: "u2",
		},
		{
			name:    "unknown user",
			body:    `[{"user_can_login":false,"is_user_valid":false,"is_valid_password":false}]`,
			outcome: LoginUnknownUser,
		},
		{
			name:    "wrong password",
			body:    `[{"uuid":"u1","user_can_login":false,"is_user_valid":true,"is_valid_password":false}]`,
			outcome: LoginWrongPassword,
		},
		{
			name:    "denied",
			body:    `[{"uuid":"u1","user_can_login":false,"is_user_valid":true,"is_valid_password":true}]`,
			outcome: LoginDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/user-login", r.URL.Path)
				assert.Equal(t, "a@b.c", r.URL.Query().Get("email"))
				assert.Equal(t, "pw", r.URL.Query().Get("password"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, tt.body)
			})

			result, err := f.client.SignIn(context.Background(), f.session, "a@b.c", "pw")
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, result.Outcome())

			id, ok := f.session.Read(context.Background())
			if tt.persisted == "" {
				assert.False(t, ok)
			} else {
				assert.True(t, ok)
				assert.Equal(t, tt.persisted, id)
			}
		})
	}
}

func TestSignIn_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    errors.ErrorCode
		message string
	}{
		{"server error", http.StatusInternalServerError, `{}`, errors.ErrUpstreamFailed, "HTTP error! status: 500"},
		{"server message", http.StatusBadRequest, `{"error":"bad email"}`, errors.ErrUpstreamFailed, "bad email"},
		{"unauthorized", http.StatusUnauthorized, ``, errors.ErrUpstreamUnauthorized, "HTTP error! status: 401"},
		{"unavailable", http.StatusServiceUnavailable, ``, errors.ErrUpstreamUnavailable, "HTTP error! status: 503"},
		{"missing flag", http.StatusOK, `[{"uuid":"u1","user_can_login":true,"is_user_valid":true}]`, errors.ErrMalformedResponse, ""},
		{"empty array", http.StatusOK, `[]`, errors.ErrMalformedResponse, ""},
		{"success without uuid", http.StatusOK, `[{"user_can_login":true,"is_user_valid":true,"is_valid_password":true}]`, errors.ErrMalformedResponse, ""},
		{"not json", http.StatusOK, `<html>`, errors.ErrMalformedResponse, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			result, err := f.client.SignIn(context.Background(), f.session, "a@b.c", "pw")
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, tt.code, errors.CodeOf(err))
			if tt.message != "" {
				var appErr *errors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.message, appErr.Message)
			}
			assert.False(t, f.session.IsLoggedIn(context.Background()))
		})
	}
}

func TestSignIn_TransportError(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	c, err := New(Config{BaseURL: "http://127.0.0.1:1"}, WithMetrics(f.metrics))
	require.NoError(t, err)

	_, err = c.SignIn(context.Background(), f.session, "a@b.c", "pw")
	require.Error(t, err)
	assert.Equal(t, errors.ErrTransport, errors.CodeOf(err))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.UpstreamRequests.WithLabelValues("/user-login", "error")))
}

func TestUserSignUp(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user-signup", r.URL.Path)
		assert.Equal(t, "new@b.c", r.URL.Query().Get("email"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"otp_sent": true, "message": "OTP sent"})
	})

	result, err := f.client.UserSignUp(context.Background(), "new@b.c", "pw")
	require.NoError(t, err)
	assert.True(t, result.OTPSent)
	assert.Equal(t, "OTP sent", result.Message)
	assert.False(t, f.session.IsLoggedIn(context.Background()))
}

func TestVerifyOTP_PersistsReturnedID(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"email": "a@b.c", "password": "pw", "otp": "123456"}, body)
		writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": true, "uuid": "p-9"})
	})

	result, err := f.client.VerifyOTP(context.Background(), f.session, "a@b.c", "pw", "123456")
	require.NoError(t, err)
	assert.True(t, result.Authenticated)

	id, ok := f.session.Read(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "p-9", id)
}

func TestVerifyOTP_ServerErrorMessage(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid OTP"})
	})

	_, err := f.client.VerifyOTP(context.Background(), f.session, "a@b.c", "pw", "000000")
	require.Error(t, err)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Invalid OTP", appErr.Message)
}

func TestRegisterPatient(t *testing.T) {
	reg := Registration{
		Name:    "Asha",
		Age:     42,
		Gender:  GenderFemale,
		Email:   "asha@example.com",
		Phone:   "9999999999",
		Address: "MG Road",
	}

	t.Run("placeholder id is omitted", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			_, present := r.PostForm["uuid"]
			assert.False(t, present)
			assert.Equal(t, "Asha", r.PostForm.Get("name"))
			assert.Equal(t, "42", r.PostForm.Get("age"))
			assert.Equal(t, "Female", r.PostForm.Get("gender"))
			writeJSON(w, http.StatusOK, map[string]string{"message": "Registered", "uuid": "p-1"})
		})

		withPlaceholder := reg
		withPlaceholder.PatientID = NewUserPlaceholder
		result, err := f.client.RegisterPatient(context.Background(), f.session, withPlaceholder)
		require.NoError(t, err)
		assert.Equal(t, "Registered", result.Message)

		id, _ := f.session.Read(context.Background())
		assert.Equal(t, "p-1", id)
	})

	t.Run("existing session id is kept", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "p-0", r.PostForm.Get("uuid"))
			writeJSON(w, http.StatusOK, map[string]string{"message": "Registered", "uuid": "p-2"})
		})
		require.NoError(t, f.session.Store(context.Background(), "p-0"))

		withID := reg
		withID.PatientID = "p-0"
		_, err := f.client.RegisterPatient(context.Background(), f.session, withID)
		require.NoError(t, err)

		id, _ := f.session.Read(context.Background())
		assert.Equal(t, "p-0", id)
	})

	t.Run("invalid profile is not sent", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})

		invalid := reg
		invalid.Gender = "Unknown"
		_, err := f.client.RegisterPatient(context.Background(), f.session, invalid)
		require.Error(t, err)
		assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))
		assert.Zero(t, f.callCount())
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, f.session.Store(context.Background(), "u1"))

	require.NoError(t, f.client.Logout(context.Background(), f.session))
	assert.False(t, f.session.IsLoggedIn(context.Background()))
	require.NoError(t, f.client.Logout(context.Background(), f.session))
	assert.Zero(t, f.callCount())
}

func TestPredictDisease(t *testing.T) {
	image := bytes.Repeat([]byte{0xFF}, 5<<20)

	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "u1", r.FormValue("uuid"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "scan.jpg", header.Filename)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
		n, _ := io.Copy(io.Discard, file)
		assert.Equal(t, int64(len(image)), n)

		writeJSON(w, http.StatusOK, map[string]interface{}{"predicted_class": "cataract", "confidence": 0.83})
	})
	require.NoError(t, f.session.Store(context.Background(), "u1"))

	prediction, err := f.client.PredictDisease(context.Background(), f.session, Image{
		Filename:    "scan.jpg",
		ContentType: "image/jpeg",
		Body:        bytes.NewReader(image),
	})
	require.NoError(t, err)
	assert.Equal(t, &Prediction{PredictedClass: "cataract", Confidence: 0.83}, prediction)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.UpstreamRequests.WithLabelValues("/predict", "2xx")))
}

func TestPredictDisease_NoRequestSent(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")

	tests := []struct {
		name     string
		loggedIn bool
		image    Image
		code     errors.ErrorCode
	}{
		{"logged out", false, Image{Filename: "scan.png", ContentType: "image/png", Body: bytes.NewReader(png)}, errors.ErrNotAuthenticated},
		{"missing image", true, Image{}, errors.ErrValidation},
		{"not an image", true, Image{Filename: "notes.pdf", ContentType: "application/pdf", Body: bytes.NewReader([]byte("%PDF"))}, errors.ErrValidation},
		{"sniffed text", true, Image{Filename: "notes.txt", Body: bytes.NewReader([]byte("hello world"))}, errors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]interface{}{"predicted_class": "normal", "confidence": 0.9})
			})
			if tt.loggedIn {
				require.NoError(t, f.session.Store(context.Background(), "u1"))
			}

			_, err := f.client.PredictDisease(context.Background(), f.session, tt.image)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
			assert.Zero(t, f.callCount())
		})
	}
}

func TestPredictDisease_SniffsContentType(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"predicted_class": "normal", "confidence": 0.9})
	})
	require.NoError(t, f.session.Store(context.Background(), "u1"))

	_, err := f.client.PredictDisease(context.Background(), f.session, Image{
		Filename: "scan",
		Body:     bytes.NewReader([]byte("\x89PNG\r\n\x1a\n0000")),
	})
	require.NoError(t, err)
}

func TestPredictDisease_ConfidenceOutOfRange(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"predicted_class": "glaucoma", "confidence": 1.7})
	})
	require.NoError(t, f.session.Store(context.Background(), "u1"))

	_, err := f.client.PredictDisease(context.Background(), f.session, Image{
		Filename: "scan.png", ContentType: "image/png", Body: bytes.NewReader([]byte("x")),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.MalformedResponse)
}

func TestGetPatientHistory(t *testing.T) {
	body := `[
		{"id":"h1","uuid":"u1","predicted_class":"normal","confidence":0.91,"timestamp":"2024-01-01T10:00:00Z"},
		{"_id":"h2","uuid":"u1","predicted_class":"cataract","timestamp":"2024-01-02T10:00:00Z"},
		{"id":3,"uuid":"u1","predicted_class":"glaucoma","confidence":0,"timestamp":"2024-01-03T10:00:00Z"}
	]`

	t.Run("backfills only missing confidences", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "u1", r.URL.Query().Get("uuid"))
			_, _ = io.WriteString(w, body)
		}, WithConfidenceSource(func() float64 { return 0.5 }))
		require.NoError(t, f.session.Store(context.Background(), "u1"))

		items, err := f.client.GetPatientHistory(context.Background(), f.session)
		require.NoError(t, err)
		require.Len(t, items, 3)

		assert.Equal(t, "h1", items[0].ID)
		assert.InDelta(t, 0.91, *items[0].Confidence, 1e-9)
		assert.False(t, items[0].ConfidenceEstimated)

		assert.Equal(t, "h2", items[1].ID)
		require.NotNil(t, items[1].Confidence)
		assert.InDelta(t, 0.8, *items[1].Confidence, 1e-9)
		assert.True(t, items[1].ConfidenceEstimated)

		assert.Equal(t, "3", items[2].ID)
		assert.Zero(t, *items[2].Confidence)
		assert.False(t, items[2].ConfidenceEstimated)
	})

	t.Run("estimate stays within range", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		require.NoError(t, f.session.Store(context.Background(), "u1"))

		for i := 0; i < 20; i++ {
			items, err := f.client.GetPatientHistory(context.Background(), f.session)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, *items[1].Confidence, 0.6)
			assert.Less(t, *items[1].Confidence, 1.0)
		}
	})

	t.Run("backfill disabled", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		f.client.backfill = false
		require.NoError(t, f.session.Store(context.Background(), "u1"))

		items, err := f.client.GetPatientHistory(context.Background(), f.session)
		require.NoError(t, err)
		assert.Nil(t, items[1].Confidence)
		assert.False(t, items[1].ConfidenceEstimated)
	})

	t.Run("missing id is malformed", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `[{"predicted_class":"normal","timestamp":"2024-01-01"}]`)
		})
		require.NoError(t, f.session.Store(context.Background(), "u1"))

		_, err := f.client.GetPatientHistory(context.Background(), f.session)
		assert.ErrorIs(t, err, errors.MalformedResponse)
	})

	t.Run("logged out", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := f.client.GetPatientHistory(context.Background(), f.session)
		assert.ErrorIs(t, err, errors.NotAuthenticated)
		assert.Zero(t, f.callCount())
	})
}

func TestGetDoctorsNearMe(t *testing.T) {
	doctors := `[
		{"name":"Dr. Rao","specialization":"Retina","hospital_name":"City Eye","address":"1 Main St","lat":12.97,"lng":77.59,"experience":12,"contact":"080","email":"rao@example.com","distance_km":1.2},
		{"name":"Dr. Iyer","lat":12.95,"lng":77.6,"experience":5,"distance_km":3.4}
	]`

	t.Run("fallback location", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/nearest_eye_specialists", r.URL.Path)
			assert.Equal(t, "12.9716", r.URL.Query().Get("lat"))
			assert.Equal(t, "77.5946", r.URL.Query().Get("lng"))
			_, _ = io.WriteString(w, doctors)
		})

		result, err := f.client.GetDoctorsNearMe(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, "Dr. Rao", result[0].Name)
		assert.Equal(t, "City Eye", result[0].Hospital)
		assert.Equal(t, 1.2, result[0].DistanceKm)
		assert.Equal(t, "Dr. Iyer", result[1].Name)
	})

	t.Run("given location", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "48.8566", r.URL.Query().Get("lat"))
			assert.Equal(t, "2.3522", r.URL.Query().Get("lng"))
			_, _ = io.WriteString(w, `[]`)
		})

		result, err := f.client.GetDoctorsNearMe(context.Background(), &Coordinates{Latitude: 48.8566, Longitude: 2.3522})
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("out of range", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := f.client.GetDoctorsNearMe(context.Background(), &Coordinates{Latitude: 91, Longitude: 0})
		require.Error(t, err)
		assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))
		assert.Zero(t, f.callCount())
	})

	t.Run("missing name", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `[{"lat":1,"lng":1}]`)
		})

		_, err := f.client.GetDoctorsNearMe(context.Background(), nil)
		assert.ErrorIs(t, err, errors.MalformedResponse)
	})
}

func TestGenerateReport(t *testing.T) {
	t.Run("absolute url", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "u1", r.URL.Query().Get("uuid"))
			assert.Equal(t, "diabetic retinopathy", r.URL.Query().Get("disease"))
			writeJSON(w, http.StatusOK, map[string]string{"report_url": "https://files.example.com/r.pdf"})
		})
		require.NoError(t, f.session.Store(context.Background(), "u1"))

		report, err := f.client.GenerateReport(context.Background(), f.session, "diabetic retinopathy")
		require.NoError(t, err)
		assert.Equal(t, "https://files.example.com/r.pdf", report.URL)
	})

	t.Run("relative url", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"report_url": "/static/r.pdf"})
		})
		require.NoError(t, f.session.Store(context.Background(), "u1"))

		report, err := f.client.GenerateReport(context.Background(), f.session, "cataract")
		require.NoError(t, err)
		assert.Equal(t, f.client.baseURL.String()+"/static/r.pdf", report.URL)
	})

	t.Run("logged out", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := f.client.GenerateReport(context.Background(), f.session, "cataract")
		assert.ErrorIs(t, err, errors.NotAuthenticated)
		assert.Zero(t, f.callCount())
	})

	t.Run("empty disease", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
		require.NoError(t, f.session.Store(context.Background(), "u1"))

		_, err := f.client.GenerateReport(context.Background(), f.session, " ")
		assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))
		assert.Zero(t, f.callCount())
	})
}

func TestClassifyReportError(t *testing.T) {
	tests := []struct {
		status int
		want   ReportFailure
	}{
		{http.StatusUnauthorized, ReportUnauthorized},
		{http.StatusForbidden, ReportUnauthorized},
		{http.StatusBadGateway, ReportUnavailable},
		{http.StatusServiceUnavailable, ReportUnavailable},
		{http.StatusGatewayTimeout, ReportUnavailable},
		{http.StatusInternalServerError, ReportFailed},
		{http.StatusNotFound, ReportFailed},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			require.NoError(t, f.session.Store(context.Background(), "u1"))

			_, err := f.client.GenerateReport(context.Background(), f.session, "cataract")
			require.Error(t, err)
			assert.Equal(t, tt.want, ClassifyReportError(err))
		})
	}
}

func TestLoginOutcomeMessage(t *testing.T) {
	assert.Equal(t, "Login successful. Redirecting...", LoginSucceeded.Message())
	assert.Equal(t, "User not found. Please sign up first.", LoginUnknownUser.Message())
	assert.Equal(t, "Invalid password. Please try again.", LoginWrongPassword.Message())
	assert.Equal(t, "Login failed. Please try again.", LoginDenied.Message())
}
