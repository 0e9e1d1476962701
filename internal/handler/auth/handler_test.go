package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/eyecare-portal/internal/client"
	"github.com/jwalitptl/eyecare-portal/internal/handler"
	"github.com/jwalitptl/eyecare-portal/internal/middleware"
	"github.com/jwalitptl/eyecare-portal/internal/model"
	"github.com/jwalitptl/eyecare-portal/internal/service/audit"
	"github.com/jwalitptl/eyecare-portal/internal/session"
	"github.com/jwalitptl/eyecare-portal/pkg/errors"
	"github.com/jwalitptl/eyecare-portal/pkg/httputil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	result *client.LoginResult
	err    error
	calls  int
}

func (f *fakeAuth) SignIn(ctx context.Context, sess *session.Session, email, password string) (*client.LoginResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result.Outcome() == client.LoginSucceeded {
		if err := sess.Store(ctx, f.result.PatientID); err != nil {
			return nil, err
		}
	}
	return f.result, nil
}

func (f *fakeAuth) Logout(ctx context.Context, sess *session.Session) error {
	return sess.Clear(ctx)
}

type recorder struct {
	entries []audit.Entry
}

func (r *recorder) Record(_ context.Context, e audit.Entry) {
	r.entries = append(r.entries, e)
}

func setup(t *testing.T, auth *fakeAuth) (*gin.Engine, *session.Session, *recorder) {
	t.Helper()
	sess := session.New(session.NewMemoryBackend(), "browser-1", zerolog.Nop(), nil)
	rec := &recorder{}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextBrowserID, "browser-1")
		c.Set(middleware.ContextSession, sess)
		c.Next()
	})
	NewHandler(auth, handler.NewBaseHandler(rec), zerolog.Nop()).RegisterRoutes(r.Group("/api/v1"))
	return r, sess, rec
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, httputil.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestSignIn(t *testing.T) {
	tests := []struct {
		name       string
		result     *client.LoginResult
		err        error
		wantStatus int
		wantMsg    string
		wantID     string
		wantAudit  string
	}{
		{
			name:       "success",
			result:     &client.LoginResult{PatientID: "u1", CanLogin: true, UserExists: true, PasswordMatched: true},
			wantStatus: http.StatusOK,
			wantMsg:    "Login successful. Redirecting...",
			wantID:     "u1",
			wantAudit:  model.AuditOutcomeSuccess,
		},
		{
			name:       "unknown user",
			result:     &client.LoginResult{},
			wantStatus: http.StatusNotFound,
			wantMsg:    "User not found. Please sign up first.",
			wantAudit:  model.AuditOutcomeDenied,
		},
		{
			name:       "wrong password",
			result:     &client.LoginResult{UserExists: true},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Invalid password. Please try again.",
			wantAudit:  model.AuditOutcomeDenied,
		},
		{
			name:       "denied",
			result:     &client.LoginResult{UserExists: true, PasswordMatched: true},
			wantStatus: http.StatusForbidden,
			wantMsg:    "Login failed. Please try again.",
			wantAudit:  model.AuditOutcomeDenied,
		},
		{
			name:       "upstream error",
			err:        errors.NewUpstreamStatus(http.StatusInternalServerError, ""),
			wantStatus: http.StatusBadGateway,
			wantMsg:    "HTTP error! status: 500",
			wantAudit:  model.AuditOutcomeFailure,
		},
		{
			name:       "transport error",
			err:        errors.NewTransport(context.DeadlineExceeded),
			wantStatus: http.StatusBadGateway,
			wantMsg:    "An error occurred during sign in.",
			wantAudit:  model.AuditOutcomeFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, sess, rec := setup(t, &fakeAuth{result: tt.result, err: tt.err})

			w, resp := do(t, r, http.MethodPost, "/api/v1/auth/signin", SignInRequest{Email: "a@b.co", Password: "pw"})
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, resp.Message)

			id, _ := sess.Read(context.Background())
			assert.Equal(t, tt.wantID, id)
			if tt.wantID != "" {
				assert.Equal(t, RedirectSignedIn, resp.Redirect)
			}

			require.Len(t, rec.entries, 1)
			assert.Equal(t, model.AuditActionSignIn, rec.entries[0].Action)
			assert.Equal(t, tt.wantAudit, rec.entries[0].Outcome)
			assert.Equal(t, "a@b.co", rec.entries[0].Subject)
		})
	}
}

func TestSignInMissingFields(t *testing.T) {
	auth := &fakeAuth{}
	r, _, rec := setup(t, auth)

	w, resp := do(t, r, http.MethodPost, "/api/v1/auth/signin", SignInRequest{Email: "a@b.co"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter both email and password", resp.Message)
	assert.Zero(t, auth.calls)
	assert.Empty(t, rec.entries)
}

func TestLogoutAndSession(t *testing.T) {
	r, sess, rec := setup(t, &fakeAuth{})
	require.NoError(t, sess.Store(context.Background(), "u1"))

	_, resp := do(t, r, http.MethodGet, "/api/v1/auth/session", nil)
	assert.Equal(t, map[string]interface{}{"logged_in": true}, resp.Data)

	w, resp := do(t, r, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out successfully", resp.Message)
	assert.Equal(t, RedirectSignedOut, resp.Redirect)
	assert.False(t, sess.IsLoggedIn(context.Background()))

	require.Len(t, rec.entries, 1)
	assert.Equal(t, model.AuditActionLogout, rec.entries[0].Action)
	assert.Equal(t, "u1", rec.entries[0].PatientID)
	assert.Equal(t, model.AuditOutcomeSuccess, rec.entries[0].Outcome)

	_, resp = do(t, r, http.MethodGet, "/api/v1/auth/session", nil)
	assert.Equal(t, map[string]interface{}{"logged_in": false}, resp.Data)
}
