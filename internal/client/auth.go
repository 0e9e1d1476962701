package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jwalitptl/eyecare-portal/internal/session"
	"github.com/jwalitptl/eyecare-portal/pkg/errors"
)

const (
	endpointLogin    = "/user-login"
	endpointSignUp   = "/user-signup"
	endpointVerify   = "/verify-otp"
	endpointRegister = "/register-patient"
)

// SignIn checks credentials and, when the backend accepts them, stores the
// returned patient id in sess.
func (c *Client) SignIn(ctx context.Context, sess *session.Session, email, password string) (*LoginResult, error) {
	query := url.Values{}
	query.Set("email", email)
	query.Set("password", password)

	req, err := c.newRequest(ctx, http.MethodPost, endpointLogin, query, nil, "")
	if err != nil {
		return nil, c.fail("sign_in", err)
	}
	body, err := c.do(req, endpointLogin)
	if err != nil {
		return nil, c.fail("sign_in", err)
	}

	wire, err := c.decodeLogin(body)
	if err != nil {
		return nil, c.fail("sign_in", err)
	}

	result := &LoginResult{
		PatientID:       wire.UUID,
		CanLogin:        *wire.UserCanLogin,
		UserExists:      *wire.IsUserValid,
		PasswordMatched: *wire.IsValidPassword,
	}

	if result.Outcome() == LoginSucceeded && result.PatientID == "" {
		return nil, c.fail("sign_in", errors.NewMalformed(endpointLogin, fmt.Errorf("successful login without uuid")))
	}
	if result.Outcome() == LoginSucceeded && sess != nil {
		if err := sess.Store(ctx, result.PatientID); err != nil {
			return nil, c.fail("sign_in", errors.NewInternal(err))
		}
	}

	c.logger.Debug().Str("outcome", result.Outcome().String()).Msg("sign in completed")
	return result, nil
}

// decodeLogin accepts the flag object bare or as the first element of an
// array.
func (c *Client) decodeLogin(body []byte) (*loginWire, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []loginWire
		if err := c.decode(endpointLogin, trimmed, &list); err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, errors.NewMalformed(endpointLogin, fmt.Errorf("empty login response"))
		}
		return &list[0], nil
	}

	var wire loginWire
	if err := c.decode(endpointLogin, trimmed, &wire); err != nil {
		return nil, err
	}
	return &wire, nil
}

// UserSignUp registers credentials and asks the backend to email an OTP.
// The session is left alone.
func (c *Client) UserSignUp(ctx context.Context, email, password string) (*SignUpResult, error) {
	query := url.Values{}
	query.Set("email", email)
	query.Set("password", password)

	req, err := c.newRequest(ctx, http.MethodPost, endpointSignUp, query, nil, "")
	if err != nil {
		return nil, c.fail("sign_up", err)
	}
	body, err := c.do(req, endpointSignUp)
	if err != nil {
		return nil, c.fail("sign_up", err)
	}

	var wire signUpWire
	if err := c.decode(endpointSignUp, body, &wire); err != nil {
		return nil, c.fail("sign_up", err)
	}
	return &SignUpResult{
		OTPSent: *wire.OTPSent,
		Message: wire.Message,
		Error:   wire.Error,
	}, nil
}

// VerifyOTP confirms the emailed code. A returned patient id is stored in
// sess straight away.
func (c *Client) VerifyOTP(ctx context.Context, sess *session.Session, email, password, otp string) (*VerifyResult, error) {
	var wire verifyWire
	if err := c.postJSON(ctx, endpointVerify, map[string]string{
		"email":    email,
		"password": password,
		"otp":      otp,
	}, &wire); err != nil {
		return nil, c.fail("verify_otp", err)
	}

	if wire.UUID != "" && sess != nil {
		if err := sess.Store(ctx, wire.UUID); err != nil {
			return nil, c.fail("verify_otp", errors.NewInternal(err))
		}
	}

	return &VerifyResult{
		Authenticated: *wire.Authenticated,
		PatientID:     wire.UUID,
		Message:       wire.Message,
		Error:         wire.Error,
	}, nil
}

// RegisterPatient submits the profile as a form. The patient id is omitted
// when empty or the placeholder. A returned id is stored only if sess holds
// none yet.
func (c *Client) RegisterPatient(ctx context.Context, sess *session.Session, reg Registration) (*RegisterResult, error) {
	if err := c.validator.Validate(reg); err != nil {
		return nil, c.fail("register_patient", errors.NewValidation(err.Error(), err))
	}

	form := url.Values{}
	if id := strings.TrimSpace(reg.PatientID); id != "" && id != NewUserPlaceholder {
		form.Set("uuid", id)
	}
	form.Set("name", reg.Name)
	form.Set("age", strconv.Itoa(reg.Age))
	form.Set("gender", string(reg.Gender))
	form.Set("email", reg.Email)
	form.Set("phone", reg.Phone)
	form.Set("address", reg.Address)

	req, err := c.newRequest(ctx, http.MethodPost, endpointRegister, nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, c.fail("register_patient", err)
	}
	body, err := c.do(req, endpointRegister)
	if err != nil {
		return nil, c.fail("register_patient", err)
	}

	var wire registerWire
	if err := c.decode(endpointRegister, body, &wire); err != nil {
		return nil, c.fail("register_patient", err)
	}

	if wire.UUID != "" && sess != nil && !sess.IsLoggedIn(ctx) {
		if err := sess.Store(ctx, wire.UUID); err != nil {
			return nil, c.fail("register_patient", errors.NewInternal(err))
		}
	}

	return &RegisterResult{Message: wire.Message, PatientID: wire.UUID}, nil
}

// Logout clears the stored patient id. It never contacts the backend.
func (c *Client) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return nil
	}
	if err := sess.Clear(ctx); err != nil {
		return c.fail("logout", errors.NewInternal(err))
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.NewInternal(err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(raw), "application/json")
	if err != nil {
		return err
	}
	body, err := c.do(req, path)
	if err != nil {
		return err
	}
	return c.decode(path, body, out)
}
