package wizard

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/eyecare-portal/internal/client"
	"github.com/jwalitptl/eyecare-portal/internal/session"
	"github.com/jwalitptl/eyecare-portal/pkg/errors"
	"github.com/jwalitptl/eyecare-portal/pkg/metrics"
	"github.com/jwalitptl/eyecare-portal/pkg/validator"
)

// RedirectLoggedIn is where a visitor who already holds a patient id is sent.
const RedirectLoggedIn = "/prediction"

// Authenticator is the part of the remote client the wizard drives.
type Authenticator interface {
	UserSignUp(ctx context.Context, email, password string) (*client.SignUpResult, error)
	VerifyOTP(ctx context.Context, sess *session.Session, email, password, otp string) (*client.VerifyResult, error)
	RegisterPatient(ctx context.Context, sess *session.Session, reg client.Registration) (*client.RegisterResult, error)
}

// State is carried across steps. Password never leaves the process.
type State struct {
	Step      Step   `json:"step"`
	Email     string `json:"email,omitempty"`
	Password  string `json:"-"`
	PatientID string `json:"uuid,omitempty"`
}

// Profile is what the registration step collects. The email comes from
// the credentials step.
type Profile struct {
	Name    string        `json:"name" validate:"required"`
	Age     int           `json:"age" validate:"required,gte=1,lte=130"`
	Gender  client.Gender `json:"gender" validate:"required,oneof=Male Female Other"`
	Phone   string        `json:"phone" validate:"required"`
	Address string        `json:"address" validate:"required"`
}

type otpInput struct {
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}

type credentialsInput struct {
	Email string `json:"email" validate:"email"`
}

// Flow binds a wizard state to the auth client and the session. A failed
// action leaves the step where it was.
type Flow struct {
	auth      Authenticator
	sess      *session.Session
	state     State
	validator validator.Validator
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

func NewFlow(auth Authenticator, sess *session.Session, state State, logger zerolog.Logger, m *metrics.Metrics) *Flow {
	return &Flow{
		auth:      auth,
		sess:      sess,
		state:     state,
		validator: validator.New(),
		logger:    logger,
		metrics:   m,
	}
}

func (f *Flow) State() State {
	return f.state
}

func (f *Flow) Step() Step {
	return f.state.Step
}

// Begin returns the redirect target when the session already holds a
// patient id, or "" when the wizard should render its current step.
func (f *Flow) Begin(ctx context.Context) string {
	if f.sess != nil && f.sess.IsLoggedIn(ctx) {
		return RedirectLoggedIn
	}
	return ""
}

// SubmitCredentials asks the backend for an OTP and moves on to
// verification once it has been sent.
func (f *Flow) SubmitCredentials(ctx context.Context, email, password string) (*client.SignUpResult, error) {
	if err := f.expect(StepCredentials, "submit credentials"); err != nil {
		return nil, err
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.NewValidation("Please enter both email and password", nil)
	}
	if err := f.validator.Validate(credentialsInput{Email: email}); err != nil {
		return nil, errors.NewValidation(err.Error(), err)
	}

	result, err := f.auth.UserSignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if result.OTPSent {
		f.state.Email = email
		f.state.Password = password
		f.advance(StepOTPVerification)
	}
	return result, nil
}

// Back returns from verification to the credentials step.
func (f *Flow) Back() error {
	if err := f.expect(StepOTPVerification, "back"); err != nil {
		return err
	}
	f.advance(StepCredentials)
	return nil
}

// VerifyOTP checks otp and moves to registration once authenticated.
func (f *Flow) VerifyOTP(ctx context.Context, otp string) (*client.VerifyResult, error) {
	if err := f.expect(StepOTPVerification, "verify otp"); err != nil {
		return nil, err
	}

	otp = strings.TrimSpace(otp)
	if err := f.validator.Validate(otpInput{OTP: otp}); err != nil {
		return nil, errors.NewValidation("Please enter the 6-digit code sent to your email", err)
	}

	result, err := f.auth.VerifyOTP(ctx, f.sess, f.state.Email, f.state.Password, otp)
	if err != nil {
		return nil, err
	}
	if result.Authenticated {
		if result.PatientID != "" {
			f.state.PatientID = result.PatientID
		}
		f.advance(StepRegistration)
	}
	return result, nil
}

// Register submits the profile and completes the wizard. Credentials are
// dropped from the state once done.
func (f *Flow) Register(ctx context.Context, profile Profile) (*client.RegisterResult, error) {
	if err := f.expect(StepRegistration, "register"); err != nil {
		return nil, err
	}
	if err := f.validator.Validate(profile); err != nil {
		return nil, errors.NewValidation(err.Error(), err)
	}

	patientID := f.state.PatientID
	if patientID == "" {
		patientID = client.NewUserPlaceholder
	}
	result, err := f.auth.RegisterPatient(ctx, f.sess, client.Registration{
		PatientID: patientID,
		Name:      profile.Name,
		Age:       profile.Age,
		Gender:    profile.Gender,
		Email:     f.state.Email,
		Phone:     profile.Phone,
		Address:   profile.Address,
	})
	if err != nil {
		return nil, err
	}

	if result.PatientID != "" && f.state.PatientID == "" {
		f.state.PatientID = result.PatientID
	}
	f.state.Email = ""
	f.state.Password = ""
	f.advance(StepComplete)
	return result, nil
}

func (f *Flow) expect(step Step, action string) error {
	if f.state.Step != step {
		f.logger.Warn().
			Str("action", action).
			Str("step", f.state.Step.String()).
			Msg("sign-up action rejected")
		return errors.NewInvalidTransition(action, f.state.Step.String())
	}
	return nil
}

func (f *Flow) advance(to Step) {
	from := f.state.Step
	f.state.Step = to
	if f.metrics != nil {
		f.metrics.WizardTransitions.WithLabelValues(from.String(), to.String()).Inc()
	}
	f.logger.Debug().Str("from", from.String()).Str("to", to.String()).Msg("sign-up step changed")
}
