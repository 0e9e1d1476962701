package wizard

import "fmt"

// Step is a stage of the sign-up wizard.
type Step int

const (
	StepCredentials Step = iota
	StepOTPVerification
	StepRegistration
	StepComplete
)

func (s Step) String() string {
	switch s {
	case StepCredentials:
		return "credentials"
	case StepOTPVerification:
		return "otp_verification"
	case StepRegistration:
		return "registration"
	case StepComplete:
		return "complete"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(text []byte) error {
	for _, candidate := range []Step{StepCredentials, StepOTPVerification, StepRegistration, StepComplete} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown sign-up step %q", text)
}

// Title is the heading shown above the step.
func (s Step) Title() string {
	switch s {
	case StepCredentials:
		return "Create your account"
	case StepOTPVerification:
		return "Verify your email"
	case StepRegistration:
		return "Complete your profile"
	default:
		return ""
	}
}

func (s Step) Subtitle() string {
	switch s {
	case StepCredentials:
		return "Sign up to access health predictions and personalized care"
	case StepOTPVerification:
		return "Enter the OTP sent to your email"
	case StepRegistration:
		return "Please provide your details to complete registration"
	default:
		return ""
	}
}
