package client

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Registration is the patient profile submitted to complete sign-up.
// PatientID may be empty or the "new-user" placeholder, in which case it
// is not sent.
type Registration struct {
	PatientID string `json:"uuid"`
	Name      string `json:"name" validate:"required"`
	Age       int    `json:"age" validate:"required,gte=1,lte=130"`
	Gender    Gender `json:"gender" validate:"required,oneof=Male Female Other"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
}

// NewUserPlaceholder is the patient id the views send before one exists.
const NewUserPlaceholder = "new-user"

type LoginOutcome int

const (
	LoginSucceeded LoginOutcome = iota
	LoginUnknownUser
	LoginWrongPassword
	LoginDenied
)

func (o LoginOutcome) String() string {
	switch o {
	case LoginSucceeded:
		return "success"
	case LoginUnknownUser:
		return "unknown_user"
	case LoginWrongPassword:
		return "wrong_password"
	default:
		return "denied"
	}
}

// Message is the text shown to the user for the outcome.
func (o LoginOutcome) Message() string {
	switch o {
	case LoginSucceeded:
		return "Login successful. Redirecting..."
	case LoginUnknownUser:
		return "User not found. Please sign up first."
	case LoginWrongPassword:
		return "Invalid password. Please try again."
	default:
		return "Login failed. Please try again."
	}
}

// LoginResult is the normalized sign-in response.
type LoginResult struct {
	PatientID       string `json:"uuid,omitempty"`
	CanLogin        bool   `json:"user_can_login"`
	UserExists      bool   `json:"is_user_valid"`
	PasswordMatched bool   `json:"is_valid_password"`
}

// Outcome classifies the result. An unknown user wins over a wrong password.
func (r LoginResult) Outcome() LoginOutcome {
	switch {
	case r.CanLogin && r.UserExists && r.PasswordMatched:
		return LoginSucceeded
	case !r.UserExists:
		return LoginUnknownUser
	case !r.PasswordMatched:
		return LoginWrongPassword
	default:
		return LoginDenied
	}
}

type SignUpResult struct {
	OTPSent bool   `json:"otp_sent"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type VerifyResult struct {
	Authenticated bool   `json:"authenticated"`
	PatientID     string `json:"uuid,omitempty"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
}

type RegisterResult struct {
	Message   string `json:"message"`
	PatientID string `json:"uuid,omitempty"`
}

// Prediction is the classifier output for one retinal image.
type Prediction struct {
	PredictedClass string  `json:"predicted_class"`
	Confidence     float64 `json:"confidence"`
}

// HistoryItem is one past prediction. ConfidenceEstimated marks a
// confidence filled in locally because the backend omitted it.
type HistoryItem struct {
	ID                  string   `json:"id"`
	PatientID           string   `json:"uuid,omitempty"`
	PredictedClass      string   `json:"predicted_class"`
	Confidence          *float64 `json:"confidence,omitempty"`
	ConfidenceEstimated bool     `json:"confidence_estimated"`
	Timestamp           string   `json:"timestamp"`
}

type Doctor struct {
	Name           string  `json:"name"`
	Specialization string  `json:"specialization,omitempty"`
	Hospital       string  `json:"hospital_name,omitempty"`
	Address        string  `json:"address,omitempty"`
	Latitude       float64 `json:"lat"`
	Longitude      float64 `json:"lng"`
	Experience     float64 `json:"experience"`
	Contact        string  `json:"contact,omitempty"`
	Email          string  `json:"email,omitempty"`
	DistanceKm     float64 `json:"distance_km"`
}

type Report struct {
	URL string `json:"report_url"`
}

// Wire shapes. Pointers mark fields that must be present.

type loginWire struct {
	UUID            string `json:"uuid"`
	UserCanLogin    *bool  `json:"user_can_login" validate:"required"`
	IsUserValid     *bool  `json:"is_user_valid" validate:"required"`
	IsValidPassword *bool  `json:"is_valid_password" validate:"required"`
}

type signUpWire struct {
	OTPSent *bool  `json:"otp_sent" validate:"required"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type verifyWire struct {
	Authenticated *bool  `json:"authenticated" validate:"required"`
	UUID          string `json:"uuid"`
	Message       string `json:"message"`
	Error         string `json:"error"`
}

type registerWire struct {
	Message string `json:"message" validate:"required"`
	UUID    string `json:"uuid"`
}

type predictionWire struct {
	PredictedClass string   `json:"predicted_class" validate:"required"`
	Confidence     *float64 `json:"confidence" validate:"required,gte=0,lte=1"`
}

type historyWire struct {
	ID             json.RawMessage `json:"id"`
	MongoID        json.RawMessage `json:"_id"`
	UUID           string          `json:"uuid"`
	PredictedClass string          `json:"predicted_class" validate:"required"`
	Confidence     *float64        `json:"confidence" validate:"omitempty,gte=0,lte=1"`
	Timestamp      string          `json:"timestamp" validate:"required"`
}

// identifier prefers "id" over "_id"; both may be strings or numbers.
func (w historyWire) identifier() string {
	if id := rawIdentifier(w.ID); id != "" {
		return id
	}
	return rawIdentifier(w.MongoID)
}

func rawIdentifier(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(raw, &oid); err == nil {
		return oid.OID
	}
	return ""
}

type doctorWire struct {
	Name           string  `json:"name" validate:"required"`
	Specialization string  `json:"specialization"`
	HospitalName   string  `json:"hospital_name"`
	Address        string  `json:"address"`
	Lat            float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng            float64 `json:"lng" validate:"gte=-180,lte=180"`
	Experience     float64 `json:"experience" validate:"gte=0"`
	Contact        string  `json:"contact"`
	Email          string  `json:"email"`
	DistanceKm     float64 `json:"distance_km" validate:"gte=0"`
}

type reportWire struct {
	ReportURL string `json:"report_url" validate:"required"`
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
