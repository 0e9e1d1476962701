package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is one recorded portal action. The e-mail address is never
// stored, only its keyed hash.
type AuditEvent struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Action      string    `json:"action" db:"action"`
	Outcome     string    `json:"outcome" db:"outcome"`
	SubjectHash string    `json:"subject_hash,omitempty" db:"subject_hash"`
	PatientID   string    `json:"patient_id,omitempty" db:"patient_id"`
	IPAddress   string    `json:"ip_address" db:"ip_address"`
	UserAgent   string    `json:"user_agent" db:"user_agent"`
	RequestID   string    `json:"request_id" db:"request_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

const (
	// Actions
	AuditActionSignIn            = "signin"
	AuditActionSignUpCredentials = "signup.credentials"
	AuditActionSignUpOTP         = "signup.otp"
	AuditActionSignUpBack        = "signup.back"
	AuditActionSignUpRegister    = "signup.register"
	AuditActionLogout            = "logout"
	AuditActionPredict           = "predict"
	AuditActionHistory           = "history"
	AuditActionDoctors           = "doctors"
	AuditActionReport            = "report"

	// Outcomes
	AuditOutcomeSuccess = "success"
	AuditOutcomeDenied  = "denied"
	AuditOutcomeFailure = "failure"
)
