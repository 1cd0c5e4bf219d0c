package domain

import (
	"encoding/json"
	"time"
)

// SubmissionKind names a write that goes through review-then-confirm.
type SubmissionKind string

const (
	KindGLAccount       SubmissionKind = "gl_account"
	KindLoanProduct     SubmissionKind = "loan_product"
	KindLoanApplication SubmissionKind = "loan_application"
	KindGLDeposit       SubmissionKind = "gl_deposit"
	KindGLTransfer      SubmissionKind = "gl_transfer"
	KindTellerDeposit   SubmissionKind = "teller_deposit"
	KindBillPayment     SubmissionKind = "bill_payment"
)

// SubmissionKinds lists every kind accepted by the drafts endpoints.
var SubmissionKinds = []SubmissionKind{
	KindGLAccount,
	KindLoanProduct,
	KindLoanApplication,
	KindGLDeposit,
	KindGLTransfer,
	KindTellerDeposit,
	KindBillPayment,
}

func (k SubmissionKind) Valid() bool {
	for _, known := range SubmissionKinds {
		if k == known {
			return true
		}
	}
	return false
}

// RequiresTarget reports whether the upstream path needs a resource id.
func (k SubmissionKind) RequiresTarget() bool {
	return k == KindLoanApplication
}

type DraftStatus string

const (
	DraftPending    DraftStatus = "pending"
	DraftConfirming DraftStatus = "confirming"
	DraftConfirmed  DraftStatus = "confirmed"
	DraftDiscarded  DraftStatus = "discarded"
)

// Draft holds the literal values of a write awaiting explicit confirmation.
type Draft struct {
	ID          string          `json:"id" bson:"_id"`
	SessionID   string          `json:"-" bson:"session_id"`
	Username    string          `json:"username" bson:"username"`
	Kind        SubmissionKind  `json:"kind" bson:"kind"`
	Target      string          `json:"target,omitempty" bson:"target,omitempty"`
	Payload     json.RawMessage `json:"values" bson:"payload"`
	Status      DraftStatus     `json:"status" bson:"status"`
	Message     string          `json:"message,omitempty" bson:"message,omitempty"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	ExpiresAt   time.Time       `json:"expires_at" bson:"expires_at"`
	ConfirmedAt *time.Time      `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
}

func (d *Draft) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && now.After(d.ExpiresAt)
}
