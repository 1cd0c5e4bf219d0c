package handler

import (
	"encoding/json"
	"time"

	"github.com/saccodesk/backoffice/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Sign-in ---

type loginRequest struct {
	Username string `json:"username" validate:"required,e164"`
	Password string `json:"password" validate:"required,min=4"`
}

type otpRequest struct {
	OTP string `json:"otp" validate:"required,max=12"`
}

type sessionResponse struct {
	State     domain.AuthState `json:"state"`
	Username  string           `json:"username,omitempty"`
	Profile   json.RawMessage  `json:"profile,omitempty" swaggertype:"object"`
	Notice    string           `json:"notice,omitempty"`
	Token     string           `json:"token,omitempty"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

// --- Lists ---

type paginationResponse struct {
	Count    int `json:"count"`
	Pages    int `json:"pages"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

type listResponse struct {
	Data       []json.RawMessage  `json:"data" swaggertype:"array,object"`
	Pagination paginationResponse `json:"pagination"`
}

type detailResponse struct {
	Data json.RawMessage `json:"data" swaggertype:"object"`
}

type writeResponse struct {
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty" swaggertype:"object"`
}

type apiRequestsQuery struct {
	AccountNumber string `query:"account_number"`
	StartDate     string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate       string `query:"end_date"   validate:"omitempty,datetime=2006-01-02"`
}

// --- Direct writes ---

type staffRequest struct {
	FirstName    string `json:"first_name"    validate:"required"`
	MiddleName   string `json:"middle_name"`
	LastName     string `json:"last_name"     validate:"required"`
	IDNumber     string `json:"id_number"     validate:"required"`
	MobileNumber string `json:"mobile_number" validate:"required,e164"`
	Role         string `json:"role"          validate:"required"`
	Email        string `json:"email"         validate:"required,email"`
}

type staffStatusRequest struct {
	StatusAction string `json:"status_action" validate:"required,oneof=enable disable"`
}

type branchRequest struct {
	Name     string `json:"name"     validate:"required"`
	Location string `json:"location" validate:"required"`
}

type loanApprovalRequest struct {
	ApprovalAction string `json:"approval_action" validate:"required,oneof=approve reject"`
	Remarks        string `json:"remarks"`
}

type loanDisburseRequest struct {
	GLAccountNumber string `json:"gl_account_number" validate:"required"`
	IsRTGS          bool   `json:"is_rtgs"`
	FeesPaidUpfront bool   `json:"fees_paid_upfront"`
}

// --- Member onboarding (multipart) ---

type memberForm struct {
	FirstName      string `form:"first_name"      validate:"required"`
	MiddleName     string `form:"middle_name"`
	LastName       string `form:"last_name"       validate:"required"`
	MobileNumber   string `form:"mobile_number"   validate:"required"`
	Email          string `form:"email"           validate:"required,email"`
	DocumentType   string `form:"document_type"   validate:"required"`
	DocumentNumber string `form:"document_number" validate:"required"`
}

type corporateMemberForm struct {
	InstitutionName    string `form:"institution_name"     validate:"required"`
	InstitutionType    string `form:"institution_type"     validate:"required"`
	RegistrationNumber string `form:"registration_number"  validate:"required"`
	DateOfRegistration string `form:"date_of_registration" validate:"required"`
	PostalAddress      string `form:"postal_address"       validate:"required"`
	PhysicalAddress    string `form:"physical_address"     validate:"required"`
	Town               string `form:"town"                 validate:"required"`
	County             string `form:"county"               validate:"required"`
	MobileNumber       string `form:"mobile_number"        validate:"required"`
	Email              string `form:"email"                validate:"required,email"`
	Website            string `form:"website"`
	KRAPin             string `form:"kra_pin"`
	AnnualIncome       string `form:"annual_income"`
	AnnualExpenses     string `form:"annual_expenses"`
	NetIncome          string `form:"net_income"`
	BankName           string `form:"bank_name"`
	BankAccountName    string `form:"bank_account_name"`
	BankAccountNumber  string `form:"bank_account_number"`
	// Representatives arrives as a JSON array in a single form field.
	Representatives string `form:"representatives" validate:"required"`
}

type representative struct {
	FullName    string `json:"full_name"    validate:"required"`
	Position    string `json:"position"     validate:"required"`
	IDPassport  string `json:"id_passport"  validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Email       string `json:"email"        validate:"required,email"`
}

// representativeFields fixes the order fields are flattened in.
var representativeFields = []string{"full_name", "position", "id_passport", "phone_number", "email"}

func (r representative) values() []string {
	return []string{r.FullName, r.Position, r.IDPassport, r.PhoneNumber, r.Email}
}

// --- Drafts ---

type glAccountDraft struct {
	AccountName string `json:"account_name" validate:"required"`
	Purpose     string `json:"purpose"      validate:"required"`
	Category    string `json:"category"     validate:"required"`
}

type loanProductDraft struct {
	Name                       string `json:"name"                          validate:"required"`
	GracePeriod                string `json:"grace_period"                  validate:"required,numeric"`
	MinimumLoanLimit           string `json:"minimum_loan_limit"            validate:"required,decimal_gt0"`
	MaximumLoanLimit           string `json:"maximum_loan_limit"            validate:"required,decimal_gt0"`
	LateRepaymentFeePercentage string `json:"late_repayment_fee_percentage" validate:"required,numeric"`
	LoanPeriodType             string `json:"loan_period_type"              validate:"required"`
	LoanPeriod                 int    `json:"loan_period"                   validate:"required,gt=0"`
	InterestRate               string `json:"interest_rate"                 validate:"required,numeric"`
	AllowAutoDisbursement      bool   `json:"allow_auto_disbursement"`
	ProcessingFee              string `json:"processing_fee"                validate:"required,numeric"`
	InsuranceFee               string `json:"insurance_fee"                 validate:"required,numeric"`
	LoanProductType            string `json:"loan_product_type"             validate:"required"`
	InternalCreditScore        string `json:"internal_credit_score"         validate:"required"`
	CRBCreditScore             string `json:"crb_credit_score"              validate:"required"`
	OtherCreditScore           string `json:"other_credit_score"            validate:"required"`
}

type loanApplicationDraft struct {
	LoanProductID             int               `json:"loan_product_id"             validate:"required,gt=0"`
	Amount                    string            `json:"amount"                      validate:"required,decimal_gt0"`
	RequireGuarantor          bool              `json:"require_guarantor"`
	Guarantors                []json.RawMessage `json:"guarantors,omitempty"        validate:"required_if=RequireGuarantor true"`
	DisbursementAccountNumber string            `json:"disbursement_account_number" validate:"required"`
	DisbursementChannel       string            `json:"disbursement_channel"        validate:"required"`
	AccountType               string            `json:"account_type"                validate:"required"`
	FeesPaidUpfront           bool              `json:"fees_paid_upfront"`
	CustomerLoanPeriod        string            `json:"customer_loan_period"        validate:"required"`
	RepaymentFrequency        string            `json:"repayment_frequency"         validate:"required"`
	AccountReference          string            `json:"account_reference,omitempty"`
}

type glDepositDraft struct {
	ReceiverAccountNumber string `json:"receiver_account_number" validate:"required"`
	SenderAccountNumber   string `json:"sender_account_number"   validate:"required"`
	Channel               string `json:"channel"                 validate:"required"`
	Amount                string `json:"amount"                  validate:"required,decimal_gt0"`
}

// transferDraft serves both GL transfers and teller cash deposits.
type transferDraft struct {
	ReceiverAccountNumber string `json:"receiver_account_number" validate:"required"`
	SenderAccountNumber   string `json:"sender_account_number"   validate:"required"`
	Amount                string `json:"amount"                  validate:"required,decimal_gt0"`
	Reason                string `json:"reason"                  validate:"required"`
}

type billPaymentDraft struct {
	ReceiverAccountNumber string `json:"receiver_account_number" validate:"required"`
	SenderAccountNumber   string `json:"sender_account_number"   validate:"required"`
	Channel               string `json:"channel"                 validate:"required"`
	Amount                string `json:"amount"                  validate:"required,decimal_gt0"`
	Reason                string `json:"reason"                  validate:"required"`
	BillerType            string `json:"biller_type"             validate:"required"`
	AccountReference      string `json:"account_reference"       validate:"required"`
}

// draftSchemas builds an empty form for each submission kind.
var draftSchemas = map[domain.SubmissionKind]func() any{
	domain.KindGLAccount:       func() any { return &glAccountDraft{} },
	domain.KindLoanProduct:     func() any { return &loanProductDraft{} },
	domain.KindLoanApplication: func() any { return &loanApplicationDraft{} },
	domain.KindGLDeposit:       func() any { return &glDepositDraft{} },
	domain.KindGLTransfer:      func() any { return &transferDraft{} },
	domain.KindTellerDeposit:   func() any { return &transferDraft{} },
	domain.KindBillPayment:     func() any { return &billPaymentDraft{} },
}

// --- Preferences ---

type preferencesRequest struct {
	TrackerTab    string `json:"tracker_tab"    validate:"required,max=40"`
	SelectedGroup string `json:"selected_group" validate:"max=80"`
}
