package domain

import "net/url"

// Upstream SACCO API paths. All are relative to the configured base URL.
const (
	PathSignIn      = "/auth/login/"
	PathValidateOtp = "/auth/login/otp/"

	PathDashboard        = "/dashboard/"
	PathMembers          = "/members/"
	PathMemberSearch     = "/members/search/"
	PathMemberOnboarding = "/members/onboarding/"
	PathCorporateOnboard = "/members/onboarding/corporate/"
	PathStaff            = "/auth/staff/"
	PathBranches         = "/tellers/branches/"
	PathTellers          = "/tellers/accounts/"
	PathLoanProducts     = "/sacco/loan-products/"
	PathLoans            = "/sacco/loans/"
	PathGLAccounts       = "/sacco/sacco-accounts/"
	PathGLDeposit        = "/payments/sacco-accounts/deposit/"
	PathGLTransfer       = "/payments/sacco-accounts/transfer/"
	PathGLBillPayment    = "/payments/sacco-accounts/bill-payments/"
	PathTransactions     = "/transactions/"
	PathAPIRequests      = "/transactions/api-requests/"
)

func MemberPath(id string) string             { return PathMembers + url.PathEscape(id) + "/" }
func MemberAccountsPath(id string) string     { return MemberPath(id) + "accounts/" }
func MemberTransactionsPath(id string) string { return MemberPath(id) + "transactions/" }
func LoanApplicationPath(memberID string) string {
	return MemberPath(memberID) + "loan-application/"
}
func StaffStatusPath(id string) string     { return PathStaff + url.PathEscape(id) + "/status/" }
func TellerDashboardPath(id string) string { return PathTellers + url.PathEscape(id) + "/dashboard/" }
func LoanPath(id string) string            { return PathLoans + url.PathEscape(id) + "/" }
func LoanApprovalPath(id string) string    { return LoanPath(id) + "approval/" }
func LoanDisbursePath(id string) string    { return LoanPath(id) + "disburse/" }

// SubmissionPath resolves the upstream path a confirmed draft is posted to.
func SubmissionPath(kind SubmissionKind, target string) (string, error) {
	switch kind {
	case KindGLAccount:
		return PathGLAccounts, nil
	case KindLoanProduct:
		return PathLoanProducts, nil
	case KindLoanApplication:
		if target == "" {
			return "", ErrUnknownSubmission
		}
		return LoanApplicationPath(target), nil
	case KindGLDeposit:
		return PathGLDeposit, nil
	case KindGLTransfer, KindTellerDeposit:
		return PathGLTransfer, nil
	case KindBillPayment:
		return PathGLBillPayment, nil
	}
	return "", ErrUnknownSubmission
}
