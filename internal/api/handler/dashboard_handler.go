package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

// DashboardHandler relays the read and direct-write screens of the dashboard.
type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) list(c echo.Context, path string, filters ...string) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	q, err := pageQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.Request().Context(), sess, path, q, passthrough(c, filters...))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newListResponse(page))
}

func (h *DashboardHandler) detail(c echo.Context, path string, query url.Values) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	data, err := h.service.Detail(c.Request().Context(), sess, path, query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detailResponse{Data: data})
}

func (h *DashboardHandler) write(c echo.Context, action, path string, req any, status int) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := bindValid(c, req); err != nil {
		return err
	}
	env, err := h.service.Write(c.Request().Context(), sess, action, path, req)
	if err != nil {
		return err
	}
	return c.JSON(status, newWriteResponse(env))
}

// Summary handles GET /v1/dashboard.
//
// @Summary      Dashboard summary figures
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        days  query     int  false  "Look-back window in days"
// @Success      200   {object}  detailResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Summary(c echo.Context) error {
	return h.detail(c, domain.PathDashboard, passthrough(c, "days"))
}

// ListMembers handles GET /v1/members.
//
// @Summary      List members
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        page         query     int     false  "Page (default 1)"
// @Param        page_size    query     int     false  "Rows per page (default 10, max 100)"
// @Param        search_term  query     string  false  "Name, phone or member number"
// @Success      200          {object}  listResponse
// @Failure      401          {object}  errorResponse
// @Router       /v1/members [get]
func (h *DashboardHandler) ListMembers(c echo.Context) error {
	return h.list(c, domain.PathMembers, "search_term")
}

// SearchMember handles GET /v1/members/search.
//
// @Summary      Find a member by ID or passport number
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        id_passport  query     string  true  "National ID or passport number"
// @Success      200          {object}  detailResponse
// @Failure      400          {object}  errorResponse
// @Router       /v1/members/search [get]
func (h *DashboardHandler) SearchMember(c echo.Context) error {
	if c.QueryParam("id_passport") == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id_passport is required")
	}
	return h.detail(c, domain.PathMemberSearch, passthrough(c, "id_passport"))
}

// GetMember handles GET /v1/members/:id.
//
// @Summary      Member profile
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Member id"
// @Success      200  {object}  detailResponse
// @Router       /v1/members/{id} [get]
func (h *DashboardHandler) GetMember(c echo.Context) error {
	return h.detail(c, domain.MemberPath(c.Param("id")), nil)
}

// MemberAccounts handles GET /v1/members/:id/accounts.
//
// @Summary      Member accounts
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Member id"
// @Success      200  {object}  detailResponse
// @Router       /v1/members/{id}/accounts [get]
func (h *DashboardHandler) MemberAccounts(c echo.Context) error {
	return h.detail(c, domain.MemberAccountsPath(c.Param("id")), nil)
}

// MemberTransactions handles GET /v1/members/:id/transactions.
//
// @Summary      Member transactions
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        id              path      string  true   "Member id"
// @Param        account_number  query     string  false  "Restrict to one account"
// @Param        page            query     int     false  "Page"
// @Param        page_size       query     int     false  "Rows per page"
// @Success      200             {object}  listResponse
// @Router       /v1/members/{id}/transactions [get]
func (h *DashboardHandler) MemberTransactions(c echo.Context) error {
	return h.list(c, domain.MemberTransactionsPath(c.Param("id")), "account_number")
}

// ListStaff handles GET /v1/staff.
//
// @Summary      List staff
// @Tags         staff
// @Produce      json
// @Security     BearerAuth
// @Param        search_term  query     string  false  "Name or phone"
// @Param        page         query     int     false  "Page"
// @Param        page_size    query     int     false  "Rows per page"
// @Success      200          {object}  listResponse
// @Router       /v1/staff [get]
func (h *DashboardHandler) ListStaff(c echo.Context) error {
	return h.list(c, domain.PathStaff, "search_term")
}

// CreateStaff handles POST /v1/staff.
//
// @Summary      Add a staff member
// @Tags         staff
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      staffRequest  true  "Staff details"
// @Success      201   {object}  writeResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/staff [post]
func (h *DashboardHandler) CreateStaff(c echo.Context) error {
	return h.write(c, "staff.create", domain.PathStaff, &staffRequest{}, http.StatusCreated)
}

// SetStaffStatus handles POST /v1/staff/:id/status.
//
// @Summary      Enable or disable a staff member
// @Tags         staff
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Staff id"
// @Param        body  body      staffStatusRequest  true  "enable or disable"
// @Success      200   {object}  writeResponse
// @Router       /v1/staff/{id}/status [post]
func (h *DashboardHandler) SetStaffStatus(c echo.Context) error {
	return h.write(c, "staff.status", domain.StaffStatusPath(c.Param("id")), &staffStatusRequest{}, http.StatusOK)
}

// ListBranches handles GET /v1/branches.
//
// @Summary      List branches
// @Tags         branches
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse
// @Router       /v1/branches [get]
func (h *DashboardHandler) ListBranches(c echo.Context) error {
	return h.list(c, domain.PathBranches)
}

// CreateBranch handles POST /v1/branches.
//
// @Summary      Add a branch
// @Tags         branches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      branchRequest  true  "Branch"
// @Success      201   {object}  writeResponse
// @Router       /v1/branches [post]
func (h *DashboardHandler) CreateBranch(c echo.Context) error {
	return h.write(c, "branch.create", domain.PathBranches, &branchRequest{}, http.StatusCreated)
}

// ListTellers handles GET /v1/tellers.
//
// @Summary      List teller accounts
// @Tags         tellers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse
// @Router       /v1/tellers [get]
func (h *DashboardHandler) ListTellers(c echo.Context) error {
	return h.list(c, domain.PathTellers)
}

// TellerDashboard handles GET /v1/tellers/:id/dashboard.
//
// @Summary      Teller dashboard
// @Tags         tellers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Teller account id"
// @Success      200  {object}  detailResponse
// @Router       /v1/tellers/{id}/dashboard [get]
func (h *DashboardHandler) TellerDashboard(c echo.Context) error {
	return h.detail(c, domain.TellerDashboardPath(c.Param("id")), nil)
}

// ListLoanProducts handles GET /v1/loan-products.
//
// @Summary      List loan products
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse
// @Router       /v1/loan-products [get]
func (h *DashboardHandler) ListLoanProducts(c echo.Context) error {
	return h.list(c, domain.PathLoanProducts)
}

// ListLoans handles GET /v1/loans.
//
// @Summary      List loans
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        status          query     string  false  "pending, active, undisbursed..."
// @Param        account_number  query     string  false  "Loan account number"
// @Param        page            query     int     false  "Page"
// @Param        page_size       query     int     false  "Rows per page"
// @Success      200             {object}  listResponse
// @Router       /v1/loans [get]
func (h *DashboardHandler) ListLoans(c echo.Context) error {
	return h.list(c, domain.PathLoans, "status", "account_number")
}

// GetLoan handles GET /v1/loans/:id.
//
// @Summary      Loan details
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Loan id"
// @Success      200  {object}  detailResponse
// @Router       /v1/loans/{id} [get]
func (h *DashboardHandler) GetLoan(c echo.Context) error {
	return h.detail(c, domain.LoanPath(c.Param("id")), nil)
}

// ApproveLoan handles POST /v1/loans/:id/approval.
//
// @Summary      Approve or reject a loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Loan id"
// @Param        body  body      loanApprovalRequest  true  "Decision"
// @Success      200   {object}  writeResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/loans/{id}/approval [post]
func (h *DashboardHandler) ApproveLoan(c echo.Context) error {
	return h.write(c, "loan.approval", domain.LoanApprovalPath(c.Param("id")), &loanApprovalRequest{}, http.StatusOK)
}

// DisburseLoan handles POST /v1/loans/:id/disburse.
//
// @Summary      Disburse an approved loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Loan id"
// @Param        body  body      loanDisburseRequest  true  "Disbursement"
// @Success      200   {object}  writeResponse
// @Router       /v1/loans/{id}/disburse [post]
func (h *DashboardHandler) DisburseLoan(c echo.Context) error {
	return h.write(c, "loan.disburse", domain.LoanDisbursePath(c.Param("id")), &loanDisburseRequest{}, http.StatusOK)
}

// ListGLAccounts handles GET /v1/gl-accounts.
//
// @Summary      List SACCO GL accounts
// @Tags         gl
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse
// @Router       /v1/gl-accounts [get]
func (h *DashboardHandler) ListGLAccounts(c echo.Context) error {
	return h.list(c, domain.PathGLAccounts)
}

// ListTransactions handles GET /v1/transactions.
//
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        account_number  query     string  false  "Account number"
// @Success      200             {object}  listResponse
// @Router       /v1/transactions [get]
func (h *DashboardHandler) ListTransactions(c echo.Context) error {
	return h.list(c, domain.PathTransactions, "account_number")
}

// ListAPIRequests handles GET /v1/api-requests.
//
// @Summary      Upstream API request log
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        account_number  query     string  false  "Account number"
// @Param        start_date      query     string  false  "YYYY-MM-DD"
// @Param        end_date        query     string  false  "YYYY-MM-DD"
// @Success      200             {object}  listResponse
// @Failure      422             {object}  errorResponse
// @Router       /v1/api-requests [get]
func (h *DashboardHandler) ListAPIRequests(c echo.Context) error {
	var q apiRequestsQuery
	if err := bindValid(c, &q); err != nil {
		return err
	}
	return h.list(c, domain.PathAPIRequests, "account_number", "start_date", "end_date")
}
