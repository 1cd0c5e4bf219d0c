package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saccodesk/backoffice/internal/core/domain"
)

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected *echo.HTTPError, got %v", err)
	return he.Code
}

func TestListMembers_RelaysPageAndFilters(t *testing.T) {
	stub := &stubDashboard{page: &domain.Page{
		Items:    []json.RawMessage{json.RawMessage(`{"id":21}`), json.RawMessage(`{"id":22}`)},
		Count:    57,
		Pages:    3,
		Page:     2,
		PageSize: 20,
	}}
	h := NewDashboardHandler(stub)

	c, rec := newContext(t, http.MethodGet, "/v1/members?page=2&page_size=20&search_term=jane&status=x", nil, "", signedIn())
	require.NoError(t, h.ListMembers(c))

	assert.Equal(t, domain.PathMembers, stub.listPath)
	assert.Equal(t, domain.PageQuery{Page: 2, PageSize: 20}, stub.listQuery)
	assert.Equal(t, "jane", stub.listFilters.Get("search_term"))
	assert.NotContains(t, stub.listFilters, "status")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[{"id":21},{"id":22}],"pagination":{"count":57,"pages":3,"page":2,"page_size":20}}`, rec.Body.String())
}

func TestListMembers_PageDefaultsAndCap(t *testing.T) {
	stub := &stubDashboard{}
	h := NewDashboardHandler(stub)

	c, _ := newContext(t, http.MethodGet, "/v1/members?page_size=500", nil, "", signedIn())
	require.NoError(t, h.ListMembers(c))
	assert.Equal(t, domain.PageQuery{Page: 1, PageSize: domain.MaxPageSize}, stub.listQuery)
}

func TestListMembers_BadPage(t *testing.T) {
	h := NewDashboardHandler(&stubDashboard{})

	c, _ := newContext(t, http.MethodGet, "/v1/members?page=two", nil, "", signedIn())
	assert.Equal(t, http.StatusBadRequest, httpCode(t, h.ListMembers(c)))
}

func TestListMembers_RequiresAuthenticatedSession(t *testing.T) {
	h := NewDashboardHandler(&stubDashboard{})

	c, _ := newContext(t, http.MethodGet, "/v1/members", nil, "", &domain.Session{ID: "s", State: domain.StateAwaitingOtp})
	assert.ErrorIs(t, h.ListMembers(c), domain.ErrUnauthenticated)
}

func TestSummary_PassesDays(t *testing.T) {
	stub := &stubDashboard{data: json.RawMessage(`{"members":12}`)}
	h := NewDashboardHandler(stub)

	c, rec := newContext(t, http.MethodGet, "/v1/dashboard?days=30", nil, "", signedIn())
	require.NoError(t, h.Summary(c))

	assert.Equal(t, domain.PathDashboard, stub.detailPath)
	assert.Equal(t, "30", stub.detailQuery.Get("days"))
	assert.JSONEq(t, `{"data":{"members":12}}`, rec.Body.String())
}

func TestSearchMember_RequiresIDPassport(t *testing.T) {
	h := NewDashboardHandler(&stubDashboard{})

	c, _ := newContext(t, http.MethodGet, "/v1/members/search", nil, "", signedIn())
	assert.Equal(t, http.StatusBadRequest, httpCode(t, h.SearchMember(c)))
}

func TestMemberTransactions_UsesMemberPath(t *testing.T) {
	stub := &stubDashboard{}
	h := NewDashboardHandler(stub)

	c, _ := newContext(t, http.MethodGet, "/v1/members/7/transactions?account_number=ACC1", nil, "", signedIn())
	require.NoError(t, h.MemberTransactions(withParams(c, "id", "7")))

	assert.Equal(t, "/members/7/transactions/", stub.listPath)
	assert.Equal(t, "ACC1", stub.listFilters.Get("account_number"))
}

func TestApproveLoan_PostsDecision(t *testing.T) {
	stub := &stubDashboard{env: &domain.Envelope{Message: "Loan approved"}}
	h := NewDashboardHandler(stub)

	body := strings.NewReader(`{"approval_action":"approve","remarks":"ok"}`)
	c, rec := newContext(t, http.MethodPost, "/v1/loans/42/approval", body, echo.MIMEApplicationJSON, signedIn())
	require.NoError(t, h.ApproveLoan(withParams(c, "id", "42")))

	assert.Equal(t, "loan.approval", stub.writeAction)
	assert.Equal(t, "/sacco/loans/42/approval/", stub.writePath)
	req, ok := stub.writeBody.(*loanApprovalRequest)
	require.True(t, ok)
	assert.Equal(t, "approve", req.ApprovalAction)
	assert.Equal(t, "ok", req.Remarks)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Loan approved")
}

func TestApproveLoan_UnknownAction(t *testing.T) {
	stub := &stubDashboard{}
	h := NewDashboardHandler(stub)

	body := strings.NewReader(`{"approval_action":"maybe"}`)
	c, _ := newContext(t, http.MethodPost, "/v1/loans/42/approval", body, echo.MIMEApplicationJSON, signedIn())

	assert.Equal(t, http.StatusUnprocessableEntity, httpCode(t, h.ApproveLoan(withParams(c, "id", "42"))))
	assert.Empty(t, stub.writePath, "nothing should reach upstream")
}

func TestCreateStaff_Created(t *testing.T) {
	stub := &stubDashboard{env: &domain.Envelope{Message: "Staff added"}}
	h := NewDashboardHandler(stub)

	body := strings.NewReader(`{"first_name":"Jane","last_name":"Doe","id_number":"1234","mobile_number":"+254711000000","role":"teller","email":"jane@example.com"}`)
	c, rec := newContext(t, http.MethodPost, "/v1/staff", body, echo.MIMEApplicationJSON, signedIn())
	require.NoError(t, h.CreateStaff(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.PathStaff, stub.writePath)
}

func TestCreateStaff_RejectedUpstream(t *testing.T) {
	stub := &stubDashboard{err: &domain.RejectedError{Message: "Phone already registered"}}
	h := NewDashboardHandler(stub)

	body := strings.NewReader(`{"first_name":"Jane","last_name":"Doe","id_number":"1234","mobile_number":"+254711000000","role":"teller","email":"jane@example.com"}`)
	c, _ := newContext(t, http.MethodPost, "/v1/staff", body, echo.MIMEApplicationJSON, signedIn())

	var rejected *domain.RejectedError
	require.True(t, errors.As(h.CreateStaff(c), &rejected))
	assert.Equal(t, "Phone already registered", rejected.Message)
}

func TestListAPIRequests_ValidatesDates(t *testing.T) {
	stub := &stubDashboard{}
	h := NewDashboardHandler(stub)

	c, _ := newContext(t, http.MethodGet, "/v1/api-requests?start_date=01/02/2026", nil, "", signedIn())
	assert.Equal(t, http.StatusUnprocessableEntity, httpCode(t, h.ListAPIRequests(c)))

	c, _ = newContext(t, http.MethodGet, "/v1/api-requests?start_date=2026-02-01&end_date=2026-02-28", nil, "", signedIn())
	require.NoError(t, h.ListAPIRequests(c))
	assert.Equal(t, "2026-02-01", stub.listFilters.Get("start_date"))
	assert.Equal(t, "2026-02-28", stub.listFilters.Get("end_date"))
}
