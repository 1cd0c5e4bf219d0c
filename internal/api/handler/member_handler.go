package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

const (
	defaultCountryCode = "+254"
	maxUploadBytes     = 8 << 20
)

var (
	memberDocuments    = []string{"id_front", "id_back", "selfie"}
	corporateDocuments = []string{"financial_statement", "business_registration_certificate", "kra_pin_certificate", "cr_12_certificate"}
)

// MemberHandler relays member onboarding uploads.
type MemberHandler struct {
	service ports.DashboardService
}

func NewMemberHandler(service ports.DashboardService) *MemberHandler {
	return &MemberHandler{service: service}
}

// Onboard handles POST /v1/members.
//
// @Summary      Onboard an individual member
// @Tags         members
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        first_name       formData  string  true   "First name"
// @Param        middle_name      formData  string  false  "Middle name"
// @Param        last_name        formData  string  true   "Last name"
// @Param        mobile_number    formData  string  true   "Mobile number"
// @Param        email            formData  string  true   "Email"
// @Param        document_type    formData  string  true   "ID or passport"
// @Param        document_number  formData  string  true   "Document number"
// @Param        id_front         formData  file    true   "ID front"
// @Param        id_back          formData  file    true   "ID back"
// @Param        selfie           formData  file    true   "Selfie"
// @Success      201              {object}  writeResponse
// @Failure      422              {object}  errorResponse
// @Router       /v1/members [post]
func (h *MemberHandler) Onboard(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req memberForm
	if err := bindValid(c, &req); err != nil {
		return err
	}

	form := &ports.MultipartForm{Fields: []ports.FormField{
		{Name: "first_name", Value: req.FirstName},
		{Name: "middle_name", Value: req.MiddleName},
		{Name: "last_name", Value: req.LastName},
		{Name: "mobile_number", Value: req.MobileNumber},
		{Name: "email", Value: req.Email},
		{Name: "document_type", Value: req.DocumentType},
		{Name: "document_number", Value: req.DocumentNumber},
		{Name: "country_code", Value: defaultCountryCode},
	}}
	for _, field := range memberDocuments {
		f, err := readFormFile(c, field, true)
		if err != nil {
			return err
		}
		form.Files = append(form.Files, *f)
	}

	env, err := h.service.Upload(c.Request().Context(), sess, "member.onboard", domain.PathMemberOnboarding, form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newWriteResponse(env))
}

// OnboardCorporate handles POST /v1/members/corporate.
//
// @Summary      Onboard a corporate member
// @Description  representatives is a JSON array of {full_name, position, id_passport, phone_number, email}.
// @Tags         members
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        institution_name                   formData  string  true   "Institution name"
// @Param        registration_number                formData  string  true   "Registration number"
// @Param        representatives                    formData  string  true   "Representatives (JSON array)"
// @Param        financial_statement                formData  file    false  "Financial statement"
// @Param        business_registration_certificate  formData  file    false  "Registration certificate"
// @Param        kra_pin_certificate                formData  file    false  "KRA PIN certificate"
// @Param        cr_12_certificate                  formData  file    false  "CR12 certificate"
// @Success      201                                {object}  writeResponse
// @Failure      422                                {object}  errorResponse
// @Router       /v1/members/corporate [post]
func (h *MemberHandler) OnboardCorporate(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req corporateMemberForm
	if err := bindValid(c, &req); err != nil {
		return err
	}

	var reps []representative
	if err := json.Unmarshal([]byte(req.Representatives), &reps); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "representatives must be a JSON array")
	}
	if len(reps) == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "at least one representative is required")
	}
	for i := range reps {
		if err := c.Validate(&reps[i]); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("representative %d: %s", i+1, err))
		}
	}

	form := &ports.MultipartForm{Fields: corporateFields(&req)}
	form.Fields = append(form.Fields, flattenRepresentatives(reps)...)
	for _, field := range corporateDocuments {
		f, err := readFormFile(c, field, false)
		if err != nil {
			return err
		}
		if f != nil {
			form.Files = append(form.Files, *f)
		}
	}

	env, err := h.service.Upload(c.Request().Context(), sess, "member.onboard_corporate", domain.PathCorporateOnboard, form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newWriteResponse(env))
}

func corporateFields(req *corporateMemberForm) []ports.FormField {
	fields := []ports.FormField{
		{Name: "institution_name", Value: req.InstitutionName},
		{Name: "institution_type", Value: req.InstitutionType},
		{Name: "registration_number", Value: req.RegistrationNumber},
		{Name: "date_of_registration", Value: req.DateOfRegistration},
		{Name: "postal_address", Value: req.PostalAddress},
		{Name: "physical_address", Value: req.PhysicalAddress},
		{Name: "town", Value: req.Town},
		{Name: "county", Value: req.County},
		{Name: "mobile_number", Value: req.MobileNumber},
		{Name: "email", Value: req.Email},
		{Name: "website", Value: req.Website},
		{Name: "kra_pin", Value: req.KRAPin},
		{Name: "annual_income", Value: req.AnnualIncome},
		{Name: "annual_expenses", Value: req.AnnualExpenses},
		{Name: "net_income", Value: req.NetIncome},
		{Name: "bank_name", Value: req.BankName},
		{Name: "bank_account_name", Value: req.BankAccountName},
		{Name: "bank_account_number", Value: req.BankAccountNumber},
	}
	// optional fields the caller left blank are not sent
	out := fields[:0]
	for _, f := range fields {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}

// flattenRepresentatives encodes reps as representatives[i][field] pairs.
func flattenRepresentatives(reps []representative) []ports.FormField {
	out := make([]ports.FormField, 0, len(reps)*len(representativeFields))
	for i, r := range reps {
		prefix := "representatives[" + strconv.Itoa(i) + "]"
		for j, v := range r.values() {
			out = append(out, ports.FormField{Name: prefix + "[" + representativeFields[j] + "]", Value: v})
		}
	}
	return out
}

// readFormFile loads one uploaded document. A missing optional file yields nil.
func readFormFile(c echo.Context, field string, required bool) (*ports.FormFile, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			if required {
				return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, field+" is required")
			}
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart body")
	}
	if fh.Size > maxUploadBytes {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, field+" is too large")
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", field, err)
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", field, err)
	}
	return &ports.FormFile{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
