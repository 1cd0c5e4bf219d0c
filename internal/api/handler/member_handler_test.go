package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, content := range files {
		part, err := w.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func fieldValue(form *ports.MultipartForm, name string) (string, bool) {
	for _, f := range form.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

var memberFields = map[string]string{
	"first_name":      "Jane",
	"last_name":       "Wanjiru",
	"mobile_number":   "0711000000",
	"email":           "jane@example.com",
	"document_type":   "national_id",
	"document_number": "12345678",
}

func TestOnboard_RelaysFieldsAndDocuments(t *testing.T) {
	stub := &stubDashboard{}
	h := NewMemberHandler(stub)

	body, ct := multipartBody(t, memberFields, map[string]string{"id_front": "f", "id_back": "b", "selfie": "s"})
	c, rec := newContext(t, http.MethodPost, "/v1/members", body, ct, signedIn())
	require.NoError(t, h.Onboard(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.PathMemberOnboarding, stub.uploadPath)

	cc, ok := fieldValue(stub.upload, "country_code")
	require.True(t, ok)
	assert.Equal(t, "+254", cc)
	name, _ := fieldValue(stub.upload, "first_name")
	assert.Equal(t, "Jane", name)

	require.Len(t, stub.upload.Files, 3)
	assert.Equal(t, "id_front", stub.upload.Files[0].Field)
	assert.Equal(t, []byte("f"), stub.upload.Files[0].Content)
	assert.Equal(t, "selfie", stub.upload.Files[2].Field)
}

func TestOnboard_MissingSelfie(t *testing.T) {
	stub := &stubDashboard{}
	h := NewMemberHandler(stub)

	body, ct := multipartBody(t, memberFields, map[string]string{"id_front": "f", "id_back": "b"})
	c, _ := newContext(t, http.MethodPost, "/v1/members", body, ct, signedIn())

	assert.Equal(t, http.StatusUnprocessableEntity, httpCode(t, h.Onboard(c)))
	assert.Nil(t, stub.upload)
}

func corporateFieldsFixture(reps string) map[string]string {
	return map[string]string{
		"institution_name":     "Umoja Traders",
		"institution_type":     "company",
		"registration_number":  "PVT-1",
		"date_of_registration": "2020-01-01",
		"postal_address":       "P.O. Box 1",
		"physical_address":     "Moi Avenue",
		"town":                 "Nairobi",
		"county":               "Nairobi",
		"mobile_number":        "0722000000",
		"email":                "info@umoja.co.ke",
		"representatives":      reps,
	}
}

func TestOnboardCorporate_FlattensRepresentatives(t *testing.T) {
	stub := &stubDashboard{}
	h := NewMemberHandler(stub)

	reps := `[{"full_name":"A One","position":"Director","id_passport":"1","phone_number":"0700000001","email":"a@umoja.co.ke"},
	          {"full_name":"B Two","position":"Secretary","id_passport":"2","phone_number":"0700000002","email":"b@umoja.co.ke"}]`
	body, ct := multipartBody(t, corporateFieldsFixture(reps), map[string]string{"kra_pin_certificate": "pin"})
	c, rec := newContext(t, http.MethodPost, "/v1/members/corporate", body, ct, signedIn())
	require.NoError(t, h.OnboardCorporate(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.PathCorporateOnboard, stub.uploadPath)

	v, ok := fieldValue(stub.upload, "representatives[1][email]")
	require.True(t, ok)
	assert.Equal(t, "b@umoja.co.ke", v)
	v, _ = fieldValue(stub.upload, "representatives[0][position]")
	assert.Equal(t, "Director", v)

	_, ok = fieldValue(stub.upload, "representatives")
	assert.False(t, ok, "the raw JSON field is not relayed")
	_, ok = fieldValue(stub.upload, "website")
	assert.False(t, ok, "blank optional fields are not relayed")

	require.Len(t, stub.upload.Files, 1)
	assert.Equal(t, "kra_pin_certificate", stub.upload.Files[0].Field)
}

func TestOnboardCorporate_BadRepresentatives(t *testing.T) {
	cases := map[string]string{
		"not json":      `Director A`,
		"empty":         `[]`,
		"missing email": `[{"full_name":"A","position":"D","id_passport":"1","phone_number":"07"}]`,
	}
	for name, reps := range cases {
		t.Run(name, func(t *testing.T) {
			stub := &stubDashboard{}
			h := NewMemberHandler(stub)

			body, ct := multipartBody(t, corporateFieldsFixture(reps), nil)
			c, _ := newContext(t, http.MethodPost, "/v1/members/corporate", body, ct, signedIn())

			assert.Equal(t, http.StatusUnprocessableEntity, httpCode(t, h.OnboardCorporate(c)))
			assert.Nil(t, stub.upload)
		})
	}
}

func TestFlattenRepresentatives_Order(t *testing.T) {
	out := flattenRepresentatives([]representative{{FullName: "A", Position: "P", IDPassport: "1", PhoneNumber: "07", Email: "a@x.io"}})
	names := make([]string, 0, len(out))
	for _, f := range out {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"representatives[0][full_name]",
		"representatives[0][position]",
		"representatives[0][id_passport]",
		"representatives[0][phone_number]",
		"representatives[0][email]",
	}, names)
}
