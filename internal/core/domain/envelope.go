package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Flag is the upstream "status" field. The SACCO API is not consistent about
// its type, so booleans, numbers and strings are all accepted.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = false
		return nil
	}

	switch b[0] {
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = Flag(v)
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "success", "ok":
			*f = true
		default:
			*f = false
		}
	default:
		n, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return err
		}
		*f = n != 0
	}
	return nil
}

// Envelope is the common upstream response shape. Status is nil when the
// upstream left it out, which list endpoints usually do.
type Envelope struct {
	Status      *Flag           `json:"status,omitempty"`
	Message     string          `json:"message,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	Count       int             `json:"count,omitempty"`
	Pages       int             `json:"pages,omitempty"`
	CurrentPage int             `json:"current_page,omitempty"`
}

// Rejected reports an explicit falsy status.
func (e *Envelope) Rejected() bool {
	return e.Status != nil && !bool(*e.Status)
}

// Succeeded reports an explicit truthy status.
func (e *Envelope) Succeeded() bool {
	return e.Status != nil && bool(*e.Status)
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageQuery is a server-side pagination request.
type PageQuery struct {
	Page     int
	PageSize int
}

// Normalize applies defaults and caps the page size.
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

// Page is one page of upstream rows, kept as raw JSON.
type Page struct {
	Items    []json.RawMessage
	Count    int
	Pages    int
	Page     int
	PageSize int
}

// PageFromEnvelope turns a paginated envelope into a Page. The requested page
// is used when the upstream omits current_page.
func PageFromEnvelope(env *Envelope, q PageQuery) (*Page, error) {
	p := &Page{
		Items:    []json.RawMessage{},
		Count:    env.Count,
		Pages:    env.Pages,
		Page:     env.CurrentPage,
		PageSize: q.PageSize,
	}
	if p.Page == 0 {
		p.Page = q.Page
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		if err := json.Unmarshal(data, &p.Items); err != nil {
			return nil, err
		}
	}
	if p.Count == 0 {
		p.Count = len(p.Items)
	}
	return p, nil
}
