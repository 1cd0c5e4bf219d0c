package ports

import (
	"context"
	"net/url"

	"github.com/saccodesk/backoffice/internal/core/domain"
)

// FormField is a plain multipart form value.
type FormField struct {
	Name  string
	Value string
}

// FormFile is a multipart file part.
type FormFile struct {
	Field       string
	Filename    string
	ContentType string
	Content     []byte
}

// MultipartForm is an upload relayed to the upstream API.
type MultipartForm struct {
	Fields []FormField
	Files  []FormFile
}

// SaccoAPI is the remote SACCO REST API. Every call is a fresh round trip.
// token is the upstream bearer token; empty means an unauthenticated call.
type SaccoAPI interface {
	SignInWithPassword(ctx context.Context, creds domain.Credentials) (*domain.LoginResponse, error)
	ValidateOtp(ctx context.Context, challenge domain.OTPChallenge) (*domain.LoginResponse, error)

	Get(ctx context.Context, path string, query url.Values, token string) (*domain.Envelope, error)
	Post(ctx context.Context, path, token string, body any) (*domain.Envelope, error)
	PostMultipart(ctx context.Context, path, token string, form *MultipartForm) (*domain.Envelope, error)
}
