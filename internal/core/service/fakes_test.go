package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

type call struct {
	method string
	path   string
	query  url.Values
	token  string
	body   []byte
}

// fakeAPI answers from canned responses and remembers every call.
type fakeAPI struct {
	mu       sync.Mutex
	calls    []call
	login    *domain.LoginResponse
	loginErr error
	otp      *domain.LoginResponse
	otpErr   error
	lastOTP  domain.OTPChallenge
	env      *domain.Envelope
	envErr   error
	onSignIn func()
}

func (f *fakeAPI) SignInWithPassword(_ context.Context, creds domain.Credentials) (*domain.LoginResponse, error) {
	if f.onSignIn != nil {
		f.onSignIn()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: "POST", path: domain.PathSignIn})
	return f.login, f.loginErr
}

func (f *fakeAPI) ValidateOtp(_ context.Context, ch domain.OTPChallenge) (*domain.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOTP = ch
	f.calls = append(f.calls, call{method: "POST", path: domain.PathValidateOtp})
	return f.otp, f.otpErr
}

func (f *fakeAPI) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.path == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) Get(_ context.Context, path string, query url.Values, token string) (*domain.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: "GET", path: path, query: query, token: token})
	return f.env, f.envErr
}

func (f *fakeAPI) Post(_ context.Context, path, token string, body any) (*domain.Envelope, error) {
	raw, _ := json.Marshal(body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: "POST", path: path, token: token, body: raw})
	return f.env, f.envErr
}

func (f *fakeAPI) PostMultipart(_ context.Context, path, token string, form *ports.MultipartForm) (*domain.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: "POST", path: path, token: token})
	return f.env, f.envErr
}

func (f *fakeAPI) lastCall() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return call{}
	}
	return f.calls[len(f.calls)-1]
}

// memStore is a SessionStore that round-trips through JSON like the redis one.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  map[string]time.Duration
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttl: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memStore) Put(_ context.Context, s *domain.Session, ttl time.Duration) error {
	if err := s.CheckInvariants(); err != nil {
		return err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID] = raw
	m.ttl[s.ID] = ttl
	return nil
}

func (m *memStore) Replace(ctx context.Context, s *domain.Session, ttl time.Duration) error {
	m.mu.Lock()
	_, ok := m.data[s.ID]
	m.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}
	return m.Put(ctx, s, ttl)
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memStore) raw(id string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Clone(m.data[id])
}

type memGuard struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemGuard() *memGuard { return &memGuard{held: map[string]bool{}} }

func (g *memGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[key] {
		return nil, domain.ErrSubmissionInFlight
	}
	g.held[key] = true
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.held, key)
	}, nil
}

// slowGuard runs onWait once before granting the lock, standing in for a
// request that finished while the caller was still waiting.
type slowGuard struct {
	*memGuard
	onWait func()
}

func (g *slowGuard) Acquire(ctx context.Context, key string) (func(), error) {
	if hook := g.onWait; hook != nil {
		g.onWait = nil
		hook()
	}
	return g.memGuard.Acquire(ctx, key)
}

// xorSealer is reversible and obviously not the plaintext.
type xorSealer struct{}

func (xorSealer) Seal(p []byte) ([]byte, error) { return xor(p), nil }
func (xorSealer) Open(p []byte) ([]byte, error) { return xor(p), nil }

func xor(p []byte) []byte {
	out := make([]byte, len(p))
	for i, b := range p {
		out[i] = b ^ 0x5a
	}
	return out
}

type memAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (a *memAudit) Record(e domain.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *memAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Action + ":" + e.Outcome
	}
	return out
}
