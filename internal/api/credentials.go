package api

import (
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// Credentials supplies the bearer token for backend calls and forgets it
// when the backend rejects it.
type Credentials interface {
	Token() string
	Clear() error
}

// StaticCredentials holds a token in memory.
type StaticCredentials struct {
	token string
	mu    sync.RWMutex
}

// NewStaticCredentials returns credentials holding token.
func NewStaticCredentials(token string) *StaticCredentials {
	return &StaticCredentials{token: token}
}

// Token implements Credentials.
func (s *StaticCredentials) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Clear implements Credentials.
func (s *StaticCredentials) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// sessionTransport attaches the current bearer token, if any, using an
// oauth2 static token source. Requests go out unauthenticated once the
// credential is cleared.
type sessionTransport struct {
	base        http.RoundTripper
	credentials Credentials
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := ""
	if t.credentials != nil {
		token = t.credentials.Token()
	}
	if token == "" {
		return t.base.RoundTrip(req)
	}

	authed := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   t.base,
	}
	return authed.RoundTrip(req)
}
