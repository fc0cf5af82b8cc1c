package campussdk

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Client talks to the public endpoints of the service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a ten second timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// LoginResult is either a Session or a Challenge.
type LoginResult struct {
	Session   *Session
	Challenge *Challenge
	Profile   *Profile
}

// Register creates an account. The account holds the pending role until a
// requested role is approved.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/register", "", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Apply files a role request for someone without an account.
func (c *Client) Apply(ctx context.Context, req ApplyRequest) (*RoleRequest, error) {
	var out RoleRequest
	if err := c.do(ctx, http.MethodPost, "/v1/role-requests/apply", "", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login checks a password.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/login", "", LoginRequest{Email: email, Password: password}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}

	switch out.Outcome {
	case OutcomeNoChallenge:
		if out.Session == nil {
			return nil, errors.New("campussdk: login response without session")
		}
		return &LoginResult{Session: c.NewSession(out.Session.Token), Profile: out.Profile}, nil
	case OutcomeChallengePending:
		if out.Challenge == nil {
			return nil, errors.New("campussdk: login response without challenge")
		}
		return &LoginResult{Challenge: out.Challenge}, nil
	}
	return nil, errors.New("campussdk: unknown login outcome " + out.Outcome)
}

// VerifyChallenge answers a login challenge and returns the full session.
func (c *Client) VerifyChallenge(ctx context.Context, pendingToken, code string) (*Session, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/2fa/verify", "",
		VerifyChallengeRequest{PendingToken: pendingToken, Code: code}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return c.NewSession(out.Session.Token), nil
}

// ResendLoginCode sends a fresh SMS code for a pending login.
func (c *Client) ResendLoginCode(ctx context.Context, pendingToken string) (*CodeIssued, error) {
	var out CodeIssued
	err := c.do(ctx, http.MethodPost, "/v1/auth/2fa/resend", "",
		ResendLoginCodeRequest{PendingToken: pendingToken}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetJWKS(ctx context.Context) (*JWKS, error) {
	var out JWKS
	if err := c.do(ctx, http.MethodGet, "/.well-known/jwks.json", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// NewSession wraps an existing session token.
func (c *Client) NewSession(token string) *Session {
	return &Session{client: c, Token: token}
}
