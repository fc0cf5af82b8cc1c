package campussdk

import "time"

// Login outcomes.
const (
	OutcomeNoChallenge      = "no_challenge"
	OutcomeChallengePending = "challenge_pending"
)

type RegisterRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Phone         string `json:"phone,omitempty"`
	Branch        string `json:"branch,omitempty"`
	Program       string `json:"program,omitempty"`
	Course        string `json:"course,omitempty"`
	RequestedRole string `json:"requested_role,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

type RegisterResponse struct {
	Profile     Profile      `json:"profile"`
	RoleRequest *RoleRequest `json:"role_request,omitempty"`
}

// ApplyRequest is a pre-account application. Role and reason are required.
type ApplyRequest = RegisterRequest

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Token is a bearer token and its class.
type Token struct {
	Token     string    `json:"token"`
	TokenUse  string    `json:"token_use"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Challenge is returned instead of a session when a second factor is
// required.
type Challenge struct {
	PendingToken  string    `json:"pending_token"`
	ExpiresAt     time.Time `json:"expires_at"`
	Method        string    `json:"method"`
	MaskedContact string    `json:"masked_contact,omitempty"`
	DevCode       string    `json:"dev_code,omitempty"`
}

// LoginResponse is tagged by Outcome: exactly one of Session or Challenge
// is set.
type LoginResponse struct {
	Outcome   string     `json:"outcome"`
	Session   *Token     `json:"session,omitempty"`
	Challenge *Challenge `json:"challenge,omitempty"`
	Profile   *Profile   `json:"profile,omitempty"`
}

type VerifyChallengeRequest struct {
	PendingToken string `json:"pending_token"`
	Code         string `json:"code"`
}

type SessionResponse struct {
	Session Token   `json:"session"`
	Profile Profile `json:"profile"`
}

type ResendLoginCodeRequest struct {
	PendingToken string `json:"pending_token"`
}

type CodeIssued struct {
	MaskedPhone string    `json:"masked_phone"`
	ExpiresAt   time.Time `json:"expires_at"`
	DevCode     string    `json:"dev_code,omitempty"`
}

type Profile struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Role             string     `json:"role"`
	Verified         bool       `json:"verified"`
	Programs         []string   `json:"programs,omitempty"`
	Branch           string     `json:"branch,omitempty"`
	Program          string     `json:"program,omitempty"`
	Course           string     `json:"course,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	TwoFactorMethod  string     `json:"two_factor_method"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ProfileUpdate fields left nil are not changed.
type ProfileUpdate struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Branch  *string `json:"branch,omitempty"`
	Program *string `json:"program,omitempty"`
	Course  *string `json:"course,omitempty"`
}

type TwoFactorStatus struct {
	Enabled           bool   `json:"enabled"`
	Method            string `json:"method"`
	MaskedPhone       string `json:"masked_phone,omitempty"`
	EnrollmentPending bool   `json:"enrollment_pending"`
}

type TwoFactorSetupRequest struct {
	Method string `json:"method"`
	Phone  string `json:"phone,omitempty"`
}

type TwoFactorSetupResponse struct {
	Method      string     `json:"method"`
	Secret      string     `json:"secret,omitempty"`
	OTPAuthURL  string     `json:"otpauth_url,omitempty"`
	MaskedPhone string     `json:"masked_phone,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	DevCode     string     `json:"dev_code,omitempty"`
}

type TwoFactorConfirmRequest struct {
	Method string `json:"method"`
	Code   string `json:"code"`
}

type TwoFactorDisableRequest struct {
	Code string `json:"code"`
}

type SubmitRoleRequest struct {
	RequestedRole string `json:"requested_role"`
	Reason        string `json:"reason"`
	Program       string `json:"program,omitempty"`
}

type RoleRequest struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id,omitempty"`
	Email         string     `json:"email,omitempty"`
	Name          string     `json:"name,omitempty"`
	RequestedRole string     `json:"requested_role"`
	CurrentRole   string     `json:"current_role"`
	Reason        string     `json:"reason"`
	Program       string     `json:"program,omitempty"`
	Status        string     `json:"status"`
	ReviewedBy    string     `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	Remarks       string     `json:"remarks,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type RoleRequestList struct {
	Requests []RoleRequest `json:"requests"`
}

type DecisionRequest struct {
	Decision string `json:"decision"`
	Remarks  string `json:"remarks,omitempty"`
}

type DecisionResponse struct {
	Request  RoleRequest `json:"request"`
	Identity *Profile    `json:"identity,omitempty"`
}

type BatchDecisionRequest struct {
	RequestIDs []string `json:"request_ids"`
	Decision   string   `json:"decision"`
	Remarks    string   `json:"remarks,omitempty"`
}

type BatchItem struct {
	RequestID   string `json:"request_id"`
	OK          bool   `json:"ok"`
	Status      string `json:"status,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Error       string `json:"error,omitempty"`
	Description string `json:"error_description,omitempty"`
}

type BatchDecisionResponse struct {
	Processed int         `json:"processed"`
	Failed    int         `json:"failed"`
	Results   []BatchItem `json:"results"`
}

type VerificationStatus struct {
	Requests   map[string]int `json:"requests"`
	Identities int            `json:"identities"`
	Verified   int            `json:"verified"`
	Unverified int            `json:"unverified"`
	ByRole     map[string]int `json:"by_role"`
}

type Divergence struct {
	RequestID  string `json:"request_id"`
	Email      string `json:"email,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	Reason     string `json:"reason"`
	IdentityID string `json:"identity_id,omitempty"`
}

type ScanReport struct {
	Checked     int          `json:"checked"`
	Divergences []Divergence `json:"divergences"`
}

type RepairReport struct {
	Repaired int          `json:"repaired"`
	Fixed    []Divergence `json:"fixed"`
	Failed   []BatchItem  `json:"failed"`
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`
}

type JWKS struct {
	Keys []JWK `json:"keys"`
}
