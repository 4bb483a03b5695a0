package auth

// UserClaims is the engine-relevant slice of the identity token. The
// billing/identity collaborator issues the tokens; this service only
// verifies them.
type UserClaims struct {
	UserID           string `json:"user_id"`
	Email            string `json:"email"`
	SubscriptionTier string `json:"subscription_tier"` // "", "basic", "pro"
	IsAdmin          bool   `json:"is_admin"`
}

// Subscription tiers recognized by the paywall gate.
const (
	TierBasic = "basic"
	TierPro   = "pro"
)

// AuthError is a coded authentication failure, safe to surface to clients.
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e AuthError) Error() string {
	return e.Message
}

var (
	ErrUnauthorized         = AuthError{Code: "UNAUTHORIZED", Message: "authentication required"}
	ErrInvalidToken         = AuthError{Code: "INVALID_TOKEN", Message: "invalid or malformed token"}
	ErrTokenExpired         = AuthError{Code: "TOKEN_EXPIRED", Message: "token has expired"}
	ErrSubscriptionRequired = AuthError{Code: "SUBSCRIPTION_REQUIRED", Message: "an active subscription is required"}
)
