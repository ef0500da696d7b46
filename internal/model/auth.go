package model

// AuthSignupRequest is the body of a signup call.
type AuthSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthLoginRequest is the body of a login call.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthTokenResponse carries the session token.
type AuthTokenResponse struct {
	Token string `json:"token"`
}
