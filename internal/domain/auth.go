package domain

// ============================================================
// Auth — Request / Response types (matches frontend API contract)
// ============================================================

// GenerateOTPRequest is the body for POST /v1/auth/otp/generate and
// POST /v1/auth/signup/otp/generate.
type GenerateOTPRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest is the body for POST /v1/auth/otp/verify.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifySignupOTPRequest is the body for POST /v1/auth/signup/otp/verify.
// Name and profile image are applied to the user created on success.
type VerifySignupOTPRequest struct {
	Email      string `json:"email"`
	OTP        string `json:"otp"`
	Name       string `json:"name"`
	ProfileImg string `json:"profileImg,omitempty"`
}

// GoogleAuthRequest is the body for POST /v1/auth/google. The payload is
// produced by the frontend after a verified Google sign-in.
type GoogleAuthRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	ProfileImg string `json:"profileImg,omitempty"`
}

// AuthResponse is the body for a successful login or signup.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"` // seconds
	User        *User  `json:"user"`
}

// UpdateUserRequest is the body for PATCH /v1/users/me.
type UpdateUserRequest struct {
	Name       *string `json:"name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	ProfileImg *string `json:"profileImg,omitempty"`
}

// UpdateSettingsRequest is the body for PATCH /v1/settings.
type UpdateSettingsRequest struct {
	Currency      *Currency `json:"currency,omitempty"`
	Language      *string   `json:"language,omitempty"`
	CurrentIncome *float64  `json:"currentIncome,omitempty"`
	QuickAdd      *[]string `json:"quickAdd,omitempty"`
}
