package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// OTP is a stored one-time password. Only the bcrypt hash of the code is
// persisted.
type OTP struct {
	Email     string    `json:"email" db:"email"`
	Hash      string    `json:"-" db:"otp_hash"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
}

// SendOTPRequest asks for a code to be mailed.
type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest checks a mailed code. OTP accepts a JSON string or number.
type VerifyOTPRequest struct {
	Email string      `json:"email" binding:"required,email"`
	OTP   FlexibleOTP `json:"otp" binding:"required"`
}

// FlexibleOTP decodes from either a JSON string or a JSON number so clients
// that send the code numerically still verify.
type FlexibleOTP string

func (o *FlexibleOTP) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = FlexibleOTP(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("otp must be a string or number: %w", err)
	}
	*o = FlexibleOTP(n.String())
	return nil
}
