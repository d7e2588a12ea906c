package models

import "time"

// User is the durable account record. OTP fields and their expiry
// counterparts are always set together and cleared together; expiry values
// are epoch milliseconds, 0 when unset.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	IsAccountVerified bool
	VerifyOTP         string
	VerifyOTPExpireAt int64
	ResetOTP          string
	ResetOTPExpireAt  int64
	CreatedAt         time.Time
}
