package mail

import (
	"fmt"
	"strings"
)

// Subjects for the account emails.
const (
	SubjectWelcome           = "Welcome!"
	SubjectVerifyOTP         = "Account Verification OTP"
	SubjectResetOTP          = "Password Reset OTP"
	SubjectResetConfirmation = "Password Reset Successful"
)

const emailVerifyTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
  <h2 style="color: #2d3748;">Verify your account</h2>
  <p style="font-size: 16px; color: #4a5568;">
    Use the code below to verify the account registered with <strong>{{email}}</strong>.
  </p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px; color: #1a202c;">{{otp}}</p>
  <p style="font-size: 14px; color: #718096;">This code expires in 10 minutes.</p>
</div>`

const passwordResetTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
  <h2 style="color: #2d3748;">Reset your password</h2>
  <p style="font-size: 16px; color: #4a5568;">
    A password reset was requested for <strong>{{email}}</strong>. Use the code below to continue.
  </p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px; color: #1a202c;">{{otp}}</p>
  <p style="font-size: 14px; color: #718096;">This code expires in 15 minutes. If you did not request a reset, you can ignore this email.</p>
</div>`

// VerifyOTPBody renders the account-verification email.
func VerifyOTPBody(email, code string) string {
	return strings.NewReplacer("{{otp}}", code, "{{email}}", email).Replace(emailVerifyTemplate)
}

// ResetOTPBody renders the password-reset email.
func ResetOTPBody(email, code string) string {
	return strings.NewReplacer("{{otp}}", code, "{{email}}", email).Replace(passwordResetTemplate)
}

// WelcomeBody renders the registration welcome email.
func WelcomeBody(name, email string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
  <h2 style="color: #2d3748;">Welcome, %s!</h2>
  <p style="font-size: 16px; color: #4a5568;">
    Your account has been successfully created with the email:
  </p>
  <p style="font-size: 18px; font-weight: bold; color: #1a202c;">%s</p>
  <p style="font-size: 14px; color: #718096;">If you have any questions or need help, feel free to contact us anytime.</p>
</div>`, name, email)
}

// ResetConfirmationBody renders the email sent after a successful password
// reset.
func ResetConfirmationBody(name string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
  <h2 style="color: #2c3e50;">Your Password Has Been Reset</h2>
  <p>Hello <strong>%s</strong>,</p>
  <p>This is to confirm that your password has been successfully changed.</p>
  <p>If you did not perform this action, please contact our support team immediately.</p>
</div>`, name)
}
