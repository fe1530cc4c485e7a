package dto

// LoginRequest accepts an email (staff) or access number (students) as identifier
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required" example:"student@ucu.ac.ug"`
	Password   string `json:"password" binding:"required" example:"admin123"`
}

// LoginResponse carries the access token and the signed-in user
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType" example:"Bearer"`
	ExpiresIn int64        `json:"expiresIn" example:"86400"`
	User      *UserSummary `json:"user"`
}

// RegisterRequest provisions an account with a generated temporary password
type RegisterRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Role             string `json:"role"`
	FacultyID        *int64 `json:"facultyId"`
	DepartmentID     *int64 `json:"departmentId"`
	AlternativeEmail string `json:"alternativeEmail" binding:"omitempty,email"`
}

// RegisterResponse reports the provisioned account. TempPassword is only
// present when the credentials email could not be delivered.
type RegisterResponse struct {
	User         *UserSummary `json:"user"`
	EmailSent    bool         `json:"emailSent"`
	TempPassword string       `json:"tempPassword,omitempty"`
}

// ForgotPasswordRequest starts a password reset for a student access number
type ForgotPasswordRequest struct {
	AccessNumber string `json:"accessNumber" binding:"required" example:"B123456"`
}

// ResetPasswordRequest sets a new password using a reset token
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// ChangePasswordRequest changes the password of the signed-in user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}
