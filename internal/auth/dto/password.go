package dto

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,password"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	NewPassword string `json:"newPassword" validate:"required,password"`
}

type ResendVerificationInput struct {
	Email string `json:"email" validate:"required,email"`
}
