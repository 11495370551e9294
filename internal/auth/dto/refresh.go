package dto

type RefreshInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutInput struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}
