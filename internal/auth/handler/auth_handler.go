package handler

import (
	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/dto"
	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/service"
	autherror "github.com/AnthoniusHendriyanto/ecommerce-auth/internal/errors"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	userService *service.UserService
}

func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid input")
	}
	if err := validateStruct(input); err != nil {
		return err
	}

	resp, err := h.userService.Register(c.UserContext(), input)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid input")
	}
	if err := validateStruct(input); err != nil {
		return err
	}

	resp, err := h.userService.Login(c.UserContext(), input)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid input")
	}
	if err := validateStruct(input); err != nil {
		return err
	}

	tokens, err := h.userService.Refresh(c.UserContext(), input)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, tokens)
}

// Logout blacklists the presented bearer and, when supplied, the refresh
// token from the body. Always 200; repeating it is harmless.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input dto.LogoutInput
	// Body is optional.
	_ = c.BodyParser(&input)

	if err := h.userService.Logout(c.UserContext(), bearerToken(c), input.RefreshToken); err != nil {
		return err
	}

	return respondMessage(c, fiber.StatusOK, "logged out")
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	entry := SessionFromContext(c)
	if entry == nil {
		return autherror.ErrUnauthenticated
	}

	user, err := h.userService.GetUser(c.UserContext(), entry.UserID)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, user)
}

// GetAllUsers serves the admin listing; the role gate runs before it.
func (h *AuthHandler) GetAllUsers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	users, err := h.userService.ListUsers(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, users)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	entry := SessionFromContext(c)
	if entry == nil {
		return autherror.ErrUnauthenticated
	}

	var input dto.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid input")
	}
	if err := validateStruct(input); err != nil {
		return err
	}

	if err := h.userService.ChangePassword(c.UserContext(), entry.UserID, input); err != nil {
		return err
	}

	return respondMessage(c, fiber.StatusOK, "password changed")
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var input dto.ForgotPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid input")
	}
	if err := validateStruct(input); err != nil {
		return err
	}

	// The token itself travels out-of-band via the notifier, never in the
	// response body.
	if _, err := h.userService.ForgotPassword(c.UserContext(), input.Email); err != nil {
		return err
	}

	return respondMessage(c, fiber.StatusOK, "password reset email sent")
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return autherror.ErrInvalidOrExpiredToken
	}

	var input dto.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid input")
	}
	if err := validateStruct(input); err != nil {
		return err
	}

	resp, err := h.userService.ResetPassword(c.UserContext(), token, input)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, resp)
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return autherror.ErrInvalidOrExpiredToken
	}

	if err := h.userService.VerifyEmail(c.UserContext(), token); err != nil {
		return err
	}

	return respondMessage(c, fiber.StatusOK, "email verified")
}

func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var input dto.ResendVerificationInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid input")
	}
	if err := validateStruct(input); err != nil {
		return err
	}

	if err := h.userService.ResendVerification(c.UserContext(), input.Email); err != nil {
		return err
	}

	return respondMessage(c, fiber.StatusOK, "verification email sent")
}
