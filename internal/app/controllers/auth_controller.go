// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/ucu/innovators-hub/internal/app/models/dto"
	"github.com/ucu/innovators-hub/internal/app/services"
	"github.com/ucu/innovators-hub/internal/middleware"
)

// AuthController handles authentication and account provisioning
type AuthController struct {
	authService         services.AuthService
	provisioningService services.ProvisioningService
	logger              zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, provisioningService services.ProvisioningService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService:         authService,
		provisioningService: provisioningService,
		logger:              logger,
	}
}

// Register provisions an account for someone else
// @Summary Provision a new account
// @Description Creates an account with a generated temporary password and emails the credentials. Students receive an access number. The caller's role limits which roles may be granted.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterRequest true "Account information"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterResponse} "Account created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Role may not be granted by the caller"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	creatorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.RegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		c.logger.Warn().Msg("Invalid registration request payload")
		return
	}

	resp, err := c.provisioningService.Provision(ctx.Request.Context(), creatorID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("creatorID", creatorID).
		Int64("userID", resp.User.ID).
		Str("role", resp.User.Role).
		Bool("emailSent", resp.EmailSent).
		Msg("Account provisioned")

	message := "Account created, credentials sent by email"
	if !resp.EmailSent {
		message = "Account created, but the credentials email could not be sent"
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, message))
}

// Login handles user login
// @Summary User login
// @Description Authenticates with an email or a student access number and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account deactivated"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Debug().Err(err).Str("identifier", req.Identifier).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Login successful"))
}

// ForgotPassword starts a password reset
// @Summary Request a password reset
// @Description Emails a reset link to the student with the given access number. The response is the same whether or not the account exists.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Access number"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Reset requested"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 500 {object} dto.ErrorResponse "Reset email could not be sent"
// @Router /auth/forgot-password [post]
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.authService.RequestPasswordReset(ctx.Request.Context(), req.AccessNumber); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{
		Message: "If an account with that access number exists, a reset link has been sent",
	}, ""))
}

// ResetPassword sets a new password with a reset token
// @Summary Reset password
// @Description Sets a new password using the token from the reset email. Tokens are single use and expire after one hour.
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param request body dto.ResetPasswordRequest true "New password"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Password reset"
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired token, or invalid password"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/reset-password/{token} [post]
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req dto.ResetPasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ResetPassword(ctx.Request.Context(), ctx.Param("token"), req.Password); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Password has been reset"}, ""))
}

// ChangePassword changes the caller's password
// @Summary Change password
// @Description Changes the password of the signed-in user after checking the current one
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Password changed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or wrong current password"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/change-password [post]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ChangePassword(ctx.Request.Context(), userID, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Password changed"}, ""))
}
