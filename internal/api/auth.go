package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coursehub/coursehub-gateway/internal/gwerrors"
	"github.com/coursehub/coursehub-gateway/internal/models"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type emailInput struct {
	Email string `json:"email" validate:"required,email"`
}

type AuthService struct {
	client *Client
}

// Login signs in and installs the returned access token as the session credential
func (s *AuthService) Login(ctx context.Context, input LoginInput) (models.LoginResult, error) {
	if err := s.client.check(input); err != nil {
		return models.LoginResult{}, err
	}
	result, err := send[models.LoginResult](ctx, s.client, http.MethodPost, s.client.endpoints.Login, input)
	if err != nil {
		return models.LoginResult{}, err
	}
	if result.AccessToken == "" {
		return models.LoginResult{}, fmt.Errorf("%w: the login response has no access token", gwerrors.ErrInvalidResponse)
	}
	err = s.client.gateway.SetCredential(ctx, result.AccessToken)
	if err != nil {
		return models.LoginResult{}, err
	}
	return result, nil
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	if err := s.client.check(input); err != nil {
		return models.User{}, err
	}
	return send[models.User](ctx, s.client, http.MethodPost, "/auth/register", input)
}

// Logout signs out, the local session is cleared even when the backend rejects the call
func (s *AuthService) Logout(ctx context.Context) (models.MessageData, error) {
	result, logoutErr := send[models.MessageData](ctx, s.client, http.MethodPost, s.client.endpoints.Logout, nil)
	if logoutErr != nil {
		slog.Info("API", "message", "the backend rejected the logout, clearing the session anyway", "error", logoutErr)
	}
	clearErr := s.client.gateway.ClearSession(ctx)
	if clearErr != nil {
		slog.Error("API", "message", "could not clear the session", "error", clearErr)
	}
	if logoutErr != nil {
		return models.MessageData{}, logoutErr
	}
	return result, clearErr
}

func (s *AuthService) Me(ctx context.Context) (models.User, error) {
	return get[models.User](ctx, s.client, "/auth/me", nil)
}

// Refresh forces a credential refresh through the gateway
func (s *AuthService) Refresh(ctx context.Context) error {
	return s.client.gateway.Refresh(ctx)
}

func (s *AuthService) VerifyEmail(ctx context.Context, email, token string) (models.MessageData, error) {
	input := emailInput{Email: email}
	if err := s.client.check(input); err != nil {
		return models.MessageData{}, err
	}
	if token == "" {
		return models.MessageData{}, &ValidationError{Fields: map[string]string{"token": "token is required"}}
	}
	return send[models.MessageData](ctx, s.client, http.MethodPost, "/auth/verify-email/"+escape(token), input)
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) (models.MessageData, error) {
	input := emailInput{Email: email}
	if err := s.client.check(input); err != nil {
		return models.MessageData{}, err
	}
	return send[models.MessageData](ctx, s.client, http.MethodPost, "/auth/resend-verification-email", input)
}

// GoogleOAuthURL is the page a browser is sent to for signing in with Google
func (s *AuthService) GoogleOAuthURL() (string, error) {
	if s.client.baseURL == nil {
		return "", fmt.Errorf("the client has no base url")
	}
	return s.client.baseURL.JoinPath("auth", "google").String(), nil
}
