package businessflow

import (
	"context"
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/inmoventa/commission-engine/app/dto"
	"github.com/inmoventa/commission-engine/app/services"
	"github.com/inmoventa/commission-engine/config"
)

// AuthFlow handles operator authentication. The engine is operated by a
// single configured operator account; there is no user registration.
type AuthFlow interface {
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error)
}

// AuthFlowImpl implements AuthFlow
type AuthFlowImpl struct {
	tokenService services.TokenService
	adminConfig  config.AdminConfig
	jwtConfig    config.JWTConfig
}

// NewAuthFlow creates a new auth flow instance
func NewAuthFlow(tokenService services.TokenService, adminConfig config.AdminConfig, jwtConfig config.JWTConfig) AuthFlow {
	return &AuthFlowImpl{
		tokenService: tokenService,
		adminConfig:  adminConfig,
		jwtConfig:    jwtConfig,
	}
}

// Login verifies the operator credentials and issues tokens
func (f *AuthFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	if subtle.ConstantTimeCompare([]byte(req.Username), []byte(f.adminConfig.Username)) != 1 {
		return nil, ErrIncorrectCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(f.adminConfig.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrIncorrectCredentials
	}

	accessToken, refreshToken, err := f.tokenService.GenerateTokens(f.adminConfig.Username)
	if err != nil {
		return nil, NewBusinessError("TOKEN_ERROR", "Failed to generate tokens", err)
	}

	return &dto.LoginResponse{
		Message:      "Login successful",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(f.jwtConfig.AccessTokenTTL.Seconds()),
	}, nil
}

// RefreshToken rotates the token pair using a valid refresh token
func (f *AuthFlowImpl) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error) {
	accessToken, refreshToken, err := f.tokenService.RefreshToken(req.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("TOKEN_ERROR", "Invalid refresh token", err)
	}

	return &dto.RefreshTokenResponse{
		Message:      "Tokens refreshed successfully",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(f.jwtConfig.AccessTokenTTL.Seconds()),
	}, nil
}
