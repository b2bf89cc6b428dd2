package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tkamphefner/Inventory/internal/audit"
	"github.com/tkamphefner/Inventory/internal/config"
	"github.com/tkamphefner/Inventory/internal/dto"
	"github.com/tkamphefner/Inventory/internal/ident"
	"github.com/tkamphefner/Inventory/internal/model"
	"github.com/tkamphefner/Inventory/internal/repository"
	"github.com/tkamphefner/Inventory/internal/serviceerr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest, origin string) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CreateUser(ctx context.Context, req dto.CreateUserRequest, actor Actor) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, includeInactive bool) ([]dto.UserResponse, error)
	UpdateUser(ctx context.Context, id string, req dto.UpdateUserRequest, actor Actor) (*dto.UserResponse, error)
	DeactivateUser(ctx context.Context, id string, actor Actor) error
	ReactivateUser(ctx context.Context, id string, actor Actor) error
}

type authService struct {
	repo    repository.UserRepository
	cfg     *config.Config
	auditor audit.Recorder
}

func NewAuthService(repo repository.UserRepository, cfg *config.Config, auditor audit.Recorder) AuthService {
	return &authService{repo: repo, cfg: cfg, auditor: auditor}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest, origin string) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		// Same error for unknown user and wrong password — no username probing.
		return nil, serviceerr.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, serviceerr.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, serviceerr.ErrInactiveAccount
	}

	now := time.Now().UTC()
	if err := s.repo.StampLastLogin(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("auth: last_login stamp failed")
	}
	user.LastLoginAt = &now

	resp, err := s.buildTokens(user)
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, user.ID, "auth.login", "user", user.ID, nil, origin)
	return resp, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, serviceerr.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, serviceerr.ErrInvalidCredentials
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, serviceerr.ErrInvalidCredentials
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, serviceerr.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, serviceerr.ErrInactiveAccount
	}

	return s.buildTokens(user)
}

func (s *authService) CreateUser(ctx context.Context, req dto.CreateUserRequest, actor Actor) (*dto.UserResponse, error) {
	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", req.Role, serviceerr.ErrInvalidInput)
	}
	if existing, err := s.repo.FindByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, fmt.Errorf("username %s already in use: %w", req.Username, serviceerr.ErrDuplicateKey)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		ID:           ident.New(ident.PrefixUser),
		Username:     req.Username,
		PasswordHash: string(hash),
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translateDuplicate(err, "username")
	}

	s.auditor.Record(ctx, actor.ID, "user.create", "user", user.ID, map[string]interface{}{
		"username": req.Username,
		"role":     req.Role,
	}, actor.Origin)

	return userToResponse(user), nil
}

func (s *authService) ListUsers(ctx context.Context, includeInactive bool) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = *userToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) UpdateUser(ctx context.Context, id string, req dto.UpdateUserRequest, actor Actor) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "user", id)
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role %q: %w", *req.Role, serviceerr.ErrInvalidInput)
		}
		user.Role = role
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, actor.ID, "user.update", "user", id, nil, actor.Origin)
	return userToResponse(user), nil
}

func (s *authService) DeactivateUser(ctx context.Context, id string, actor Actor) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return asNotFound(err, "user", id)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor.ID, "user.deactivate", "user", id, nil, actor.Origin)
	return nil
}

func (s *authService) ReactivateUser(ctx context.Context, id string, actor Actor) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return asNotFound(err, "user", id)
	}
	if err := s.repo.Reactivate(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor.ID, "user.reactivate", "user", id, nil, actor.Origin)
	return nil
}

func (s *authService) buildTokens(user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         *userToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.User, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func userToResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        string(u.Role),
		Active:      u.Active,
		LastLoginAt: formatTimePtr(u.LastLoginAt),
	}
}
