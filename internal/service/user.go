package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/smarts8855/online-shop/internal/domain"
	"github.com/smarts8855/online-shop/pkg/utils"
)

const msgInvalidLogin = "Invalid login credentials"

type TokenIssuer interface {
	Issue(uid string) (string, error)
}

type RegisterInput struct {
	Name      string `json:"name"      binding:"required,max=64"`
	Email     string `json:"email"     binding:"required,email"`
	Password  string `json:"password"  binding:"required,min=6,max=72"`
	Phone     string `json:"phone"     binding:"omitempty,max=32"`
	Street    string `json:"street"    binding:"omitempty,max=191"`
	Apartment string `json:"apartment" binding:"omitempty,max=64"`
	Zip       string `json:"zip"       binding:"omitempty,max=16"`
	City      string `json:"city"      binding:"omitempty,max=64"`
	Country   string `json:"country"   binding:"omitempty,max=64"`
}

type LoginResult struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

type UserService struct {
	users  domain.UserRepository
	tokens TokenIssuer
	log    *zap.Logger
}

func NewUserService(users domain.UserRepository, tokens TokenIssuer, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{users: users, tokens: tokens, log: l}
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Register always creates a regular user; roles are granted through SetRole.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	found, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if found != nil {
		return nil, domain.E(domain.KindConflict, "user already exists")
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Phone:        in.Phone,
		Street:       in.Street,
		Apartment:    in.Apartment,
		Zip:          in.Zip,
		City:         in.City,
		Country:      in.Country,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if isDupKey(err) {
			return nil, domain.E(domain.KindConflict, "user already exists")
		}
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

// Login fails the same way for an unknown email and a wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.E(domain.KindInvalidCredentials, msgInvalidLogin)
	}
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin(), Token: tok}, nil
}

func (s *UserService) Profile(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.E(domain.KindNotFound, "no user with the ID found")
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}

func (s *UserService) SetRole(ctx context.Context, id, role string) (*domain.User, error) {
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, domain.E(domain.KindInvalidInput, "role must be user or admin")
	}
	u, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == role {
		return u, nil
	}
	u.Role = role
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user role changed", zap.String("user_id", u.ID), zap.String("role", role))
	return u, nil
}

// EnsureAdmin registers email as an administrator, or promotes the existing account.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, name string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		if u, err = s.Register(ctx, RegisterInput{Name: name, Email: email, Password: password}); err != nil {
			return nil, err
		}
	}
	return s.SetRole(ctx, u.ID, domain.RoleAdmin)
}

func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
