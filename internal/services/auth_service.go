package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/kvstore"
	"storefront/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	ResetTokensKey = "resetTokens"
	resetTokenTTL  = time.Hour
	minPasswordLen = 6
)

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type AuthResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Profile is the account view: the user, the distinct addresses they have
// shipped to, and their orders.
type Profile struct {
	domain.User
	Addresses []domain.ShippingAddress `json:"addresses"`
	Orders    []domain.Order           `json:"orders"`
}

// Claims are carried by bearer tokens.
type Claims struct {
	UserID string      `json:"id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type resetToken struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AuthService struct {
	users    repository.UserRepository
	orders   repository.OrderRepository
	store    kvstore.Store
	secret   []byte
	tokenTTL time.Duration
	cost     int
	now      func() time.Time
	mu       sync.Mutex
}

func NewAuthService(users repository.UserRepository, orders repository.OrderRepository, store kvstore.Store, secret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		orders:   orders,
		store:    store,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// SetHashCost lowers the bcrypt cost, for tests.
func (s *AuthService) SetHashCost(cost int) {
	s.cost = cost
}

func validatePassword(pw string) error {
	if len(pw) < minPasswordLen {
		return invalid("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("a valid email is required")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         domain.RoleClient,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	slog.Info("user registered", "user_id", user.ID)

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: token, User: *user}, nil
}

// ParseToken validates a bearer token and returns its claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) user(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return &Profile{User: *user, Addresses: distinctAddresses(orders), Orders: orders}, nil
}

func distinctAddresses(orders []domain.Order) []domain.ShippingAddress {
	seen := make(map[domain.ShippingAddress]bool)
	out := []domain.ShippingAddress{}
	for _, o := range orders {
		if !seen[o.ShippingAddress] {
			seen[o.ShippingAddress] = true
			out = append(out, o.ShippingAddress)
		}
	}
	return out
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.User, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated := patch.Apply(*user)
	updated.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RequestPasswordReset issues a one hour token. Unknown emails get an empty
// token and no error, so the endpoint does not reveal which accounts exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return "", err
	}
	if user == nil {
		slog.Info("password reset requested for unknown email")
		return "", nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tokens, err := s.loadResetTokens(ctx)
	if err != nil {
		return "", err
	}
	now := s.now()
	for k, t := range tokens {
		if now.After(t.ExpiresAt) {
			delete(tokens, k)
		}
	}
	token := uuid.NewString()
	tokens[token] = resetToken{UserID: user.ID, ExpiresAt: now.Add(resetTokenTTL)}
	if err := kvstore.SetJSON(ctx, s.store, ResetTokensKey, tokens); err != nil {
		return "", err
	}
	slog.Info("password reset token issued", "user_id", user.ID)
	return token, nil
}

// ResetPassword consumes the token and stores the new password hash.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tokens, err := s.loadResetTokens(ctx)
	if err != nil {
		return err
	}
	rt, ok := tokens[token]
	if !ok || s.now().After(rt.ExpiresAt) {
		return ErrInvalidToken
	}

	user, err := s.user(ctx, rt.UserID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	delete(tokens, token)
	return kvstore.SetJSON(ctx, s.store, ResetTokensKey, tokens)
}

func (s *AuthService) loadResetTokens(ctx context.Context) (map[string]resetToken, error) {
	tokens := map[string]resetToken{}
	if _, err := kvstore.LoadJSON(ctx, s.store, ResetTokensKey, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}
