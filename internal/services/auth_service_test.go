package services

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/kvstore"
	"storefront/internal/repository/kv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newAuthService(t *testing.T) (*AuthService, *OrderService) {
	t.Helper()
	store := kvstore.NewMemory()
	orderRepo := kv.NewOrderRepository(store)
	auth := NewAuthService(kv.NewUserRepository(store), orderRepo, store, testSecret, time.Hour)
	auth.SetHashCost(bcrypt.MinCost)
	return auth, NewOrderService(orderRepo, nil)
}

func register(t *testing.T, auth *AuthService, email string) *AuthResult {
	t.Helper()
	res, err := auth.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  "secret123",
		FirstName: " Awa ",
		LastName:  "Kone",
	})
	require.NoError(t, err)
	return res
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		expectedError error
		validation    bool
	}{
		{
			name:  "successful registration",
			input: RegisterInput{Email: "New@Example.com ", Password: "secret123"},
		},
		{
			name:          "email already taken, any casing",
			input:         RegisterInput{Email: "AWA@example.com", Password: "secret123"},
			expectedError: ErrEmailTaken,
		},
		{
			name:       "invalid email",
			input:      RegisterInput{Email: "not-an-email", Password: "secret123"},
			validation: true,
		},
		{
			name:       "short password",
			input:      RegisterInput{Email: "short@example.com", Password: "12345"},
			validation: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, _ := newAuthService(t)
			register(t, auth, "awa@example.com")

			res, err := auth.Register(context.Background(), tt.input)

			switch {
			case tt.validation:
				assert.True(t, IsValidation(err), "got %v", err)
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
			default:
				require.NoError(t, err)
				assert.Equal(t, "new@example.com", res.User.Email)
				assert.Equal(t, domain.RoleClient, res.User.Role)
				assert.NotEmpty(t, res.Token)

				claims, err := auth.ParseToken(res.Token)
				require.NoError(t, err)
				assert.Equal(t, res.User.ID, claims.UserID)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	auth, _ := newAuthService(t)
	registered := register(t, auth, "awa@example.com")
	assert.Equal(t, "Awa", registered.User.FirstName)

	tests := []struct {
		name        string
		email       string
		password    string
		expectError bool
	}{
		{name: "valid credentials", email: "awa@example.com", password: "secret123"},
		{name: "email casing is ignored", email: " AWA@Example.COM", password: "secret123"},
		{name: "wrong password", email: "awa@example.com", password: "wrong", expectError: true},
		{name: "unknown email", email: "nobody@example.com", password: "secret123", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := auth.Login(context.Background(), tt.email, tt.password)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.User.ID, res.User.ID)
		})
	}
}

func TestAuthService_ParseToken(t *testing.T) {
	auth, _ := newAuthService(t)
	res := register(t, auth, "awa@example.com")

	other := NewAuthService(nil, nil, nil, "another-secret", time.Hour)
	_, err := other.ParseToken(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.ParseToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: res.User.ID})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = auth.ParseToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = auth.ParseToken(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ProfileListsOrdersAndAddresses(t *testing.T) {
	auth, orders := newAuthService(t)
	ctx := context.Background()
	res := register(t, auth, "awa@example.com")
	orders.SetIDGenerator(sequentialIDs(1, 2, 3))

	for _, city := range []string{"Cocody", "Cocody", "Plateau"} {
		req := createRequest()
		req.UserID = res.User.ID
		req.ShippingAddress.City = city
		_, err := orders.Create(ctx, req)
		require.NoError(t, err)
	}

	profile, err := auth.Profile(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "awa@example.com", profile.Email)
	assert.Len(t, profile.Orders, 3)
	require.Len(t, profile.Addresses, 2)
	assert.Equal(t, "Plateau", profile.Addresses[0].City)

	_, err = auth.Profile(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	phone := " 0102030405 "
	user, err := auth.UpdateProfile(ctx, res.User.ID, domain.ProfilePatch{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "0102030405", user.Phone)
	assert.Equal(t, "Awa", user.FirstName)

	_, err = auth.Login(ctx, "awa@example.com", "secret123")
	assert.NoError(t, err, "profile update must keep the password hash")
}

func TestAuthService_PasswordReset(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()
	register(t, auth, "awa@example.com")

	token, err := auth.RequestPasswordReset(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)

	token, err = auth.RequestPasswordReset(ctx, "AWA@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.True(t, IsValidation(auth.ResetPassword(ctx, token, "123")))
	require.NoError(t, auth.ResetPassword(ctx, token, "brand-new"))

	_, err = auth.Login(ctx, "awa@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, "awa@example.com", "brand-new")
	assert.NoError(t, err)

	assert.ErrorIs(t, auth.ResetPassword(ctx, token, "another-one"), ErrInvalidToken)
}

func TestAuthService_ResetTokenExpires(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()
	register(t, auth, "awa@example.com")

	token, err := auth.RequestPasswordReset(ctx, "awa@example.com")
	require.NoError(t, err)

	auth.now = func() time.Time { return time.Now().Add(61 * time.Minute) }
	assert.ErrorIs(t, auth.ResetPassword(ctx, token, "brand-new"), ErrInvalidToken)
}
