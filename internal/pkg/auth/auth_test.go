package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/ambika-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "ambika-test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-which-is-long-enough",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func TestPasswordHashAndVerify(t *testing.T) {
	pm := NewPasswordManager(testConfig())

	hash, err := pm.HashPassword("Str0ng!pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!pass", hash)

	assert.NoError(t, pm.VerifyPassword("Str0ng!pass", hash))
	assert.Error(t, pm.VerifyPassword("wrong-pass", hash))
}

func TestValidatePasswordPolicy(t *testing.T) {
	pm := NewPasswordManager(testConfig())

	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Str0ng!pass", false},
		{"too short", "S0r!t", true},
		{"no uppercase", "str0ng!pass", true},
		{"no lowercase", "STR0NG!PASS", true},
		{"no digit", "Strong!pass", true},
		{"no special", "Str0ngpass1", true},
		{"common word", "Password1!", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := pm.ValidatePassword(tc.password)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	jm := NewJWTManager(testConfig())

	token, err := jm.GenerateAccessToken(42, "user@example.com", true)
	require.NoError(t, err)

	claims, err := jm.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "42", claims.Subject)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	jm := NewJWTManager(testConfig())

	refresh, err := jm.GenerateRefreshToken(7, "user@example.com")
	require.NoError(t, err)

	_, err = jm.ValidateAccessToken(refresh)
	assert.Error(t, err)

	claims, err := jm.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	// Refresh tokens never carry admin status.
	assert.False(t, claims.IsAdmin)
}

func TestValidateTokenRejectsForgedSignature(t *testing.T) {
	jm := NewJWTManager(testConfig())

	other := testConfig()
	other.JWT.Secret = "a-completely-different-secret!!"
	forged, err := NewJWTManager(other).GenerateAccessToken(1, "a@b.c", false)
	require.NoError(t, err)

	_, err = jm.ValidateAccessToken(forged)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractTokenFromHeader("Bearer abc.def.ghi"))
	assert.Equal(t, "", ExtractTokenFromHeader("abc.def.ghi"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
}
