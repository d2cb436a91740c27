package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func TestJWTService_GenerateAndVerify(t *testing.T) {
	svc := NewJWTService(testSecret, "1h")
	identity := user.Identity{UserID: "u-1", EmployeeID: "e-1", Role: user.RoleEmployee}

	token, expiresAt, err := svc.GenerateAccessToken(identity)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiresAt, int64(0))

	parsed, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)

	claims, err := parsed.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access", claims["type"])

	got, err := IdentityFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, identity, got)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	token, _, err := NewJWTService("other-secret", "1h").GenerateAccessToken(user.Identity{UserID: "u-1", Role: user.RoleAdmin})
	require.NoError(t, err)

	_, err = jwtauth.VerifyToken(NewJWTService(testSecret, "1h").JWTAuth(), token)
	assert.Error(t, err)
}

func TestJWTService_InvalidExpiration(t *testing.T) {
	_, _, err := NewJWTService(testSecret, "soon").GenerateAccessToken(user.Identity{UserID: "u-1", Role: user.RoleAdmin})
	assert.Error(t, err)
}

func TestIdentityFromClaims(t *testing.T) {
	tests := []struct {
		name    string
		claims  map[string]interface{}
		want    user.Identity
		wantErr bool
	}{
		{
			name:   "employee",
			claims: map[string]interface{}{"user_id": "u-1", "employee_id": "e-1", "role": "employee"},
			want:   user.Identity{UserID: "u-1", EmployeeID: "e-1", Role: user.RoleEmployee},
		},
		{
			name:   "admin without employee",
			claims: map[string]interface{}{"user_id": "u-9", "role": "admin"},
			want:   user.Identity{UserID: "u-9", Role: user.RoleAdmin},
		},
		{
			name:    "unknown role",
			claims:  map[string]interface{}{"user_id": "u-1", "role": "owner"},
			wantErr: true,
		},
		{
			name:    "no subject",
			claims:  map[string]interface{}{"role": "employee"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IdentityFromClaims(tt.claims)
			if tt.wantErr {
				assert.ErrorIs(t, err, user.ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentityFromContext_NoToken(t *testing.T) {
	_, err := IdentityFromContext(context.Background())
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}
