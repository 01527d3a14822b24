package validation

import (
	"testing"

	"github.com/clientdesk/backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func rules(errs []FieldError) map[string]string {
	out := map[string]string{}
	for _, e := range errs {
		out[e.Field] = e.Rule
	}
	return out
}

func TestRegisterRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name string
		req  dto.RegisterRequest
		want map[string]string
	}{
		{
			name: "valid",
			req:  dto.RegisterRequest{Name: "Ada", Email: "a@x.com", Password: "Passw0rd!"},
			want: map[string]string{},
		},
		{
			name: "missing everything",
			req:  dto.RegisterRequest{},
			want: map[string]string{"name": "required", "email": "required", "password": "required"},
		},
		{
			name: "bad email",
			req:  dto.RegisterRequest{Name: "Ada", Email: "nope", Password: "Passw0rd!"},
			want: map[string]string{"email": "email"},
		},
		{
			name: "short password",
			req:  dto.RegisterRequest{Name: "Ada", Email: "a@x.com", Password: "Pa0!"},
			want: map[string]string{"password": "min"},
		},
		{
			name: "weak password",
			req:  dto.RegisterRequest{Name: "Ada", Email: "a@x.com", Password: "password123"},
			want: map[string]string{"password": "strongpassword"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules(v.Struct(&tt.req)))
		})
	}
}

func TestLoginRequestDoesNotApplyPasswordPolicy(t *testing.T) {
	v := New()
	assert.Nil(t, v.Struct(&dto.LoginRequest{Email: "a@x.com", Password: "wrong"}))
	assert.Equal(t, map[string]string{"password": "required"}, rules(v.Struct(&dto.LoginRequest{Email: "a@x.com"})))
}

func TestUpdateClientRequest(t *testing.T) {
	v := New()

	assert.Nil(t, v.Struct(&dto.UpdateClientRequest{}))
	assert.Nil(t, v.Struct(&dto.UpdateClientRequest{Name: strPtr("New"), Email: strPtr("n@x.com")}))

	errs := v.Struct(&dto.UpdateClientRequest{Name: strPtr(""), Email: strPtr("bad")})
	assert.Equal(t, map[string]string{"name": "min", "email": "email"}, rules(errs))
}

func TestFieldErrorMessages(t *testing.T) {
	errs := New().Struct(&dto.RegisterRequest{Name: "Ada", Email: "a@x.com", Password: "password123"})
	require.Len(t, errs, 1)
	assert.Equal(t, PasswordPolicyMessage, errs[0].Message)
}

func TestStrongPassword(t *testing.T) {
	assert.True(t, StrongPassword("Passw0rd!"))
	assert.True(t, StrongPassword("aB3&"))
	assert.False(t, StrongPassword("passw0rd!"))
	assert.False(t, StrongPassword("PASSW0RD!"))
	assert.False(t, StrongPassword("Password!"))
	assert.False(t, StrongPassword("Passw0rd"))
	assert.False(t, StrongPassword("Passw0rd?"))
}
