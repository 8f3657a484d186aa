package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continu8/backoffice/internal/domain"
	apperrors "github.com/continu8/backoffice/pkg/util"
)

type stubProfiles map[string]*domain.Profile

func (s stubProfiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, pgx.ErrNoRows
}

func newTestApp(tokens *TokenManager, profiles stubProfiles, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	handlers := append([]fiber.Handler{NewAuthMiddleware(tokens, profiles).Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(string(p.Role()))
	})
	app.Get("/", handlers...)
	return app
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	token, expires, err := tm.GenerateToken("profile-1")
	require.NoError(t, err)
	assert.False(t, expires.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", claims.Subject)

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	profiles := stubProfiles{
		"staff-1":  {ID: "staff-1", Role: domain.RoleSupport},
		"client-1": {ID: "client-1", Role: domain.RoleClient},
	}
	staffToken, _, err := tm.GenerateToken("staff-1")
	require.NoError(t, err)
	clientToken, _, err := tm.GenerateToken("client-1")
	require.NoError(t, err)
	ghostToken, _, err := tm.GenerateToken("ghost")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		guards []fiber.Handler
		want   int
	}{
		{"missing header", "", nil, fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", nil, fiber.StatusUnauthorized},
		{"garbage token", "Bearer nope", nil, fiber.StatusUnauthorized},
		{"unknown profile", "Bearer " + ghostToken, nil, fiber.StatusUnauthorized},
		{"client allowed", "Bearer " + clientToken, nil, fiber.StatusOK},
		{"client blocked from staff route", "Bearer " + clientToken, []fiber.Handler{RequireStaff()}, fiber.StatusForbidden},
		{"staff passes staff route", "Bearer " + staffToken, []fiber.Handler{RequireStaff()}, fiber.StatusOK},
		{"support blocked from sales route", "Bearer " + staffToken, []fiber.Handler{RequireRole(domain.RoleAdmin, domain.RoleSales)}, fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(tm, profiles, tc.guards...)
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
