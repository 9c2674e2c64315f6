package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Gestion-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Gestion-api/pkg/jwt"
)

func TestAuthMiddleware_RechazaPeticionesSinTokenValido(t *testing.T) {
	srv := newServer(t)

	refresh, err := pkgjwt.Generate(testJWTSecret, adminID, "admin", pkgjwt.TokenRefresh, testIssuer, 60)
	require.NoError(t, err)
	foreign, err := pkgjwt.Generate("otro-secreto", adminID, "admin", pkgjwt.TokenAccess, testIssuer, 60)
	require.NoError(t, err)

	cases := []struct {
		name string
		auth string
		code string
	}{
		{"sin cabecera", "", "MISSING_TOKEN"},
		{"formato incorrecto", "Token abc", "INVALID_TOKEN"},
		{"firma de otro secreto", "Bearer " + foreign, "INVALID_TOKEN"},
		{"refresh usado como acceso", "Bearer " + refresh, "INVALID_TOKEN"},
		{"usuario inactivo", bearer(t, inactiveID), "INVALID_TOKEN"},
		{"usuario inexistente", bearer(t, "aaaaaaaa-0000-0000-0000-0000000000ff"), "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := srv.do(t, request{method: http.MethodGet, path: "/api/users/me", auth: tc.auth})
			assert.Equal(t, fiber.StatusUnauthorized, status)
			assert.Equal(t, tc.code, errorCode(t, body))
		})
	}
}

func TestAuthMiddleware_TokenValidoCargaUsuario(t *testing.T) {
	srv := newServer(t)

	status, body := srv.do(t, request{method: http.MethodGet, path: "/api/users/me", auth: bearer(t, adminID)})
	require.Equal(t, fiber.StatusOK, status, "cuerpo: %s", body)

	var me struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	decode(t, body, &me)
	assert.Equal(t, adminID, me.ID)
	assert.Equal(t, "admin", me.Username)
}

func TestAuthMiddleware_PrivilegiosSeLeenDeLaBase(t *testing.T) {
	srv := newServer(t)
	tok := bearer(t, staffID)

	status, _ := srv.do(t, request{method: http.MethodPost, path: "/api/groups", auth: tok, body: map[string]string{"name": "ventas"}})
	assert.Equal(t, fiber.StatusForbidden, status)

	// El mismo token sirve tras promover al usuario: los flags no viajan en el JWT.
	u, err := srv.store.Users().GetByID(context.Background(), staffID)
	require.NoError(t, err)
	u.IsSystemAdmin = true
	require.NoError(t, srv.store.Users().Update(context.Background(), u))

	status, body := srv.do(t, request{method: http.MethodPost, path: "/api/groups", auth: tok, body: map[string]string{"name": "ventas"}})
	assert.Equal(t, fiber.StatusCreated, status, "cuerpo: %s", body)
}

func TestClientIP(t *testing.T) {
	app := fiber.New()
	app.Get("/ip", func(c *fiber.Ctx) error {
		return c.SendString(apphttp.ClientIP(c))
	})
	get := func(xff string) string {
		req := httptest.NewRequest(http.MethodGet, "/ip", nil)
		if xff != "" {
			req.Header.Set(fiber.HeaderXForwardedFor, xff)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(raw)
	}

	assert.Equal(t, "203.0.113.7", get("203.0.113.7, 10.0.0.1"))
	assert.Equal(t, "2001:db8::1", get(" 2001:db8::1 "))

	remote := get("")
	assert.NotEmpty(t, remote)
	assert.Equal(t, remote, get("basura, 203.0.113.7"), "una primera entrada inválida usa la dirección remota")
}
