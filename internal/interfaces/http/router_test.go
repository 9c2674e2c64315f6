package http_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

func TestHealth(t *testing.T) {
	srv := newServer(t)
	status, body := srv.do(t, request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func newUserBody(username string) map[string]any {
	return map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "clave-nueva-123",
	}
}

// Un administrador de C no puede crear usuarios en E.
func TestCreateUser_EmpresaAjenaEsDenegada(t *testing.T) {
	srv := newServer(t)

	status, body := srv.do(t, request{
		method: http.MethodPost, path: "/api/users", auth: bearer(t, adminID), company: companyE,
		body: newUserBody("intruso"),
	})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))

	u, err := srv.store.Users().GetByUsername(context.Background(), "intruso")
	require.NoError(t, err)
	assert.Nil(t, u, "no debe crearse el usuario")
	assert.Empty(t, srv.store.LogsOfType(entity.ActivityUserCreated))
}

// Un administrador de C crea un usuario que queda asociado a C.
func TestCreateUser_EnEmpresaPropia(t *testing.T) {
	srv := newServer(t)

	status, body := srv.do(t, request{
		method: http.MethodPost, path: "/api/users", auth: bearer(t, adminID), company: companyC,
		body: newUserBody("nuevo"),
	})
	require.Equal(t, fiber.StatusCreated, status, "cuerpo: %s", body)

	var created struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	decode(t, body, &created)
	assert.Equal(t, "nuevo", created.Username)
	assert.Empty(t, created.Password)
	assert.NotContains(t, string(body), "password_hash")
	assert.Equal(t, 1, srv.store.MembershipCount(created.ID, companyC))

	logs := srv.store.LogsOfType(entity.ActivityUserCreated)
	require.Len(t, logs, 1)
	assert.Equal(t, adminID, logs[0].UserID)
}

func TestCreateUser_FlagsSoloPrivilegiados(t *testing.T) {
	srv := newServer(t)
	body := newUserBody("jefe")
	body["is_superuser"] = true

	status, _ := srv.do(t, request{method: http.MethodPost, path: "/api/users", auth: bearer(t, adminID), company: companyC, body: body})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, raw := srv.do(t, request{method: http.MethodPost, path: "/api/users", auth: bearer(t, superID), body: body})
	require.Equal(t, fiber.StatusCreated, status, "cuerpo: %s", raw)
	assert.Contains(t, string(raw), `"is_superuser":true`)
}

// Login devuelve tokens y las empresas con sus módulos habilitados.
func TestLogin(t *testing.T) {
	srv := newServer(t)

	status, body := srv.do(t, request{
		method: http.MethodPost, path: "/api/auth/login",
		body:    map[string]string{"username": "admin", "password": testPassword},
		headers: map[string]string{fiber.HeaderXForwardedFor: "198.51.100.4, 10.0.0.1"},
	})
	require.Equal(t, fiber.StatusOK, status, "cuerpo: %s", body)

	var out struct {
		Access    string `json:"access"`
		Refresh   string `json:"refresh"`
		Companies []struct {
			ID      string `json:"id"`
			Role    string `json:"role"`
			IsAdmin bool   `json:"is_admin"`
			Modules []struct {
				Name string `json:"name"`
			} `json:"modules"`
		} `json:"companies"`
	}
	decode(t, body, &out)
	assert.NotEmpty(t, out.Access)
	assert.NotEmpty(t, out.Refresh)
	require.Len(t, out.Companies, 1)
	assert.Equal(t, companyC, out.Companies[0].ID)
	assert.Equal(t, entity.RoleAdmin, out.Companies[0].Role)
	assert.True(t, out.Companies[0].IsAdmin)
	require.Len(t, out.Companies[0].Modules, 1)
	assert.Equal(t, entity.ModuleInventory, out.Companies[0].Modules[0].Name)

	logs := srv.store.LogsOfType(entity.ActivityLogin)
	require.Len(t, logs, 1)
	assert.Equal(t, "198.51.100.4", logs[0].IPAddress)

	// El token emitido sirve en rutas protegidas.
	status, _ = srv.do(t, request{method: http.MethodGet, path: "/api/users/me", auth: "Bearer " + out.Access})
	assert.Equal(t, fiber.StatusOK, status)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	srv := newServer(t)

	status, body := srv.do(t, request{
		method: http.MethodPost, path: "/api/auth/login",
		body: map[string]string{"username": "admin", "password": "incorrecta"},
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, body))
	assert.Len(t, srv.store.LogsOfType(entity.ActivityFailedLogin), 1)
	assert.NotContains(t, string(body), "incorrecta")
}

func TestErrorMapping(t *testing.T) {
	srv := newServer(t)
	unknown := "aaaaaaaa-0000-0000-0000-0000000000ff"

	cases := []struct {
		name   string
		req    request
		status int
		code   string
	}{
		{
			name:   "JSON ilegible",
			req:    request{method: http.MethodPost, path: "/api/auth/login", body: "{no-json"},
			status: fiber.StatusBadRequest, code: "VALIDATION",
		},
		{
			name:   "usuario inexistente para privilegiado",
			req:    request{method: http.MethodGet, path: "/api/users/" + unknown, auth: bearer(t, superID)},
			status: fiber.StatusNotFound, code: "NOT_FOUND",
		},
		{
			name:   "usuario inexistente para no privilegiado",
			req:    request{method: http.MethodGet, path: "/api/users/" + unknown, auth: bearer(t, staffID)},
			status: fiber.StatusForbidden, code: "FORBIDDEN",
		},
		{
			name:   "usuario de otra empresa",
			req:    request{method: http.MethodGet, path: "/api/users/" + outsiderID, auth: bearer(t, adminID)},
			status: fiber.StatusForbidden, code: "FORBIDDEN",
		},
		{
			name:   "empresa solo para privilegiados",
			req:    request{method: http.MethodPost, path: "/api/companies", auth: bearer(t, adminID), body: map[string]string{"name": "X", "business_name": "X", "tax_id": "1"}},
			status: fiber.StatusForbidden, code: "FORBIDDEN",
		},
		{
			name:   "membresía duplicada",
			req:    request{method: http.MethodPost, path: "/api/companies/" + companyC + "/users", auth: bearer(t, adminID), body: map[string]any{"user_id": staffID, "role": "staff"}},
			status: fiber.StatusBadRequest, code: "CONFLICT",
		},
		{
			name:   "ruta inexistente",
			req:    request{method: http.MethodGet, path: "/api/nada"},
			status: fiber.StatusNotFound, code: "HTTP_NOT_FOUND",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := srv.do(t, tc.req)
			assert.Equal(t, tc.status, status, "cuerpo: %s", body)
			assert.Equal(t, tc.code, errorCode(t, body))
		})
	}
}

func TestChangePassword(t *testing.T) {
	srv := newServer(t)
	tok := bearer(t, staffID)

	status, body := srv.do(t, request{
		method: http.MethodPost, path: "/api/users/change-password", auth: tok,
		body: map[string]string{"current_password": "otra", "new_password": "nueva-clave-1"},
	})
	assert.Equal(t, fiber.StatusBadRequest, status, "cuerpo: %s", body)
	assert.Len(t, srv.store.LogsOfType(entity.ActivityPasswordChangeFailed), 1)

	status, body = srv.do(t, request{
		method: http.MethodPost, path: "/api/users/change-password", auth: tok,
		body: map[string]string{"current_password": testPassword, "new_password": strings.Repeat("x", 80)},
	})
	assert.Equal(t, fiber.StatusBadRequest, status, "cuerpo: %s", body)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
	assert.Len(t, srv.store.LogsOfType(entity.ActivityPasswordChangeFailed), 2)
	assert.Empty(t, srv.store.LogsOfType(entity.ActivityPasswordChangeError))

	status, body = srv.do(t, request{
		method: http.MethodPost, path: "/api/users/change-password", auth: tok,
		body: map[string]string{"current_password": testPassword, "new_password": "nueva-clave-1"},
	})
	require.Equal(t, fiber.StatusOK, status, "cuerpo: %s", body)
	assert.Len(t, srv.store.LogsOfType(entity.ActivityPasswordChange), 1)

	for _, l := range srv.store.Logs() {
		assert.NotContains(t, l.Details, "nueva-clave-1")
	}

	status, _ = srv.do(t, request{
		method: http.MethodPost, path: "/api/auth/login",
		body: map[string]string{"username": "staff", "password": "nueva-clave-1"},
	})
	assert.Equal(t, fiber.StatusOK, status)
}

func TestCatalogFlow(t *testing.T) {
	srv := newServer(t)
	tok := bearer(t, adminID)

	status, body := srv.do(t, request{method: http.MethodPost, path: "/api/categories", auth: tok, company: companyC, body: map[string]string{"name": "Bebidas"}})
	require.Equal(t, fiber.StatusCreated, status, "cuerpo: %s", body)
	var cat struct {
		ID string `json:"id"`
	}
	decode(t, body, &cat)

	status, body = srv.do(t, request{
		method: http.MethodPost, path: "/api/products", auth: tok, company: companyC,
		body: map[string]any{"category": cat.ID, "name": "Agua", "price": "1500.50"},
	})
	require.Equal(t, fiber.StatusCreated, status, "cuerpo: %s", body)

	status, body = srv.do(t, request{method: http.MethodGet, path: "/api/products?search=agua", auth: bearer(t, staffID), company: companyC})
	require.Equal(t, fiber.StatusOK, status, "cuerpo: %s", body)
	var list struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
		Page struct {
			Total int `json:"total"`
		} `json:"page"`
	}
	decode(t, body, &list)
	assert.Equal(t, 1, list.Page.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Agua", list.Items[0].Name)

	status, body = srv.do(t, request{method: http.MethodDelete, path: "/api/categories/" + cat.ID, auth: tok, company: companyC})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "CONFLICT", errorCode(t, body))

	// Los datos de C no se ven desde E aunque el superusuario pase las reglas.
	status, body = srv.do(t, request{method: http.MethodGet, path: "/api/categories/" + cat.ID, auth: bearer(t, superID), company: companyE})
	assert.Equal(t, fiber.StatusNotFound, status, "cuerpo: %s", body)
}

func TestActivityLogs(t *testing.T) {
	srv := newServer(t)

	status, body := srv.do(t, request{
		method: http.MethodPost, path: "/api/activity-logs", auth: bearer(t, adminID), company: companyC,
		body: map[string]string{"username": "staff", "activity_type": "profile_update", "details": "ajuste manual"},
	})
	require.Equal(t, fiber.StatusCreated, status, "cuerpo: %s", body)

	status, body = srv.do(t, request{method: http.MethodGet, path: "/api/activity-logs?days=1", auth: bearer(t, adminID), company: companyC})
	require.Equal(t, fiber.StatusOK, status, "cuerpo: %s", body)
	assert.Contains(t, string(body), "ajuste manual")

	status, body = srv.do(t, request{method: http.MethodGet, path: "/api/activity-logs", auth: bearer(t, outsiderID), company: companyE})
	require.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, string(body), "ajuste manual")

	status, _ = srv.do(t, request{method: http.MethodGet, path: "/api/activity-logs?days=400", auth: bearer(t, adminID), company: companyC})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t)
	srv.do(t, request{method: http.MethodGet, path: "/api/categories", auth: bearer(t, staffID), company: companyC})

	status, body := srv.do(t, request{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, fiber.StatusOK, status)
	text := string(body)
	assert.True(t, strings.Contains(text, "gestion_http_requests_total"), "faltan métricas http")
	assert.True(t, strings.Contains(text, "gestion_authz_decisions_total"), "faltan métricas del evaluador")
}
