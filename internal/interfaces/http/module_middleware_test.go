package http_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestCatalogAccess(t *testing.T) {
	srv := newServer(t)
	category := map[string]string{"name": "Bebidas"}

	cases := []struct {
		name    string
		user    string
		company string
		method  string
		status  int
		code    string
	}{
		{"miembro lee", staffID, companyC, http.MethodGet, fiber.StatusOK, ""},
		{"miembro no escribe", staffID, companyC, http.MethodPost, fiber.StatusForbidden, "FORBIDDEN"},
		{"admin escribe", adminID, companyC, http.MethodPost, fiber.StatusCreated, ""},
		{"sin selector", staffID, "", http.MethodGet, fiber.StatusForbidden, "FORBIDDEN"},
		{"selector ilegible", staffID, "no-es-uuid", http.MethodGet, fiber.StatusForbidden, "FORBIDDEN"},
		{"empresa ajena", outsiderID, companyC, http.MethodGet, fiber.StatusForbidden, "FORBIDDEN"},
		{"módulo no contratado", outsiderID, companyE, http.MethodGet, fiber.StatusForbidden, "MODULE_DISABLED"},
		{"superusuario sin módulo", superID, companyE, http.MethodGet, fiber.StatusOK, ""},
		{"superusuario sin selector", superID, "", http.MethodGet, fiber.StatusBadRequest, "MISSING_COMPANY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := request{method: tc.method, path: "/api/categories", auth: bearer(t, tc.user), company: tc.company}
			if tc.method == http.MethodPost {
				r.body = category
			}
			status, body := srv.do(t, r)
			assert.Equal(t, tc.status, status, "cuerpo: %s", body)
			if tc.code != "" {
				assert.Equal(t, tc.code, errorCode(t, body))
			}
		})
	}
}

func TestCatalogAccess_ModuloVencidoODesactivado(t *testing.T) {
	srv := newServer(t)
	tok := bearer(t, adminID)

	status, _ := srv.do(t, request{method: http.MethodGet, path: "/api/products", auth: tok, company: companyC})
	assert.Equal(t, fiber.StatusOK, status)

	status, body := srv.do(t, request{
		method: http.MethodPut, path: "/api/companies/" + companyC + "/modules/cccccccc-0000-0000-0000-000000000001",
		auth: bearer(t, superID), body: map[string]any{"is_active": false},
	})
	assert.Equal(t, fiber.StatusOK, status, "cuerpo: %s", body)

	status, body = srv.do(t, request{method: http.MethodGet, path: "/api/products", auth: tok, company: companyC})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "MODULE_DISABLED", errorCode(t, body))
}
