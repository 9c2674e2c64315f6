package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Gestion-api/internal/application/audit"
	"github.com/jhoicas/Gestion-api/internal/application/auth"
	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Gestion-api/internal/interfaces/http"
	"github.com/jhoicas/Gestion-api/internal/testutil/memrepo"
	pkgjwt "github.com/jhoicas/Gestion-api/pkg/jwt"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "gestion-api-test"
	testPassword  = "clave-segura-1"

	companyC = "11111111-1111-1111-1111-111111111111"
	companyE = "22222222-2222-2222-2222-222222222222"

	adminID    = "aaaaaaaa-0000-0000-0000-000000000001"
	staffID    = "aaaaaaaa-0000-0000-0000-000000000002"
	outsiderID = "aaaaaaaa-0000-0000-0000-000000000003"
	superID    = "aaaaaaaa-0000-0000-0000-000000000004"
	inactiveID = "aaaaaaaa-0000-0000-0000-000000000005"
)

// server aplicación completa sobre repositorios en memoria.
//   - admin: administrador de C (C tiene inventory activo)
//   - staff: miembro de C sin administración
//   - outsider: administrador de E (E sin módulos)
//   - root: superusuario sin membresías
type server struct {
	store *memrepo.Store
	app   *fiber.App
	reg   *prometheus.Registry
}

func newServer(t *testing.T) *server {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	s := memrepo.New()
	s.AddCompany(&entity.Company{ID: companyC, Name: "C", BusinessName: "C S.A.S.", TaxID: "900-1", IsActive: true})
	s.AddCompany(&entity.Company{ID: companyE, Name: "E", BusinessName: "E S.A.S.", TaxID: "900-2", IsActive: true})
	user := func(id, username string, super, active bool) {
		s.AddUser(&entity.User{
			ID: id, Username: username, Email: username + "@example.com",
			PasswordHash: string(hash), IsActive: active, IsSuperuser: super,
		})
	}
	user(adminID, "admin", false, true)
	user(staffID, "staff", false, true)
	user(outsiderID, "outsider", false, true)
	user(superID, "root", true, true)
	user(inactiveID, "dormido", false, false)
	s.AddMembership(&entity.CompanyUser{ID: "bbbbbbbb-0000-0000-0000-000000000001", UserID: adminID, CompanyID: companyC, Role: entity.RoleAdmin, IsCompanyAdmin: true, IsActive: true})
	s.AddMembership(&entity.CompanyUser{ID: "bbbbbbbb-0000-0000-0000-000000000002", UserID: staffID, CompanyID: companyC, Role: entity.RoleStaff, IsActive: true})
	s.AddMembership(&entity.CompanyUser{ID: "bbbbbbbb-0000-0000-0000-000000000003", UserID: outsiderID, CompanyID: companyE, Role: entity.RoleAdmin, IsCompanyAdmin: true, IsActive: true})
	s.AddModule(&entity.CompanyModule{ID: "cccccccc-0000-0000-0000-000000000001", CompanyID: companyC, Name: entity.ModuleInventory, IsActive: true})

	reg := prometheus.NewRegistry()
	checker := authz.WithMetrics(reg, authz.NewEvaluator(s.Memberships(), s.Modules()))
	recorder := audit.NewLogger(s.ActivityLogs(), logger.Nop(), 0)
	modules := usecase.NewModuleService(s.Modules(), s.Companies(), checker)

	app := apphttp.NewApp(apphttp.AppConfig{Name: "gestion-test", Log: logger.Nop(), Registry: reg}, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(s.Users(), s.Memberships(), modules, recorder, auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: 15, RefreshExpMinutes: 60, Issuer: testIssuer,
		}),
		UserUC:       usecase.NewUserUseCase(s.Users(), s.Groups(), s.Memberships(), checker, memrepo.TxRunner{S: s}, recorder),
		GroupUC:      usecase.NewGroupUseCase(s.Groups(), recorder),
		CompanyUC:    usecase.NewCompanyUseCase(s.Companies(), s.Modules(), checker),
		MembershipUC: usecase.NewMembershipUseCase(s.Memberships(), s.Companies(), s.Users(), checker),
		ModuleSvc:    modules,
		ActivityUC:   usecase.NewActivityUseCase(s.ActivityLogs(), s.Users(), s.Memberships(), checker, 0),
		CategoryUC:   usecase.NewCategoryUseCase(s.Categories()),
		ProductUC:    usecase.NewProductUseCase(s.Products(), s.Categories()),
		Users:        s.Users(),
		Tenants:      authz.NewTenantResolver(s.Companies()),
		Checker:      checker,
		JWTSecret:    testJWTSecret,
	})
	return &server{store: s, app: app, reg: reg}
}

// bearer genera un token de acceso para userID.
func bearer(t *testing.T, userID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, "u", pkgjwt.TokenAccess, testIssuer, 60)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

type request struct {
	method  string
	path    string
	auth    string
	company string
	body    any
	headers map[string]string
}

// do lanza la petición y devuelve estado y cuerpo.
func (s *server) do(t *testing.T, r request) (int, []byte) {
	t.Helper()
	var body io.Reader
	if r.body != nil {
		switch b := r.body.(type) {
		case string:
			body = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			body = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.auth != "" {
		req.Header.Set("Authorization", r.auth)
	}
	if r.company != "" {
		req.Header.Set(apphttp.HeaderCompanyID, r.company)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// decode deserializa el cuerpo en out.
func decode(t *testing.T, raw []byte, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out), "cuerpo: %s", raw)
}

// errorCode extrae el campo code de un dto.ErrorResponse.
func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	decode(t, raw, &body)
	return body.Code
}
