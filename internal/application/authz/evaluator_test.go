package authz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/testutil/memrepo"
)

const (
	companyC = "11111111-1111-1111-1111-111111111111"
	companyE = "22222222-2222-2222-2222-222222222222"
)

type fixture struct {
	store    *memrepo.Store
	eval     *authz.Evaluator
	resolver *authz.TenantResolver
	admin    *entity.User
	staff    *entity.User
	outsider *entity.User
	super    *entity.User
	sysadmin *entity.User
}

func newFixture(t *testing.T, today time.Time) *fixture {
	t.Helper()
	s := memrepo.New()
	s.AddCompany(&entity.Company{ID: companyC, Name: "C", TaxID: "1", IsActive: true})
	s.AddCompany(&entity.Company{ID: companyE, Name: "E", TaxID: "2", IsActive: true})

	f := &fixture{
		store:    s,
		eval:     authz.NewEvaluator(s.Memberships(), s.Modules()).WithClock(func() time.Time { return today }),
		resolver: authz.NewTenantResolver(s.Companies()),
		admin:    s.AddUser(&entity.User{ID: "u-admin", Username: "admin", IsActive: true}),
		staff:    s.AddUser(&entity.User{ID: "u-staff", Username: "staff", IsActive: true}),
		outsider: s.AddUser(&entity.User{ID: "u-out", Username: "out", IsActive: true}),
		super:    s.AddUser(&entity.User{ID: "u-super", Username: "super", IsActive: true, IsSuperuser: true}),
		sysadmin: s.AddUser(&entity.User{ID: "u-sys", Username: "sys", IsActive: true, IsSystemAdmin: true}),
	}
	s.AddMembership(&entity.CompanyUser{ID: "m1", UserID: "u-admin", CompanyID: companyC, Role: entity.RoleAdmin, IsCompanyAdmin: true, IsActive: true})
	s.AddMembership(&entity.CompanyUser{ID: "m2", UserID: "u-staff", CompanyID: companyC, Role: entity.RoleStaff, IsActive: true})
	return f
}

func (f *fixture) tenant(t *testing.T, raw string) authz.Tenant {
	t.Helper()
	tn, err := f.resolver.Resolve(context.Background(), raw)
	require.NoError(t, err)
	return tn
}

// ─── Reglas de Authorize ─────────────────────────────────────────────────────

func TestAuthorize_PrivilegiadoSiemprePermitido(t *testing.T) {
	f := newFixture(t, time.Now())
	ctx := context.Background()
	for _, u := range []*entity.User{f.super, f.sysadmin} {
		for _, raw := range []string{"", "no-es-uuid", companyE, "33333333-3333-3333-3333-333333333333"} {
			for _, lvl := range []authz.Level{authz.LevelMember, authz.LevelCompanyAdmin} {
				d, err := f.eval.Authorize(ctx, u, f.tenant(t, raw), lvl)
				require.NoError(t, err)
				assert.True(t, d.Allowed, "usuario %s, selector %q", u.Username, raw)
			}
		}
	}
}

func TestAuthorize_AdminDeEmpresa(t *testing.T) {
	f := newFixture(t, time.Now())
	d, err := f.eval.Authorize(context.Background(), f.admin, f.tenant(t, companyC), authz.LevelCompanyAdmin)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.NoError(t, d.Err())
}

func TestAuthorize_StaffNoAdministra(t *testing.T) {
	f := newFixture(t, time.Now())
	ctx := context.Background()

	d, err := f.eval.Authorize(ctx, f.staff, f.tenant(t, companyC), authz.LevelCompanyAdmin)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, authz.ReasonNotAdmin, d.Reason)
	assert.ErrorIs(t, d.Err(), domain.ErrForbidden)

	d, err = f.eval.Authorize(ctx, f.staff, f.tenant(t, companyC), authz.LevelMember)
	require.NoError(t, err)
	assert.True(t, d.Allowed, "la lectura de miembro no requiere is_company_admin")
}

func TestAuthorize_SinMembresiaDenegado(t *testing.T) {
	f := newFixture(t, time.Now())
	ctx := context.Background()
	for _, lvl := range []authz.Level{authz.LevelMember, authz.LevelCompanyAdmin} {
		d, err := f.eval.Authorize(ctx, f.outsider, f.tenant(t, companyC), lvl)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, authz.ReasonNotMember, d.Reason)
	}
	// El admin de C no tiene membresía en E.
	d, err := f.eval.Authorize(ctx, f.admin, f.tenant(t, companyE), authz.LevelCompanyAdmin)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestAuthorize_SelectorAusenteOInvalido(t *testing.T) {
	f := newFixture(t, time.Now())
	ctx := context.Background()

	d, err := f.eval.Authorize(ctx, f.admin, authz.Tenant{}, authz.LevelCompanyAdmin)
	require.NoError(t, err)
	assert.Equal(t, authz.Deny(authz.ReasonNoTenant), d)

	for _, raw := range []string{"abc", "33333333-3333-3333-3333-333333333333"} {
		d, err := f.eval.Authorize(ctx, f.admin, f.tenant(t, raw), authz.LevelCompanyAdmin)
		require.NoError(t, err, "un selector inválido es denegación, no error")
		assert.False(t, d.Allowed)
		assert.Equal(t, authz.ReasonNotMember, d.Reason, "no se revela si la empresa existe")
	}
}

func TestAuthorize_MembresiaOEmpresaInactiva(t *testing.T) {
	f := newFixture(t, time.Now())
	ctx := context.Background()
	f.store.AddMembership(&entity.CompanyUser{ID: "m3", UserID: "u-out", CompanyID: companyE, IsCompanyAdmin: true, IsActive: false})
	d, err := f.eval.Authorize(ctx, f.outsider, f.tenant(t, companyE), authz.LevelMember)
	require.NoError(t, err)
	assert.False(t, d.Allowed, "membresía inactiva")

	f.store.AddCompany(&entity.Company{ID: companyC, Name: "C", TaxID: "1", IsActive: false})
	d, err = f.eval.Authorize(ctx, f.admin, f.tenant(t, companyC), authz.LevelCompanyAdmin)
	require.NoError(t, err)
	assert.False(t, d.Allowed, "empresa inactiva")
}

func TestAuthorize_ErrorDeAlmacenamiento(t *testing.T) {
	f := newFixture(t, time.Now())
	f.store.FailOn("memberships.FindActive", errors.New("db caída"))
	_, err := f.eval.Authorize(context.Background(), f.admin, f.tenant(t, companyC), authz.LevelMember)
	assert.Error(t, err)
}

func TestAuthorize_SinUsuario(t *testing.T) {
	f := newFixture(t, time.Now())
	d, err := f.eval.Authorize(context.Background(), nil, f.tenant(t, companyC), authz.LevelMember)
	require.NoError(t, err)
	assert.Equal(t, authz.ReasonUnauthenticated, d.Reason)
}

// ─── Módulos ─────────────────────────────────────────────────────────────────

func TestRequireModule_VencimientoPorFecha(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	f := newFixture(t, today)
	ctx := context.Background()
	yesterday := entity.DateOf(today).AddDate(0, 0, -1)
	todayDate := entity.DateOf(today)

	f.store.AddModule(&entity.CompanyModule{ID: "mod1", CompanyID: companyC, Name: entity.ModuleInventory, IsActive: true, ExpirationDate: &todayDate})
	f.store.AddModule(&entity.CompanyModule{ID: "mod2", CompanyID: companyC, Name: entity.ModuleSales, IsActive: true, ExpirationDate: &yesterday})
	f.store.AddModule(&entity.CompanyModule{ID: "mod3", CompanyID: companyC, Name: entity.ModuleCRM, IsActive: false})
	f.store.AddModule(&entity.CompanyModule{ID: "mod4", CompanyID: companyC, Name: entity.ModuleBilling, IsActive: true})

	cases := []struct {
		module  string
		allowed bool
	}{
		{entity.ModuleInventory, true}, // vence hoy
		{entity.ModuleSales, false},    // venció ayer
		{entity.ModuleCRM, false},      // inactivo
		{entity.ModuleBilling, true},   // sin vencimiento
		{entity.ModuleAccounting, false},
	}
	for _, tc := range cases {
		t.Run(tc.module, func(t *testing.T) {
			d, err := f.eval.RequireModule(ctx, f.staff, f.tenant(t, companyC), tc.module)
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, d.Allowed)
			if !tc.allowed {
				assert.Equal(t, authz.ReasonModuleInactive, d.Reason)
			}
		})
	}
}

func TestRequireModule_PrivilegiadoSaltaControl(t *testing.T) {
	f := newFixture(t, time.Now())
	d, err := f.eval.RequireModule(context.Background(), f.super, f.tenant(t, companyE), entity.ModuleInventory)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

// ─── Alcance de administración ───────────────────────────────────────────────

func TestAdminScope(t *testing.T) {
	f := newFixture(t, time.Now())
	ctx := context.Background()

	s, err := f.eval.AdminScope(ctx, f.super)
	require.NoError(t, err)
	assert.True(t, s.All)
	assert.Nil(t, s.Filter())

	s, err = f.eval.AdminScope(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, []string{companyC}, s.Filter())
	assert.True(t, s.Narrow(companyE).Empty())
	assert.Equal(t, []string{companyC}, s.Narrow(companyC).Filter())

	s, err = f.eval.AdminScope(ctx, f.staff)
	require.NoError(t, err)
	assert.True(t, s.Empty())
	assert.NotNil(t, s.Filter(), "alcance vacío no equivale a sin restricción")
}

func TestRequirePrivileged(t *testing.T) {
	f := newFixture(t, time.Now())
	assert.True(t, authz.RequirePrivileged(f.sysadmin).Allowed)
	assert.False(t, authz.RequirePrivileged(f.admin).Allowed)
	assert.False(t, authz.RequirePrivileged(nil).Allowed)
}

// ─── Métricas ────────────────────────────────────────────────────────────────

func TestWithMetrics_CuentaDecisiones(t *testing.T) {
	f := newFixture(t, time.Now())
	reg := prometheus.NewRegistry()
	checker := authz.WithMetrics(reg, f.eval)
	ctx := context.Background()

	_, err := checker.Authorize(ctx, f.admin, f.tenant(t, companyC), authz.LevelCompanyAdmin)
	require.NoError(t, err)
	_, err = checker.Authorize(ctx, f.staff, f.tenant(t, companyC), authz.LevelCompanyAdmin)
	require.NoError(t, err)

	n, err := promtest.GatherAndCount(reg, "gestion_authz_decisions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "una serie por resultado")
}

// ─── Resolver ────────────────────────────────────────────────────────────────

func TestTenantResolver(t *testing.T) {
	f := newFixture(t, time.Now())

	tn := f.tenant(t, "")
	assert.False(t, tn.Selected())

	tn = f.tenant(t, "  "+companyC+" ")
	assert.True(t, tn.Selected())
	assert.True(t, tn.Valid())
	assert.Equal(t, companyC, tn.ID)

	tn = f.tenant(t, "xyz")
	assert.True(t, tn.Selected())
	assert.False(t, tn.Valid())
	assert.Empty(t, tn.ID)

	f.store.FailOn("companies.GetByID", errors.New("db caída"))
	_, err := f.resolver.Resolve(context.Background(), companyC)
	assert.Error(t, err)
}
