package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/audit"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

func (f *fixture) activity() *usecase.ActivityUseCase {
	return usecase.NewActivityUseCase(f.store.ActivityLogs(), f.store.Users(), f.store.Memberships(), f.eval, 0)
}

// seedLogs un registro en C (staff), uno en E (outsider) y uno sin empresa (root).
func (f *fixture) seedLogs(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	f.recorder.Record(ctx, audit.Entry{UserID: staffID, CompanyID: companyC, Type: entity.ActivityLogin})
	f.recorder.Record(ctx, audit.Entry{UserID: outsiderID, CompanyID: companyE, Type: entity.ActivityLogin})
	f.recorder.Record(ctx, audit.Entry{UserID: superID, Type: entity.ActivityLogout})
	require.Len(t, f.store.Logs(), 3)
}

func TestActivityList_Alcance(t *testing.T) {
	f := newFixture(t)
	f.seedLogs(t)
	ctx := context.Background()
	uc := f.activity()

	all, err := uc.List(ctx, f.caller(t, f.super, ""), dto.ActivityFilterRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	union, err := uc.List(ctx, f.caller(t, f.admin, ""), dto.ActivityFilterRequest{})
	require.NoError(t, err)
	require.Len(t, union, 1)
	assert.Equal(t, "staff", union[0].Username)

	_, err = uc.List(ctx, f.caller(t, f.admin, companyE), dto.ActivityFilterRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.List(ctx, f.caller(t, f.staff, companyC), dto.ActivityFilterRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	none, err := uc.List(ctx, f.caller(t, f.staff, ""), dto.ActivityFilterRequest{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestActivityList_Filtros(t *testing.T) {
	f := newFixture(t)
	f.seedLogs(t)
	ctx := context.Background()
	uc := f.activity()

	out, err := uc.List(ctx, f.caller(t, f.super, ""), dto.ActivityFilterRequest{ActivityType: "logout"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].CompanyID)

	out, err = uc.List(ctx, f.caller(t, f.super, ""), dto.ActivityFilterRequest{Username: "outsider"})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	_, err = uc.List(ctx, f.caller(t, f.super, ""), dto.ActivityFilterRequest{ActivityType: "otro"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.List(ctx, f.caller(t, f.super, ""), dto.ActivityFilterRequest{Days: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestActivityCreate_Manual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := f.activity()
	long := strings.Repeat("x", 2500)

	out, err := uc.Create(ctx, f.caller(t, f.admin, companyC), dto.CreateActivityRequest{
		Username: "staff", ActivityType: "profile_update", Details: long,
	})
	require.NoError(t, err)
	assert.Equal(t, staffID, out.UserID)
	require.NotNil(t, out.CompanyID)
	assert.Equal(t, companyC, *out.CompanyID)
	assert.Len(t, out.Details, audit.DefaultDetailsMax)
	require.NotNil(t, out.IPAddress)
	assert.Equal(t, "10.0.0.1", *out.IPAddress)
}

func TestActivityCreate_Restricciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := f.activity()

	_, err := uc.Create(ctx, f.caller(t, f.admin, companyC), dto.CreateActivityRequest{
		Username: "staff", ActivityType: string(entity.ActivityPasswordChangeError),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo interno no aceptado")

	_, err = uc.Create(ctx, f.caller(t, f.admin, companyC), dto.CreateActivityRequest{
		Username: "outsider", ActivityType: "login",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sujeto ajeno a la empresa")

	_, err = uc.Create(ctx, f.caller(t, f.staff, companyC), dto.CreateActivityRequest{
		Username: "staff", ActivityType: "login",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Create(ctx, f.caller(t, f.super, ""), dto.CreateActivityRequest{
		Username: "outsider", ActivityType: "login",
	})
	assert.NoError(t, err)
}

func TestGroups_CRUDConAuditoria(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := usecase.NewGroupUseCase(f.store.Groups(), f.recorder)

	_, err := uc.Create(ctx, f.caller(t, f.admin, ""), dto.GroupRequest{Name: "ventas"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	g, err := uc.Create(ctx, f.caller(t, f.super, ""), dto.GroupRequest{Name: "ventas"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, f.caller(t, f.super, ""), dto.GroupRequest{Name: "ventas"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(ctx, f.caller(t, f.super, ""), g.ID, dto.GroupRequest{Name: "comercial"})
	require.NoError(t, err)
	require.NoError(t, uc.Delete(ctx, f.caller(t, f.super, ""), g.ID))

	assert.Len(t, f.store.LogsOfType(entity.ActivityGroupCreated), 1)
	assert.Len(t, f.store.LogsOfType(entity.ActivityGroupUpdated), 1)
	assert.Len(t, f.store.LogsOfType(entity.ActivityGroupDeleted), 1)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUserCreate_ConGrupos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddGroup(&entity.Group{ID: "dddddddd-0000-0000-0000-000000000001", Name: "ventas"})

	in := newUserRequest("dora")
	in.Groups = []string{"ventas"}
	out, err := f.users().Create(ctx, f.caller(t, f.super, ""), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"ventas"}, out.Groups)

	in = newUserRequest("eva")
	in.Groups = []string{"inexistente"}
	_, err = f.users().Create(ctx, f.caller(t, f.super, ""), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
