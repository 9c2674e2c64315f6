package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
)

// CompanyHandler maneja empresas, sus miembros y sus módulos.
type CompanyHandler struct {
	uc      *usecase.CompanyUseCase
	members *usecase.MembershipUseCase
	modules *usecase.ModuleService
}

// NewCompanyHandler construye el handler.
func NewCompanyHandler(uc *usecase.CompanyUseCase, members *usecase.MembershipUseCase, modules *usecase.ModuleService) *CompanyHandler {
	return &CompanyHandler{uc: uc, members: members, modules: modules}
}

// List godoc
// @Summary      Listar empresas
// @Tags         companies
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CompanyResponse
// @Router       /api/companies [get]
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear empresa
// @Tags         companies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCompanyRequest  true  "Datos de la empresa"
// @Success      201   {object}  dto.CompanyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/companies [post]
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCompanyRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), caller(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener empresa con sus módulos
// @Tags         companies
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.CompanyDetailResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/companies/{id} [get]
func (h *CompanyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), caller(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar empresa
// @Tags         companies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la empresa"
// @Param        body  body  dto.UpdateCompanyRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.CompanyResponse
// @Router       /api/companies/{id} [put]
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCompanyRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), caller(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar empresa
// @Tags         companies
// @Security     Bearer
// @Param        id   path  string  true  "ID de la empresa"
// @Success      204  "sin contenido"
// @Router       /api/companies/{id} [delete]
func (h *CompanyHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), caller(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Members godoc
// @Summary      Miembros de la empresa
// @Tags         companies
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la empresa"
// @Success      200  {array}  dto.MembershipResponse
// @Router       /api/companies/{id}/users [get]
func (h *CompanyHandler) Members(c *fiber.Ctx) error {
	out, err := h.members.ListByCompany(c.UserContext(), caller(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// AddMember godoc
// @Summary      Agregar usuario a la empresa
// @Tags         companies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la empresa"
// @Param        body  body  dto.CreateMembershipRequest  true  "user_id, role, is_company_admin"
// @Success      201   {object}  dto.MembershipResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/companies/{id}/users [post]
func (h *CompanyHandler) AddMember(c *fiber.Ctx) error {
	var in dto.CreateMembershipRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.members.Create(c.UserContext(), caller(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateMember godoc
// @Summary      Actualizar membresía
// @Tags         companies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id            path  string  true  "ID de la empresa"
// @Param        membershipId  path  string  true  "ID de la membresía"
// @Param        body  body  dto.UpdateMembershipRequest  true  "role, is_company_admin, is_active"
// @Success      200   {object}  dto.MembershipResponse
// @Router       /api/companies/{id}/users/{membershipId} [put]
func (h *CompanyHandler) UpdateMember(c *fiber.Ctx) error {
	var in dto.UpdateMembershipRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.members.Update(c.UserContext(), caller(c), c.Params("id"), c.Params("membershipId"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Modules godoc
// @Summary      Módulos de la empresa
// @Tags         companies
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la empresa"
// @Success      200  {array}  dto.ModuleResponse
// @Router       /api/companies/{id}/modules [get]
func (h *CompanyHandler) Modules(c *fiber.Ctx) error {
	out, err := h.modules.List(c.UserContext(), caller(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// AddModule godoc
// @Summary      Contratar módulo
// @Tags         companies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la empresa"
// @Param        body  body  dto.CreateModuleRequest  true  "name, is_active, config, expiration_date"
// @Success      201   {object}  dto.ModuleResponse
// @Router       /api/companies/{id}/modules [post]
func (h *CompanyHandler) AddModule(c *fiber.Ctx) error {
	var in dto.CreateModuleRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.modules.Create(c.UserContext(), caller(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateModule godoc
// @Summary      Actualizar módulo
// @Tags         companies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id        path  string  true  "ID de la empresa"
// @Param        moduleId  path  string  true  "ID del módulo"
// @Param        body  body  dto.UpdateModuleRequest  true  "is_active, config, expiration_date, clear_expiration"
// @Success      200   {object}  dto.ModuleResponse
// @Router       /api/companies/{id}/modules/{moduleId} [put]
func (h *CompanyHandler) UpdateModule(c *fiber.Ctx) error {
	var in dto.UpdateModuleRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.modules.Update(c.UserContext(), caller(c), c.Params("id"), c.Params("moduleId"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
