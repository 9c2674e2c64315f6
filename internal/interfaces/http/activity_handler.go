package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain"
)

// ActivityHandler consulta e inserción del registro de actividad.
type ActivityHandler struct {
	uc *usecase.ActivityUseCase
}

func NewActivityHandler(uc *usecase.ActivityUseCase) *ActivityHandler {
	return &ActivityHandler{uc: uc}
}

// List godoc
// @Summary      Consultar registro de actividad
// @Tags         activity
// @Security     Bearer
// @Produce      json
// @Param        X-Company-ID   header  string  false  "Empresa seleccionada"
// @Param        days           query   int     false  "Días hacia atrás"  default(7)
// @Param        activity_type  query   string  false  "Tipo de actividad"
// @Param        username       query   string  false  "Usuario"
// @Param        limit          query   int     false  "Máximo de registros"  default(100)
// @Success      200  {array}  dto.ActivityResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/activity-logs [get]
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	var in dto.ActivityFilterRequest
	if err := c.QueryParser(&in); err != nil {
		return domain.NewValidationError("query", "parámetros inválidos")
	}
	out, err := h.uc.List(c.UserContext(), caller(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar actividad manualmente
// @Tags         activity
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Company-ID  header  string  false  "Empresa seleccionada"
// @Param        body  body  dto.CreateActivityRequest  true  "username, activity_type, details"
// @Success      201   {object}  dto.ActivityResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/activity-logs [post]
func (h *ActivityHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateActivityRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), caller(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
