// Package audit registra eventos de seguridad en user_activity_logs.
// Las escrituras son "fire-and-forget": un fallo se informa en el log de la aplicación
// y nunca se propaga ni revierte la operación principal.
package audit

import (
	"context"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

// DefaultDetailsMax largo máximo de details en runas.
const DefaultDetailsMax = 2000

// writeTimeout tiempo máximo para la escritura del registro.
const writeTimeout = 5 * time.Second

// Entry evento a registrar.
type Entry struct {
	UserID    string // sujeto del registro; obligatorio
	CompanyID string // vacío = sin empresa
	Type      entity.ActivityType
	Details   string
	IP        string // se valida; inválida o vacía = NULL
}

// Recorder contrato que consumen los casos de uso.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

var _ Recorder = (*Logger)(nil)

// Logger implementa Recorder sobre el repositorio de actividad.
type Logger struct {
	repo       repository.ActivityLogRepository
	log        *logger.Logger
	detailsMax int
	now        func() time.Time
}

// NewLogger construye el registrador. detailsMax <= 0 usa DefaultDetailsMax.
func NewLogger(repo repository.ActivityLogRepository, log *logger.Logger, detailsMax int) *Logger {
	if detailsMax <= 0 {
		detailsMax = DefaultDetailsMax
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Logger{repo: repo, log: log.Named("audit"), detailsMax: detailsMax, now: time.Now}
}

// Record persiste el evento. No devuelve error: los fallos se registran y se descartan.
// La escritura no se cancela si la petición original termina.
func (l *Logger) Record(ctx context.Context, e Entry) {
	if e.UserID == "" || !e.Type.Recordable() {
		l.log.Warn().Str("activity_type", string(e.Type)).Msg("evento de auditoría descartado: datos incompletos")
		return
	}
	row := &entity.ActivityLog{
		ID:           uuid.New().String(),
		UserID:       e.UserID,
		CompanyID:    e.CompanyID,
		ActivityType: e.Type,
		Details:      Truncate(e.Details, l.detailsMax),
		IPAddress:    NormalizeIP(e.IP),
		Timestamp:    l.now().UTC(),
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := l.repo.Create(wctx, row); err != nil {
		l.log.Error().Err(err).
			Str("user_id", e.UserID).
			Str("activity_type", string(e.Type)).
			Msg("no se pudo registrar la actividad")
	}
}

// Truncate corta s a max runas.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// NormalizeIP devuelve la IP en forma canónica, o "" si no es una dirección válida.
func NormalizeIP(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	ip := net.ParseIP(raw)
	if ip == nil {
		return ""
	}
	return ip.String()
}
