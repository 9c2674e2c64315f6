package authz

import (
	"context"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/prometheus/client_golang/prometheus"
)

type mwMetrics struct {
	decisions *prometheus.CounterVec
	errs      *prometheus.CounterVec
	durs      *prometheus.HistogramVec

	next Checker
}

var _ Checker = (*mwMetrics)(nil)

// WithMetrics decora un Checker con métricas de decisiones, errores y duración.
func WithMetrics(reg prometheus.Registerer, next Checker) Checker {
	const namespace = "gestion"
	const subsystem = "authz"

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "decisions_total",
		Help:      "Decisiones del evaluador de autorización por operación y resultado",
	}, []string{"method", "result"})

	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "error_total",
		Help:      "Errores de almacenamiento al evaluar autorización",
	}, []string{"method"})

	durs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "duration_seconds",
		Help:      "Duración de las evaluaciones de autorización",
	}, []string{"method"})

	reg.MustRegister(decisions, errs, durs)

	return &mwMetrics{decisions: decisions, errs: errs, durs: durs, next: next}
}

func (mw *mwMetrics) Authorize(ctx context.Context, user *entity.User, tenant Tenant, level Level) (Decision, error) {
	m := mw.record("authorize_" + level.String())
	d, err := mw.next.Authorize(ctx, user, tenant, level)
	return d, m(d, err)
}

func (mw *mwMetrics) RequireModule(ctx context.Context, user *entity.User, tenant Tenant, module string) (Decision, error) {
	m := mw.record("require_module")
	d, err := mw.next.RequireModule(ctx, user, tenant, module)
	return d, m(d, err)
}

func (mw *mwMetrics) AdminScope(ctx context.Context, user *entity.User) (Scope, error) {
	start := time.Now()
	s, err := mw.next.AdminScope(ctx, user)
	if err != nil {
		mw.errs.With(prometheus.Labels{"method": "admin_scope"}).Inc()
	}
	mw.durs.With(prometheus.Labels{"method": "admin_scope"}).Observe(time.Since(start).Seconds())
	return s, err
}

func (mw *mwMetrics) record(method string) func(Decision, error) error {
	start := time.Now()
	return func(d Decision, err error) error {
		switch {
		case err != nil:
			mw.errs.With(prometheus.Labels{"method": method}).Inc()
		case d.Allowed:
			mw.decisions.With(prometheus.Labels{"method": method, "result": "allowed"}).Inc()
		default:
			mw.decisions.With(prometheus.Labels{"method": method, "result": "denied"}).Inc()
		}
		mw.durs.With(prometheus.Labels{"method": method}).Observe(time.Since(start).Seconds())
		return err
	}
}
