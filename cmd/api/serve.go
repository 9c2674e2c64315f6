package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/Gestion-api/internal/application/audit"
	"github.com/jhoicas/Gestion-api/internal/application/auth"
	"github.com/jhoicas/Gestion-api/internal/application/authz"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Gestion-api/internal/interfaces/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

const swaggerFile = "./docs/swagger.json"

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Levanta el servidor HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "aplica las migraciones antes de arrancar")
}

func runServe(cmd *cobra.Command, _ []string) (err error) {
	cfg, log, err := load()
	if err != nil {
		return err
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if autoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			return err
		}
		log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	userRepo := postgres.NewUserRepository(pool)
	groupRepo := postgres.NewGroupRepository(pool)
	companyRepo := postgres.NewCompanyRepository(pool)
	membershipRepo := postgres.NewCompanyUserRepository(pool)
	moduleRepo := postgres.NewCompanyModuleRepository(pool)
	activityRepo := postgres.NewActivityLogRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	checker := authz.WithMetrics(reg, authz.NewEvaluator(membershipRepo, moduleRepo))
	recorder := audit.NewLogger(activityRepo, log, cfg.Audit.DetailsMax)
	moduleSvc := usecase.NewModuleService(moduleRepo, companyRepo, checker)

	authUC := auth.NewAuthUseCase(userRepo, membershipRepo, moduleSvc, recorder, auth.JWTConfig{
		Secret:            cfg.JWT.Secret,
		ExpMinutes:        cfg.JWT.Expiration,
		RefreshExpMinutes: cfg.JWT.RefreshExpiration,
		Issuer:            cfg.JWT.Issuer,
	})

	appCfg := httpRouter.AppConfig{Name: cfg.App.Name, Log: log, Registry: reg}
	if _, err := os.Stat(swaggerFile); err == nil {
		appCfg.SwaggerFile = swaggerFile
	}
	app := httpRouter.NewApp(appCfg, httpRouter.RouterDeps{
		AuthUC:       authUC,
		UserUC:       usecase.NewUserUseCase(userRepo, groupRepo, membershipRepo, checker, txRunner, recorder),
		GroupUC:      usecase.NewGroupUseCase(groupRepo, recorder),
		CompanyUC:    usecase.NewCompanyUseCase(companyRepo, moduleRepo, checker),
		MembershipUC: usecase.NewMembershipUseCase(membershipRepo, companyRepo, userRepo, checker),
		ModuleSvc:    moduleSvc,
		ActivityUC:   usecase.NewActivityUseCase(activityRepo, userRepo, membershipRepo, checker, cfg.Audit.DetailsMax),
		CategoryUC:   usecase.NewCategoryUseCase(categoryRepo),
		ProductUC:    usecase.NewProductUseCase(productRepo, categoryRepo),
		Users:        userRepo,
		Tenants:      authz.NewTenantResolver(companyRepo),
		Checker:      checker,
		JWTSecret:    cfg.JWT.Secret,
	})

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.HTTP.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	case err := <-listenErr:
		// El servidor no llegó a arrancar o se cayó: se apaga igual.
		log.Error().Err(err).Msg("servidor HTTP finalizado")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = multierr.Append(err, app.ShutdownWithContext(shutdownCtx))
	if lerr := <-listenErr; lerr != nil && !errors.Is(lerr, context.Canceled) {
		err = multierr.Append(err, lerr)
	}
	if err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
		return err
	}
	log.Info().Msg("aplicación detenida")
	return nil
}
