package router

import (
	"github.com/gymbro/gymbro-api/internal/application"
	"github.com/gymbro/gymbro-api/internal/container"
	pginfra "github.com/gymbro/gymbro-api/internal/infrastructure/postgres"
	handlers "github.com/gymbro/gymbro-api/internal/interface/http"
	"github.com/gymbro/gymbro-api/internal/router/modules"
	"github.com/gymbro/gymbro-api/pkg/helpers"
	"github.com/gymbro/gymbro-api/pkg/mailer"
	"github.com/gymbro/gymbro-api/pkg/media"
)

func buildAuthModule() *modules.AuthModule {
	cfg := container.GetConfig()

	var dispatcher mailer.Dispatcher
	if pub := container.GetRabbitPub(); pub != nil {
		dispatcher = mailer.NewQueueDispatcher(pub)
	}

	svc := application.NewAccountService(
		pginfra.NewUserRepository(container.GetPGPool()),
		container.GetTokens(),
		dispatcher,
		container.GetLogger(),
		cfg,
	)
	handler := handlers.NewAuthHandler(
		svc,
		container.GetLogger(),
		cfg,
		helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
	)
	return modules.NewAuthModule(handler, container.GetTokens())
}

func buildProductModule() *modules.ProductModule {
	cfg := container.GetConfig()

	var pipeline *media.Pipeline
	if gcs := container.GetGCS(); gcs != nil {
		store := media.NewGCSStore(gcs, cfg.GCSBucket, "products")
		pipeline = media.NewPipeline(store, container.GetLogger(), cfg.ThumbnailWidth)
	}

	svc := application.NewProductService(
		pginfra.NewProductRepository(container.GetPGPool()),
		pipeline,
		container.GetLogger(),
		container.GetES(),
		cfg.ESProductsIndex,
	)
	handler := handlers.NewProductHandler(svc, container.GetLogger())
	return modules.NewProductModule(handler, container.GetTokens())
}

// InitModules wires every feature module into the registry. Called once
// during startup after the container singletons are set.
func InitModules(r *Registry) {
	r.Add(buildAuthModule())
	r.Add(buildProductModule())
}
