package main

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mentoverse/mentoverse-platform/internal/api/router"
	"github.com/mentoverse/mentoverse-platform/internal/app/bootstrap"
	"github.com/mentoverse/mentoverse-platform/internal/booking"
	"github.com/mentoverse/mentoverse-platform/internal/bookings"
	"github.com/mentoverse/mentoverse-platform/internal/catalog"
	appconfig "github.com/mentoverse/mentoverse-platform/internal/config"
	"github.com/mentoverse/mentoverse-platform/internal/dashboard"
	"github.com/mentoverse/mentoverse-platform/internal/events"
	"github.com/mentoverse/mentoverse-platform/internal/mentors"
	"github.com/mentoverse/mentoverse-platform/internal/notify"
	"github.com/mentoverse/mentoverse-platform/internal/observability/metrics"
	"github.com/mentoverse/mentoverse-platform/internal/payments"
	"github.com/mentoverse/mentoverse-platform/internal/resources"
	"github.com/mentoverse/mentoverse-platform/internal/store"
	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// application is the assembled API process: the HTTP handler, the optional
// outbox deliverer and everything that must be released on shutdown.
type application struct {
	handler   http.Handler
	deliverer *events.Deliverer
	closers   []func() error
}

func (a *application) close(logger *logging.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("shutdown: release failed", "error", err)
		}
	}
}

// buildApplication wires the process from cfg. Every external dependency is
// optional: without DATABASE_URL the collections live in memory, without
// REDIS_ADDR wizard sessions stay in process, and AWS clients are only built
// for the features that are configured.
func buildApplication(ctx context.Context, cfg *appconfig.Config, reg *prometheus.Registry, logger *logging.Logger) (*application, error) {
	app := &application{}
	fail := func(err error) (*application, error) {
		app.close(logger)
		return nil, err
	}

	flow, err := booking.ParseFlow(cfg.WizardFlow)
	if err != nil {
		return nil, err
	}

	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewBookingMetrics(reg)
	healthChecks := map[string]router.HealthCheck{}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		app.closers = append(app.closers, redisClient.Close)
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}
	if pool != nil {
		app.closers = append(app.closers, func() error { pool.Close(); return nil })
		healthChecks["postgres"] = pool.Ping
	}
	sqlDB, err := bootstrap.OpenSQL(cfg)
	if err != nil {
		return fail(err)
	}
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB.Close)
	}

	services, err := openCollection(ctx, pool, store.Services, catalog.WithID, func(s catalog.Service) string { return s.ID }, catalog.Fixtures(), logger)
	if err != nil {
		return fail(err)
	}
	mentorColl, err := openCollection(ctx, pool, store.Mentors, mentors.WithID, func(m mentors.Mentor) string { return m.ID }, mentors.Fixtures(), logger)
	if err != nil {
		return fail(err)
	}
	resourceColl, err := openCollection(ctx, pool, store.Resources, resources.WithID, func(r resources.Resource) string { return r.ID }, resources.Fixtures(), logger)
	if err != nil {
		return fail(err)
	}
	bookingColl, err := openCollection(ctx, pool, store.Bookings, bookings.WithID, func(b bookings.Booking) string { return b.ID }, bookings.Fixtures(time.Now()), logger)
	if err != nil {
		return fail(err)
	}

	var clients bootstrap.AWSClients
	if bootstrap.NeedsAWS(cfg) {
		awsCfg, err := bootstrap.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return fail(err)
		}
		clients = bootstrap.BuildAWSClients(awsCfg, cfg)
	}

	var source catalog.Source = catalog.NewStoreSource(services)
	if redisClient != nil {
		source = catalog.NewCachedSource(source, redisClient, cfg.CatalogCacheTTL, logger.Component("catalog"))
	}
	directory := mentors.NewStoreDirectory(mentorColl)

	notifier := notify.NewService(bootstrap.BuildEmailSender(cfg, clients, logger), cfg.OperatorEmails, logger.Component("notify"))
	links, fakeCheckout := payments.NewLinkCreator(payments.CheckoutConfig{
		StripeSecretKey:  cfg.StripeSecretKey,
		StripeSuccessURL: cfg.StripeSuccessURL,
		StripeCancelURL:  cfg.StripeCancelURL,
		AllowFake:        cfg.AllowFakePayments && !cfg.IsProduction(),
		PublicBaseURL:    cfg.PublicBaseURL,
	}, logger.Component("payments"))

	var outbox *events.OutboxStore
	if pool != nil {
		outbox = events.NewOutboxStore(pool)
	}

	// Sinks run in this order; later sinks see the payment link.
	sinks := []booking.ConfirmationSink{
		bookings.NewRecordSink(bookings.NewRepository(bookingColl), booking.IST, logger.Component("bookings")),
	}
	var ledger *bookings.Ledger
	if clients.DynamoDB != nil {
		ledger = bookings.NewLedger(clients.DynamoDB, cfg.ConfirmationsTable, logger.Component("ledger"))
		sinks = append(sinks, ledger)
	}
	sinks = append(sinks, booking.NewPaymentLinkSink(links), booking.NewEmailSink(notifier))
	if outbox != nil {
		sinks = append(sinks, booking.NewOutboxSink(outbox))
	}

	seed := uint64(time.Now().UnixNano())
	submitter := booking.NewSimulatedSubmitter(
		cfg.SubmitDelay,
		booking.NewRandomReferences(rand.New(rand.NewPCG(seed, seed>>1))),
		logger.Component("submitter"),
	)
	opts := []booking.ManagerOption{
		booking.WithConfirmationSinks(sinks...),
		booking.WithObserver(bookingMetrics),
		booking.WithDefaultFlow(flow),
		booking.WithSessionTTL(cfg.WizardSessionTTL),
		booking.WithLocation(booking.IST),
	}
	if redisClient != nil {
		opts = append(opts, booking.WithSnapshotStore(booking.NewRedisSnapshotStore(redisClient)))
	}
	manager := booking.NewManager(source, directory, submitter, logger.Component("wizard"), opts...)

	mentorHandler := buildMentorHandler(cfg, directory, mentorColl, sqlDB, clients, notifier, outbox, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		Services:           services,
		Mentors:            mentorColl,
		Resources:          resourceColl,
		Bookings:           bookingColl,
		StoreObserver:      bookingMetrics,
		Wizard:             booking.NewHandler(manager, logger.Component("wizard")),
		MentorHandler:      mentorHandler,
		Dashboard:          dashboard.NewHandler(dashboard.NewService(bookingColl, source, directory), logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		HealthChecks:       healthChecks,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	}
	if ledger != nil {
		routerCfg.Confirmations = bookings.NewConfirmationHandler(ledger, logger)
	}
	if fakeCheckout != nil {
		if outbox != nil {
			routerCfg.FakePayments = payments.NewFakePaymentsHandler(fakeCheckout, outbox, logger)
		} else {
			routerCfg.FakePayments = payments.NewFakePaymentsHandler(fakeCheckout, nil, logger)
		}
	}
	app.handler = router.New(routerCfg)

	publisher, err := bootstrap.BuildEventPublisher(cfg, clients, logger.Component("events"))
	if err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, publisher.Close)
	switch {
	case outbox != nil && publisher.Handler != nil:
		app.deliverer = events.NewDeliverer(outbox, publisher.Handler, logger.Component("outbox")).
			WithInterval(cfg.OutboxInterval).
			WithTracker(events.NewProcessedStore(pool), publisher.Transport)
	case publisher.Handler != nil:
		logger.Warn("events transport configured without DATABASE_URL; outbox disabled", "transport", publisher.Transport)
	}
	return app, nil
}

func buildMentorHandler(
	cfg *appconfig.Config,
	directory mentors.Directory,
	mentorColl store.Collection[mentors.Mentor],
	sqlDB *sql.DB,
	clients bootstrap.AWSClients,
	notifier *notify.Service,
	outbox *events.OutboxStore,
	logger *logging.Logger,
) *mentors.Handler {
	var apps mentors.ApplicationRepository = mentors.NewMemoryApplicationRepository()
	if sqlDB != nil {
		apps = mentors.NewSQLApplicationRepository(sqlDB)
	}
	var images *mentors.ImageStore
	if clients.S3 != nil {
		images = mentors.NewImageStore(clients.S3, cfg.MentorImagesBucket, logger.Component("images"))
	}
	seed := uint64(time.Now().UnixNano())
	availability := mentors.NewAvailability(rand.New(rand.NewPCG(seed, seed<<1)), cfg.AvailabilityDelay)

	fanout := bootstrap.NewApplicationFanout(notifier, nil, logger)
	if outbox != nil {
		fanout = bootstrap.NewApplicationFanout(notifier, outbox, logger)
	}
	return mentors.NewHandler(directory, availability, apps, images, mentorColl, logger.Component("mentors")).
		WithApplicationListener(fanout)
}

// openCollection returns a Postgres-backed collection seeded with fixtures
// when pool is set, an in-memory one otherwise.
func openCollection[T any](
	ctx context.Context,
	pool *pgxpool.Pool,
	name string,
	setID store.IDSetter[T],
	idOf func(T) string,
	fixtures []T,
	logger *logging.Logger,
) (store.Collection[T], error) {
	if pool == nil {
		return store.NewMemoryCollection(name, setID, fixtures...), nil
	}
	coll := store.NewPostgresCollection(pool, name, setID)
	seeded, err := coll.SeedIfEmpty(ctx, idOf, fixtures)
	if err != nil {
		return nil, fmt.Errorf("api: seed %s: %w", name, err)
	}
	if seeded > 0 {
		logger.Info("seeded collection", "collection", name, "records", seeded)
	}
	return coll, nil
}
