// Package cli is the interactive front end: a REPL over the application
// services, plus the wiring that assembles the client (database, API client,
// session, connectivity monitor, sync engine) and the per-login workspace.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/dkazakov/fieldsale/internal/client/api"
	"github.com/dkazakov/fieldsale/internal/client/cache"
	"github.com/dkazakov/fieldsale/internal/client/config"
	"github.com/dkazakov/fieldsale/internal/client/connectivity"
	"github.com/dkazakov/fieldsale/internal/client/models"
	"github.com/dkazakov/fieldsale/internal/client/services"
	"github.com/dkazakov/fieldsale/internal/client/session"
	"github.com/dkazakov/fieldsale/internal/client/store"
	"github.com/dkazakov/fieldsale/internal/client/syncx"
	"github.com/dkazakov/fieldsale/internal/logging"
)

// App owns every long-lived component of the client. The session-independent
// parts (database, API client, monitor, scheduler) live for the process; the
// workspace (caches, trackers, services) is rebuilt on every login because it
// is scoped to one owner id.
type App struct {
	config  *config.Config
	log     logging.Logger
	repos   *store.Repositories
	api     api.Client
	session *session.Manager
	monitor *connectivity.Monitor
	sched   *syncx.Scheduler
	reader  *bufio.Reader

	ws *workspace
}

// workspace bundles the owner-scoped components built after login.
type workspace struct {
	contactCache *cache.Cache[models.Contact]
	productCache *cache.Cache[models.Product]

	contactTracker *syncx.Tracker
	productTracker *syncx.Tracker

	contacts  *services.ContactService
	products  *services.ProductService
	suppliers *services.SupplierService
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	repos, err := store.InitDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("initializing local database: %w", err)
	}

	sess := session.NewManager(repos.Metadata, log)
	apiClient := api.NewHTTPClient(cfg.ServerBaseURL, sess, log)
	monitor := connectivity.NewMonitor(apiClient, cfg.OnlineCheckInterval, log)
	sched := syncx.NewScheduler(monitor.IsOnline, log)

	return &App{
		config:  cfg,
		log:     log,
		repos:   repos,
		api:     apiClient,
		session: sess,
		monitor: monitor,
		sched:   sched,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.ws != nil
}

// openWorkspace builds the owner-scoped caches, trackers, and services, then
// reconciles the pending sets against the dirty rows so nothing queued before
// a crash is forgotten.
func (a *App) openWorkspace(ctx context.Context) error {
	owner := a.session.OwnerID()

	contactCache := cache.New[models.Contact](a.repos.Contacts, owner, a.log)
	productCache := cache.New[models.Product](a.repos.Products, owner, a.log)

	contactTracker, err := syncx.NewTracker(ctx, "contacts", a.repos.Metadata, a.sched, a.monitor, a.log)
	if err != nil {
		contactCache.Close()
		productCache.Close()
		return fmt.Errorf("loading contact pending set: %w", err)
	}
	productTracker, err := syncx.NewTracker(ctx, "products", a.repos.Metadata, a.sched, a.monitor, a.log)
	if err != nil {
		contactTracker.Close()
		contactCache.Close()
		productCache.Close()
		return fmt.Errorf("loading product pending set: %w", err)
	}

	syncx.NewWorker("contacts", syncx.NewContactPusher(contactCache, a.api, a.log), contactTracker, a.log)
	syncx.NewWorker("products", syncx.NewProductPusher(productCache, a.api, a.log), productTracker, a.log)

	a.ws = &workspace{
		contactCache:   contactCache,
		productCache:   productCache,
		contactTracker: contactTracker,
		productTracker: productTracker,
		contacts:       services.NewContactService(contactCache, contactTracker, a.log),
		products:       services.NewProductService(productCache, productTracker, a.log),
		suppliers:      services.NewSupplierService(a.repos.Suppliers, a.api, owner, a.log),
	}

	a.reconcileTrackers(ctx)
	return nil
}

// reconcileTrackers repairs pending sets that drifted from the dirty flags
// and kicks off a sync pass when anything is waiting.
func (a *App) reconcileTrackers(ctx context.Context) {
	contactIDs := make([]models.ID, 0)
	for _, c := range a.ws.contactCache.GetDirty(ctx) {
		contactIDs = append(contactIDs, c.ID)
	}
	if err := a.ws.contactTracker.Reconcile(ctx, contactIDs); err != nil {
		a.log.Warn(ctx, "contact pending set reconcile failed", "err", err)
	}

	productIDs := make([]models.ID, 0)
	for _, p := range a.ws.productCache.GetDirty(ctx) {
		productIDs = append(productIDs, p.ID)
	}
	if err := a.ws.productTracker.Reconcile(ctx, productIDs); err != nil {
		a.log.Warn(ctx, "product pending set reconcile failed", "err", err)
	}

	if a.monitor.IsOnline() {
		a.ws.contactTracker.ScheduleSyncNow(ctx)
		a.ws.productTracker.ScheduleSyncNow(ctx)
	}
}

func (a *App) closeWorkspace() {
	if a.ws == nil {
		return
	}
	a.ws.contactTracker.Close()
	a.ws.productTracker.Close()
	a.ws.contactCache.Close()
	a.ws.productCache.Close()
	a.ws = nil
}

// Run restores a saved session if one is still valid, then hands control to
// the REPL. All long-lived components are torn down on return.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		a.closeWorkspace()
		a.sched.Close()
		a.monitor.Close()
		if err := a.repos.Close(); err != nil {
			a.log.Warn(ctx, "closing database", "err", err)
		}
	}()

	restored, err := a.session.Restore(ctx)
	if err != nil {
		a.log.Warn(ctx, "session restore failed", "err", err)
	}
	if restored {
		if err := a.openWorkspace(ctx); err != nil {
			return err
		}
		printlnFn(fmt.Sprintf("Welcome back, %s!", a.session.Username()))
	}

	a.Root(ctx)
	return nil
}
