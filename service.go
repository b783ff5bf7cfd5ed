package reposync

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-repo-sync/core"
	sqlstore "github.com/goliatone/go-repo-sync/store/sql"
	syncengine "github.com/goliatone/go-repo-sync/sync"
	"github.com/goliatone/go-repo-sync/webhooks"
)

type Config = core.Config

type SyncConfig = core.SyncConfig

type Provider = core.Provider

type Registry = core.Registry

type AttachResult = core.AttachResult

// Service assembles the sync and webhook engines over the configured stores
// and providers. It is the composition root downstream applications embed.
type Service struct {
	config            core.Config
	logger            core.Logger
	loggerProvider    core.LoggerProvider
	observer          core.Observer
	registry          core.Registry
	dispatcher        core.JobDispatcher
	permissionChecker core.PermissionChecker
	urlResolver       core.URLResolver
	serviceMap        map[string]string

	users         core.UserStore
	accounts      core.AccountStore
	organizations core.OrganizationStore
	projects      core.ProjectStore
	notifications core.NotificationStore
	remoteRepos   core.RemoteRepositoryStore

	engine      *syncengine.Engine
	distributor *syncengine.Distributor
	weekly      *syncengine.WeeklyScheduler
	attacher    *webhooks.Attacher
}

type serviceBuilder struct {
	runtimeConfig     core.Config
	logger            core.Logger
	loggerProvider    core.LoggerProvider
	metricsRecorder   core.MetricsRecorder
	persistenceClient any
	repositoryFactory any
	configProvider    core.ConfigProvider
	optionsResolver   core.OptionsResolver
	registry          core.Registry
	providers         []core.Provider
	dispatcher        core.JobDispatcher
	permissionChecker core.PermissionChecker
	urlResolver       core.URLResolver
	serviceMap        map[string]string
	cacheService      repositorycache.CacheService

	users         core.UserStore
	accounts      core.AccountStore
	organizations core.OrganizationStore
	projects      core.ProjectStore
	notifications core.NotificationStore
	remoteRepos   core.RemoteRepositoryStore
}

type Option func(*serviceBuilder)

func WithLogger(logger core.Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithPersistenceClient(client any) Option {
	return func(b *serviceBuilder) {
		b.persistenceClient = client
	}
}

func WithRepositoryFactory(factory any) Option {
	return func(b *serviceBuilder) {
		b.repositoryFactory = factory
	}
}

func WithConfigProvider(provider core.ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver core.OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithRegistry(registry core.Registry) Option {
	return func(b *serviceBuilder) {
		b.registry = registry
	}
}

// WithProviders registers providers in the given order. Order matters: it is
// the auto-detection priority when a project's integration type is not
// explicitly chosen.
func WithProviders(providers ...core.Provider) Option {
	return func(b *serviceBuilder) {
		b.providers = append(b.providers, providers...)
	}
}

func WithDispatcher(dispatcher core.JobDispatcher) Option {
	return func(b *serviceBuilder) {
		b.dispatcher = dispatcher
	}
}

func WithPermissionChecker(checker core.PermissionChecker) Option {
	return func(b *serviceBuilder) {
		b.permissionChecker = checker
	}
}

func WithURLResolver(resolver core.URLResolver) Option {
	return func(b *serviceBuilder) {
		b.urlResolver = resolver
	}
}

func WithServiceMap(serviceMap map[string]string) Option {
	return func(b *serviceBuilder) {
		b.serviceMap = serviceMap
	}
}

// WithProjectCache fronts project reads with the given cache service.
func WithProjectCache(cacheService repositorycache.CacheService) Option {
	return func(b *serviceBuilder) {
		b.cacheService = cacheService
	}
}

func WithUserStore(store core.UserStore) Option {
	return func(b *serviceBuilder) {
		b.users = store
	}
}

func WithAccountStore(store core.AccountStore) Option {
	return func(b *serviceBuilder) {
		b.accounts = store
	}
}

func WithOrganizationStore(store core.OrganizationStore) Option {
	return func(b *serviceBuilder) {
		b.organizations = store
	}
}

func WithProjectStore(store core.ProjectStore) Option {
	return func(b *serviceBuilder) {
		b.projects = store
	}
}

func WithNotificationStore(store core.NotificationStore) Option {
	return func(b *serviceBuilder) {
		b.notifications = store
	}
}

func WithRemoteRepositoryStore(store core.RemoteRepositoryStore) Option {
	return func(b *serviceBuilder) {
		b.remoteRepos = store
	}
}

func defaultServiceBuilder(runtime core.Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve("repo-sync", nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: core.NopMetricsRecorder{},
		configProvider:  core.NewCfgxConfigProvider(nil),
		optionsResolver: core.GoOptionsResolver{},
		registry:        core.NewProviderRegistry(),
		serviceMap:      DefaultServiceMap(),
	}
}

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("repo-sync", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("repo-sync"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = core.NopMetricsRecorder{}
	}
	if builder.configProvider == nil {
		builder.configProvider = core.NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = core.GoOptionsResolver{}
	}
	if builder.registry == nil {
		builder.registry = core.NewProviderRegistry()
	}
	builder.serviceMap = normalizeServiceMap(builder.serviceMap)
	if len(builder.serviceMap) == 0 {
		builder.serviceMap = DefaultServiceMap()
	}

	defaults := core.DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(err)
	}

	if err := resolveStores(&builder); err != nil {
		return nil, mapBuildError(err)
	}
	if builder.cacheService != nil && builder.projects != nil {
		cached, cacheErr := sqlstore.NewCachedProjectStore(builder.projects, builder.cacheService)
		if cacheErr != nil {
			return nil, mapBuildError(cacheErr)
		}
		builder.projects = cached
	}

	for _, p := range builder.providers {
		if registerErr := builder.registry.Register(p); registerErr != nil {
			return nil, mapBuildError(registerErr)
		}
	}
	if packErr := installProviderPacks(builder.registry); packErr != nil {
		return nil, mapBuildError(packErr)
	}

	if builder.permissionChecker == nil && builder.users != nil {
		builder.permissionChecker = core.NewUserPermissionChecker(builder.users)
	}
	if builder.urlResolver == nil {
		builder.urlResolver = core.NewStaticURLResolver("", finalConfig.Webhook.DocsURL)
	}

	observer := core.Observer{Logger: logger, Metrics: builder.metricsRecorder}

	engine := syncengine.NewEngine(builder.users, builder.registry)
	engine.Observer = observer
	distributor := syncengine.NewDistributor(builder.organizations, builder.dispatcher, finalConfig.Sync)
	distributor.Observer = observer
	weekly := syncengine.NewWeeklyScheduler(builder.users, engine, finalConfig.Sync)
	weekly.Observer = observer
	attacher := webhooks.NewAttacher(
		builder.projects,
		builder.users,
		builder.registry,
		builder.serviceMap,
		builder.notifications,
		builder.urlResolver,
	)
	attacher.Observer = observer

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		observer:          observer,
		registry:          builder.registry,
		dispatcher:        builder.dispatcher,
		permissionChecker: builder.permissionChecker,
		urlResolver:       builder.urlResolver,
		serviceMap:        builder.serviceMap,
		users:             builder.users,
		accounts:          builder.accounts,
		organizations:     builder.organizations,
		projects:          builder.projects,
		notifications:     builder.notifications,
		remoteRepos:       builder.remoteRepos,
		engine:            engine,
		distributor:       distributor,
		weekly:            weekly,
		attacher:          attacher,
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

// resolveStores fills any store the caller did not inject from the
// repository factory, accepting either the sqlstore factory or anything
// exposing the same accessor methods.
func resolveStores(builder *serviceBuilder) error {
	if builder.repositoryFactory == nil {
		return nil
	}
	if storeFactory, ok := builder.repositoryFactory.(interface{ BuildStores(any) error }); ok {
		if err := storeFactory.BuildStores(builder.persistenceClient); err != nil {
			return err
		}
	}
	if builder.users == nil {
		if provider, ok := builder.repositoryFactory.(interface{ UserStore() core.UserStore }); ok {
			builder.users = provider.UserStore()
		}
	}
	if builder.accounts == nil {
		if provider, ok := builder.repositoryFactory.(interface{ AccountStore() core.AccountStore }); ok {
			builder.accounts = provider.AccountStore()
		}
	}
	if builder.organizations == nil {
		if provider, ok := builder.repositoryFactory.(interface {
			OrganizationStore() core.OrganizationStore
		}); ok {
			builder.organizations = provider.OrganizationStore()
		}
	}
	if builder.projects == nil {
		if provider, ok := builder.repositoryFactory.(interface{ ProjectStore() core.ProjectStore }); ok {
			builder.projects = provider.ProjectStore()
		}
	}
	if builder.notifications == nil {
		if provider, ok := builder.repositoryFactory.(interface {
			NotificationStore() core.NotificationStore
		}); ok {
			builder.notifications = provider.NotificationStore()
		}
	}
	if builder.remoteRepos == nil {
		if provider, ok := builder.repositoryFactory.(interface {
			RemoteRepositoryStore() core.RemoteRepositoryStore
		}); ok {
			builder.remoteRepos = provider.RemoteRepositoryStore()
		}
	}
	return nil
}

func mapBuildError(err error) error {
	if err == nil {
		return nil
	}
	mapped := core.SyncErrorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Registry() core.Registry {
	if s == nil {
		return nil
	}
	return s.registry
}

func (s *Service) Logger() core.Logger {
	if s == nil {
		return nil
	}
	return s.logger
}

// SyncUser re-syncs one user's linked repositories across all providers.
func (s *Service) SyncUser(ctx context.Context, userID string) error {
	if s == nil || s.engine == nil {
		return fmt.Errorf("reposync: service is not configured")
	}
	return s.engine.SyncUser(ctx, userID)
}

// Distribute queues staggered per-member syncs for the target organizations.
func (s *Service) Distribute(ctx context.Context, organizationSlugs []string) error {
	if s == nil || s.distributor == nil {
		return fmt.Errorf("reposync: service is not configured")
	}
	return s.distributor.Distribute(ctx, organizationSlugs)
}

// Run executes the weekly re-sync batch for today's active users.
func (s *Service) Run(ctx context.Context) error {
	if s == nil || s.weekly == nil {
		return fmt.Errorf("reposync: service is not configured")
	}
	return s.weekly.Run(ctx)
}

// Attach provisions a commit webhook for the project on the user's behalf.
func (s *Service) Attach(
	ctx context.Context,
	projectID string,
	userID string,
	integration *core.Integration,
) (core.AttachResult, error) {
	if s == nil || s.attacher == nil {
		return core.AttachResultFailed, fmt.Errorf("reposync: service is not configured")
	}
	return s.attacher.Attach(ctx, projectID, userID, integration)
}

// DefaultServiceMap maps integration types onto provider ids for explicit
// webhook attachment requests.
func DefaultServiceMap() map[string]string {
	return map[string]string{
		"github_webhook":    "github",
		"gitlab_webhook":    "gitlab",
		"bitbucket_webhook": "bitbucket",
	}
}

func normalizeServiceMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		trimmedKey := strings.TrimSpace(key)
		trimmedValue := strings.TrimSpace(value)
		if trimmedKey == "" || trimmedValue == "" {
			continue
		}
		out[trimmedKey] = trimmedValue
	}
	return out
}
