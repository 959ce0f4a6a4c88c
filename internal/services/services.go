package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/office671/nawader/internal/config"
	"github.com/office671/nawader/internal/connections"
	"github.com/office671/nawader/internal/infrastructure/gemini"
	"github.com/office671/nawader/internal/infrastructure/openai"
	"github.com/office671/nawader/internal/infrastructure/redis"
	"github.com/office671/nawader/internal/services/assistant"
	"github.com/office671/nawader/internal/services/attachment"
	"github.com/office671/nawader/internal/services/catalog"
	"github.com/office671/nawader/internal/services/credential"
	"github.com/office671/nawader/internal/services/dispatch"
	"github.com/office671/nawader/internal/services/prompt"
	"github.com/office671/nawader/internal/services/recovery"
	"github.com/office671/nawader/internal/services/session"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	assistantConfig   *config.AssistantConfig
	catalogService    *catalog.Service
	connectionManager *connections.Manager
	credentialHost    *credential.RedisHost
	dispatcher        *dispatch.Dispatcher
	messages          prompt.Messages
	redisService      *redis.Service
	registry          *assistant.Registry
	sessionService    *session.Service
}

// Options lets callers supply pre-built dependencies; zero values are built from config
type Options struct {
	Redis   *redis.Service
	Backend dispatch.Backend
}

// InitializeServices initializes all required services
func InitializeServices(ctx context.Context, cfg *config.AssistantConfig, opts Options) (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	// Redis is optional: without it sessions live in memory and there is no credential host
	redisService := opts.Redis
	if redisService == nil {
		redisService = redis.NewService(config.GetRedisURL(), config.GetRedisPassword())
	}
	log.Info().Bool("available", redisService != nil).Msg("Initializing Redis service")

	sessionService := session.NewService(redisService, config.GetSessionTTL())
	log.Info().Msg("Initializing session service")

	catalogService, err := catalog.NewService(cfg.CatalogPath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.CatalogPath).Msg("Failed to load reference catalog")
		return nil, fmt.Errorf("failed to initialize catalog service: %w", err)
	}

	backend := opts.Backend
	if backend == nil {
		backend, err = newBackend(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	dispatcher := dispatch.NewDispatcher(backend, cfg.Model)
	log.Info().Str("dispatcher", dispatcher.String()).Msg("Initializing dispatch service")

	var (
		credentialHost *credential.RedisHost
		host           credential.Host
	)
	if redisService != nil {
		credentialHost = credential.NewRedisHost(redisService)
		host = credentialHost
	}

	compiler := prompt.NewCompiler(prompt.ParseLocale(cfg.Locale))
	deps := &assistant.Deps{
		Validator:       attachment.NewValidator(cfg.MaxUploadMB, cfg.AcceptedTypes, cfg.EnforceAccept),
		Compiler:        compiler,
		Dispatcher:      dispatcher,
		Classifier:      recovery.NewClassifier(host, compiler.Messages()),
		Catalog:         catalogService.Items(),
		Host:            host,
		NotifyTTL:       cfg.NotifyTTL,
		DispatchTimeout: cfg.DispatchTimeout,
	}
	registry := assistant.NewRegistry(deps, config.GetSessionTTL())
	log.Info().Msg("Initializing assistant registry")

	log.Info().Msg("All services initialized successfully")

	return &Services{
		assistantConfig:   cfg,
		catalogService:    catalogService,
		connectionManager: connections.NewManager(connections.DefaultTimeouts),
		credentialHost:    credentialHost,
		dispatcher:        dispatcher,
		messages:          compiler.Messages(),
		redisService:      redisService,
		registry:          registry,
		sessionService:    sessionService,
	}, nil
}

func newBackend(ctx context.Context, cfg *config.AssistantConfig) (dispatch.Backend, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		svc := openai.NewService(cfg.APIKey, cfg.BaseURL)
		if svc == nil {
			return nil, fmt.Errorf("failed to initialize OpenAI backend")
		}
		return svc, nil
	default:
		svc, err := gemini.NewService(ctx, cfg.APIKey, gemini.Options{BaseURL: cfg.BaseURL})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini backend: %w", err)
		}
		return svc, nil
	}
}

// Close tears down sessions, connections and Redis
func (s *Services) Close() {
	s.registry.Close()
	s.connectionManager.CloseAll()
	if s.redisService != nil {
		if err := s.redisService.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis connection")
		}
	}
}

func (s *Services) GetAssistantConfig() *config.AssistantConfig {
	return s.assistantConfig
}

func (s *Services) GetCatalogService() *catalog.Service {
	return s.catalogService
}

func (s *Services) GetConnectionManager() *connections.Manager {
	return s.connectionManager
}

// GetCredentialHost returns nil when no host is configured
func (s *Services) GetCredentialHost() *credential.RedisHost {
	return s.credentialHost
}

func (s *Services) GetRegistry() *assistant.Registry {
	return s.registry
}

// GetSessionService returns the session service
func (s *Services) GetSessionService() *session.Service {
	return s.sessionService
}

func (s *Services) GetRedisService() *redis.Service {
	return s.redisService
}

func (s *Services) GetDispatcher() *dispatch.Dispatcher {
	return s.dispatcher
}

// GetMessages returns the user-facing strings for the configured locale
func (s *Services) GetMessages() prompt.Messages {
	return s.messages
}
