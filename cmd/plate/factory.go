package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/plate-audit/internal/audit"
	"github.com/Veraticus/plate-audit/internal/cache"
	"github.com/Veraticus/plate-audit/internal/common"
	"github.com/Veraticus/plate-audit/internal/config"
	"github.com/Veraticus/plate-audit/internal/llm"
	"github.com/Veraticus/plate-audit/internal/storage"
	"github.com/Veraticus/plate-audit/internal/upstream"
)

// Cache drivers.
const (
	cacheDriverMemory = "memory"
	cacheDriverSQLite = "sqlite"
)

func setDefaults() {
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.temperature", 0.1)
	viper.SetDefault("llm.max_tokens", 2048)
	viper.SetDefault("llm.timeout", 60*time.Second)
	viper.SetDefault("upstream.timeout", upstream.DefaultTimeout)
	viper.SetDefault("upstream.client_source", upstream.DefaultClientSource)
	viper.SetDefault("upstream.template_source", upstream.DefaultTemplateSource)
	viper.SetDefault("enrichment.timeout", upstream.DefaultEnrichmentTimeout)
	viper.SetDefault("cache.driver", cacheDriverMemory)
	viper.SetDefault("cache.path", config.DefaultCachePath())
	viper.SetDefault("serve.addr", ":8011")
}

// apiKeyEnv lists the conventional environment variables per provider,
// checked after the config key llm.<provider>_api_key.
var apiKeyEnv = map[string][]string{
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// llmConfig builds the provider configuration from viper settings.
func llmConfig() (llm.Config, error) {
	provider := strings.ToLower(viper.GetString("llm.provider"))
	if provider == "google" {
		provider = "gemini"
	}

	envs, ok := apiKeyEnv[provider]
	if !ok {
		return llm.Config{}, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, provider)
	}

	apiKey := viper.GetString("llm." + provider + "_api_key")
	for _, env := range envs {
		if apiKey != "" {
			break
		}
		apiKey = os.Getenv(env)
	}
	if apiKey == "" {
		return llm.Config{}, fmt.Errorf("%w: %s API key not found in config or %s environment variable",
			common.ErrMissingConfig, provider, strings.Join(envs, "/"))
	}

	return llm.Config{
		Provider:    provider,
		APIKey:      apiKey,
		Model:       viper.GetString("llm.model"),
		BaseURL:     viper.GetString("llm.base_url"),
		Timeout:     viper.GetDuration("llm.timeout"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
	}, nil
}

// createClassifier creates the LLM-backed conflict classifier.
func createClassifier(logger *slog.Logger) (*llm.Classifier, error) {
	cfg, err := llmConfig()
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	classifier, err := llm.NewClassifier(client, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM classifier: %w", err)
	}
	return classifier, nil
}

func upstreamConfig() upstream.Config {
	return upstream.Config{
		APIToken:          viper.GetString("upstream.api_token"),
		ClientURL:         viper.GetString("upstream.client_url"),
		ClientSource:      viper.GetString("upstream.client_source"),
		TemplateURL:       viper.GetString("upstream.template_url"),
		TemplateSource:    viper.GetString("upstream.template_source"),
		RecipeURL:         viper.GetString("upstream.recipe_url"),
		RateLimit:         viper.GetFloat64("upstream.rate_limit"),
		Timeout:           viper.GetDuration("upstream.timeout"),
		EnrichmentTimeout: viper.GetDuration("enrichment.timeout"),
	}
}

// openSQLiteCache opens and migrates the persistent ingredient cache.
func openSQLiteCache(ctx context.Context) (*storage.SQLiteCache, error) {
	// Expand tilde and environment variables
	dbPath := config.ExpandPath(viper.GetString("cache.path"))

	store, err := storage.NewSQLiteCache(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// createIngredientCache returns the configured cache and a function that
// releases it.
func createIngredientCache(ctx context.Context) (cache.IngredientCache, func(), error) {
	switch driver := viper.GetString("cache.driver"); driver {
	case cacheDriverMemory, "":
		return cache.NewMemory(), func() {}, nil
	case cacheDriverSQLite:
		store, err := openSQLiteCache(ctx)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Warn("Failed to close ingredient cache", "error", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown cache driver %q", common.ErrInvalidConfig, driver)
	}
}

// createUpstreamClient wires the upstream adapter with the configured cache.
func createUpstreamClient(ctx context.Context, logger *slog.Logger) (*upstream.Client, func(), error) {
	ingredients, release, err := createIngredientCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	client := upstream.NewClient(upstreamConfig(),
		upstream.WithCache(ingredients),
		upstream.WithLogger(logger),
	)
	return client, release, nil
}

// createAuditService wires the full pipeline. The returned upstream client is
// also used for template lookups.
func createAuditService(ctx context.Context) (*audit.Service, *upstream.Client, func(), error) {
	logger := slog.Default()

	classifier, err := createClassifier(logger)
	if err != nil {
		return nil, nil, nil, err
	}

	client, release, err := createUpstreamClient(ctx, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	return audit.NewService(client, client, classifier, logger), client, release, nil
}
