package cli

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	"github.com/subx-cli/subx/pkg/config"
	"github.com/subx-cli/subx/pkg/discover"
	"github.com/subx-cli/subx/pkg/matchcache"
	"github.com/subx-cli/subx/pkg/oracle"
	"github.com/subx-cli/subx/pkg/worker"
)

// configDir resolves the directory holding config.toml and match_cache.json
// — the same xdg lookup pkg/config uses internally, kept in sync here since
// matchcache.New needs a directory rather than the config file's own path.
func configDir() string {
	p, err := xdg.ConfigFile(filepath.Join("subx", "config.toml"))
	if err != nil {
		return "."
	}
	return filepath.Dir(p)
}

// extensionSets adapts the resolved configuration's Discovery section to
// pkg/discover's dependency-free ExtensionSets.
func extensionSets(cfg config.Config) discover.ExtensionSets {
	return discover.ExtensionSets{
		Video:    cfg.Discovery.VideoExtensions,
		Audio:    cfg.Discovery.AudioExtensions,
		Subtitle: cfg.Discovery.SubtitleExtensions,
	}
}

// buildOracle selects the pairing-oracle backend named by cfg.AI.Provider.
// Azure OpenAI reuses the OpenAI backend (it only differs by the
// api_version/deployment_id knobs OpenAIOracle already branches on).
func buildOracle(cfg config.Config) oracle.Oracle {
	switch cfg.AI.Provider {
	case config.ProviderOpenAI, config.ProviderAzureOpenAI:
		return oracle.NewOpenAIOracle(oracle.OpenAIConfig{
			APIKey:         cfg.AI.APIKey,
			Model:          cfg.AI.Model,
			BaseURL:        cfg.AI.BaseURL,
			APIVersion:     cfg.AI.APIVersion,
			DeploymentID:   cfg.AI.DeploymentID,
			Temperature:    cfg.AI.Temperature,
			MaxTokens:      int64(cfg.AI.MaxTokens),
			RetryAttempts:  cfg.AI.RetryAttempts,
			RetryDelay:     cfg.AI.RetryDelay(),
			RequestTimeout: cfg.AI.RequestTimeout(),
		})
	case config.ProviderOpenRouter:
		return oracle.NewOpenRouterOracle(oracle.OpenRouterConfig{
			APIKey:         cfg.AI.APIKey,
			Model:          cfg.AI.Model,
			Temperature:    cfg.AI.Temperature,
			MaxTokens:      cfg.AI.MaxTokens,
			RetryAttempts:  cfg.AI.RetryAttempts,
			RetryDelay:     cfg.AI.RetryDelay(),
			RequestTimeout: cfg.AI.RequestTimeout(),
		})
	default:
		return oracle.NewHeuristic()
	}
}

func buildMatchCache(log zerolog.Logger) *matchcache.Store {
	return matchcache.New(configDir(), log)
}

func overflowStrategy(s config.OverflowStrategy) worker.OverflowStrategy {
	return worker.OverflowStrategy(s)
}

