package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/polyglot/internal/cli"
	"horse.fit/polyglot/internal/config"
	"horse.fit/polyglot/internal/logging"
	"horse.fit/polyglot/internal/providerconf"
	"horse.fit/polyglot/internal/translation"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	ping := fs.Bool("ping", false, "Send a probe translation to every provider")
	timeout := fs.Duration("timeout", 10*time.Second, "Provider probe timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	specs, err := providerconf.Load(cfg.ProviderConfigPath)
	if err != nil {
		logger.Error().Err(err).Msg("provider config check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}

	registry, err := translation.NewRegistryFromSpecs(specs, cfg.ProviderTimeout)
	if err != nil {
		logger.Error().Err(err).Msg("provider registry check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}

	fmt.Printf("Configuration OK, %d provider(s) configured:\n", len(specs))
	for _, spec := range specs {
		fmt.Printf("  %-16s %s\n", spec.ID, spec.BaseURL)
	}

	if !*ping {
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	failures := 0
	for _, provider := range registry.Ordered() {
		_, probeErr := provider.Translate(ctx, translation.TranslateRequest{
			Text:       "hello",
			SourceLang: "en",
			TargetLang: "es",
		})
		if probeErr != nil {
			failures++
			logger.Error().Err(probeErr).Str("provider", provider.Name()).Msg("provider probe failed")
			fmt.Printf("  %-16s DOWN (%v)\n", provider.Name(), probeErr)
			continue
		}
		fmt.Printf("  %-16s UP\n", provider.Name())
	}

	if failures == len(specs) {
		fmt.Fprintln(os.Stderr, "All providers are unreachable")
		return 1
	}
	return 0
}
