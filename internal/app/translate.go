package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/polyglot/internal/cli"
	"horse.fit/polyglot/internal/config"
	"horse.fit/polyglot/internal/language"
	"horse.fit/polyglot/internal/logging"
	"horse.fit/polyglot/internal/pipeline"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	target := fs.String("target", "", "Target language code (for example fr)")
	flagEmoji := fs.String("flag", "", "Flag emoji as an alternative to --target")
	source := fs.String("source", "", "Source language code, empty for automatic detection")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		fmt.Fprintln(os.Stderr, "usage: polyglot translate --target <lang> <text>")
		return 2
	}

	targetLang := language.NormalizeCode(*target)
	if targetLang == "" && strings.TrimSpace(*flagEmoji) != "" {
		code, ok := language.CodeForFlag(strings.TrimSpace(*flagEmoji))
		if !ok {
			fmt.Fprintf(os.Stderr, "unrecognized flag emoji: %s\n", *flagEmoji)
			return 2
		}
		targetLang = code
	}
	if targetLang == "" {
		fmt.Fprintln(os.Stderr, "--target or --flag is required")
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := newRuntime(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer rt.close()

	sink, err := rt.pipe.Submit(ctx, pipeline.Request{
		Text:       text,
		TargetLang: targetLang,
		SourceLang: *source,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Translation rejected: %v\n", err)
		return 1
	}

	select {
	case out := <-sink:
		if out.Err != nil {
			fmt.Fprintf(os.Stderr, "Translation failed: %v\n", out.Err)
			return 1
		}
		logger.Info().
			Str("provider", out.Result.ProviderName).
			Str("source_lang", out.Result.SourceLang).
			Str("target_lang", out.Result.TargetLang).
			Msg("translated")
		fmt.Println(out.Result.Text)
		return 0
	case <-time.After(cfg.RequestWait):
		fmt.Fprintln(os.Stderr, "Translation timed out")
		return 1
	}
}
