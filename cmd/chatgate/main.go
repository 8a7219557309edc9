// Command chatgate serves the chat gateway: POST /api/chat streams a
// provider's reply as plain text, POST /api/chat/events as SSE frames.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/kbukum/chatgate/config"
	"github.com/kbukum/chatgate/gateway"
	"github.com/kbukum/chatgate/version"
)

type flags struct {
	Config  string           `short:"c" type:"path" help:"Path to the config file."`
	EnvFile string           `name:"env-file" type:"path" help:"Path to a .env file."`
	Version kong.VersionFlag `help:"Print the version and exit."`
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "chatgate:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var f flags
	parser, err := kong.New(&f,
		kong.Name("chatgate"),
		kong.Description("Streaming chat gateway for OpenAI, Anthropic, DeepSeek and Google models."),
		kong.Vars{"version": version.Get().String()},
	)
	if err != nil {
		return err
	}
	if _, err := parser.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

func loadConfig(f flags) (*gateway.Config, error) {
	var opts []config.LoaderOption
	if f.Config != "" {
		opts = append(opts, config.WithConfigFile(f.Config))
	}
	if f.EnvFile != "" {
		opts = append(opts, config.WithEnvFile(f.EnvFile))
	}
	cfg := &gateway.Config{}
	if err := config.LoadConfig("chatgate", cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}
	return cfg, nil
}
