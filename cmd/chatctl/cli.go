package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/kbukum/chatgate/bootstrap"
	"github.com/kbukum/chatgate/config"
	"github.com/kbukum/chatgate/logger"
	"github.com/kbukum/chatgate/version"
)

type cmdNew struct {
	Model string `short:"m" help:"Model of the conversation. Defaults to the configured default model."`
}

type cmdLs struct{}

type cmdShow struct {
	ID string `arg:"" optional:"" help:"Conversation id. Defaults to the current conversation."`
}

type cmdSwitch struct {
	ID string `arg:"" help:"Conversation id."`
}

type cmdRm struct {
	ID string `arg:"" help:"Conversation id."`
}

type cmdRename struct {
	ID    string   `arg:"" help:"Conversation id."`
	Title []string `arg:"" help:"New title."`
}

type cmdClear struct {
	ID  string `arg:"" optional:"" help:"Conversation id. Defaults to the current conversation."`
	All bool   `help:"Delete every conversation."`
}

type cmdSend struct {
	Text   []string `arg:"" optional:"" help:"Message text; read from stdin when absent."`
	Attach []string `short:"a" type:"path" help:"File to attach. Repeatable."`
}

type cmdConfig struct {
	Theme       string            `help:"light, dark or system."`
	Model       string            `help:"Default model of new conversations."`
	Temperature string            `help:"Sampling temperature between 0 and 1."`
	MaxTokens   int               `name:"max-tokens" help:"Reply length limit."`
	APIKey      map[string]string `name:"api-key" help:"Provider key, e.g. openai=sk-...; an empty value removes it."`
}

type cmdModels struct{}

type cmdSweep struct{}

type cmdVersion struct{}

type cliArgs struct {
	ConfigFile string `name:"config" short:"c" type:"path" help:"Path to the config file."`
	EnvFile    string `name:"env-file" type:"path" help:"Path to a .env file."`
	Backend    string `short:"b" help:"Persistence backend: memory, file, redis, database, bolt or storage."`
	Gateway    string `short:"g" help:"Gateway base URL."`
	Verbose    bool   `short:"v" help:"Log debug output on stderr."`

	New     cmdNew     `cmd:"" help:"Start a conversation and make it current."`
	Ls      cmdLs      `cmd:"" help:"List conversations; * marks the current one."`
	Show    cmdShow    `cmd:"" help:"Print the messages of a conversation."`
	Switch  cmdSwitch  `cmd:"" help:"Make a conversation current."`
	Rm      cmdRm      `cmd:"" help:"Delete a conversation."`
	Rename  cmdRename  `cmd:"" help:"Rename a conversation."`
	Clear   cmdClear   `cmd:"" help:"Remove the messages of a conversation."`
	Send    cmdSend    `cmd:"" help:"Send a message to the current conversation and print the reply."`
	Config  cmdConfig  `cmd:"" help:"Show or change preferences and API keys."`
	Models  cmdModels  `cmd:"" help:"List the models the gateway routes."`
	Sweep   cmdSweep   `cmd:"" help:"Release stored attachments no message refers to."`
	Version cmdVersion `cmd:"" help:"Show the version."`
}

// CliConfig contains chatctl's identity and stdio.
type CliConfig struct {
	Name        string
	Description string
	Version     string
	// Exit is called by kong after printing help.
	Exit   func(int)
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Logger replaces the one built from the logging config.
	Logger *logger.Logger
}

// NewCliConfig returns the config of the real binary.
func NewCliConfig() *CliConfig {
	return &CliConfig{
		Name:        "chatctl",
		Description: "Manage chat conversations and talk to models through a chatgate gateway.",
		Version:     version.Get().String(),
		Exit:        os.Exit,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}
}

// Cli parses args and runs the selected command. It takes the arguments
// instead of reading os.Args so tests can drive every command.
func Cli(args []string, cc *CliConfig) (rc int, err error) {
	var cli cliArgs
	parser, err := kong.New(&cli,
		kong.Name(cc.Name),
		kong.Description(cc.Description),
		kong.Exit(cc.Exit),
		kong.Writers(cc.Stdout, cc.Stderr),
		kong.Vars{"version": cc.Version},
	)
	if err != nil {
		return 1, err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return 2, err
	}
	cmd := strings.Fields(kctx.Command())[0]

	// Commands without local state.
	switch cmd {
	case "version":
		fprintln(cc.Stdout, cc.Version)
		return 0, nil
	case "models":
		printModels(cc.Stdout)
		return 0, nil
	}

	cfg, err := loadConfig(&cli)
	if err != nil {
		return 1, err
	}
	opts := []bootstrap.Option{bootstrap.WithSummaryWriter(io.Discard)}
	if cc.Logger != nil {
		opts = append(opts, bootstrap.WithLogger(cc.Logger))
	}
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return 1, err
	}
	backend := newPersistence(cfg.Persistence, app.Logger)
	if err := app.RegisterComponent(backend); err != nil {
		return 1, err
	}

	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		s, err := openSession(ctx, cfg, backend.Store(), app.Logger)
		if err != nil {
			return err
		}
		r := &runner{cli: &cli, session: s, in: cc.Stdin, out: cc.Stdout}
		return r.run(ctx, cmd)
	})
	if err != nil {
		return 1, err
	}
	return 0, nil
}

// loadConfig reads the config file and applies the global flags on top.
func loadConfig(cli *cliArgs) (*Config, error) {
	var opts []config.LoaderOption
	if cli.ConfigFile != "" {
		opts = append(opts, config.WithConfigFile(cli.ConfigFile))
	}
	if cli.EnvFile != "" {
		opts = append(opts, config.WithEnvFile(cli.EnvFile))
	}
	cfg := &Config{}
	if err := config.LoadConfig("chatctl", cfg, opts...); err != nil {
		return nil, err
	}
	if cli.Backend != "" {
		cfg.Persistence.Backend = cli.Backend
	}
	if cli.Gateway != "" {
		cfg.GatewayURL = cli.Gateway
	}
	if cli.Verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}
