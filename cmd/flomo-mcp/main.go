// flomo-mcp is an MCP server exposing a write_note tool that saves markdown
// notes to flomo through an incoming webhook. It serves MCP over stdio by
// default, or over streamable HTTP when an address is configured. The write
// subcommand submits a single note from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/germanamz/flomo-mcp/pkg/config"
)

const (
	serverName    = "mcp-server-flomo"
	serverVersion = "0.1.0"
)

// commonFlags are shared by every subcommand.
type commonFlags struct {
	apiURL     *string
	configPath *string
	envFile    *string
	verbose    *bool
}

func registerCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		apiURL:     fs.String("flomo_api_url", "", "flomo incoming webhook URL (overrides "+config.EnvAPIURL+")"),
		configPath: fs.String("config", "", "path to YAML configuration file (optional)"),
		envFile:    fs.String("env", ".env", "path to .env file (ignored if missing)"),
		verbose:    fs.Bool("verbose", false, "enable debug logging"),
	}
}

// resolve loads the .env file and resolves the configuration.
func (f commonFlags) resolve(httpAddr string) (config.Config, error) {
	if err := loadDotEnv(*f.envFile); err != nil {
		return config.Config{}, err
	}

	return config.Resolve(config.Flags{
		APIURL:   *f.apiURL,
		HTTPAddr: httpAddr,
		Verbose:  *f.verbose,
	}, *f.configPath, nil)
}

func main() {
	args := os.Args[1:]

	cmd := "serve"
	if len(args) > 0 && (args[0] == "serve" || args[0] == "write") {
		cmd, args = args[0], args[1:]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error

	switch cmd {
	case "write":
		err = writeMain(ctx, args)
	default:
		err = serveMain(ctx, args)
	}

	if err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serveMain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: flomo-mcp [serve] [flags]\n       flomo-mcp write [flags] [text...|-]\n\nServe the write_note tool over MCP.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	common := registerCommonFlags(fs)
	httpAddr := fs.String("http", "", "serve streamable HTTP on this address instead of stdio (overrides "+config.EnvHTTPAddr+")")
	_ = fs.Parse(args)

	cfg, err := common.resolve(*httpAddr)
	if err != nil {
		return err
	}

	log := newLogger(os.Stderr, cfg.LogLevel)

	return runServe(ctx, cfg, log)
}

func writeMain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("write", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: flomo-mcp write [flags] [text...|-]\n\nWrite a single note to flomo. Reads stdin when given - or when stdin is not a terminal.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	common := registerCommonFlags(fs)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	_ = fs.Parse(args)

	cfg, err := common.resolve("")
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if !*common.verbose {
		level = max(level, quietLevel)
	}

	log := newLogger(os.Stderr, level)

	return runWrite(ctx, cfg, log, fs.Args(), writeOptions{
		yes:         *yes,
		in:          os.Stdin,
		out:         os.Stdout,
		stdinTTY:    isTerminal(os.Stdin),
		interactive: isTerminal(os.Stdin) && isTerminal(os.Stdout),
	})
}
