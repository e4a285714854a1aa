package main

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/template"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/rajnandan1/kener-sub002/internal/config"
	"github.com/rajnandan1/kener-sub002/internal/meta"
)

// KenerCommand is the serve-mode entry point, with streams injected
// so tests can run it end to end.
type KenerCommand struct {
	OutStream io.Writer
	ErrStream io.Writer

	ConfigPath  string
	ListenPort  int
	EnvFile     string
	ShowVersion bool
	ShowHelp    bool
}

var defaultKenerCommand = &KenerCommand{
	OutStream: os.Stdout,
	ErrStream: os.Stderr,
}

//go:embed help.txt
var helpText string

func (cmd *KenerCommand) PrintUsage() {
	tmpl := template.Must(template.New("help.txt").Parse(helpText))
	tmpl.Execute(cmd.ErrStream, map[string]interface{}{
		"Version": meta.Version,
		"Commit":  meta.Commit,
	})
}

func (cmd *KenerCommand) PrintVersion() {
	fmt.Fprintf(cmd.OutStream, "Kener version %s (%s)\n", meta.Version, meta.Commit)
}

func (cmd *KenerCommand) ParseArgs(args []string) (exitCode int) {
	flags := pflag.NewFlagSet("kener", pflag.ContinueOnError)

	flags.StringVarP(&cmd.ConfigPath, "config", "c", "kener.yaml", "Path to site configuration")
	flags.IntVarP(&cmd.ListenPort, "port", "p", 0, "Override HTTP listen port")
	flags.StringVarP(&cmd.EnvFile, "env", "e", "", "Load environment variables from file")
	flags.BoolVarP(&cmd.ShowVersion, "version", "v", false, "Show version")
	flags.BoolVarP(&cmd.ShowHelp, "help", "h", false, "Show help message")

	if err := flags.Parse(args[1:]); err != nil {
		fmt.Fprintln(cmd.ErrStream, err)
		fmt.Fprintf(cmd.ErrStream, "\nPlease see `%s -h` for more information.\n", args[0])
		return 2
	}

	return 0
}

// Run parses arguments, loads configuration, and serves until the
// context ends.
func (cmd *KenerCommand) Run(ctx context.Context, args []string) (exitCode int) {
	if code := cmd.ParseArgs(args); code != 0 {
		return code
	}

	if cmd.ShowVersion {
		cmd.PrintVersion()
		return 0
	}
	if cmd.ShowHelp {
		cmd.PrintUsage()
		return 0
	}

	if cmd.EnvFile != "" {
		if err := godotenv.Load(cmd.EnvFile); err != nil {
			fmt.Fprintf(cmd.ErrStream, "error: failed to load env file: %s\n", err)
			return 2
		}
	} else {
		// Best effort: a missing .env is fine.
		godotenv.Load()
	}

	site, err := config.Load(cmd.ConfigPath)
	if err != nil {
		fmt.Fprintf(cmd.ErrStream, "error: invalid configuration:\n%s\n", err)
		return 2
	}
	if cmd.ListenPort != 0 {
		site.Port = cmd.ListenPort
	}

	return cmd.RunServer(ctx, site)
}

// useColor reports whether the console line may use ANSI color.
func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "conv" {
		os.Exit(defaultConvCommand.Run(os.Args))
	}

	os.Exit(defaultKenerCommand.Run(ctx, os.Args))
}
