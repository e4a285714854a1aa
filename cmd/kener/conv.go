package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/rajnandan1/kener-sub002/internal/config"
	"github.com/rajnandan1/kener-sub002/internal/logconv"
	"github.com/rajnandan1/kener-sub002/internal/store"
)

// ConvCommand exports a monitor's event log in another format.
type ConvCommand struct {
	OutStream io.Writer
	ErrStream io.Writer
}

var defaultConvCommand = &ConvCommand{
	OutStream: os.Stdout,
	ErrStream: os.Stderr,
}

const convHelp = `Kener conv -- Export a monitor's event log to another format

Usage: kener conv [OPTIONS...] -m TAG

Options:
  -c, --config   Path to the site configuration file. (default "kener.yaml")
  -m, --monitor  Tag of the monitor to export. (required)
  -o, --output   Output file. (default stdout)

      --csv      Export as CSV. (default format)
  -x, --xlsx     Export as XLSX.

  -h, --help     Show this help message and exit.
`

func (c ConvCommand) Run(args []string) int {
	flags := pflag.NewFlagSet("kener conv", pflag.ContinueOnError)

	configPath := flags.StringP("config", "c", "kener.yaml", "Path to site configuration")
	tag := flags.StringP("monitor", "m", "", "Tag of the monitor to export")
	outputPath := flags.StringP("output", "o", "", "Output file")

	toCsv := flags.Bool("csv", false, "Export as CSV")
	toXlsx := flags.BoolP("xlsx", "x", false, "Export as XLSX")

	help := flags.BoolP("help", "h", false, "Show this message and exit")

	if err := flags.Parse(args[2:]); err != nil {
		fmt.Fprintln(c.ErrStream, err)
		fmt.Fprintf(c.ErrStream, "\nPlease see `%s conv -h` for more information.\n", args[0])
		return 2
	}

	if *help {
		fmt.Fprint(c.OutStream, convHelp)
		return 0
	}

	if *toCsv && *toXlsx {
		fmt.Fprintln(c.ErrStream, "error: flags for output format can not be used at the same time.")
		return 2
	}
	if *tag == "" {
		fmt.Fprintln(c.ErrStream, "error: -m TAG is required.")
		return 2
	}

	godotenv.Load()

	site, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(c.ErrStream, "error: invalid configuration:\n%s\n", err)
		return 2
	}

	monitor, err := site.MonitorByTag(*tag)
	if err != nil {
		fmt.Fprintf(c.ErrStream, "error: %s\n", err)
		return 2
	}

	s, err := store.New(site.DataDir, io.Discard)
	if err != nil {
		fmt.Fprintf(c.ErrStream, "error: %s\n", err)
		return 1
	}

	obs, err := s.ReadTodayLog(monitor)
	if err != nil {
		fmt.Fprintf(c.ErrStream, "error: %s\n", err)
		return 1
	}

	out := c.OutStream
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			fmt.Fprintf(c.ErrStream, "error: failed to open output file: %s\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}

	if *toXlsx {
		err = logconv.ToXlsx(out, obs, time.Now())
	} else {
		err = logconv.ToCSV(out, obs)
	}
	if err != nil {
		fmt.Fprintf(c.ErrStream, "error: failed to export log: %s\n", err)
		return 1
	}

	return 0
}
