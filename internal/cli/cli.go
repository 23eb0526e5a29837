package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vk/pixel/internal/app"
)

// PalettesEnv names the environment variable consulted when --palettes is
// not given.
const PalettesEnv = "PIXEL_PALETTES"

// Commands understood by Parse.
const (
	CmdHelp    = "help"
	CmdPalette = "palette"
	CmdCheck   = "check"
	CmdRun     = "run"
	CmdBatch   = "batch"
	CmdVersion = "version"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Invocation is a parsed command line.
type Invocation struct {
	Config  *app.Config
	Command string
	Args    []string
	Options app.Options
}

const banner = `
 ┏━┓╻╻ ╻┏━╸╻
 ┣━┛┃┏╋┛┣╸ ┃
 ╹  ╹╹ ╹┗━╸┗━╸  pixel ` + app.Version + `
`

const usage = `
Usage:
  pixel [global options] help
  pixel [global options] palette
  pixel [global options] check <palette>
  pixel [global options] run <input> <output> [options]
  pixel [global options] batch <input-dir> <output-dir> [options]
  pixel version

Options:
  --palette <name>    Palette name, "auto" (default) or "adaptive"
  --colors <n>        Limit palette colors
  --px <n>            Pixel size / grid (default: 1)
  --dither            Floyd-Steinberg dithering while quantizing
  --format <ext>      Output format, replacing the output extension

Global options:
`

// PrintUsage writes the banner and usage text.
func PrintUsage(output io.Writer, flagSet *flag.FlagSet) {
	fmt.Fprint(output, banner)
	fmt.Fprint(output, usage)
	if flagSet != nil {
		flagSet.PrintDefaults()
	}
}

// Parse processes command-line arguments. It returns the Invocation to
// execute, a boolean indicating if the program should exit cleanly (help,
// version), or an ExitError for usage problems.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("pixel", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() { PrintUsage(output, flagSet) }

	palettesFlag := flagSet.String("palettes", "", "Palette directory (default: $"+PalettesEnv+", then the config file, then ./palettes next to the binary).")
	configFlag := flagSet.String("config", "", "Path to an HCL settings file.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'. (default \"text\")")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'. (default \"warn\")")
	noColorFlag := flagSet.Bool("no-color", false, "Disable colour swatches in palette listings.")
	notifyFlag := flagSet.String("notify", "", "socket.io URL that receives batch progress events.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}
	slog.Debug("Global arguments parsed successfully.")

	rest := flagSet.Args()
	if len(rest) == 0 {
		slog.Debug("No command provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	command, cmdArgs := rest[0], rest[1:]

	logFormat := strings.ToLower(*logFormatFlag)
	logLevel := strings.ToLower(*logLevelFlag)
	palettesDir := *palettesFlag
	if palettesDir == "" {
		palettesDir = os.Getenv(PalettesEnv)
	}

	config, err := app.NewConfig(app.Config{
		PalettesDir: palettesDir,
		ConfigPath:  *configFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		NotifyURL:   *notifyFlag,
		Color:       !*noColorFlag && os.Getenv("NO_COLOR") == "",
	})
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	inv := &Invocation{Config: config, Command: command}

	switch command {
	case CmdHelp, "-h", "--help":
		flagSet.Usage()
		return nil, true, nil

	case CmdVersion:
		fmt.Fprintf(output, "pixel %s\n", app.Version)
		return nil, true, nil

	case CmdPalette:
		// Extra arguments are ignored.

	case CmdCheck:
		if len(cmdArgs) < 1 {
			return nil, false, usageError("check requires <palette>")
		}
		inv.Args = cmdArgs[:1]

	case CmdRun, CmdBatch:
		positional, opts, exit, err := parseImageArgs(command, cmdArgs, output)
		if err != nil || exit {
			return nil, exit, err
		}
		inv.Args = positional
		inv.Options = opts

	default:
		fmt.Fprint(output, banner)
		return nil, false, usageError("unknown command: %s", command)
	}

	slog.Debug("CLI parser finished successfully.", "command", command, "config", config)
	return inv, false, nil
}

// parseImageArgs handles `run` and `batch`: two positional paths with
// options allowed before, between or after them.
func parseImageArgs(command string, args []string, output io.Writer) ([]string, app.Options, bool, error) {
	var opts app.Options
	names := "<input> <output>"
	if command == CmdBatch {
		names = "<input-dir> <output-dir>"
	}

	flagSet := flag.NewFlagSet(command, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprintf(output, "\nUsage:\n  pixel %s %s [options]\n\nOptions:\n", command, names)
		flagSet.PrintDefaults()
	}
	flagSet.StringVar(&opts.Palette, app.OptPalette, "", "Palette name: a loaded palette, \"auto\" or \"adaptive\". (default \"auto\")")
	flagSet.IntVar(&opts.Colors, app.OptColors, 0, "Limit palette colors; colour count for \"adaptive\".")
	flagSet.IntVar(&opts.PixelSize, app.OptPixelSize, 0, "Pixel size / grid. (default 1)")
	flagSet.BoolVar(&opts.Dither, app.OptDither, false, "Floyd-Steinberg dithering while quantizing.")
	flagSet.StringVar(&opts.Format, app.OptFormat, "", "Output format (png, jpg, gif, bmp, tiff); replaces the output extension.")

	positional, err := parseInterspersed(flagSet, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, opts, true, nil
		}
		return nil, opts, false, usageError("%s", err.Error())
	}

	flagSet.Visit(func(f *flag.Flag) {
		if opts.Set == nil {
			opts.Set = make(map[string]bool)
		}
		opts.Set[f.Name] = true
	})

	if len(positional) < 2 {
		return nil, opts, false, usageError("%s requires %s", command, names)
	}
	if len(positional) > 2 {
		return nil, opts, false, usageError("unexpected argument: %s", positional[2])
	}
	if opts.Colors < 0 {
		return nil, opts, false, usageError("invalid value %d for --colors: must not be negative", opts.Colors)
	}
	if opts.PixelSize < 0 {
		return nil, opts, false, usageError("invalid value %d for --px: must not be negative", opts.PixelSize)
	}
	return positional, opts, false, nil
}

// parseInterspersed parses flags anywhere in args, collecting the
// non-flag arguments in order. Everything after "--" is positional.
func parseInterspersed(flagSet *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := flagSet.Parse(args); err != nil {
			return nil, err
		}
		rest := flagSet.Args()
		consumed := len(args) - len(rest)
		if consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}
