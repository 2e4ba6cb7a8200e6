// Command oclminify minifies OpenCL C kernel source code.
//
// Usage:
//
//	oclminify [options] <input.cl>
//	cat input.cl | oclminify [options]
//
// oclminify looks for oclminify.json, .oclminifyrc or .oclminifyrc.json
// in the input file's directory (the current directory when reading
// stdin) and its parent directories. Config file options are overridden
// by CLI flags.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/starbytesoftware/oclminify/internal/config"
	"github.com/starbytesoftware/oclminify/internal/minifier"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	app := cli.NewApp()
	app.Name = "oclminify"
	app.Usage = "minify OpenCL C kernel source code"
	app.Version = fmt.Sprintf("%s (%s)", version, commit)
	app.ArgsUsage = "<input.cl>"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "o", Usage: "write output to `FILE` (default: stdout)"},
		cli.StringFlag{Name: "config", Usage: "use specific config `FILE`"},
		cli.BoolFlag{Name: "no-config", Usage: "ignore config files"},
		cli.BoolFlag{Name: "rename-kernels", Usage: "rename __kernel function names"},
		cli.BoolFlag{Name: "no-rename-kernels", Usage: "keep __kernel function names as written"},
		cli.StringFlag{Name: "global-postfix", Usage: "append `SUFFIX` to every globally-scoped renamed name"},
		cli.StringFlag{Name: "keep-names", Usage: "comma-separated list of identifiers to never rename"},
		cli.StringFlag{Name: "metadata", Usage: "write kernel/function rename metadata as JSON to `FILE`"},
		cli.BoolFlag{Name: "verbose", Usage: "log progress and size stats to stderr"},
	}
	app.Action = func(c *cli.Context) error {
		return run(c, logger)
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context, logger *zap.Logger) error {
	inputPath := c.Args().First()

	source, err := readSource(inputPath)
	if err != nil {
		return err
	}

	opts, configPath, err := resolveOptions(c, inputPath)
	if err != nil {
		return err
	}
	if c.Bool("verbose") && configPath != "" {
		logger.Info("using config file", zap.String("path", configPath))
	}

	m := minifier.New(opts)
	result := m.Minify(string(source))

	for _, d := range result.Diagnostics {
		logger.Warn(d.Message, zap.String("severity", d.Severity.String()),
			zap.Int("line", d.Range.Start.Line), zap.Int("column", d.Range.Start.Column))
	}
	if result.Code == "" {
		return fmt.Errorf("minification failed, see diagnostics above")
	}

	if err := writeOutput(c.String("o"), result.Code); err != nil {
		return err
	}

	if metadataPath := c.String("metadata"); metadataPath != "" {
		if err := writeMetadata(metadataPath, result); err != nil {
			return err
		}
	}

	if c.Bool("verbose") {
		ratio := float64(result.Stats.MinifiedSize) / float64(result.Stats.OriginalSize) * 100
		logger.Info("minified",
			zap.Int("original_bytes", result.Stats.OriginalSize),
			zap.Int("minified_bytes", result.Stats.MinifiedSize),
			zap.Float64("ratio_percent", ratio))
	}

	return nil
}

func readSource(inputPath string) ([]byte, error) {
	if inputPath != "" {
		source, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		return source, nil
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return nil, fmt.Errorf("no input file specified")
	}
	source, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return source, nil
}

// resolveOptions loads the config file (unless disabled), applies CLI
// flag overrides, and returns the merged minifier.Options along with
// the config file path actually used (empty if none).
func resolveOptions(c *cli.Context, inputPath string) (minifier.Options, string, error) {
	var cfg *config.Config
	var configPath string

	if !c.Bool("no-config") {
		var err error
		if cf := c.String("config"); cf != "" {
			cfg, err = config.LoadFile(cf)
			if err != nil {
				return minifier.Options{}, "", fmt.Errorf("loading config file %s: %w", cf, err)
			}
			configPath = cf
		} else {
			startDir, _ := os.Getwd()
			if inputPath != "" {
				startDir = filepath.Dir(inputPath)
			}
			cfg, configPath, err = config.Load(startDir)
			if err != nil {
				return minifier.Options{}, "", fmt.Errorf("loading config: %w", err)
			}
		}
	}

	var cliKeepNames []string
	if kn := c.String("keep-names"); kn != "" {
		for _, n := range strings.Split(kn, ",") {
			cliKeepNames = append(cliKeepNames, strings.TrimSpace(n))
		}
	}

	cliOpts := config.MergeOptions{KeepNames: cliKeepNames}
	if c.Bool("rename-kernels") {
		v := true
		cliOpts.RenameKernels = &v
	}
	if c.Bool("no-rename-kernels") {
		v := false
		cliOpts.RenameKernels = &v
	}
	if gp := c.String("global-postfix"); gp != "" {
		cliOpts.GlobalPostfix = &gp
	}

	if cfg == nil {
		cfg = &config.Config{}
	}
	return cfg.Merge(cliOpts), configPath, nil
}

func writeOutput(outputFile, code string) error {
	var output io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		output = f
	}
	if _, err := io.WriteString(output, code); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// metadataDoc is the JSON shape written by --metadata: the renamed
// kernel names and a function-name/parameter-name rename table, so a
// host application can still locate its entry points after renaming.
type metadataDoc struct {
	KernelNames []string                     `json:"kernelNames"`
	Functions   map[string]functionRenameDoc `json:"functions"`
}

type functionRenameDoc struct {
	Name string            `json:"name"`
	Args map[string]string `json:"args"`
}

func writeMetadata(path string, result minifier.Result) error {
	doc := metadataDoc{KernelNames: result.KernelNames, Functions: map[string]functionRenameDoc{}}
	for orig, fn := range result.Functions {
		doc.Functions[orig] = functionRenameDoc{Name: fn.Name, Args: fn.Args}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}
