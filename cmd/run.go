// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents"
	"github.com/docker/go-units"
	ustar "github.com/hashicorp/go-ustar"
	"github.com/hashicorp/go-ustar/telemetry/eventbridge"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// CLI are the cli parameters for the ustar binary
type CLI struct {
	Extensions        []string         `name:"ext" default:"tar" help:"Allowed archive extensions."`
	Metrics           bool             `short:"M" optional:"" default:"false" help:"Print telemetry to log after every operation."`
	TelemetryEventBus string           `optional:"" help:"Publish telemetry to this EventBridge event bus."`
	Verbose           bool             `short:"v" optional:"" help:"Verbose logging."`
	Version           kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`

	Create  CreateCmd  `cmd:"" help:"Create an archive from files."`
	List    ListCmd    `cmd:"" help:"List the files of an archive."`
	Append  AppendCmd  `cmd:"" help:"Append files to an archive."`
	Extract ExtractCmd `cmd:"" help:"Extract an archive into a directory."`
	Verify  VerifyCmd  `cmd:"" help:"Check the structure of archives."`
}

// runContext is bound to every command's Run method.
type runContext struct {
	ctx     context.Context
	logger  *slog.Logger
	stdout  io.Writer
	options []ustar.ConfigOption
}

// archiver builds an archiver from the global options plus extra.
func (rc *runContext) archiver(extra ...ustar.ConfigOption) *ustar.Archiver {
	opts := append(append([]ustar.ConfigOption{}, rc.options...), extra...)
	return ustar.NewArchiver(ustar.NewConfig(opts...))
}

// CreateCmd creates an archive.
type CreateCmd struct {
	Archive string   `arg:"" name:"archive" help:"Path of the new archive."`
	Files   []string `arg:"" name:"file" type:"existingfile" help:"Files to add."`
}

func (c *CreateCmd) Run(rc *runContext) error {
	if err := rc.archiver().Create(rc.ctx, c.Archive, c.Files); err != nil {
		return errors.Wrapf(err, "creating %s failed", c.Archive)
	}
	return nil
}

// ListCmd lists the entries of an archive.
type ListCmd struct {
	Archive string `arg:"" name:"archive" type:"existingfile" help:"Path to archive."`
	Long    bool   `short:"l" help:"Show mode, owner, size and modification time."`
}

func (c *ListCmd) Run(rc *runContext) error {
	entries, err := rc.archiver().List(rc.ctx, c.Archive)
	if err != nil {
		return errors.Wrapf(err, "listing %s failed", c.Archive)
	}
	return writeListing(rc.stdout, entries, c.Long)
}

// AppendCmd appends files to an archive.
type AppendCmd struct {
	Archive string   `arg:"" name:"archive" type:"existingfile" help:"Path to archive."`
	Files   []string `arg:"" name:"file" type:"existingfile" help:"Files to add."`
}

func (c *AppendCmd) Run(rc *runContext) error {
	if err := rc.archiver().Append(rc.ctx, c.Archive, c.Files); err != nil {
		return errors.Wrapf(err, "appending to %s failed", c.Archive)
	}
	return nil
}

// ExtractCmd extracts an archive.
type ExtractCmd struct {
	Archive           string `arg:"" name:"archive" type:"existingfile" help:"Path to archive."`
	Destination       string `arg:"" name:"destination" default:"." help:"Output directory."`
	DropAttributes    bool   `short:"D" help:"Do not restore mode and modification time."`
	MaxFiles          int64  `optional:"" default:"100000" help:"Maximum files that are extracted before stop. (disable check: -1)"`
	MaxExtractionSize int64  `optional:"" default:"1073741824" help:"Maximum extraction size that allowed is (in bytes). (disable check: -1)"`
	Overwrite         bool   `short:"O" help:"Overwrite if exist."`
	PreserveOwner     bool   `short:"P" help:"Restore owner and group (root only)."`
}

func (c *ExtractCmd) Run(rc *runContext) error {
	a := rc.archiver(
		ustar.WithDropFileAttributes(c.DropAttributes),
		ustar.WithMaxExtractionSize(c.MaxExtractionSize),
		ustar.WithMaxFiles(c.MaxFiles),
		ustar.WithOverwrite(c.Overwrite),
		ustar.WithPreserveOwner(c.PreserveOwner),
	)
	if err := a.Extract(rc.ctx, c.Archive, c.Destination); err != nil {
		return errors.Wrapf(err, "extracting %s failed", c.Archive)
	}
	return nil
}

// VerifyCmd validates archives concurrently.
type VerifyCmd struct {
	Archives []string `arg:"" name:"archive" type:"existingfile" help:"Archives to check."`
	Jobs     int      `short:"j" default:"0" help:"Number of archives checked in parallel. (default: number of CPUs)"`
}

func (c *VerifyCmd) Run(rc *runContext) error {
	archives := lo.Uniq(c.Archives)
	results := verifyAll(rc.ctx, rc.archiver(), archives, c.Jobs)

	failed := 0
	for i, err := range results {
		if err != nil {
			failed++
			rc.logger.Warn("archive failed verification", "archive", archives[i], "err", err)
			fmt.Fprintf(rc.stdout, "%s: FAIL: %v\n", archives[i], err)
			continue
		}
		fmt.Fprintf(rc.stdout, "%s: OK\n", archives[i])
	}
	if failed > 0 {
		return errors.Errorf("%d of %d archives failed verification", failed, len(archives))
	}
	return nil
}

// verifyAll validates every archive and returns the results in input order.
func verifyAll(ctx context.Context, a *ustar.Archiver, archives []string, jobs int) []error {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	results := make([]error, len(archives))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range archives {
		i, path := i, path
		g.Go(func() error {
			results[i] = a.Validate(gctx, path)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// writeListing prints names only, or a long listing in aligned columns.
func writeListing(w io.Writer, entries []ustar.Entry, long bool) error {
	if !long {
		for _, e := range entries {
			if _, err := fmt.Fprintln(w, e.Name); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d/%d\t%s\t%s\t%s\n",
			e.FileMode(),
			e.Uid, e.Gid,
			units.HumanSize(float64(e.Size)),
			e.Time().UTC().Format("2006-01-02 15:04"),
			e.Name,
		)
	}
	return tw.Flush()
}

// newParser builds the kong parser for cli.
func newParser(cli *CLI, version string, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Description("Create, list, extract and append to ustar archives"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	}, options...)
	return kong.New(cli, options...)
}

// configOptions are the archiver options shared by every command. All hooks
// receive the telemetry of each operation.
func (cli *CLI) configOptions(logger *slog.Logger, hooks ...ustar.TelemetryHook) []ustar.ConfigOption {
	return []ustar.ConfigOption{
		ustar.WithAllowedExtensions(cli.Extensions...),
		ustar.WithLogger(logger),
		ustar.WithTelemetryHook(func(ctx context.Context, td *ustar.TelemetryData) {
			for _, h := range hooks {
				h(ctx, td)
			}
		}),
	}
}

// Run the entrypoint into go-ustar as a cli tool
func Run(version, commit, date string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var cli CLI
	parser, err := newParser(&cli, fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date))
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	// Check for verbose output
	logLevel := slog.LevelError
	if cli.Metrics {
		logLevel = slog.LevelInfo
	}
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// setup telemetry hooks
	var hooks []ustar.TelemetryHook
	if cli.Metrics {
		hooks = append(hooks, func(ctx context.Context, td *ustar.TelemetryData) {
			logger.Info("operation telemetry", "telemetry", td)
		})
	}
	if cli.TelemetryEventBus != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Error("loading aws configuration failed", "err", err)
			os.Exit(-1)
		}
		client := cloudwatchevents.NewFromConfig(awsCfg)
		hooks = append(hooks, eventbridge.NewHook(client, cli.TelemetryEventBus, eventbridge.WithLogger(logger)))
	}

	rc := &runContext{
		ctx:     ctx,
		logger:  logger,
		stdout:  os.Stdout,
		options: cli.configOptions(logger, hooks...),
	}

	if err := kctx.Run(rc); err != nil {
		logger.Error("command failed", "command", kctx.Command(), "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(-1)
	}
}
