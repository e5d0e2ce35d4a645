package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlane/pkg/config"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/layout"
	"github.com/matzehuels/flowlane/pkg/observability"
	"github.com/matzehuels/flowlane/pkg/pipeline"
	"github.com/matzehuels/flowlane/pkg/process"
	"github.com/matzehuels/flowlane/pkg/source"
	"github.com/matzehuels/flowlane/pkg/source/file"
	"github.com/matzehuels/flowlane/pkg/source/mongo"
)

var stdinIsTerminal = func() bool { return isatty.IsTerminal(os.Stdin.Fd()) }

// runFlags are shared by export and layout.
type runFlags struct {
	table     string
	output    string
	engine    string
	direction string
	strict    bool
	noCache   bool
	refresh   bool
	mongoURI  string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.table, "table", "t", "", "table id to export (required when the source has several)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", `output file ("-" for stdout)`)
	cmd.Flags().StringVarP(&f.engine, "engine", "e", "", "layout engine: "+strings.Join(pipeline.EngineNames(), ", "))
	cmd.Flags().StringVarP(&f.direction, "direction", "d", "", "flow direction: LR or TB")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "reject cyclic flows")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", "", "read tables from MongoDB instead of a file")
	registerCompletions(cmd)
}

// options applies the flag overrides to the configured pipeline options.
func (f *runFlags) options(cfg config.Config) (pipeline.Options, error) {
	opts := cfg.PipelineOptions()
	if f.engine != "" {
		if _, err := pipeline.NewEngine(f.engine); err != nil {
			return opts, err
		}
		opts.Layout.Engine = f.engine
	}
	if f.direction != "" {
		d, err := layout.ParseDirection(f.direction)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "--direction")
		}
		opts.Layout.Direction = d
	}
	opts.Strict = opts.Strict || f.strict
	opts.Refresh = f.refresh
	return opts, opts.Validate()
}

// openSource opens the file argument, or MongoDB when no file is given.
func (c *CLI) openSource(ctx context.Context, cfg config.Config, f *runFlags, args []string) (source.Source, error) {
	if len(args) > 0 {
		if f.mongoURI != "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "give either a file or --mongo-uri, not both")
		}
		c.Logger.Debug("reading tables", "file", args[0])
		return file.Open(args[0])
	}
	uri := f.mongoURI
	if uri == "" {
		uri = cfg.Source.MongoURI
	}
	if uri == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no input: pass a snapshot file or --mongo-uri")
	}
	c.Logger.Debug("connecting to mongodb", "database", cfg.Source.Database, "collection", cfg.Source.Collection)
	return mongo.Connect(ctx, uri, cfg.Source.Database, cfg.Source.Collection)
}

// pickSnapshot resolves --table, a single-table source, or the interactive
// picker when stdin is a terminal.
func (c *CLI) pickSnapshot(ctx context.Context, src source.Source, table string) (process.Snapshot, error) {
	if table != "" {
		if err := errors.ValidateTableID(table); err != nil {
			return process.Snapshot{}, err
		}
		return src.Snapshot(ctx, table)
	}
	tables, err := src.Tables(ctx)
	if err != nil {
		return process.Snapshot{}, err
	}
	switch {
	case len(tables) == 0:
		return process.Snapshot{}, errors.New(errors.ErrCodeNotFound, "source has no process tables")
	case len(tables) == 1:
		return src.Snapshot(ctx, tables[0].TableID)
	case !stdinIsTerminal():
		ids := make([]string, len(tables))
		for i, t := range tables {
			ids[i] = t.TableID
		}
		return process.Snapshot{}, errors.New(errors.ErrCodeInvalidInput,
			"source has %d tables, choose one with --table: %s", len(tables), strings.Join(ids, ", "))
	}

	final, err := tea.NewProgram(NewTableListModel(tables), tea.WithContext(ctx)).Run()
	if err != nil {
		return process.Snapshot{}, fmt.Errorf("table picker: %w", err)
	}
	m, ok := final.(TableListModel)
	if !ok || m.Selected == nil {
		return process.Snapshot{}, context.Canceled
	}
	return src.Snapshot(ctx, m.Selected.TableID)
}

// produce is Service.Export or Service.Layout.
type produce func(*pipeline.Service, context.Context, process.Snapshot, pipeline.Options) (*pipeline.Output, error)

// run is the body of export and layout: resolve input, run the service
// behind a spinner, write the artifact.
func (c *CLI) run(ctx context.Context, f *runFlags, args []string, ext string, fn produce) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := f.options(cfg)
	if err != nil {
		return err
	}

	src, err := c.openSource(ctx, cfg, f, args)
	if err != nil {
		return err
	}
	defer src.Close()

	snap, err := c.pickSnapshot(ctx, src, f.table)
	if err != nil {
		return err
	}

	output := f.output
	if output == "" {
		// the table id becomes a file name in the working directory
		if err := errors.ValidateTableID(snap.ID()); err != nil {
			return fmt.Errorf("table id unusable as file name, pass -o: %w", err)
		}
		output = snap.ID() + ext
	}

	svc, err := c.newService(ctx, cfg, f.noCache)
	if err != nil {
		return err
	}
	defer svc.Close()
	if output == "-" {
		uiOut = os.Stderr
		defer func() { uiOut = os.Stdout }()
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("%s: starting…", snap.ID()))
	prev := observability.Pipeline()
	observability.SetPipelineHooks(spinner)
	defer observability.SetPipelineHooks(prev)
	spinner.Start()

	out, err := fn(svc, ctx, snap, opts)
	spinner.Stop()
	if err != nil {
		if spinner.Cancelled() {
			return ctx.Err()
		}
		printViolations(err)
		return err
	}
	prog.done("produced "+ext, "table", snap.ID(), "cached", out.CacheHit)

	if err := writeOutput(output, out.Data); err != nil {
		return err
	}

	printSuccess("%s", snap.DisplayName())
	if output != "-" {
		printFile(output)
	}
	if out.Result != nil {
		st := out.Result.Stats
		if st.Feedback > 0 {
			printWarning("%d flow(s) close a cycle and are routed against the flow direction", st.Feedback)
		}
		printStats(st.Lanes, st.Nodes, st.Edges, false)
	} else {
		printStats(len(snap.Lanes), len(snap.Nodes), 0, true)
	}
	return nil
}

// printViolations lists every violation when an error carries more than
// one; the error itself is printed by main.
func printViolations(err error) {
	details := errors.GetDetails(err)
	for _, key := range []string{"violations", "problems"} {
		list, ok := details[key].([]string)
		if !ok || len(list) < 2 {
			continue
		}
		for _, v := range list {
			printDetail("%s", v)
		}
	}
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
