package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/buildinfo"
	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/config"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/pipeline"
	"github.com/matzehuels/lineage/pkg/provider"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and output defaults.
const appName = "lineage"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger and the built-in
// settings. The config file is loaded when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Lineage lays out family trees",
		Long:         `Lineage reads a family graph of members and relationships, groups married couples into family units and computes a tidy top-down tree layout that it renders as SVG, layout JSON, Graphviz DOT or text.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over p with the configured cache and
// key prefix.
func (c *CLI) newRunner(ctx context.Context, p provider.Provider, noCache bool) (*pipeline.Runner, error) {
	var store cache.Cache
	if noCache {
		store = cache.NewNullCache()
	} else {
		var err error
		store, err = cache.Open(ctx, c.cfg.CacheOptions())
		if err != nil {
			return nil, err
		}
	}
	runner := pipeline.NewRunner(p, store, c.cfg.Keyer(), c.Logger)
	runner.TTL = c.cfg.Cache.TTL
	return runner, nil
}

// =============================================================================
// Snapshot Sources
// =============================================================================

// sourceFlags select a remote snapshot source, overriding the config file.
type sourceFlags struct {
	url      string
	token    string
	mongoURI string
	owner    string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "family-tree service base URL")
	cmd.Flags().StringVar(&f.token, "token", "", "bearer token for --url")
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", "", "read the tree straight from MongoDB")
	cmd.Flags().StringVar(&f.owner, "owner", "", "tree owner for --mongo-uri")
}

// resolveProvider picks the snapshot source: a file argument first, then
// the service URL, then MongoDB, each from flags or the config file. It
// returns nil when nothing is configured.
func (c *CLI) resolveProvider(ctx context.Context, args []string, src sourceFlags) (provider.Provider, error) {
	if len(args) > 0 {
		return provider.NewFile(args[0]), nil
	}

	httpOpts := c.cfg.HTTPOptions()
	if src.url != "" {
		httpOpts.BaseURL = src.url
	}
	if src.token != "" {
		httpOpts.Token = src.token
	}
	if httpOpts.BaseURL != "" {
		return provider.NewHTTP(httpOpts)
	}

	mongoOpts := c.cfg.MongoOptions()
	if src.mongoURI != "" {
		mongoOpts.URI = src.mongoURI
	}
	if src.owner != "" {
		mongoOpts.Owner = src.owner
	}
	if mongoOpts.URI != "" {
		return provider.NewMongo(ctx, mongoOpts)
	}
	return nil, nil
}

// requireProvider is resolveProvider for commands that cannot run without
// a source.
func (c *CLI) requireProvider(ctx context.Context, args []string, src sourceFlags) (provider.Provider, error) {
	p, err := c.resolveProvider(ctx, args, src)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"no snapshot source: pass a file, --url or --mongo-uri, or set [provider] in the config file")
	}
	return p, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags hold the layout flags. Only flags set on the command line
// override the config file.
type layoutFlags struct {
	nodeWidth      float64
	nodeHeight     float64
	viewportWidth  float64
	viewportHeight float64
	topMargin      float64
	linkInset      float64
	disjoint       bool
	strict         bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.nodeWidth, "node-width", 0, "horizontal spacing between siblings")
	fs.Float64Var(&f.nodeHeight, "node-height", 0, "vertical spacing between generations")
	fs.Float64Var(&f.viewportWidth, "width", 0, "viewport width")
	fs.Float64Var(&f.viewportHeight, "height", 0, "viewport height")
	fs.Float64Var(&f.topMargin, "top-margin", 0, "vertical offset of the root, 0 for the default")
	fs.Float64Var(&f.linkInset, "link-inset", 0, "gap between a link and the boxes it joins, 0 for the default")
	fs.BoolVar(&f.disjoint, "disjoint", false, "never let subtrees share horizontal space")
	fs.BoolVar(&f.strict, "strict", false, "fail on parent-child cycles anywhere in the graph")
}

func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	set := func(name string, dst *float64, v float64) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("node-width", &opts.NodeWidth, f.nodeWidth)
	set("node-height", &opts.NodeHeight, f.nodeHeight)
	set("width", &opts.ViewportWidth, f.viewportWidth)
	set("height", &opts.ViewportHeight, f.viewportHeight)
	set("top-margin", &opts.TopMargin, f.topMargin)
	set("link-inset", &opts.LinkInset, f.linkInset)
	if fs.Changed("disjoint") {
		opts.Disjoint = f.disjoint
	}
	if fs.Changed("strict") {
		opts.Strict = f.strict
	}
}

// defaultOptions returns pipeline options seeded from the config file.
func (c *CLI) defaultOptions() pipeline.Options {
	opts := pipeline.Options{Logger: c.Logger}
	opts.ApplyLayoutConfig(c.cfg.LayoutConfig())
	return opts
}
