package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lent/cli/cmd"
	"github.com/ardnew/lent/pkg"
)

// CLI is the top-level command-line interface for lent.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Path []string `help:"Directory searched for bare source names (repeatable, merged with $LENT_PATH)" name:"path" short:"I" type:"existingdir"`

	Version kong.VersionFlag `help:"Print version information and quit" short:"V"`

	Init cmd.Init `cmd:"" help:"Initialize configuration file"`
	Fmt  cmd.Fmt  `cmd:"" help:"Format resolved resources"`
	Repl cmd.Repl `cmd:"" help:"Interactive resolution shell"`

	Get cmd.Get `cmd:"" default:"withargs" help:"Resolve an entity from compiled sources"`
}

// parser builds the kong parser over cli with the standard options and
// configuration sources. Values load from <confPath>.json first, then from
// the config entity in <confPath> itself.
func (cli *CLI) parser(
	ctx context.Context,
	exit func(code int),
	confPath string,
) (*kong.Kong, error) {
	vars := kong.Vars{
		"version":            pkg.Banner(),
		cmd.ConfigIdentifier: confPath,
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	return kong.New(cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, confPath+".json"),
		kong.Configuration(resolve(ctx, baseConfig), confPath),
		vars,
	)
}

// Run executes the lent CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags take effect before parsing proper, wherever they appear
	// on the line. TextUnmarshaler on logFormat and logLevel covers the
	// valued flags; this scan also picks up booleans like --log-pretty.
	cli.Log.scan(args)

	parser, err := cli.parser(ctx, exit, configPath(baseConfig))
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSearchPath(ctx, cli.Path)

	// Restart the logger with everything parsing filled in, TimeLayout and
	// Caller included.
	defer cli.Log.start(ctx)()

	// No-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
