package cli

import (
	"context"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ardnew/vela/cli/cmd"
	"github.com/ardnew/vela/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

// CLI is the top-level command line of vela.
type CLI struct {
	Log    logConfig    `embed:"" group:"log"    prefix:"log-"`
	Pprof  pprofConfig  `embed:"" group:"pprof"  prefix:"pprof-"`
	Engine engineConfig `embed:"" group:"engine"`

	Source  []string         `help:"Program file(s) evaluated before the command runs, or '-' for stdin." name:"source" short:"s" type:"existingfile"`
	Version kong.VersionFlag `help:"Print version and exit."                                               short:"v"`

	Run   cmd.Run   `cmd:"" default:"withargs" help:"Evaluate a program and print its final value."`
	Eval  cmd.Eval  `cmd:""                    help:"Evaluate a single expression."`
	AST   cmd.AST   `cmd:""                    help:"Print the parse tree of a program."              name:"ast"`
	Funcs cmd.Funcs `cmd:""                    help:"List function signatures."`
	Check cmd.Check `cmd:""                    help:"Require exactly one function with a signature."`
	Repl  cmd.Repl  `cmd:""                    help:"Start an interactive console."`
	Init  cmd.Init  `cmd:""                    help:"Write the configuration file from current flags."`
}

// Run parses args, builds an interpreter from the parsed flags, loads the
// --source programs and executes the selected command. The exit function is
// called by kong for --help, --version and usage errors.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configFile := filepath.Join(pkg.ConfigDir(), baseConfig+".yaml")

	vars := kong.Vars{
		"version":            pkg.Name + " " + pkg.Version(),
		cmd.ConfigIdentifier: configFile,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cli.Engine.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Apply logger flags before kong reports any parse error.
	cli.Log.scan(args)

	groups := []kong.Group{cli.Log.group(), cli.Engine.group()}
	if g := cli.Pprof.group(); g.Key != "" {
		groups = append(groups, g)
	}

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(groups),
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
		kong.Configuration(kong.JSON, filepath.Join(pkg.ConfigDir(), baseConfig+".json")),
		kong.Configuration(resolveYAML, configFile),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)

	// No-op unless built with the pprof tag and a mode is selected.
	defer cli.Pprof.start(ctx)()

	reg := prometheus.NewRegistry()

	in := cli.Engine.interpreter(reg)
	defer cli.Engine.report(ctx, reg)

	if err := cmd.LoadSources(ctx, in, cli.Source); err != nil {
		return err
	}

	return ktx.Run(in)
}
