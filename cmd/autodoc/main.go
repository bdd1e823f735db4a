package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/autodoc/cmd/autodoc/commands"
	aerrors "git.home.luguber.info/inful/autodoc/internal/errors"
	"git.home.luguber.info/inful/autodoc/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Logger: slog.Default()}

	parser := kong.Parse(cli,
		kong.Name("autodoc"),
		kong.Description("Generate versioned documentation sites for apps"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global, cli),
	)

	if err := parser.Run(); err != nil {
		aerrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
