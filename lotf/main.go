// lotf is the command line interface to the lot-based portfolio ledger.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/lotfolio/lotfolio/cmd"
)

func main() {
	// Shell completion: this call exits the process when invoked by the
	// shell's completion machinery, and is a no-op otherwise.
	completion().Complete("lotf")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	windows := predict.Set{"1d", "1w", "1m", "3m", "ytd", "1y", "3y", "5y"}
	sub := map[string]*complete.Command{
		"summary":  {Flags: map[string]complete.Predictor{"d": predict.Nothing, "P": predict.Nothing}},
		"holding":  {Flags: map[string]complete.Predictor{"s": predict.Nothing, "P": predict.Nothing, "d": predict.Nothing}},
		"gains":    {Flags: map[string]complete.Predictor{"s": predict.Nothing, "d": predict.Nothing, "P": predict.Nothing}},
		"movers":   {Flags: map[string]complete.Predictor{"w": windows, "sort": predict.Set{"change", "percent"}, "top": predict.Nothing}},
		"perf":     {Flags: map[string]complete.Predictor{"s": predict.Nothing, "P": predict.Nothing}},
		"buy":      {Flags: map[string]complete.Predictor{"s": predict.Nothing, "q": predict.Nothing, "p": predict.Nothing}},
		"sell":     {Flags: map[string]complete.Predictor{"s": predict.Nothing, "q": predict.Nothing, "p": predict.Nothing}},
		"dividend": {Flags: map[string]complete.Predictor{"s": predict.Nothing, "a": predict.Nothing, "r": predict.Nothing}},
		"fee":      {Flags: map[string]complete.Predictor{"s": predict.Nothing, "a": predict.Nothing}},
		"transfer": {Flags: map[string]complete.Predictor{"s": predict.Nothing, "from": predict.Nothing, "to": predict.Nothing}},
		"tx":       {Flags: map[string]complete.Predictor{"head": predict.Nothing, "tail": predict.Nothing}},
		"fmt":      {},
		"fetch":    {Flags: map[string]complete.Predictor{"what": predict.Set{"rates", "cpi", "quotes", "all"}, "backfill": predict.Nothing}},
		"topic":    {Args: predict.Set{"readme", "dates", "windows", "tax", "transfers", "*"}},
		"assist":   {},
	}
	return &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"store":    predict.Dirs("*"),
			"currency": predict.Set{"ILS", "USD", "EUR"},
		},
	}
}
