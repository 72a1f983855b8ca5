package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"google.golang.org/genai"

	"github.com/lotfolio/lotfolio/agent"
)

// AssistCmd is the subcommand for the AI assistant.
type AssistCmd struct{}

func (*AssistCmd) Name() string     { return "assist" }
func (*AssistCmd) Synopsis() string { return "start an interactive session with the AI assistant" }
func (*AssistCmd) Usage() string {
	return `lotf assist [question]

  Start an interactive session with the AI assistant. It answers questions
  about the portfolio by reading the same reports the other commands print.
  Requires GEMINI_API_KEY in the environment.
`
}

func (*AssistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *AssistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	accountant := agent.NewAccountant(Store(), *displayCurrency)
	analyst := agent.NewAnalyst()
	a := agent.New(os.Stdout, os.Stdin, accountant, analyst)

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
