package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Tanaka97/portman/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "chat with an assistant that knows this portfolio" }
func (*assistCmd) Usage() string {
	return `pman assist [<question>]

  Starts an interactive session with an assistant backed by two experts:
  an analyst reading this portfolio directory and a researcher with web
  search. Credentials are read from the environment (GEMINI_API_KEY).
  Type 'bye' to leave.
`
}

func (*assistCmd) SetFlags(*flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	a := agent.New(os.Stdout, os.Stdin, agent.NewResearcher(), agent.NewAnalyst(*portfolioDir))

	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}
	if err := a.Run(ctx, client, prompts...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
