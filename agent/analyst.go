package agent

import (
	"context"
	"fmt"

	"github.com/Tanaka97/portman"
	"github.com/Tanaka97/portman/date"
	"github.com/Tanaka97/portman/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// newFacilitator builds the expert in charge of the conversation. Its only
// tools are the other experts.
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You facilitate the conversation and own the user's request.

			The experts available as tools are fully dedicated to you and keep
			the context of your previous questions. Learn their skills from
			their descriptions, plan the questions each one needs, and compose
			their answers into one response.

			The user is here for facts about their own portfolio. Ask the
			Analyst first to learn what they hold before reasoning about any
			ticker.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewResearcher returns a search-grounded expert for market context: news,
// companies, funds, institutions.
func NewResearcher() *Expert {
	return &Expert{
		Name: "Researcher",
		Description: `An expert on markets and financial institutions, with
		access to web search. Ask the Researcher whenever recent news or any
		grounding fact outside the portfolio itself is needed.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a market researcher. Use Google Search to ground every
			assertion about companies, funds, markets and news, and relate
			what you find to the question you were asked.
		`}}},
		},
	}
}

// NewAnalyst returns the expert that reads the user's portfolio directory.
// Every tool recomputes its report from the files on demand.
func NewAnalyst(dir string) *Expert {
	lib := analystTools(dir)
	return &Expert{
		Name: "Analyst",
		Description: `The portfolio analyst. Reads the user's own ledger and
		prices to report holdings, capital gains, allocation and risk, open
		lots, and rebalancing suggestions. Ask the Analyst anything about
		what the user holds and what it is worth.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are the analyst of the user's portfolio. Use the tools to
			compute reports from the actual files; never guess a figure. The
			tools return markdown, quote the relevant lines in your answers.
			When a tool reports a missing price or rate, say so plainly; the
			engine never substitutes a default.
		`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func adapts a declaration and a closure into a Function.
type Func struct {
	Decl *genai.FunctionDeclaration
	Exec func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Exec(ctx, id, args)
}

var dateParam = &genai.Schema{
	Type:        genai.TypeString,
	Description: "Valuation date, YYYY-MM-DD. Defaults to today.",
}

var currencyParam = &genai.Schema{
	Type:        genai.TypeString,
	Description: "Base currency of the report, a 3-letter code. Defaults to EUR.",
}

func analystTools(dir string) []Function {
	mdResponse := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}

	holdings := &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Holdings",
			Description: `Values every position and cash balance on a date, in a base
			currency: quantity, price, value, unrealized gain and weight per security.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date":     dateParam,
					"currency": currencyParam,
				},
			},
			Response: mdResponse("A markdown holdings report with totals."),
		},
		Exec: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return respond(id, "Holdings", func() (string, error) {
				on, base, err := reportArgs(args)
				if err != nil {
					return "", err
				}
				_, snap, err := value(ctx, dir, base, on, portman.Config{})
				if err != nil {
					return "", err
				}
				return renderer.HoldingMarkdown(snap), nil
			})
		},
	}

	gains := &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Gains",
			Description: `Reports realized and unrealized capital gains per position,
			converted to the base currency. FIFO lot matching.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date":     dateParam,
					"currency": currencyParam,
				},
			},
			Response: mdResponse("A markdown capital gains report with totals."),
		},
		Exec: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return respond(id, "Gains", func() (string, error) {
				on, base, err := reportArgs(args)
				if err != nil {
					return "", err
				}
				book, snap, err := value(ctx, dir, base, on, portman.Config{})
				if err != nil {
					return "", err
				}
				g, err := portman.NewGains(book, snap)
				if err != nil {
					return "", err
				}
				return renderer.GainsMarkdown(g, portman.FIFO), nil
			})
		},
	}

	risk := &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Risk",
			Description: `Reports allocation weights per bucket and asset class,
			concentration (largest bucket, Herfindahl index) and, when the snapshot
			history allows, volatility and highly correlated pairs.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date":     dateParam,
					"currency": currencyParam,
				},
			},
			Response: mdResponse("A markdown risk and allocation report."),
		},
		Exec: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return respond(id, "Risk", func() (string, error) {
				on, base, err := reportArgs(args)
				if err != nil {
					return "", err
				}
				_, snap, err := value(ctx, dir, base, on, portman.Config{})
				if err != nil {
					return "", err
				}
				series, err := portman.LoadHistory(dir)
				if err != nil {
					return "", err
				}
				report, err := portman.Analyze(snap, series)
				if err != nil {
					return "", err
				}
				return renderer.RiskMarkdown(report, date.Weekly), nil
			})
		},
	}

	lots := &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Lots",
			Description: `Lists the open lots of every position with their references,
			acquisition dates and cost basis. FIFO lot matching.`,
			Parameters: &genai.Schema{Type: genai.TypeObject},
			Response:   mdResponse("A markdown list of open lots per position."),
		},
		Exec: func(ctx context.Context, id string, _ map[string]any) *genai.FunctionResponse {
			return respond(id, "Lots", func() (string, error) {
				reg, err := portman.LoadRegistry(dir)
				if err != nil {
					return "", err
				}
				ledger, err := portman.LoadLedger(dir)
				if err != nil {
					return "", err
				}
				book, err := portman.ApplyLedger(reg, ledger, portman.Config{})
				if err != nil {
					return "", err
				}
				return renderer.LotsMarkdown(book), nil
			})
		},
	}

	rebalance := &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Rebalance",
			Description: `Compares the portfolio to the user's rebalancing policy and
			proposes balanced buy and sell amounts per drifted bucket. Fails when no
			policy file exists.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date":     dateParam,
					"currency": currencyParam,
				},
			},
			Response: mdResponse("A markdown rebalancing proposal."),
		},
		Exec: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return respond(id, "Rebalance", func() (string, error) {
				on, base, err := reportArgs(args)
				if err != nil {
					return "", err
				}
				policy, err := portman.LoadPolicy(dir)
				if err != nil {
					return "", err
				}
				_, snap, err := value(ctx, dir, base, on, portman.Config{})
				if err != nil {
					return "", err
				}
				suggestions, err := portman.Propose(snap, policy.Target, policy.Tolerance)
				if err != nil {
					return "", err
				}
				return renderer.RebalanceMarkdown(policy, snap, suggestions), nil
			})
		},
	}

	return []Function{holdings, gains, risk, lots, rebalance}
}

// respond wraps a report computation into a function response, with the
// error (if any) under "error" where the model can read it.
func respond(id, name string, compute func() (string, error)) *genai.FunctionResponse {
	fresp := &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{},
	}
	output, err := compute()
	if err != nil {
		fresp.Response["error"] = err.Error()
		return fresp
	}
	fresp.Response["output"] = output
	return fresp
}

// reportArgs extracts the common date and currency arguments.
func reportArgs(args map[string]any) (date.Date, string, error) {
	on := date.Today()
	if v, ok := args["date"]; ok {
		s, ok := v.(string)
		if !ok {
			return on, "", fmt.Errorf("argument 'date' is %T, expected a string", v)
		}
		var err error
		if on, err = date.Parse(s); err != nil {
			return on, "", err
		}
	}
	base := "EUR"
	if v, ok := args["currency"]; ok {
		s, ok := v.(string)
		if !ok {
			return on, "", fmt.Errorf("argument 'currency' is %T, expected a string", v)
		}
		base = s
	}
	return on, base, nil
}

// value loads the portfolio from dir and prices it.
func value(ctx context.Context, dir, base string, on date.Date, cfg portman.Config) (*portman.Book, *portman.Snapshot, error) {
	reg, err := portman.LoadRegistry(dir)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := portman.LoadLedger(dir)
	if err != nil {
		return nil, nil, err
	}
	book, err := portman.ApplyLedger(reg, ledger, cfg)
	if err != nil {
		return nil, nil, err
	}
	table, err := portman.LoadPrices(dir, reg)
	if err != nil {
		return nil, nil, err
	}
	snap, err := portman.Valuate(ctx, book, table, base, on)
	if err != nil {
		return nil, nil, err
	}
	return book, snap, nil
}
