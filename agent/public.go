package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/lotfolio/lotfolio"
	"github.com/lotfolio/lotfolio/renderer"
)

const model = "gemini-2.5-pro"

// newFacilitator creates the expert in charge of the conversation.
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skills from the Tools and ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is here primarily to understand his holdings, their cost basis,
			and the tax consequences of selling. Check the portfolio reports first to
			understand what he holds before answering.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAnalyst creates an expert grounded in Google Search, for market news and
// general financial questions.
func NewAnalyst() *Expert {
	return &Expert{
		Name: "Analyst",
		Description: `This is a market analyst,
		well aware of financial products and institutions and of
		the latest news about funds and companies.
		Ask the Analyst whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert market analyst. You can search and find anything related to
			financial institutions, companies, markets and funds. You leverage Google Search
			to ground your assertions, and you know how to relate the latest news to the
			user's request.
				`}}},
		},
	}
}

// NewAccountant creates the expert in charge of the user's lot ledger. Its
// tools read the data directory and answer with the same markdown reports
// the CLI prints.
func NewAccountant(store *lotfolio.Store, currency string) *Expert {
	lib := []Function{
		summaryTool(store, currency),
		gainsTool(store, currency),
	}
	return &Expert{
		Name: "Accountant",
		Description: `This is the Accountant. He is in charge of reading the user's lot ledger.
		He can report the current holdings with their cost basis and weights, and the
		realized gains with their taxes.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an accountant in charge of the user's portfolio ledger.
				Use the available tools to get information about the user's holdings:
				  - the global snapshot with market values, cost basis and weights
				  - the realized gains with their taxable amounts and taxes
				Pardon the other experts' approximate language and figure out what they meant.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// loadEngine rebuilds the holdings from the data directory as of a date.
func loadEngine(store *lotfolio.Store, now lotfolio.Date) (*lotfolio.Engine, error) {
	portfolios, err := store.Portfolios()
	if err != nil {
		return nil, fmt.Errorf("could not load portfolios: %w", err)
	}
	rates, err := store.Rates(now)
	if err != nil {
		return nil, fmt.Errorf("could not load rates: %w", err)
	}
	cpi, err := store.CPI()
	if err != nil {
		return nil, fmt.Errorf("could not load CPI series: %w", err)
	}
	txs, err := store.Transactions()
	if err != nil {
		return nil, fmt.Errorf("could not load transactions: %w", err)
	}
	divs, err := store.Dividends()
	if err != nil {
		return nil, fmt.Errorf("could not load dividends: %w", err)
	}
	histories, err := store.Histories()
	if err != nil {
		return nil, fmt.Errorf("could not load price histories: %w", err)
	}

	eng := lotfolio.NewEngine(portfolios, rates, cpi)
	eng.SetNow(now)
	if err := eng.Rebuild(txs, divs); err != nil {
		return nil, err
	}
	eng.GenerateManagementFees(histories)

	currencies := make(map[lotfolio.QuoteKey]string)
	for _, h := range eng.Holdings() {
		currencies[lotfolio.QuoteKey{Ticker: h.Key.Ticker, Exchange: h.Key.Exchange}] = h.Currency
	}
	eng.Hydrate(lotfolio.QuotesFromHistories(histories, currencies, now))
	return eng, nil
}

func errResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{"error": err.Error()},
	}
}

func summaryTool(store *lotfolio.Store, currency string) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Summary",
			Description: `Summary reports the global portfolio snapshot on a given day:
			every holding with its market value, unrealized gain and weight, plus the
			portfolio-wide totals including the estimated value after tax.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date": {
						Type:        genai.TypeString,
						Description: "The date of the snapshot, YYYY-MM-DD. Today is the default.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted portfolio summary.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			on, err := parseDate(args)
			if err != nil {
				return errResponse(id, "Summary", err)
			}
			eng, err := loadEngine(store, on)
			if err != nil {
				return errResponse(id, "Summary", err)
			}
			report := renderer.RenderSummary(renderer.NewSummary(eng.GlobalSummary(currency, nil)))
			return &genai.FunctionResponse{
				ID:       id,
				Name:     "Summary",
				Response: map[string]any{"output": report},
			}
		},
	}
}

func gainsTool(store *lotfolio.Store, currency string) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Gains",
			Description: `Gains reports the realized gains: every closed lot with its
			cost basis, proceeds, realized gain, taxable gain and tax paid.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date": {
						Type:        genai.TypeString,
						Description: "The end of the reporting period, YYYY-MM-DD. Today is the default.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted realized gains report.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			on, err := parseDate(args)
			if err != nil {
				return errResponse(id, "Gains", err)
			}
			eng, err := loadEngine(store, on)
			if err != nil {
				return errResponse(id, "Gains", err)
			}
			g := renderer.NewGains(eng.Holdings(), currency, eng.Rates(), lotfolio.Date{}, on)
			return &genai.FunctionResponse{
				ID:       id,
				Name:     "Gains",
				Response: map[string]any{"output": renderer.RenderGains(g)},
			}
		},
	}
}

func parseDate(args map[string]any) (lotfolio.Date, error) {
	idate, hasDate := args["date"]
	if !hasDate {
		return lotfolio.Today(), nil
	}
	sdate, ok := idate.(string)
	if !ok {
		return lotfolio.Today(), fmt.Errorf("argument 'date' is not a string as expected but %T", idate)
	}
	date, err := lotfolio.ParseDate(sdate)
	if err != nil {
		return lotfolio.Today(), fmt.Errorf("argument 'date' must be a valid YYYY-MM-DD date, got %q", sdate)
	}
	return date, nil
}
