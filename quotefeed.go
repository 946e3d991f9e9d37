package portman

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/PaesslerAG/jsonpath"

	"github.com/Tanaka97/portman/date"
)

const feedKeyEnv = "PORTMAN_FEED_KEY"

var feedKeyFlag = flag.String("feed-api-key", "", "API key for the quote feed.\n If missing it is read from the environment variable "+feedKeyEnv+".")

func feedKey() string {
	if *feedKeyFlag == "" {
		*feedKeyFlag = os.Getenv(feedKeyEnv)
	}
	return *feedKeyFlag
}

// QuoteFeed is a PriceOracle backed by an EODHD-style HTTP quote service:
// end-of-day series per ticker, currency pairs as CURCUR.FOREX tickers, and
// a quirkier intraday chart endpoint for today's quote before any close
// exists. Responses are cached on disk for the day, so replaying a
// valuation does not hammer the feed.
type QuoteFeed struct {
	reg    *Registry
	base   string
	key    string
	client *http.Client
}

// NewQuoteFeed returns a feed rooted at baseURL. The registry attributes a
// currency to each quoted instrument; an empty apiKey falls back to the
// -feed-api-key flag and then the environment.
func NewQuoteFeed(reg *Registry, baseURL, apiKey string) *QuoteFeed {
	if apiKey == "" {
		apiKey = feedKey()
	}
	return &QuoteFeed{reg: reg, base: baseURL, key: apiKey, client: daily()}
}

type jeod struct {
	Date  date.Date `json:"date"`
	Close float64   `json:"adjusted_close"`
}

func (f *QuoteFeed) eod(ctx context.Context, ticker string, rng date.Range) ([]jeod, error) {
	addr := fmt.Sprintf("%s/api/eod/%s?fmt=json&api_token=%s&from=%s&to=%s",
		f.base, ticker, f.key, rng.From, rng.To)
	content := make([]jeod, 0)
	if err := jget(ctx, f.client, addr, &content); err != nil {
		return nil, err
	}
	return content, nil
}

// lookbackDays bounds how far back an as-of lookup searches for the last
// close. Anything longer gaps for a reason (delisting) and should surface
// as absent, not as a year-old quote.
const lookbackDays = 40

// Price implements PriceOracle over the feed's end-of-day series, falling
// back to the intraday endpoint when asked about today before the close.
func (f *QuoteFeed) Price(ctx context.Context, id ID, on date.Date) (Money, error) {
	inst, err := f.reg.Resolve(id)
	if err != nil {
		return Money{}, err
	}
	v, err := f.asOf(ctx, string(id), on)
	if err != nil {
		return Money{}, fmt.Errorf("price %s: %w", id, err)
	}
	return M(v, inst.Currency()), nil
}

// Rate implements PriceOracle using the feed's forex tickers.
func (f *QuoteFeed) Rate(ctx context.Context, from, to string, on date.Date) (Quantity, error) {
	v, err := f.asOf(ctx, string(Pair(from, to))+".FOREX", on)
	if err != nil {
		return Quantity{}, fmt.Errorf("rate %s/%s: %w", from, to, err)
	}
	return Q(v), nil
}

func (f *QuoteFeed) asOf(ctx context.Context, ticker string, on date.Date) (float64, error) {
	series, err := f.eod(ctx, ticker, date.Range{From: on.Add(-lookbackDays), To: on})
	if err != nil {
		return 0, err
	}
	found := false
	var best float64
	for _, e := range series {
		if !e.Date.After(on) {
			best, found = e.Close, true
		}
	}
	if found {
		return best, nil
	}
	if on == date.Today() {
		return f.latest(ctx, ticker)
	}
	return 0, fmt.Errorf("%s on %s: %w", ticker, on, ErrAbsent)
}

// latest grabs today's last trade from the intraday chart endpoint, whose
// response buries the value in nested series data; jsonpath digs it out.
func (f *QuoteFeed) latest(ctx context.Context, ticker string) (float64, error) {
	addr := fmt.Sprintf("%s/api/intraday/%s?fmt=json&api_token=%s", f.base, ticker, f.key)
	var jobj any
	if err := jget(ctx, f.client, addr, &jobj); err != nil {
		return 0, err
	}
	path := "$.series.intraday.data[-1:][1]"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("%s: intraday %q: %w", ticker, path, err)
	}
	// jsonpath is never clear on whether it returns one answer or a list of
	// one; keep the first either way.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("%s: intraday %q is %v, not a number: %w", ticker, path, jval, ErrAbsent)
	}
	if val == 0 {
		return 0, fmt.Errorf("%s: empty intraday quote: %w", ticker, ErrAbsent)
	}
	return val, nil
}

// History fetches the feed's whole end-of-day series for an instrument or
// pair over a range, for refreshing a local price table in one pass.
func (f *QuoteFeed) History(ctx context.Context, id ID, rng date.Range) (date.History[float64], error) {
	ticker := string(id)
	if id.IsPair() {
		ticker += ".FOREX"
	} else if _, err := f.reg.Resolve(id); err != nil {
		return date.History[float64]{}, err
	}
	series, err := f.eod(ctx, ticker, rng)
	if err != nil {
		return date.History[float64]{}, fmt.Errorf("history %s: %w", id, err)
	}
	var h date.History[float64]
	for _, e := range series {
		if rng.Contains(e.Date) {
			h.Append(e.Date, e.Close)
		}
	}
	return h, nil
}

var _ PriceOracle = (*QuoteFeed)(nil)
