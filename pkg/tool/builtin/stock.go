package builtin

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/baoman007/ai-weather-agent/pkg/tool"
)

// StockArgs is the argument shape of get_stock.
type StockArgs struct {
	Symbol string `json:"symbol" jsonschema:"required,description=Stock symbol such as 000001 or 600036 or BABA or AAPL"`
}

// Quote is the tool's result shape. Prices are formatted strings because the
// model consumes them as display text.
type Quote struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	Change        string `json:"change"`
	ChangePercent string `json:"changePercent"`
	Volume        string `json:"volume"`
	High          string `json:"high"`
	Low           string `json:"low"`
	Open          string `json:"open"`
	MarketCap     string `json:"marketCap"`
	UpdateTime    string `json:"updateTime"`
	Trend         string `json:"trend"`
}

// known symbols and their baseline prices for the mock generator
var mockStocks = map[string]struct {
	name  string
	price float64
}{
	"000001": {"Ping An Bank", 12.50},
	"000002": {"Vanke", 18.30},
	"600036": {"China Merchants Bank", 32.50},
	"600519": {"Kweichow Moutai", 1680.00},
	"600887": {"Yili Group", 28.90},
	"BABA":   {"Alibaba", 85.20},
	"AAPL":   {"Apple", 178.50},
	"TSLA":   {"Tesla", 245.80},
	"MSFT":   {"Microsoft", 378.90},
	"GOOGL":  {"Alphabet", 141.50},
}

type stockBackend struct {
	now func() time.Time
}

// NewStock builds the get_stock tool. Quotes are generated, not live; the
// symbol table mirrors the markets the assistant talks about most.
func NewStock() tool.Tool {
	b := &stockBackend{now: time.Now}
	return tool.NewTyped("get_stock",
		"Get a stock quote: price, change, volume and trend. Supports A-shares, HK and US symbols.",
		b.run)
}

func (b *stockBackend) run(ctx context.Context, args StockArgs) (any, error) {
	symbol := strings.ToUpper(strings.TrimSpace(args.Symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol must not be blank")
	}

	base, ok := mockStocks[symbol]
	if !ok {
		base.name = symbol
		base.price = 100 + rand.Float64()*50
	}

	change := rand.Float64()*10 - 5
	volume := rand.Int63n(100_000_000) + 10_000_000
	trend := "up"
	if change < 0 {
		trend = "down"
	}

	return Quote{
		Symbol:        symbol,
		Name:          base.name,
		Price:         fmt.Sprintf("%.2f", base.price),
		Change:        fmt.Sprintf("%.2f", change),
		ChangePercent: fmt.Sprintf("%.2f", change/base.price*100),
		Volume:        fmt.Sprintf("%d", volume),
		High:          fmt.Sprintf("%.2f", base.price+rand.Float64()*5),
		Low:           fmt.Sprintf("%.2f", base.price-rand.Float64()*5),
		Open:          fmt.Sprintf("%.2f", base.price+rand.Float64()*2-1),
		MarketCap:     fmt.Sprintf("%.2fB", float64(volume)*base.price/1e9),
		UpdateTime:    b.now().Format("2006-01-02 15:04:05"),
		Trend:         trend,
	}, nil
}
