package notifier

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"DogCoinBot/internal/model"
	"DogCoinBot/internal/trading"
)

// Fiat is the display symbol for the fiat currency.
const Fiat = "⬢"

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// FormatWallet renders a user's balance and holdings.
func FormatWallet(name string, acct model.Account) string {
	return fmt.Sprintf("👛 <b>%s's Wallet</b>\n\nYou have <b>%s %s</b> and <b>%s DogCoin</b>.",
		name, acct.Balance.StringFixed(2), Fiat, acct.Holdings.StringFixed(2))
}

// FormatTradeResult renders a settled trade.
func FormatTradeResult(res *trading.Result) string {
	var b strings.Builder
	if res.Action == model.ActionBuy {
		b.WriteString("✅ <b>Purchase Successful</b>\n\n")
		b.WriteString(fmt.Sprintf("You bought <b>%s DogCoin</b> for <b>%s %s</b> at %s %s.\n",
			res.Quantity.StringFixed(2), res.TotalValue.StringFixed(2), Fiat,
			res.Price.StringFixed(2), Fiat))
	} else {
		b.WriteString("✅ <b>Sale Successful</b>\n\n")
		b.WriteString(fmt.Sprintf("You sold <b>%s DogCoin</b> for <b>%s %s</b> at %s %s.\n",
			res.Quantity.StringFixed(2), res.TotalValue.StringFixed(2), Fiat,
			res.Price.StringFixed(2), Fiat))
	}
	b.WriteString(fmt.Sprintf("New fiat balance: <b>%s %s</b>.", res.Account.Balance.StringFixed(2), Fiat))
	return b.String()
}

// FormatPriceHistory renders the price series as a text chart.
func FormatPriceHistory(samples []model.PriceSample, current decimal.Decimal) string {
	if len(samples) == 0 {
		return "No price history available for DogCoin."
	}

	vals := make([]float64, len(samples))
	lo, hi := samples[0].Price, samples[0].Price
	for i, s := range samples {
		vals[i], _ = s.Price.Float64()
		if s.Price.LessThan(lo) {
			lo = s.Price
		}
		if s.Price.GreaterThan(hi) {
			hi = s.Price
		}
	}

	var b strings.Builder
	b.WriteString("📈 <b>DogCoin Price History</b>\n\n")
	b.WriteString(fmt.Sprintf("<pre>%s</pre>\n", sparkline(vals)))
	b.WriteString(fmt.Sprintf("Current: <b>%s %s</b>\n", current.StringFixed(2), Fiat))
	b.WriteString(fmt.Sprintf("High: %s %s | Low: %s %s (last %d samples)\n",
		hi.StringFixed(2), Fiat, lo.StringFixed(2), Fiat, len(samples)))
	b.WriteString(fmt.Sprintf("Since: %s", samples[0].Timestamp.Format("2006-01-02 15:04:05")))
	return b.String()
}

// FormatWork renders a work payout receipt.
func FormatWork(earned int64, prefix string) string {
	return fmt.Sprintf("💼 <b>Work Completed</b>\n\nYou worked hard and earned <b>%d %s</b>!\nUse %sbalance to check your wallet.",
		earned, Fiat, prefix)
}

// FormatHelp lists the available commands.
func FormatHelp(prefix string) string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	b.WriteString(fmt.Sprintf("• %sbalance — show your wallet\n", prefix))
	b.WriteString(fmt.Sprintf("• %strade buy|sell &lt;amount|max|all&gt; — trade at the current price\n", prefix))
	b.WriteString(fmt.Sprintf("• %sprice — price history chart\n", prefix))
	b.WriteString(fmt.Sprintf("• %swork — earn some %s\n", prefix, Fiat))
	b.WriteString(fmt.Sprintf("• %sgive &lt;user id&gt; &lt;amount&gt; — give %s to another user\n", prefix, Fiat))
	b.WriteString(fmt.Sprintf("• %sping — round-trip latency\n", prefix))
	b.WriteString(fmt.Sprintf("• %scredits — about this bot", prefix))
	return b.String()
}

// sparkline maps values to an 8-level block-character strip.
func sparkline(vals []float64) string {
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	out := make([]rune, len(vals))
	if hi == lo {
		for i := range out {
			out[i] = sparkRunes[len(sparkRunes)/2]
		}
		return string(out)
	}
	for i, v := range vals {
		idx := int((v - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		out[i] = sparkRunes[idx]
	}
	return string(out)
}
