// Package commands dispatches prefixed chat commands to the economy.
package commands

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"DogCoinBot/internal/ledger"
	"DogCoinBot/internal/market"
	"DogCoinBot/internal/metrics"
	"DogCoinBot/internal/notifier"
	"DogCoinBot/internal/series"
	"DogCoinBot/internal/trading"
)

// Options configures the router.
type Options struct {
	Prefix        string // command prefix, e.g. "/"
	AdminID       int64  // privileged user id
	WorkMin       int    // inclusive lower bound of a work payout
	WorkMax       int    // inclusive upper bound of a work payout
	HistoryPoints int    // samples shown by the price command
	Rand          *rand.Rand
}

// Router handles one inbound message at a time per invocation; handlers for
// different messages may run concurrently, the stores provide the safety.
type Router struct {
	opts    Options
	ledger  ledger.Store
	series  series.Store
	quote   *market.Quote
	trader  *trading.Engine
	metrics *metrics.Collector

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRouter creates a command router.
func NewRouter(l ledger.Store, ps series.Store, q *market.Quote, tr *trading.Engine, m *metrics.Collector, opts Options) *Router {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Router{
		opts:    opts,
		ledger:  l,
		series:  ps,
		quote:   q,
		trader:  tr,
		metrics: m,
		rng:     rng,
	}
}

// Handle processes one message and returns the reply, or "" for non-commands.
func (r *Router) Handle(msg notifier.Message) string {
	if !strings.HasPrefix(msg.Text, r.opts.Prefix) {
		return ""
	}
	fields := strings.Fields(strings.TrimPrefix(msg.Text, r.opts.Prefix))
	if len(fields) == 0 {
		return ""
	}

	cmd := strings.ToLower(fields[0])
	// Group chats address commands as /cmd@BotName.
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	args := fields[1:]
	r.metrics.CommandHandled(cmd)

	switch cmd {
	case "balance", "bal", "wal":
		return r.handleBalance(msg)
	case "trade":
		return r.handleTrade(msg, args)
	case "price":
		return r.handlePrice()
	case "work":
		return r.handleWork(msg)
	case "give":
		return r.handleGive(msg, args)
	case "reset", "rbal", "rst":
		return r.handleReset(msg, args, "balance")
	case "resetholdings", "rhold", "rsthold":
		return r.handleReset(msg, args, "holdings")
	case "ping":
		latency := time.Since(msg.SentAt).Round(time.Millisecond)
		return fmt.Sprintf("🏓 <b>Pong!</b>\n\nLatency is <b>%v</b>.", latency)
	case "credits":
		return "🐶 <b>DogCoinBot</b>\n\nA simulated DogCoin economy. Work, trade, and watch the market move every minute."
	default:
		return notifier.FormatHelp(r.opts.Prefix)
	}
}

func (r *Router) handleBalance(msg notifier.Message) string {
	acct, err := r.ledger.GetAccount(msg.UserID)
	if err != nil {
		log.Printf("[ERROR] read account %d: %v", msg.UserID, err)
		return "❌ Could not read your wallet, try again later."
	}
	return notifier.FormatWallet(msg.Username, acct)
}

func (r *Router) handleTrade(msg notifier.Message, args []string) string {
	if len(args) != 2 {
		return fmt.Sprintf("Usage: %strade buy|sell &lt;amount|max|all&gt;", r.opts.Prefix)
	}
	res, err := r.trader.Execute(msg.UserID, args[0], args[1])
	if err != nil {
		r.metrics.TradeExecuted(tradeMetricLabel(args[0]), false)
		switch {
		case errors.Is(err, trading.ErrInvalidAction):
			return "❌ Invalid action. Use <b>buy</b> or <b>sell</b>."
		case errors.Is(err, trading.ErrInvalidAmount):
			return "❌ Invalid amount. Please specify a number, 'max', or 'all'."
		case errors.Is(err, trading.ErrInsufficientFunds):
			return "❌ Insufficient fiat balance to complete purchase."
		case errors.Is(err, trading.ErrInsufficientHoldings):
			return "❌ Insufficient DogCoin holdings to complete sale."
		default:
			log.Printf("[ERROR] trade for %d: %v", msg.UserID, err)
			return "❌ Trade failed, try again later."
		}
	}
	r.metrics.TradeExecuted(string(res.Action), true)
	return notifier.FormatTradeResult(res)
}

func (r *Router) handlePrice() string {
	samples, err := r.series.History(r.opts.HistoryPoints)
	if err != nil {
		log.Printf("[ERROR] read price history: %v", err)
		return "❌ Could not read price history, try again later."
	}
	return notifier.FormatPriceHistory(samples, r.quote.Price())
}

func (r *Router) handleWork(msg notifier.Message) string {
	r.mu.Lock()
	earned := int64(r.rng.Intn(r.opts.WorkMax-r.opts.WorkMin+1) + r.opts.WorkMin)
	r.mu.Unlock()

	if _, err := r.ledger.AdjustBalance(msg.UserID, decimal.NewFromInt(earned)); err != nil {
		log.Printf("[ERROR] credit work payout for %d: %v", msg.UserID, err)
		return "❌ Payout failed, try again later."
	}
	r.metrics.WorkPayout()
	return notifier.FormatWork(earned, r.opts.Prefix)
}

func (r *Router) handleGive(msg notifier.Message, args []string) string {
	if len(args) != 2 {
		return fmt.Sprintf("Usage: %sgive &lt;user id&gt; &lt;amount&gt;", r.opts.Prefix)
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return "❌ Invalid user id."
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return "❌ Invalid amount."
	}
	if amount <= 0 {
		return fmt.Sprintf("❌ You cannot give negative or zero amounts of %s.", notifier.Fiat)
	}

	// The privileged user mints funds with no balance check.
	if msg.UserID == r.opts.AdminID {
		if _, err := r.ledger.AdjustBalance(target, decimal.NewFromInt(amount)); err != nil {
			log.Printf("[ERROR] mint %d to %d: %v", amount, target, err)
			return "❌ Transfer failed, try again later."
		}
		r.metrics.TransferDone()
		return fmt.Sprintf("🎁 The developer has granted <b>%d %s</b> to user %d.", amount, notifier.Fiat, target)
	}

	err = r.ledger.Transfer(msg.UserID, target, decimal.NewFromInt(amount))
	if errors.Is(err, ledger.ErrInsufficientBalance) {
		return fmt.Sprintf("❌ You don't have enough %s to give that amount.", notifier.Fiat)
	}
	if err != nil {
		log.Printf("[ERROR] transfer %d from %d to %d: %v", amount, msg.UserID, target, err)
		return "❌ Transfer failed, try again later."
	}
	r.metrics.TransferDone()
	return fmt.Sprintf("💸 You gave <b>%d %s</b> to user %d!", amount, notifier.Fiat, target)
}

// tradeMetricLabel keeps the trades metric label set bounded: the parsed
// action, or "invalid" for anything user-supplied that does not parse.
func tradeMetricLabel(arg string) string {
	action, err := trading.ParseAction(arg)
	if err != nil {
		return "invalid"
	}
	return string(action)
}

func (r *Router) handleReset(msg notifier.Message, args []string, field string) string {
	if msg.UserID != r.opts.AdminID {
		return "❌ You are not allowed to do that."
	}
	if len(args) != 1 {
		return fmt.Sprintf("Usage: %sreset &lt;user id&gt;", r.opts.Prefix)
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return "❌ Invalid user id."
	}

	if field == "balance" {
		err = r.ledger.ResetBalance(target)
	} else {
		err = r.ledger.ResetHoldings(target)
	}
	if err != nil {
		log.Printf("[ERROR] reset %s for %d: %v", field, target, err)
		return "❌ Reset failed, try again later."
	}
	return fmt.Sprintf("🧹 Reset %s of user %d to zero.", field, target)
}
