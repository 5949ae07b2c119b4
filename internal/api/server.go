// Package api serves the read-only HTTP view of the economy. It never
// mutates the stores.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"DogCoinBot/internal/ledger"
	"DogCoinBot/internal/market"
	"DogCoinBot/internal/metrics"
	"DogCoinBot/internal/series"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type pricePoint struct {
	Timestamp int64  `json:"timestamp"`
	Price     string `json:"price"`
}

type accountResponse struct {
	UserID   int64  `json:"user_id"`
	Balance  string `json:"balance"`
	Holdings string `json:"holdings"`
}

type tradeResponse struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	Quantity   string `json:"quantity"`
	Price      string `json:"price"`
	TotalValue string `json:"total_value"`
	ExecutedAt int64  `json:"executed_at"`
}

// Server wires the router over the stores and the live quote.
type Server struct {
	R             *gin.Engine
	Ledger        ledger.Store
	Series        series.Store
	Quote         *market.Quote
	HistoryPoints int
}

// NewServer builds the gin router with logging and recovery middleware.
func NewServer(l ledger.Store, ps series.Store, q *market.Quote, m *metrics.Collector, historyPoints int) *Server {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()

	g.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[INFO] http %s %s -> %d (%v)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	})
	g.Use(gin.Recovery())

	s := &Server{
		R:             g,
		Ledger:        l,
		Series:        ps,
		Quote:         q,
		HistoryPoints: historyPoints,
	}

	g.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	g.GET("/metrics", gin.WrapH(m.Handler()))
	g.GET("/api/price", s.getPrice)
	g.GET("/api/history", s.getHistory)
	g.GET("/api/accounts/:id", s.getAccount)
	g.GET("/api/trades/:id", s.getTrades)

	return s
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.R.Run(addr)
}

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Code: "bad_request", Message: msg})
}

func (s *Server) internalError(c *gin.Context, where string, err error) {
	log.Printf("[ERROR] api %s: %v", where, err)
	c.JSON(http.StatusInternalServerError, apiError{Code: "internal_server_error", Message: "internal server error"})
}

func (s *Server) getPrice(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"price": s.Quote.Price().StringFixed(2)})
}

func (s *Server) getHistory(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), s.HistoryPoints, 1, 1000)
	samples, err := s.Series.History(limit)
	if err != nil {
		s.internalError(c, "history", err)
		return
	}
	out := make([]pricePoint, 0, len(samples))
	for _, smp := range samples {
		out = append(out, pricePoint{Timestamp: smp.Timestamp.Unix(), Price: smp.Price.StringFixed(2)})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.badRequest(c, "invalid user id")
		return
	}
	acct, err := s.Ledger.GetAccount(id)
	if err != nil {
		s.internalError(c, "account", err)
		return
	}
	c.JSON(http.StatusOK, accountResponse{
		UserID:   acct.UserID,
		Balance:  acct.Balance.StringFixed(2),
		Holdings: acct.Holdings.StringFixed(2),
	})
}

func (s *Server) getTrades(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.badRequest(c, "invalid user id")
		return
	}
	limit := parseLimit(c.Query("limit"), 20, 1, 100)
	trades, err := s.Ledger.RecentTrades(id, limit)
	if err != nil {
		s.internalError(c, "trades", err)
		return
	}
	out := make([]tradeResponse, 0, len(trades))
	for _, tr := range trades {
		out = append(out, tradeResponse{
			ID:         tr.ID,
			Action:     string(tr.Action),
			Quantity:   tr.Quantity.StringFixed(2),
			Price:      tr.Price.StringFixed(2),
			TotalValue: tr.TotalValue.StringFixed(2),
			ExecutedAt: tr.ExecutedAt.Unix(),
		})
	}
	c.JSON(http.StatusOK, out)
}

func parseLimit(v string, def, min, max int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min || n > max {
		return def
	}
	return n
}
