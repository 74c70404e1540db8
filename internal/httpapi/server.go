package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/V-ini-t86/broker-platform/internal/auth"
	"github.com/V-ini-t86/broker-platform/internal/domain"
	"github.com/V-ini-t86/broker-platform/internal/feed"
	"github.com/V-ini-t86/broker-platform/internal/intent"
	"github.com/V-ini-t86/broker-platform/internal/orderpad"
	"github.com/V-ini-t86/broker-platform/internal/portfolio"
	"github.com/V-ini-t86/broker-platform/internal/session"
	"github.com/V-ini-t86/broker-platform/internal/store"
)

// DashboardServer serves the dashboard HTTP API.
type DashboardServer struct {
	sessions  *session.Store
	creds     auth.CredentialService
	intents   *intent.Store
	pad       *orderpad.Controller
	holdings  portfolio.HoldingsSource
	positions portfolio.PositionsSource
	orders    store.OrderStore
	ticks     store.TickStore
	feed      *feed.Feed
	brokers   []domain.BrokerInfo
	log       *slog.Logger
}

// NewDashboardServer creates a new dashboard HTTP server. orders, ticks, and
// f may be nil; their routes then answer 404 or empty results.
func NewDashboardServer(
	sessions *session.Store,
	creds auth.CredentialService,
	intents *intent.Store,
	pad *orderpad.Controller,
	holdings portfolio.HoldingsSource,
	positions portfolio.PositionsSource,
	orders store.OrderStore,
	ticks store.TickStore,
	f *feed.Feed,
	brokers []domain.BrokerInfo,
	log *slog.Logger,
) *DashboardServer {
	return &DashboardServer{
		sessions:  sessions,
		creds:     creds,
		intents:   intents,
		pad:       pad,
		holdings:  holdings,
		positions: positions,
		orders:    orders,
		ticks:     ticks,
		feed:      f,
		brokers:   brokers,
		log:       log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *DashboardServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/session", s.handleSession)
	mux.HandleFunc("GET /api/brokers", s.handleBrokers)

	mux.HandleFunc("GET /api/holdings", s.withSession(s.handleHoldings))
	mux.HandleFunc("GET /api/positions", s.withSession(s.handlePositions))
	mux.HandleFunc("GET /api/orders", s.withSession(s.handleOrders))
	mux.HandleFunc("GET /api/orderbook/{symbol}", s.withSession(s.handleOrderBook))
	mux.HandleFunc("GET /api/orderbook/{symbol}/history/{date}", s.withSession(s.handleTickHistory))

	mux.HandleFunc("GET /api/orderpad", s.withSession(s.handleOrderPad))
	mux.HandleFunc("POST /api/orderpad/open", s.withSession(s.handleOrderPadOpen))
	mux.HandleFunc("POST /api/orderpad/close", s.withSession(s.handleOrderPadClose))
	mux.HandleFunc("PUT /api/orderpad", s.withSession(s.handleOrderPadUpdate))
	mux.HandleFunc("POST /api/orderpad/submit", s.withSession(s.handleOrderPadSubmit))

	mux.HandleFunc("GET /api/stream", s.withSession(s.handleStream))
}

// Handler returns an http.Handler with CORS middleware.
func (s *DashboardServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withSession gates a handler behind an authenticated session.
func (s *DashboardServer) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.sessions.IsAuthenticated() {
			writeError(w, http.StatusUnauthorized, "not logged in")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeFieldError(w http.ResponseWriter, status int, field, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "field": field})
}

// ---------------------------------------------------------------------------
// Session handlers
// ---------------------------------------------------------------------------

func (s *DashboardServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeFieldError(w, http.StatusBadRequest, "email", "email required")
		return
	}

	creds := domain.Credentials{Email: req.Email, Password: req.Password}
	if err := s.creds.Validate(r.Context(), creds); err != nil {
		switch {
		case errors.Is(err, auth.ErrAuthenticationRejected):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, auth.ErrServiceUnavailable):
			writeError(w, http.StatusServiceUnavailable, "authentication service unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	sess, err := s.sessions.Login(req.Broker, creds)
	if err != nil {
		s.log.Error("creating session", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, SessionResponse{Authenticated: true, Session: sess})
}

func (s *DashboardServer) handleLogout(w http.ResponseWriter, _ *http.Request) {
	if err := s.sessions.Logout(); err != nil {
		s.log.Error("clearing session", "error", err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	writeJSON(w, SessionResponse{Authenticated: false})
}

func (s *DashboardServer) handleSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Current()
	writeJSON(w, SessionResponse{Authenticated: sess != nil, Session: sess})
}

func (s *DashboardServer) handleBrokers(w http.ResponseWriter, _ *http.Request) {
	brokers := s.brokers
	if brokers == nil {
		brokers = []domain.BrokerInfo{}
	}
	writeJSON(w, BrokersResponse{Brokers: brokers})
}

// ---------------------------------------------------------------------------
// Portfolio handlers
// ---------------------------------------------------------------------------

func (s *DashboardServer) handleHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.holdings.GetHoldings(r.Context())
	if err != nil {
		s.log.Error("fetching holdings", "error", err)
		writeError(w, http.StatusBadGateway, "holdings unavailable")
		return
	}
	sum := portfolio.SummarizeHoldings(holdings)
	writeJSON(w, HoldingsResponse{
		Holdings: holdings,
		Summary: HoldingsSummary{
			TotalValue:     sum.TotalValue,
			TotalPL:        sum.TotalPL,
			TotalPLPercent: sum.TotalPLPercent,
		},
	})
}

func (s *DashboardServer) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.positions.GetPositions(r.Context())
	if err != nil {
		s.log.Error("fetching positions", "error", err)
		writeError(w, http.StatusBadGateway, "positions unavailable")
		return
	}
	sum := portfolio.SummarizePositions(positions)
	writeJSON(w, PositionsResponse{
		Positions: positions,
		Summary: PositionsSummary{
			TotalValue:  sum.TotalValue,
			TotalPL:     sum.TotalPL,
			TotalMargin: sum.TotalMargin,
		},
	})
}

func (s *DashboardServer) handleOrders(w http.ResponseWriter, r *http.Request) {
	if s.orders == nil {
		writeJSON(w, OrdersResponse{Orders: []domain.Order{}})
		return
	}
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	orders, err := s.orders.ListOrders(r.Context(), status)
	if err != nil {
		s.log.Error("listing orders", "error", err)
		writeError(w, http.StatusInternalServerError, "listing orders failed")
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, OrdersResponse{Orders: orders})
}

// ---------------------------------------------------------------------------
// Order-book handlers
// ---------------------------------------------------------------------------

func (s *DashboardServer) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		writeError(w, http.StatusNotFound, "order-book feed not running")
		return
	}
	symbol := r.PathValue("symbol")
	snap, err := s.feed.Snapshot(symbol)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, snap)
}

func (s *DashboardServer) handleTickHistory(w http.ResponseWriter, r *http.Request) {
	if s.ticks == nil {
		writeError(w, http.StatusNotFound, "tick history not recorded")
		return
	}
	symbol := r.PathValue("symbol")
	date := r.PathValue("date")
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	ticks, err := s.ticks.ReadTicks(r.Context(), symbol, day, day.Add(24*time.Hour-time.Millisecond))
	if err != nil {
		s.log.Error("reading tick history", "symbol", symbol, "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, "reading tick history failed")
		return
	}
	if ticks == nil {
		ticks = []domain.TradeTick{}
	}
	writeJSON(w, TickHistoryResponse{Symbol: symbol, Date: date, Ticks: ticks})
}

// ---------------------------------------------------------------------------
// Order-pad handlers
// ---------------------------------------------------------------------------

func (s *DashboardServer) orderPadResponse() OrderPadResponse {
	state := s.intents.State()
	resp := OrderPadResponse{
		Open:    state.IsOpen,
		Loading: s.pad.Loading(),
	}
	if state.IsOpen {
		resp.Symbol = state.Symbol
		resp.Side = string(state.Side)
	}
	if draft, ok := s.pad.Draft(); ok {
		resp.Draft = &draft
		quote := s.pad.Quote()
		resp.Quote = &quote
		resp.EstimatedCost = s.pad.EstimatedCost()
	}
	return resp
}

func (s *DashboardServer) handleOrderPad(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.orderPadResponse())
}

func (s *DashboardServer) handleOrderPadOpen(w http.ResponseWriter, r *http.Request) {
	var req OpenOrderPadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Symbol == "" {
		writeFieldError(w, http.StatusBadRequest, "symbol", "symbol required")
		return
	}
	side, err := domain.ParseOrderSide(req.Side)
	if err != nil {
		writeFieldError(w, http.StatusBadRequest, "side", err.Error())
		return
	}

	s.intents.Open(req.Symbol, side)
	writeJSON(w, s.orderPadResponse())
}

func (s *DashboardServer) handleOrderPadClose(w http.ResponseWriter, _ *http.Request) {
	s.intents.Close()
	writeJSON(w, s.orderPadResponse())
}

func (s *DashboardServer) handleOrderPadUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderPadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.applyOrderPadUpdate(req); err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.Is(err, orderpad.ErrNoOpenOrderPad):
			writeError(w, http.StatusConflict, err.Error())
		case errors.As(err, &verr):
			writeFieldError(w, http.StatusUnprocessableEntity, verr.Field, verr.Message)
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, s.orderPadResponse())
}

func (s *DashboardServer) applyOrderPadUpdate(req UpdateOrderPadRequest) error {
	if req.OrderType != nil {
		typ, err := domain.ParseOrderType(*req.OrderType)
		if err != nil {
			return &domain.ValidationError{Field: "orderType", Message: err.Error()}
		}
		if err := s.pad.SetOrderType(typ); err != nil {
			return err
		}
	}
	if req.Side != nil {
		side, err := domain.ParseOrderSide(*req.Side)
		if err != nil {
			return &domain.ValidationError{Field: "side", Message: err.Error()}
		}
		if err := s.pad.SetSide(side); err != nil {
			return err
		}
	}
	if req.TimeInForce != nil {
		tif, err := domain.ParseTimeInForce(*req.TimeInForce)
		if err != nil {
			return &domain.ValidationError{Field: "timeInForce", Message: err.Error()}
		}
		if err := s.pad.SetTimeInForce(tif); err != nil {
			return err
		}
	}
	if req.Price != nil {
		if err := s.pad.SetPrice(*req.Price); err != nil {
			return err
		}
	}
	if req.Quantity != nil {
		if err := s.pad.SetQuantity(*req.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *DashboardServer) handleOrderPadSubmit(w http.ResponseWriter, r *http.Request) {
	placed, err := s.pad.Submit(r.Context())
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			writeFieldError(w, http.StatusUnprocessableEntity, verr.Field, verr.Message)
		case errors.Is(err, orderpad.ErrNoOpenOrderPad):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, orderpad.ErrQuotePending), errors.Is(err, orderpad.ErrSubmitPending):
			writeError(w, http.StatusConflict, err.Error())
		default:
			s.log.Error("submitting order", "error", err)
			writeError(w, http.StatusBadGateway, "order submission failed")
		}
		return
	}
	writeJSON(w, placed)
}
