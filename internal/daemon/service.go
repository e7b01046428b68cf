// Package daemon provides the long-running forecast service and its HTTP API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/ledger"
	"github.com/theirongolddev/runway/internal/logger"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/recurrence"
	"github.com/theirongolddev/runway/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DBPath       string
	Schedule     model.ScheduleConfig
	Mode         recurrence.Mode
	Params       ledger.Params
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Now          func() time.Time // clock for "today"; time.Now when nil
}

// Snapshot is the forecast state for status and event payloads.
type Snapshot struct {
	At           time.Time     `json:"at"`
	Transactions int           `json:"transactions"`
	Summary      model.Summary `json:"summary"`
}

// Delta captures headline changes between polls.
type Delta struct {
	Balance      decimal.Decimal `json:"balance"`
	SafeToSpend  decimal.Decimal `json:"safe_to_spend"`
	FinalBalance decimal.Decimal `json:"final_balance"`
	Transactions int             `json:"transactions"`
	DayRolled    bool            `json:"day_rolled"`
}

func (d Delta) isZero() bool {
	return d.Balance.IsZero() &&
		d.SafeToSpend.IsZero() &&
		d.FinalBalance.IsZero() &&
		d.Transactions == 0 &&
		!d.DayRolled
}

// Event is emitted whenever the forecast changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	Mode            string    `json:"mode"`
	MonthsToProject int       `json:"months_to_project"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
	MemoHits        int       `json:"memo_hits"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg  Config
	log  zerolog.Logger
	memo *pipeline.Memo

	pollMu sync.Mutex // serializes ticker and cron polls

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	result      model.Result
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, log zerolog.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 60 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		cfg:       cfg,
		log:       log,
		memo:      pipeline.NewMemo(8),
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Router returns the HTTP API.
func (s *Service) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(Recovery(s.log), Logger(s.log))

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/forecast", s.handleForecast).Methods(http.MethodGet)
	api.HandleFunc("/forecast/{date}", s.handleDay).Methods(http.MethodGet)
	api.HandleFunc("/upcoming", s.handleUpcoming).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	api.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)
	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	return r
}

// Run starts HTTP endpoints, interval polling and the midnight rollover
// until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	// Recompute at local midnight so "today" rolls over without waiting
	// for the next tick.
	c := cron.New()
	if _, err := c.AddFunc("@midnight", func() { s.pollOnce(ctx) }); err != nil {
		return fmt.Errorf("scheduling midnight rollover: %w", err)
	}
	c.Start()
	defer c.Stop()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	now := s.cfg.Now()
	today := date.FromTime(now)

	res, n, err := s.project(ctx, today)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Error().Err(err).Msg("daemon poll failed")
		return
	}

	snap := Snapshot{
		At:           now,
		Transactions: n,
		Summary:      pipeline.Summarize(res, today, s.cfg.Schedule),
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.result = res
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
			Delta:     zeroDelta(),
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "forecast_delta",
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.log.Debug().Int64("event", ev.ID).Str("type", ev.Type).Msg("forecast changed")
		s.publishEvent(ev)
	}
}

// project loads the store and runs the forecast for today.
func (s *Service) project(ctx context.Context, today date.Date) (model.Result, int, error) {
	st, err := store.Open(s.cfg.DBPath)
	if err != nil {
		return model.Result{}, 0, err
	}
	defer func() { _ = st.Close() }()

	txns, err := st.LoadTransactions()
	if err != nil {
		return model.Result{}, 0, fmt.Errorf("loading transactions: %w", err)
	}
	balance, _, err := st.Balance()
	if err != nil {
		return model.Result{}, 0, err
	}

	in := forecast.Input{
		Transactions:    txns,
		StartingBalance: balance,
		Config:          s.cfg.Schedule,
		Today:           today,
		Mode:            s.cfg.Mode,
		Params:          s.cfg.Params,
	}
	res, err := pipeline.Forecast(logger.WithContext(ctx, s.log), in, s.memo)
	if err != nil {
		return model.Result{}, 0, err
	}
	return res, len(txns), nil
}

func zeroDelta() Delta {
	return Delta{Balance: decimal.Zero, SafeToSpend: decimal.Zero, FinalBalance: decimal.Zero}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Balance:      curr.Summary.Balance.Sub(prev.Summary.Balance),
		SafeToSpend:  curr.Summary.SafeToSpend.Sub(prev.Summary.SafeToSpend),
		FinalBalance: curr.Summary.FinalBalance.Sub(prev.Summary.FinalBalance),
		Transactions: curr.Transactions - prev.Transactions,
		DayRolled:    curr.Summary.Today != prev.Summary.Today,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Mode:            s.cfg.Mode.String(),
		MonthsToProject: s.cfg.Schedule.MonthsToProject,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
		MemoHits:        s.memo.Hits(),
	}
}

// current returns the latest result, or false before the first good poll.
func (s *Service) current() (model.Result, Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.snapshot, s.hasSnapshot
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleSummary(w http.ResponseWriter, _ *http.Request) {
	_, snap, ok := s.current()
	if !ok {
		WriteError(w, http.StatusServiceUnavailable, s.notReady())
		return
	}
	WriteJSON(w, http.StatusOK, snap.Summary)
}

func (s *Service) handleForecast(w http.ResponseWriter, r *http.Request) {
	res, snap, ok := s.current()
	if !ok {
		WriteError(w, http.StatusServiceUnavailable, s.notReady())
		return
	}

	q := r.URL.Query()
	from := snap.Summary.Today
	if v := q.Get("from"); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid from date: "+v)
			return
		}
		from = d
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "invalid limit: "+v)
			return
		}
		limit = n
	}
	history := q.Get("history") == "true"

	WriteJSON(w, http.StatusOK, model.Result{
		Periods:      pipeline.FilterDays(res, from, history, limit),
		FinalBalance: res.FinalBalance,
	})
}

func (s *Service) handleDay(w http.ResponseWriter, r *http.Request) {
	res, _, ok := s.current()
	if !ok {
		WriteError(w, http.StatusServiceUnavailable, s.notReady())
		return
	}
	raw := mux.Vars(r)["date"]
	d, err := date.Parse(raw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid date: "+raw)
		return
	}
	dp, found := res.Day(d)
	if !found {
		WriteError(w, http.StatusNotFound, "date outside forecast window: "+raw)
		return
	}
	WriteJSON(w, http.StatusOK, dp)
}

func (s *Service) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	res, snap, ok := s.current()
	if !ok {
		WriteError(w, http.StatusServiceUnavailable, s.notReady())
		return
	}
	n := 10
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			WriteError(w, http.StatusBadRequest, "invalid n: "+v)
			return
		}
		n = parsed
	}
	WriteJSON(w, http.StatusOK, pipeline.Upcoming(res, snap.Summary.Today, n))
}

func (s *Service) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.pollOnce(r.Context())
	WriteJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) notReady() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastError != "" {
		return "forecast unavailable: " + s.lastError
	}
	return "forecast not computed yet"
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	WriteJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: s.cfg.Now(),
		Snapshot:  s.snapshotStatus().Summary,
		Delta:     zeroDelta(),
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
