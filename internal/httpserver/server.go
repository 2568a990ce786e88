// internal/httpserver/server.go
//
// HTTP server wiring for the DigitMind backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Game endpoints (optional auth): POST /game/new, /game/guess, /game/feedback,
//     /game/giveup, GET /game/{id}.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine (auth.go).
//   - Database persistence for game history and user stats.
//
// Notes:
//   - Live sessions (including solver state) are held in the store; sqlite only
//     records owner rows, counters and outcomes, best effort.
//   - Handlers touch a session only inside store.Update, so each session sees
//     one request at a time. Only the caller that started a session may use it.
//   - Finished and idle sessions are evicted by a janitor (see sweep).
//   - A contradiction in solve mode is a session outcome, reported with 200.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/digitmind/internal/config"
	"github.com/robalobadob/digitmind/internal/daily"
	"github.com/robalobadob/digitmind/internal/digits"
	"github.com/robalobadob/digitmind/internal/game"
	"github.com/robalobadob/digitmind/internal/solver"
	"github.com/robalobadob/digitmind/internal/store"
)

// Server bundles router, in-memory session store, DB handle and metrics.
type Server struct {
	r        *chi.Mux
	store    store.Store
	db       *sql.DB
	cfg      *config.Config
	reg      *prometheus.Registry
	metrics  *metrics
	validate *validator.Validate
	daily    *dailyServer

	// newPicker supplies the random source for each new session.
	newPicker func() *digits.Picker
	now       func() time.Time
}

// Option customises a Server.
type Option func(*Server)

// WithPicker replaces the per-session random source (tests, replays).
func WithPicker(f func() *digits.Picker) Option {
	return func(s *Server) { s.newPicker = f }
}

// WithClock replaces the clock used to pick the daily challenge date.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		r:         chi.NewRouter(),
		store:     st,
		db:        db,
		cfg:       cfg,
		reg:       prometheus.NewRegistry(),
		validate:  validator.New(),
		newPicker: digits.NewPicker,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.metrics = newMetrics(s.reg, st)

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                       // one log line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"digitmind","endpoints":["/health","/metrics","POST /game/new","POST /game/guess","POST /game/feedback","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))

	// Game endpoints: optional auth (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/guess", s.handleGuess)
		r.Post("/game/feedback", s.handleFeedback)
		r.Post("/game/giveup", s.handleGiveUp)
		r.Get("/game/{id}", s.handleGetGame)
	})

	// Daily Challenge: optional auth (guests can play; result persisted on win)
	s.mountDaily(s.r.With(s.withOptionalAuth()))

	// Auth + profile/stats (require auth)
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	done := make(chan struct{})
	defer close(done)
	go s.janitor(done, time.Minute)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog logs method, path, status, bytes and duration.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("dur", time.Since(start)).
			Str("reqId", chimw.GetReqID(r.Context())).
			Msg("http")
	})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": code} plus an optional human-readable message.
func writeError(w http.ResponseWriter, status int, code string, err error) {
	body := map[string]string{"error": code}
	if err != nil {
		body["message"] = err.Error()
	}
	writeJSON(w, status, body)
}

// decode parses a JSON body into v and runs struct validation.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", nil)
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Mode  game.Mode `json:"mode" validate:"required,oneof=guess solve"`
	Level int       `json:"level" validate:"required,min=4,max=10"`
}
type newGameRes struct {
	GameID   string              `json:"gameId"`
	Mode     game.Mode           `json:"mode"`
	Level    int                 `json:"level"`
	State    string              `json:"state"`
	Universe int                 `json:"universe"`        // number of possible secrets
	Guess    *digits.Combination `json:"guess,omitempty"` // solve mode: first computer guess
}

// handleNewGame creates a session in the store and persists an owner row
// (either user_id or anonymous_id) for history/stats.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if !s.decode(w, r, &req) {
		return
	}
	g, err := game.New(req.Mode, req.Level, s.newPicker())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	col, owner := s.owner(w, r)
	g.Owner = owner

	res := newGameRes{GameID: g.ID, Mode: g.Mode, Level: g.Level, State: g.State(), Universe: digits.UniverseSize(g.Level)}
	if g.Mode == game.ModeSolve {
		guess, err := g.Next()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "solver_failed", err)
			return
		}
		res.Guess = &guess
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed", nil)
		return
	}
	s.metrics.started.WithLabelValues(string(g.Mode)).Inc()
	s.recordStart(r, col, owner, g)

	writeJSON(w, http.StatusOK, res)
}

// withGame runs fn on the caller's session under the session lock.
// Sessions owned by someone else are reported as missing.
func (s *Server) withGame(r *http.Request, id string, fn func(*game.Game) error) error {
	return s.store.Update(r.Context(), id, func(g *game.Game) error {
		if !s.owns(r, g) {
			return store.ErrNotFound
		}
		return fn(g)
	})
}

// owns reports whether the caller started g, as a user or as a guest.
// Guest sessions claimed at signup/login stay reachable through the anon cookie.
func (s *Server) owns(r *http.Request, g *game.Game) bool {
	if g.Owner == "" {
		return true
	}
	if me := userFrom(r); me != nil && me.ID == g.Owner {
		return true
	}
	return anonIDFrom(r) == g.Owner
}

// writeGameError maps the error of a withGame call; code names the failed action.
func writeGameError(w http.ResponseWriter, err error, code string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	writeError(w, statusFor(err), code, err)
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId" validate:"required"`
	Guess  string `json:"guess" validate:"required"`
}
type guessRes struct {
	Exact   int    `json:"exact"`
	Partial int    `json:"partial"`
	State   string `json:"state"` // "playing" | "won"
	Guesses int    `json:"guesses"`
}

// handleGuess scores a player guess against the computer's secret.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if !s.decode(w, r, &req) {
		return
	}
	var (
		res  guessRes
		snap progress
	)
	err := s.withGame(r, req.GameID, func(g *game.Game) error {
		score, state, err := g.ApplyGuess(req.Guess)
		if err != nil {
			return err
		}
		res = guessRes{Exact: score.Exact, Partial: score.Partial, State: state, Guesses: g.GuessCount()}
		snap = progressOf(g)
		return nil
	})
	if err != nil {
		writeGameError(w, err, "invalid_guess")
		return
	}
	s.recordProgress(w, r, snap)

	writeJSON(w, http.StatusOK, res)
}

// feedbackReq/Res payloads for POST /game/feedback.
type feedbackReq struct {
	GameID  string `json:"gameId" validate:"required"`
	Exact   *int   `json:"exact" validate:"required,min=0,max=4"`
	Partial *int   `json:"partial" validate:"required,min=0,max=4"`
}
type feedbackRes struct {
	State     string              `json:"state"` // "awaiting_feedback" | "solved" | "contradiction"
	Guess     *digits.Combination `json:"guess,omitempty"`
	Remaining int                 `json:"remaining"`
	Rounds    int                 `json:"rounds"`
}

// handleFeedback passes the player's score for the computer's current guess
// to the solver and returns the next guess, if any.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackReq
	if !s.decode(w, r, &req) {
		return
	}
	var (
		res  feedbackRes
		snap progress
	)
	err := s.withGame(r, req.GameID, func(g *game.Game) error {
		state, err := g.Feedback(digits.Score{Exact: *req.Exact, Partial: *req.Partial})
		if err != nil && !errors.Is(err, solver.ErrContradiction) {
			return err
		}
		res = feedbackRes{State: state, Remaining: g.Remaining(), Rounds: g.GuessCount()}
		if state != game.StateContradiction {
			if guess, err := g.Next(); err == nil {
				res.Guess = &guess
			}
		}
		snap = progressOf(g)
		return nil
	})
	if err != nil {
		writeGameError(w, err, "invalid_feedback")
		return
	}
	if res.State == game.StateContradiction {
		log.Info().Str("gameId", snap.ID).Int("rounds", res.Rounds).Msg("solver contradiction")
	}
	s.recordProgress(w, r, snap)

	writeJSON(w, http.StatusOK, res)
}

type giveUpReq struct {
	GameID string `json:"gameId" validate:"required"`
}

// handleGiveUp ends a guess-mode session as lost and reveals the secret.
func (s *Server) handleGiveUp(w http.ResponseWriter, r *http.Request) {
	var req giveUpReq
	if !s.decode(w, r, &req) {
		return
	}
	var (
		res  gameRes
		snap progress
	)
	err := s.withGame(r, req.GameID, func(g *game.Game) error {
		if err := g.GiveUp(); err != nil {
			return err
		}
		res, snap = summarize(g), progressOf(g)
		return nil
	})
	if err != nil {
		writeGameError(w, err, "invalid_request")
		return
	}
	s.recordProgress(w, r, snap)
	writeJSON(w, http.StatusOK, res)
}

// gameRes is the session summary returned by GET /game/{id}.
type gameRes struct {
	GameID    string              `json:"gameId"`
	Mode      game.Mode           `json:"mode"`
	Level     int                 `json:"level"`
	State     string              `json:"state"`
	Guesses   int                 `json:"guesses"`
	History   []game.Turn         `json:"history"`
	Remaining int                 `json:"remaining,omitempty"`
	Secret    *digits.Combination `json:"secret,omitempty"` // guess mode, once finished
}

func summarize(g *game.Game) gameRes {
	res := gameRes{
		GameID:    g.ID,
		Mode:      g.Mode,
		Level:     g.Level,
		State:     g.State(),
		Guesses:   g.GuessCount(),
		History:   g.History(),
		Remaining: g.Remaining(),
	}
	if g.Mode == game.ModeGuess && g.Finished {
		secret := g.Secret
		res.Secret = &secret
	}
	return res
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	var res gameRes
	err := s.withGame(r, chi.URLParam(r, "id"), func(g *game.Game) error {
		res = summarize(g)
		return nil
	})
	if err != nil {
		writeGameError(w, err, "invalid_request")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrFinished), errors.Is(err, solver.ErrFinished):
		return http.StatusConflict
	case errors.Is(err, game.ErrWrongMode), errors.Is(err, solver.ErrNoGuess):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// ---------------------------- persistence ----------------------------------

// owner returns the column and value identifying who owns a game row.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) (string, string) {
	if me := userFrom(r); me != nil {
		return "user_id", me.ID
	}
	return "anonymous_id", s.ensureAnonID(w, r)
}

// progress is what persistence needs from a session, copied under its lock.
type progress struct {
	ID       string
	Mode     game.Mode
	State    string
	Guesses  int
	Finished bool
	Won      bool
}

func progressOf(g *game.Game) progress {
	return progress{ID: g.ID, Mode: g.Mode, State: g.State(), Guesses: g.GuessCount(), Finished: g.Finished, Won: g.Won}
}

// recordStart inserts the history row for a new session.
func (s *Server) recordStart(r *http.Request, col, owner string, g *game.Game) {
	_, err := s.db.ExecContext(r.Context(),
		`INSERT INTO games (id, `+col+`, mode, level, started_at, status, guesses) VALUES (?,?,?,?,?,?,0)`,
		g.ID, owner, string(g.Mode), g.Level, g.StartedAt.Format(time.RFC3339), g.State())
	if err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}
}

// recordProgress updates counters and, once finished, the outcome and user
// stats in a best-effort transaction.
func (s *Server) recordProgress(w http.ResponseWriter, r *http.Request, p progress) {
	if p.Finished {
		s.metrics.observeFinish(p)
	}
	col, owner := s.owner(w, r)

	tx, err := s.db.BeginTx(r.Context(), nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`UPDATE games SET guesses=?, status=? WHERE id=? AND `+col+`=?`,
		p.Guesses, p.State, p.ID, owner)
	if err != nil {
		log.Warn().Err(err).Str("gameId", p.ID).Msg("update game row")
	} else if n, _ := res.RowsAffected(); n == 0 {
		log.Warn().Str("gameId", p.ID).Str("owner", owner).Msg("game row not found for owner")
	}
	if p.Finished {
		if _, err := tx.Exec(`UPDATE games SET finished_at=? WHERE id=? AND `+col+`=?`,
			time.Now().UTC().Format(time.RFC3339), p.ID, owner); err != nil {
			log.Warn().Err(err).Str("gameId", p.ID).Msg("finish game row")
		}
		if me := userFrom(r); me != nil && p.Mode == game.ModeGuess {
			if err := bumpStats(tx, me.ID, p.Won); err != nil {
				log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Str("gameId", p.ID).Msg("commit game row")
	}
}

// ------------------------------ eviction -----------------------------------

// janitor sweeps expired sessions every interval until done is closed.
func (s *Server) janitor(done <-chan struct{}, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-t.C:
			s.sweep(context.Background(), now)
		}
	}
}

// sweep evicts finished sessions older than SessionTTL and unfinished ones idle
// longer than SessionIdleTTL, plus daily sessions from earlier dates.
func (s *Server) sweep(ctx context.Context, now time.Time) int {
	finishedTTL, idleTTL := s.cfg.SessionTTL, s.cfg.SessionIdleTTL
	n := s.store.Sweep(ctx, func(g *game.Game) bool {
		age := now.Sub(g.UpdatedAt)
		if g.Finished {
			return finishedTTL > 0 && age >= finishedTTL
		}
		return idleTTL > 0 && age >= idleTTL
	})
	if n > 0 {
		s.metrics.evicted.Add(float64(n))
		log.Debug().Int("sessions", n).Msg("evicted sessions")
	}
	if s.daily != nil {
		s.daily.prune(daily.DateKey(s.now()))
	}
	return n
}
