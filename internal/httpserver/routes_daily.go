// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start a daily game (creates or reuses session)
//   - POST /daily/guess       → submit a guess for today's daily game
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Each user can play once per day (enforced by DB + in-memory session).
// Sessions are held in memory for active play and persisted to DB on win;
// sessions from earlier dates are pruned by the server's sweep.
// The daily secret is derived from date + salt at the configured level.

package httpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/digitmind/internal/daily"
	"github.com/robalobadob/digitmind/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	level    int
	sessions map[string]*dailySession // active sessions keyed by userID|date
	mu       sync.Mutex               // guards sessions and the games they hold
}

// dailySession holds transient in-memory state for an in-progress daily game.
type dailySession struct {
	game        *game.Game
	date        string
	secretIndex int
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     s.cfg.DailySalt,
		level:    s.cfg.DailyLevel,
		sessions: make(map[string]*dailySession),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// userID returns the authenticated user ID if logged in,
// otherwise ensures an anonymous ID via Server.ensureAnonID.
func (d *dailyServer) userID(w http.ResponseWriter, r *http.Request) string {
	if me := userFrom(r); me != nil {
		return me.ID
	}
	return d.srv.ensureAnonID(w, r)
}

// prune drops sessions from dates other than today.
func (d *dailyServer) prune(today string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, sess := range d.sessions {
		if sess.date != today {
			delete(d.sessions, key)
		}
	}
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID string `json:"gameId"`
	Date   string `json:"date"`
	Level  int    `json:"level"`
	Played bool   `json:"played"`
}

// handleNew creates or reuses a daily session for the current date.
//   - If the user already has a DB row for today → Played=true.
//   - Otherwise create/reuse an in-memory session and return GameID.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.userID(w, r)
	now := d.srv.now()
	date := daily.DateKey(now)

	played, err := d.store.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		log.Warn().Err(err).Str("user", uid).Msg("daily already played")
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Level: d.level, Played: true})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	if sess, ok := d.sessions[key]; ok {
		writeJSON(w, http.StatusOK, dailyNewRes{GameID: sess.game.ID, Date: date, Level: d.level, Played: sess.game.Finished})
		return
	}
	secret, idx := daily.Secret(now, d.salt, d.level)
	g, err := game.WithSecret(d.level, secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "daily_unavailable", err)
		return
	}
	d.sessions[key] = &dailySession{game: g, date: date, secretIndex: idx}
	d.srv.metrics.started.WithLabelValues("daily").Inc()

	writeJSON(w, http.StatusOK, dailyNewRes{GameID: g.ID, Date: date, Level: d.level})
}

// -----------------------------------------------------------------------------
// /daily/guess

type dailyGuessReq struct {
	GameID string `json:"gameId" validate:"required"`
	Guess  string `json:"guess" validate:"required"`
}

type dailyGuessRes struct {
	Exact   int    `json:"exact"`
	Partial int    `json:"partial"`
	State   string `json:"state"` // in_progress | won | locked
	Guesses int    `json:"guesses"`
}

// handleGuess validates and applies a guess for today's daily session and
// persists the result on a win.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	uid := d.userID(w, r)
	var p dailyGuessReq
	if !d.srv.decode(w, r, &p) {
		return
	}

	date := daily.DateKey(d.srv.now())
	key := uid + "|" + date

	d.mu.Lock()
	defer d.mu.Unlock()
	sess, ok := d.sessions[key]
	if !ok || sess.game.ID != p.GameID {
		writeError(w, http.StatusConflict, "no_session", nil)
		return
	}
	g := sess.game
	if g.Finished {
		writeJSON(w, http.StatusOK, dailyGuessRes{State: "locked", Guesses: g.GuessCount()})
		return
	}

	score, _, err := g.ApplyGuess(p.Guess)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_guess", err)
		return
	}
	res := dailyGuessRes{Exact: score.Exact, Partial: score.Partial, State: "in_progress", Guesses: g.GuessCount()}
	if g.Won {
		res.State = "won"
		elapsed := int(time.Since(g.StartedAt).Milliseconds())
		if err := d.store.InsertResult(r.Context(), daily.Result{
			UserID: uid, Date: sess.date, Level: g.Level, SecretIndex: sess.secretIndex,
			Guesses: g.GuessCount(), ElapsedMs: elapsed,
		}); err != nil {
			log.Warn().Err(err).Str("user", uid).Msg("insert daily result")
		}
		d.srv.metrics.finished.WithLabelValues("daily", game.StateWon).Inc()
		d.srv.metrics.guesses.WithLabelValues("daily").Observe(float64(g.GuessCount()))
	}
	writeJSON(w, http.StatusOK, res)
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
