// Package session keeps per-browser distance, search and location state.
package session

import (
	"net/http"
	"sync"

	"bin-finder/internal/cache"
	"bin-finder/internal/calculator"
	"bin-finder/internal/geocoding"
	"bin-finder/internal/metrics"
	"bin-finder/internal/models"
	"bin-finder/internal/search"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	idKey      = "sid"
	contextKey = "binfinder.session"
)

// State belongs to one browser session. Lock it around engine calls; the
// engines themselves are not safe for concurrent use.
type State struct {
	sync.Mutex

	ID       string
	Distance *calculator.Engine
	Search   *search.Engine[models.Bin]
	Geocode  *geocoding.Tracker

	defaultOrigin models.Coordinate
	origin        *models.Coordinate
}

// Origin returns the user location, or the default origin with isDefault
// set. Callers hold the lock.
func (s *State) Origin() (c models.Coordinate, isDefault bool) {
	if s.origin != nil {
		return *s.origin, false
	}
	return s.defaultOrigin, true
}

// SetOrigin stores the user location. Callers hold the lock.
func (s *State) SetOrigin(c models.Coordinate) {
	s.origin = &c
}

// ClearOrigin drops back to the default origin. Callers hold the lock.
func (s *State) ClearOrigin() {
	s.origin = nil
}

type Options struct {
	CookieName    string
	Secret        []byte
	MaxSessions   int
	DefaultOrigin models.Coordinate
	SortPolicy    calculator.SortPolicy
	HistorySize   int
	Secure        bool
}

// Store maps session ids to states. It holds at most MaxSessions states
// and drops the oldest first.
type Store struct {
	opts   Options
	states *cache.FIFO[string, *State]
	logger zerolog.Logger
}

func NewStore(opts Options, logger zerolog.Logger) *Store {
	if opts.CookieName == "" {
		opts.CookieName = "binfinder_session"
	}
	if len(opts.Secret) == 0 {
		opts.Secret = []byte(uuid.New().String())
	}
	s := &Store{
		opts:   opts,
		states: cache.NewFIFO[string, *State](opts.MaxSessions),
		logger: logger.With().Str("component", "session").Logger(),
	}
	s.states.OnEvict = func(id string, _ *State) {
		s.logger.Debug().Str("session", id).Msg("session evicted")
	}
	return s
}

func (s *Store) newState(id string) *State {
	return &State{
		ID:            id,
		Distance:      calculator.NewEngine(s.logger, calculator.WithSortPolicy(s.opts.SortPolicy)),
		Search:        search.NewEngine[models.Bin](s.logger),
		Geocode:       geocoding.NewTracker(s.opts.HistorySize),
		defaultOrigin: s.opts.DefaultOrigin,
	}
}

// Get returns the state for id, creating it when absent or evicted.
func (s *Store) Get(id string) *State {
	if st, ok := s.states.Get(id); ok {
		return st
	}
	st := s.newState(id)
	s.states.Put(id, st)
	metrics.Sessions.Set(float64(s.states.Len()))
	return st
}

func (s *Store) Len() int { return s.states.Len() }

// Middleware installs the cookie session and attaches the caller's State
// to the gin context.
func (s *Store) Middleware() []gin.HandlerFunc {
	store := cookie.NewStore(s.opts.Secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return []gin.HandlerFunc{sessions.Sessions(s.opts.CookieName, store), s.attach}
}

func (s *Store) attach(c *gin.Context) {
	sess := sessions.Default(c)
	id, _ := sess.Get(idKey).(string)
	if id == "" {
		id = uuid.New().String()
		sess.Set(idKey, id)
		if err := sess.Save(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to save session cookie")
		}
	}
	c.Set(contextKey, s.Get(id))
	c.Next()
}

// FromContext returns the State attached by Middleware, or nil.
func FromContext(c *gin.Context) *State {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	st, _ := v.(*State)
	return st
}
