// Copyright 2025 The GeoForm Authors
// SPDX-License-Identifier: Apache-2.0

// Package web serves the geocoding form and its JSON API.
package web

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/geoform/form"
	"github.com/jcodagnone/geoform/geocode"
	"github.com/jcodagnone/geoform/history"
	"github.com/jcodagnone/geoform/metrics"
	"github.com/jcodagnone/geoform/reference"
	"github.com/jcodagnone/geoform/view"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "geoform_session"

// Options configures a Server.
type Options struct {
	Addr        string
	SessionTTL  time.Duration
	CORSOrigins []string
}

// Server wires the form state machine to HTTP.
type Server struct {
	searcher form.Searcher
	history  history.Repository
	sessions *SessionStore
	opts     Options
}

// NewServer creates a server. repo may be nil, which disables history.
func NewServer(searcher form.Searcher, repo history.Repository, opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}

	return &Server{
		searcher: searcher,
		history:  repo,
		sessions: NewSessionStore(opts.SessionTTL),
		opts:     opts,
	}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(log.Writer()), gin.Recovery(), metrics.Middleware())

	r.GET("/", s.formView)
	r.POST("/search", s.search)
	r.POST("/country", s.selectCountry)
	r.POST("/results/:row/toggle", s.toggleRow)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodOptions}

	if len(s.opts.CORSOrigins) == 0 || (len(s.opts.CORSOrigins) == 1 && s.opts.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.opts.CORSOrigins
	}

	api := r.Group("/api", cors.New(corsConfig))
	api.GET("/geocode", s.apiGeocode)
	api.GET("/countries", s.apiCountries)
	api.GET("/states", s.apiStates)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sessions.Run(ctx, time.Minute)

	errCh := make(chan error, 1)

	go func() {
		log.Printf("Listening on http://%s", s.opts.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down, draining connections...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return <-errCh
}

func (s *Server) session(c *gin.Context) (string, *form.Manager) {
	cookie, _ := c.Cookie(SessionCookie)

	id, manager := s.sessions.Get(cookie)
	if id != cookie {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, int(s.opts.SessionTTL/time.Second), "/", "", false, true)
	}

	return id, manager
}

// formView renders the session's form. Visitors without a session get a
// blank form; one is only created on their first post.
func (s *Server) formView(c *gin.Context) {
	var state form.State

	cookie, _ := c.Cookie(SessionCookie)
	if manager, ok := s.sessions.Lookup(cookie); ok {
		state = manager.Snapshot()
	}

	var buf bytes.Buffer
	if err := view.WriteHTML(&buf, view.Render(state)); err != nil {
		log.Printf("Error rendering page: %v", err)
		c.String(http.StatusInternalServerError, "internal error")

		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

type formInput struct {
	City    string `form:"city"`
	State   string `form:"state"`
	Country string `form:"country"`
}

// apply copies the posted fields into the form. The country goes first so a
// state posted along with "US" is accepted.
func apply(manager *form.Manager, in formInput) form.State {
	return manager.Dispatch(
		form.CityChanged{City: in.City},
		form.CountryChanged{Code: in.Country},
		form.StateChanged{Code: in.State},
	)
}

func (s *Server) search(c *gin.Context) {
	id, manager := s.session(c)

	var in formInput
	if err := c.ShouldBind(&in); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)

		return
	}

	apply(manager, in)

	state, applied := manager.Search(c.Request.Context(), s.searcher)
	if applied {
		if state.Outcome.Kind == geocode.OutcomeFailure {
			log.Printf("Search %q failed: %v", state.City, state.Outcome.Err)
		}

		s.record(c.Request.Context(), id, state.Query(), state.Outcome)
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) selectCountry(c *gin.Context) {
	_, manager := s.session(c)

	var in formInput
	if err := c.ShouldBind(&in); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)

		return
	}

	apply(manager, in)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) toggleRow(c *gin.Context) {
	_, manager := s.session(c)

	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid row %q", c.Param("row"))

		return
	}

	manager.Dispatch(form.ExpansionToggled{Row: row})
	c.Redirect(http.StatusSeeOther, "/")
}

type searchResponse struct {
	Kind    geocode.OutcomeKind `json:"kind"`
	Message string              `json:"message"`
	Results []geocode.Result    `json:"results"`
}

func (s *Server) apiGeocode(c *gin.Context) {
	var q geocode.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	outcome := s.searcher.Search(c.Request.Context(), q)
	metrics.SearchOutcomes.WithLabelValues(outcome.Kind.String()).Inc()

	status := http.StatusOK

	if outcome.Kind == geocode.OutcomeFailure {
		status = http.StatusBadGateway
		if geocode.IsValidationError(outcome.Err) {
			status = http.StatusBadRequest
		} else {
			log.Printf("Geocoding %q failed: %v", q.City, outcome.Err)
		}
	}

	if status != http.StatusBadRequest {
		s.record(c.Request.Context(), "", q, outcome)
	}

	results := outcome.Results
	if results == nil {
		results = []geocode.Result{}
	}

	c.JSON(status, searchResponse{Kind: outcome.Kind, Message: outcome.Message, Results: results})
}

func (s *Server) apiCountries(c *gin.Context) {
	c.JSON(http.StatusOK, reference.Countries())
}

func (s *Server) apiStates(c *gin.Context) {
	c.JSON(http.StatusOK, reference.USStates())
}

func (s *Server) record(ctx context.Context, session string, q geocode.Query, outcome geocode.Outcome) {
	if s.history == nil {
		return
	}

	search, err := history.NewSearch(session, q, outcome)
	if err == nil {
		err = s.history.Record(ctx, search)
	}

	if err != nil {
		log.Printf("Error recording search: %v", err)
	}
}
