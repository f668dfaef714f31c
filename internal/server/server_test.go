package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"live-scores-service/internal/config"
	"live-scores-service/internal/domain"
	"live-scores-service/internal/poller"
	"live-scores-service/internal/teststubs"
)

type stubPoller struct {
	startCalls int
	stopCalls  int
	err        error
	status     poller.Status
}

func (p *stubPoller) Start(ctx context.Context) {
	_ = ctx
	p.startCalls++
}

func (p *stubPoller) Stop(ctx context.Context) error {
	_ = ctx
	p.stopCalls++
	return p.err
}

func (p *stubPoller) Status() poller.Status {
	return p.status
}

type stubDispatcher struct {
	startCalls int
	stopCalls  int
}

func (d *stubDispatcher) Start(ctx context.Context) {
	_ = ctx
	d.startCalls++
}

func (d *stubDispatcher) Stop() {
	d.stopCalls++
}

type stubHTTPServer struct {
	addr          string
	handler       http.Handler
	listenCalls   int
	shutdownCalls int
	listenErr     error
	shutdownErr   error
}

func (s *stubHTTPServer) ListenAndServe() error {
	s.listenCalls++
	return s.listenErr
}

func (s *stubHTTPServer) Shutdown(ctx context.Context) error {
	_ = ctx
	s.shutdownCalls++
	return s.shutdownErr
}

func (s *stubHTTPServer) Addr() string {
	return s.addr
}

func (s *stubHTTPServer) Handler() http.Handler {
	return s.handler
}

type blockingHTTPServer struct {
	shutdownCalls int
	unblock       chan struct{}
}

func (s *blockingHTTPServer) ListenAndServe() error {
	return nil
}

func (s *blockingHTTPServer) Shutdown(ctx context.Context) error {
	s.shutdownCalls++
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.unblock:
		return nil
	}
}

func (s *blockingHTTPServer) Addr() string {
	return ":0"
}

func (s *blockingHTTPServer) Handler() http.Handler {
	return http.NewServeMux()
}

func TestServerServesHealthAndScoreboard(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := &teststubs.StubProvider{
		Events: map[string][]domain.Event{
			"nba": {{
				SportID:   "nba",
				EventID:   "g1",
				Status:    domain.StatusLive,
				HomeTeam:  "Celtics",
				AwayTeam:  "Knicks",
				HomeScore: 50,
				AwayScore: 44,
			}},
		},
		Notify: make(chan struct{}, 1),
	}

	cfg := config.Config{
		PollInterval:   5 * time.Millisecond,
		BaselineSports: []string{"nba"},
	}
	srv := newServerWithProvider(cfg, nil, provider)
	srv.dispatcher.Start(ctx)
	srv.poller.Start(ctx)
	defer srv.poller.Stop(ctx)
	defer srv.dispatcher.Stop()

	select {
	case <-provider.Notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for poller to fetch")
	}

	router := srv.Handler()

	healthRec := httptest.NewRecorder()
	router.ServeHTTP(healthRec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if healthRec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", healthRec.Code)
	}

	// The fetch ran; the store may lag the notify by a beat.
	deadline := time.After(500 * time.Millisecond)
	for srv.snapshots.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for snapshot store to fill")
		case <-time.After(5 * time.Millisecond):
		}
	}

	boardRec := httptest.NewRecorder()
	router.ServeHTTP(boardRec, httptest.NewRequest(http.MethodGet, "/sports/nba/scoreboard", nil))
	if boardRec.Code != http.StatusOK {
		t.Fatalf("expected 200 from scoreboard, got %d", boardRec.Code)
	}

	var board struct {
		Sport string `json:"sport"`
		Games []struct {
			GameID string `json:"gameId"`
		} `json:"games"`
	}
	if err := json.NewDecoder(boardRec.Body).Decode(&board); err != nil {
		t.Fatalf("failed to decode scoreboard response: %v", err)
	}
	if len(board.Games) != 1 || board.Games[0].GameID != "g1" {
		t.Fatalf("unexpected scoreboard contents: %+v", board)
	}
}

func TestNewConstructsServer(t *testing.T) {
	cfg := config.Config{
		Port: "0",
		Metrics: config.MetricsConfig{
			Enabled: false,
		},
	}
	srv := New(cfg, nil)
	if srv == nil || srv.Handler() == nil {
		t.Fatalf("expected server with handler")
	}
}

func TestServerToleratesProviderErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := &teststubs.StubProvider{
		Errs:   map[string]error{"nba": context.DeadlineExceeded},
		Notify: make(chan struct{}, 1),
	}

	cfg := config.Config{
		PollInterval:   5 * time.Millisecond,
		BaselineSports: []string{"nba"},
	}
	srv := newServerWithProvider(cfg, nil, provider)
	srv.dispatcher.Start(ctx)
	srv.poller.Start(ctx)
	defer srv.poller.Stop(ctx)
	defer srv.dispatcher.Stop()

	select {
	case <-provider.Notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for poller to fetch")
	}

	router := srv.Handler()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sports/nba/scoreboard", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from scoreboard, got %d", rec.Code)
	}
	if srv.snapshots.Len() != 0 {
		t.Fatalf("expected empty store when provider errors, got %d", srv.snapshots.Len())
	}
}

func TestGracefulShutdownCallsStopAndShutdown(t *testing.T) {
	p := &stubPoller{}
	d := &stubDispatcher{}
	httpSrv := &stubHTTPServer{}

	srv := newServerWithDeps(config.Config{}, nil, d, httpSrv, p)
	srv.gracefulShutdown()

	if p.stopCalls != 1 {
		t.Fatalf("expected poller Stop to be called once, got %d", p.stopCalls)
	}
	if d.stopCalls != 1 {
		t.Fatalf("expected dispatcher Stop to be called once, got %d", d.stopCalls)
	}
	if httpSrv.shutdownCalls != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", httpSrv.shutdownCalls)
	}
}

func TestGracefulShutdownTimesOutLongRunningShutdown(t *testing.T) {
	p := &stubPoller{}
	blocking := &blockingHTTPServer{unblock: make(chan struct{})}

	original := shutdownTimeout
	shutdownTimeout = 5 * time.Millisecond
	defer func() { shutdownTimeout = original }()

	srv := newServerWithDeps(config.Config{}, nil, &stubDispatcher{}, blocking, p)

	start := time.Now()
	srv.gracefulShutdown()
	elapsed := time.Since(start)

	if blocking.shutdownCalls != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", blocking.shutdownCalls)
	}
	if p.stopCalls != 1 {
		t.Fatalf("expected poller Stop to be called once, got %d", p.stopCalls)
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("shutdown took too long: %s", elapsed)
	}
}

func TestGracefulShutdownContinuesWhenPollerStopErrors(t *testing.T) {
	p := &stubPoller{err: errors.New("stop failure")}
	httpSrv := &stubHTTPServer{}

	srv := newServerWithDeps(config.Config{}, nil, &stubDispatcher{}, httpSrv, p)
	srv.gracefulShutdown()

	if p.stopCalls != 1 {
		t.Fatalf("expected poller Stop to be called once, got %d", p.stopCalls)
	}
	if httpSrv.shutdownCalls != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", httpSrv.shutdownCalls)
	}
}

type errHTTPServer struct {
	shutdownCalls int
}

func (e *errHTTPServer) ListenAndServe() error {
	return errors.New("listen failure")
}

func (e *errHTTPServer) Shutdown(ctx context.Context) error {
	_ = ctx
	e.shutdownCalls++
	return nil
}

func (e *errHTTPServer) Addr() string {
	return ":0"
}

func (e *errHTTPServer) Handler() http.Handler {
	return http.NewServeMux()
}

func TestServerStartHandlesListenErrorAndStops(t *testing.T) {
	httpSrv := &errHTTPServer{}
	srv := newServerWithDeps(config.Config{}, nil, &stubDispatcher{}, httpSrv, &stubPoller{})

	var wg sync.WaitGroup
	wg.Add(1)
	stopCalled := make(chan struct{})
	stop := func() {
		close(stopCalled)
		wg.Done()
	}

	srv.startServer(stop)

	select {
	case <-stopCalled:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected stop to be called on listen failure")
	}

	wg.Wait()
}

type closeableHTTPServer struct {
	shutdownCalls int
}

func (c *closeableHTTPServer) ListenAndServe() error {
	return http.ErrServerClosed
}

func (c *closeableHTTPServer) Shutdown(ctx context.Context) error {
	_ = ctx
	c.shutdownCalls++
	return nil
}

func (c *closeableHTTPServer) Addr() string {
	return ":0"
}

func (c *closeableHTTPServer) Handler() http.Handler {
	return http.NewServeMux()
}

func TestRunCancelsAndStopsComponents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	plr := &stubPoller{}
	disp := &stubDispatcher{}
	httpSrv := &closeableHTTPServer{}

	srv := newServerWithDeps(config.Config{}, nil, disp, httpSrv, plr)

	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()

	// Let Start be invoked.
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("run did not return after cancel")
	}

	if plr.startCalls != 1 {
		t.Fatalf("expected poller Start called once, got %d", plr.startCalls)
	}
	if plr.stopCalls != 1 {
		t.Fatalf("expected poller Stop called once, got %d", plr.stopCalls)
	}
	if disp.startCalls != 1 || disp.stopCalls != 1 {
		t.Fatalf("expected dispatcher start/stop once, got %d/%d", disp.startCalls, disp.stopCalls)
	}
	if httpSrv.shutdownCalls != 1 {
		t.Fatalf("expected server Shutdown called once, got %d", httpSrv.shutdownCalls)
	}
}
