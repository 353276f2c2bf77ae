package cli

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/crux/internal/client/config"
	"github.com/dmitrijs2005/crux/internal/client/idp/local"
	"github.com/dmitrijs2005/crux/internal/client/migrations"
	"github.com/dmitrijs2005/crux/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/crux/internal/client/repositories/nominees"
	"github.com/dmitrijs2005/crux/internal/client/services"
	"github.com/dmitrijs2005/crux/internal/client/session"
	"github.com/dmitrijs2005/crux/internal/client/timer"
	"github.com/dmitrijs2005/crux/internal/dbx"
	"github.com/dmitrijs2005/crux/internal/logging"
)

// script is stdin for a test. Lines can be added while the app runs; an
// empty script reads as EOF.
type script struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *script) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf.Len() == 0 {
		return 0, io.EOF
	}
	return s.buf.Read(p)
}

func (s *script) add(lines ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range lines {
		s.buf.WriteString(l + "\n")
	}
}

// autoSender captures every code and, when respond is set, types the
// lines it returns into the script.
type autoSender struct {
	mu      sync.Mutex
	script  *script
	codes   []string
	respond func(code string) []string
}

func (s *autoSender) Send(_ context.Context, _ string, message string) error {
	code := message[strings.LastIndexByte(message, ' ')+1:]
	s.mu.Lock()
	s.codes = append(s.codes, code)
	respond := s.respond
	s.mu.Unlock()
	if respond != nil {
		s.script.add(respond(code)...)
	}
	return nil
}

func (s *autoSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.codes) == 0 {
		return ""
	}
	return s.codes[len(s.codes)-1]
}

func typeIt(code string) []string { return []string{code} }

// wrong returns a code that differs from code in its first digit.
func wrong(code string) string {
	d := (code[0]-'0'+1)%10 + '0'
	return string(d) + code[1:]
}

type output struct {
	mu    sync.Mutex
	lines []string
}

func (o *output) println(a ...any) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = append(o.lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
	return 0, nil
}

func (o *output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return strings.Join(o.lines, "\n")
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	app      *App
	db       *sql.DB
	provider *local.Provider
	script   *script
	sender   *autoSender
	out      *output
	sched    *timer.FakeScheduler
	clock    *clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	db, err := dbx.Open(ctx, filepath.Join(dir, "vault.db"), migrations.FS)
	require.NoError(t, err)

	h := &harness{
		db:     db,
		script: &script{},
		out:    &output{},
		sched:  timer.NewFakeScheduler(),
		clock:  &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	h.sender = &autoSender{script: h.script, respond: typeIt}

	p, err := local.Open(ctx, filepath.Join(dir, "idp.db"), h.sender, nil, local.Options{
		Secret: []byte("test-secret"),
		Now:    h.clock.Now,
	})
	require.NoError(t, err)
	h.provider = p

	cfg := &config.Config{}
	cfg.LoadDefaults()

	sess := session.New(p, session.WithProfileStore(session.NewProfileStore(db)))
	h.app = newApp(cfg, logging.Discard(), sess,
		services.NewNomineeService(nominees.NewSQLiteRepository(db)),
		services.NewSettingsService(metadata.NewSQLiteRepository(db)),
		bufio.NewReader(h.script), io.Discard)
	h.app.mfa = p
	h.app.scheduler = h.sched
	h.app.closers = append(h.app.closers, p.Close, db.Close)
	t.Cleanup(func() { _ = h.app.Close() })

	origPrintln, origPrint, origPassword := printlnFn, printFn, getPassword
	printlnFn = h.out.println
	printFn = func(...any) (int, error) { return 0, nil }
	getPassword = func(string, io.Writer) ([]byte, error) { return []byte("password1"), nil }
	t.Cleanup(func() {
		printlnFn, printFn, getPassword = origPrintln, origPrint, origPassword
	})
	return h
}

// signUp registers Ana and confirms her code.
func (h *harness) signUp(t *testing.T) {
	t.Helper()
	h.script.add("Ana", "Lee", "ana@x.com", "+15551234567")
	require.NoError(t, h.app.Signup(context.Background()))
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	h.script.add("ana@x.com")
	require.NoError(t, h.app.Signin(context.Background()))
	require.True(t, h.app.isLoggedIn())
}
