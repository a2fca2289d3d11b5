package lavalink

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"jukebot/pkg/types"
)

// Supervisor states.
const (
	StateStopped  = "stopped"
	StateStarting = "starting"
	StateReady    = "ready"
	StateFailed   = "failed"
)

// Defaults applied when corresponding SpawnConfig fields are unset.
const (
	defaultJavaBin      = "java"
	defaultSpawnHost    = "127.0.0.1"
	defaultReadyTimeout = 60 * time.Second
	defaultStopGrace    = 2 * time.Second

	// outputTailLines bounds the retained process output for failure reports.
	outputTailLines = 20
)

// SpawnConfig describes a locally launched node.
type SpawnConfig struct {
	// JavaBin to launch the jar with; default "java".
	JavaBin string
	// JarPath names the jar explicitly; when empty JarDir is scanned and
	// the newest Lavalink*.jar wins.
	JarPath string
	JarDir  string
	// Host the node binds; default 127.0.0.1.
	Host string
	// Port the node binds; 0 picks a free one.
	Port int
	// Password the node requires; forwarded to the process environment.
	Password string
	// WorkDir the process runs in; defaults to the jar's directory so the
	// node finds its application.yml.
	WorkDir string
	// ExtraEnv appended to the child environment, KEY=VALUE form.
	ExtraEnv []string
	// ReadyTimeout bounds the wait for the node to answer; defaulted.
	ReadyTimeout time.Duration
	// StopGrace between SIGTERM and SIGKILL; defaulted.
	StopGrace time.Duration
}

// Supervisor launches and tracks one local node process. Stopping is
// best effort: the child gets SIGTERM, then SIGKILL after the grace
// period.
type Supervisor struct {
	cfg        SpawnConfig
	log        zerolog.Logger
	httpClient *http.Client

	mu       sync.Mutex
	state    string
	cmd      *exec.Cmd
	pid      int
	port     int
	jar      string
	baseURL  string
	lastErr  string
	stopping bool
	tail     *lineTail
	exitErr  error
	done     chan struct{}
}

// NewSupervisor constructs a Supervisor; Start launches the node.
func NewSupervisor(cfg SpawnConfig, log zerolog.Logger) *Supervisor {
	if cfg.JavaBin == "" {
		cfg.JavaBin = defaultJavaBin
	}
	if cfg.Host == "" {
		cfg.Host = defaultSpawnHost
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = defaultReadyTimeout
	}
	if cfg.StopGrace <= 0 {
		cfg.StopGrace = defaultStopGrace
	}
	return &Supervisor{
		cfg:        cfg,
		log:        log,
		httpClient: &http.Client{Timeout: 0},
		state:      StateStopped,
	}
}

// Start launches the node and blocks until it answers /version, the
// ready timeout elapses, the process exits, or ctx is done. It returns
// the node's base URL.
func (s *Supervisor) Start(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.state == StateStarting || s.state == StateReady {
		base := s.baseURL
		s.mu.Unlock()
		return base, nil
	}
	s.mu.Unlock()

	jar := s.cfg.JarPath
	if jar == "" {
		found, err := FindNewestJar(s.cfg.JarDir)
		if err != nil {
			return "", s.fail(fmt.Errorf("locate jar: %w", err))
		}
		jar = found
	}
	port := s.cfg.Port
	if port == 0 {
		p, err := pickFreePort(s.cfg.Host)
		if err != nil {
			return "", s.fail(fmt.Errorf("pick port: %w", err))
		}
		port = p
	}
	baseURL := fmt.Sprintf("http://%s:%d", s.cfg.Host, port)

	workDir := s.cfg.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(jar)
	}
	tail := newLineTail(outputTailLines)
	cmd := exec.Command(s.cfg.JavaBin, "-jar", jar)
	cmd.Dir = workDir
	cmd.Stdout = tail
	cmd.Stderr = tail
	cmd.Env = append(os.Environ(),
		"SERVER_ADDRESS="+s.cfg.Host,
		"SERVER_PORT="+strconv.Itoa(port),
		"LAVALINK_SERVER_PASSWORD="+s.cfg.Password,
	)
	cmd.Env = append(cmd.Env, s.cfg.ExtraEnv...)

	if err := cmd.Start(); err != nil {
		return "", s.fail(fmt.Errorf("start node: %w", err))
	}
	done := make(chan struct{})
	s.mu.Lock()
	s.state = StateStarting
	s.cmd = cmd
	s.pid = cmd.Process.Pid
	s.port = port
	s.jar = jar
	s.baseURL = baseURL
	s.lastErr = ""
	s.tail = tail
	s.done = done
	s.stopping = false
	s.mu.Unlock()
	s.log.Info().Int("pid", cmd.Process.Pid).Str("jar", jar).Str("url", baseURL).Msg("node starting")

	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		s.exitErr = err
		s.mu.Unlock()
		close(done)
	}()

	deadline := time.Now().Add(s.cfg.ReadyTimeout)
	for {
		select {
		case <-done:
			return "", s.failExited()
		case <-ctx.Done():
			_ = s.Stop()
			return "", s.fail(fmt.Errorf("start aborted: %w", ctx.Err()))
		default:
		}
		if time.Now().After(deadline) {
			_ = s.Stop()
			return "", s.fail(fmt.Errorf("node not ready within %s", s.cfg.ReadyTimeout))
		}
		if s.probe(baseURL) {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	s.mu.Lock()
	s.state = StateReady
	s.mu.Unlock()
	s.log.Info().Str("url", baseURL).Msg("node ready")

	// Post-ready exit watcher; Stop flips stopping first so an operator
	// shutdown does not count as a crash.
	go func() {
		<-done
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.stopping || s.state != StateReady {
			return
		}
		s.state = StateFailed
		s.lastErr = exitMessage(s.exitErr, s.tail)
		s.log.Error().Str("err", s.lastErr).Msg("node exited")
	}()
	return baseURL, nil
}

// Stop terminates the node if running. Safe to call in any state.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	cmd := s.cmd
	done := s.done
	if cmd == nil || cmd.Process == nil {
		s.state = StateStopped
		s.mu.Unlock()
		return nil
	}
	s.stopping = true
	grace := s.cfg.StopGrace
	s.mu.Unlock()

	_ = cmd.Process.Signal(syscall.SIGTERM)
	select {
	case <-done:
	case <-time.After(grace):
		_ = cmd.Process.Kill()
		<-done
	}
	s.mu.Lock()
	s.state = StateStopped
	s.cmd = nil
	s.pid = 0
	s.stopping = false
	s.mu.Unlock()
	s.log.Info().Msg("node stopped")
	return nil
}

// Status snapshots the supervisor for /status.
func (s *Supervisor) Status() types.SupervisorStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.SupervisorStatus{
		State:     s.state,
		PID:       s.pid,
		Port:      s.port,
		Jar:       s.jar,
		LastError: s.lastErr,
	}
}

// BaseURL returns the node address once Start has picked it.
func (s *Supervisor) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseURL
}

// probe checks whether the node answers /version yet. Any HTTP answer
// counts: an unauthorized response still proves the listener is up.
func (s *Supervisor) probe(baseURL string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/version", nil)
	if err != nil {
		return false
	}
	if s.cfg.Password != "" {
		req.Header.Set("Authorization", s.cfg.Password)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

func (s *Supervisor) fail(err error) error {
	s.mu.Lock()
	s.state = StateFailed
	s.lastErr = err.Error()
	s.mu.Unlock()
	s.log.Error().Err(err).Msg("node start failed")
	return err
}

func (s *Supervisor) failExited() error {
	s.mu.Lock()
	msg := exitMessage(s.exitErr, s.tail)
	s.state = StateFailed
	s.lastErr = msg
	s.cmd = nil
	s.pid = 0
	s.mu.Unlock()
	err := fmt.Errorf("node exited before ready: %s", msg)
	s.log.Error().Err(err).Msg("node start failed")
	return err
}

func exitMessage(exitErr error, tail *lineTail) string {
	msg := "exited cleanly"
	if exitErr != nil {
		msg = exitErr.Error()
	}
	if tail != nil {
		if t := tail.String(); t != "" {
			msg += "; output tail: " + t
		}
	}
	return msg
}

func pickFreePort(host string) (int, error) {
	l, err := net.Listen("tcp", host+":0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	addr := l.Addr().String()
	lastColon := strings.LastIndex(addr, ":")
	if lastColon < 0 {
		return 0, fmt.Errorf("unexpected addr: %s", addr)
	}
	return strconv.Atoi(addr[lastColon+1:])
}

// lineTail keeps the last N lines written to it. Safe for one writer
// (the child's pipe) plus readers.
type lineTail struct {
	mu    sync.Mutex
	max   int
	lines []string
	part  strings.Builder
}

func newLineTail(max int) *lineTail {
	return &lineTail{max: max}
}

func (t *lineTail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, b := range p {
		if b == '\n' {
			t.push(t.part.String())
			t.part.Reset()
			continue
		}
		t.part.WriteByte(b)
	}
	return len(p), nil
}

func (t *lineTail) push(line string) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *lineTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.part.Len() > 0 {
		t.push(t.part.String())
		t.part.Reset()
	}
	return strings.Join(t.lines, " | ")
}
