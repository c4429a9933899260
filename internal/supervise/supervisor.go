// SPDX-License-Identifier: MPL-2.0

package supervise

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"relcheck/internal/plan"
)

type (
	// ReadinessError reports a server that never printed its readiness
	// marker before the deadline.
	ReadinessError struct {
		Marker  string
		Timeout time.Duration
		LogTail string
	}

	// EarlyExitError reports a server process that terminated before it
	// became ready.
	EarlyExitError struct {
		LogTail string
		WaitErr error
	}

	// ResponseError reports an HTTP check whose body did not match the
	// expected content.
	ResponseError struct {
		URL  string
		Want string
		Got  string
	}

	// Supervisor manages one served artifact at a time. The zero value is
	// not usable; construct with New.
	Supervisor struct {
		// Timeout bounds the readiness wait.
		Timeout time.Duration
		// Poll is the interval between readiness checks.
		Poll time.Duration
		// RequestTimeout bounds the single HTTP check.
		RequestTimeout time.Duration
		// Client issues the HTTP check. Defaults to http.DefaultClient.
		Client *http.Client

		logger *log.Logger
	}
)

func (e *ReadinessError) Error() string {
	msg := fmt.Sprintf("server did not print %q within %s", e.Marker, e.Timeout)
	if e.LogTail != "" {
		msg += "\nlast output:\n" + e.LogTail
	}
	return msg
}

func (e *EarlyExitError) Error() string {
	msg := "server exited before becoming ready"
	if e.WaitErr != nil {
		msg += ": " + e.WaitErr.Error()
	}
	if e.LogTail != "" {
		msg += "\nlast output:\n" + e.LogTail
	}
	return msg
}

func (e *EarlyExitError) Unwrap() error { return e.WaitErr }

func (e *ResponseError) Error() string {
	return fmt.Sprintf("GET %s returned %q, expected %q", e.URL, e.Got, e.Want)
}

// New creates a supervisor from the plan's supervision settings.
func New(cfg plan.SuperviseConfig, stderr io.Writer) *Supervisor {
	return &Supervisor{
		Timeout:        cfg.Timeout(),
		Poll:           cfg.PollInterval(),
		RequestTimeout: cfg.RequestTimeout(),
		Client:         http.DefaultClient,
		logger:         log.NewWithOptions(stderr, log.Options{Prefix: "serve"}),
	}
}

// Check starts the artifact's server process in workdir, waits for its
// readiness marker, issues one HTTP GET against the artifact's URL and
// compares the body to the expected content. The process is terminated on
// every exit path, success included.
func (s *Supervisor) Check(ctx context.Context, command []string, workdir string, art plan.Artifact) (err error) {
	if len(command) == 0 {
		return fmt.Errorf("empty server command for artifact %s", art.Name)
	}

	logFile, err := os.CreateTemp("", "relcheck-serve-*.log")
	if err != nil {
		return fmt.Errorf("failed to create server log file: %w", err)
	}
	logPath := logFile.Name()
	defer os.Remove(logPath)
	defer logFile.Close()

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = workdir
	cmd.SysProcAttr = sysProcAttr()

	stop, startErr := s.start(cmd, art, logFile)
	if startErr != nil {
		return fmt.Errorf("failed to start server for artifact %s: %w", art.Name, startErr)
	}

	s.logger.Info("server started", "artifact", art.Name, "pid", cmd.Process.Pid, "log", logPath)

	var waitErr error
	done := make(chan struct{})
	go func() {
		waitErr = cmd.Wait()
		close(done)
	}()

	defer func() {
		if killErr := killProcess(cmd.Process.Pid); killErr != nil {
			s.logger.Debug("kill after supervision", "pid", cmd.Process.Pid, "err", killErr)
		}
		<-done
		stop()
		s.logger.Info("server stopped", "artifact", art.Name)
	}()

	if err := s.waitReady(ctx, logPath, art.Marker, done, &waitErr); err != nil {
		return err
	}

	return s.httpCheck(ctx, art)
}

// start launches the server with output captured to logFile, through a PTY
// when the artifact requests one. It returns a cleanup for the capture
// plumbing.
func (s *Supervisor) start(cmd *exec.Cmd, art plan.Artifact, logFile *os.File) (func(), error) {
	if art.PTY {
		return startPTY(cmd, logFile)
	}
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return func() {}, nil
}

// waitReady polls the captured log for the readiness marker until the
// deadline. A process exit before readiness is its own failure.
func (s *Supervisor) waitReady(ctx context.Context, logPath, marker string, done <-chan struct{}, waitErr *error) error {
	deadline := time.NewTimer(s.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.Poll)
	defer ticker.Stop()

	for {
		data, err := os.ReadFile(logPath)
		if err == nil && strings.Contains(string(data), marker) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return &EarlyExitError{LogTail: logTail(logPath), WaitErr: *waitErr}
		case <-deadline.C:
			return &ReadinessError{Marker: marker, Timeout: s.Timeout, LogTail: logTail(logPath)}
		case <-ticker.C:
		}
	}
}

// httpCheck issues the single GET and compares the trimmed body.
func (s *Supervisor) httpCheck(ctx context.Context, art plan.Artifact) error {
	reqCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, art.URL, nil)
	if err != nil {
		return fmt.Errorf("invalid check URL %s: %w", art.URL, err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("check request to %s failed: %w", art.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", art.URL, err)
	}

	if got := strings.TrimSpace(string(body)); got != art.Expect {
		return &ResponseError{URL: art.URL, Want: art.Expect, Got: got}
	}
	return nil
}

// logTail returns the last few lines of the captured server log, for error
// messages.
func logTail(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	const keep = 10
	if len(lines) > keep {
		lines = lines[len(lines)-keep:]
	}
	return strings.Join(lines, "\n")
}
