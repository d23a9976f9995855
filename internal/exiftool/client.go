// Package exiftool drives a single long-lived exiftool process in
// stay-open mode. Every request is written as a batch of argument lines
// terminated by -execute; the response is everything exiftool prints up to
// the "{ready}" sentinel.
package exiftool

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"media-dater/internal/media"
)

// Sentinel terminates every exiftool response in stay-open mode.
const Sentinel = "{ready}\n"

const (
	readChunk       = 4096
	shutdownTimeout = 5 * time.Second
)

// Client owns one exiftool process. Calls are serialized; the process
// cannot interleave batches.
type Client struct {
	cmd        *exec.Cmd
	stderrDone chan struct{}

	w      *bufio.Writer
	stdin  io.Closer
	r      io.Reader
	logger *zap.Logger

	mu     sync.Mutex
	closed bool

	closeOnce sync.Once
	closeErr  error
}

// Open starts executable in stay-open mode, reading arguments from stdin.
// The returned client must be closed exactly once, typically with defer.
func Open(executable string, logger *zap.Logger) (*Client, error) {
	cmd := exec.Command(executable, "-stay_open", "True", "-@", "-")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &ProcessStartError{Executable: executable, Err: fmt.Errorf("stdin pipe: %w", err)}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, &ProcessStartError{Executable: executable, Err: fmt.Errorf("stdout pipe: %w", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdout.Close()
		return nil, &ProcessStartError{Executable: executable, Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		stderr.Close()
		return nil, &ProcessStartError{Executable: executable, Err: err}
	}

	c := NewClient(stdin, stdout, logger)
	c.cmd = cmd
	c.stderrDone = make(chan struct{})
	go c.drainStderr(stderr)

	c.logger.Debug("started exiftool",
		zap.Strings("args", cmd.Args),
		zap.Int("pid", cmd.Process.Pid),
	)
	return c, nil
}

// NewClient speaks the stay-open protocol over an existing pair of pipes:
// requests go to w, responses are read from r. If w is an io.Closer it is
// closed by Close.
func NewClient(w io.Writer, r io.Reader, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		w:      bufio.NewWriter(w),
		r:      r,
		logger: logger,
	}
	if closer, ok := w.(io.Closer); ok {
		c.stdin = closer
	}
	return c
}

// drainStderr forwards exiftool's diagnostics to the log.
func (c *Client) drainStderr(stderr io.Reader) {
	defer close(c.stderrDone)
	sc := bufio.NewScanner(stderr)
	for sc.Scan() {
		c.logger.Warn("exiftool stderr", zap.String("line", sc.Text()))
	}
}

// Execute sends one batch of argument lines followed by -execute and blocks
// until the complete response has been read. The sentinel is stripped from
// the returned output. There is no timeout: a stalled exiftool blocks the
// caller.
func (c *Client) Execute(args ...string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", ErrClosed
	}

	c.logger.Debug("exiftool execute", zap.Strings("args", args))

	lines := make([]string, 0, len(args)+1)
	lines = append(lines, args...)
	lines = append(lines, "-execute\n")
	if _, err := c.w.WriteString(strings.Join(lines, "\n")); err != nil {
		return "", fmt.Errorf("write exiftool request: %w", err)
	}
	if err := c.w.Flush(); err != nil {
		return "", fmt.Errorf("flush exiftool request: %w", err)
	}

	return c.readResponse()
}

// readResponse accumulates reads until the buffer ends with the sentinel.
// A single read may return any fragment of the response.
func (c *Client) readResponse() (string, error) {
	var out bytes.Buffer
	buf := make([]byte, readChunk)
	sentinel := []byte(Sentinel)

	for !bytes.HasSuffix(out.Bytes(), sentinel) {
		n, err := c.r.Read(buf)
		out.Write(buf[:n])
		if err == nil {
			continue
		}
		if bytes.HasSuffix(out.Bytes(), sentinel) {
			break
		}
		if errors.Is(err, io.EOF) {
			return "", ErrProcessExited
		}
		return "", fmt.Errorf("read exiftool response: %w", err)
	}

	return string(out.Bytes()[:out.Len()-len(sentinel)]), nil
}

// Run executes a queued write command and returns exiftool's raw output.
func (c *Client) Run(cmd Command) (string, error) {
	return c.Execute(cmd.Args()...)
}

// ReadMetadata returns all metadata of the given files, one record per path
// in the same order. Tag names are group-qualified and values untranslated.
func (c *Client) ReadMetadata(paths ...string) ([]media.Record, error) {
	args := append([]string{"-G", "-j", "-n"}, paths...)
	return c.readRecords(args, paths)
}

// ReadTimeMetadata is ReadMetadata restricted to time-related tags.
func (c *Client) ReadTimeMetadata(paths ...string) ([]media.Record, error) {
	args := append([]string{"-G", "-j", "-n", "-time:all"}, paths...)
	return c.readRecords(args, paths)
}

func (c *Client) readRecords(args, paths []string) ([]media.Record, error) {
	out, err := c.Execute(args...)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(out)
	if err != nil {
		return nil, &MetadataParseError{Paths: paths, Err: err}
	}
	if len(recs) != len(paths) {
		return nil, &MetadataParseError{
			Paths: paths,
			Err:   fmt.Errorf("got %d records for %d paths", len(recs), len(paths)),
		}
	}
	return recs, nil
}

// ReadText returns exiftool's default human-readable listing for a file.
func (c *Client) ReadText(path string) (string, error) {
	return c.Execute(path)
}

// WriteMetadata assigns each tag on the file, prefixed by any extra flags
// such as -overwrite_original. The raw output is returned for the caller to
// inspect; exiftool reports per-file failures there rather than as an
// error.
func (c *Client) WriteMetadata(path string, tags map[string]string, flags ...string) (string, error) {
	return c.Run(Command{Flags: flags, Tags: tags, Path: path})
}

// Close asks exiftool to exit and waits for it, killing it if it does not
// stop in time. Only the first call has any effect.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.shutdown()
	})
	return c.closeErr
}

func (c *Client) shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true

	_, err := c.w.WriteString("-stay_open\nFalse\n")
	if err == nil {
		err = c.w.Flush()
	}
	if c.stdin != nil {
		if cerr := c.stdin.Close(); err == nil {
			err = cerr
		}
	}
	if c.cmd == nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		<-c.stderrDone
		done <- c.cmd.Wait()
	}()

	select {
	case werr := <-done:
		if err == nil {
			err = werr
		}
	case <-time.After(shutdownTimeout):
		c.logger.Warn("exiftool did not exit, killing it", zap.Int("pid", c.cmd.Process.Pid))
		if kerr := c.cmd.Process.Kill(); err == nil {
			err = kerr
		}
	}
	c.logger.Debug("exiftool stopped")
	return err
}
