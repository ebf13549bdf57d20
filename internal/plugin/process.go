package plugin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"sync"
	"time"

	"github.com/kiorg/kiorg/internal/debug"
)

const (
	handshakeTimeout = 2 * time.Second
	callTimeout      = 5 * time.Second
)

// PluginState discriminates a LoadedPlugin's lifecycle state.
type PluginState int

const (
	StateLoaded PluginState = iota
	StateError
)

// LoadedPlugin is one running plugin child process plus the metadata it
// announced at handshake. A plugin that enters StateError stays resident
// (so its failure is visible) but every subsequent call short-circuits.
type LoadedPlugin struct {
	Name     string
	Metadata PluginMetadata
	Pattern  *regexp.Regexp

	mu    sync.Mutex
	cmd   *exec.Cmd
	stdin io.WriteCloser
	stdout io.ReadCloser
	stderr *bytes.Buffer
	state  PluginState
	lastErr string
}

// FailedPlugin records a plugin that could not be loaded or that failed
// handshake, kept around so its error is visible to the user.
type FailedPlugin struct {
	Path     string
	Error    string
	Metadata *PluginMetadata // non-nil only for a VersionIncompatible handshake
}

// spawnAndHandshake launches the executable at path and performs the
// Hello handshake. On any failure the child is killed and reaped before
// returning.
func spawnAndHandshake(ctx context.Context, path string) (*LoadedPlugin, *FailedPlugin) {
	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &FailedPlugin{Path: path, Error: fmt.Sprintf("stdin pipe: %v", err)}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &FailedPlugin{Path: path, Error: fmt.Sprintf("stdout pipe: %v", err)}
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, &FailedPlugin{Path: path, Error: fmt.Sprintf("start: %v", err)}
	}

	lp := &LoadedPlugin{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	hctx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	resp, err := lp.call(hctx, helloFrame())
	if err != nil {
		lp.kill()
		return nil, &FailedPlugin{Path: path, Error: fmt.Sprintf("handshake: %v; stderr: %s", err, stderr.String())}
	}

	switch resp.tag {
	case tagHelloResponse:
		if majorVersion(resp.metadata.ProtocolVersion) != majorVersion(ProtocolVersion) {
			lp.kill()
			return nil, &FailedPlugin{
				Path:     path,
				Error:    fmt.Sprintf("protocol version mismatch: host %s, plugin %s", ProtocolVersion, resp.metadata.ProtocolVersion),
				Metadata: &resp.metadata,
			}
		}
		pattern, err := regexp.Compile(resp.metadata.FilePattern)
		if err != nil {
			lp.kill()
			return nil, &FailedPlugin{Path: path, Error: fmt.Sprintf("invalid file_pattern %q: %v", resp.metadata.FilePattern, err)}
		}
		lp.Name = resp.metadata.Name
		lp.Metadata = resp.metadata
		lp.Pattern = pattern
		return lp, nil
	case tagIncompatible:
		lp.kill()
		return nil, &FailedPlugin{
			Path:     path,
			Error:    fmt.Sprintf("version incompatible: host %s, plugin declared %s", ProtocolVersion, resp.protoVer),
			Metadata: &resp.metadata,
		}
	default:
		lp.kill()
		return nil, &FailedPlugin{Path: path, Error: fmt.Sprintf("unexpected handshake response %q", resp.tag)}
	}
}

// Preview sends a Preview or PreviewPopup command and waits for one
// response, returning its wire components unconverted. A plugin stuck
// in StateError short-circuits without touching the child.
func (lp *LoadedPlugin) Preview(ctx context.Context, path string, popup bool) ([]WireComponent, error) {
	lp.mu.Lock()
	if lp.state == StateError {
		err := fmt.Errorf("plugin %s: %s", lp.Name, lp.lastErr)
		lp.mu.Unlock()
		return nil, err
	}
	lp.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var frame map[string]interface{}
	if popup {
		frame = previewPopupFrame(path, 0)
	} else {
		frame = previewFrame(path)
	}

	resp, err := lp.call(cctx, frame)
	if err != nil {
		lp.markError(err.Error())
		return nil, err
	}

	switch resp.tag {
	case tagPreviewResponse:
		return resp.components, nil
	case tagError:
		lp.markError(resp.errMessage)
		return nil, fmt.Errorf("plugin %s: %s", lp.Name, resp.errMessage)
	default:
		err := fmt.Errorf("plugin %s: unexpected response %q", lp.Name, resp.tag)
		lp.markError(err.Error())
		return nil, err
	}
}

// call runs one request/response round trip over the child's
// stdin/stdout, doing the blocking I/O on a helper goroutine so the
// caller's context can still cancel the wait. It copies the pipe handles
// under lp.mu but does not hold the lock during the I/O, and the handles
// stay on lp, so concurrent calls are not serialized against each other.
// A panic in the helper goroutine is returned as an error.
func (lp *LoadedPlugin) call(ctx context.Context, frame map[string]interface{}) (response, error) {
	lp.mu.Lock()
	stdin, stdout := lp.stdin, lp.stdout
	lp.mu.Unlock()

	type result struct {
		resp response
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("plugin %s: call panicked: %v", lp.Name, r)}
			}
		}()
		if err := encodeFrame(stdin, frame); err != nil {
			done <- result{err: err}
			return
		}
		body, err := decodeFrame(stdout)
		if err != nil {
			done <- result{err: fmt.Errorf("read response: %w", err)}
			return
		}
		resp, err := decodeResponse(body)
		done <- result{resp: resp, err: err}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

func (lp *LoadedPlugin) markError(msg string) {
	lp.mu.Lock()
	lp.state = StateError
	lp.lastErr = msg
	lp.mu.Unlock()
	debug.Log(debug.PLUGIN, "plugin %s entered error state: %s", lp.Name, msg)
}

// kill terminates and reaps the child, ignoring errors since the process
// may already have exited.
func (lp *LoadedPlugin) kill() {
	if lp.cmd != nil && lp.cmd.Process != nil {
		_ = lp.cmd.Process.Kill()
		_ = lp.cmd.Wait()
	}
}

// Close kills the child and waits for it to be reaped.
func (lp *LoadedPlugin) Close() {
	lp.kill()
}
