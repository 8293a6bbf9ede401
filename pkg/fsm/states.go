package fsm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/client"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	"github.com/superfly/fsm"
)

// handleAccept loads the input files into a fresh session
func (m *Machine) handleAccept(ctx context.Context, req *fsm.Request[RunRequest, RunResponse]) (*fsm.Response[RunResponse], error) {
	slog.Info("fsm_state_accept", "run_id", req.Msg.RunID, "tool", req.Msg.Tool)

	resp := responseOf(req)
	if err := noRetry(ctx); err != nil {
		return nil, m.abort(req.Msg.RunID, resp, err)
	}

	sess, err := m.prepare(req.Msg)
	if err != nil {
		return nil, m.abort(req.Msg.RunID, resp, err)
	}

	resp.Tool = sess.Tool().Name
	resp.State = sess.State().String()
	return fsm.NewResponse(resp), nil
}

// handleSubmit sends the single request for this run
func (m *Machine) handleSubmit(ctx context.Context, req *fsm.Request[RunRequest, RunResponse]) (*fsm.Response[RunResponse], error) {
	slog.Info("fsm_state_submit", "run_id", req.Msg.RunID, "tool", req.Msg.Tool)

	resp := responseOf(req)
	if err := noRetry(ctx); err != nil {
		return nil, m.abort(req.Msg.RunID, resp, err)
	}

	// a resumed run has no in-memory session; rebuild it from the request
	sess, err := m.prepare(req.Msg)
	if err != nil {
		return nil, m.abort(req.Msg.RunID, resp, err)
	}

	res, err := sess.Submit(ctx)
	resp.State = sess.State().String()
	if err != nil {
		return nil, m.abort(req.Msg.RunID, resp, err)
	}

	resp.URLs = res.URLs
	resp.Text = res.Text
	slog.Info("fsm_submit_succeeded", "run_id", req.Msg.RunID, "url_count", len(res.URLs))
	return fsm.NewResponse(resp), nil
}

// handleSave downloads result images. A failed download is reported but
// does not fail the run.
func (m *Machine) handleSave(ctx context.Context, req *fsm.Request[RunRequest, RunResponse]) (*fsm.Response[RunResponse], error) {
	slog.Info("fsm_state_save", "run_id", req.Msg.RunID, "download", req.Msg.Download)

	resp := responseOf(req)
	if err := noRetry(ctx); err != nil {
		return nil, m.abort(req.Msg.RunID, resp, err)
	}

	if req.Msg.Download && len(resp.URLs) > 0 {
		sess, err := m.prepare(req.Msg)
		if err != nil {
			return nil, m.abort(req.Msg.RunID, resp, err)
		}

		saved, err := sess.DownloadURLs(ctx, resp.URLs)
		resp.Saved = saved
		if err != nil {
			resp.Notice = sess.Snapshot().Notice
			slog.Warn("fsm_save_incomplete", "run_id", req.Msg.RunID, "saved", len(saved), "error", err)
		}
	}

	m.finish(req.Msg.RunID, resp)
	return fsm.NewResponse(resp), nil
}

// prepare returns the run's session, creating and loading it when needed.
func (m *Machine) prepare(r *RunRequest) (*client.Session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[r.RunID]
	m.mu.Unlock()
	if ok {
		return sess, nil
	}

	tool, err := m.catalog.Lookup(r.Tool)
	if err != nil {
		return nil, err
	}

	sess = client.NewSession(tool, m.transport, m.images, client.WithSaver(m.saver), client.WithRunID(r.RunID))

	switch {
	case r.ImagePath != "":
		in, err := loadInput(r.ImagePath, m.images.MaxImageSize())
		if err != nil {
			return nil, err
		}
		if err := sess.AcceptImage(in); err != nil {
			return nil, err
		}
	case r.ImageURL != "":
		if err := sess.AcceptImageURL(r.ImageURL); err != nil {
			return nil, err
		}
	}

	if r.MaskPath != "" {
		in, err := loadInput(r.MaskPath, m.images.MaxImageSize())
		if err != nil {
			return nil, err
		}
		if err := sess.AcceptMask(in); err != nil {
			return nil, err
		}
	}

	if r.Prompt != "" {
		if err := sess.SetPrompt(r.Prompt); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	m.sessions[r.RunID] = sess
	m.mu.Unlock()
	return sess, nil
}

// loadInput reads at most limit+1 bytes so oversized files are still
// rejected by the session without being read whole.
func loadInput(path string, limit int64) (client.Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return client.Input{}, errors.Wrap(err, "failed to open input")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return client.Input{}, errors.Wrap(err, "failed to read input")
	}
	return client.Input{Name: filepath.Base(path), Data: data}, nil
}

func (m *Machine) abort(runID string, resp *RunResponse, err error) error {
	var cerr *client.Error
	if errors.As(err, &cerr) {
		resp.ErrorMessage = cerr.Message
	} else {
		resp.ErrorMessage = err.Error()
	}
	resp.State = client.StateFailed.String()

	slog.Error("fsm_run_aborted", "run_id", runID, "error", err)
	m.finish(runID, resp)
	return fsm.Abort(err)
}

func noRetry(ctx context.Context) error {
	if attempt := fsm.RetryFromContext(ctx); attempt > 0 {
		return fmt.Errorf("transition retried (attempt %d): runs are never retried", attempt)
	}
	return nil
}

func responseOf(req *fsm.Request[RunRequest, RunResponse]) *RunResponse {
	resp := req.W.Msg
	if resp == nil {
		resp = &RunResponse{}
	}
	return resp
}
