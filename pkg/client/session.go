// Package client is the capture-and-render side of a tool: it accepts one
// image, mask or prompt, validates and encodes it, sends a single request to
// the proxy and keeps the outcome for display or download.
//
// A Session tracks one tool instance. Only one request is in flight per
// session; Submit while loading does nothing.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/api"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/catalog"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/media"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/result"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/security"
	"github.com/google/uuid"
)

const (
	msgLoadFailed     = "Failed to load the file. Please try again."
	msgDownloadFailed = "Failed to download the image. Please try again."
	msgInvalidURL     = "Please provide a valid http(s) image URL."
	msgUploadRequired = "This tool needs an uploaded image file. Please upload a JPEG or PNG image."
	maxDownloadSize   = 64 * 1024 * 1024
)

// Input is a file picked by the user.
type Input struct {
	Name     string
	MIMEType string
	Data     []byte
}

// View is a read-only snapshot for rendering.
type View struct {
	Tool     string
	RunID    string
	State    State
	Result   *result.Result
	Error    string
	Notice   string
	HasImage bool
	HasMask  bool
	Prompt   string
}

// Session holds the input and outcome of one tool instance.
type Session struct {
	tool      catalog.Tool
	transport Transport
	images    *security.Validator
	saver     Saver
	http      *http.Client
	newRunID  func() string

	mu     sync.Mutex
	state  State
	image  string
	mask   string
	prompt string
	res    *result.Result
	runID  string
	errMsg string
	notice string
}

// Option configures a Session.
type Option func(*Session)

// WithSaver sets where Download stores results. Defaults to the working directory.
func WithSaver(s Saver) Option {
	return func(sess *Session) { sess.saver = s }
}

// WithRunID archives every result of the session under id instead of a
// fresh id per submission.
func WithRunID(id string) Option {
	return func(sess *Session) { sess.newRunID = func() string { return id } }
}

// WithHTTPClient sets the client used to fetch result URLs.
func WithHTTPClient(c *http.Client) Option {
	return func(sess *Session) { sess.http = c }
}

// NewSession creates an idle session for tool.
func NewSession(tool catalog.Tool, transport Transport, images *security.Validator, opts ...Option) *Session {
	s := &Session{
		tool:      tool,
		transport: transport,
		images:    images,
		saver:     FileSaver{Dir: "."},
		http:      http.DefaultClient,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tool returns the session's tool record.
func (s *Session) Tool() catalog.Tool {
	return s.tool
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns everything a renderer needs.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Tool:     s.tool.Name,
		RunID:    s.runID,
		State:    s.state,
		Error:    s.errMsg,
		Notice:   s.notice,
		HasImage: s.image != "",
		HasMask:  s.mask != "",
		Prompt:   s.prompt,
	}
	if s.res != nil {
		r := *s.res
		r.URLs = append([]string(nil), s.res.URLs...)
		v.Result = &r
	}
	return v
}

// AcceptImage validates and encodes the main image.
func (s *Session) AcceptImage(in Input) error {
	return s.acceptFile(&s.image, in)
}

// AcceptMask validates and encodes the mask painted over the image.
func (s *Session) AcceptMask(in Input) error {
	return s.acceptFile(&s.mask, in)
}

// AcceptImageURL uses a remote image instead of an upload.
func (s *Session) AcceptImageURL(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoading {
		return ErrRequestInFlight
	}
	if !media.IsRemoteURL(url) {
		return s.rejectLocked(msgInvalidURL, media.ErrInvalidImage)
	}
	if s.tool.InlineImages {
		return s.rejectLocked(msgUploadRequired, errors.Wrapf(media.ErrInvalidImage, "%s takes uploaded images only", s.tool.Name))
	}

	s.image = url
	s.inputChangedLocked()
	return nil
}

// SetPrompt stores the prompt text as-is.
func (s *Session) SetPrompt(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoading {
		return ErrRequestInFlight
	}
	s.prompt = text
	s.inputChangedLocked()
	return nil
}

func (s *Session) acceptFile(dst *string, in Input) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoading {
		return ErrRequestInFlight
	}

	if len(in.Data) == 0 {
		return s.rejectLocked(msgLoadFailed, fmt.Errorf("file %q is empty", in.Name))
	}

	mimeType := strings.ToLower(in.MIMEType)
	if mimeType == "" {
		mimeType = media.Sniff(in.Data)
	}
	if err := s.images.ValidateMIMEType(mimeType); err != nil {
		return s.rejectLocked(unsupportedTypeMessage(), err)
	}
	if err := s.images.ValidateFileSize(int64(len(in.Data))); err != nil {
		return s.rejectLocked(tooLargeMessage(s.images.MaxImageSize()), err)
	}

	*dst = media.Encode(mimeType, in.Data)
	s.inputChangedLocked()

	slog.Debug("client_input_accepted", "tool", s.tool.Name, "name", in.Name, "mime_type", mimeType, "size_kb", len(in.Data)/1024)
	return nil
}

// inputChangedLocked re-arms submission after a result or failure. The
// previous result stays visible until the next submission replaces it.
func (s *Session) inputChangedLocked() {
	if s.state == StateSucceeded || s.state == StateFailed {
		s.state = StateIdle
	}
	s.errMsg = ""
}

func (s *Session) rejectLocked(message string, cause error) error {
	s.state = StateFailed
	s.errMsg = message
	slog.Warn("client_input_rejected", "tool", s.tool.Name, "error", cause)
	return &Error{Kind: KindValidation, Message: message, Err: cause}
}

func unsupportedTypeMessage() string {
	return "Unsupported file type. Please upload a JPEG or PNG image."
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("The file is too large. The maximum size is %d MB.", limit/1024/1024)
}

// Submit sends the current input to the proxy. It is a no-op returning
// ErrRequestInFlight while a request is loading.
func (s *Session) Submit(ctx context.Context) (*result.Result, error) {
	s.mu.Lock()
	switch s.state {
	case StateLoading:
		s.mu.Unlock()
		return nil, ErrRequestInFlight
	case StateSucceeded:
		s.mu.Unlock()
		return nil, ErrNoNewInput
	}

	req := api.Request{Image: s.image, Mask: s.mask, Prompt: s.prompt}.For(s.tool)
	if missing := s.tool.Missing(req.Fields()); len(missing) > 0 {
		s.state = StateFailed
		s.errMsg = s.tool.MissingInputMessage
		s.mu.Unlock()
		return nil, &Error{Kind: KindValidation, Message: s.tool.MissingInputMessage, Err: fmt.Errorf("missing fields %v", missing)}
	}
	s.state = StateLoading
	s.errMsg = ""
	s.notice = ""
	s.mu.Unlock()

	slog.Info("client_submit", "tool", s.tool.Name)
	reply, err := s.transport.Invoke(ctx, s.tool.Name, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		return nil, s.failLocked(KindTransport, s.tool.TransportErrorMessage, err)
	}
	if reply.Body.Error != "" {
		return nil, s.failLocked(KindProvider, reply.Body.Error, fmt.Errorf("status %d", reply.Status))
	}
	if reply.Status < 200 || reply.Status > 299 {
		return nil, s.failLocked(KindTransport, s.tool.TransportErrorMessage, fmt.Errorf("unexpected status %d", reply.Status))
	}

	var raw any = reply.Body.Output
	if s.tool.Result == result.ShapeText {
		raw = reply.Body.Text
	}
	res := result.Normalize(s.tool.Result, raw)
	if res.Kind != result.Ok {
		return nil, s.failLocked(KindProvider, s.tool.FailureMessage, fmt.Errorf("%s response: %s", res.Kind, res.Reason))
	}

	s.state = StateSucceeded
	s.res = &res
	s.runID = s.newRunID()
	slog.Info("client_submit_succeeded", "tool", s.tool.Name, "url_count", len(res.URLs))

	out := res
	out.URLs = append([]string(nil), res.URLs...)
	return &out, nil
}

func (s *Session) failLocked(kind ErrorKind, message string, cause error) error {
	s.state = StateFailed
	s.errMsg = message
	s.res = nil
	slog.Warn("client_submit_failed", "tool", s.tool.Name, "kind", kind.String(), "error", cause)
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Reset clears input, output and error and returns to Idle.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateLoading {
		return ErrRequestInFlight
	}
	s.state = StateIdle
	s.image, s.mask, s.prompt = "", "", ""
	s.res = nil
	s.runID = ""
	s.errMsg, s.notice = "", ""
	return nil
}

// Download fetches url and stores it as <tool>/<run id>/<filename>, with the
// tool's default name when filename is empty. Failure is reported as a
// notice and never changes State.
func (s *Session) Download(ctx context.Context, url, filename string) (string, error) {
	if filename == "" {
		filename = s.tool.DownloadName
	}

	location, err := s.download(ctx, url, s.archiveName(filename))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.notice = msgDownloadFailed
		slog.Warn("client_download_failed", "tool", s.tool.Name, "url", url, "error", err)
		return "", &Error{Kind: KindTransport, Message: msgDownloadFailed, Err: err}
	}
	s.notice = ""
	slog.Info("client_download_saved", "tool", s.tool.Name, "location", location)
	return location, nil
}

// DownloadAll saves every URL of the current result.
func (s *Session) DownloadAll(ctx context.Context) ([]string, error) {
	view := s.Snapshot()
	if view.Result == nil {
		return nil, nil
	}
	return s.DownloadURLs(ctx, view.Result.URLs)
}

// DownloadURLs saves urls under the tool's download name, numbered when
// there is more than one. It stops at the first failure.
func (s *Session) DownloadURLs(ctx context.Context, urls []string) ([]string, error) {
	locations := make([]string, 0, len(urls))
	for i, u := range urls {
		name := s.tool.DownloadName
		if len(urls) > 1 {
			ext := filepath.Ext(name)
			name = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), i+1, ext)
		}
		location, err := s.Download(ctx, u, name)
		if err != nil {
			return locations, err
		}
		locations = append(locations, location)
	}
	return locations, nil
}

// archiveName keys a download by tool and submission so later runs never
// overwrite earlier results.
func (s *Session) archiveName(filename string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runID == "" {
		s.runID = s.newRunID()
	}
	return path.Join(s.tool.Name, s.runID, path.Base(filename))
}

func (s *Session) download(ctx context.Context, url, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "build download request")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "fetch result")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch result: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return "", errors.Wrap(err, "read result")
	}
	if len(data) > maxDownloadSize {
		return "", fmt.Errorf("result larger than %d bytes", maxDownloadSize)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = media.Sniff(data)
	}
	return s.saver.Save(ctx, filename, contentType, data)
}
