package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/api"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/catalog"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/db"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/media"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/result"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// call tracks one invocation from request to recorded outcome.
type call struct {
	tool  catalog.Tool
	id    string
	start time.Time
	log   *slog.Logger
}

// invoke is the generic pipeline every tool route runs.
func (s *Server) invoke(t catalog.Tool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl := &call{tool: t, id: uuid.NewString(), start: time.Now()}
		cl.log = slog.With("tool", t.Name, "request_id", cl.id)
		c.Header("X-Request-Id", cl.id)

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes)

		var req api.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.fail(c, cl, http.StatusRequestEntityTooLarge, msgRequestTooLarge, err.Error())
				return
			}
			s.fail(c, cl, http.StatusBadRequest, msgInvalidBody, err.Error())
			return
		}

		req = req.For(t)
		fields := req.Fields()
		if missing := t.Missing(fields); len(missing) > 0 {
			s.fail(c, cl, http.StatusBadRequest, t.RequiredFieldsMessage, fmt.Sprintf("missing fields %v", missing))
			return
		}

		if err := s.validate.Struct(req); err != nil {
			var errs validator.ValidationErrors
			if errors.As(err, &errs) && len(errs) > 0 {
				s.fail(c, cl, http.StatusBadRequest, fieldMessage(errs[0]), errs.Error())
				return
			}
			s.fail(c, cl, http.StatusBadRequest, msgInvalidBody, err.Error())
			return
		}

		for _, f := range []catalog.Field{catalog.FieldImage, catalog.FieldMask} {
			if !t.Requires(f) {
				continue
			}
			remote, err := s.checkImage(fields[f])
			if err != nil {
				s.fail(c, cl, http.StatusBadRequest, fmt.Sprintf("The %s must be a supported image within the size limit.", f), err.Error())
				return
			}
			if remote && t.InlineImages {
				s.fail(c, cl, http.StatusBadRequest, fmt.Sprintf("The %s must be uploaded as a data URI for this tool.", f), "remote image for an inline-only tool")
				return
			}
		}

		ctx := c.Request.Context()
		p, err := s.providers(ctx, t.Backend)
		if err != nil {
			s.fail(c, cl, http.StatusInternalServerError, t.ProviderErrorMessage, err.Error())
			return
		}

		cl.log.Info("proxy_invocation_started", "model", t.Model)
		raw, err := p.Run(ctx, t.Model, t.Input(fields))
		if err != nil {
			s.fail(c, cl, http.StatusInternalServerError, t.ProviderErrorMessage, err.Error())
			return
		}

		res := result.Normalize(t.Result, raw)
		if res.Kind != result.Ok {
			s.fail(c, cl, http.StatusInternalServerError, t.FailureMessage, fmt.Sprintf("%s output: %s", res.Kind, res.Reason))
			return
		}

		s.succeed(c, cl, res)
	}
}

// checkImage re-applies the upload rules to inline images and reports
// whether value is a remote URL, which is passed through unchecked.
func (s *Server) checkImage(value string) (bool, error) {
	img, err := media.Parse(value)
	if err != nil {
		return false, err
	}
	if img.Remote() {
		return true, nil
	}
	return false, s.images.ValidateImage(img.MIMEType, img.Size())
}

func (s *Server) succeed(c *gin.Context, cl *call, res result.Result) {
	var (
		body   api.Response
		output string
	)
	switch res.Shape {
	case result.ShapeURL:
		body.Output = res.URLs[0]
		output = res.URLs[0]
	case result.ShapeURLList:
		body.Output = res.URLs
		encoded, _ := json.Marshal(res.URLs)
		output = string(encoded)
	case result.ShapeText:
		body.Text = res.Text
		output = res.Text
	}

	cl.log.Info("proxy_invocation_succeeded",
		"duration_ms", time.Since(cl.start).Milliseconds(),
		"url_count", len(res.URLs))

	c.JSON(StatusSuccess, body)
	s.record(c, cl, &db.Invocation{
		Status:     db.StatusSucceeded,
		HTTPStatus: StatusSuccess,
		Output:     output,
	})
}

// fail answers with the public message and logs the internal detail.
func (s *Server) fail(c *gin.Context, cl *call, status int, message, detail string) {
	if status >= http.StatusInternalServerError {
		cl.log.Error("proxy_invocation_failed", "status", status, "error", detail,
			"duration_ms", time.Since(cl.start).Milliseconds())
	} else {
		cl.log.Warn("proxy_invocation_rejected", "status", status, "error", detail)
	}

	c.JSON(status, api.Response{Error: message})
	s.record(c, cl, &db.Invocation{
		Status:       db.StatusFailed,
		HTTPStatus:   status,
		ErrorMessage: detail,
	})
}

func (s *Server) record(c *gin.Context, cl *call, inv *db.Invocation) {
	if s.history == nil {
		return
	}

	inv.ID = cl.id
	inv.Tool = cl.tool.Name
	inv.Model = cl.tool.Model
	inv.DurationMS = time.Since(cl.start).Milliseconds()

	ctx := context.WithoutCancel(c.Request.Context())
	if err := s.history.Create(ctx, inv); err != nil {
		cl.log.Warn("proxy_history_write_failed", "error", err)
	}
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "datauri|url":
		return fmt.Sprintf("The %s must be a data URI or an http(s) URL.", field)
	case "max":
		return fmt.Sprintf("The %s is too long.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}
