package http

import (
	"bytes"
	"context"
	"errors"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/zvenigorodok/internal/ssr"
)

// Page renders the page for the request URI. It serves every GET that no
// other route matched; other methods get 404. Compression is left to
// middleware.Compress.
func (h *Handlers) Page(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.String(http.StatusNotFound, "404 page not found")
		return
	}

	params, err := ssr.NewPageParams(c.Request.RequestURI).Encode()
	if err != nil {
		h.serveError(c, err)
		return
	}

	ctx := c.Request.Context()
	if h.cfg.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.RenderTimeout)
		defer cancel()
	}

	var span *tracing.Span
	if h.tracer != nil {
		span, ctx = h.tracer.StartSpan(ctx, "ssr.render")
		span.SetTag("location", c.Request.RequestURI)
	}

	page, err := h.renderer.RenderToString(ctx, params)
	if span != nil {
		h.finishRenderSpan(span, err)
	}
	if err != nil {
		h.logger.Error("Page render failed",
			zap.String("uri", c.Request.RequestURI),
			zap.String("trace_id", string(tracing.GetTraceID(c.Request.Context()))),
			zap.Error(err))
		h.serveError(c, err)
		return
	}

	serveHTML(c, page)
}

// finishRenderSpan records every failed export as a span event.
func (h *Handlers) finishRenderSpan(span *tracing.Span, err error) {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			var ee *ssr.ExportError
			if errors.As(e, &ee) {
				span.Log("export failed", map[string]interface{}{
					"export": ee.Name,
					"error":  ee.Err.Error(),
				})
			}
		}
	}
	if err != nil {
		span.SetError(err)
	}
	span.Finish()
	h.tracer.Submit(span)
}

func serveHTML(c *gin.Context, page string) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (h *Handlers) serveError(c *gin.Context, err error) {
	_ = c.Error(err)

	data := errorData{
		Message: "Internal Server Error",
		IsDev:   h.cfg.IsDev,
	}
	reqCtx := c.Request.Context()
	if traceID := tracing.GetTraceID(reqCtx); traceID != "" {
		data.Reference = tracing.FormatTrace(traceID, tracing.GetSpanID(reqCtx))
	}
	if err != nil {
		data.Message = err.Error()
	}

	var merr *multierror.Error
	if errors.As(err, &merr) {
		data.Message = "render functions failed"
		for _, e := range merr.Errors {
			data.Errors = append(data.Errors, e.Error())
		}
	}

	var buf bytes.Buffer
	if tmplErr := ErrorTemplate.Execute(&buf, data); tmplErr != nil {
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8",
			[]byte("<!doctype html><html><body><pre>"+html.EscapeString(data.Message)+"</pre></body></html>"))
		return
	}

	c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", buf.Bytes())
}
