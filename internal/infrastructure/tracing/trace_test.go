package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/zvenigorodok/internal/shared/id"
)

func newObservedTracer(t *testing.T) (*Tracer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return New("ssr", zap.New(core)), logs
}

func TestStartSpanContinuesTrace(t *testing.T) {
	tracer, _ := newObservedTracer(t)
	defer tracer.Close()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	require.True(t, strings.HasPrefix(string(root.TraceID), "req_"))
	assert.Empty(t, root.ParentID)

	child, childCtx := tracer.StartSpan(ctx, "child")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))
}

func TestInjectExtractRoundTrip(t *testing.T) {
	traceID := TraceID(id.NewRequestID())
	spanID := SpanID(id.NewSpanID())
	ctx := WithTrace(context.Background(), traceID, spanID)

	headers := map[string]string{}
	InjectTraceContext(ctx, headers)

	gotTrace, gotSpan := ExtractTraceContext(headers)
	assert.Equal(t, traceID, gotTrace)
	assert.Equal(t, spanID, gotSpan)
	assert.Equal(t, "[trace:"+string(traceID)+" span:"+string(spanID)+"]", FormatTrace(gotTrace, gotSpan))
}

func TestExtractDropsForeignIDs(t *testing.T) {
	tests := []struct {
		name      string
		headers   map[string]string
		wantTrace bool
		wantSpan  bool
	}{
		{"none", map[string]string{}, false, false},
		{"free text trace", map[string]string{TraceHeader: "upstream-trace"}, false, false},
		{"span id as trace", map[string]string{TraceHeader: string(id.NewSpanID())}, false, false},
		{"span without trace", map[string]string{SpanHeader: string(id.NewSpanID())}, false, false},
		{"valid trace, bad span", map[string]string{TraceHeader: string(id.NewRequestID()), SpanHeader: "x\nlevel=error"}, true, false},
		{"valid pair", map[string]string{TraceHeader: string(id.NewRequestID()), SpanHeader: string(id.NewSpanID())}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			traceID, spanID := ExtractTraceContext(tt.headers)
			assert.Equal(t, tt.wantTrace, traceID != "")
			assert.Equal(t, tt.wantSpan, spanID != "")
		})
	}
}

func TestSpanLogsAreEmitted(t *testing.T) {
	tracer, logs := newObservedTracer(t)

	span, _ := tracer.StartSpan(context.Background(), "ssr.render")
	span.Log("export failed", map[string]interface{}{"export": "Body"})
	span.SetError(errors.New("render functions failed"))
	span.Finish()
	tracer.Submit(span)
	tracer.Close()

	entries := logs.FilterMessage("span completed with error").All()
	require.Len(t, entries, 1)
	events, ok := entries[0].ContextMap()["events"].([]interface{})
	require.True(t, ok)
	require.Len(t, events, 1)
	event := events[0].(map[string]interface{})
	assert.Equal(t, "export failed", event["message"])
	assert.Equal(t, "Body", event["export"])
}

func TestCloseFlushesSpans(t *testing.T) {
	tracer, logs := newObservedTracer(t)

	ok, _ := tracer.StartSpan(context.Background(), "ok")
	ok.Finish()
	tracer.Submit(ok)

	failed, _ := tracer.StartSpan(context.Background(), "failed")
	failed.SetError(errors.New("render failed"))
	failed.Finish()
	tracer.Submit(failed)

	tracer.Close()
	tracer.Close()

	assert.Equal(t, 1, logs.FilterMessage("span completed").Len())
	errs := logs.FilterMessage("span completed with error").All()
	require.Len(t, errs, 1)
	assert.Equal(t, "failed", errs[0].ContextMap()["operation"])

	// dropped silently after close
	tracer.Submit(ok)
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tracer, logs := newObservedTracer(t)

	var seen TraceID
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/health", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	upstream := string(id.NewRequestID())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(TraceHeader, upstream)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, TraceID(upstream), seen)
	assert.Equal(t, upstream, rec.Header().Get(TraceHeader))
	assert.True(t, strings.HasPrefix(rec.Header().Get(SpanHeader), "span_"))

	tracer.Close()

	entries := logs.FilterMessage("span completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/health", fields["operation"])
	assert.Equal(t, "204", fields["http.status"])
}
