package tracing

import (
	"context"
	"encoding/json"
	"runtime/debug"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/log"

	"github.com/sageimap/goimap/internal/logger"
)

const (
	SpanTagComponent      = "component"
	SpanTagConnectionKey  = "connection.key"
	SpanTagMailbox        = "mailbox"
	SpanTagMessageCount   = "message.count"
)

const (
	SpanTagComponentConnection = "connection"
	SpanTagComponentPool       = "pool"
	SpanTagComponentMailbox    = "mailboxService"
)

// StartTracerSpan starts a span with no parent other than whatever is
// already in ctx, mirroring the teacher's service-call convention.
func StartTracerSpan(ctx context.Context, operationName string) (opentracing.Span, context.Context) {
	return opentracing.StartSpanFromContext(ctx, operationName)
}

func SetDefaultConnectionSpanTags(span opentracing.Span, connectionKey string) {
	TagComponentConnection(span)
	TagConnectionKey(span, connectionKey)
}

func SetDefaultMailboxSpanTags(span opentracing.Span, mailbox string) {
	TagComponentMailbox(span)
	TagMailbox(span, mailbox)
}

func TraceErr(span opentracing.Span, err error, fields ...log.Field) {
	if span == nil || err == nil {
		return
	}
	ext.LogError(span, err, fields...)
}

func LogObjectAsJson(span opentracing.Span, name string, object any) {
	if object == nil {
		span.LogFields(log.String(name, "nil"))
		return
	}
	jsonObject, err := json.Marshal(object)
	if err == nil {
		span.LogFields(log.String(name, string(jsonObject)))
	} else {
		span.LogFields(log.Object(name, object))
	}
}

func TagComponentConnection(span opentracing.Span) {
	span.SetTag(SpanTagComponent, SpanTagComponentConnection)
}

func TagComponentPool(span opentracing.Span) {
	span.SetTag(SpanTagComponent, SpanTagComponentPool)
}

func TagComponentMailbox(span opentracing.Span) {
	span.SetTag(SpanTagComponent, SpanTagComponentMailbox)
}

func TagConnectionKey(span opentracing.Span, key string) {
	if key != "" {
		span.SetTag(SpanTagConnectionKey, key)
	}
}

func TagMailbox(span opentracing.Span, mailbox string) {
	if mailbox != "" {
		span.SetTag(SpanTagMailbox, mailbox)
	}
}

func TagMessageCount(span opentracing.Span, count int) {
	span.SetTag(SpanTagMessageCount, count)
}

// RecoverAndLogToJaeger is installed as a deferred call at the top of the
// health monitor's goroutine so a panic there surfaces as a span instead of
// crashing the process silently.
func RecoverAndLogToJaeger(appLogger logger.Logger) {
	if r := recover(); r != nil {
		tracer := opentracing.GlobalTracer()
		span := tracer.StartSpan("panic-recovery")
		defer span.Finish()

		stackTrace := string(debug.Stack())
		span.LogKV(
			"event", "error",
			"error.object", r,
			"stack", stackTrace,
		)
		span.SetTag("error", true)

		appLogger.Errorw("recovered from panic", "panic", r, "stack", stackTrace)
	}
}
