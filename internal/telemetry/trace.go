package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ordinex/ordinex/internal/detect"
	"github.com/ordinex/ordinex/internal/errors"
	"github.com/ordinex/ordinex/internal/mission"
)

// StartCommandSpan creates a span for a CLI command execution.
//
//	ctx, span := telemetry.StartCommandSpan(ctx, "breakdown")
//	defer span.End()
func StartCommandSpan(ctx context.Context, cmdName string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("commands")
	ctx, span := tracer.Start(ctx, "command."+cmdName)

	span.SetAttributes(
		attribute.String("command", cmdName),
		attribute.String("component", "cli"),
	)

	return ctx, span
}

// StartPipelineSpan creates a span for one pipeline stage ("detect" or
// "breakdown") of the given plan.
func StartPipelineSpan(ctx context.Context, stage, planID string, steps int) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("pipeline")
	ctx, span := tracer.Start(ctx, "pipeline."+stage)

	span.SetAttributes(
		attribute.String("plan.id", planID),
		attribute.Int("plan.steps", steps),
		attribute.String("component", "pipeline"),
	)

	return ctx, span
}

// RecordDetection attaches a detection outcome to span
func RecordDetection(span trace.Span, r detect.Result) {
	span.SetAttributes(
		attribute.Bool("detect.large_plan", r.LargePlan),
		attribute.Int("detect.score", r.Score),
		attribute.StringSlice("detect.risk_flags", r.Metrics.RiskFlags),
		attribute.StringSlice("detect.domains", r.Metrics.Domains),
	)
	span.SetStatus(codes.Ok, "")
}

// RecordBreakdown attaches a generated breakdown to span
func RecordBreakdown(span trace.Span, b *mission.Breakdown) {
	span.SetAttributes(
		attribute.String("breakdown.id", b.BreakdownID),
		attribute.Int("breakdown.missions", len(b.Missions)),
	)
	span.SetStatus(codes.Ok, "")
}

// RecordSuccess marks a span as successful with optional attributes
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError records err on span and sets error status. Coded errors
// also carry their error code.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if code := errors.CodeOf(err); code != "" {
		span.SetAttributes(attribute.String("error.code", string(code)))
	}
}
