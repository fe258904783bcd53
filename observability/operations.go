package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the tracer name for gorestore operations
	TracerName = "github.com/willibrandon/gorestore"
)

// Common attribute keys
const (
	AttrLibraryName    = attribute.Key("gorestore.library.name")
	AttrLibraryRange   = attribute.Key("gorestore.library.range")
	AttrLibraryVersion = attribute.Key("gorestore.library.version")
	AttrFramework      = attribute.Key("gorestore.framework")
	AttrRuntime        = attribute.Key("gorestore.runtime")
	AttrProvider       = attribute.Key("gorestore.provider")
	AttrWalkMode       = attribute.Key("gorestore.walk.mode")
	AttrLockFilePath   = attribute.Key("gorestore.lockfile.path")
	AttrMemoHit        = attribute.Key("gorestore.memo.hit")
)

// StartWalkSpan starts a span covering one graph walk.
func StartWalkSpan(ctx context.Context, root, framework, mode string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "resolver.walk",
		trace.WithAttributes(
			AttrLibraryName.String(root),
			AttrFramework.String(framework),
			AttrWalkMode.String(mode),
		),
	)
}

// StartDescribeSpan starts a span for one provider lookup.
func StartDescribeSpan(ctx context.Context, provider, libraryRange, framework string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "provider.describe",
		trace.WithAttributes(
			AttrProvider.String(provider),
			AttrLibraryRange.String(libraryRange),
			AttrFramework.String(framework),
		),
	)
}

// StartLockFileSpan starts a span for a lock file read or write.
func StartLockFileSpan(ctx context.Context, operation, path string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "lockfile."+operation,
		trace.WithAttributes(AttrLockFilePath.String(path)),
	)
}

// StartCompatibilitySpan starts a span for a compatibility check.
func StartCompatibilitySpan(ctx context.Context, targets int) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "compatibility.check",
		trace.WithAttributes(attribute.Int("gorestore.targets", targets)),
	)
}

// StartRestoreSpan starts a span covering a whole restore session.
func StartRestoreSpan(ctx context.Context, projectPath, sessionID string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "restore.run",
		trace.WithAttributes(
			attribute.String("project.path", projectPath),
			attribute.String("session.id", sessionID),
		),
	)
}

// RecordMemoHit records whether the current resolution came from the memo.
func RecordMemoHit(ctx context.Context, hit bool) {
	SetAttributes(ctx, AttrMemoHit.Bool(hit))
}

// EndSpanWithError ends a span with an error status
func EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
