// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package horizon

import (
	"context"
	"fmt"

	"github.com/telekom/horizon/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// wrapError wraps an error with a message and logs it.
// It also records the error in the current OpenTelemetry span.
func wrapError(ctx context.Context, err error, msg string, args ...any) error {
	if err == nil {
		return nil
	}
	log := logger.FromContext(ctx)
	span := trace.SpanFromContext(ctx)
	caser := cases.Title(language.English)
	text := fmt.Sprintf(msg, args...)

	log.ErrorContext(ctx, caser.String(text), "error", err)
	span.SetStatus(codes.Error, fmt.Sprintf("%s: %v", text, err))
	span.RecordError(err)
	return fmt.Errorf("%s: %w", text, err)
}

// logResult logs the steps of a search in a structured format.
func logResult(ctx context.Context, res Result) {
	log := logger.FromContext(ctx)
	for _, step := range res.Steps {
		log.DebugContext(ctx, step.Outcome.Message, "bounds", step.Bounds.String())
	}
	log.InfoContext(ctx, res.String(),
		"horizon", res.Horizon,
		"reached", res.Reached,
		"unreachable", res.Unreachable,
		"probes", len(res.Steps),
		"duration", res.Duration,
	)
	trace.SpanFromContext(ctx).AddEvent("Search finished", trace.WithAttributes(
		attribute.Int("horizon.result.horizon", res.Horizon),
		attribute.Bool("horizon.result.reached", res.Reached),
		attribute.Int("horizon.result.probes", len(res.Steps)),
	))
}
