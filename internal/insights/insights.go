// Package insights asks an external text-generation service for business
// insights on the appointment schedule. Failures never escape this package:
// callers always get text back.
package insights

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"glowbook/internal/core"
	"glowbook/internal/log"
	"glowbook/internal/report"
)

// FallbackText is shown whenever the service fails or answers with nothing.
const FallbackText = "Could not generate insights at this moment. Keep shining, Baddie!"

var ErrUnavailable = errors.New("insight service unavailable")

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Recorder is told about each fallback.
type Recorder interface {
	InsightFallback()
}

// Result is the text to display. Fallback is set when FallbackText was substituted.
type Result struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// Service wraps a Generator with a timeout, call deduplication and the fallback text.
type Service struct {
	gen      Generator
	timeout  time.Duration
	recorder Recorder
	logger   *log.Logger
	group    singleflight.Group
}

// NewService returns a Service. A nil Generator makes every call fall back.
func NewService(gen Generator, timeout time.Duration, recorder Recorder, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Component(log.ComponentInsights)
	}
	return &Service{gen: gen, timeout: timeout, recorder: recorder, logger: logger}
}

// Insights summarizes apps and asks the generator. Identical concurrent
// requests share one upstream call.
func (s *Service) Insights(ctx context.Context, apps []core.Appointment) Result {
	prompt := report.InsightPrompt(report.InsightSummary(apps))

	// Callers stop waiting on their own context; the shared call does not.
	ch := s.group.DoChan(prompt, func() (any, error) {
		return s.generate(context.WithoutCancel(ctx), prompt)
	})
	var (
		text   string
		err    error
		shared bool
	)
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case res := <-ch:
		err, shared = res.Err, res.Shared
		if err == nil {
			text = res.Val.(string)
		}
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Insight generation failed, using fallback",
			log.FieldOperation, log.OpInsights,
			log.FieldCount, len(apps),
			log.FieldError, err)
		if s.recorder != nil {
			s.recorder.InsightFallback()
		}
		return Result{Text: FallbackText, Fallback: true}
	}

	s.logger.DebugContext(ctx, "Insights generated", log.FieldCount, len(apps), "shared", shared)
	return Result{Text: text}
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if s.gen == nil {
		return "", ErrUnavailable
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", errors.Join(ErrUnavailable, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrUnavailable
	}
	return text, nil
}
