package worker

import (
	"context"
	"encoding/json"
	"time"

	"ukescout/reviewworker/internal/scraper"
	"ukescout/reviewworker/logger"
	"ukescout/reviewworker/services/detector"
	"ukescout/reviewworker/services/publisher"
)

// Runner produces one scrape result per call
type Runner interface {
	Run() (*scraper.Result, error)
}

// Worker drives the scrape cycle: run the scraper, update the change
// detector, and publish change events. Publisher and detector are both
// optional.
type Worker struct {
	ctx      context.Context
	runner   Runner
	pub      publisher.Publisher
	detector *detector.ChangeDetector
	interval time.Duration
	log      *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	runner Runner,
	pub publisher.Publisher,
	det *detector.ChangeDetector,
	interval time.Duration,
) *Worker {
	return &Worker{
		ctx:      ctx,
		runner:   runner,
		pub:      pub,
		detector: det,
		interval: interval,
		log:      logger.ForWorker(),
	}
}

// Start runs the scrape cycle. With a zero interval it runs exactly once;
// otherwise it repeats until the context is cancelled. The error of the
// final cycle is returned.
func (w *Worker) Start() error {
	for {
		start := time.Now()
		err := w.RunOnce()
		if err != nil {
			w.log.WithError(err).Error().Msg("Scrape cycle failed")
		} else {
			w.log.Debug().Dur("elapsed", time.Since(start)).Msg("Scrape cycle finished")
		}

		if w.interval == 0 {
			return err
		}

		select {
		case <-w.ctx.Done():
			return err
		case <-time.After(w.interval):
		}
	}
}

// RunOnce performs a single cycle. Detector and publisher failures after a
// successful scrape are logged, not returned: the persisted output is
// already complete.
func (w *Worker) RunOnce() error {
	result, err := w.runner.Run()
	if err != nil {
		return err
	}

	if w.detector != nil {
		for _, r := range result.Reviews {
			w.detector.MarkSeen(r.URL, "")
		}
		w.detector.FinishRun()
		if err := w.detector.Save(); err != nil {
			w.log.WithError(err).Warn().Msg("Failed to save detector cache")
		}
	}

	if w.pub != nil {
		w.publishChanges(result)
	}
	return nil
}

// publishChanges emits one event per new and removed review
func (w *Worker) publishChanges(result *scraper.Result) {
	for _, r := range result.Diff.New {
		payload, err := json.Marshal(r)
		if err != nil {
			w.log.WithError(err).WithField("url", r.URL).Error().Msg("Failed to encode review event")
			continue
		}
		if err := w.pub.Publish("review.new", payload); err != nil {
			w.log.WithError(err).WithField("url", r.URL).Error().Msg("Failed to publish review event")
		}
	}

	for _, url := range result.Diff.Removed {
		payload, err := json.Marshal(map[string]string{"url": url})
		if err != nil {
			continue
		}
		if err := w.pub.Publish("review.removed", payload); err != nil {
			w.log.WithError(err).WithField("url", url).Error().Msg("Failed to publish removal event")
		}
	}

	if err := w.pub.TrimStream(); err != nil {
		w.log.WithError(err).Error().Msg("Failed to trim event stream")
	}
}
