package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
	"github.com/kirillkom/crime-report-analyzer/internal/core/ports"
)

// CategoryClassifier owns the process-wide category model. The model is
// trained on first use and reused for the rest of the process; a training
// failure is cached the same way, leaving every prediction unknown.
type CategoryClassifier struct {
	loader   ports.DatasetLoader
	trainer  ports.ModelTrainer
	recorder ports.PipelineRecorder

	// gate admits one trainer at a time; mu guards the fields below and is
	// never held while training.
	gate chan struct{}

	mu        sync.Mutex
	training  bool
	done      bool
	model     ports.TrainedModel
	err       error
	trainedAt time.Time
	warned    bool
}

func NewCategoryClassifier(
	loader ports.DatasetLoader,
	trainer ports.ModelTrainer,
	recorder ports.PipelineRecorder,
) *CategoryClassifier {
	return &CategoryClassifier{
		loader:   loader,
		trainer:  trainer,
		recorder: recorder,
		gate:     make(chan struct{}, 1),
	}
}

// Model returns the cached model, training it on the first call. A call
// cancelled before training finished leaves the gate open for the next caller.
func (c *CategoryClassifier) Model(ctx context.Context) (ports.TrainedModel, error) {
	if model, ok, err := c.cached(); ok {
		return model, err
	}

	select {
	case c.gate <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.gate }()

	// Another caller may have finished while this one waited.
	if model, ok, err := c.cached(); ok {
		return model, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.setTraining(true)
	start := time.Now()
	model, err := c.train(ctx)
	if err != nil && isCancellation(err) {
		c.setTraining(false)
		return nil, err
	}

	c.mu.Lock()
	c.training = false
	c.done = true
	c.model = model
	c.err = err
	c.trainedAt = time.Now().UTC()
	c.mu.Unlock()

	if c.recorder != nil {
		c.recorder.RecordTraining(time.Since(start), err)
	}

	if err != nil {
		slog.Error("classifier_training_failed", "error", err)
		return nil, err
	}
	summary := model.Summary()
	slog.Info("classifier_trained",
		"classes", len(summary.Classes),
		"vocabulary", summary.VocabularySize,
		"train_size", summary.TrainSize,
		"held_out_size", summary.HeldOutSize,
		"held_out_accuracy", summary.HeldOutAccuracy,
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	return model, nil
}

func (c *CategoryClassifier) cached() (ports.TrainedModel, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.done {
		return nil, false, nil
	}
	if c.err != nil {
		return nil, true, c.err
	}
	return c.model, true, nil
}

func (c *CategoryClassifier) setTraining(v bool) {
	c.mu.Lock()
	c.training = v
	c.mu.Unlock()
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (c *CategoryClassifier) train(ctx context.Context) (ports.TrainedModel, error) {
	examples, err := c.loader.Load(ctx)
	if err != nil {
		if domain.IsKind(err, domain.ErrTrainingData) || isCancellation(err) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrTrainingData, "load training dataset", err)
	}

	model, err := c.trainer.Train(examples)
	if err != nil {
		if domain.IsKind(err, domain.ErrTrainingData) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrTrainingData, "fit classifier", err)
	}
	if model == nil {
		return nil, domain.WrapError(domain.ErrTrainingData, "fit classifier", errors.New("trainer returned no model"))
	}
	return model, nil
}

// Warmup trains eagerly and reports a training failure to the caller.
func (c *CategoryClassifier) Warmup(ctx context.Context) error {
	_, err := c.Model(ctx)
	return err
}

// Predict never fails: the sentinel narrative, an unusable model and a
// failing model all resolve to domain.UnknownCategory.
func (c *CategoryClassifier) Predict(ctx context.Context, text string) string {
	if text == domain.NotSpecified || strings.TrimSpace(text) == "" {
		return domain.UnknownCategory
	}

	model, err := c.Model(ctx)
	if err != nil {
		c.warnUnusable(err)
		return domain.UnknownCategory
	}

	label, err := safePredict(model, text)
	if err != nil {
		slog.Warn("category_prediction_failed", "error", err)
		return domain.UnknownCategory
	}
	if strings.TrimSpace(label) == "" {
		return domain.UnknownCategory
	}
	return label
}

func (c *CategoryClassifier) Status() domain.ClassifierStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.training {
		return domain.ClassifierStatus{State: domain.ClassifierTraining}
	}
	if !c.done {
		return domain.ClassifierStatus{State: domain.ClassifierIdle}
	}
	trainedAt := c.trainedAt
	if c.err != nil {
		return domain.ClassifierStatus{
			State:     domain.ClassifierFailed,
			Error:     c.err.Error(),
			TrainedAt: &trainedAt,
		}
	}
	summary := c.model.Summary()
	return domain.ClassifierStatus{
		State:     domain.ClassifierReady,
		Model:     &summary,
		TrainedAt: &trainedAt,
	}
}

func (c *CategoryClassifier) warnUnusable(err error) {
	if !domain.IsKind(err, domain.ErrTrainingData) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.warned {
		return
	}
	c.warned = true
	slog.Warn("classifier_unavailable", "error", err, "fallback_category", domain.UnknownCategory)
}

func safePredict(model ports.TrainedModel, text string) (label string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.WrapError(domain.ErrPrediction, "predict category", fmt.Errorf("panic: %v", r))
		}
	}()
	label, err = model.Predict(text)
	if err != nil && !domain.IsKind(err, domain.ErrPrediction) {
		err = domain.WrapError(domain.ErrPrediction, "predict category", err)
	}
	return label, err
}
