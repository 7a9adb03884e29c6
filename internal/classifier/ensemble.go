// Package classifier trains and serves the pick-refinement model: a bagged
// ensemble of logistic regressions fitted to (pick features, won) pairs
// collected while replaying historical fixtures.
package classifier

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

var (
	// ErrTooFewSamples indicates the labeled sample count is below the
	// training threshold
	ErrTooFewSamples = errors.New("too few labeled samples to train")

	// ErrInvalidModel indicates a persisted model failed validation
	ErrInvalidModel = errors.New("invalid classifier model")
)

// Sample is one labeled training pair.
type Sample struct {
	Features []float64 `json:"features"`
	Won      bool      `json:"won"`
}

// Config controls ensemble size and the gradient descent schedule.
type Config struct {
	Members      int     `json:"members"`
	Iterations   int     `json:"iterations"`
	LearningRate float64 `json:"learning_rate"`
	MinSamples   int     `json:"min_samples"`
	Seed         int64   `json:"seed"`
}

// DefaultConfig returns the standard training schedule: nine bagged members,
// 400 passes of log-loss gradient descent each, and a 100-sample floor
// before training is attempted.
func DefaultConfig() Config {
	return Config{
		Members:      9,
		Iterations:   400,
		LearningRate: 0.15,
		MinSamples:   100,
	}
}

// Ensemble is a trained bag of logistic regression members. Each weight
// vector carries the bias term first, then one weight per feature.
type Ensemble struct {
	FeatureCount  int         `json:"feature_count"`
	Weights       [][]float64 `json:"weights"`
	Samples       int         `json:"samples"`
	TrainAccuracy float64     `json:"train_accuracy"`
	TrainedAt     time.Time   `json:"trained_at"`
}

// Train fits a bagged logistic ensemble to the samples. Each member sees a
// bootstrap resample (same size, drawn with replacement) so the members
// disagree slightly and the averaged score is smoother than a single fit.
// A zero Seed derives one from the clock; a fixed Seed makes training
// reproducible.
func Train(samples []Sample, cfg Config) (*Ensemble, error) {
	def := DefaultConfig()
	if cfg.Members <= 0 {
		cfg.Members = def.Members
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = def.Iterations
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = def.MinSamples
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if len(samples) < cfg.MinSamples {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrTooFewSamples, len(samples), cfg.MinSamples)
	}
	featureCount := len(samples[0].Features)
	if featureCount == 0 {
		return nil, fmt.Errorf("%w: empty feature vectors", ErrInvalidModel)
	}
	for i, s := range samples {
		if len(s.Features) != featureCount {
			return nil, fmt.Errorf("%w: sample %d has %d features, expected %d",
				ErrInvalidModel, i, len(s.Features), featureCount)
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	weights := make([][]float64, cfg.Members)
	for m := 0; m < cfg.Members; m++ {
		bag := resample(samples, rng)
		weights[m] = trainLogistic(bag, featureCount, cfg)
	}

	ensemble := &Ensemble{
		FeatureCount: featureCount,
		Weights:      weights,
		Samples:      len(samples),
		TrainedAt:    time.Now().UTC(),
	}
	ensemble.TrainAccuracy = accuracy(ensemble, samples)
	return ensemble, nil
}

// PredictProbability scores a feature vector with the averaged member
// probability that the pick wins. An absent or mismatched model scores a
// neutral 0.5 so callers never have to special-case it.
func (e *Ensemble) PredictProbability(features []float64) float64 {
	if e == nil || len(e.Weights) == 0 || len(features) != e.FeatureCount {
		return 0.5
	}
	total := 0.0
	for _, w := range e.Weights {
		total += sigmoid(score(w, features))
	}
	return total / float64(len(e.Weights))
}

func resample(samples []Sample, rng *rand.Rand) []Sample {
	bag := make([]Sample, len(samples))
	for i := range bag {
		bag[i] = samples[rng.Intn(len(samples))]
	}
	return bag
}

// trainLogistic runs per-sample gradient descent on log-loss. The gradient
// of -[y*log(p)+(1-y)*log(1-p)] with respect to the weights is (p-y)*x.
func trainLogistic(samples []Sample, featureCount int, cfg Config) []float64 {
	w := make([]float64, featureCount+1)
	n := float64(len(samples))
	for iter := 0; iter < cfg.Iterations; iter++ {
		for _, s := range samples {
			p := sigmoid(score(w, s.Features))
			g := p - label(s.Won)
			w[0] -= cfg.LearningRate * g / n
			for k, x := range s.Features {
				w[k+1] -= cfg.LearningRate * g * x / n
			}
		}
	}
	return w
}

func accuracy(e *Ensemble, samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	correct := 0
	for _, s := range samples {
		predictedWin := e.PredictProbability(s.Features) >= 0.5
		if predictedWin == s.Won {
			correct++
		}
	}
	return float64(correct) / float64(len(samples))
}

func score(w, features []float64) float64 {
	z := w[0]
	for i, x := range features {
		z += w[i+1] * x
	}
	return z
}

func label(won bool) float64 {
	if won {
		return 1.0
	}
	return 0.0
}

func sigmoid(z float64) float64 {
	if z > 20 {
		return 1.0
	}
	if z < -20 {
		return 0.0
	}
	return 1.0 / (1.0 + math.Exp(-z))
}
