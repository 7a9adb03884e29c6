package predictor

import (
	"math"

	"github.com/yourusername/footy-better/internal/models"
)

// Blend weights for the confidence factors. When odds or form are
// unavailable their weight is redistributed proportionally across the rest.
const (
	weightCertainty       = 0.50
	weightDataQuality     = 0.25
	weightOddsAgreement   = 0.10
	weightFormConsistency = 0.15
)

type confidenceInput struct {
	homeWin    float64
	draw       float64
	awayWin    float64
	sampleSize int
	odds       *models.MatchOdds
	homeForm   string
	awayForm   string
}

// confidence blends outcome certainty, data quality, market agreement and
// form consistency into a single [0,1] score, then scales it by a bounded
// sample-size factor. Very thin data hard-caps the result.
func (p *Predictor) confidence(in confidenceInput) float64 {
	quality := p.dataQuality(in.sampleSize)

	factors := []float64{
		entropyCertainty(in.homeWin, in.draw, in.awayWin),
		quality,
	}
	weights := []float64{weightCertainty, weightDataQuality}

	if in.odds.Valid() {
		ih, id, ia := in.odds.ImpliedProbabilities()
		kl := klDivergence(
			[3]float64{in.homeWin, in.draw, in.awayWin},
			[3]float64{ih, id, ia},
		)
		factors = append(factors, math.Exp(-kl))
		weights = append(weights, weightOddsAgreement)
	}

	if fc, ok := combinedFormConsistency(in.homeForm, in.awayForm); ok {
		factors = append(factors, fc)
		weights = append(weights, weightFormConsistency)
	}

	var weightSum float64
	for _, w := range weights {
		weightSum += w
	}
	var score float64
	for i, f := range factors {
		score += f * weights[i] / weightSum
	}

	score *= p.sampleScale(in.sampleSize)

	if quality < p.cfg.LowQualityThreshold && score > p.cfg.LowQualityCap {
		score = p.cfg.LowQualityCap
	}
	return clamp01(score)
}

// dataQuality is a sigmoid over sample size: near zero for a handful of
// matches, saturating around a full season's worth.
func (p *Predictor) dataQuality(sampleSize int) float64 {
	return sigmoid((float64(sampleSize) - p.cfg.QualityMidpoint) / p.cfg.QualityScale)
}

// sampleScale is the sqrt(sample/minimum) adjustment, bounded to [0.5,1.5].
func (p *Predictor) sampleScale(sampleSize int) float64 {
	if p.cfg.MinMatches <= 0 {
		return 1.0
	}
	scale := math.Sqrt(float64(sampleSize) / float64(p.cfg.MinMatches))
	if scale < 0.5 {
		return 0.5
	}
	if scale > 1.5 {
		return 1.5
	}
	return scale
}

// entropyCertainty maps the Shannon entropy of the 1X2 distribution to
// [0,1]: 1 for a certainty, 0 for the uniform triple.
func entropyCertainty(home, draw, away float64) float64 {
	var entropy float64
	for _, pr := range []float64{home, draw, away} {
		if pr > 0 {
			entropy -= pr * math.Log(pr)
		}
	}
	return clamp01(1.0 - entropy/math.Log(3))
}

// klDivergence is KL(model ‖ implied) over the outcome triple, in nats.
func klDivergence(model, implied [3]float64) float64 {
	var kl float64
	for i := range model {
		if model[i] <= 0 {
			continue
		}
		q := implied[i]
		if q <= 0 {
			q = 1e-9
		}
		kl += model[i] * math.Log(model[i]/q)
	}
	if kl < 0 {
		return 0
	}
	return kl
}

// combinedFormConsistency averages both sides' consistency. A side needs at
// least two recorded results to contribute.
func combinedFormConsistency(homeForm, awayForm string) (float64, bool) {
	var sum float64
	var n int
	for _, form := range []string{homeForm, awayForm} {
		if fc, ok := formConsistency(form); ok {
			sum += fc
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// formConsistency is the fraction of adjacent result pairs that repeat. A
// streaky WWWWW scores 1.0, a strictly alternating WLWLW scores 0.0.
func formConsistency(form string) (float64, bool) {
	if len(form) < 2 {
		return 0, false
	}
	repeats := 0
	for i := 1; i < len(form); i++ {
		if form[i] == form[i-1] {
			repeats++
		}
	}
	return float64(repeats) / float64(len(form)-1), true
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
