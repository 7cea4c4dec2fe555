package mlscore

import (
	"math"

	"github.com/ranksignal/accuracy-cli/internal/model"
)

// This file is the complete parameter set of the simulated inference
// model: a feedforward approximator with one hidden layer of four tanh
// units over the 11 input features and a single sigmoid output unit. The
// constants were produced offline and are never updated at runtime; treat
// them as opaque. Changing any value changes every ML score.

const hiddenUnits = 4

var hiddenWeights = [hiddenUnits][featureCount]float64{
	{-0.8342, -0.5719, 0.9624, 0.6248, 0.5531, -0.7216, 1.1437, -0.2154, -0.3867, -0.1529, 0.2743},
	{0.9173, 0.6842, -0.4519, -0.3264, -0.2958, 0.8647, -0.7531, 0.4216, 0.5383, 0.2647, -0.1835},
	{-0.6457, -0.3948, 0.7212, 0.8356, 0.7149, -0.5024, 0.8873, -0.1642, -0.2259, -0.0873, 0.3541},
	{0.5836, 0.9257, -0.2743, -0.1952, -0.3348, 1.0452, -0.6219, 0.3127, 0.2964, 0.3452, -0.2217},
}

var hiddenBiases = [hiddenUnits]float64{0.1254, -0.2371, 0.0836, -0.1549}

var outputWeights = [hiddenUnits]float64{1.6247, -1.1835, 1.0941, -0.8756}

const outputBias = 0.2157

// Metadata documents the simulated model. The figures are nominal, they
// describe the offline artifact and are not measured at runtime.
var Metadata = model.ModelMetadata{
	Version:         "sim-2024.1",
	TrainingSamples: 15000,
	Accuracy:        0.87,
}

// competitiveIndustries flags industries whose rankings swing hard enough
// that the raw model output gets damped.
var competitiveIndustries = map[string]bool{
	"finance":     true,
	"insurance":   true,
	"legal":       true,
	"real_estate": true,
	"gambling":    true,
	"competitive": true,
}

// infer runs the feature vector through the network and returns a
// probability in (0,1).
func infer(f featureVector) float64 {
	var out float64
	for i := 0; i < hiddenUnits; i++ {
		z := hiddenBiases[i]
		for j := 0; j < featureCount; j++ {
			z += hiddenWeights[i][j] * f[j]
		}
		out += outputWeights[i] * math.Tanh(z)
	}
	return sigmoid(out + outputBias)
}

// adjustForContext applies the contextual damping that follows the raw
// model output: competitive industries, explicit competition level, and a
// strong seasonality hint each shave the score. Result is clamped to [0,1].
func adjustForContext(score float64, contextual *model.ContextualData) float64 {
	if contextual == nil {
		return clamp01(score)
	}
	if competitiveIndustries[contextual.Industry] {
		score *= 0.9
	}
	if contextual.CompetitionLevel != nil {
		score *= 1 - *contextual.CompetitionLevel*0.1
	}
	if contextual.Seasonality != nil && *contextual.Seasonality > 0.7 {
		score *= 0.95
	}
	return clamp01(score)
}

// sigmoid is the numerically stable logistic function: the exponent is
// kept negative on both branches so large |x| cannot overflow.
func sigmoid(x float64) float64 {
	if x >= 0 {
		z := math.Exp(-x)
		return 1 / (1 + z)
	}
	z := math.Exp(x)
	return z / (1 + z)
}
