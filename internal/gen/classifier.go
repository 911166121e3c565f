package gen

// Label values used in the weighted training sets. LabelClass marks the
// original class data, LabelSynthetic marks the synthetic set plus candidate.
const (
	LabelSynthetic = 0
	LabelClass     = 1
)

// Classifier fits a fresh model on a weighted, labeled dataset. Implementations
// must not retain state between calls: each Fit behaves like fitting a clone.
type Classifier interface {
	Fit(x [][]float64, y []int, weights []float64) (Model, error)
}

// Model is a fitted classifier. PredictProba returns one (P(0), P(1)) pair
// per input row.
type Model interface {
	PredictProba(x [][]float64) ([][2]float64, error)
}
