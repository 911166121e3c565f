// Package classify provides classifiers implementing gen.Classifier.
package classify

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/asgen/internal/gen"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Logistic is a weighted, L2-regularised binary logistic regression trained
// by full-batch gradient descent on standardised features. It holds only
// hyperparameters, so every Fit starts from scratch.
type Logistic struct {
	Epochs       int
	LearningRate float64
	L2           float64
}

// NewLogistic returns a Logistic with defaults suited to small training sets.
func NewLogistic() *Logistic {
	return &Logistic{
		Epochs:       200,
		LearningRate: 0.5,
		L2:           1e-3,
	}
}

// LogisticModel is a fitted Logistic.
type LogisticModel struct {
	mean  []float64
	scale []float64
	coef  *mat.VecDense
	bias  float64
}

// Fit implements gen.Classifier. Labels must be 0 or 1, weights non-negative
// with a positive sum.
func (l *Logistic) Fit(x [][]float64, y []int, weights []float64) (gen.Model, error) {
	if l.Epochs <= 0 || l.LearningRate <= 0 || l.L2 < 0 {
		return nil, fmt.Errorf("invalid hyperparameters: epochs=%d lr=%g l2=%g", l.Epochs, l.LearningRate, l.L2)
	}
	n := len(x)
	if n == 0 {
		return nil, errors.New("empty training set")
	}
	if len(y) != n || len(weights) != n {
		return nil, fmt.Errorf("length mismatch: %d rows, %d labels, %d weights", n, len(y), len(weights))
	}
	d := len(x[0])
	if d == 0 {
		return nil, errors.New("zero-dimensional features")
	}
	for i := range x {
		if len(x[i]) != d {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(x[i]), d)
		}
		if y[i] != gen.LabelSynthetic && y[i] != gen.LabelClass {
			return nil, fmt.Errorf("row %d has label %d, want 0 or 1", i, y[i])
		}
		if weights[i] < 0 || math.IsNaN(weights[i]) {
			return nil, fmt.Errorf("row %d has invalid weight %g", i, weights[i])
		}
	}
	total := floats.Sum(weights)
	if total <= 0 {
		return nil, errors.New("weights sum to zero")
	}

	m := &LogisticModel{
		mean:  make([]float64, d),
		scale: make([]float64, d),
		coef:  mat.NewVecDense(d, nil),
	}

	// Weighted per-feature standardisation
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		mu, sd := stat.MeanStdDev(col, weights)
		if sd == 0 || math.IsNaN(sd) || math.IsInf(sd, 0) {
			sd = 1
		}
		m.mean[j], m.scale[j] = mu, sd
	}
	X := m.design(x)

	// Normalised sample weights and targets
	w := make([]float64, n)
	floats.ScaleTo(w, 1/total, weights)
	target := make([]float64, n)
	for i, label := range y {
		target[i] = float64(label)
	}

	z := mat.NewVecDense(n, nil)
	resid := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)
	for epoch := 0; epoch < l.Epochs; epoch++ {
		z.MulVec(X, m.coef)

		var gradBias float64
		for i := 0; i < n; i++ {
			r := w[i] * (sigmoid(z.AtVec(i)+m.bias) - target[i])
			resid.SetVec(i, r)
			gradBias += r
		}

		grad.MulVec(X.T(), resid)
		grad.AddScaledVec(grad, l.L2, m.coef)

		m.coef.AddScaledVec(m.coef, -l.LearningRate, grad)
		m.bias -= l.LearningRate * gradBias
	}

	return m, nil
}

// PredictProba implements gen.Model.
func (m *LogisticModel) PredictProba(x [][]float64) ([][2]float64, error) {
	if len(x) == 0 {
		return [][2]float64{}, nil
	}
	for i := range x {
		if len(x[i]) != len(m.mean) {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(x[i]), len(m.mean))
		}
	}

	z := mat.NewVecDense(len(x), nil)
	z.MulVec(m.design(x), m.coef)

	out := make([][2]float64, len(x))
	for i := range out {
		p := sigmoid(z.AtVec(i) + m.bias)
		out[i] = [2]float64{1 - p, p}
	}
	return out, nil
}

// design builds the standardised design matrix for x.
func (m *LogisticModel) design(x [][]float64) *mat.Dense {
	d := len(m.mean)
	X := mat.NewDense(len(x), d, nil)
	for i, row := range x {
		for j, v := range row {
			X.Set(i, j, (v-m.mean[j])/m.scale[j])
		}
	}
	return X
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
