package gen

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// penaltyWeight scales every distance penalty added to the score.
	penaltyWeight = 0.01
	// farThresholdFactor multiplies deta_min to get the negative-pass threshold.
	farThresholdFactor = 5.0
	// classWeightMass is split evenly over each side of the training set.
	classWeightMass = 100.0
)

// Score is the breakdown of one objective evaluation. Value is what the
// optimizer minimizes.
type Score struct {
	Value         float64
	MeanOriginal  float64 // m_p: mean P(class) over the original data
	MeanSynthetic float64 // m_n: mean P(class) over synthetic set plus candidate
	Penalty       float64 // positive: diversity penalty; negative: distance-from-data penalty
	Penalty2      float64 // negative only: diversity penalty
}

// Objective scores a candidate vector against a fixed accepted set.
type Objective func(candidate []float64) (Score, error)

// PositiveObjective builds the positive-pass objective for the accepted set P:
//
//	score = m_p − m_n + 0.01·max(0, deta_min − minDist(c, P))
//
// with minDist taken as 0 while P is empty.
func PositiveObjective(s *Session, clf Classifier, accepted [][]float64) Objective {
	return func(c []float64) (Score, error) {
		if len(c) != s.dim {
			return Score{}, &DimensionError{Index: len(accepted), Expected: s.dim, Actual: len(c)}
		}
		mp, mn, err := fitAndPredict(clf, s.original, withCandidate(accepted, c))
		if err != nil {
			return Score{}, err
		}

		dis, err := distanceOrZero(c, accepted)
		if err != nil {
			return Score{}, err
		}
		punish := math.Max(0, s.detaMin-dis)

		return Score{
			Value:         mp - mn + penaltyWeight*punish,
			MeanOriginal:  mp,
			MeanSynthetic: mn,
			Penalty:       punish,
		}, nil
	}
}

// NegativeObjective builds the negative-pass objective for the accepted set N:
//
//	thr   = 5·deta_min
//	score = m_n − m_p + 0.01·max(0, minDist(c, O) − thr) + 0.01·max(0, thr − minDist(c, N))
//
// with minDist(c, N) taken as 0 while N is empty.
func NegativeObjective(s *Session, clf Classifier, accepted [][]float64) Objective {
	return func(c []float64) (Score, error) {
		if len(c) != s.dim {
			return Score{}, &DimensionError{Index: len(accepted), Expected: s.dim, Actual: len(c)}
		}
		mp, mn, err := fitAndPredict(clf, s.original, withCandidate(accepted, c))
		if err != nil {
			return Score{}, err
		}

		thr := farThresholdFactor * s.detaMin
		dis1, err := MinDistance(c, s.original)
		if err != nil {
			return Score{}, err
		}
		punish1 := math.Max(0, dis1-thr)

		dis2, err := distanceOrZero(c, accepted)
		if err != nil {
			return Score{}, err
		}
		punish2 := math.Max(0, thr-dis2)

		return Score{
			Value:         mn - mp + penaltyWeight*punish1 + penaltyWeight*punish2,
			MeanOriginal:  mp,
			MeanSynthetic: mn,
			Penalty:       punish1,
			Penalty2:      punish2,
		}, nil
	}
}

// ObjectiveFor selects the objective matching p.
func ObjectiveFor(p Polarity, s *Session, clf Classifier, accepted [][]float64) Objective {
	if p == Negative {
		return NegativeObjective(s, clf, accepted)
	}
	return PositiveObjective(s, clf, accepted)
}

// fitAndPredict trains a fresh model with original labeled 1 and synthetic
// labeled 0, each side carrying a total weight of 100, and returns the mean
// P(label 1) on each side.
func fitAndPredict(clf Classifier, original, synthetic [][]float64) (mp, mn float64, err error) {
	n := len(original) + len(synthetic)
	x := make([][]float64, 0, n)
	y := make([]int, 0, n)
	w := make([]float64, 0, n)

	wo := classWeightMass / float64(len(original))
	for _, v := range original {
		x = append(x, v)
		y = append(y, LabelClass)
		w = append(w, wo)
	}
	ws := classWeightMass / float64(len(synthetic))
	for _, v := range synthetic {
		x = append(x, v)
		y = append(y, LabelSynthetic)
		w = append(w, ws)
	}

	model, err := clf.Fit(x, y, w)
	if err != nil {
		return 0, 0, &ClassifierFitError{Err: err}
	}
	if model == nil {
		return 0, 0, &ClassifierFitError{Err: fmt.Errorf("classifier returned no model")}
	}

	mp, err = meanClassProba(model, original)
	if err != nil {
		return 0, 0, err
	}
	mn, err = meanClassProba(model, synthetic)
	if err != nil {
		return 0, 0, err
	}
	return mp, mn, nil
}

func meanClassProba(model Model, x [][]float64) (float64, error) {
	proba, err := model.PredictProba(x)
	if err != nil {
		return 0, &ClassifierPredictError{Err: err}
	}
	if len(proba) != len(x) {
		return 0, &ClassifierPredictError{
			Err: fmt.Errorf("expected %d probability rows, got %d", len(x), len(proba)),
		}
	}

	p1 := make([]float64, len(proba))
	for i, row := range proba {
		p1[i] = row[LabelClass]
	}
	return stat.Mean(p1, nil), nil
}

// withCandidate returns accepted ∪ {c} without aliasing accepted's backing array.
func withCandidate(accepted [][]float64, c []float64) [][]float64 {
	out := make([][]float64, 0, len(accepted)+1)
	out = append(out, accepted...)
	return append(out, c)
}

func distanceOrZero(c []float64, set [][]float64) (float64, error) {
	if len(set) == 0 {
		return 0, nil
	}
	return MinDistance(c, set)
}
