package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTriangleSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(triangle, testSessionConfig())
	require.NoError(t, err)
	return s
}

func TestPositiveObjectiveConstantClassifier(t *testing.T) {
	s := newTriangleSession(t)
	obj := PositiveObjective(s, constClassifier{p: 0.5}, nil)

	// Empty P: dis = 0, punish = deta_min = 3, score = 0.03 for any candidate.
	for _, c := range [][]float64{{0, 0}, {9, -9}, {1.5, 2.5}} {
		score, err := obj(c)
		require.NoError(t, err)
		assert.InDelta(t, 0.03, score.Value, 1e-12)
		assert.InDelta(t, 3.0, score.Penalty, 1e-12)
		assert.InDelta(t, 0.5, score.MeanOriginal, 1e-12)
		assert.InDelta(t, 0.5, score.MeanSynthetic, 1e-12)
	}
}

func TestPositiveObjectiveDiversityPenalty(t *testing.T) {
	s := newTriangleSession(t)
	accepted := [][]float64{{10, 10}}
	obj := PositiveObjective(s, constClassifier{p: 0.5}, accepted)

	tests := []struct {
		name      string
		candidate []float64
		punish    float64
	}{
		{"on top", []float64{10, 10}, 3},
		{"one away", []float64{9, 10}, 2},
		{"exactly deta_min", []float64{7, 10}, 0},
		{"far", []float64{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := obj(tt.candidate)
			require.NoError(t, err)
			assert.InDelta(t, tt.punish, score.Penalty, 1e-9)
			assert.InDelta(t, 0.01*tt.punish, score.Value, 1e-9)
		})
	}
}

func TestPositiveObjectiveMonotonicInPenalty(t *testing.T) {
	s := newTriangleSession(t)
	obj := PositiveObjective(s, constClassifier{p: 0.8}, [][]float64{{0, 0}})

	// Candidates move toward the accepted point: punish grows, score must not shrink.
	prev := -1.0
	prevPunish := -1.0
	for _, d := range []float64{5, 3, 2.5, 1, 0.5, 0} {
		score, err := obj([]float64{d, 0})
		require.NoError(t, err)
		require.GreaterOrEqual(t, score.Penalty, prevPunish)
		require.GreaterOrEqual(t, score.Value, prev)
		prev, prevPunish = score.Value, score.Penalty
	}
}

func TestPositiveObjectiveClassifierTerm(t *testing.T) {
	s := newTriangleSession(t)
	clf := &recordingClassifier{fn: func(x []float64) float64 {
		if x[0] < 2 {
			return 1
		}
		return 0
	}}

	score, err := PositiveObjective(s, clf, nil)([]float64{5, 5})
	require.NoError(t, err)

	assert.InDelta(t, 2.0/3.0, score.MeanOriginal, 1e-12)
	assert.InDelta(t, 0.0, score.MeanSynthetic, 1e-12)
	assert.InDelta(t, 2.0/3.0+0.03, score.Value, 1e-12)
}

func TestObjectiveTrainingSet(t *testing.T) {
	s := newTriangleSession(t)
	clf := &recordingClassifier{fn: func([]float64) float64 { return 0.5 }}
	accepted := [][]float64{{1, 1}, {2, 2}}

	_, err := PositiveObjective(s, clf, accepted)([]float64{3, 3})
	require.NoError(t, err)
	require.Len(t, clf.fits, 1)

	fit := clf.fits[0]
	assert.Equal(t, [][]float64{{0, 0}, {0, 3}, {4, 0}, {1, 1}, {2, 2}, {3, 3}}, fit.x)
	assert.Equal(t, []int{1, 1, 1, 0, 0, 0}, fit.y)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 100.0/3.0, fit.w[i], 1e-12)
	}
	for i := 3; i < 6; i++ {
		assert.InDelta(t, 100.0/3.0, fit.w[i], 1e-12)
	}

	// The accepted set itself is left untouched.
	assert.Len(t, accepted, 2)
}

func TestObjectiveFitsFreshModelPerEvaluation(t *testing.T) {
	s := newTriangleSession(t)
	clf := &recordingClassifier{fn: func([]float64) float64 { return 0.5 }}
	obj := NegativeObjective(s, clf, nil)

	for i := 0; i < 4; i++ {
		_, err := obj([]float64{float64(i), 0})
		require.NoError(t, err)
	}
	require.Len(t, clf.fits, 4)
	assert.InDelta(t, 100.0, clf.fits[0].w[3], 1e-12)
}

func TestNegativeObjectiveConstantClassifier(t *testing.T) {
	s := newTriangleSession(t)

	tests := []struct {
		name      string
		accepted  [][]float64
		candidate []float64
		punish1   float64
		punish2   float64
	}{
		// thr = 5 * deta_min = 15
		{"on data, empty N", nil, []float64{0, 0}, 0, 15},
		{"far from data, empty N", nil, []float64{100, 0}, 81, 15},
		{"clear of negatives", [][]float64{{20, 0}}, []float64{0, 0}, 0, 0},
		{"near a negative", [][]float64{{10, 0}}, []float64{4, 0}, 0, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := NegativeObjective(s, constClassifier{p: 0.5}, tt.accepted)(tt.candidate)
			require.NoError(t, err)
			assert.InDelta(t, tt.punish1, score.Penalty, 1e-9)
			assert.InDelta(t, tt.punish2, score.Penalty2, 1e-9)
			assert.InDelta(t, 0.01*tt.punish1+0.01*tt.punish2, score.Value, 1e-9)
		})
	}
}

func TestNegativeObjectiveClassifierTerm(t *testing.T) {
	s := newTriangleSession(t)
	clf := &recordingClassifier{fn: func(x []float64) float64 {
		if x[0] < 2 {
			return 1
		}
		return 0
	}}

	// Candidate looks like the class: m_n = 1, m_p = 2/3.
	score, err := NegativeObjective(s, clf, [][]float64{{0, 20}})([]float64{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score.MeanSynthetic, 1e-12)
	assert.InDelta(t, 1.0-2.0/3.0, score.Value, 1e-9)
}

func TestObjectiveClassifierFailures(t *testing.T) {
	s := newTriangleSession(t)
	boom := errors.New("bad shapes")

	_, err := PositiveObjective(s, failingClassifier{err: boom}, nil)([]float64{0, 0})
	require.ErrorIs(t, err, ErrClassifierFit)
	require.ErrorIs(t, err, boom)

	_, err = NegativeObjective(s, shortModelClassifier{}, nil)([]float64{0, 0})
	var predictErr *ClassifierPredictError
	require.ErrorAs(t, err, &predictErr)
}

func TestObjectiveRejectsWrongDimension(t *testing.T) {
	s := newTriangleSession(t)

	_, err := PositiveObjective(s, constClassifier{p: 0.5}, nil)([]float64{1, 2, 3})
	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
}

func TestObjectiveFor(t *testing.T) {
	s := newTriangleSession(t)
	clf := constClassifier{p: 0.5}

	pos, err := ObjectiveFor(Positive, s, clf, nil)([]float64{0, 0})
	require.NoError(t, err)
	neg, err := ObjectiveFor(Negative, s, clf, nil)([]float64{0, 0})
	require.NoError(t, err)

	assert.InDelta(t, 0.03, pos.Value, 1e-12)
	assert.InDelta(t, 0.15, neg.Value, 1e-12)
}
