package ml

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weathernode/internal/models"
)

func leafNode(class models.WeatherClass) Node {
	return Node{Left: -1, Right: -1, Class: int(class)}
}

func TestForest_MajorityVote(t *testing.T) {
	f := &Forest{
		ModelType: "test",
		Trees: []Tree{
			{Nodes: []Node{leafNode(models.ClassSunny)}},
			{Nodes: []Node{leafNode(models.ClassSunny)}},
			{Nodes: []Node{leafNode(models.ClassRainy)}},
		},
	}

	got := f.Predict([models.FeatureCount]float64{0.5, 0.5, 0.5, 0.5})
	assert.Equal(t, models.ClassSunny, got)
}

func TestForest_TieBrokenByLowestClass(t *testing.T) {
	f := &Forest{
		ModelType: "test",
		Trees: []Tree{
			{Nodes: []Node{leafNode(models.ClassSunny)}},
			{Nodes: []Node{leafNode(models.ClassRainy)}},
		},
	}

	// One vote each: Rainy (2) wins over Sunny (4).
	got := f.Predict([models.FeatureCount]float64{0, 0, 0, 0})
	assert.Equal(t, models.ClassRainy, got)
}

func TestForest_SplitRouting(t *testing.T) {
	f := &Forest{
		ModelType: "test",
		Trees: []Tree{
			{Nodes: []Node{
				{Feature: 3, Threshold: 0.6, Left: 1, Right: 2},
				leafNode(models.ClassCloudy),
				leafNode(models.ClassSunny),
			}},
		},
	}

	assert.Equal(t, models.ClassCloudy, f.Predict([models.FeatureCount]float64{0, 0, 0, 0.6}))
	assert.Equal(t, models.ClassSunny, f.Predict([models.FeatureCount]float64{0, 0, 0, 0.61}))
}

func TestForest_Deterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, CreateSampleForest(path))

	f, err := LoadForest(path)
	require.NoError(t, err)

	features := [models.FeatureCount]float64{0.4, 0.9, 0.2, 0.05}
	first := f.Predict(features)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, f.Predict(features))
	}
}

func TestLoadForest_RoundTripAndScaler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, CreateSampleForest(path))

	f, err := LoadForest(path)
	require.NoError(t, err)
	assert.Len(t, f.Trees, 3)

	s, err := f.ScalerFromArtifact()
	require.NoError(t, err)

	p, err := s.Params(models.ChannelTemperature)
	require.NoError(t, err)
	assert.Equal(t, 19.0, p.Min)
	assert.Equal(t, 30.0, p.Max)
}

func TestForestValidate_RejectsBadArtifacts(t *testing.T) {
	cases := []struct {
		name string
		f    Forest
	}{
		{"no trees", Forest{ModelType: "t"}},
		{"empty tree", Forest{ModelType: "t", Trees: []Tree{{}}}},
		{"bad class", Forest{ModelType: "t", Trees: []Tree{
			{Nodes: []Node{{Left: -1, Right: -1, Class: 9}}},
		}}},
		{"bad feature", Forest{ModelType: "t", Trees: []Tree{
			{Nodes: []Node{{Feature: 7, Left: 1, Right: 1}, leafNode(0)}},
		}}},
		{"bad child index", Forest{ModelType: "t", Trees: []Tree{
			{Nodes: []Node{{Feature: 0, Left: 5, Right: 1}, leafNode(0)}},
		}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.f.validate())
		})
	}
}
