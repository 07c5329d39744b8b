package ml

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"weathernode/internal/models"
)

// Node is one decision node in a compiled tree. Leaves have Left and
// Right set to -1 and carry the voted class.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Class     int     `json:"class"`
}

// Tree is a flattened decision tree; node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest is the compiled ensemble artifact produced by offline
// training, together with the scaling parameters it was trained with.
type Forest struct {
	ModelType string                   `json:"model_type"`
	Scaling   map[string]ScalingParams `json:"scaling"`
	Trees     []Tree                   `json:"trees"`
}

// LoadForest reads and validates a compiled forest artifact.
func LoadForest(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ml: failed to read model file: %w", err)
	}

	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ml: failed to unmarshal model: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	log.Printf("ML: Loaded model %q from %s (%d trees)", f.ModelType, path, len(f.Trees))
	return &f, nil
}

func (f *Forest) validate() error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("ml: model %q has no trees", f.ModelType)
	}
	for ti, tree := range f.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("ml: tree %d is empty", ti)
		}
		for ni, n := range tree.Nodes {
			if n.Left == -1 && n.Right == -1 {
				if n.Class < 0 || n.Class >= models.ClassCount {
					return fmt.Errorf("ml: tree %d node %d votes unknown class %d", ti, ni, n.Class)
				}
				continue
			}
			if n.Feature < 0 || n.Feature >= models.FeatureCount {
				return fmt.Errorf("ml: tree %d node %d splits on unknown feature %d", ti, ni, n.Feature)
			}
			if n.Left < 0 || n.Left >= len(tree.Nodes) || n.Right < 0 || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("ml: tree %d node %d has out-of-range children", ti, ni)
			}
		}
	}
	for name := range f.Scaling {
		if !validChannelName(name) {
			return fmt.Errorf("ml: scaling params for unknown channel %q", name)
		}
	}
	return nil
}

func validChannelName(name string) bool {
	for i := 0; i < models.FeatureCount; i++ {
		if models.Channel(i).String() == name {
			return true
		}
	}
	return false
}

// Predict runs a majority vote over the trees. Ties are broken by the
// lowest class index. Deterministic and side-effect free.
func (f *Forest) Predict(features [models.FeatureCount]float64) models.WeatherClass {
	var votes [models.ClassCount]int
	for _, tree := range f.Trees {
		votes[tree.predict(features)]++
	}

	best := 0
	for c := 1; c < models.ClassCount; c++ {
		if votes[c] > votes[best] {
			best = c
		}
	}
	return models.WeatherClass(best)
}

func (t *Tree) predict(features [models.FeatureCount]float64) int {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Left == -1 && n.Right == -1 {
			return n.Class
		}
		if features[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// ScalerFromArtifact builds the feature scaler from the scaling block
// shipped inside the model artifact, so normalization can never drift
// from the constants the forest was trained with.
func (f *Forest) ScalerFromArtifact() (*FeatureScaler, error) {
	var params [models.FeatureCount]ScalingParams
	for i := 0; i < models.FeatureCount; i++ {
		p, ok := f.Scaling[models.Channel(i).String()]
		if !ok {
			return nil, fmt.Errorf("ml: model artifact missing scaling params for %s", models.Channel(i))
		}
		params[i] = p
	}
	return NewFeatureScaler(params)
}

// CreateSampleForest writes a small hand-built forest artifact for
// running the station without a trained model. The trees encode coarse
// weather heuristics over the scaled feature space.
func CreateSampleForest(path string) error {
	leaf := func(class models.WeatherClass) Node {
		return Node{Feature: 0, Left: -1, Right: -1, Class: int(class)}
	}
	split := func(feature int, threshold float64, left, right int) Node {
		return Node{Feature: feature, Threshold: threshold, Left: left, Right: right, Class: -1}
	}

	const (
		fTemp = iota
		fHumid
		fPressure
		fLux
	)

	forest := Forest{
		ModelType: "RandomForest-sample",
		Scaling: map[string]ScalingParams{
			"temperature": {Min: 19.0, Max: 30.0},
			"humidity":    {Min: 29.3, Max: 56.9},
			"pressure":    {Min: 96352.68, Max: 100301.06},
			"lux":         {Min: 0.0, Max: 632.08},
		},
		Trees: []Tree{
			// Bright sky dominates; otherwise humidity splits wet from dry.
			{Nodes: []Node{
				split(fLux, 0.6, 1, 2),
				split(fHumid, 0.8, 3, 4),
				leaf(models.ClassSunny),
				leaf(models.ClassCloudy),
				split(fPressure, 0.3, 5, 6),
				leaf(models.ClassStormy),
				leaf(models.ClassFoggy),
			}},
			// Low pressure first, then dark-and-humid means rain.
			{Nodes: []Node{
				split(fPressure, 0.25, 1, 2),
				leaf(models.ClassStormy),
				split(fHumid, 0.7, 3, 4),
				split(fTemp, 0.7, 5, 6),
				split(fLux, 0.2, 7, 8),
				leaf(models.ClassCloudy),
				leaf(models.ClassSunny),
				leaf(models.ClassRainy),
				leaf(models.ClassCloudy),
			}},
			// Saturated air reads as fog unless it is dark enough to rain.
			{Nodes: []Node{
				split(fHumid, 0.85, 1, 2),
				split(fLux, 0.1, 3, 4),
				split(fLux, 0.15, 5, 6),
				leaf(models.ClassRainy),
				leaf(models.ClassFoggy),
				leaf(models.ClassRainy),
				split(fTemp, 0.75, 7, 8),
				leaf(models.ClassCloudy),
				leaf(models.ClassSunny),
			}},
		},
	}

	data, err := json.MarshalIndent(forest, "", "  ")
	if err != nil {
		return fmt.Errorf("ml: failed to marshal sample model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("ml: failed to write sample model: %w", err)
	}

	log.Printf("ML: Created sample model at %s", path)
	return nil
}
