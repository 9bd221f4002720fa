package eval

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LoadValue reads a Value's weights from a plain-text file, one weight per
// line.
func LoadValue(path string) (*Value, error) {
	weights, err := loadWeights(path, NumValueFeatures)
	if err != nil {
		return nil, errors.Wrapf(err, "eval: loading value weights from %s", path)
	}
	return NewValue(weights)
}

// LoadPolicy reads a Policy's weights from a plain-text file, one weight per
// line.
func LoadPolicy(path string) (*Policy, error) {
	weights, err := loadWeights(path, NumPolicyFeatures)
	if err != nil {
		return nil, errors.Wrapf(err, "eval: loading policy weights from %s", path)
	}
	return NewPolicy(weights)
}

// Save writes v's weights to path, one per line, backing up any existing file
// to path+"~" first.
func (v *Value) Save(path string) error {
	return saveWeights(path, v.weights)
}

// Save writes p's weights to path, one per line, backing up any existing file
// to path+"~" first.
func (p *Policy) Save(path string) error {
	return saveWeights(path, p.weights)
}

func loadWeights(path string, want int) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) < want {
		return nil, errors.Errorf("file has %d values, need %d", len(lines), want)
	}
	weights := make([]float32, want)
	for i := 0; i < want; i++ {
		f, err := strconv.ParseFloat(strings.TrimSpace(lines[i]), 32)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing weight on line %d", i+1)
		}
		weights[i] = float32(f)
	}
	return weights, nil
}

func saveWeights(path string, weights []float32) error {
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+"~"); err != nil {
			return errors.Wrapf(err, "backing up %s", path)
		}
	}
	lines := make([]string, len(weights))
	for i, w := range weights {
		lines[i] = strconv.FormatFloat(float64(w), 'g', -1, 32)
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}
