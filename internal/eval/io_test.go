package eval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "value.model")
	weights := make([]float32, NumValueFeatures)
	for i := range weights {
		weights[i] = float32(i) * 0.5
	}
	v, err := NewValue(weights)
	require.NoError(t, err)
	require.NoError(t, v.Save(path))

	loaded, err := LoadValue(path)
	require.NoError(t, err)
	require.Equal(t, v.Weights(), loaded.Weights())
}

func TestValueSaveBacksUpExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "value.model")
	v1 := NewZeroValue()
	require.NoError(t, v1.Save(path))

	weights := make([]float32, NumValueFeatures)
	weights[0] = 7
	v2, err := NewValue(weights)
	require.NoError(t, err)
	require.NoError(t, v2.Save(path))

	backup, err := LoadValue(path + "~")
	require.NoError(t, err)
	require.Equal(t, v1.Weights(), backup.Weights())
}

func TestLoadValueRejectsShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.model")
	require.NoError(t, os.WriteFile(path, []byte("1\n2\n"), 0644))
	_, err := LoadValue(path)
	require.Error(t, err)
}
