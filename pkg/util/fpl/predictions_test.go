package fpl

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePredictionsCSV(t *testing.T) {
	predictions := []*Prediction{
		{PlayerName: "Bukayo Saka", OppositionName: "Spurs", Points: 9, Probability: 0.81},
		{PlayerName: "Son Heung-min", OppositionName: "Arsenal", Points: 2, Probability: 0.44},
		{PlayerName: "Late Signing", OppositionName: "Spurs", Points: SentinelInt, Probability: 0.12},
	}

	path := filepath.Join(t.TempDir(), "predictionsGW4.csv")
	require.NoError(t, writePredictionsCSV(predictions, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"player_name", "opposition_name", "points", "probability"}, rows[0])
	assert.Equal(t, []string{"Bukayo Saka", "Spurs", "9", "0.8100"}, rows[1])
	// future rows carry the points sentinel through unchanged
	assert.Equal(t, "-1", rows[3][2])
}
