package fpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// imbalancedFrame builds a frame with the given class counts
func imbalancedFrame(minority, majority int) (*Frame, []float64) {
	frame := NewFrame([]string{"a", "b"}, minority+majority)
	var target []float64
	for i := 0; i < minority; i++ {
		frame.Rows = append(frame.Rows, []float64{float64(i), 10})
		target = append(target, 1.0)
	}
	for i := 0; i < majority; i++ {
		frame.Rows = append(frame.Rows, []float64{float64(i), -10})
		target = append(target, 0.0)
	}
	return frame, target
}

func TestResampleReachesTheTargetRatio(t *testing.T) {
	cfg := DefaultFplConfig()
	cfg.Imbalance = ImbalanceResample

	frame, target := imbalancedFrame(20, 200)
	out, outTarget, err := Resample(frame, target, cfg)
	require.NoError(t, err)

	var minority, majority int
	for _, y := range outTarget {
		if y == 1.0 {
			minority++
		} else {
			majority++
		}
	}

	assert.GreaterOrEqual(t, minority, 20)
	// majority stays within the configured ratio of the grown minority
	assert.LessOrEqual(t, float64(majority), cfg.ResampleMajorityRatio*float64(minority)+1)
	assert.Len(t, out.Rows, len(outTarget))
}

func TestResampleSyntheticRowsStayInTheMinorityEnvelope(t *testing.T) {
	cfg := DefaultFplConfig()
	frame, target := imbalancedFrame(10, 100)
	out, outTarget, err := Resample(frame, target, cfg)
	require.NoError(t, err)

	// interpolated minority rows keep the constant minority feature value
	for i, y := range outTarget {
		if y == 1.0 {
			assert.Equal(t, 10.0, out.Rows[i][1])
		}
	}
}

func TestResampleIsDeterministic(t *testing.T) {
	cfg := DefaultFplConfig()
	frame, target := imbalancedFrame(15, 150)

	a, at, err := Resample(frame, target, cfg)
	require.NoError(t, err)
	b, bt, err := Resample(frame, target, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Rows, b.Rows)
	assert.Equal(t, at, bt)
}

func TestResampleBalancedInputIsUntouched(t *testing.T) {
	cfg := DefaultFplConfig()
	frame, target := imbalancedFrame(50, 50)

	out, outTarget, err := Resample(frame, target, cfg)
	require.NoError(t, err)
	assert.Equal(t, frame.Rows, out.Rows)
	assert.Equal(t, target, outTarget)
}

func TestResampleTooFewMinorityRowsIsError(t *testing.T) {
	cfg := DefaultFplConfig()
	frame, target := imbalancedFrame(1, 50)
	_, _, err := Resample(frame, target, cfg)
	assert.Error(t, err)
}
