package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliffadillah/durian-leaf-classification/internal/dataset"
	"github.com/aliffadillah/durian-leaf-classification/internal/feature"
	"github.com/aliffadillah/durian-leaf-classification/internal/leafimage"
)

func TestFitScalerCommand(t *testing.T) {
	dir := t.TempDir()
	csv := filepath.Join(dir, "features.csv")
	out := filepath.Join(dir, "scaler.json")
	require.NoError(t, os.WriteFile(csv, []byte(
		"contrast,correlation,energy,homogeneity,label\n"+
			"1,0.5,0.1,0.2,A\n"+
			"3,0.7,0.3,0.4,B\n"), 0o644))

	require.NoError(t, leaftool().Dispatch([]string{"fitscaler", "-csv", csv, "-out", out}))

	s, err := feature.LoadScaler(out)
	require.NoError(t, err)
	assert.InDelta(t, 2, s.Mean[feature.Contrast], 1e-12)
	assert.InDelta(t, 1, s.Std[feature.Contrast], 1e-12)
}

func TestSegmentAndExtractCommands(t *testing.T) {
	dir := t.TempDir()
	img := leafimage.New(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, uint8(40+(x*7+y*13)%60), uint8(120+(x*x+y)%90), uint8(30+(x+y*y)%40))
		}
	}
	require.NoError(t, leafimage.EncodeFile(filepath.Join(dir, "photos", "HEALTHY", "a.png"), img))

	segmented := filepath.Join(dir, "segmented")
	require.NoError(t, leaftool().Dispatch([]string{"segment", "-in", filepath.Join(dir, "photos"), "-out", segmented}))
	assert.FileExists(t, filepath.Join(segmented, "HEALTHY", "a.png"))

	csv := filepath.Join(dir, "features.csv")
	require.NoError(t, leaftool().Dispatch([]string{"extract", "-in", segmented, "-out", csv}))
	d, err := dataset.LoadCSV(csv)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, "HEALTHY", d.Records()[0].Label)
}

func TestMissingRequiredFlag(t *testing.T) {
	inDir, outPath, csvPath = "", "", ""
	err := leaftool().Dispatch([]string{"fitscaler", "-out", filepath.Join(t.TempDir(), "s.json")})
	assert.Error(t, err)
}

func TestClassifyNeedsImage(t *testing.T) {
	assert.Error(t, leaftool().Dispatch([]string{"classify"}))
}
