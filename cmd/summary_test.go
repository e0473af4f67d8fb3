package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/videolabeler/labels"
	"github.com/lepinkainen/videolabeler/types"
)

func writeLabels(t *testing.T, set labels.Set) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labels.json")
	require.NoError(t, labels.Save(path, set))
	return path
}

func TestSummaryCmd_PlainOutput(t *testing.T) {
	path := writeLabels(t, labels.Set{
		{VideoPath: "videos/a.mp4", SpaceBar: true, PHash: "p:0000000000000000"},
		{VideoPath: "videos/b.mp4", SpaceBar: false, PHash: "p:0000000000000001"},
		{VideoPath: "videos/c.mp4", SpaceBar: false},
	})

	cmd := &SummaryCmd{LabelsFile: path, Threshold: 10, NoTUI: true}
	assert.NoError(t, cmd.Run(&types.AppContext{Version: "test"}))
}

func TestSummaryCmd_EmptyFile(t *testing.T) {
	path := writeLabels(t, labels.Set{})

	cmd := &SummaryCmd{LabelsFile: path, Threshold: 10, NoTUI: true}
	assert.NoError(t, cmd.Run(&types.AppContext{}))
}

func TestSummaryCmd_InvalidThreshold(t *testing.T) {
	path := writeLabels(t, labels.Set{})

	for _, threshold := range []int{-1, 65} {
		cmd := &SummaryCmd{LabelsFile: path, Threshold: threshold, NoTUI: true}
		assert.Error(t, cmd.Run(&types.AppContext{}), "threshold %d", threshold)
	}
}

func TestSummaryCmd_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	cmd := &SummaryCmd{LabelsFile: path, Threshold: 10, NoTUI: true}
	assert.Error(t, cmd.Run(&types.AppContext{}))
}
