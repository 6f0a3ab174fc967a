package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/vitalrisk/internal/model"
)

func TestChannelSource_Order(t *testing.T) {
	runID := uuid.New()
	ch := make(chan *model.ReportRow, 2)
	ch <- &model.ReportRow{RunID: runID, Seq: 1, Report: model.PatientReport{PatientID: "A"}}
	ch <- &model.ReportRow{RunID: runID, Seq: 2, Report: model.PatientReport{PatientID: "B", Fever: true}}
	close(ch)

	src := NewChannelSource(ch)

	require.True(t, src.Next())
	vals, err := src.Values()
	require.NoError(t, err)
	require.Len(t, vals, len(model.CopyColumns()))
	assert.Equal(t, runID, vals[0])
	assert.Equal(t, int32(1), vals[1])
	assert.Equal(t, "A", vals[2])

	require.True(t, src.Next())
	vals, _ = src.Values()
	assert.Equal(t, "B", vals[2])
	assert.Equal(t, true, vals[10])

	assert.False(t, src.Next())
	assert.NoError(t, src.Err())
}
