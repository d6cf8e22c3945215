package snapshot

import (
	"encoding/json"
	"testing"
	"time"

	"archive-session-store/internal/entity"

	"github.com/stretchr/testify/assert"
)

func sampleArtifact() *entity.Artifact {
	earliest := time.Date(2019, 3, 14, 9, 26, 53, 0, time.UTC)
	latest := time.Date(2023, 11, 2, 18, 30, 0, 0, time.UTC)

	return &entity.Artifact{
		Columns: []entity.Column{
			{Name: "id", Type: entity.ColumnTypeString},
			{Name: "created_at", Type: entity.ColumnTypeTimestamp},
			{Name: "text", Type: entity.ColumnTypeString},
			{Name: "favorite_count", Type: entity.ColumnTypeInteger},
			{Name: "sentiment", Type: entity.ColumnTypeFloat},
			{Name: "is_retweet", Type: entity.ColumnTypeBoolean},
		},
		Rows: [][]string{
			{"1001", "2019-03-14T09:26:53Z", "hello world", "12", "0.45", "false"},
			{"1002", "2023-11-02T18:30:00Z", "goodbye", "3", "-0.10", "true"},
		},
		Summary: entity.Summary{
			RecordCount:    2,
			RecordsByType:  map[string]int64{"tweet": 2},
			EarliestRecord: &earliest,
			LatestRecord:   &latest,
			Text:           "Total records: 2",
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := sampleArtifact()

	blob, err := Encode(original)
	assert.NoError(t, err)
	assert.NotEmpty(t, blob)

	decoded, err := Decode(blob)
	assert.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestEncodeRejectsNilArtifact(t *testing.T) {
	_, err := Encode(nil)
	assert.Error(t, err)
}

func TestDecodeRejectsCorruptBlobs(t *testing.T) {
	valid, err := Encode(sampleArtifact())
	assert.NoError(t, err)

	cases := []struct {
		name string
		blob []byte
	}{
		{"empty", []byte{}},
		{"garbage", []byte("not json at all")},
		{"truncated", valid[:len(valid)/2]},
		{"foreign json", []byte(`{"df": "...", "timestamp": "2024-01-01"}`)},
		{"wrong format tag", []byte(`{"format":"something-else","version":1,"artifact":{"columns":[],"rows":[]}}`)},
		{"missing artifact", []byte(`{"format":"archive-analyzer/snapshot","version":1}`)},
		{"null artifact", []byte(`{"format":"archive-analyzer/snapshot","version":1,"artifact":null}`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.blob)
			assert.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	}
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	blob, err := json.Marshal(map[string]interface{}{
		"format":   Format,
		"version":  Version + 1,
		"artifact": sampleArtifact(),
	})
	assert.NoError(t, err)

	_, err = Decode(blob)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}
