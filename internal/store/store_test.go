package store

import (
	"encoding/json"
	"io"
	"testing"

	"epextract/pkg/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() (*Store, afero.Fs) {
	fs := afero.NewMemMapFs()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(fs, "extracted_links.json", log), fs
}

func sampleRecord(mainURL string) models.RunRecord {
	record := models.RunRecord{
		MainURL:     mainURL,
		ProcessedAt: "2025-08-30T10:00:00Z",
		Episodes: []models.EpisodeResult{
			{Episode: "Episode 1", Status: models.StatusSuccess, FinalDownloadLink: "https://drive.google.com/file/1", Timestamp: "2025-08-30T10:00:30Z"},
			{Episode: "Episode 2", Status: models.StatusPartial, Error: "Final download link not found with headless browser"},
			{Episode: "Episode 3", Status: models.StatusFailed, Error: "Instant DL link not found"},
		},
	}
	record.Tally()
	return record
}

func TestLoadMissingFile(t *testing.T) {
	s, _ := newTestStore()
	assert.Empty(t, s.Load())
}

func TestLoadCorruptFile(t *testing.T) {
	s, fs := newTestStore()
	require.NoError(t, afero.WriteFile(fs, "extracted_links.json", []byte("{not json"), 0644))

	assert.Empty(t, s.Load())
}

func TestAppendAndLoad(t *testing.T) {
	s, _ := newTestStore()

	require.NoError(t, s.Append(sampleRecord("https://example.com/a")))
	require.NoError(t, s.Append(sampleRecord("https://example.com/b")))

	records := s.Load()
	require.Len(t, records, 2)
	assert.Equal(t, "https://example.com/a", records[0].MainURL)
	assert.Equal(t, "https://example.com/b", records[1].MainURL)
}

func TestAppendPreservesCounts(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.Append(sampleRecord("https://example.com/a")))

	records := s.Load()
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, 3, r.TotalEpisodes)
	assert.Equal(t, 1, r.Successful)
	assert.Equal(t, 1, r.Partial)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, r.TotalEpisodes, r.Successful+r.Partial+r.Failed)
}

func TestRewriteIsIdempotent(t *testing.T) {
	s, fs := newTestStore()
	require.NoError(t, s.Append(sampleRecord("https://example.com/a")))

	before, err := afero.ReadFile(fs, "extracted_links.json")
	require.NoError(t, err)

	// Reading the log and writing it back unchanged must not alter the
	// structured content
	require.NoError(t, s.write(s.load()))

	after, err := afero.ReadFile(fs, "extracted_links.json")
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestEpisodeFieldNames(t *testing.T) {
	s, fs := newTestStore()
	require.NoError(t, s.Append(sampleRecord("https://example.com/a")))

	data, err := afero.ReadFile(fs, "extracted_links.json")
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)

	assert.Contains(t, raw[0], "main_url")
	assert.Contains(t, raw[0], "processed_at")
	assert.Contains(t, raw[0], "total_episodes")

	episodes, ok := raw[0]["episodes"].([]any)
	require.True(t, ok)
	first, ok := episodes[0].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, first, "episode")
	assert.Contains(t, first, "final_download_link")
	// Optional fields stay absent on non-success episodes
	third, ok := episodes[2].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, third, "final_download_link")
	assert.NotContains(t, third, "timestamp")
}

func TestAppendToCorruptFileStartsFresh(t *testing.T) {
	s, fs := newTestStore()
	require.NoError(t, afero.WriteFile(fs, "extracted_links.json", []byte("]["), 0644))

	require.NoError(t, s.Append(sampleRecord("https://example.com/a")))

	records := s.Load()
	require.Len(t, records, 1)
	assert.Equal(t, "https://example.com/a", records[0].MainURL)
}
