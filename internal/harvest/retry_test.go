package harvest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interpol-harvester/internal/interpol"
	"interpol-harvester/internal/model"
	"interpol-harvester/internal/sink"
)

func writeReport(t *testing.T, path string, rows []sink.CoverageRow) {
	t.Helper()
	require.NoError(t, sink.WriteReport(path, rows))
}

func TestRetryIncomplete_RecoversAndMerges(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "harvest.csv")
	reportPath := filepath.Join(dir, "report.csv")
	out := filepath.Join(dir, "corrected.csv")

	writeHarvest(t, input, []model.Notice{
		{EntityID: "2023/1", Nationalities: "SY", URL: "https://example.org/2023/1"},
	})
	writeReport(t, reportPath, []sink.CoverageRow{
		{Country: "FR", TotalAPI: 10, LocalCount: 10, Missing: 0, Coverage: 100},
		{Country: "SY", TotalAPI: 3, LocalCount: 1, Missing: 2, Coverage: 33.3},
	})

	probed := make(map[string]int)
	api := &stubAPI{
		total: func(color string, q interpol.Query) (int, error) {
			if q.Nationality != "" {
				probed["nat:"+q.Nationality]++
				return 2, nil
			}
			probed["birth:"+q.CountryOfBirth]++
			return 1, nil
		},
		search: func(color string, q interpol.Query) (model.SearchPage, error) {
			if q.Nationality != "" {
				// one already in the harvest, one genuinely new
				return model.SearchPage{Total: 2, Notices: []model.Payload{
					entryPayload("2023/1", "DOE"),
					entryPayload("2023/2", "ROE"),
				}}, nil
			}
			return model.SearchPage{Total: 1, Notices: []model.Payload{entryPayload("2023/3", "POE")}}, nil
		},
	}
	h := New(cfg, api)

	err := h.RetryIncomplete(context.Background(), input, reportPath, out, 100)
	require.NoError(t, err)

	// only SY was below threshold
	assert.Equal(t, map[string]int{"nat:SY": 1, "birth:SY": 1}, probed)

	merged, err := sink.ReadNotices(out)
	require.NoError(t, err)
	require.Len(t, merged, 3)
	assert.Equal(t, "2023/1", merged[0].EntityID)
	assert.Equal(t, "2023/2", merged[1].EntityID)
	assert.Equal(t, "2023/3", merged[2].EntityID)
}

func TestRetryIncomplete_NothingBelowThreshold(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "report.csv")
	out := filepath.Join(dir, "corrected.csv")

	writeReport(t, reportPath, []sink.CoverageRow{
		{Country: "FR", TotalAPI: 5, LocalCount: 5, Coverage: 100},
	})

	api := &stubAPI{
		total: func(color string, q interpol.Query) (int, error) {
			t.Fatal("no probe expected when every country is complete")
			return 0, nil
		},
		search: func(color string, q interpol.Query) (model.SearchPage, error) {
			return model.SearchPage{}, nil
		},
	}
	h := New(cfg, api)

	err := h.RetryIncomplete(context.Background(), "unused.csv", reportPath, out, 100)
	require.NoError(t, err)
	assert.NoFileExists(t, out)
}

func TestRetryIncomplete_ProbeFailureSkipsCountry(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "harvest.csv")
	reportPath := filepath.Join(dir, "report.csv")
	out := filepath.Join(dir, "corrected.csv")

	writeHarvest(t, input, nil)
	writeReport(t, reportPath, []sink.CoverageRow{
		{Country: "AA", TotalAPI: 4, LocalCount: 0, Coverage: 0},
		{Country: "BE", TotalAPI: 1, LocalCount: 0, Coverage: 0},
	})

	api := &stubAPI{
		total: func(color string, q interpol.Query) (int, error) {
			if q.Nationality == "AA" {
				return 0, assert.AnError
			}
			if q.CountryOfBirth != "" {
				return 0, nil
			}
			return 1, nil
		},
		search: func(color string, q interpol.Query) (model.SearchPage, error) {
			require.Equal(t, "BE", q.Nationality)
			return model.SearchPage{Total: 1, Notices: []model.Payload{entryPayload("2023/5", "DOE")}}, nil
		},
	}
	h := New(cfg, api)

	err := h.RetryIncomplete(context.Background(), input, reportPath, out, 100)
	require.NoError(t, err)

	merged, err := sink.ReadNotices(out)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "2023/5", merged[0].EntityID)
}

func TestMergeNotices(t *testing.T) {
	existing := []model.Notice{
		{EntityID: "2023/1", URL: "https://example.org/2023/1"},
	}
	recovered := []model.Notice{
		{EntityID: "2023/1", URL: "https://example.org/2023/1"}, // duplicate
		{EntityID: "2023/1", URL: "https://other.org/2023/1"},   // same id, new url
		{EntityID: "2023/2", URL: "https://example.org/2023/2"},
	}
	merged := mergeNotices(existing, recovered)
	require.Len(t, merged, 3)
	assert.Equal(t, "https://other.org/2023/1", merged[1].URL)
}
