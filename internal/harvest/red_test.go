package harvest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interpol-harvester/internal/interpol"
	"interpol-harvester/internal/model"
	"interpol-harvester/internal/sink"
)

func TestRed_PaginatesAndHydrates(t *testing.T) {
	cfg := testConfig(t)
	cfg.Harvest.PerPage = 2

	detailCalls := make(map[string]int)
	api := &stubAPI{
		search: func(color string, q interpol.Query) (model.SearchPage, error) {
			require.Equal(t, interpol.ColorRed, color)
			switch q.Page {
			case 1:
				return model.SearchPage{Total: 3, Notices: []model.Payload{
					entryPayload("2023/1", "DOE"),
					entryPayload("2023/2", "ROE"),
				}}, nil
			case 2:
				return model.SearchPage{Total: 3, Notices: []model.Payload{
					entryPayload("2023/3", "POE"),
				}}, nil
			default:
				return model.SearchPage{Total: 3}, nil
			}
		},
		detail: func(color, version, entityID string) (model.Payload, error) {
			require.Equal(t, "v1", version)
			detailCalls[entityID]++
			return model.Payload{"sex_id": "M", "nationalities": []any{"FR"}}, nil
		},
	}

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "red.csv")
	jsonPath := filepath.Join(dir, "red.json")
	h := New(cfg, api, sink.NewCSV(csvPath), sink.NewJSON(jsonPath))

	notices, err := h.Red(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, notices, 3)

	// detail values merged in, absent columns filled with N/A
	assert.Equal(t, "2023/1", notices[0].EntityID)
	assert.Equal(t, "DOE", notices[0].Name)
	assert.Equal(t, "M", notices[0].Sex)
	assert.Equal(t, "FR", notices[0].Nationalities)
	assert.Equal(t, "N/A", notices[0].BirthName)
	assert.Equal(t, 1, detailCalls["2023/1"])
	assert.Equal(t, 1, detailCalls["2023/3"])

	// both sinks got the final snapshot
	back, err := sink.ReadNotices(csvPath)
	require.NoError(t, err)
	assert.Len(t, back, 3)
	require.FileExists(t, jsonPath)
}

func TestRed_WithoutDetails(t *testing.T) {
	cfg := testConfig(t)
	api := &stubAPI{
		search: func(color string, q interpol.Query) (model.SearchPage, error) {
			if q.Page > 1 {
				return model.SearchPage{Total: 1}, nil
			}
			return model.SearchPage{Total: 1, Notices: []model.Payload{entryPayload("2023/1", "DOE")}}, nil
		},
		detail: func(color, version, entityID string) (model.Payload, error) {
			t.Fatal("detail endpoint must not be called")
			return nil, nil
		},
	}
	h := New(cfg, api)

	notices, err := h.Red(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, "N/A", notices[0].Sex)
}

func TestRed_DetailFailureKeepsListEntry(t *testing.T) {
	cfg := testConfig(t)
	api := &stubAPI{
		search: func(color string, q interpol.Query) (model.SearchPage, error) {
			if q.Page > 1 {
				return model.SearchPage{Total: 1}, nil
			}
			return model.SearchPage{Total: 1, Notices: []model.Payload{entryPayload("2023/1", "DOE")}}, nil
		},
		detail: func(color, version, entityID string) (model.Payload, error) {
			return nil, errors.New("upstream flaked")
		},
	}
	h := New(cfg, api)

	notices, err := h.Red(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, "DOE", notices[0].Name)
}

func TestRed_DeduplicatesAcrossPages(t *testing.T) {
	cfg := testConfig(t)
	cfg.Harvest.PerPage = 1
	api := &stubAPI{
		search: func(color string, q interpol.Query) (model.SearchPage, error) {
			// the same record shows up on both pages
			if q.Page <= 2 {
				return model.SearchPage{Total: 2, Notices: []model.Payload{entryPayload("2023/1", "DOE")}}, nil
			}
			return model.SearchPage{Total: 2}, nil
		},
	}
	h := New(cfg, api)

	notices, err := h.Red(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, notices, 1)
}

func TestRed_EmptyFirstPage(t *testing.T) {
	cfg := testConfig(t)
	api := &stubAPI{
		search: func(color string, q interpol.Query) (model.SearchPage, error) {
			return model.SearchPage{Total: 0}, nil
		},
	}
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "red.csv")
	h := New(cfg, api, sink.NewCSV(csvPath))

	notices, err := h.Red(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, notices)

	back, err := sink.ReadNotices(csvPath)
	require.NoError(t, err)
	assert.Empty(t, back)
}
