package harvest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interpol-harvester/internal/interpol"
	"interpol-harvester/internal/model"
)

func TestAllCountryCodes(t *testing.T) {
	codes := AllCountryCodes()
	require.Len(t, codes, 676)
	assert.Equal(t, "AA", codes[0])
	assert.Equal(t, "AZ", codes[25])
	assert.Equal(t, "ZZ", codes[675])
}

func TestSweepCountry_DirectWhenUnderCap(t *testing.T) {
	cfg := testConfig(t)
	api := &stubAPI{
		total: func(color string, q interpol.Query) (int, error) {
			if q.Nationality == "FR" {
				return 2, nil
			}
			return 0, nil // country_of_birth probe
		},
		search: func(color string, q interpol.Query) (model.SearchPage, error) {
			require.Equal(t, "FR", q.Nationality)
			return model.SearchPage{Total: 2, Notices: []model.Payload{
				entryPayload("2023/1", "DOE"),
				entryPayload("2023/2", "ROE"),
			}}, nil
		},
		detail: func(color, version, entityID string) (model.Payload, error) {
			t.Fatal("sweep must not hydrate details")
			return nil, nil
		},
	}
	h := New(cfg, api)

	var all []model.Notice
	added, err := h.sweepCountry(context.Background(), "FR", &all)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, "FR", all[0].Nationalities) // query fallback
}

func TestSweepCountry_RefinesBySex(t *testing.T) {
	cfg := testConfig(t)
	api := &stubAPI{
		total: func(color string, q interpol.Query) (int, error) {
			if q.CountryOfBirth != "" {
				return 0, nil
			}
			if q.Sex == "" {
				return 500, nil // over the page cap, must refine
			}
			if q.Sex == "M" {
				return 1, nil
			}
			return 0, nil
		},
		search: func(color string, q interpol.Query) (model.SearchPage, error) {
			require.Equal(t, "M", q.Sex)
			return model.SearchPage{Total: 1, Notices: []model.Payload{entryPayload("2023/3", "POE")}}, nil
		},
	}
	h := New(cfg, api)

	var all []model.Notice
	added, err := h.sweepCountry(context.Background(), "SY", &all)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, "M", all[0].Sex)
	assert.Equal(t, "SY", all[0].Nationalities)
}

func TestSweepCountry_RefinesByAge(t *testing.T) {
	cfg := testConfig(t)
	cfg.Harvest.AgeMin = 0
	cfg.Harvest.AgeMax = 3
	api := &stubAPI{
		total: func(color string, q interpol.Query) (int, error) {
			switch {
			case q.CountryOfBirth != "":
				return 0, nil
			case q.Sex == "":
				return 500, nil
			case q.Sex != "F":
				return 0, nil
			case q.AgeMin == interpol.AgeUnset:
				return 500, nil // the F bucket itself is over the cap
			case q.AgeMin == 1:
				return 1, nil
			default:
				return 0, nil
			}
		},
		search: func(color string, q interpol.Query) (model.SearchPage, error) {
			require.Equal(t, 1, q.AgeMin)
			require.Equal(t, 2, q.AgeMax)
			return model.SearchPage{Total: 1, Notices: []model.Payload{entryPayload("2023/4", "LOE")}}, nil
		},
	}
	h := New(cfg, api)

	var all []model.Notice
	added, err := h.sweepCountry(context.Background(), "IQ", &all)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
}

func TestSweepCountry_BirthCountryPassFindsExtras(t *testing.T) {
	cfg := testConfig(t)
	api := &stubAPI{
		total: func(color string, q interpol.Query) (int, error) {
			if q.CountryOfBirth == "BE" {
				return 2, nil
			}
			return 1, nil
		},
		search: func(color string, q interpol.Query) (model.SearchPage, error) {
			if q.CountryOfBirth == "BE" {
				// one overlaps the nationality pass, one is new
				return model.SearchPage{Total: 2, Notices: []model.Payload{
					entryPayload("2023/5", "DOE"),
					entryPayload("2023/6", "ROE"),
				}}, nil
			}
			return model.SearchPage{Total: 1, Notices: []model.Payload{entryPayload("2023/5", "DOE")}}, nil
		},
	}
	h := New(cfg, api)

	var all []model.Notice
	added, err := h.sweepCountry(context.Background(), "BE", &all)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, "BE", all[1].CountryOfBirth)
}

func TestCountrySweep_SkipsFailedCountry(t *testing.T) {
	cfg := testConfig(t)
	probed := make(map[string]bool)
	api := &stubAPI{
		total: func(color string, q interpol.Query) (int, error) {
			if q.Nationality != "" {
				probed[q.Nationality] = true
				if q.Nationality == "AA" {
					return 0, fmt.Errorf("upstream hiccup")
				}
			}
			return 0, nil
		},
		search: func(color string, q interpol.Query) (model.SearchPage, error) {
			return model.SearchPage{}, nil
		},
	}
	h := New(cfg, api)

	notices, err := h.CountrySweep(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notices)
	assert.True(t, probed["AB"], "sweep should continue past a failed country")
	assert.True(t, probed["ZZ"])
}

func TestCountrySweep_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	api := &stubAPI{
		total: func(color string, q interpol.Query) (int, error) {
			calls++
			cancel()
			return 0, ctx.Err()
		},
		search: func(color string, q interpol.Query) (model.SearchPage, error) {
			return model.SearchPage{}, nil
		},
	}
	h := New(cfg, api)

	_, err := h.CountrySweep(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
