package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Payload is one notice object as returned by the API, either a list entry
// from the search endpoint or a detail document. The API is loose about
// types (numbers vs strings, null vs missing), so everything goes through
// the accessors below.
type Payload map[string]any

// Str returns the first non-empty value among keys, stringified and trimmed.
func (p Payload) Str(keys ...string) string {
	for _, k := range keys {
		v, ok := p[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case float64:
			// JSON numbers decode as float64; heights/weights are integral
			if t == float64(int64(t)) {
				return strconv.FormatInt(int64(t), 10)
			}
			return strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(t)
		default:
			if s := strings.TrimSpace(fmt.Sprint(t)); s != "" && s != "<nil>" {
				return s
			}
		}
	}
	return ""
}

// Join stringifies a list-valued field, joining entries with sep.
// A scalar value passes through unchanged.
func (p Payload) Join(key, sep string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	arr, ok := v.([]any)
	if !ok {
		return p.Str(key)
	}
	parts := make([]string, 0, len(arr))
	for _, it := range arr {
		if it == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(it)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

// Link extracts _links.<name>.href.
func (p Payload) Link(name string) string {
	links, ok := p["_links"].(map[string]any)
	if !ok {
		return ""
	}
	entry, ok := links[name].(map[string]any)
	if !ok {
		return ""
	}
	href, _ := entry["href"].(string)
	return strings.TrimSpace(href)
}

// EntityID returns the record identifier, falling back to "id".
func (p Payload) EntityID() string {
	return p.Str("entity_id", "id")
}

// SearchPage is the decoded envelope of one search response.
type SearchPage struct {
	Total   int
	Query   Payload
	Notices []Payload
}

// DecodeSearchPage parses a search response body. The notices array lives
// under _embedded.notices; both the wrapper and the array may be absent.
func DecodeSearchPage(raw []byte) (SearchPage, error) {
	var body struct {
		Total    json.Number `json:"total"`
		Query    Payload     `json:"query"`
		Embedded struct {
			Notices []Payload `json:"notices"`
		} `json:"_embedded"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return SearchPage{}, fmt.Errorf("decode search page: %w", err)
	}
	total, _ := body.Total.Int64()
	page := SearchPage{Total: int(total), Query: body.Query, Notices: body.Embedded.Notices}
	if page.Total <= 0 {
		page.Total = len(page.Notices)
	}
	return page, nil
}

// Flatten merges a list entry with its detail payload into one Notice.
// Detail values win; the list entry fills whatever the detail left empty.
// List-valued fields join with sep.
func Flatten(entry, detail Payload, sep string) Notice {
	if entry == nil {
		entry = Payload{}
	}
	if detail == nil {
		detail = Payload{}
	}
	pick := func(keys ...string) string {
		if s := detail.Str(keys...); s != "" {
			return s
		}
		return entry.Str(keys...)
	}
	join := func(key string) string {
		if s := detail.Join(key, sep); s != "" {
			return s
		}
		return entry.Join(key, sep)
	}
	link := func(name string) string {
		if s := detail.Link(name); s != "" {
			return s
		}
		return entry.Link(name)
	}

	return Notice{
		EntityID:               pick("entity_id", "id"),
		Name:                   pick("name"),
		Forename:               pick("forename"),
		BirthName:              pick("birth_name"),
		DateOfBirth:            pick("date_of_birth"),
		PlaceOfBirth:           pick("place_of_birth"),
		CountryOfBirth:         pick("country_of_birth_id"),
		Nationalities:          join("nationalities"),
		Sex:                    pick("sex_id"),
		Height:                 pick("height"),
		Weight:                 pick("weight"),
		EyesColors:             join("eyes_colors_id"),
		Hairs:                  join("hairs_id"),
		DistinguishingMarks:    pick("distinguishing_marks"),
		FatherForename:         pick("father_forename"),
		FatherName:             pick("father_name"),
		MotherForename:         pick("mother_forename"),
		MotherName:             pick("mother_name"),
		DateOfEvent:            pick("date_of_event"),
		Place:                  pick("place"),
		Country:                pick("country"),
		Languages:              join("languages_spoken_ids"),
		IssuingCountry:         pick("issuing_country"),
		CountriesLikelyVisited: join("countries_likely_to_be_visited"),
		URL:                    link("self"),
		ImagesURL:              link("images"),
		ThumbnailURL:           link("thumbnail"),
	}
}

// FillNA replaces every empty column with the given placeholder. The red
// harvest historically wrote "N/A" for absent values.
func (n Notice) FillNA(placeholder string) Notice {
	row := n.Row()
	header := Columns()
	for i, v := range row {
		if v == "" {
			row[i] = placeholder
		}
	}
	return FromRow(header, row)
}
