// Package segment slices the demographic search space so that every query
// against the paginated search endpoint stays under the server-side result
// cap. A segment covers an age range and optionally a sex; splitting halves
// the age range first and falls back to sex once a single year is reached.
package segment

import "fmt"

// Sexes are the values accepted by the sexId filter.
var Sexes = []string{"M", "F", "U"}

// Segment is one slice of the search space.
type Segment struct {
	AgeMin int
	AgeMax int
	Sex    string // empty = any
}

// Root covers the whole search space for the given age spectrum.
func Root(ageMin, ageMax int) Segment {
	return Segment{AgeMin: ageMin, AgeMax: ageMax}
}

// Split subdivides the segment. It returns false when the segment already
// covers a single year of a single sex and cannot shrink further.
func (s Segment) Split() ([]Segment, bool) {
	if s.AgeMin < s.AgeMax {
		mid := (s.AgeMin + s.AgeMax) / 2
		return []Segment{
			{AgeMin: s.AgeMin, AgeMax: mid, Sex: s.Sex},
			{AgeMin: mid + 1, AgeMax: s.AgeMax, Sex: s.Sex},
		}, true
	}
	if s.Sex == "" {
		out := make([]Segment, 0, len(Sexes))
		for _, sex := range Sexes {
			out = append(out, Segment{AgeMin: s.AgeMin, AgeMax: s.AgeMax, Sex: sex})
		}
		return out, true
	}
	return nil, false
}

// Label is the stable identifier used by the progress journal.
func (s Segment) Label() string {
	sex := s.Sex
	if sex == "" {
		sex = "*"
	}
	return fmt.Sprintf("age=%d-%d|sex=%s", s.AgeMin, s.AgeMax, sex)
}
