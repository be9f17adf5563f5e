package model

// Notice is the flattened representation of one notice, regardless of which
// payload shape (list entry or detail) supplied each value.
type Notice struct {
	EntityID               string `json:"entity_id"`
	Name                   string `json:"name"`
	Forename               string `json:"forename"`
	BirthName              string `json:"birth_name"`
	DateOfBirth            string `json:"date_of_birth"`
	PlaceOfBirth           string `json:"place_of_birth"`
	CountryOfBirth         string `json:"country_of_birth"`
	Nationalities          string `json:"nationalities"`
	Sex                    string `json:"sex"`
	Height                 string `json:"height"`
	Weight                 string `json:"weight"`
	EyesColors             string `json:"eyes_colors"`
	Hairs                  string `json:"hairs"`
	DistinguishingMarks    string `json:"distinguishing_marks"`
	FatherForename         string `json:"father_forename"`
	FatherName             string `json:"father_name"`
	MotherForename         string `json:"mother_forename"`
	MotherName             string `json:"mother_name"`
	DateOfEvent            string `json:"date_of_event"`
	Place                  string `json:"place"`
	Country                string `json:"country"`
	Languages              string `json:"languages"`
	IssuingCountry         string `json:"issuing_country"`
	CountriesLikelyVisited string `json:"countries_likely_visited"`
	URL                    string `json:"url"`
	ImagesURL              string `json:"images_url"`
	ThumbnailURL           string `json:"thumbnail_url"`
}

// Columns is the CSV header, in output order.
func Columns() []string {
	return []string{
		"entity_id",
		"name",
		"forename",
		"birth_name",
		"date_of_birth",
		"place_of_birth",
		"country_of_birth",
		"nationalities",
		"sex",
		"height",
		"weight",
		"eyes_colors",
		"hairs",
		"distinguishing_marks",
		"father_forename",
		"father_name",
		"mother_forename",
		"mother_name",
		"date_of_event",
		"place",
		"country",
		"languages",
		"issuing_country",
		"countries_likely_visited",
		"url",
		"images_url",
		"thumbnail_url",
	}
}

// Row returns the record's values in the same order as Columns.
func (n *Notice) Row() []string {
	return []string{
		n.EntityID,
		n.Name,
		n.Forename,
		n.BirthName,
		n.DateOfBirth,
		n.PlaceOfBirth,
		n.CountryOfBirth,
		n.Nationalities,
		n.Sex,
		n.Height,
		n.Weight,
		n.EyesColors,
		n.Hairs,
		n.DistinguishingMarks,
		n.FatherForename,
		n.FatherName,
		n.MotherForename,
		n.MotherName,
		n.DateOfEvent,
		n.Place,
		n.Country,
		n.Languages,
		n.IssuingCountry,
		n.CountriesLikelyVisited,
		n.URL,
		n.ImagesURL,
		n.ThumbnailURL,
	}
}

// FromRow rebuilds a Notice from a CSV row keyed by header name. Unknown
// columns are ignored so reports and older files stay readable.
func FromRow(header, row []string) Notice {
	var n Notice
	for i, col := range header {
		if i >= len(row) {
			break
		}
		v := row[i]
		switch col {
		case "entity_id":
			n.EntityID = v
		case "name":
			n.Name = v
		case "forename":
			n.Forename = v
		case "birth_name":
			n.BirthName = v
		case "date_of_birth":
			n.DateOfBirth = v
		case "place_of_birth":
			n.PlaceOfBirth = v
		case "country_of_birth":
			n.CountryOfBirth = v
		case "nationalities", "nationality":
			// country-sweep files carry the query nationality in its own
			// column; prefer the richer one when both are present
			if n.Nationalities == "" {
				n.Nationalities = v
			}
		case "sex":
			n.Sex = v
		case "height":
			n.Height = v
		case "weight":
			n.Weight = v
		case "eyes_colors":
			n.EyesColors = v
		case "hairs":
			n.Hairs = v
		case "distinguishing_marks":
			n.DistinguishingMarks = v
		case "father_forename":
			n.FatherForename = v
		case "father_name":
			n.FatherName = v
		case "mother_forename":
			n.MotherForename = v
		case "mother_name":
			n.MotherName = v
		case "date_of_event":
			n.DateOfEvent = v
		case "place":
			n.Place = v
		case "country":
			n.Country = v
		case "languages":
			n.Languages = v
		case "issuing_country":
			n.IssuingCountry = v
		case "countries_likely_visited":
			n.CountriesLikelyVisited = v
		case "url":
			n.URL = v
		case "images_url":
			n.ImagesURL = v
		case "thumbnail_url":
			n.ThumbnailURL = v
		}
	}
	return n
}
