// Package listing defines the shared data model for parcel listings
// moving through the review workflow.
//
// The JSON field names match the keys the scraper emits and the
// front-end consumes, so serialized collections round-trip unchanged.
package listing

import (
	"encoding/json"
	"strconv"
)

// Status values a listing can carry through the workflow.
const (
	StatusNew      = "new"
	StatusInReview = "in-review"
	StatusValidated = "validated"
)

// Price is a non-negative amount in EUR, or unknown when the raw value
// could not be parsed. It serializes as a number, or the string
// "unknown" when not valid.
type Price struct {
	Value float64
	Valid bool
}

// PriceOf returns a valid Price.
func PriceOf(v float64) Price { return Price{Value: v, Valid: true} }

// UnknownPrice is the degraded value for unparseable price fields.
var UnknownPrice = Price{}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte(`"unknown"`), nil
	}
	return json.Marshal(p.Value)
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*p = Price{Value: v, Valid: true}
		return nil
	}
	// Anything non-numeric ("unknown", "n/a", null) degrades to unknown.
	*p = Price{}
	return nil
}

// Area is a surface in square meters, or unknown. Serializes as an
// integer, or the string "unknown" when not valid.
type Area struct {
	Value int
	Valid bool
}

// AreaOf returns a valid Area.
func AreaOf(v int) Area { return Area{Value: v, Valid: true} }

// UnknownArea is the degraded value for unparseable area fields.
var UnknownArea = Area{}

func (a Area) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte(`"unknown"`), nil
	}
	return []byte(strconv.Itoa(a.Value)), nil
}

func (a *Area) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err == nil {
		*a = Area{Value: v, Valid: true}
		return nil
	}
	*a = Area{}
	return nil
}

// Point is a geographic coordinate pair from geocoding.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Listing is one parcel record. Optional enrichment fields stay empty
// (or nil) when the corresponding collaborator degraded.
type Listing struct {
	ID               string   `json:"ID"`
	Zone             string   `json:"Zone"`
	ResolvedZone     string   `json:"resolved_zone,omitempty"`
	Price            Price    `json:"Price"`
	Area             Area     `json:"Square Meters"`
	Category         string   `json:"Type"`
	Description      string   `json:"Description"`
	ShortDescription string   `json:"short_description,omitempty"`
	Structured       string   `json:"markdown_description,omitempty"`
	Proprietor       string   `json:"Proprietor,omitempty"`
	Phone            string   `json:"Phone Number,omitempty"`
	DaysSincePosted  string   `json:"Days Since Posted,omitempty"`
	PostedAt         string   `json:"Date,omitempty"`
	Coordinates      *Point   `json:"coordinates,omitempty"`
	Status           string   `json:"status,omitempty"`
	Questions        []string `json:"questions,omitempty"`

	// Extra carries forward-compatible keys the front-end may attach
	// to a row without the core knowing about them.
	Extra map[string]any `json:"extra,omitempty"`
}

// AdditionalDetails is the side-table entry for a listing. Its
// lifecycle is independent of the workflow collections: an entry may
// outlive the listing it describes.
type AdditionalDetails struct {
	StreetNumber      string `json:"streetNumber,omitempty"`
	AdditionalDetails string `json:"additionalDetails,omitempty"`
}

// Edits is the payload an employee submits together with a listing
// when sending it to validation.
type Edits struct {
	StreetNumber      string
	AdditionalDetails string
	Description       string
	Coordinates       *Point
}
