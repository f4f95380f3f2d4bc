package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

const (
	// NotSpecified fills every textual field whose label was not found.
	NotSpecified = "Not specified"
	// UnknownCategory is the prediction for reports without a usable narrative.
	UnknownCategory = "Unknown"
)

// ReportFields lists the export column names in their fixed order.
var ReportFields = []string{
	"Report Number",
	"Date & Time",
	"Reporting Officer",
	"Incident Location",
	"Latitude",
	"Longitude",
	"Detailed Description",
	"Predicted Category",
	"Police District",
	"Resolution",
	"Suspect Description",
	"Victim Information",
}

// Report is the structured record extracted from one crime report document.
type Report struct {
	ReportNumber      string   `json:"report_number"`
	DateTime          string   `json:"date_time"`
	Officer           string   `json:"reporting_officer"`
	Location          string   `json:"incident_location"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	Description       string   `json:"detailed_description"`
	PredictedCategory string   `json:"predicted_category"`
	District          string   `json:"police_district"`
	Resolution        string   `json:"resolution"`
	Suspect           string   `json:"suspect_description"`
	Victim            string   `json:"victim_information"`
}

// ReportKey is the comparable identity of a report: two reports with equal
// keys are the same record.
type ReportKey struct {
	ReportNumber      string
	DateTime          string
	Officer           string
	Location          string
	HasLatitude       bool
	Latitude          float64
	HasLongitude      bool
	Longitude         float64
	Description       string
	PredictedCategory string
	District          string
	Resolution        string
	Suspect           string
	Victim            string
}

func (r Report) Key() ReportKey {
	key := ReportKey{
		ReportNumber:      r.ReportNumber,
		DateTime:          r.DateTime,
		Officer:           r.Officer,
		Location:          r.Location,
		Description:       r.Description,
		PredictedCategory: r.PredictedCategory,
		District:          r.District,
		Resolution:        r.Resolution,
		Suspect:           r.Suspect,
		Victim:            r.Victim,
	}
	if r.Latitude != nil {
		key.HasLatitude = true
		key.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		key.HasLongitude = true
		key.Longitude = *r.Longitude
	}
	return key
}

// Fingerprint is a stable hex digest of Key, used where the identity has to
// leave the process (database unique constraints).
func (r Report) Fingerprint() string {
	sum := sha256.Sum256([]byte(strings.Join(r.Values(), "\x1f")))
	return hex.EncodeToString(sum[:])
}

// Plottable reports whether both coordinates are present.
func (r Report) Plottable() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Clone returns a copy that shares no pointers with r.
func (r Report) Clone() Report {
	out := r
	if r.Latitude != nil {
		lat := *r.Latitude
		out.Latitude = &lat
	}
	if r.Longitude != nil {
		lon := *r.Longitude
		out.Longitude = &lon
	}
	return out
}

// Values renders the report in ReportFields order. Absent coordinates
// render as empty strings.
func (r Report) Values() []string {
	return []string{
		r.ReportNumber,
		r.DateTime,
		r.Officer,
		r.Location,
		formatCoordinate(r.Latitude),
		formatCoordinate(r.Longitude),
		r.Description,
		r.PredictedCategory,
		r.District,
		r.Resolution,
		r.Suspect,
		r.Victim,
	}
}

func formatCoordinate(v *float64) string {
	if v == nil {
		return ""
	}
	x := *v
	if x == 0 {
		// -0 compares equal to 0 in Key and must render the same.
		x = 0
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// TrainingExample is one labeled row of the historical dataset.
type TrainingExample struct {
	Description string `json:"description"`
	Category    string `json:"category"`
}
