package lifecycle

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Ahmed-Ibrahim-0/switches-controller/models"
)

// Fields is the loosely typed submission as it arrives from a caller.
type Fields struct {
	Status          string `json:"status" yaml:"status"`
	DeliveredStatus string `json:"deliveredStatus" yaml:"deliveredStatus"`
	Provider        string `json:"provider" yaml:"provider"`
	Model           string `json:"model" yaml:"model"`
	Notes           string `json:"notes" yaml:"notes"`
	SerialNumber    string `json:"serialNumber" yaml:"serialNumber"`
	OldSerialNumber string `json:"oldSerialNumber" yaml:"oldSerialNumber"`
	NewSerialNumber string `json:"newSerialNumber" yaml:"newSerialNumber"`
	OldModel        string `json:"oldModel" yaml:"oldModel"`
	NewModel        string `json:"newModel" yaml:"newModel"`
	DateSent        string `json:"dateSent" yaml:"dateSent"`

	// keys counts the members of the decoded JSON object, so a body that
	// only sends blank values is still a non-empty request.
	keys int
}

func (f *Fields) UnmarshalJSON(b []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(b, &members); err != nil {
		return err
	}
	type plain Fields
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*f = Fields(p)
	f.keys = len(members)
	return nil
}

// IsEmpty reports a request that carried no members at all.
func (f *Fields) IsEmpty() bool { return f == nil || (f.keys == 0 && *f == Fields{}) }

// CanonicalSerial uppercases and trims a serial. Applying it twice is a no-op.
func CanonicalSerial(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Canonicalize rewrites the three serial slots in place.
func (f *Fields) Canonicalize() {
	f.SerialNumber = CanonicalSerial(f.SerialNumber)
	f.OldSerialNumber = CanonicalSerial(f.OldSerialNumber)
	f.NewSerialNumber = CanonicalSerial(f.NewSerialNumber)
}

// GoverningSerial picks the serial used for conflict detection:
// serialNumber, else newSerialNumber, else oldSerialNumber.
func (f *Fields) GoverningSerial() string {
	for _, s := range []string{f.SerialNumber, f.NewSerialNumber, f.OldSerialNumber} {
		if s != "" {
			return s
		}
	}
	return ""
}

// RequiredFields lists the fields a record of the given status must carry.
func RequiredFields(s models.Status) []string {
	switch s {
	case models.StatusFaultyNotSent, models.StatusSentForFix:
		return []string{"serialNumber"}
	case models.StatusFixed:
		return []string{"oldSerialNumber"}
	}
	return nil
}

// Details is the status-specific part of a submission. Each implementation
// carries exactly the fields legal for its status.
type Details interface {
	Status() models.Status
	apply(sw *models.Switch)
}

type Faulty struct {
	SerialNumber string
	Model        string
}

type SentForFix struct {
	SerialNumber string
	Model        string
	DateSent     *time.Time
}

type Fixed struct {
	OldSerialNumber string
	NewSerialNumber string
	OldModel        string
	NewModel        string
	Delivered       models.DeliveredStatus // "" when not recorded
}

func (Faulty) Status() models.Status     { return models.StatusFaultyNotSent }
func (SentForFix) Status() models.Status { return models.StatusSentForFix }
func (Fixed) Status() models.Status      { return models.StatusFixed }

func (d Faulty) apply(sw *models.Switch) {
	sw.SerialNumber = d.SerialNumber
	sw.Model = d.Model
}

func (d SentForFix) apply(sw *models.Switch) {
	sw.SerialNumber = d.SerialNumber
	sw.Model = d.Model
	sw.DateSent = d.DateSent
}

func (d Fixed) apply(sw *models.Switch) {
	sw.OldSerialNumber = d.OldSerialNumber
	sw.NewSerialNumber = d.NewSerialNumber
	sw.OldModel = d.OldModel
	sw.NewModel = d.NewModel
	if d.Delivered != "" {
		ds := d.Delivered
		sw.DeliveredStatus = &ds
	}
}

// Submission is a decoded, canonical create or replace request.
type Submission struct {
	Provider string
	Notes    string
	Details  Details
}

func (s *Submission) Status() models.Status { return s.Details.Status() }

// GoverningSerial is the serial the record will claim once stored, taken
// from the decoded variant so serials dropped for the status never count.
func (s *Submission) GoverningSerial() string {
	switch d := s.Details.(type) {
	case Faulty:
		return d.SerialNumber
	case SentForFix:
		return d.SerialNumber
	case Fixed:
		if d.NewSerialNumber != "" {
			return d.NewSerialNumber
		}
		return d.OldSerialNumber
	}
	return ""
}

// Apply overwrites every mutable column of sw with the submission.
// UniqueKey, ID and CreatedAt are left alone.
func (s *Submission) Apply(sw *models.Switch) {
	sw.Status = s.Details.Status()
	sw.Provider = s.Provider
	sw.Notes = s.Notes
	sw.DeliveredStatus = nil
	sw.SerialNumber, sw.Model, sw.DateSent = "", "", nil
	sw.OldSerialNumber, sw.NewSerialNumber = "", ""
	sw.OldModel, sw.NewModel = "", ""
	s.Details.apply(sw)
}

// Record builds a new, unkeyed record from the submission.
func (s *Submission) Record() *models.Switch {
	sw := &models.Switch{}
	s.Apply(sw)
	return sw
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "02/01/2006"}

func parseDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, invalid("dateSent", "invalid dateSent %q", v)
}

// Decode turns canonical Fields into a Submission, dropping fields that are
// illegal for the status and enforcing the per-status required fields.
func Decode(f Fields) (*Submission, error) {
	status := models.Status(strings.TrimSpace(f.Status))
	if status == "" {
		status = models.StatusFaultyNotSent
	}
	if !status.Valid() {
		return nil, invalid("status", "`%s` is not a valid enum value for path `status`", f.Status)
	}

	var d Details
	switch status {
	case models.StatusFaultyNotSent:
		d = Faulty{SerialNumber: f.SerialNumber, Model: f.Model}
	case models.StatusSentForFix:
		sent, err := parseDate(f.DateSent)
		if err != nil {
			return nil, err
		}
		d = SentForFix{SerialNumber: f.SerialNumber, Model: f.Model, DateSent: sent}
	case models.StatusFixed:
		ds := models.DeliveredStatus(strings.TrimSpace(f.DeliveredStatus))
		if ds != "" && !ds.Valid() {
			return nil, invalid("deliveredStatus", "`%s` is not a valid enum value for path `deliveredStatus`", f.DeliveredStatus)
		}
		d = Fixed{
			OldSerialNumber: f.OldSerialNumber,
			NewSerialNumber: f.NewSerialNumber,
			OldModel:        f.OldModel,
			NewModel:        f.NewModel,
			Delivered:       ds,
		}
	}

	for _, name := range RequiredFields(status) {
		if fieldValue(&f, name) == "" {
			return nil, invalid(name, "%s is required when status is %s", name, status)
		}
	}

	return &Submission{Provider: strings.TrimSpace(f.Provider), Notes: f.Notes, Details: d}, nil
}

func fieldValue(f *Fields, name string) string {
	switch name {
	case "serialNumber":
		return f.SerialNumber
	case "oldSerialNumber":
		return f.OldSerialNumber
	case "newSerialNumber":
		return f.NewSerialNumber
	}
	return ""
}
