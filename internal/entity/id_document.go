package entity

import (
	"maps"
	"slices"
)

// Address is the postal address printed on an ID document.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode"`
}

// IDDocument is the structured driver's license record.
type IDDocument struct {
	FullName        string               `json:"fullName"`
	DateOfBirth     string               `json:"dateOfBirth"` // yyyy-mm-dd when certain
	Address         Address              `json:"address"`
	DocumentNumber  string               `json:"documentNumber"`
	ExpirationDate  string               `json:"expirationDate"`
	IssueDate       string               `json:"issueDate"`
	LicenseClass    string               `json:"licenseClass"`
	Endorsements    string               `json:"endorsements"`
	Restrictions    string               `json:"restrictions"`
	Sex             string               `json:"sex"`
	EyeColor        string               `json:"eyeColor"`
	Height          string               `json:"height"`
	DetectedCountry string               `json:"detectedCountry"`
	DetectedState   string               `json:"detectedState"`
	BarcodePresent  bool                 `json:"barcodePresent"`
	Warnings        []string             `json:"warnings"`
	Confidences     map[string]float64   `json:"confidences"`
	Boxes           map[string][]float64 `json:"boxes"` // [x, y, w, h] normalized to 0..1
}

// NewIDDocument returns an empty document with non-nil collections.
func NewIDDocument() IDDocument {
	return IDDocument{
		Warnings:    []string{},
		Confidences: map[string]float64{},
		Boxes:       map[string][]float64{},
	}
}

// EnsureCollections replaces nil collections with empty ones so the record
// always serializes as [] / {}.
func (d *IDDocument) EnsureCollections() {
	if d.Warnings == nil {
		d.Warnings = []string{}
	}
	if d.Confidences == nil {
		d.Confidences = map[string]float64{}
	}
	if d.Boxes == nil {
		d.Boxes = map[string][]float64{}
	}
}

// Clone returns a deep copy.
func (d IDDocument) Clone() IDDocument {
	out := d
	out.Warnings = slices.Clone(d.Warnings)
	out.Confidences = maps.Clone(d.Confidences)
	out.Boxes = make(map[string][]float64, len(d.Boxes))
	for k, v := range d.Boxes {
		out.Boxes[k] = slices.Clone(v)
	}
	out.EnsureCollections()
	return out
}

// IDDocumentFromPerson remaps a text-extracted person into the ID document shape.
// Document-specific fields stay empty.
func IDDocumentFromPerson(p Person) IDDocument {
	doc := NewIDDocument()
	doc.FullName = p.Name
	doc.Address = Address{
		Street:  p.Street,
		City:    p.City,
		State:   p.State,
		Country: p.Country,
		ZipCode: p.ZipCode,
	}
	return doc
}
