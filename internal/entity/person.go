package entity

// Person is the flat personal-information record produced from free text or lookup.
// Empty strings mean unknown; fields are never null on the wire.
type Person struct {
	Name        string `json:"name"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	ZipCode     string `json:"zipCode"`
	PhoneNumber string `json:"phoneNumber"`
}
