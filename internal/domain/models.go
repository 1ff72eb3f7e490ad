package domain

// URLRecord is one short-code mapping. ShortCode is unique; LongURL need not be.
type URLRecord struct {
	ShortCode string `json:"shortUrl"`
	LongURL   string `json:"longUrl"`
}

// ModuleEnquiry is a module-error report sent from the timetable site.
type ModuleEnquiry struct {
	Name         string `json:"name"`
	ContactID    string `json:"contactId"`
	ModuleCode   string `json:"moduleCode"`
	ReplyTo      string `json:"replyTo"`
	Message      string `json:"message"`
	MatricNumber string `json:"matricNumber"`
	Debug        bool   `json:"debug,omitempty"`
}

// VenueCorrection is a proposed change to one venue entry.
// LatLng, when present, is [lat, lng]. Floor is free-form (number or label).
type VenueCorrection struct {
	Venue         string    `json:"venue"`
	Room          string    `json:"room"`
	LatLng        []float64 `json:"latlng,omitempty"`
	Floor         any       `json:"floor,omitempty"`
	ReporterEmail string    `json:"reporterEmail,omitempty"`
	Debug         bool      `json:"debug,omitempty"`
}
