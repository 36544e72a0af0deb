package graphhopper

// geocodeResponse represents the GraphHopper geocoding API response.
type geocodeResponse struct {
	Hits   []geocodeHit `json:"hits"`
	Locale string       `json:"locale,omitempty"`
}

// geocodeHit is a single place returned by the geocoder.
type geocodeHit struct {
	Point    *hitPoint `json:"point"`
	Name     string    `json:"name"`
	Street   string    `json:"street,omitempty"`
	City     string    `json:"city"`
	State    string    `json:"state"`
	Country  string    `json:"country"`
	Postcode string    `json:"postcode,omitempty"`
	OSMID    int64     `json:"osm_id,omitempty"`
	OSMType  string    `json:"osm_type,omitempty"`
	OSMKey   string    `json:"osm_key,omitempty"`
	OSMValue string    `json:"osm_value,omitempty"`
}

// hitPoint uses pointers so a missing coordinate can be told apart from 0.
type hitPoint struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// errorResponse represents an error body from GraphHopper.
type errorResponse struct {
	Message string `json:"message"`
}
