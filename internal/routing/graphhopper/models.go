package graphhopper

// routeRequest represents the GraphHopper routing API request body.
type routeRequest struct {
	// GraphHopper uses [lon, lat] order (GeoJSON)
	Points        [][]float64 `json:"points"`
	Profile       string      `json:"profile"`
	Instructions  bool        `json:"instructions"`
	Locale        string      `json:"locale"`
	CalcPoints    bool        `json:"calc_points"`
	PointsEncoded bool        `json:"points_encoded"`
}

// routeResponse represents the GraphHopper routing API response.
type routeResponse struct {
	Paths []routePath   `json:"paths"`
	Info  *responseInfo `json:"info,omitempty"`
}

// responseInfo contains response metadata.
type responseInfo struct {
	Copyrights []string `json:"copyrights,omitempty"`
	Took       int      `json:"took,omitempty"`
}

// routePath represents a single path in the response.
type routePath struct {
	Distance                *float64      `json:"distance"` // Distance in meters
	Time                    *int64        `json:"time"`     // Duration in milliseconds
	Weight                  float64       `json:"weight,omitempty"`
	BBox                    []float64     `json:"bbox,omitempty"`
	Points                  string        `json:"points"`
	PointsEncoded           bool          `json:"points_encoded"`
	PointsEncodedMultiplier float64       `json:"points_encoded_multiplier,omitempty"`
	Instructions            []instruction `json:"instructions,omitempty"`
	Ascend                  float64       `json:"ascend,omitempty"`
	Descend                 float64       `json:"descend,omitempty"`
}

// instruction represents a single turn instruction.
type instruction struct {
	Distance   float64 `json:"distance"`
	Text       string  `json:"text"`
	StreetName string  `json:"street_name,omitempty"`
}

// errorResponse represents an error response from GraphHopper.
type errorResponse struct {
	Message string `json:"message"`
	Hints   []struct {
		Message string `json:"message"`
		Details string `json:"details,omitempty"`
	} `json:"hints,omitempty"`
}
