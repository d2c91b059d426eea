package maps

// LookupRequest carries the address typed by an admin placing a location.
type LookupRequest struct {
	Query string `form:"q" json:"q" validate:"required,min=3,max=200"`
}

// AddressSuggestion is a geocoded candidate for a check-in location.
type AddressSuggestion struct {
	Label        string  `json:"label"`
	Street       string  `json:"street"`
	HouseNumber  string  `json:"houseNumber,omitempty"`
	Neighborhood string  `json:"neighborhood,omitempty"`
	ZipCode      string  `json:"zipCode,omitempty"`
	City         string  `json:"city"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

type nominatimAddress struct {
	Road         string `json:"road"`
	HouseNumber  string `json:"house_number"`
	Suburb       string `json:"suburb"`
	Postcode     string `json:"postcode"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
}

// nominatimResult mirrors the parts of the OSM search payload we read.
type nominatimResult struct {
	Lat     string           `json:"lat"`
	Lon     string           `json:"lon"`
	Address nominatimAddress `json:"address"`
}
