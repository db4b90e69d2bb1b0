package nominatim

// ReverseResult is the jsonv2 reverse response. Error is set instead of the
// other fields when nothing was found.
type ReverseResult struct {
	PlaceID     int64   `json:"place_id"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Address     Address `json:"address"`
	Error       string  `json:"error,omitempty"`
}

// Address holds the components Korean addresses resolve to. Metropolitan
// cities come back as City, provinces as Province or State.
type Address struct {
	HouseNumber  string `json:"house_number,omitempty"`
	Road         string `json:"road,omitempty"`
	Quarter      string `json:"quarter,omitempty"`
	Suburb       string `json:"suburb,omitempty"`
	Borough      string `json:"borough,omitempty"`
	CityDistrict string `json:"city_district,omitempty"`
	County       string `json:"county,omitempty"`
	City         string `json:"city,omitempty"`
	Town         string `json:"town,omitempty"`
	Province     string `json:"province,omitempty"`
	State        string `json:"state,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
	Country      string `json:"country,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`
}
