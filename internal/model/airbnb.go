package model

// Numeric filter codes used by the Airbnb search URL scheme. These must
// match the site exactly or the filters are silently ignored.

// AirbnbAmenities maps canonical amenity names to the site's filter IDs.
var AirbnbAmenities = map[string]int{
	"wifi":                  4,
	"kitchen":               8,
	"washer":                33,
	"dryer":                 34,
	"air_conditioning":      5,
	"heating":               30,
	"tv":                    1,
	"pool":                  7,
	"hot_tub":               25,
	"parking":               9,
	"gym":                   15,
	"breakfast":             16,
	"pets_allowed":          12,
	"smoking_allowed":       11,
	"elevator":              21,
	"wheelchair_accessible": 65,
}

// AirbnbPropertyTypes maps canonical property types to the site's
// property_type_id values.
var AirbnbPropertyTypes = map[string]int{
	"house":             1,
	"apartment":         2,
	"bed_and_breakfast": 3,
	"boutique_hotel":    43,
	"bungalow":          7,
	"cabin":             8,
	"chalet":            10,
	"cottage":           11,
	"loft":              17,
	"villa":             32,
	"townhouse":         31,
}

// AirbnbRoomTypes lists the room-type filter values accepted by the site.
var AirbnbRoomTypes = []string{
	"Entire home/apt",
	"Private room",
	"Shared room",
}

// DefaultAmenities are appended to every search URL unless the user already
// asked for them; they improve result quality on the site.
var DefaultAmenities = []string{"wifi", "kitchen"}
