package domain

import (
	"fmt"
	"strings"
	"time"
)

// PropertyType clasifica una propiedad en alquiler.
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "APARTMENT"
	PropertyTypeHouse     PropertyType = "HOUSE"
	PropertyTypeCondo     PropertyType = "CONDO"
	PropertyTypeTownhouse PropertyType = "TOWNHOUSE"
)

// ParsePropertyType parses a case-insensitive type name.
func ParsePropertyType(s string) (PropertyType, error) {
	switch PropertyType(strings.ToUpper(s)) {
	case PropertyTypeApartment:
		return PropertyTypeApartment, nil
	case PropertyTypeHouse:
		return PropertyTypeHouse, nil
	case PropertyTypeCondo:
		return PropertyTypeCondo, nil
	case PropertyTypeTownhouse:
		return PropertyTypeTownhouse, nil
	default:
		return "", fmt.Errorf("%w: unknown property type %q", ErrInvalidArgument, s)
	}
}

// PropertyStatus is the availability flag of a property.
type PropertyStatus string

const (
	PropertyStatusAvailable   PropertyStatus = "AVAILABLE"
	PropertyStatusRented      PropertyStatus = "RENTED"
	PropertyStatusMaintenance PropertyStatus = "MAINTENANCE"
)

// ParsePropertyStatus parses a case-insensitive status name.
func ParsePropertyStatus(s string) (PropertyStatus, error) {
	switch PropertyStatus(strings.ToUpper(s)) {
	case PropertyStatusAvailable:
		return PropertyStatusAvailable, nil
	case PropertyStatusRented:
		return PropertyStatusRented, nil
	case PropertyStatusMaintenance:
		return PropertyStatusMaintenance, nil
	default:
		return "", fmt.Errorf("%w: unknown property status %q", ErrInvalidArgument, s)
	}
}

// GeoPoint is a GeoJSON point as stored in MongoDB, coordinates are
// [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from longitude and latitude.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

func (p GeoPoint) Longitude() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[0]
}

func (p GeoPoint) Latitude() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

// ValidateCoordinates checks the WGS84 bounds.
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90,90]", ErrInvalidArgument, lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180,180]", ErrInvalidArgument, lng)
	}
	return nil
}

// Property representa una propiedad publicada en el marketplace.
type Property struct {
	ID          string         `bson:"_id,omitempty" json:"id"`
	Title       string         `bson:"title" json:"title"`
	Description string         `bson:"description" json:"description"`
	Address     string         `bson:"address" json:"address"`
	City        string         `bson:"city" json:"city"`
	State       string         `bson:"state" json:"state"`
	ZipCode     string         `bson:"zip_code" json:"zip_code"`
	Country     string         `bson:"country" json:"country"`
	Location    GeoPoint       `bson:"location" json:"location"`
	Type        PropertyType   `bson:"type" json:"type"`
	Price       float64        `bson:"price" json:"price"`
	Bedrooms    int            `bson:"bedrooms" json:"bedrooms"`
	Bathrooms   int            `bson:"bathrooms" json:"bathrooms"`
	Area        float64        `bson:"area" json:"area"`
	Amenities   []string       `bson:"amenities" json:"amenities"`
	Images      []string       `bson:"images" json:"images"`
	OwnerID     string         `bson:"owner_id" json:"owner_id"`
	Status      PropertyStatus `bson:"status" json:"status"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `bson:"updated_at" json:"updated_at"`
}
