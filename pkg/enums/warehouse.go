package enums

import "fmt"

// WarehouseType categorizes what a facility can store.
type WarehouseType string

const (
	WarehouseTypeGeneral   WarehouseType = "Standard or General Storage"
	WarehouseTypeHazardous WarehouseType = "Hazardous Chemicals Storage"
	WarehouseTypeClimate   WarehouseType = "Climate Controlled Storage"
)

func (t WarehouseType) String() string {
	return string(t)
}

func (t WarehouseType) IsValid() bool {
	switch t {
	case WarehouseTypeGeneral, WarehouseTypeHazardous, WarehouseTypeClimate:
		return true
	}
	return false
}

func ParseWarehouseType(raw string) (WarehouseType, error) {
	t := WarehouseType(raw)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid warehouse type: %q", raw)
	}
	return t, nil
}

// OwnershipType distinguishes who is listing the property.
type OwnershipType string

const (
	OwnershipBroker OwnershipType = "Broker"
	OwnershipOwner  OwnershipType = "Owner"
)

func (o OwnershipType) String() string {
	return string(o)
}

func (o OwnershipType) IsValid() bool {
	return o == OwnershipBroker || o == OwnershipOwner
}

func ParseOwnershipType(raw string) (OwnershipType, error) {
	o := OwnershipType(raw)
	if !o.IsValid() {
		return "", fmt.Errorf("invalid ownership type: %q", raw)
	}
	return o, nil
}

// ListingFor states whether the property is offered for rent or sale.
type ListingFor string

const (
	ListingForRent ListingFor = "Rent"
	ListingForSale ListingFor = "Sale"
)

func (l ListingFor) String() string {
	return string(l)
}

func (l ListingFor) IsValid() bool {
	return l == ListingForRent || l == ListingForSale
}

func ParseListingFor(raw string) (ListingFor, error) {
	l := ListingFor(raw)
	if !l.IsValid() {
		return "", fmt.Errorf("invalid listing_for value: %q", raw)
	}
	return l, nil
}

// PlotStatus records the zoning classification of the plot.
type PlotStatus string

const (
	PlotAgricultural PlotStatus = "Agricultural"
	PlotCommercial   PlotStatus = "Commercial"
	PlotIndustrial   PlotStatus = "Industrial"
	PlotResidential  PlotStatus = "Residential"
)

func (p PlotStatus) String() string {
	return string(p)
}

func (p PlotStatus) IsValid() bool {
	switch p {
	case PlotAgricultural, PlotCommercial, PlotIndustrial, PlotResidential:
		return true
	}
	return false
}

func ParsePlotStatus(raw string) (PlotStatus, error) {
	p := PlotStatus(raw)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid plot status: %q", raw)
	}
	return p, nil
}

// FloorPlan names a level in the building.
type FloorPlan string

const (
	FloorGround FloorPlan = "Ground Floor"
	FloorFirst  FloorPlan = "First Floor"
	FloorSecond FloorPlan = "Second Floor"
)

func (f FloorPlan) String() string {
	return string(f)
}

func (f FloorPlan) IsValid() bool {
	switch f {
	case FloorGround, FloorFirst, FloorSecond:
		return true
	}
	return false
}

func ParseFloorPlan(raw string) (FloorPlan, error) {
	f := FloorPlan(raw)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid floor plan: %q", raw)
	}
	return f, nil
}
