package entity

import "time"

// PartModel describes a catalog part: which slot type it fits, which kinds of
// maintenance (ТО) apply to it, and the serialized physical units that exist.
type PartModel struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	UID              string            `json:"uid,omitempty"`
	Specification    string            `json:"specification,omitempty"`
	ComponentTypeID  string            `json:"componentTypeId"`
	MaintenanceTypes []MaintenanceType `json:"maintenanceTypes"`
	Units            []Unit            `json:"units"`
}

// MaintenanceType defines one kind of maintenance work for a part model.
// Duration and Interval are whole days; Duration 0 is a legal instantaneous event.
type MaintenanceType struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Duration  int    `json:"duration"`
	Priority  int    `json:"priority"`
	Interval  int    `json:"interval"`
	Deviation int    `json:"deviation"`
	Color     string `json:"color,omitempty"`
}

// Unit is a physical, serialized instance of a part model. Units are what
// actually occupy component slots over time.
type Unit struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	PartModelID     string     `json:"partModelId"`
	SerialNumber    string     `json:"serialNumber,omitempty"`
	ManufactureDate *time.Time `json:"manufactureDate,omitempty"`
}
