package models

import "time"

// SampleSet groups measurements sharing one source image.
type SampleSet struct {
	// SetID is the store-assigned identifier.
	SetID int64 `json:"set_id"`
	// ImageName is the source image name.
	ImageName string `json:"image_name"`
	// Description is optional free text.
	Description string `json:"description,omitempty"`
	// CreatedAt is when the set was created.
	CreatedAt time.Time `json:"created_at"`
}

// Color holds the color coordinates of a sampled point.
type Color struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
	R float64 `json:"r"`
	G float64 `json:"g"`
	// Blue is the RGB blue channel (B is the Lab b* axis).
	Blue float64 `json:"blue"`
}

// Geometry describes the sampling area of a point.
type Geometry struct {
	// Shape is the sample shape, e.g. "circle" or "rectangle".
	Shape string `json:"shape,omitempty"`
	// Size is the sample size as entered, e.g. "10x10".
	Size string `json:"size,omitempty"`
	// Anchor is the anchor of the sample shape, e.g. "center".
	Anchor string `json:"anchor,omitempty"`
}

// MeasurementRecord is one sampled point with its analysis attributes.
type MeasurementRecord struct {
	// SetID and PointIndex form the record key.
	SetID      int64 `json:"set_id"`
	PointIndex int64 `json:"point_index"`
	// ImageName is joined from the owning SampleSet.
	ImageName string `json:"image_name"`
	// X and Y are the sample position in image coordinates.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Color holds the measured color coordinates.
	Color Color `json:"color"`
	// Geometry describes the sampling area.
	Geometry Geometry `json:"geometry"`
	// Notes is free text.
	Notes string `json:"notes,omitempty"`
	// CreatedAt is when the point was measured.
	CreatedAt time.Time `json:"created_at"`
	// Attributes holds the extended analysis fields.
	Attributes AnalysisAttributes `json:"attributes"`
}

// Centroid is the sphere-plot entry of one cluster.
type Centroid struct {
	ClusterID ClusterID `json:"cluster_id"`
	// X, Y and Z are the centroid coordinates; nil when not computed.
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	Z *float64 `json:"z,omitempty"`
	// SphereColor and SphereRadius style the cluster sphere.
	SphereColor  string   `json:"sphere_color,omitempty"`
	SphereRadius *float64 `json:"sphere_radius,omitempty"`
	// Marker and Color default to "." and "blue".
	Marker string `json:"marker,omitempty"`
	Color  string `json:"color,omitempty"`
}
