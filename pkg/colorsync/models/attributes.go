package models

// Field names an extended analysis attribute. Values match the store's
// column names.
type Field string

const (
	FieldClusterID        Field = "cluster_id"
	FieldDeltaE           Field = "delta_e"
	FieldCentroidX        Field = "centroid_x"
	FieldCentroidY        Field = "centroid_y"
	FieldCentroidZ        Field = "centroid_z"
	FieldSphereColor      Field = "sphere_color"
	FieldSphereRadius     Field = "sphere_radius"
	FieldTrendlineValid   Field = "trendline_valid"
	FieldMarkerPreference Field = "marker_preference"
	FieldColorPreference  Field = "color_preference"
)

// FieldKind is the storage type of an extended field.
type FieldKind int

const (
	KindText FieldKind = iota
	KindReal
	KindBool
	KindCluster
)

// ExtendedFields lists every extended attribute in store column order.
var ExtendedFields = []Field{
	FieldMarkerPreference,
	FieldColorPreference,
	FieldClusterID,
	FieldDeltaE,
	FieldCentroidX,
	FieldCentroidY,
	FieldCentroidZ,
	FieldSphereColor,
	FieldSphereRadius,
	FieldTrendlineValid,
}

var fieldKinds = map[Field]FieldKind{
	FieldClusterID:        KindCluster,
	FieldDeltaE:           KindReal,
	FieldCentroidX:        KindReal,
	FieldCentroidY:        KindReal,
	FieldCentroidZ:        KindReal,
	FieldSphereColor:      KindText,
	FieldSphereRadius:     KindReal,
	FieldTrendlineValid:   KindBool,
	FieldMarkerPreference: KindText,
	FieldColorPreference:  KindText,
}

// Kind returns the storage kind of f and whether f is a known field.
func (f Field) Kind() (FieldKind, bool) {
	k, ok := fieldKinds[f]
	return k, ok
}

// FieldColumns maps each extended field to its worksheet column.
var FieldColumns = map[Field]Column{
	FieldClusterID:        ColCluster,
	FieldDeltaE:           ColDeltaE,
	FieldMarkerPreference: ColMarker,
	FieldColorPreference:  ColColor,
	FieldCentroidX:        ColCentroidX,
	FieldCentroidY:        ColCentroidY,
	FieldCentroidZ:        ColCentroidZ,
	FieldSphereColor:      ColSphere,
	FieldSphereRadius:     ColRadius,
	FieldTrendlineValid:   ColTrendline,
}

// AnalysisAttributes are the analysis-derived fields layered onto a
// measurement. A nil field has not been computed yet.
type AnalysisAttributes struct {
	// ClusterID is the k-means cluster assignment.
	ClusterID *ClusterID `json:"cluster_id,omitempty"`
	// DeltaE is the color difference to the cluster centroid or reference.
	DeltaE *float64 `json:"delta_e,omitempty"`
	// CentroidX is the x coordinate of the cluster centroid.
	CentroidX *float64 `json:"centroid_x,omitempty"`
	// CentroidY is the y coordinate of the cluster centroid.
	CentroidY *float64 `json:"centroid_y,omitempty"`
	// CentroidZ is the z coordinate of the cluster centroid.
	CentroidZ *float64 `json:"centroid_z,omitempty"`
	// SphereColor is the sphere visualization color.
	SphereColor *string `json:"sphere_color,omitempty"`
	// SphereRadius is the sphere visualization radius.
	SphereRadius *float64 `json:"sphere_radius,omitempty"`
	// TrendlineValid marks whether the point participates in trendlines.
	TrendlineValid *bool `json:"trendline_valid,omitempty"`
	// MarkerPreference is the plot marker symbol.
	MarkerPreference *string `json:"marker_preference,omitempty"`
	// ColorPreference is the plot point color.
	ColorPreference *string `json:"color_preference,omitempty"`
}

// Get returns the typed value of f, or nil when unset.
func (a AnalysisAttributes) Get(f Field) any {
	switch f {
	case FieldClusterID:
		if a.ClusterID != nil {
			return *a.ClusterID
		}
	case FieldDeltaE:
		if a.DeltaE != nil {
			return *a.DeltaE
		}
	case FieldCentroidX:
		if a.CentroidX != nil {
			return *a.CentroidX
		}
	case FieldCentroidY:
		if a.CentroidY != nil {
			return *a.CentroidY
		}
	case FieldCentroidZ:
		if a.CentroidZ != nil {
			return *a.CentroidZ
		}
	case FieldSphereColor:
		if a.SphereColor != nil {
			return *a.SphereColor
		}
	case FieldSphereRadius:
		if a.SphereRadius != nil {
			return *a.SphereRadius
		}
	case FieldTrendlineValid:
		if a.TrendlineValid != nil {
			return *a.TrendlineValid
		}
	case FieldMarkerPreference:
		if a.MarkerPreference != nil {
			return *a.MarkerPreference
		}
	case FieldColorPreference:
		if a.ColorPreference != nil {
			return *a.ColorPreference
		}
	}
	return nil
}

// PartialAttributes is a sparse update of extended fields holding raw,
// uncoerced values. Fields missing from the map are left untouched; a field
// mapped to nil or an empty string is cleared.
type PartialAttributes map[Field]any

// Fields returns the fields of p in ExtendedFields order followed by any
// unknown fields.
func (p PartialAttributes) Fields() []Field {
	out := make([]Field, 0, len(p))
	for _, f := range ExtendedFields {
		if _, ok := p[f]; ok {
			out = append(out, f)
		}
	}
	for f := range p {
		if _, known := fieldKinds[f]; !known {
			out = append(out, f)
		}
	}
	return out
}
