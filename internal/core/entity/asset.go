package entity

// AssetKind distinguishes equipment from buildings.
type AssetKind string

const (
	AssetEquipment AssetKind = "EQUIPMENT"
	AssetBuilding  AssetKind = "BUILDING"
)

// Asset is equipment or a building a work order can be raised against.
// Its cost center is the fallback when the work order has no project.
type Asset struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Kind       AssetKind `json:"kind"`
	CostCenter string    `json:"costCenter,omitempty"`
}

func (a *Asset) GetID() string { return a.ID }

// Clone returns a copy.
func (a *Asset) Clone() *Asset {
	c := *a
	return &c
}
