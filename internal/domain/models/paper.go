package models

// PaperSpec is a static catalog entry for a sellable paper type.
type PaperSpec struct {
	PaperType        string  `mapstructure:"paper_type" json:"paper_type"`
	UnitCost         float64 `mapstructure:"unit_cost" json:"unit_cost"`
	ListPrice        float64 `mapstructure:"list_price" json:"list_price"`
	ReorderThreshold int     `mapstructure:"reorder_threshold" json:"reorder_threshold"`
	SupplierLeadDays int     `mapstructure:"supplier_lead_days" json:"supplier_lead_days"`
}

// InventoryRecord is the persisted stock row for one paper type.
type InventoryRecord struct {
	PaperType        string  `json:"paper_type"`
	StockLevel       int     `json:"stock_level"`
	UnitCost         float64 `json:"unit_cost"`
	ListPrice        float64 `json:"list_price"`
	ReorderThreshold int     `json:"reorder_threshold"`
	SupplierLeadDays int     `json:"supplier_lead_days"`
}

// InventoryLookup is the answer of a single catalog/stock probe.
type InventoryLookup struct {
	PaperType        string `json:"paper_type"`
	StockLevel       int    `json:"stock_level"`
	KnownItem        bool   `json:"known_item"`
	ReorderThreshold int    `json:"reorder_threshold,omitempty"`
}
