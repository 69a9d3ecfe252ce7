package postgres

import (
	"time"

	"github.com/mamadbah2/papertrail/internal/domain/models"
)

// inventoryRow maps the inventory table, one row per paper type.
type inventoryRow struct {
	PaperType        string  `gorm:"column:paper_type;primaryKey;type:varchar(64)"`
	StockLevel       int     `gorm:"column:stock_level;not null"`
	UnitCost         float64 `gorm:"column:unit_cost;type:decimal(12,2);not null"`
	ListPrice        float64 `gorm:"column:list_price;type:decimal(12,2);not null"`
	ReorderThreshold int     `gorm:"column:reorder_threshold;not null"`
	SupplierLeadDays int     `gorm:"column:supplier_lead_days;not null"`
}

func (inventoryRow) TableName() string { return "inventory" }

// transactionRow maps the append-only ledger.
type transactionRow struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CreatedAt    time.Time `gorm:"column:created_at;type:date;not null"`
	CustomerName string    `gorm:"column:customer_name;type:varchar(255);not null;index:idx_txn_customer_paper"`
	PaperType    string    `gorm:"column:paper_type;type:varchar(64);not null;index:idx_txn_customer_paper"`
	Quantity     int       `gorm:"column:quantity;not null"`
	UnitPrice    float64   `gorm:"column:unit_price;type:decimal(12,2);not null"`
	TotalPrice   float64   `gorm:"column:total_price;type:decimal(14,2);not null"`
	Status       string    `gorm:"column:status;type:varchar(20);not null;index"`
	Notes        string    `gorm:"column:notes;type:text"`
}

func (transactionRow) TableName() string { return "transactions" }

func inventoryFromModel(rec models.InventoryRecord) inventoryRow {
	return inventoryRow{
		PaperType:        rec.PaperType,
		StockLevel:       rec.StockLevel,
		UnitCost:         rec.UnitCost,
		ListPrice:        rec.ListPrice,
		ReorderThreshold: rec.ReorderThreshold,
		SupplierLeadDays: rec.SupplierLeadDays,
	}
}

func (r inventoryRow) toModel() models.InventoryRecord {
	return models.InventoryRecord{
		PaperType:        r.PaperType,
		StockLevel:       r.StockLevel,
		UnitCost:         r.UnitCost,
		ListPrice:        r.ListPrice,
		ReorderThreshold: r.ReorderThreshold,
		SupplierLeadDays: r.SupplierLeadDays,
	}
}

func (r transactionRow) toModel() models.TransactionRecord {
	return models.TransactionRecord{
		ID:           r.ID,
		CreatedAt:    models.DateOnly(r.CreatedAt),
		CustomerName: r.CustomerName,
		PaperType:    r.PaperType,
		Quantity:     r.Quantity,
		UnitPrice:    r.UnitPrice,
		TotalPrice:   r.TotalPrice,
		Status:       models.Status(r.Status),
		Notes:        r.Notes,
	}
}
