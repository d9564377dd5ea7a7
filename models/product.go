package models

import (
	"time"
)

type ProductType string

const (
	ProductTypeProduct ProductType = "product"
	ProductTypeService ProductType = "service"
)

type Product struct {
	ID          string      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BusinessID  string      `json:"business_id" gorm:"not null;index"`
	Name        string      `json:"name" gorm:"not null;index"`
	SKU         string      `json:"sku" gorm:"index"`
	Barcode     string      `json:"barcode" gorm:"index"`
	Category    string      `json:"category"`
	Type        ProductType `json:"type" gorm:"not null;default:'product'"`
	Description string      `json:"description"`
	Price       float64     `json:"price" gorm:"not null;default:0"`
	CostPrice   float64     `json:"cost_price" gorm:"default:0"`
	Taxable     bool        `json:"taxable" gorm:"default:false"`
	TaxRate     float64     `json:"tax_rate" gorm:"default:0"`
	Unit        string      `json:"unit" gorm:"default:'unit'"`
	StockQty    *float64    `json:"stock_qty"`
	ImageURL    string      `json:"image_url"`
	Active      bool        `json:"active" gorm:"default:true"`
	Metadata    JSON        `json:"metadata" gorm:"type:jsonb"`
	CreatedAt   time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

type CreateProductRequest struct {
	Name        string      `json:"name"`
	SKU         string      `json:"sku,omitempty"`
	Barcode     string      `json:"barcode,omitempty"`
	Category    string      `json:"category,omitempty"`
	Type        ProductType `json:"type,omitempty"`
	Description string      `json:"description,omitempty"`
	Price       float64     `json:"price"`
	CostPrice   float64     `json:"cost_price,omitempty"`
	Taxable     bool        `json:"taxable,omitempty"`
	TaxRate     float64     `json:"tax_rate,omitempty"`
	Unit        string      `json:"unit,omitempty"`
	StockQty    *float64    `json:"stock_qty,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`
}

type UpdateProductRequest struct {
	Name        *string      `json:"name,omitempty"`
	SKU         *string      `json:"sku,omitempty"`
	Barcode     *string      `json:"barcode,omitempty"`
	Category    *string      `json:"category,omitempty"`
	Type        *ProductType `json:"type,omitempty"`
	Description *string      `json:"description,omitempty"`
	Price       *float64     `json:"price,omitempty"`
	CostPrice   *float64     `json:"cost_price,omitempty"`
	Taxable     *bool        `json:"taxable,omitempty"`
	TaxRate     *float64     `json:"tax_rate,omitempty"`
	Unit        *string      `json:"unit,omitempty"`
	StockQty    *float64     `json:"stock_qty,omitempty"`
	ImageURL    *string      `json:"image_url,omitempty"`
	Active      *bool        `json:"active,omitempty"`
}

type ProductListResponse struct {
	Products []*Product `json:"products"`
	Total    int        `json:"total"`
}
