package models

import "time"

// Order is one row of the loaded dataset. Rows are never mutated after load.
type Order struct {
	OrderDate   time.Time
	Region      string
	State       string
	City        string
	Segment     string
	Category    string
	SubCategory string
	ShipMode    string
	Sales       float64
	Quantity    int
	Profit      float64
}

// AggregateRow is a period or group key with summed measures.
type AggregateRow struct {
	Key        string  `json:"key"`
	Sales      float64 `json:"sales"`
	Quantity   float64 `json:"quantity"`
	Profit     float64 `json:"profit"`
	MarginRate float64 `json:"margin_rate"`
}

type KPIs struct {
	TotalSales    float64 `json:"total_sales"`
	TotalQuantity int     `json:"total_quantity"`
	TotalProfit   float64 `json:"total_profit"`
	MarginRate    float64 `json:"margin_rate"`
}

type QuantitySplit struct {
	AvgQuantity    float64 `json:"avg_quantity"`
	OrdersAboveAvg int     `json:"orders_above_avg"`
	OrdersBelowAvg int     `json:"orders_below_avg"`
}

// KPITiles holds the display strings for the four KPI tiles.
type KPITiles struct {
	Sales         string `json:"sales"`
	Quantity      string `json:"quantity"`
	Profit        string `json:"profit"`
	MarginRate    string `json:"margin_rate"`
	MarginClass   string `json:"margin_class"`
	AboveAvgLabel string `json:"above_avg_label"`
	BelowAvgLabel string `json:"below_avg_label"`
}
