package services

import (
	"time"

	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/store"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// scenarioTable is the three-order table used throughout the package tests.
func scenarioTable() *store.Table {
	return store.NewTable([]models.Order{
		{
			OrderDate: date(2023, 1, 5), Region: "East", State: "New York", City: "New York City",
			Segment: "Consumer", Category: "Furniture", SubCategory: "Chairs", ShipMode: "Standard Class",
			Sales: 100, Profit: 20, Quantity: 2,
		},
		{
			OrderDate: date(2023, 1, 12), Region: "East", State: "Massachusetts", City: "Boston",
			Segment: "Corporate", Category: "Furniture", SubCategory: "Tables", ShipMode: "First Class",
			Sales: 200, Profit: -10, Quantity: 3,
		},
		{
			OrderDate: date(2023, 2, 1), Region: "West", State: "Washington", City: "Seattle",
			Segment: "Consumer", Category: "Furniture", SubCategory: "Chairs", ShipMode: "Standard Class",
			Sales: 50, Profit: 5, Quantity: 1,
		},
	}, "scenario")
}

// wideTable spreads orders over many states, sub-categories and weeks.
func wideTable() *store.Table {
	regions := []string{"Central", "East", "South", "West"}
	states := []string{"Texas", "Ohio", "Florida", "Oregon", "Utah", "Maine"}
	segments := []string{"Consumer", "Corporate", "Home Office"}
	categories := []string{"Furniture", "Office Supplies", "Technology"}
	subCategories := []string{"Accessories", "Appliances", "Art", "Binders", "Bookcases", "Chairs", "Copiers", "Envelopes", "Fasteners", "Furnishings", "Labels", "Machines", "Paper", "Phones"}
	shipModes := []string{"First Class", "Same Day", "Second Class", "Standard Class"}

	rows := make([]models.Order, 0, 300)
	start := date(2022, 11, 20)
	for i := 0; i < 300; i++ {
		rows = append(rows, models.Order{
			OrderDate:   start.AddDate(0, 0, (i*7)%190),
			Region:      regions[i%len(regions)],
			State:       states[i%len(states)],
			City:        states[i%len(states)] + " City",
			Segment:     segments[i%len(segments)],
			Category:    categories[i%len(categories)],
			SubCategory: subCategories[i%len(subCategories)],
			ShipMode:    shipModes[(i/3)%len(shipModes)],
			Sales:       float64(10 + i%37),
			Quantity:    1 + i%5,
			Profit:      float64(i%11) - 4,
		})
	}
	return store.NewTable(rows, "wide")
}
