package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestWarehouse_Validation(t *testing.T) {
	testCases := []struct {
		name     string
		id       WarehouseID
		lat, lon float64
		capacity int
		wantErr  bool
	}{
		{"valid", "WH1", 18.52, 73.85, 25, false},
		{"empty id", "", 18.52, 73.85, 25, true},
		{"latitude out of range", "WH1", 91, 73.85, 25, true},
		{"longitude out of range", "WH1", 18.52, -181, 25, true},
		{"zero capacity", "WH1", 18.52, 73.85, 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewWarehouse(tc.id, "Central", tc.lat, tc.lon, tc.capacity, "Regional")
			if (err != nil) != tc.wantErr {
				t.Errorf("Expected wantErr=%v, got err=%v", tc.wantErr, err)
			}
		})
	}
}

func TestDeliveryOrder_Validation(t *testing.T) {
	orderDate := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	planned := orderDate.AddDate(0, 0, 3)

	order, err := NewDeliveryOrder("D1", "P1", "WH1", 19.07, 72.88, orderDate, planned, nil, 10, "Road", decimal.NewFromInt(1500), 148.2, DeliveryPlanned)
	if err != nil {
		t.Fatalf("Expected valid delivery creation to succeed: %v", err)
	}
	if order.OnTime() {
		t.Error("Undelivered order must not be on time")
	}

	if _, err := NewDeliveryOrder("", "P1", "WH1", 19.07, 72.88, orderDate, planned, nil, 10, "Road", decimal.Zero, 10, DeliveryPlanned); err == nil {
		t.Error("Expected error for empty delivery id")
	}
	if _, err := NewDeliveryOrder("D1", "P1", "WH1", 19.07, 72.88, orderDate, orderDate.AddDate(0, 0, -1), nil, 10, "Road", decimal.Zero, 10, DeliveryPlanned); err == nil {
		t.Error("Expected error for planned delivery before order date")
	}
	if _, err := NewDeliveryOrder("D1", "P1", "WH1", 19.07, 72.88, orderDate, planned, nil, 0, "Road", decimal.Zero, 10, DeliveryPlanned); err == nil {
		t.Error("Expected error for zero quantity")
	}

	delivered := planned.AddDate(0, 0, -1)
	order2, err := NewDeliveryOrder("D2", "P1", "WH1", 19.07, 72.88, orderDate, planned, &delivered, 10, "Air", decimal.NewFromInt(4000), 148.2, DeliveryDelivered)
	if err != nil {
		t.Fatalf("Expected valid delivered order: %v", err)
	}
	if !order2.OnTime() {
		t.Error("Expected delivery one day early to be on time")
	}
}
