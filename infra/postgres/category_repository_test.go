package postgres

import (
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"goldshop/domain"
)

func TestAggregateStats(t *testing.T) {
	rings, chains := "rings", "chains"
	products := []domain.Product{
		{ID: "p1", CategoryID: &rings, Karat: 24, WeightGrams: decimal.RequireFromString("10")},
		{ID: "p2", CategoryID: &rings, Karat: 18, WeightGrams: decimal.RequireFromString("4")},
		{ID: "p3", CategoryID: &chains, Karat: 22, WeightGrams: decimal.RequireFromString("12")},
		{ID: "p4", Karat: 14, WeightGrams: decimal.RequireFromString("2")},
	}

	stats := AggregateStats([]string{"rings", "empty"}, products)

	if got := stats["rings"]; got.ProductCount != 2 || !got.GoldWeight.Equal(decimal.RequireFromString("13")) {
		t.Fatalf("expected rings 2 products 13g, got %d %s", got.ProductCount, got.GoldWeight)
	}
	if got, ok := stats["empty"]; !ok || got.ProductCount != 0 || !got.GoldWeight.IsZero() {
		t.Fatalf("expected zero stats for empty category, got %+v", got)
	}
	if _, ok := stats["chains"]; ok {
		t.Fatalf("expected categories outside the request to be skipped")
	}
}

func TestChangeSet(t *testing.T) {
	active := false
	color := "#aa00ff"

	sets, args := changeSet(domain.CategoryChanges{IsActive: &active, Color: &color, ParentSet: true})

	want := []string{"color = $1", "is_active = $2", "parent_id = $3"}
	if !reflect.DeepEqual(sets, want) {
		t.Fatalf("expected %v, got %v", want, sets)
	}
	if len(args) != 3 || args[0] != "#aa00ff" || args[1] != false {
		t.Fatalf("unexpected args %v", args)
	}
	if p, ok := args[2].(*string); !ok || p != nil {
		t.Fatalf("expected a nil parent for the root, got %v", args[2])
	}
}

func TestSchemaIsEmbedded(t *testing.T) {
	for _, table := range []string{"categories", "products"} {
		if !strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Fatalf("expected embedded schema to create %s", table)
		}
	}
}
