package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintledger/internal/core/entity"
)

func testDirectory() *Snapshot {
	return NewSnapshot(
		[]*entity.WorkOrder{
			{ID: "wo-1", Number: "1001", ProjectID: "p-1", AssetID: "as-1"},
			{ID: "wo-2", Number: "1002", AssetID: "as-1"},
			{ID: "wo-3", Number: "1003", ProjectID: "p-missing"},
			{ID: "wo-4", Number: "1004"},
		},
		[]*entity.Project{{ID: "p-1", Code: "CAPEX-7", CostCenter: "CC-PRJ"}},
		[]*entity.Asset{{ID: "as-1", Code: "BLD-A", Kind: entity.AssetBuilding, CostCenter: "CC-BLD"}},
	)
}

func TestClassify(t *testing.T) {
	dir := testDirectory()

	tests := []struct {
		name    string
		usage   Usage
		want    Tag
		wantErr bool
	}{
		{
			name:  "work order with project",
			usage: Usage{WorkOrderNumber: "1001"},
			want:  Tag{WorkOrderID: "wo-1", ProjectID: "p-1", CostCenter: "CC-PRJ", Note: "OS 1001 - project CAPEX-7"},
		},
		{
			name:  "work order falls back to asset",
			usage: Usage{WorkOrderNumber: "1002", Reason: "pump seal"},
			want:  Tag{WorkOrderID: "wo-2", CostCenter: "CC-BLD", Note: "OS 1002 - building BLD-A: pump seal"},
		},
		{
			name:  "work order without linkage",
			usage: Usage{WorkOrderNumber: "1004"},
			want:  Tag{WorkOrderID: "wo-4", Note: "OS 1004"},
		},
		{
			name:  "work order with missing project",
			usage: Usage{WorkOrderNumber: "1003"},
			want:  Tag{WorkOrderID: "wo-3", Note: "OS 1003", Unresolved: true},
		},
		{
			name:  "unknown work order",
			usage: Usage{WorkOrderNumber: "9999"},
			want:  Tag{Note: "OS 9999", Unresolved: true},
		},
		{
			name:  "direct project",
			usage: Usage{ProjectID: "p-1"},
			want:  Tag{ProjectID: "p-1", CostCenter: "CC-PRJ", Note: "Direct consumption for project CAPEX-7"},
		},
		{
			name:  "unknown project",
			usage: Usage{ProjectID: "p-x"},
			want:  Tag{Note: "Direct consumption for project p-x", Unresolved: true},
		},
		{
			name:  "general",
			usage: Usage{Reason: "  workshop cleaning "},
			want:  Tag{Note: "workshop cleaning"},
		},
		{
			name:    "general without reason",
			usage:   Usage{Reason: "  "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(dir, tt.usage)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutbound_UnresolvedContextStillRecords(t *testing.T) {
	f := newFixture(t, testDirectory(), loc("A", 5))

	mv, err := f.alloc.Outbound(context.Background(), f.material, "A", q(1), Usage{WorkOrderNumber: "9999"})
	require.NoError(t, err)
	assert.Empty(t, mv.CostCenter)
	assert.Empty(t, mv.LinkedWorkOrderID)
	assert.Equal(t, q(4), f.material.CurrentStock)
}

func TestFIFOConsume_TagsWorkOrder(t *testing.T) {
	f := newFixture(t, testDirectory(), loc("A", 5))

	mv, err := f.alloc.FIFOConsume(context.Background(), f.material, q(2), Usage{WorkOrderNumber: "1001"})
	require.NoError(t, err)
	assert.Equal(t, "wo-1", mv.LinkedWorkOrderID)
	assert.Equal(t, "p-1", mv.LinkedProjectID)
	assert.Equal(t, "CC-PRJ", mv.CostCenter)
	assert.Equal(t, "A", mv.FromLocation)
}
