// pkg/types/results_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: None
// PURPOSE: Test clean result aggregation rules

package types_test

import (
	"fmt"
	"testing"

	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/devcraft/storekeep/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanResultSuccess(t *testing.T) {
	failure := map[string]error{"ws1": fmt.Errorf("locked")}

	tests := []struct {
		name    string
		result  types.CleanResult
		success bool
	}{
		{
			name:    "nothing existed",
			result:  types.CleanResult{Tier: types.TierSmart},
			success: true,
		},
		{
			name:    "one store processed despite a failure",
			result:  types.CleanResult{Tier: types.TierDeep, StoresProcessed: 1, PerStoreErrors: failure},
			success: true,
		},
		{
			name:    "every store failed",
			result:  types.CleanResult{Tier: types.TierDeep, PerStoreErrors: failure},
			success: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.success, tt.result.Success())
			if tt.success {
				assert.NoError(t, tt.result.Err())
			} else {
				assert.Error(t, tt.result.Err())
			}
		})
	}
}

func TestCleanResultErr(t *testing.T) {
	result := types.CleanResult{
		Tier: types.TierSmart,
		PerStoreErrors: map[string]error{
			"ws2":    fmt.Errorf("locked"),
			"global": fmt.Errorf("corrupt"),
		},
	}

	err := result.Err()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoStoresProcessed))
	assert.Contains(t, err.Error(), "smart clean failed on all 2 store(s)")
	assert.Equal(t, []string{"global", "ws2"}, errors.GetErrorDetails(err)["stores"])

	result.Tier = ""
	assert.Contains(t, result.Err().Error(), "restore failed on all 2 store(s)")
}

func TestCleanResultAttempted(t *testing.T) {
	result := types.CleanResult{Stores: []types.StoreOutcome{
		{ID: "global", Existed: true, Processed: true},
		{ID: "ws1", Existed: true},
		{ID: "ws2"},
	}}
	assert.Equal(t, 2, result.Attempted())
}

func TestErrorKey(t *testing.T) {
	assert.Equal(t, "global", types.ErrorKey(types.StoreKindGlobal, types.GlobalStoreID))
	assert.Equal(t, "workspace_root", types.ErrorKey(types.StoreKindWorkspaceRoot, "workspace_root"))
	assert.Equal(t, "workspace:global", types.ErrorKey(types.StoreKindWorkspace, "global"))
}

func TestLocationsIsEmpty(t *testing.T) {
	assert.True(t, types.Locations{}.IsEmpty())
	assert.True(t, types.Locations{SettingsFile: "/x/settings.json"}.IsEmpty())
	assert.False(t, types.Locations{GlobalStore: "/x/state.vscdb"}.IsEmpty())
}
