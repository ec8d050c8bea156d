package admission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abakada/admissions-portal/internal/collab"
	"github.com/abakada/admissions-portal/internal/collab/memory"
)

func TestLoadCatalog(t *testing.T) {
	store := memory.New()
	store.Put(DoctypeProgram, "BS Criminology", collab.Record{"program_name": "BS Criminology"})
	store.Put(DoctypeProgram, "BS Forensic Science", collab.Record{"program_name": "BS Forensic Science"})
	store.Put(DoctypeAgent, "AGENT-0001", collab.Record{"partner_name": "Horizon Education Services"})

	cat, err := LoadCatalog(context.Background(), store)
	require.NoError(t, err)
	assert.Len(t, cat.Programs, 2)
	assert.True(t, cat.HasProgram("BS Criminology"))
	assert.False(t, cat.HasProgram("BS Nursing"))

	// Real agents plus the manual-entry escape hatch.
	require.Len(t, cat.Agents, 2)
	assert.Equal(t, "Horizon Education Services", cat.AgentDisplay("AGENT-0001"))
	assert.Equal(t, ManualAgent, cat.Agents[len(cat.Agents)-1].Code)
}

func TestLoadAddressOptionsFiltersByParent(t *testing.T) {
	store := memory.New()
	store.Put("Province", "133900000", collab.Record{"province_name": "Metro Manila", "region": "130000000"})
	store.Put("Province", "042100000", collab.Record{"province_name": "Cavite", "region": "040000000"})

	opts, err := LoadAddressOptions(context.Background(), store, LevelProvince, "130000000")
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, "Metro Manila", opts[0].Display)
	assert.Equal(t, "133900000", opts[0].Code)
}
