package intake

import (
	"context"
	"testing"

	"github.com/Veraticus/qflow/internal/memory"
	"github.com/Veraticus/qflow/internal/model"
	"github.com/Veraticus/qflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T) *memory.Memory {
	t.Helper()
	mem, err := memory.New(context.Background(), testutil.NewMemoryKV(nil))
	require.NoError(t, err)
	return mem
}

func TestProcessor_EndToEnd(t *testing.T) {
	catalog := model.ServiceCatalog{
		{Name: "Botox", Subs: []string{"ริ้วรอย", "กราม"}},
	}
	directory := model.BranchDirectory{
		{Name: "สยาม (SIAM)", Code: "SIAM"},
	}
	p := Build(newTestMemory(t), catalog, directory)

	text := "สรุปยอด สาขาสยาม (SIAM) วันที่ 1/3/68\n______________\nริ้วรอย 3 คน\nลูกค้าใหม่ 4"

	result := p.Process(text)

	assert.Equal(t, model.HeaderData{Branch: "SIAM", Date: "2025-03-01"}, result.Header)
	require.Len(t, result.Items, 1)
	item := result.Items[0]
	assert.Equal(t, "Botox", item.Program)
	assert.Equal(t, "ริ้วรอย", item.Sub)
	assert.Equal(t, "ริ้วรอย", item.OriginalName)
	assert.Equal(t, 3, item.Que)
	assert.False(t, item.Verified)
	assert.NotEmpty(t, item.ID)
}

func TestProcessor_HeaderSeesTextBeforeMarker(t *testing.T) {
	p := Build(nil, nil, model.BranchDirectory{{Name: "อุดร", Code: "UDN"}})

	// Prose before the marker is cut from item parsing but still feeds the header
	result := p.Process("สาขาอุดร 12/5/68\nแชทวันที่\nBotox 2")

	assert.Equal(t, model.HeaderData{Branch: "UDN", Date: "2025-05-12"}, result.Header)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Botox", result.Items[0].Program)
}

func TestProcessor_LearnedCorrectionApplies(t *testing.T) {
	ctx := context.Background()
	mem := newTestMemory(t)
	catalog := model.ServiceCatalog{
		{Name: "Vitamin", Subs: []string{"ครีมกันแดด"}},
		{Name: "Promo", Subs: []string{"Set A"}},
	}
	p := Build(mem, catalog, nil)

	result := p.Process("ครีมกันแดด 2")
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Vitamin", result.Items[0].Program)

	require.NoError(t, mem.Learn(ctx, "ครีมกันแดด", "Promo", ""))

	result = p.Process("ครีมกันแดด 2")
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Promo", result.Items[0].Program)
	assert.Empty(t, result.Items[0].Sub)
}

func TestProcessor_LearnedBranchAlias(t *testing.T) {
	ctx := context.Background()
	mem := newTestMemory(t)
	require.NoError(t, mem.LearnBranchAlias(ctx, "บางนา", "BNA"))

	p := Build(mem, nil, nil)
	result := p.Process("สาขาบางนา")
	assert.Equal(t, "BNA", result.Header.Branch)
	assert.Empty(t, result.Items)
}

func TestProcessor_Empty(t *testing.T) {
	p := Build(nil, nil, nil)

	result := p.Process("")
	assert.Equal(t, model.HeaderData{}, result.Header)
	assert.Empty(t, result.Items)
}
