package normalize

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterIDs struct{ n int }

func (c *counterIDs) Generate() string {
	c.n++
	return fmt.Sprintf("svc-%d", c.n)
}

func TestRepairServices(t *testing.T) {
	created := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	defaults := ListDefaults{CreatedAt: created, IDs: &counterIDs{}}

	raw := []any{
		map[string]any{"name": "Haircut", "durationMinutes": 2.0, "price": -100.0},
		map[string]any{
			"_id":             "svc-existing",
			"name":            "Facial",
			"createdAt":       "2023-01-01T00:00:00Z",
			"updatedAt":       "2023-02-01T00:00:00Z",
			"isActive":        false,
			"durationMinutes": 45.0,
			"price":           2500.0,
		},
		map[string]any{"name": "Massage", "createdAt": "2023-05-05T10:00:00Z", "isActive": "no"},
		"legacy string element",
	}

	repaired, changed, ok := RepairServices(raw, defaults)
	require.True(t, ok)
	assert.True(t, changed)
	require.Len(t, repaired, 4)

	assert.Equal(t, map[string]any{
		"_id":             "svc-1",
		"name":            "Haircut",
		"createdAt":       "2024-03-01T08:30:00Z",
		"updatedAt":       "2024-03-01T08:30:00Z",
		"isActive":        true,
		"durationMinutes": 5.0,
		"price":           0.0,
	}, repaired[0])
	assert.Equal(t, raw[1], repaired[1])
	assert.Equal(t, map[string]any{
		"_id":       "svc-2",
		"name":      "Massage",
		"createdAt": "2023-05-05T10:00:00Z",
		"updatedAt": "2023-05-05T10:00:00Z",
		"isActive":  false,
	}, repaired[2])
	assert.Equal(t, "legacy string element", repaired[3])

	// Input untouched.
	_, hasID := raw[0].(map[string]any)["_id"]
	assert.False(t, hasID)
}

func TestRepairServices_Idempotent(t *testing.T) {
	defaults := ListDefaults{CreatedAt: time.Unix(0, 0), IDs: &counterIDs{}}
	first, changed, ok := RepairServices([]any{map[string]any{"durationMinutes": 1.0}}, defaults)
	require.True(t, ok)
	require.True(t, changed)

	second, changed, ok := RepairServices(first, defaults)
	require.True(t, ok)
	assert.False(t, changed)
	assert.Equal(t, first, second)
}

func TestRepairServices_NotAList(t *testing.T) {
	_, _, ok := RepairServices(map[string]any{"a": 1}, ListDefaults{})
	assert.False(t, ok)
	_, _, ok = RepairServices(nil, ListDefaults{})
	assert.False(t, ok)
}

func TestRepairServices_Empty(t *testing.T) {
	repaired, changed, ok := RepairServices([]any{}, ListDefaults{})
	assert.True(t, ok)
	assert.False(t, changed)
	assert.Empty(t, repaired)
}

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
