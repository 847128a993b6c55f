package caseid_test

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"gaevic/internal/caseid"

	"github.com/stretchr/testify/require"
)

func TestAllocate_Format(t *testing.T) {
	id := caseid.Allocate()

	require.True(t, caseid.Valid(id), "allocated id %q should match the format", id)

	parts := strings.Split(id, "-")
	require.Len(t, parts, 4)
	require.Equal(t, caseid.Prefix, parts[0])
	require.Equal(t, strconv.Itoa(time.Now().Year()), parts[1])
}

func TestAllocate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id := caseid.Allocate()
		require.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}

func TestValid_RejectsArbitraryStrings(t *testing.T) {
	require.False(t, caseid.Valid(""))
	require.False(t, caseid.Valid("HOU-2024"))
	require.False(t, caseid.Valid("case 1"))
	require.True(t, caseid.Valid("HOU-2024-1706092000-a1b2c3d4"))
}
