package ids_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/livingworld/internal/ids"
)

func TestNewIsDeterministic(t *testing.T) {
	a := ids.New(1, "npc", 5)
	b := ids.New(1, "npc", 5)
	require.Equal(t, a, b)
}

func TestNewVariesByIndex(t *testing.T) {
	a := ids.New(1, "npc", 5)
	b := ids.New(1, "npc", 6)
	require.NotEqual(t, a, b)
}

func TestEntityFormat(t *testing.T) {
	id := ids.Entity("structure", "clan_1", 42, 0)
	require.True(t, strings.HasPrefix(id, "structure_clan_1_"))

	parts := strings.Split(id, "_")
	require.Equal(t, 12, len(parts[len(parts)-1]))
}

func TestEntityIsDeterministicAndDistinctPerContext(t *testing.T) {
	a := ids.Entity("npc", "clan_1", 42, 3)
	b := ids.Entity("npc", "clan_1", 42, 3)
	require.Equal(t, a, b)

	c := ids.Entity("npc", "clan_2", 42, 3)
	require.NotEqual(t, a, c)
}
