package idgen_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-narrator/internal/pkg/idgen"
)

func TestUUIDGenerator(t *testing.T) {
	g := idgen.NewUUID("battle")

	first := g.Generate()
	second := g.Generate()
	require.True(t, strings.HasPrefix(first, "battle_"))
	assert.NotEqual(t, first, second)

	id, err := uuid.Parse(strings.TrimPrefix(first, "battle_"))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestUUIDGeneratorWithoutPrefix(t *testing.T) {
	_, err := uuid.Parse(idgen.NewUUID("").Generate())
	assert.NoError(t, err)
}

func TestSequentialGenerator(t *testing.T) {
	g := idgen.NewSequential("mail")
	assert.Equal(t, "mail_1", g.Generate())
	assert.Equal(t, "mail_2", g.Generate())
	assert.Equal(t, "1", idgen.NewSequential("").Generate())
}
