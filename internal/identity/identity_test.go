package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolveTreatsHex24AsID(t *testing.T) {
	locator := "65f1c0ffee65f1c0ffee65f1"
	sel := Resolve(locator)

	require.True(t, sel.ByID())
	assert.Equal(t, locator, sel.ID().Hex())

	filter := sel.Filter()
	assert.Equal(t, sel.ID(), filter["_id"])
	assert.Equal(t, false, filter["is_deleted"])
}

func TestResolveTreatsEverythingElseAsSlug(t *testing.T) {
	cases := []string{
		"wireless-earbuds-krw",
		"65f1c0ffee65f1c0ffee65f",   // 23 caracteres
		"65f1c0ffee65f1c0ffee65f1a", // 25 caracteres
		"g5f1c0ffee65f1c0ffee65f1",  // no-hex en posición 0
		"",
	}

	for _, locator := range cases {
		sel := Resolve(locator)
		require.False(t, sel.ByID(), "locator %q", locator)
		assert.Equal(t, locator, sel.Slug())

		filter := sel.Filter()
		assert.Equal(t, locator, filter["slug"])
		assert.Equal(t, false, filter["is_deleted"])
	}
}

// Ambigüedad documentada: un slug con forma exacta hex-24 se resuelve como
// identificador, no como slug.
func TestResolveHexShapedSlugAmbiguity(t *testing.T) {
	hexSlug := "abcdefabcdefabcdefabcdef"
	sel := Resolve(hexSlug)

	require.True(t, sel.ByID())
	expected, err := primitive.ObjectIDFromHex(hexSlug)
	require.NoError(t, err)
	assert.Equal(t, expected, sel.ID())
}
