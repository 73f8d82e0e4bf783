package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/mdcore/entity"
)

func TestDecodeNamed(t *testing.T) {
	assert.Equal(t, "&", entity.Decode("&amp;"))
	assert.Equal(t, "\"", entity.Decode("&quot;"))
}

func TestDecodeUnknownNamePassesThrough(t *testing.T) {
	assert.Equal(t, "&notareal;", entity.Decode("&notareal;"))
}

func TestDecodeDecimal(t *testing.T) {
	assert.Equal(t, "A", entity.Decode("&#65;"))
	assert.Equal(t, "€", entity.Decode("&#8364;"))
}

func TestDecodeHex(t *testing.T) {
	assert.Equal(t, "A", entity.Decode("&#x41;"))
	assert.Equal(t, "A", entity.Decode("&#X41;"))
}

func TestDecodeInvalidNumericPassesThrough(t *testing.T) {
	assert.Equal(t, "&#xZZZ;", entity.Decode("&#xZZZ;"))
	assert.Equal(t, "&#99999999;", entity.Decode("&#99999999;"))
	assert.Equal(t, "&#xD800;", entity.Decode("&#xD800;"))
}

func TestDecodeMalformedToken(t *testing.T) {
	assert.Equal(t, "amp;", entity.Decode("amp;"))
	assert.Equal(t, "&amp", entity.Decode("&amp"))
}
