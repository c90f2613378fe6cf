package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevelPayloadObject(t *testing.T) {
	value, err := parseLevelPayload([]byte(`{"level": 42.5}`))
	require.NoError(t, err)
	assert.Equal(t, 42.5, value)
}

func TestParseLevelPayloadBareNumber(t *testing.T) {
	value, err := parseLevelPayload([]byte(" 87 \n"))
	require.NoError(t, err)
	assert.Equal(t, 87.0, value)
}

func TestParseLevelPayloadSentinel(t *testing.T) {
	value, err := parseLevelPayload([]byte(`{"level": -1}`))
	require.NoError(t, err)
	assert.Equal(t, -1.0, value)
}

func TestParseLevelPayloadGarbage(t *testing.T) {
	_, err := parseLevelPayload([]byte(`{"battery": 3.3}`))
	assert.Error(t, err, "object without a level field")

	_, err = parseLevelPayload([]byte("not a number"))
	assert.Error(t, err)
}
