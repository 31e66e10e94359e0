package exchange

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOrderID(t *testing.T) {
	id := clientOrderID("buy")
	require.True(t, strings.HasPrefix(id, "tradepilot-buy-"), "got %s", id)

	_, err := uuid.Parse(strings.TrimPrefix(id, "tradepilot-buy-"))
	assert.NoError(t, err)

	assert.NotEqual(t, id, clientOrderID("buy"))
}
