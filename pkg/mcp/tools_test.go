package mcp_test

import (
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schierlm/mnemonifier/pkg/mcp"
	"github.com/schierlm/mnemonifier/pkg/mnemonic"
)

func TestLookup_ByCharacterTokenAndCodepoint(t *testing.T) {
	t.Parallel()

	table, err := mnemonic.Default()
	require.NoError(t, err)

	want := mcp.LookupOutput{Codepoint: "U+0415", Character: "\u0415", Mnemonic: "E="}

	for _, query := range []string{"\u0415", "E=", "U+0415", "u+415"} {
		got, lookupErr := mcp.Lookup(table, query)
		require.NoError(t, lookupErr, "query %q", query)
		assert.Equal(t, want, got)
	}
}

func TestSuggest_NearbyTokens(t *testing.T) {
	t.Parallel()

	table, err := mnemonic.Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"u-:", "u:", "x:"}, mcp.Suggest(table, "ux:"))

	assert.Empty(t, mcp.Suggest(table, "this-is-far-from-anything"))
}

func TestLookup_Errors(t *testing.T) {
	t.Parallel()

	table, err := mnemonic.Default()
	require.NoError(t, err)

	_, err = mcp.Lookup(table, "")
	require.ErrorIs(t, err, mcp.ErrEmptyQuery)

	_, err = mcp.Lookup(table, "€")
	require.ErrorIs(t, err, mcp.ErrNoMnemonic)

	_, err = mcp.Lookup(table, "no-such-token")
	require.ErrorIs(t, err, mcp.ErrNoMnemonic)

	_, err = mcp.Lookup(table, "u:x")
	require.ErrorIs(t, err, mcp.ErrNoMnemonic)
	assert.Contains(t, err.Error(), "did you mean")
	assert.Contains(t, err.Error(), "u:")

	_, err = mcp.Lookup(table, "U+110000")
	require.ErrorIs(t, err, mcp.ErrNoMnemonic)
}

func TestMCPServer_RejectsOversizedInput(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, newServer(t, mcp.ServerDeps{}))

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      mcp.ToolNameEncode,
		Arguments: map[string]any{"text": strings.Repeat("a", mcp.MaxTextInputBytes+1)},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, firstText(t, result), "exceeds maximum size")
}
