package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/schierlm/mnemonifier/cmd/mnemonify/commands"
	"github.com/schierlm/mnemonifier/pkg/codec"
	"github.com/schierlm/mnemonifier/pkg/config"
	"github.com/schierlm/mnemonifier/pkg/mnemonic"
)

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := commands.NewRootCommand()

	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err = cmd.Execute()

	return out.String(), errOut.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mnemonify.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestEncodeCommand_Args(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "", "encode", "Für", "[x]")
	require.NoError(t, err)
	assert.Equal(t, "F[u:]r [[]x[]]\n", out)
}

func TestEncodeCommand_Stdin(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "Grüße\n", "encode")
	require.NoError(t, err)
	assert.Equal(t, "Gr[u:][ss]e\n", out)
}

func TestEncodeCommand_Annotator(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "", "encode", "--annotator", "unidecode", "€")
	require.NoError(t, err)
	assert.Equal(t, "[#20AC{EU}]\n", out)

	out, _, err = execute(t, "", "encode", "€")
	require.NoError(t, err)
	assert.Equal(t, "[#20AC]\n", out)
}

func TestEncodeCommand_UnknownAnnotator(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "", "encode", "--annotator", "bogus", "x")
	require.ErrorIs(t, err, config.ErrInvalidAnnotator)
}

func TestEncodeCommand_AnnotatorFromConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "codec:\n  annotator: unidecode\n")

	out, _, err := execute(t, "", "--config", path, "encode", "€")
	require.NoError(t, err)
	assert.Equal(t, "[#20AC{EU}]\n", out)
}

func TestDecodeCommand_Lax(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "", "decode", "F[u:]r Lo]vely")
	require.NoError(t, err)
	assert.Equal(t, "Für Lo]vely\n", out)
}

func TestDecodeCommand_StrictShowsPosition(t *testing.T) {
	t.Parallel()

	out, errOut, err := execute(t, "", "decode", "--strict", "F[u:]r Lo]vely")
	require.ErrorIs(t, err, codec.ErrStrayCloseBracket)
	assert.Empty(t, out)

	assert.Contains(t, errOut, "line 1, column 10")
	assert.Contains(t, errOut, "  F[u:]r Lo]vely\n")
	assert.Contains(t, errOut, "\n"+strings.Repeat(" ", 11)+"^\n")
}

func TestDecodeCommand_StrictFromConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "codec:\n  strict: true\n")

	_, _, err := execute(t, "", "--config", path, "decode", "Lo]vely")
	require.ErrorIs(t, err, codec.ErrStrayCloseBracket)

	out, _, err := execute(t, "", "--config", path, "decode", "--strict=false", "Lo]vely")
	require.NoError(t, err)
	assert.Equal(t, "Lo]vely\n", out)
}

func TestDecodeCommand_Stdin(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "[E=|!] [#1D11E{::}]\n", "decode", "--strict")
	require.NoError(t, err)
	assert.Equal(t, "\u0400 \U0001D11E\n", out)
}

func TestVerifyCommand_RoundTrip(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "", "verify", "--show", "Für [x] € \U0001D11E")
	require.NoError(t, err)
	assert.Contains(t, out, "F[u:]r [[]x[]] [#20AC] [#1D11E]\n")
	assert.Contains(t, out, "round trip ok")
}

func TestVerifyCommand_InvalidUTF8(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "ab\xffcd", "verify")
	require.ErrorIs(t, err, commands.ErrRoundTripMismatch)
	assert.Contains(t, out, "invalid UTF-8")
}

func TestTableInfoCommand(t *testing.T) {
	t.Parallel()

	table, err := mnemonic.Default()
	require.NoError(t, err)

	out, _, err := execute(t, "", "table", "info")
	require.NoError(t, err)

	assert.Contains(t, out, "embedded")
	assert.Contains(t, out, table.Fingerprint())
	assert.Contains(t, out, "Entries")
}

func TestTableInfoCommand_CustomTable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tablePath := filepath.Join(dir, "custom.dat")
	require.NoError(t, os.WriteFile(tablePath, []byte("àa! a'"), 0o600))

	cfgPath := writeConfig(t, "codec:\n  table: "+tablePath+"\n")

	out, _, err := execute(t, "", "--config", cfgPath, "table", "info")
	require.NoError(t, err)
	assert.Contains(t, out, tablePath)
	assert.Contains(t, out, "U+00E0..U+00E1")
}

func TestRootCommand_ASCIILogs(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "tabl\u00E9")
	require.NoError(t, os.Mkdir(dir, 0o700))

	tablePath := filepath.Join(dir, "custom.dat")
	require.NoError(t, os.WriteFile(tablePath, []byte("\u00E0a! a'"), 0o600))

	cfgPath := writeConfig(t, "codec:\n  table: "+tablePath+"\nlogging:\n  ascii: true\n")

	out, errOut, err := execute(t, "", "--config", cfgPath, "--verbose", "table", "info")
	require.NoError(t, err)

	assert.Contains(t, out, tablePath)
	assert.Contains(t, errOut, "mnemonic table loaded")
	assert.Contains(t, errOut, "tabl[e']")

	for i := range len(errOut) {
		require.Less(t, errOut[i], byte(0x80), "non-ASCII log output: %q", errOut)
	}
}

func TestTableLookupCommand(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "", "table", "lookup", "ü", "E=", "U+0400")
	require.NoError(t, err)

	assert.Contains(t, out, "U+00FC")
	assert.Contains(t, out, "[u:]")
	assert.Contains(t, out, "U+0415")
	assert.Contains(t, out, "E=|!")
}

func TestTableLookupCommand_Suggests(t *testing.T) {
	t.Parallel()

	_, errOut, err := execute(t, "", "table", "lookup", "u:x")
	require.ErrorIs(t, err, commands.ErrLookupFailed)
	assert.Contains(t, errOut, "did you mean u:")
}

func TestTableListCommand_YAML(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "", "table", "list", "--from", "U+00FC", "--to", "U+00FC", "--format", "yaml")
	require.NoError(t, err)

	var entries []map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(out), &entries))

	assert.Equal(t, []map[string]string{
		{"codepoint": "U+00FC", "character": "ü", "mnemonic": "u:"},
	}, entries)
}

func TestTableListCommand_CSV(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "", "table", "list", "--from", "0xE8", "--to", "e9", "-f", "csv")
	require.NoError(t, err)

	assert.Contains(t, out, "U+00E8,è,e!")
	assert.Contains(t, out, "U+00E9,é,e'")
	assert.NotContains(t, out, "U+00EA")
}

func TestTableListCommand_BadFlags(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "", "table", "list", "--format", "xml")
	require.ErrorIs(t, err, commands.ErrUnknownFormat)

	_, _, err = execute(t, "", "table", "list", "--from", "U+ZZ")
	require.ErrorIs(t, err, commands.ErrInvalidCodepoint)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "mnemonify "), out)
}

func TestMCPCommand_Flags(t *testing.T) {
	t.Parallel()

	cmd := commands.NewMCPCommand(&commands.GlobalOptions{})
	require.NotNil(t, cmd)
	assert.Equal(t, "mcp", cmd.Use)
	assert.NotEmpty(t, cmd.Long)

	flag := cmd.Flags().Lookup("metrics-listen")
	require.NotNil(t, flag)
	assert.Empty(t, flag.DefValue)
}

func TestRootCommand_InvalidConfigFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "logging:\n  level: loud\n")

	_, _, err := execute(t, "", "--config", path, "encode", "x")
	require.ErrorIs(t, err, config.ErrInvalidLogLevel)
}
