package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

const kotakText = `My Kotak Credit Card Statement
Primary Card Number: 414367XXXXXX7788
Statement Period: 12-Jun-24 to 11-Jul-24
Remember to Pay By: 31-Jul-24
Total Amount Due (TAD): Rs. 8,765.43
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTextCommandStdin(t *testing.T) {
	out, err := run(t, kotakText, "text", "-", "--format=json", "--loglevel=error")
	require.NoError(t, err)

	var got models.StatementFields
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Kotak Bank", got.Issuer)
	assert.Equal(t, "7788", got.CardSuffix)
	assert.Equal(t, "31/07/2024", got.PaymentDueDate)
	assert.Equal(t, "₹8,765.43", got.TotalBalance)
}

func TestTextCommandFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.txt")
	require.NoError(t, os.WriteFile(path, []byte("nothing recognizable"), 0o600))

	out, err := run(t, "", "text", path, "-f", "csv", "--loglevel=error")
	require.NoError(t, err)
	assert.Contains(t, out, "Issuer,Unknown")
}

func TestParseCommandErrors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "statement.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o600))

	_, err := run(t, "", "parse", "--loglevel=error", filepath.Join(dir, "missing.pdf"))
	assert.ErrorContains(t, err, "not found")

	_, err = run(t, "", "parse", "--loglevel=error", txt)
	assert.ErrorContains(t, err, ".pdf")

	_, err = run(t, "", "parse", "--loglevel=error")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, kotakText, "text", "-", "--format=xml")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestDetectCommand(t *testing.T) {
	dir := t.TempDir()
	kotak := filepath.Join(dir, "kotak.txt")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(kotak, []byte(kotakText), 0o600))
	require.NoError(t, os.WriteFile(other, []byte("nothing recognizable"), 0o600))

	out, err := run(t, "", "detect", kotak, other, "--loglevel=error")
	require.NoError(t, err)
	assert.Equal(t, kotak+": Kotak Bank\n"+other+": Unknown\n", out)

	_, err = run(t, "", "detect", filepath.Join(dir, "missing.txt"), "--loglevel=error")
	assert.Error(t, err)
}
