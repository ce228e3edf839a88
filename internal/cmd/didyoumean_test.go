package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	commands := []string{"call", "upload", "presign", "profile", "version"}

	assert.Equal(t, "profile", suggest("prof", commands))
	assert.Equal(t, "upload", suggest("uplaod", commands))
	assert.Equal(t, "", suggest("zzzzzzzz", commands))
	assert.Equal(t, "", suggest("", commands))
	assert.Equal(t, "--concurrency", suggest("--concurency", []string{"--descriptor", "--concurrency"}))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("call", "call"))
	assert.Equal(t, 1, levenshtein("cal", "call"))
	assert.Equal(t, 2, levenshtein("uplaod", "upload"))
	assert.Equal(t, 4, levenshtein("", "abcd"))
}

func TestExtractFlag(t *testing.T) {
	assert.Equal(t, "--concurenc", extractFlag("unknown flag: --concurenc"))
	assert.Equal(t, "-z", extractFlag("unknown shorthand flag: 'z' in -z"))
	assert.Equal(t, "", extractFlag("no flag here"))
}

func TestFlagAlias(t *testing.T) {
	var value string
	cmd := &cobra.Command{Use: "x", Run: func(*cobra.Command, []string) {}}
	cmd.Flags().StringVar(&value, "descriptor", "", "")
	flagAlias(cmd.Flags(), "descriptor", "desc")

	cmd.SetArgs([]string{"--desc", "d.json"})
	assert.NoError(t, cmd.Execute())
	assert.Equal(t, "d.json", value)
	assert.True(t, flagOrAliasChanged(cmd, "descriptor"))

	alias := cmd.Flags().Lookup("desc")
	assert.True(t, alias.Hidden)
	assert.Panics(t, func() { flagAlias(pflag.NewFlagSet("t", pflag.ContinueOnError), "missing", "m") })
}
