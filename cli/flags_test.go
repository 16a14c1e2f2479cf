package cli

import (
	"os"
	"testing"

	goFlags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	os.Args = []string{""}
	_, err := Parse()
	assert.NoError(t, err, "should not return error")

	os.Args = []string{"", "--help"}
	_, err = Parse()
	assert.True(t, IsErrOfType(err, goFlags.ErrHelp), "should return help error")

	os.Args = []string{"", "--version"}
	flags, err := Parse()
	assert.NoError(t, err, "should not return error")
	assert.True(t, flags.Version, "flag should be specified")

	os.Args = []string{"", "--logLevel=-1"}
	_, err = Parse()
	assert.Error(t, err, "should return error for negative log level")
	assert.True(t, IsErrOfType(err, goFlags.ErrMarshal), "should return marshal error")

	os.Args = []string{"", "--logLevel=5"}
	flags, err = Parse()
	assert.NoError(t, err, "should not return error")
	assert.Exactly(t, logrus.DebugLevel, flags.LogLevel, "flag should have this value")

	os.Args = []string{"", "--programCfgPath=/cfg/path", "-f", "a.json", "--file=b.yaml", "-o", "out.json",
		"--format=jsonc", "--schema=schema.json", "-s", "name=new", "--set=port=8080", "-d", "old.key",
		"-m", "items:0:2", "--diff", "-n"}
	flags, err = Parse()
	assert.NoError(t, err, "should not return error")
	assert.Exactly(t, logrus.InfoLevel, flags.LogLevel, "flag should have this value")
	assert.Exactly(t, "/cfg/path", flags.ProgramCfgPath, "flag should have this value")
	assert.Exactly(t, []string{"a.json", "b.yaml"}, flags.Inputs, "flag should accumulate every occurrence")
	assert.Exactly(t, "out.json", flags.Output, "flag should have this value")
	assert.Exactly(t, "jsonc", flags.Format, "flag should have this value")
	assert.Exactly(t, "schema.json", flags.SchemaPath, "flag should have this value")
	assert.Exactly(t, []string{"name=new", "port=8080"}, flags.Sets, "flag should accumulate every occurrence")
	assert.Exactly(t, []string{"old.key"}, flags.Deletes, "flag should have this value")
	assert.Exactly(t, []string{"items:0:2"}, flags.Moves, "flag should have this value")
	assert.True(t, flags.Diff, "flag should be specified")
	assert.True(t, flags.DryRun, "flag should be specified")
}

func TestIsErrOfType(t *testing.T) {
	assert.True(t, IsErrOfType(&goFlags.Error{Type: goFlags.ErrUnknown}, goFlags.ErrUnknown))
	assert.False(t, IsErrOfType(&goFlags.Error{Type: goFlags.ErrUnknown}, goFlags.ErrHelp))
}
