package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"conf_surgeon/util/logger"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewDefCfg(t *testing.T) {
	cfg := NewDefCfg()
	assert.Exactly(t, 4, cfg.General.MaxConns, "should have this default")
	assert.Exactly(t, time.Second*10, cfg.General.RespTimeout, "should have this default")
	assert.True(t, cfg.Output.MakeBackup, "should have this default")
	assert.Exactly(t, uint(6), cfg.Output.BackupSuffixLength, "should have this default")
	assert.False(t, cfg.Output.ShowDiff, "should have this default")
	assert.True(t, cfg.Output.FinalNewline, "should have this default")
}

func TestInit(t *testing.T) {
	log := logger.New(logrus.DebugLevel)
	path := filepath.Join(t.TempDir(), "conf_surgeon.yaml")

	// Test creation of the default config
	_, isNewCfg, err := Init(log, path)
	assert.NoError(t, err, "should not return error")
	assert.True(t, isNewCfg, "should return true")

	written, err := os.ReadFile(path)
	assert.NoError(t, err, "should write the default config file")
	assert.Exactly(t, string(defCfgBytes), string(written), "should write the embedded default as is")

	// Test reading of the default config
	actual, isNewCfg, err := Init(log, path)
	assert.NoError(t, err, "should not return error")
	assert.False(t, isNewCfg, "should return false")
	assert.Exactly(t, NewDefCfg(), actual, "should return default config")
}

func TestInitUpgrades(t *testing.T) {
	log := logger.New(logrus.DebugLevel)
	path := filepath.Join(t.TempDir(), "conf_surgeon.yaml")
	old := "general:\n" +
		"  max_conns: 2\n" +
		"  resp_timeout: 5s\n" +
		"# user comment\n" +
		"output:\n" +
		"  make_backup: false\n" +
		"  backup_suffix_length: 3\n"
	assert.NoError(t, os.WriteFile(path, []byte(old), 0644), "should write the old config")

	cfg, isNewCfg, err := Init(log, path)
	assert.NoError(t, err, "should not return error")
	assert.False(t, isNewCfg, "should return false")
	assert.Exactly(t, 2, cfg.General.MaxConns, "should keep the user setting")
	assert.False(t, cfg.Output.MakeBackup, "should keep the user setting")
	assert.False(t, cfg.Output.ShowDiff, "should fill the added field with it's default")
	assert.True(t, cfg.Output.FinalNewline, "should fill the added field with it's default")

	upgraded, err := os.ReadFile(path)
	assert.NoError(t, err, "should read the upgraded config")
	expected := "general:\n" +
		"  max_conns: 2\n" +
		"  resp_timeout: 5s\n" +
		"# user comment\n" +
		"output:\n" +
		"  make_backup: false\n" +
		"  backup_suffix_length: 3\n" +
		"  show_diff: false\n" +
		"  final_newline: true\n"
	assert.Exactly(t, expected, string(upgraded), "should insert missing fields keeping the user comment")

	// A second run should leave the upgraded file untouched
	_, _, err = Init(log, path)
	assert.NoError(t, err, "should not return error")
	unchanged, err := os.ReadFile(path)
	assert.NoError(t, err, "should read the config")
	assert.Exactly(t, expected, string(unchanged), "should not rewrite an up to date config")
}

func TestInitDamaged(t *testing.T) {
	log := logger.New(logrus.DebugLevel)
	path := filepath.Join(t.TempDir(), "conf_surgeon.yaml")
	damaged := "output:\n" +
		"  make_backup: true\n"
	assert.NoError(t, os.WriteFile(path, []byte(damaged), 0644), "should write the damaged config")

	_, _, err := Init(log, path)
	cfgErr := DamagedConfigError{}
	assert.True(t, errors.As(err, &cfgErr), "should return this error")
	assert.Contains(t, cfgErr.MissingFields, "general.max_conns", "should name the missing fields")
}

func TestInitUnknownField(t *testing.T) {
	log := logger.New(logrus.DebugLevel)
	path := filepath.Join(t.TempDir(), "conf_surgeon.yaml")
	extra := "general:\n" +
		"  max_conns: 2\n" +
		"  resp_timeout: 5s\n" +
		"  what_is_this: 1\n" +
		"output:\n" +
		"  make_backup: true\n" +
		"  backup_suffix_length: 6\n" +
		"  show_diff: false\n" +
		"  final_newline: true\n"
	assert.NoError(t, os.WriteFile(path, []byte(extra), 0644), "should write the config")

	_, _, err := Init(log, path)
	assert.Error(t, err, "should reject unknown fields")
}
