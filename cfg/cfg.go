package cfg

import (
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf"
	koanfYAML "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"conf_surgeon/doc"
	"conf_surgeon/format"
	"conf_surgeon/value"
)

//go:embed default.yaml
var defCfgBytes []byte

// Root represents root settings of the program
type Root struct {
	General General `koanf:"general"`
	Output  Output  `koanf:"output"`
}

// General represents general settings of the program
type General struct {
	// MaxConns represents maximum amount of documents to process simultaneously
	MaxConns int `koanf:"max_conns"`

	// RespTimeout represents remote document URL response timeout
	RespTimeout time.Duration `koanf:"resp_timeout"`
}

// Output represents settings related to writing edited documents
type Output struct {
	// MakeBackup specifies if the original file should be copied aside before overwriting it
	MakeBackup bool `koanf:"make_backup"`

	// BackupSuffixLength represents amount of random characters in the backup file name suffix
	BackupSuffixLength uint `koanf:"backup_suffix_length"`

	// ShowDiff specifies if changed lines of every edited document should be printed
	ShowDiff bool `koanf:"show_diff"`

	// FinalNewline specifies if edited documents should always end with a newline
	FinalNewline bool `koanf:"final_newline"`
}

// NewDefCfg returns default program config
func NewDefCfg() Root {
	return Root{
		General: General{
			MaxConns:    4,
			RespTimeout: time.Second * 10,
		},
		Output: Output{
			MakeBackup:         true,
			BackupSuffixLength: 6,
			ShowDiff:           false,
			FinalNewline:       true,
		},
	}
}

// Schema returns JSON-Schema-like tree of the program config, consulted for the position of keys added by config
// upgrades
func Schema() value.Value {
	props := func(fields ...value.Field) value.Value {
		return value.Map{{Key: "properties", Value: value.Map(fields)}}
	}
	return props(
		value.Field{Key: "general", Value: props(
			value.Field{Key: "max_conns", Value: value.Map{}},
			value.Field{Key: "resp_timeout", Value: value.Map{}},
		)},
		value.Field{Key: "output", Value: props(
			value.Field{Key: "make_backup", Value: value.Map{}},
			value.Field{Key: "backup_suffix_length", Value: value.Map{}},
			value.Field{Key: "show_diff", Value: value.Map{}},
			value.Field{Key: "final_newline", Value: value.Map{}},
		)},
	)
}

// DamagedConfigError represents error thrown if program config is missing unexpected fields
type DamagedConfigError struct {
	MissingFields []string
}

// Error is used to satisfy golang error interface
func (e DamagedConfigError) Error() string {
	msg := "Existing program config is missing unexpected fields. Create new config or add missing fields manually"
	return fmt.Sprintf("%v: %v", msg, strings.Join(e.MissingFields, ", "))
}

// Init returns config instance and false if config at <cfgFilePath> already exist.
//
// If config does not exist, creates a default, returns empty instance and true.
//
// Fields introduced after the config file was written are inserted into it in place, through the comment-preserving
// patcher, so user comments in the file survive the upgrade.
func Init(log *logrus.Logger, cfgFilePath string) (Root, bool, error) {
	log.Info("Reading program config")

	ko := koanf.New(".")

	// Load config file into koanf or create a new if not exist
	var root Root
	if err := ko.Load(file.Provider(cfgFilePath), koanfYAML.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("Config file not found, creating a default")
			if err := os.WriteFile(cfgFilePath, defCfgBytes, 0644); err != nil {
				return root, false, errors.Wrap(err, "Write default config")
			}
			return root, true, nil
		}
		return root, false, errors.Wrap(err, "Load config")
	}

	// Decode loaded config file into structure
	metadata := mapstructure.Metadata{}
	err := ko.UnmarshalWithConf("", &root, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			ErrorUnused:          true,
			IgnoreUntaggedFields: true,
			Metadata:             &metadata,
			Result:               &root,
			WeaklyTypedInput:     true,
			ZeroFields:           true,
		},
	})
	if err != nil {
		return root, false, errors.Wrap(err, "Decode config")
	}

	// Check if config is damaged (there are more missing fields than was added since v1.0.0)
	knownFields := []string{
		/* 0 */ "output.show_diff",
		/* 1 */ "output.final_newline",
	}
	missingFields, _ := lo.Difference(metadata.Unset, knownFields)
	if len(missingFields) > 0 {
		err := DamagedConfigError{MissingFields: missingFields}
		return root, false, errors.Wrap(err, "Check config")
	}

	// Add missing known fields through the document model so comments in the existing config survive
	cfgBytes, err := os.ReadFile(cfgFilePath)
	if err != nil {
		return root, false, errors.Wrap(err, "Read config")
	}
	defCfg := NewDefCfg()
	cfgDoc := doc.Deserialize(log, string(cfgBytes), format.YAML, Schema())
	upgraded := false

	// v1.0.0 to v1.1.0
	knownField := knownFields[0]
	if lo.Contains(metadata.Unset, knownField) {
		defVal := defCfg.Output.ShowDiff
		log.Infof("Adding missing field to config: %v: %v", knownField, defVal)
		cfgDoc.SetValue(value.ParsePath(knownField), value.Bool(defVal))
		root.Output.ShowDiff = defVal
		upgraded = true
	}
	// v1.1.0 to v1.2.0
	knownField = knownFields[1]
	if lo.Contains(metadata.Unset, knownField) {
		defVal := defCfg.Output.FinalNewline
		log.Infof("Adding missing field to config: %v: %v", knownField, defVal)
		cfgDoc.SetValue(value.ParsePath(knownField), value.Bool(defVal))
		root.Output.FinalNewline = defVal
		upgraded = true
	}

	if upgraded {
		if err = os.WriteFile(cfgFilePath, []byte(cfgDoc.Serialize()), 0644); err != nil {
			return root, false, errors.Wrap(err, "Write upgraded config")
		}
	}

	return root, false, nil
}
