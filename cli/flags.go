package cli

import (
	"github.com/cockroachdb/errors"
	goFlags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

// Flags represents command line flags
type Flags struct {
	Version        bool         `short:"v" long:"version"        description:"Print the program version"`
	LogLevel       logrus.Level `short:"l" long:"logLevel"       description:"Logging level. Can be from 0 (least verbose) to 6 (most verbose)"`
	ProgramCfgPath string       `short:"c" long:"programCfgPath" description:"Program config file path to read from or initialize a default"`
	Inputs         []string     `short:"f" long:"file"           description:"Document to edit. Can be a local file or URL. Repeatable"`
	Output         string       `short:"o" long:"output"         description:"Output file path. Defaults to rewriting the input file in place"`
	Format         string       `long:"format"                   description:"Force document format (json, jsonc or yaml) instead of auto-detection"`
	SchemaPath     string       `long:"schema"                   description:"JSON schema file used to position newly added keys"`
	Sets           []string     `short:"s" long:"set"            description:"Set value, formatted as path=value. Value is parsed as JSON with plain string fallback. Repeatable"`
	Deletes        []string     `short:"d" long:"delete"         description:"Delete value at path. Repeatable"`
	Moves          []string     `short:"m" long:"move"           description:"Move list element, formatted as path:from:to. Repeatable"`
	Diff           bool         `long:"diff"                     description:"Print changed lines of every edited document"`
	DryRun         bool         `short:"n" long:"dryRun"         description:"Do not write anything, only show what would change"`
}

// Parse returns a structure initialized with command line arguments and error if parsing failed
func Parse() (Flags, error) {
	flags := Flags{
		// Set defaults
		LogLevel:       logrus.InfoLevel,
		ProgramCfgPath: "conf_surgeon.yaml",
	}
	parser := goFlags.NewParser(&flags, goFlags.Options(goFlags.Default))
	_, err := parser.Parse()
	return flags, errors.Wrap(err, "Parse CLI arguments")
}

// IsErrOfType returns true if <err> is of type <t>
func IsErrOfType(err error, t goFlags.ErrorType) bool {
	goFlagsErr := &goFlags.Error{}
	if ok := errors.As(err, &goFlagsErr); ok && goFlagsErr.Type == t {
		return true
	}
	return false
}
