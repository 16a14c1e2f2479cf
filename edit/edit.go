// Package edit orchestrates reading documents, running path operations on them through the document model and
// writing the results back.
package edit

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"conf_surgeon/cfg"
	"conf_surgeon/cli"
	"conf_surgeon/doc"
	"conf_surgeon/format"
	"conf_surgeon/util/file"
	"conf_surgeon/util/rnd"
	"conf_surgeon/util/tw"
	"conf_surgeon/value"

	"github.com/alitto/pond"
	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sirupsen/logrus"
	"github.com/utahta/go-openuri"
)

// RemoteWriteError represents error thrown if edited remote document has no local output path to land in
type RemoteWriteError struct {
	Source string
}

// Error is used to satisfy golang error interface
func (e RemoteWriteError) Error() string {
	return fmt.Sprintf("Document was read from URL so output file path is required: %v", e.Source)
}

// Repo represents document editing repository
type Repo struct {
	log *logrus.Logger
	tw  tw.Writer
	cfg cfg.Root
}

// NewRepo returns new repository
func NewRepo(log *logrus.Logger, tw tw.Writer, cfg cfg.Root) Repo {
	return Repo{log: log, tw: tw, cfg: cfg}
}

// Log used to satisfy deps.Global interface
func (r Repo) Log() *logrus.Logger {
	return r.log
}

// Cfg used to satisfy deps.Global interface
func (r Repo) Cfg() cfg.Root {
	return r.cfg
}

// result represents outcome of processing one document
type result struct {
	source  string
	format  format.Format
	changed bool
	dryRun  bool
	changes int
	backup  string
	before  string
	after   string
	err     error
}

// ProcessAll edits every input document named by <flags> and renders a result table.
//
// Documents are processed on a worker pool capped by general.max_conns. Returns the first processing error after
// the table is rendered so one broken document does not hide the outcome of the others.
func (r Repo) ProcessAll(flags cli.Flags) error {
	ops, err := ParseOps(flags)
	if err != nil {
		return err
	}
	schemaV, err := r.loadSchema(flags.SchemaPath)
	if err != nil {
		return err
	}
	forced, err := forcedFormat(flags.Format)
	if err != nil {
		return err
	}

	pool := pond.New(r.cfg.General.MaxConns, len(flags.Inputs)+1)
	results := make([]result, len(flags.Inputs))
	for i, source := range flags.Inputs {
		i, source := i, source
		pool.Submit(func() {
			results[i] = r.process(source, forced, schemaV, ops, flags)
		})
	}
	pool.StopAndWait()

	r.tw.AppendHeader(table.Row{"Source", "Format", "Result", "Changes", "Backup", "Note"})
	for _, res := range results {
		r.tw.AppendRow(table.Row{res.source, res.format, resultText(res), res.changes, res.backup, noteText(res)})
	}
	r.tw.Render()

	if flags.Diff || r.cfg.Output.ShowDiff {
		for _, res := range results {
			if res.err == nil && res.changed {
				r.printDiff(res.source, res.before, res.after)
			}
		}
	}

	failed := lo.Filter(results, func(res result, _ int) bool {
		return res.err != nil
	})
	if len(failed) > 0 {
		return failed[0].err
	}
	return nil
}

// Apply runs <ops> on <d> in order
func (r Repo) Apply(d *doc.Document, ops []Op) error {
	for _, op := range ops {
		if err := op.run(r, d); err != nil {
			return err
		}
	}
	return nil
}

// Load returns document read from local file path or URL <source>.
//
// If <forced> is empty, format is detected from the content.
func (r Repo) Load(source string, forced format.Format, schemaV value.Value) (*doc.Document, error) {
	text, err := r.read(source)
	if err != nil {
		return nil, err
	}
	f := forced
	if f == "" {
		f = format.Detect(text)
	}
	return doc.Deserialize(r.log, text, f, schemaV), nil
}

// process edits one document named by <source> and returns the outcome
func (r Repo) process(source string, forced format.Format, schemaV value.Value, ops []Op, flags cli.Flags) result {
	res := result{source: source}

	text, err := r.read(source)
	if err != nil {
		res.err = err
		return res
	}
	f := forced
	if f == "" {
		f = format.Detect(text)
	}
	res.format = f

	d := doc.Deserialize(r.log, text, f, schemaV)
	changes := 0
	unsubscribe := d.Subscribe(func(*doc.Document) {
		changes++
	})
	defer unsubscribe()

	if err = r.Apply(d, ops); err != nil {
		res.err = err
		return res
	}
	res.changes = changes

	after := d.Serialize()
	if r.cfg.Output.FinalNewline && after != "" && !strings.HasSuffix(after, "\n") {
		after += "\n"
	}
	res.before = text
	res.after = after
	res.changed = after != text
	res.dryRun = flags.DryRun
	if !res.changed || flags.DryRun {
		return res
	}

	outPath := flags.Output
	if outPath == "" {
		if isURL(source) {
			res.err = errors.WithStack(RemoteWriteError{Source: source})
			return res
		}
		outPath = source
	}
	if res.backup, res.err = r.backup(outPath); res.err != nil {
		return res
	}
	r.log.Infof("Writing document: %v", outPath)
	res.err = errors.Wrap(os.WriteFile(outPath, []byte(after), 0644), "Write document")
	return res
}

// read returns raw content of local file path or URL <source>
func (r Repo) read(source string) (string, error) {
	r.log.Infof("Reading document: %v", source)

	client := http.Client{Timeout: r.cfg.General.RespTimeout}
	reader, err := openuri.Open(source, openuri.WithHTTPClient(&client))
	if err != nil {
		return "", errors.Wrap(err, "Open document")
	}
	defer reader.Close()

	bytes, err := io.ReadAll(reader)
	if err != nil {
		return "", errors.Wrap(err, "Read document")
	}
	return string(bytes), nil
}

// backup copies existing file at <outPath> aside and returns the backup path, empty if no backup was made
func (r Repo) backup(outPath string) (string, error) {
	if !r.cfg.Output.MakeBackup {
		return "", nil
	}
	if _, err := os.Stat(outPath); err != nil {
		return "", nil
	}
	backupPath := fmt.Sprintf("%v.%v.bak", outPath, rnd.String(r.cfg.Output.BackupSuffixLength, false, true))
	r.log.Infof("Making a backup: %v", backupPath)
	if err := file.Copy(outPath, backupPath); err != nil {
		return "", errors.Wrap(err, "Make backup")
	}
	return backupPath, nil
}

// loadSchema returns schema tree read from <path> or nil if no path was given
func (r Repo) loadSchema(path string) (value.Value, error) {
	if path == "" {
		return nil, nil
	}
	r.log.Infof("Reading schema: %v", path)
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "Read schema")
	}
	text := string(bytes)
	v, err := format.Parse(text, format.Detect(text))
	return v, errors.Wrap(err, "Parse schema")
}

// printDiff prints removed and added lines between <before> and <after>
func (r Repo) printDiff(source, before, after string) {
	lines := diffLines(before, after)
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(color.Output, "Changes in %v:\n", source)
	for _, line := range lines {
		fmt.Fprintln(color.Output, line)
	}
}

// diffLines returns colored removed and added lines between <before> and <after> in source order
func diffLines(before, after string) []string {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, charLines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), charLines)

	var out []string
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			if d.Type == diffmatchpatch.DiffDelete {
				out = append(out, color.RedString("- %v", line))
			} else {
				out = append(out, color.GreenString("+ %v", line))
			}
		}
	}
	return out
}

// forcedFormat returns format forced by the <raw> CLI value or empty format if none was given
func forcedFormat(raw string) (format.Format, error) {
	if raw == "" {
		return "", nil
	}
	f := format.Format(strings.ToLower(raw))
	if f != format.JSON && f != format.JSONC && f != format.YAML {
		return "", errors.WithStack(format.UnknownFormatError{Format: f})
	}
	return f, nil
}

// resultText returns human readable outcome of <res> for the result table
func resultText(res result) string {
	switch {
	case res.err != nil:
		return "Error"
	case !res.changed:
		return "Unchanged"
	case res.dryRun:
		return "Would edit"
	default:
		return "Edited"
	}
}

// noteText returns explanatory note of <res> for the result table
func noteText(res result) string {
	if res.err != nil {
		return res.err.Error()
	}
	if res.changed && res.dryRun {
		return "Dry run, nothing written"
	}
	return ""
}

// isURL returns true if <source> points at a remote document
func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
