package dataset

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/bindwell/affinity/internal/infrastructure/monitoring/logging"
	errs "github.com/bindwell/affinity/pkg/errors"
)

// fieldsPerLine is the fixed column count of an affinity file: drug id,
// protein id, SMILES, amino-acid sequence, affinity.
const fieldsPerLine = 5

// maxLineBytes bounds a single input line.  Protein sequences run to a few
// thousand characters; 1 MiB leaves ample headroom.
const maxLineBytes = 1 << 20

// Loader reads whitespace-delimited affinity files into raw samples.
type Loader struct {
	logger logging.Logger
}

// NewLoader constructs a Loader.  A nil logger is replaced with a no-op one.
func NewLoader(logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Loader{logger: logger.Named("loader")}
}

// Load reads every line of the file at path into a RawSample.  There is no
// header row; blank lines are skipped.  A line with the wrong field count or
// a non-numeric affinity fails the whole load with a line-numbered error, as
// does an input that yields no samples at all.
func (l *Loader) Load(ctx context.Context, path string) ([]RawSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, errs.ErrCodeDatasetOpenFailed, "load cancelled")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrCodeDatasetOpenFailed, "failed to open affinity file").
			WithDetail(path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var samples []RawSample
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sample, err := parseLine(line, lineNo)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(err, errs.ErrCodeDatasetOpenFailed, "failed reading affinity file").
			WithDetail(path)
	}

	if len(samples) == 0 {
		return nil, errs.New(errs.ErrCodeDatasetEmpty, "affinity file contains no samples").
			WithDetail(path)
	}

	l.logger.Info("loaded affinity file",
		logging.String("path", path),
		logging.Int("samples", len(samples)),
	)
	return samples, nil
}

// parseLine splits one non-blank line into its five fields.
func parseLine(line string, lineNo int) (RawSample, error) {
	fields := strings.Fields(line)
	if len(fields) != fieldsPerLine {
		return RawSample{}, errs.Newf(errs.ErrCodeDatasetMalformedLine,
			"line %d: expected %d fields, got %d", lineNo, fieldsPerLine, len(fields))
	}

	affinity, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return RawSample{}, errs.Wrap(err, errs.ErrCodeDatasetMalformedLine,
			"invalid affinity value").
			WithDetail("line " + strconv.Itoa(lineNo) + ": " + fields[4])
	}

	return RawSample{
		DrugID:    fields[0],
		ProteinID: fields[1],
		SMILES:    fields[2],
		Sequence:  fields[3],
		Affinity:  affinity,
	}, nil
}
