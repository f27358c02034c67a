package precompute

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

var (
	ErrNoSuchFile   = errors.New("rainbow: no such range file")
	ErrBadSeparator = errors.New("rainbow: separator must be exactly one byte")
)

// ParseSeparator converts a separator flag value into the delimiter rune for range files.
func ParseSeparator(sep string) (rune, error) {
	if len(sep) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrBadSeparator, sep)
	}
	return rune(sep[0]), nil
}

// LoadRangeFile reads range rows from a delimited text file without header.
//
// Columns are positional. Rows with three fields are read as prefix, start, end and rows with
// two as start, end with a zero prefix. Trailing empty fields are ignored; an empty field
// before the last one is an error. Rows with any other field count are logged and skipped.
// globalPrefix is applied to every range of the file.
func LoadRangeFile(filename string, sep rune, globalPrefix int64, logger *slog.Logger) ([]Range, error) {
	f, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoSuchFile, filename)
		}
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer f.Close()

	rdr := csv.NewReader(f)
	rdr.Comma = sep
	rdr.FieldsPerRecord = -1
	rdr.TrimLeadingSpace = true
	rdr.ReuseRecord = true

	var ranges []Range
	for {
		record, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading file %s: %w", filename, err)
		}
		line, _ := rdr.FieldPos(0)

		fields := trimFields(record)
		if len(fields) < 2 || len(fields) > 3 {
			logger.Warn("range row must have 2 or 3 fields, skipping",
				"file", filename, "line", line, "row", strings.Join(record, string(sep)))
			continue
		}

		nums := make([]int64, len(fields))
		for i, field := range fields {
			if field == "" {
				return nil, fmt.Errorf("%s:%d: column %d is empty", filename, line, i+1)
			}
			n, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: field %q: %w", filename, line, field, err)
			}
			nums[i] = n
		}

		r := Range{GlobalPrefix: globalPrefix}
		if len(nums) == 3 {
			r.Prefix, r.Start, r.End = nums[0], nums[1], nums[2]
		} else {
			r.Start, r.End = nums[0], nums[1]
		}
		ranges = append(ranges, r)
	}

	return ranges, nil
}

// trimFields trims every field and drops empty ones from the end of the row only, so the
// remaining fields keep their column positions.
func trimFields(record []string) []string {
	fields := make([]string, len(record))
	for i, field := range record {
		fields[i] = strings.TrimSpace(field)
	}
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

// LoadRangeFiles reads several range files in parallel and concatenates their ranges in the
// order the files were given. The first error aborts the load.
func LoadRangeFiles(filenames []string, sep rune, globalPrefix int64, logger *slog.Logger) ([]Range, error) {
	perFile := make([][]Range, len(filenames))

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i, filename := range filenames {
		eg.Go(func() error {
			ranges, err := LoadRangeFile(filename, sep, globalPrefix, logger)
			if err != nil {
				return err
			}
			perFile[i] = ranges
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []Range
	for _, ranges := range perFile {
		all = append(all, ranges...)
	}
	return all, nil
}
