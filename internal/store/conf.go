package store

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gsweb/internal/models"
)

// confFields is the number of whitespace separated fields in one profile
// line: start - end gi mcs fecK fecN bitrate gop pwr roiQP bandwidth qpDelta.
const confFields = 13

// ConfStore keeps profiles in the air unit's native txprofiles.conf format.
type ConfStore struct {
	path string
}

// NewConfStore creates a store backed by the file at path.
func NewConfStore(path string) *ConfStore {
	return &ConfStore{path: path}
}

// Load reads the profile file. A missing file is an empty table.
func (s *ConfStore) Load(ctx context.Context) ([]models.TxProfile, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.TxProfile{}, nil
		}
		return nil, fmt.Errorf("failed to open profiles %s: %w", s.path, err)
	}
	defer f.Close()

	return ParseConf(f)
}

// Save overwrites the profile file. Comments in the previous file are not kept.
func (s *ConfStore) Save(ctx context.Context, profiles []models.TxProfile) error {
	var buf bytes.Buffer
	if err := WriteConf(&buf, profiles); err != nil {
		return err
	}
	return writeFileAtomic(s.path, buf.Bytes())
}

// Close is a no-op.
func (s *ConfStore) Close() error { return nil }

// ParseConf decodes txprofiles.conf content. Blank lines, comments and lines
// with too few fields are skipped; unparsable numbers read as zero.
func ParseConf(r io.Reader) ([]models.TxProfile, error) {
	profiles := []models.TxProfile{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < confFields {
			continue
		}

		// fields[1] is the "-" separator.
		profiles = append(profiles, models.TxProfile{
			RangeStart: atoi(fields[0]),
			RangeEnd:   atoi(fields[2]),
			GI:         fields[3],
			MCS:        atoi(fields[4]),
			FecK:       atoi(fields[5]),
			FecN:       atoi(fields[6]),
			Bitrate:    atoi(fields[7]),
			Gop:        atoi(fields[8]),
			Pwr:        atoi(fields[9]),
			RoiQP:      fields[10],
			Bandwidth:  atoi(fields[11]),
			QpDelta:    atoi(fields[12]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}
	return profiles, nil
}

// WriteConf encodes profiles in txprofiles.conf format, one per line.
func WriteConf(w io.Writer, profiles []models.TxProfile) error {
	bw := bufio.NewWriter(w)
	for _, p := range profiles {
		_, err := fmt.Fprintf(bw, "%d - %d %s %d %d %d %d %d %d %s %d %d\n",
			p.RangeStart, p.RangeEnd, p.GI, p.MCS, p.FecK, p.FecN,
			p.Bitrate, p.Gop, p.Pwr, p.RoiQP, p.Bandwidth, p.QpDelta)
		if err != nil {
			return fmt.Errorf("failed to write profile: %w", err)
		}
	}
	return bw.Flush()
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
