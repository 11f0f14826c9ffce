// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package replay parses the CSV flow-record capture format consumed
// by cmd/spoofreplay, one line per record: src,dst,first,link,dir.
package replay

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/jaroslavh/Nemea-Modules/internal/detect"
	"github.com/jaroslavh/Nemea-Modules/internal/errors"
	"github.com/jaroslavh/Nemea-Modules/internal/ipaddr"
)

// Read parses every record from r. A malformed line is a fatal error:
// unlike the prefix-file loader, a replay capture is expected to be
// well-formed since it was produced by this same tooling.
func Read(r io.Reader) ([]detect.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5

	var out []detect.Record
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.KindInternal, "failed to read replay CSV")
		}

		rec, err := parseRecord(fields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRecord(fields []string) (detect.Record, error) {
	src, ok := ipaddr.Parse(fields[0])
	if !ok {
		return detect.Record{}, errors.Errorf(errors.KindValidation, "invalid source address %q", fields[0])
	}
	dst, ok := ipaddr.Parse(fields[1])
	if !ok {
		return detect.Record{}, errors.Errorf(errors.KindValidation, "invalid destination address %q", fields[1])
	}
	firstSec, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return detect.Record{}, errors.Wrap(err, errors.KindValidation, "invalid timestamp field")
	}
	link, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return detect.Record{}, errors.Wrap(err, errors.KindValidation, "invalid link bitmask field")
	}
	dir, err := strconv.ParseUint(fields[4], 10, 8)
	if err != nil {
		return detect.Record{}, errors.Wrap(err, errors.KindValidation, "invalid direction field")
	}

	return detect.Record{
		SrcAddr:      src,
		DstAddr:      dst,
		First:        firstSec << 32,
		LinkBitfield: link,
		DirBitfield:  uint8(dir),
	}, nil
}

// Write serializes records in the same format Read consumes.
func Write(w io.Writer, records []detect.Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for _, r := range records {
		fields := []string{
			r.SrcAddr.String(),
			r.DstAddr.String(),
			strconv.FormatUint(uint64(r.Timestamp()), 10),
			strconv.FormatUint(r.LinkBitfield, 10),
			strconv.FormatUint(uint64(r.DirBitfield), 10),
		}
		if err := cw.Write(fields); err != nil {
			return errors.Wrap(err, errors.KindInternal, "failed to write replay CSV")
		}
	}
	return cw.Error()
}
