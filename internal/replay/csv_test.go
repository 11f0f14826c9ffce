// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package replay

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadParsesRecords(t *testing.T) {
	input := "192.0.2.5,203.0.113.1,100,2,0\n203.0.113.1,192.0.2.5,110,4,1\n"

	records, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Timestamp() != 100 {
		t.Fatalf("expected first timestamp 100, got %d", records[0].Timestamp())
	}
	if records[1].DirBitfield != 1 {
		t.Fatalf("expected second record inbound, got dir=%d", records[1].DirBitfield)
	}
}

func TestReadRejectsInvalidAddress(t *testing.T) {
	_, err := Read(strings.NewReader("not-an-ip,203.0.113.1,100,2,0\n"))
	if err == nil {
		t.Fatal("expected an error for an invalid source address")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	input := "192.0.2.5,203.0.113.1,100,2,0\n"
	records, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	roundTripped, err := Read(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("unexpected error re-reading: %v", err)
	}
	if len(roundTripped) != 1 || roundTripped[0].Timestamp() != 100 {
		t.Fatalf("round trip mismatch: %+v", roundTripped)
	}
}
