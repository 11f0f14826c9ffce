// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package prefix

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	detecterrors "github.com/jaroslavh/Nemea-Modules/internal/errors"
	"github.com/jaroslavh/Nemea-Modules/internal/ipaddr"
)

// LoadFile reads a prefix file (one "<address>/<length>" per line) and
// splits it into per-family entry lists. Lines whose address fails to
// parse are silently skipped, matching the original loader's leniency;
// length is parsed with base 0 so a hex/octal netmask literal is
// accepted, though decimal is what operators actually write. A length
// field that fails to parse defaults to 0 rather than dropping the
// line, matching strtoul's behavior in the original C loader this is
// ported from.
func LoadFile(path string) (v4, v6 []Entry, err error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, nil, detecterrors.Wrap(openErr, detecterrors.KindValidation, "unable to open prefix file")
	}
	defer f.Close()
	return Load(f)
}

// Load parses the prefix-file grammar from r.
func Load(r io.Reader) (v4, v6 []Entry, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		idx := strings.IndexByte(line, '/')
		if idx < 0 {
			continue
		}
		rawLen := strings.TrimSpace(line[idx+1:])

		addr, ok := ipaddr.Parse(line[:idx])
		if !ok {
			continue
		}

		length, convErr := strconv.ParseUint(rawLen, 0, 32)
		if convErr != nil {
			length = 0
		}

		entry := Entry{Addr: addr, Length: int(length)}
		if addr.Family() == ipaddr.V4 {
			v4 = append(v4, entry)
		} else {
			v6 = append(v6, entry)
		}
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return nil, nil, detecterrors.Wrap(scanErr, detecterrors.KindInternal, "failed reading prefix file")
	}
	return v4, v6, nil
}
