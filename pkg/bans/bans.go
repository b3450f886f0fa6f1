// Package bans implements the startup-only ban list: one address and
// its reason per line, loaded once at startup; IsBanned answers lookups,
// and the server does not call it when a player connects. Grounded on
// original_source/Server/Components/LegacyConfig/config_main.cpp's
// samp.ban reader (`BanEntry(line.substr(0, first), "", line.substr(first
// + 1))`, splitting each line at its first space into address and
// reason).
package bans

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Entry is one banned address and its recorded reason.
type Entry struct {
	Address string
	Reason  string
}

// List is the set of banned addresses, read once at startup. It is not
// safe to mutate after Load returns; bans are not persisted or altered
// at runtime (spec.md §6 "Persisted state").
type List struct {
	entries map[string]Entry
}

// Load reads path in the samp.ban line format ("<address> <reason...>",
// one entry per line). A missing file is not an error: it is treated as
// an empty ban list, matching the original's `bans.good()` guard.
func Load(path string, logger *logrus.Entry) (*List, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return &List{entries: make(map[string]Entry)}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parse(f, logger)
}

func parse(r io.Reader, logger *logrus.Entry) (*List, error) {
	l := &List{entries: make(map[string]Entry)}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		i := strings.IndexByte(line, ' ')
		if i < 0 {
			if logger != nil {
				logger.WithField("line", line).Warn("ban list: malformed line, skipping")
			}
			continue
		}
		address, reason := line[:i], line[i+1:]
		l.entries[address] = Entry{Address: address, Reason: reason}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

// IsBanned reports whether address is on the list, and its recorded
// reason if so.
func (l *List) IsBanned(address string) (Entry, bool) {
	e, ok := l.entries[address]
	return e, ok
}

// Count returns the number of loaded ban entries.
func (l *List) Count() int { return len(l.entries) }
