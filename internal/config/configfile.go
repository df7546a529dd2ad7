package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileSettings is the parsed NAME=VALUE pairs from a .xgrep config file
//, in file order. Applying them onto a
// Config is the CLI layer's job (cmd/xgrep); this package only parses.
type FileSettings struct {
	Pairs []Pair
}

type Pair struct {
	Name, Value string
}

// LoadFile reads and parses a single config file: "#" comments, blank lines
// ignored, "config=FILE" chains to another file with no recursion — a
// chained file's own "config=" directive is ignored.
func LoadFile(path string) (*FileSettings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseFile(f, true)
}

// loadFileNoChain opens path and parses it with chaining disabled, so a
// chained file's own "config=" directive is ignored rather than followed.
func loadFileNoChain(path string) (*FileSettings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseFile(f, false)
}

func parseFile(r io.Reader, allowChain bool) (*FileSettings, error) {
	out := &FileSettings{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			name, value = line, ""
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		if name == "config" && allowChain {
			chained, err := loadFileNoChain(value)
			if err != nil {
				return nil, fmt.Errorf("config=%s: %w", value, err)
			}
			out.Pairs = append(out.Pairs, chained.Pairs...)
			continue
		}
		out.Pairs = append(out.Pairs, Pair{Name: name, Value: value})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Locate implements the search order for the `ug` personality's default
// config: ".xgrep" in CWD, then in HOME.
func Locate() (string, bool) {
	if _, err := os.Stat(".xgrep"); err == nil {
		return ".xgrep", true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	p := home + string(os.PathSeparator) + ".xgrep"
	if _, err := os.Stat(p); err == nil {
		return p, true
	}
	return "", false
}
