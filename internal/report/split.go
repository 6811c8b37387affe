package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Splitter states. The document opens with a preamble delimited by two
// "---" lines, then alternates "## name" headings and license blocks.
const (
	splitPreamble0 = iota
	splitPreamble1
	splitBetween
	splitIn
)

// SplitNotice breaks a monolithic NOTICE document into individual files
// under outDir, one per dependency, for easier diffing. The preamble goes
// to preamble.txt; each "## name" section goes to <name>.txt, keyed by the
// short name.
func SplitNotice(r io.Reader, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	out, err := os.Create(filepath.Join(outDir, "preamble.txt"))
	if err != nil {
		return err
	}
	closeOut := func() error {
		if out == nil {
			return nil
		}
		err := out.Close()
		out = nil
		return err
	}
	defer closeOut()

	state := splitPreamble0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		switch state {
		case splitPreamble0:
			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}
			if strings.HasPrefix(line, "---") {
				state = splitPreamble1
			}

		case splitPreamble1:
			if strings.HasPrefix(line, "---") {
				if err := closeOut(); err != nil {
					return err
				}
				state = splitBetween
				continue
			}
			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}

		case splitBetween:
			if !strings.HasPrefix(line, "## ") {
				continue
			}
			name := strings.TrimSpace(line[3:])
			if strings.Contains(name, "/") {
				name = strings.Split(name, "/")[1]
			}
			if err := closeOut(); err != nil {
				return err
			}
			out, err = os.Create(filepath.Join(outDir, name+".txt"))
			if err != nil {
				return err
			}
			state = splitIn

		case splitIn:
			if line == "---" || line == "----" || line == "-----" {
				if err := closeOut(); err != nil {
					return err
				}
				state = splitBetween
				continue
			}
			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return closeOut()
}
