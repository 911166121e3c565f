package store

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// FormatVector renders v as one line: shortest round-trip decimal
// representation of each component, separated by single spaces,
// newline-terminated.
func FormatVector(v []float64) string {
	var b strings.Builder
	for i, x := range v {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	b.WriteByte('\n')
	return b.String()
}

// WriteVectors writes every vector of set as a line.
func WriteVectors(w io.Writer, set [][]float64) error {
	bw := bufio.NewWriter(w)
	for _, v := range set {
		if _, err := bw.WriteString(FormatVector(v)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadVectors parses whitespace-separated vectors, one per line. Blank lines
// are skipped; every non-blank line must have the same number of finite
// components.
func ReadVectors(r io.Reader) ([][]float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var out [][]float64
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		v := make([]float64, len(fields))
		for i, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid number %q: %w", lineNo, f, err)
			}
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("line %d: non-finite component %d: %s", lineNo, i+1, f)
			}
			v[i] = x
		}
		if len(out) > 0 && len(v) != len(out[0]) {
			return nil, fmt.Errorf("line %d: expected %d components, got %d", lineNo, len(out[0]), len(v))
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vectors: %w", err)
	}
	return out, nil
}

// LoadVectors reads a vector file from disk.
func LoadVectors(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	set, err := ReadVectors(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}
