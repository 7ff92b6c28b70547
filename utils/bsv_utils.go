package utils

import (
	"bufio"
	"io"
	"os"
	"path"
	"strings"

	"matscholar.com/ner/logger"
)

type GetHashFunc func(columns []string) uint64

// NewBSVReader streams the rows of a bar-separated resource file, skipping
// comments and duplicate rows (identity given by getHash).
func NewBSVReader(bsvPath string, getHash GetHashFunc) (<-chan []string, error) {
	_, fileName := path.Split(bsvPath)
	bsvLogger := logger.NewLogger("BSVReader (" + fileName + ")")

	f, err := os.Open(bsvPath)
	if err != nil {
		return nil, err
	}

	out := make(chan []string)

	go func() {
		defer f.Close()
		defer close(out)

		r := bufio.NewReader(f)

		// to remove duplicates
		var hashes = make(map[uint64]bool)

		for {
			line, err := r.ReadString('\n')
			if len(line) == 0 {
				if err == io.EOF {
					break
				} else if err != nil {
					bsvLogger.Error().Err(err).Msg("Failed to read BSV file")
					return
				}
			}

			if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
				continue
			}
			line = strings.Trim(line, "\n")
			columns := strings.Split(line, "|")

			hash := getHash(columns)

			_, ok := hashes[hash]
			if !ok {
				hashes[hash] = true

				out <- columns
			}
		}
	}()

	return out, nil
}

// ReadLines reads a whole vocabulary file, one entry per line, preserving
// line order (entry index is the model's id for that entry).
func ReadLines(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
