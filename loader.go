package megasena

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// DrawColumns is the count of leading columns read from every row:
// contest number, date and the six drawn numbers. Extra columns are ignored.
const DrawColumns = 2 + NumbersPerDraw

var drawDateLayouts = []string{"02/01/2006", "2006-01-02"}

func parseDrawDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range drawDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// detectDelimiter picks ';' when the first line uses it, ',' otherwise
func detectDelimiter(head []byte) rune {
	line, _, _ := bytes.Cut(head, []byte("\n"))
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// LoadHistoryCSV reads a results sheet exported as CSV. Rows whose date
// column does not parse, the header included, are skipped. A row with a
// valid date but unreadable numbers makes the whole file corrupt.
func LoadHistoryCSV(r io.Reader) (*DrawHistory, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, ErrDatasetLoadFailure.WithCause(err)
	}

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(head)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var draws []Draw
	skipped := 0
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ErrDatasetCorrupted.WithDetailsf("line %d", line).WithCause(err)
		}
		if len(record) < DrawColumns {
			skipped++
			continue
		}

		date, ok := parseDrawDate(record[1])
		if !ok {
			skipped++
			continue
		}

		draw, err := parseDrawRecord(record[:DrawColumns], date)
		if err != nil {
			return nil, ErrDatasetCorrupted.WithDetailsf("line %d: %v", line, err)
		}
		draws = append(draws, draw)
	}

	if len(draws) == 0 {
		return nil, ErrDatasetCorrupted.WithDetailsf("no draws found, %d rows skipped", skipped)
	}

	history, err := NewDrawHistory(draws)
	if err != nil {
		return nil, ErrDatasetCorrupted.WithDetails("draws failed validation").WithCause(err)
	}
	return history, nil
}

func parseDrawRecord(record []string, date time.Time) (Draw, error) {
	number, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return Draw{}, err
	}

	draw := Draw{Number: number, Date: date}
	for i := range NumbersPerDraw {
		n, err := strconv.Atoi(strings.TrimSpace(record[2+i]))
		if err != nil {
			return Draw{}, err
		}
		draw.Numbers[i] = n
	}
	return draw, nil
}

// LoadHistoryFile opens path and parses it with LoadHistoryCSV. A missing
// file yields ErrDatasetNotFound.
func LoadHistoryFile(path string) (*DrawHistory, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrDatasetNotFound.WithDetails(path)
		}
		return nil, ErrDatasetLoadFailure.WithDetails(path).WithCause(err)
	}
	defer f.Close()

	return LoadHistoryCSV(f)
}
