// Package pricefile reads daily price series from CSV files of the form
//
//	date,price
//	2024-01-02,10.4312
//
// A header row is optional. Dates may be ISO (2006-01-02) or European
// (02/01/2006); a comma decimal separator is accepted when the field is quoted.
package pricefile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"pprbitcoin/types"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrMalformed = errors.New("malformed price file")

var dateLayouts = []string{time.DateOnly, "02/01/2006", "2006/01/02"}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) ([]types.PricePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	points, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

// Read parses a price CSV and returns its points sorted by date. Empty files,
// unparsable rows and repeated dates are rejected with ErrMalformed.
func Read(r io.Reader) ([]types.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var points []types.PricePoint
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		line++
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: line %d has %d fields, want 2", ErrMalformed, line, len(record))
		}

		date, dateErr := parseDate(record[0])
		if dateErr != nil && line == 1 {
			// header
			continue
		}
		if dateErr != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, dateErr)
		}
		price, err := parsePrice(record[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		points = append(points, types.PricePoint{Date: date, Price: price})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no price rows", ErrMalformed)
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	for i := 1; i < len(points); i++ {
		if points[i].Date.Equal(points[i-1].Date) {
			return nil, fmt.Errorf("%w: duplicate date %s", ErrMalformed, points[i].Date.Format(time.DateOnly))
		}
	}
	return points, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return types.CalendarDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", s)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative price %s", price)
	}
	return price, nil
}
