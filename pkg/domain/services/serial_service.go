package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vsinha/picklist/pkg/domain/entities"
)

// SerialComparator orders serial numbers naturally, so SN9 comes before SN10
type SerialComparator struct {
	serialPattern *regexp.Regexp
}

// NewSerialComparator creates a new serial comparator with the default pattern
func NewSerialComparator() *SerialComparator {
	// Pattern matches serials like SN001, LAP-0042, etc.
	pattern := regexp.MustCompile(`^([A-Za-z-]*)(\d+)$`)
	return &SerialComparator{
		serialPattern: pattern,
	}
}

// CompareSerials compares two serial numbers with numeric sorting
// Returns: -1 if serial1 < serial2, 0 if equal, 1 if serial1 > serial2
func (sc *SerialComparator) CompareSerials(serial1, serial2 string) int {
	if serial1 == serial2 {
		return 0
	}

	prefix1, num1, err1 := sc.parseSerial(serial1)
	prefix2, num2, err2 := sc.parseSerial(serial2)

	// If either parsing fails, fall back to string comparison
	if err1 != nil || err2 != nil {
		return strings.Compare(serial1, serial2)
	}

	if prefix1 != prefix2 {
		return strings.Compare(prefix1, prefix2)
	}

	if num1 < num2 {
		return -1
	} else if num1 > num2 {
		return 1
	}
	// SN01 and SN1 carry the same number; keep the order total
	return strings.Compare(serial1, serial2)
}

// parseSerial extracts the prefix and numeric portion from a serial number
func (sc *SerialComparator) parseSerial(serial string) (string, uint64, error) {
	matches := sc.serialPattern.FindStringSubmatch(serial)
	if len(matches) != 3 {
		return "", 0, fmt.Errorf("invalid serial format: %s", serial)
	}

	num, err := strconv.ParseUint(matches[2], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid numeric portion in serial %s: %v", serial, err)
	}

	return matches[1], num, nil
}

// SortByAcquisition orders serial records oldest first, breaking ties on the serial number
func (sc *SerialComparator) SortByAcquisition(serials []entities.SerialRecord) {
	sort.SliceStable(serials, func(i, j int) bool {
		a, b := serials[i], serials[j]
		if !a.AcquiredAt.Equal(b.AcquiredAt) {
			return a.AcquiredAt.Before(b.AcquiredAt)
		}
		return sc.CompareSerials(a.SerialID, b.SerialID) < 0
	})
}
