package rule

import (
	"fmt"
	"time"
)

// parsePeriod parses a ISO8601 period like P1M, P2W, PT6H or P1DT12H into a
// duration. Calendar units are fixed-length: a month is 30 days, a year 365.
func parsePeriod(value string) (time.Duration, error) {
	if len(value) < 2 || value[0] != 'P' {
		return 0, fmt.Errorf("invalid period %s", value)
	}

	var total time.Duration
	num := 0
	hasNum := false
	inTime := false

	for _, c := range value[1:] {
		switch {
		case c >= '0' && c <= '9':
			num = num*10 + int(c-'0')
			hasNum = true
		case c == 'T':
			if inTime {
				return 0, fmt.Errorf("invalid period %s", value)
			}
			inTime = true
		default:
			if !hasNum {
				return 0, fmt.Errorf("invalid period %s", value)
			}

			var unit time.Duration
			switch c {
			case 'Y':
				unit = 365 * 24 * time.Hour
			case 'W':
				unit = 7 * 24 * time.Hour
			case 'D':
				unit = 24 * time.Hour
			case 'M':
				if inTime {
					unit = time.Minute
				} else {
					unit = 30 * 24 * time.Hour
				}
			case 'H':
				if !inTime {
					return 0, fmt.Errorf("invalid period %s", value)
				}
				unit = time.Hour
			case 'S':
				if !inTime {
					return 0, fmt.Errorf("invalid period %s", value)
				}
				unit = time.Second
			default:
				return 0, fmt.Errorf("invalid period %s", value)
			}

			total += time.Duration(num) * unit
			num = 0
			hasNum = false
		}
	}

	if hasNum || total == 0 {
		return 0, fmt.Errorf("invalid period %s", value)
	}

	return total, nil
}
