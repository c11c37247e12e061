package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RotationKind identifies the file-sink rotation policy (§3 "Rotation
// policy: Never | SizeThreshold(bytes) | Daily | Hourly").
type RotationKind uint8

const (
	RotationNever RotationKind = iota
	RotationSize
	RotationDaily
	RotationHourly
)

// RotationPolicy is the parsed form of the §6 "rotation" option.
type RotationPolicy struct {
	Kind      RotationKind
	SizeBytes int64
}

// RetentionKind identifies the file-sink retention policy (§3 "Retention
// policy: None | ByCount(n) | ByAge(duration)").
type RetentionKind uint8

const (
	RetentionNone RetentionKind = iota
	RetentionByCount
	RetentionByAge
)

// RetentionPolicy is the parsed form of the §6 "retention" option.
type RetentionPolicy struct {
	Kind  RetentionKind
	Count int
	Age   time.Duration
}

// ParseRotationSpec parses the §6 rotation option: "<N> <unit>" with unit
// in {B, KB, MB, GB} for size-based rotation, or the literal strings
// "daily"/"hourly" for time-based rotation (case-insensitive).
func ParseRotationSpec(spec string) (RotationPolicy, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return RotationPolicy{Kind: RotationNever}, nil
	}
	lower := strings.ToLower(spec)
	switch lower {
	case "daily":
		return RotationPolicy{Kind: RotationDaily}, nil
	case "hourly":
		return RotationPolicy{Kind: RotationHourly}, nil
	case "never":
		return RotationPolicy{Kind: RotationNever}, nil
	}

	size, err := ParseSize(spec)
	if err != nil {
		return RotationPolicy{}, fmt.Errorf("invalid rotation spec %q: %w", spec, err)
	}
	return RotationPolicy{Kind: RotationSize, SizeBytes: size}, nil
}

// ParseSize parses a "<N> <unit>" byte-size spec, unit in {B, KB, MB, GB}
// (case-insensitive, unit may be glued to the number).
func ParseSize(spec string) (int64, error) {
	spec = strings.TrimSpace(spec)
	i := 0
	for i < len(spec) && (spec[i] == '.' || (spec[i] >= '0' && spec[i] <= '9')) {
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("no numeric prefix in %q", spec)
	}
	numPart := spec[:i]
	unitPart := strings.ToUpper(strings.TrimSpace(spec[i:]))

	n, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, err
	}

	var multiplier float64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "KB":
		multiplier = 1 << 10
	case "MB":
		multiplier = 1 << 20
	case "GB":
		multiplier = 1 << 30
	default:
		return 0, fmt.Errorf("unknown size unit %q", unitPart)
	}
	return int64(n * multiplier), nil
}

// ParseRetentionSpec parses the §6 retention option: "<N> days" for
// age-based retention, or a plain integer string for count-based
// retention.
func ParseRetentionSpec(spec string) (RetentionPolicy, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return RetentionPolicy{Kind: RetentionNone}, nil
	}
	if n, err := strconv.Atoi(spec); err == nil {
		return RetentionPolicy{Kind: RetentionByCount, Count: n}, nil
	}

	fields := strings.Fields(spec)
	if len(fields) == 2 && strings.HasPrefix(strings.ToLower(fields[1]), "day") {
		days, err := strconv.Atoi(fields[0])
		if err != nil {
			return RetentionPolicy{}, fmt.Errorf("invalid retention spec %q: %w", spec, err)
		}
		return RetentionPolicy{Kind: RetentionByAge, Age: time.Duration(days) * 24 * time.Hour}, nil
	}
	return RetentionPolicy{}, fmt.Errorf("invalid retention spec %q", spec)
}
