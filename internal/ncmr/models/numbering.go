package models

import (
	"fmt"
	"strings"

	dErrors "ncmr/pkg/domain-errors"
)

// NumberRule decides how a record's display number is derived when the
// backend does not supply one.
type NumberRule string

const (
	// NumberRuleSequence yields NCMR-00001 style labels counted from the oldest record.
	NumberRuleSequence NumberRule = "sequence"
	// NumberRulePartNumber reuses the part number as the label.
	NumberRulePartNumber NumberRule = "part-number"
	// NumberRuleID yields NCMR-<id>.
	NumberRuleID NumberRule = "id"
)

func ParseNumberRule(raw string) (NumberRule, error) {
	switch r := NumberRule(strings.ToLower(strings.TrimSpace(raw))); r {
	case "":
		return NumberRuleSequence, nil
	case NumberRuleSequence, NumberRulePartNumber, NumberRuleID:
		return r, nil
	}
	return "", dErrors.New(dErrors.CodeConfig, "unknown number rule: "+raw)
}

// Derive returns the display number for r. seq is the record's 1-based
// position counted from the oldest record.
func (n NumberRule) Derive(r Record, seq int) string {
	switch n {
	case NumberRulePartNumber:
		return r.PartNumber
	case NumberRuleID:
		return "NCMR-" + r.ID
	default:
		return SequenceNumber(seq)
	}
}

// SequenceNumber formats a zero-padded NCMR label.
func SequenceNumber(seq int) string {
	return fmt.Sprintf("NCMR-%05d", seq)
}

// ApplyNumbers fills empty display numbers in a most-recent-first list.
func (n NumberRule) ApplyNumbers(records []Record) {
	total := len(records)
	for i := range records {
		if records[i].NCMRNumber == "" {
			records[i].NCMRNumber = n.Derive(records[i], total-i)
		}
	}
}
