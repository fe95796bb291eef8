package igsn

import (
	"errors"
	"fmt"
)

// PrefixLength is the fixed size of a structured prefix: 2-char institution,
// 1-char lab, 2-char material, 1-char subcategory.
const PrefixLength = 6

// NoSubcategory is the reserved "no subcategory" marker, valid for every
// material even when absent from its subcategory map.
const NoSubcategory = "X"

// SequenceDigits is the zero-padded width of the allocation suffix.
const SequenceDigits = 5

var ErrInvalidPrefix = errors.New("invalid prefix")

type PrefixReason string

const (
	ReasonBadLength          PrefixReason = "length"
	ReasonUnknownInstitution PrefixReason = "institution"
	ReasonUnknownLab         PrefixReason = "lab"
	ReasonUnknownMaterial    PrefixReason = "material"
	ReasonUnknownSubcategory PrefixReason = "subcategory"
)

// PrefixError names the offending component of a rejected prefix.
type PrefixError struct {
	Reason PrefixReason
	Value  string
}

func (e *PrefixError) Error() string {
	switch e.Reason {
	case ReasonBadLength:
		return fmt.Sprintf("prefix must be %d characters long", PrefixLength)
	case ReasonUnknownInstitution:
		return fmt.Sprintf("unknown institution %s", e.Value)
	case ReasonUnknownLab:
		return fmt.Sprintf("unknown lab %s", e.Value)
	case ReasonUnknownMaterial:
		return fmt.Sprintf("unknown material %s", e.Value)
	case ReasonUnknownSubcategory:
		return fmt.Sprintf("unknown subcategory %s", e.Value)
	}
	return "invalid prefix"
}

func (e *PrefixError) Is(target error) bool { return target == ErrInvalidPrefix }

// PrefixParts is a prefix split into its vocabulary components.
type PrefixParts struct {
	Institution string
	Lab         string
	Material    string
	Subcategory string
}

// SplitPrefix breaks a prefix into components, rejecting bad lengths.
func SplitPrefix(prefix string) (PrefixParts, error) {
	if len(prefix) != PrefixLength {
		return PrefixParts{}, &PrefixError{Reason: ReasonBadLength, Value: prefix}
	}
	return PrefixParts{
		Institution: prefix[0:2],
		Lab:         prefix[2:3],
		Material:    prefix[3:5],
		Subcategory: prefix[5:6],
	}, nil
}

// ValidatePrefix checks every component of prefix against vocab. Pure; no
// side effects.
func ValidatePrefix(prefix string, vocab Vocabulary) error {
	parts, err := SplitPrefix(prefix)
	if err != nil {
		return err
	}
	inst, ok := vocab.Institutions[parts.Institution]
	if !ok {
		return &PrefixError{Reason: ReasonUnknownInstitution, Value: parts.Institution}
	}
	if _, ok := inst.Labs[parts.Lab]; !ok {
		return &PrefixError{Reason: ReasonUnknownLab, Value: parts.Lab}
	}
	material, ok := vocab.Materials[parts.Material]
	if !ok {
		return &PrefixError{Reason: ReasonUnknownMaterial, Value: parts.Material}
	}
	if parts.Subcategory != NoSubcategory {
		if _, ok := material.Subcategories[parts.Subcategory]; !ok {
			return &PrefixError{Reason: ReasonUnknownSubcategory, Value: parts.Subcategory}
		}
	}
	return nil
}

// FormatIdentifier composes the wire-format root identifier,
// {prefix:6}{seq:05d}.
func FormatIdentifier(prefix string, seq int64) string {
	return fmt.Sprintf("%s%0*d", prefix, SequenceDigits, seq)
}

// ChildIdentifier composes a batch child identifier from its parent's
// identifier and a strategy suffix.
func ChildIdentifier(parent, suffix string) string {
	return fmt.Sprintf("%s-%s", parent, suffix)
}
