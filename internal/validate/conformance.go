package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/formlab/annotate/internal/datapath"
	"github.com/formlab/annotate/internal/document"
)

// DateLayout is the canonical calendar-date format bound values must
// parse as when a field declares input_mode "date". The annotation
// format leaves the date format open; ISO-8601 is the documented choice
// here.
const DateLayout = "2006-01-02"

// Verdict is the conformance outcome for one resolved field value.
type Verdict string

const (
	// VerdictOK means the value satisfies the field's declared mode and
	// constraints.
	VerdictOK Verdict = "ok"
	// VerdictTypeMismatch means the value's runtime kind is incompatible
	// with the declared input_mode.
	VerdictTypeMismatch Verdict = "type_mismatch"
	// VerdictConstraintViolation means the kind matched but a constraint
	// failed: fractional value for integer mode, unparseable date,
	// max_length exceeded, or a segmentation split mismatch.
	VerdictConstraintViolation Verdict = "constraint_violation"
)

// Conformance checks a resolved value against the field's declared
// input_mode and constraints. It returns the verdict and the findings
// explaining it; findings are empty when the verdict is VerdictOK.
func Conformance(field *document.Field, value datapath.Value) (Verdict, []Finding) {
	var fs findings
	verdict := VerdictOK

	downgrade := func(v Verdict) {
		// type_mismatch outranks constraint_violation: a wrongly typed
		// value makes constraint checks meaningless.
		if verdict == VerdictTypeMismatch {
			return
		}
		if v == VerdictTypeMismatch || verdict == VerdictOK {
			verdict = v
		}
	}

	switch field.InputMode {
	case document.InputModeString:
		if value.Kind != datapath.KindString {
			fs.errorf(field.FieldID, "input_mode string expects a text value, got %s", value.Kind)
			downgrade(VerdictTypeMismatch)
		}
	case document.InputModeNumber:
		if value.Kind != datapath.KindNumber {
			fs.errorf(field.FieldID, "input_mode number expects a numeric value, got %s", value.Kind)
			downgrade(VerdictTypeMismatch)
		}
	case document.InputModeInteger:
		if value.Kind != datapath.KindNumber {
			fs.errorf(field.FieldID, "input_mode integer expects a numeric value, got %s", value.Kind)
			downgrade(VerdictTypeMismatch)
		} else if !value.IsIntegral() {
			fs.errorf(field.FieldID, "input_mode integer rejects fractional value %s", value.String())
			downgrade(VerdictConstraintViolation)
		}
	case document.InputModeBoolean:
		if value.Kind != datapath.KindBoolean {
			fs.errorf(field.FieldID, "input_mode boolean expects a boolean value, got %s", value.Kind)
			downgrade(VerdictTypeMismatch)
		}
	case document.InputModeDate:
		if value.Kind != datapath.KindString {
			fs.errorf(field.FieldID, "input_mode date expects a text value, got %s", value.Kind)
			downgrade(VerdictTypeMismatch)
		} else if _, err := time.Parse(DateLayout, value.String()); err != nil {
			fs.errorf(field.FieldID, "value %q is not a %s calendar date", value.String(), DateLayout)
			downgrade(VerdictConstraintViolation)
		}
	}

	if verdict != VerdictTypeMismatch {
		if f := field.Formatting; f != nil && f.MaxLength > 0 && len(value.String()) > f.MaxLength {
			fs.errorf(field.FieldID, "value %q exceeds max_length %d", value.String(), f.MaxLength)
			downgrade(VerdictConstraintViolation)
		}

		if seg := field.InputSegmentation; seg != nil {
			if _, err := SplitSegments(seg, value.String()); err != nil {
				fs.errorf(field.FieldID, "value does not fit segmentation: %v", err)
				downgrade(VerdictConstraintViolation)
			}
		}
	}

	return verdict, fs.list
}

// SplitSegments divides a bound value across the field's segments in
// index order. Two input shapes are accepted: the compact form whose
// length equals the sum of segment max_lengths ("123456789"), and the
// formatted form that additionally carries every separator character at
// its patterned position ("123-45-6789"). Anything else is a
// segmentation mismatch.
func SplitSegments(seg *document.Segmentation, value string) ([]string, error) {
	compact := sumMaxLengths(seg)
	switch len(value) {
	case compact:
		// Compact form: consume max_length runes per segment.
	case compact + separatorLength(seg):
		stripped, err := stripSeparators(seg, value)
		if err != nil {
			return nil, err
		}
		value = stripped
	default:
		return nil, fmt.Errorf("value length %d matches neither %d digits nor %d formatted characters",
			len(value), compact, compact+separatorLength(seg))
	}

	parts := make([]string, len(seg.Segments))
	offset := 0
	for i := range seg.Segments {
		n := seg.Segments[i].MaxLength
		parts[seg.Segments[i].SegmentIndex] = value[offset : offset+n]
		offset += n
	}
	return parts, nil
}

func sumMaxLengths(seg *document.Segmentation) int {
	total := 0
	for i := range seg.Segments {
		total += seg.Segments[i].MaxLength
	}
	return total
}

func separatorLength(seg *document.Segmentation) int {
	total := 0
	for i := range seg.Separators {
		total += len(seg.Separators[i].SeparatorChar)
	}
	return total
}

// stripSeparators removes each separator character from the formatted
// value, verifying it sits exactly after its segment's characters.
func stripSeparators(seg *document.Segmentation, value string) (string, error) {
	// Widths by segment index, so separators can locate their cut point.
	widths := make([]int, len(seg.Segments))
	for i := range seg.Segments {
		widths[seg.Segments[i].SegmentIndex] = seg.Segments[i].MaxLength
	}

	// Expected character offset of each separator in the formatted value,
	// ordered by after_segment.
	type cut struct {
		offset int
		char   string
	}
	cuts := make([]cut, 0, len(seg.Separators))
	for i := range seg.Separators {
		sep := &seg.Separators[i]
		offset := 0
		for s := 0; s <= sep.AfterSegment && s < len(widths); s++ {
			offset += widths[s]
		}
		// Earlier separators shift later ones right.
		for j := range seg.Separators {
			if seg.Separators[j].AfterSegment < sep.AfterSegment {
				offset += len(seg.Separators[j].SeparatorChar)
			}
		}
		cuts = append(cuts, cut{offset: offset, char: sep.SeparatorChar})
	}

	var sb strings.Builder
	skip := make(map[int]string, len(cuts))
	for _, c := range cuts {
		skip[c.offset] = c.char
	}
	i := 0
	for i < len(value) {
		if char, at := skip[i]; at {
			if !strings.HasPrefix(value[i:], char) {
				return "", fmt.Errorf("expected separator %q at position %d", char, i)
			}
			i += len(char)
			continue
		}
		sb.WriteByte(value[i])
		i++
	}
	return sb.String(), nil
}
