package status

import (
	"fmt"
)

// FileFormatter defines how file outcomes and progress should be formatted
type FileFormatter interface {
	// FormatOutcome formats what happened to a single file
	FormatOutcome(name string, outcome Outcome) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatOutcome formats a file outcome with emojis
func (f *DefaultFileFormatter) FormatOutcome(name string, outcome Outcome) string {
	switch outcome {
	case OutcomeRelocated:
		return fmt.Sprintf("✨ Relocated %s", name)
	case OutcomeSkipped:
		return fmt.Sprintf("👍 Skipped %s", name)
	case OutcomeIgnored:
		return fmt.Sprintf("🙈 Ignored %s", name)
	case OutcomeDeleted:
		return fmt.Sprintf("🗑️  Deleted %s", name)
	case OutcomeNotFound:
		return fmt.Sprintf("🔍 Not found %s", name)
	case OutcomeFailed:
		return fmt.Sprintf("❌ Failed %s", name)
	default:
		return fmt.Sprintf("❔ Unknown %s", name)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

// FormatSize renders a byte count with a binary unit
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
