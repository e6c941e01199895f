package templates

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestExtractionPrompt(t *testing.T) {
	prompt := ExtractionPrompt("Booking Reference: #AB123")

	for _, key := range BookingKeys {
		be.True(t, strings.Contains(prompt, `"`+key+`"`))
	}
	be.True(t, strings.HasSuffix(strings.TrimSpace(prompt), "Booking Reference: #AB123"))
}
