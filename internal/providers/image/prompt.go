package image

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pipeline/internal/domain"
)

// BuildProductPrompt converts a product entry and the campaign message into a
// natural language instruction for text-to-image models. The framing keeps
// generated assets usable as clean product shots that composition can crop to
// any of the target ratios.
func BuildProductPrompt(p domain.Product, campaignMessage string) string {
	titler := cases.Title(language.Und)

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = p.ID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "professional product photo of %s", titler.String(name))
	if desc := strings.TrimSpace(p.Description); desc != "" {
		fmt.Fprintf(&b, ", %s", desc)
	}
	b.WriteString(", clean white background, high quality, advertising photography, studio lighting")
	if msg := strings.TrimSpace(campaignMessage); msg != "" {
		fmt.Fprintf(&b, "\nCampaign context: %s", msg)
	}
	return b.String()
}
