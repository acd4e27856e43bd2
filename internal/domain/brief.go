package domain

import "strings"

// Product is one entry of a campaign brief. ID is unique within the brief and
// joins the product across resolver, providers, composer, and output layout.
type Product struct {
	ID              string
	Name            string
	Description     string
	MessageOverride string
}

// CampaignBrief is the validated, in-memory form of a campaign brief. It is
// immutable once ingested and owned by the orchestrator for a run.
type CampaignBrief struct {
	CampaignName    string
	CampaignMessage string
	Products        []Product
}

// MessageFor returns the overlay text for a product: its override when set,
// otherwise the shared campaign message.
func (b CampaignBrief) MessageFor(p Product) string {
	if override := strings.TrimSpace(p.MessageOverride); override != "" {
		return override
	}
	return b.CampaignMessage
}
