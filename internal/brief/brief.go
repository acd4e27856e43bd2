// Package brief ingests campaign brief files into the validated in-memory
// form the pipeline operates on. It is the only place that knows the on-disk
// format.
package brief

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"pipeline/internal/domain"
)

type productJSON struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	MessageOverride string `json:"message_override"`
}

type briefJSON struct {
	CampaignName    string        `json:"campaign_name"`
	CampaignMessage string        `json:"campaign_message"`
	Products        []productJSON `json:"products"`
}

// Load reads and parses a campaign brief file.
func Load(path string) (domain.CampaignBrief, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.CampaignBrief{}, fmt.Errorf("brief: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates campaign brief JSON. Validation failures are
// run-fatal: the pipeline never starts on a malformed brief.
func Parse(raw []byte) (domain.CampaignBrief, error) {
	var decoded briefJSON
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.CampaignBrief{}, fmt.Errorf("brief: decode: %w", err)
	}

	b := domain.CampaignBrief{
		CampaignName:    strings.TrimSpace(decoded.CampaignName),
		CampaignMessage: strings.TrimSpace(decoded.CampaignMessage),
	}
	if b.CampaignName == "" {
		return domain.CampaignBrief{}, fmt.Errorf("brief: campaign_name is required")
	}
	if b.CampaignMessage == "" {
		return domain.CampaignBrief{}, fmt.Errorf("brief: campaign_message is required")
	}
	if len(decoded.Products) == 0 {
		return domain.CampaignBrief{}, fmt.Errorf("brief: at least one product is required")
	}

	seen := make(map[string]struct{}, len(decoded.Products))
	for i, p := range decoded.Products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return domain.CampaignBrief{}, fmt.Errorf("brief: product %d: id is required", i)
		}
		if _, dup := seen[id]; dup {
			return domain.CampaignBrief{}, fmt.Errorf("brief: duplicate product id %q", id)
		}
		seen[id] = struct{}{}
		b.Products = append(b.Products, domain.Product{
			ID:              id,
			Name:            strings.TrimSpace(p.Name),
			Description:     strings.TrimSpace(p.Description),
			MessageOverride: strings.TrimSpace(p.MessageOverride),
		})
	}
	return b, nil
}
