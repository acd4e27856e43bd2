package brief

import (
	"os"
	"path/filepath"
	"testing"
)

const validBrief = `{
	"campaign_name": "Summer Launch",
	"campaign_message": "Summer Sale",
	"products": [
		{"id": "P1", "name": "Sneakers", "description": "lightweight running shoes"},
		{"id": "P2", "name": "Bottle", "message_override": "Stay cool"}
	]
}`

func TestParseValidBrief(t *testing.T) {
	b, err := Parse([]byte(validBrief))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if b.CampaignName != "Summer Launch" {
		t.Fatalf("campaign name = %q", b.CampaignName)
	}
	if len(b.Products) != 2 {
		t.Fatalf("products = %d, want 2", len(b.Products))
	}
	if b.Products[0].ID != "P1" || b.Products[1].ID != "P2" {
		t.Fatalf("product order not preserved: %+v", b.Products)
	}
	if got := b.MessageFor(b.Products[0]); got != "Summer Sale" {
		t.Fatalf("message for P1 = %q, want campaign message", got)
	}
	if got := b.MessageFor(b.Products[1]); got != "Stay cool" {
		t.Fatalf("message for P2 = %q, want override", got)
	}
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	raw := `{"campaign_name":"c","campaign_message":"m","products":[{"id":"P1"},{"id":"P1"}]}`
	if _, err := Parse([]byte(raw)); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestParseRejectsMissingFields(t *testing.T) {
	cases := map[string]string{
		"no message":  `{"campaign_name":"c","products":[{"id":"P1"}]}`,
		"no name":     `{"campaign_message":"m","products":[{"id":"P1"}]}`,
		"no products": `{"campaign_name":"c","campaign_message":"m","products":[]}`,
		"blank id":    `{"campaign_name":"c","campaign_message":"m","products":[{"id":"  "}]}`,
		"not json":    `{"campaign_name":`,
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brief.json")
	if err := os.WriteFile(path, []byte(validBrief), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(b.Products) != 2 {
		t.Fatalf("products = %d, want 2", len(b.Products))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
