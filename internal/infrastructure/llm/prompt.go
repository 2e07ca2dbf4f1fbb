package llm

import (
	"encoding/json"
	"fmt"

	"StarlinkWatch/internal/archive"
	"StarlinkWatch/internal/domain"
)

const systemPrompt = "You generate a consolidated Starlink-only Daily Digest from feed items that are already prefiltered to Starlink. " +
	"If an item is off-topic, ignore it. Structure: Environmental, Cybersecurity, Astronomical; then Summary of Changes; " +
	"then three sections named exactly: **Archive — Environmental**, **Archive — Cybersecurity**, **Archive — Astronomical**. " +
	"Each archive section must contain bullets in this exact format:\n" +
	"- YYYY-MM-DD HH:mm PT | Headline | Source | URL\n" +
	"Be concise, factual, and use only the provided items."

// userPrompt serializes the candidates the same way for every backend.
func userPrompt(date string, items []domain.CandidateItem) (string, error) {
	if items == nil {
		items = []domain.CandidateItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal digest items: %w", err)
	}
	return fmt.Sprintf("Items JSON (Starlink-filtered):\n%s\n\nWrite: %s", raw, archive.DigestTitle(date)), nil
}
