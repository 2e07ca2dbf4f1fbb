package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"StarlinkWatch/internal/domain"
	"StarlinkWatch/internal/ports"
)

// MergeLines appends every candidate whose exact text does not already occur
// in existing. Appended lines keep candidate order and follow all existing
// content. When nothing is new, existing is returned unchanged.
func MergeLines(existing string, candidates []domain.ArchiveLine) (string, []domain.ArchiveLine) {
	var (
		added []domain.ArchiveLine
		texts []string
	)
	seen := existing
	for _, c := range candidates {
		if c.Text == "" || strings.Contains(seen, c.Text) {
			continue
		}
		added = append(added, c)
		texts = append(texts, c.Text)
		seen += "\n" + c.Text
	}
	if len(added) == 0 {
		return existing, nil
	}

	updated := strings.TrimRight(existing, " \t\r\n") + "\n" + strings.Join(texts, "\n") + "\n"
	return updated, added
}

// Merger loads, merges and stores domain archives.
type Merger struct {
	store  ports.ArchiveStore
	logger *slog.Logger
}

// NewMerger wires the archive persistence boundary.
func NewMerger(store ports.ArchiveStore, logger *slog.Logger) *Merger {
	return &Merger{store: store, logger: logger}
}

// Merge adds the digest's new archive lines for d and returns them.
func (m *Merger) Merge(ctx context.Context, digestText string, d domain.Domain) ([]domain.ArchiveLine, error) {
	plan, err := m.plan(ctx, digestText, d)
	if err != nil {
		return nil, err
	}
	if err := m.apply(ctx, plan); err != nil {
		return nil, err
	}
	return plan.added, nil
}

// MergeAll plans every domain before writing any of them, so a read failure
// leaves all archives untouched.
func (m *Merger) MergeAll(ctx context.Context, digestText string) (map[domain.Domain][]domain.ArchiveLine, error) {
	plans := make([]mergePlan, 0, len(domain.Domains))
	for _, d := range domain.Domains {
		plan, err := m.plan(ctx, digestText, d)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	result := make(map[domain.Domain][]domain.ArchiveLine, len(plans))
	for _, plan := range plans {
		if err := m.apply(ctx, plan); err != nil {
			return result, err
		}
		result[plan.domain] = plan.added
	}
	return result, nil
}

type mergePlan struct {
	domain  domain.Domain
	content string
	added   []domain.ArchiveLine
}

func (m *Merger) plan(ctx context.Context, digestText string, d domain.Domain) (mergePlan, error) {
	block, found := ExtractBlock(digestText, d)
	if !found {
		m.debug("archive label not found", "domain", d)
		return mergePlan{domain: d}, nil
	}
	candidates := ParseBullets(block)
	if len(candidates) == 0 {
		return mergePlan{domain: d}, nil
	}

	existing, err := m.store.LoadArchive(ctx, d)
	if errors.Is(err, domain.ErrNotFound) {
		existing = d.ArchiveHeading() + "\n"
	} else if err != nil {
		return mergePlan{}, fmt.Errorf("load %s archive: %w", d, err)
	}

	content, added := MergeLines(existing, candidates)
	m.debug("archive merge planned", "domain", d, "candidates", len(candidates), "added", len(added))
	return mergePlan{domain: d, content: content, added: added}, nil
}

func (m *Merger) apply(ctx context.Context, plan mergePlan) error {
	if len(plan.added) == 0 {
		return nil
	}
	if err := m.store.SaveArchive(ctx, plan.domain, plan.content); err != nil {
		return fmt.Errorf("save %s archive: %w", plan.domain, err)
	}
	return nil
}

func (m *Merger) debug(msg string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}
