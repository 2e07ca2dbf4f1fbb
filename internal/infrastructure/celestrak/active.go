package celestrak

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"StarlinkWatch/internal/ports"
)

const (
	objectNameColumn = "OBJECT_NAME"
	constellationTag = "STARLINK"
)

var _ ports.ActiveSource = (*Client)(nil)

// ActiveCount downloads the GP CSV and counts Starlink rows.
func (c *Client) ActiveCount(ctx context.Context) (int, error) {
	body, err := c.get(ctx, c.activeURL)
	if err != nil {
		return 0, fmt.Errorf("fetch active listing: %w", err)
	}
	defer body.Close()

	count, err := CountActive(body)
	if err != nil {
		return 0, fmt.Errorf("parse active listing: %w", err)
	}
	c.debug("active listing parsed", "count", count)
	return count, nil
}

// CountActive counts CSV rows whose OBJECT_NAME contains STARLINK.
func CountActive(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")), objectNameColumn) {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, fmt.Errorf("column %s not found", objectNameColumn)
	}

	count := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read row: %w", err)
		}
		if col < len(row) && strings.Contains(strings.ToUpper(row[col]), constellationTag) {
			count++
		}
	}
	return count, nil
}
