package provider

import (
	"context"
	"sort"

	"github.com/Afrawles/teampulse/internal/report"
)

// ChatMetrics is the chat backend's per-subject record: message counts keyed
// by opaque space ID.
type ChatMetrics struct {
	Spaces map[string]int64 `json:"spaces"`
}

// ChatResult is the chat backend's native response shape.
type ChatResult map[string]ChatMetrics

// ChatActivity fetches per-subject message counts for the query window.
func (c *Client) ChatActivity(ctx context.Context, q report.Query) (ChatResult, error) {
	var res ChatResult
	if err := c.post(ctx, report.KindChat, "/api/metrics/chat", q, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ChatSpaces feeds the chat report: one row per subject per space.
type ChatSpaces struct {
	Client *Client
}

var _ report.MetricSource = (*ChatSpaces)(nil)

func (s *ChatSpaces) Kind() report.Kind { return report.KindChat }

func (s *ChatSpaces) Fetch(ctx context.Context, q report.Query) (any, error) {
	return s.Client.ChatActivity(ctx, q)
}

func (s *ChatSpaces) Normalize(raw any, names report.NameContext) []report.Row {
	res, ok := raw.(ChatResult)
	if !ok {
		return nil
	}

	rows := []report.Row{}
	for _, subject := range sortedKeys(res) {
		spaces := res[subject].Spaces
		if len(spaces) == 0 {
			continue
		}
		for _, spaceID := range sortedKeys(spaces) {
			rows = append(rows, report.Row{
				"subject":   subject,
				"spaceName": names.SpaceName(spaceID),
				"count":     spaces[spaceID],
			})
		}
	}
	return rows
}

// ChatTotals feeds the activity overview: one total-messages row per subject.
type ChatTotals struct {
	Client *Client
}

var _ report.MetricSource = (*ChatTotals)(nil)

func (s *ChatTotals) Kind() report.Kind { return report.KindChat }

func (s *ChatTotals) Fetch(ctx context.Context, q report.Query) (any, error) {
	return s.Client.ChatActivity(ctx, q)
}

func (s *ChatTotals) Normalize(raw any, _ report.NameContext) []report.Row {
	res, ok := raw.(ChatResult)
	if !ok {
		return nil
	}

	rows := []report.Row{}
	for _, subject := range sortedKeys(res) {
		var total int64
		for _, count := range res[subject].Spaces {
			total += count
		}
		rows = append(rows, report.Row{
			"subject": subject,
			"source":  "Chat",
			"metric":  "messages",
			"value":   total,
		})
	}
	return rows
}

// sortedKeys keeps normalized row order deterministic; JSON object order is
// lost in decoding, so subject order comes from a sort instead.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
