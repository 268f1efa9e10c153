package llm

import (
	"context"
	"fmt"
	"strings"
)

const mockTopItems = 3

// mockClient produces deterministic summaries without any external calls.
type mockClient struct{}

// NewMock creates the mock summary client used when no LLM key is set.
func NewMock() Client {
	return &mockClient{}
}

func (m *mockClient) GenerateTrendSummary(_ context.Context, req SummaryRequest) (string, error) {
	if len(req.Items) == 0 {
		return "", nil
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "Top trends for %s (%s, last %s): ",
		req.Country, req.Category.DisplayName(), req.Window)

	limit := mockTopItems
	if len(req.Items) < limit {
		limit = len(req.Items)
	}

	names := make([]string, 0, limit)
	for _, item := range req.Items[:limit] {
		names = append(names, fmt.Sprintf("%s (%s, %.1f)", item.DisplayName(), item.Platform, item.TrendingScore))
	}

	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString(".")

	return sb.String(), nil
}

func (m *mockClient) StreamTrendSummary(ctx context.Context, req SummaryRequest, emit func(chunk string) error) error {
	summary, err := m.GenerateTrendSummary(ctx, req)
	if err != nil {
		return err
	}

	for _, word := range strings.Fields(summary) {
		if err := emit(word + " "); err != nil {
			return err
		}
	}

	return nil
}
