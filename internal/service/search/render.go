package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// maxMessageLen is the delivery channel's ceiling for one message.
	maxMessageLen = 4096
	truncateAt    = 4000
	truncateMark  = "\n\n... (message truncated)"

	dateLayout = "2006-01-02"
)

var (
	itemTableHeaders    = []string{"Item", "Operator", "Started", "Modified"}
	stationTableHeaders = []string{"Station", "Operator", "Started", "Modified"}
)

// OrderReport renders the full per-station history of an order. An empty
// string means no history was found.
func (s *Service) OrderReport(ctx context.Context, orderNumber string) (string, error) {
	groups, err := s.OrderHistory(ctx, orderNumber)
	if err != nil {
		return "", err
	}
	if len(groups) == 0 {
		return "", nil
	}

	names := s.nameResolver(ctx)
	allItems := make(map[string]struct{})

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Order %s:*\n\n", orderNumber)

	for _, group := range groups {
		rows := make([][]string, 0, len(group.Observations))
		for _, obs := range group.Observations {
			allItems[obs.QRData] = struct{}{}
			rows = append(rows, []string{
				obs.QRData,
				names(obs.ObserverID),
				obs.CreatedAt.Format(dateLayout),
				formatModified(obs.ModifiedAt),
			})
		}
		fmt.Fprintf(&b, "📍 *%s*\n%s\n\n", group.Station, renderTable(itemTableHeaders, rows))
	}

	sorted := make([]string, 0, len(allItems))
	for item := range allItems {
		sorted = append(sorted, item)
	}
	sort.Strings(sorted)

	fmt.Fprintf(&b, "*📋 All items of order %s:*\n", orderNumber)
	for _, item := range sorted {
		fmt.Fprintf(&b, "• `%s`\n", item)
	}

	return truncate(b.String()), nil
}

// ItemReport renders every station an item has been seen at. An empty string
// means no history was found.
func (s *Service) ItemReport(ctx context.Context, itemNumber string) (string, error) {
	matches, err := s.ItemHistory(ctx, itemNumber)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}

	names := s.nameResolver(ctx)
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{
			m.Station,
			names(m.Observation.ObserverID),
			m.Observation.CreatedAt.Format(dateLayout),
			formatModified(m.Observation.ModifiedAt),
		})
	}

	response := fmt.Sprintf("🔧 *Item %s:*\n\n%s", itemNumber, renderTable(stationTableHeaders, rows))
	return truncate(response), nil
}

// PackagedReport renders the order's items that reached packaging. An empty
// string means no history was found.
func (s *Service) PackagedReport(ctx context.Context, orderNumber string) (string, error) {
	observations, err := s.PackagedItems(ctx, orderNumber)
	if err != nil {
		return "", err
	}
	if len(observations) == 0 {
		return "", nil
	}

	names := s.nameResolver(ctx)
	rows := make([][]string, 0, len(observations))
	for _, obs := range observations {
		rows = append(rows, []string{
			obs.QRData,
			names(obs.ObserverID),
			obs.CreatedAt.Format(dateLayout),
			formatModified(obs.ModifiedAt),
		})
	}

	response := fmt.Sprintf("📦 *Packaged items of order %s:*\n\n%s", orderNumber, renderTable(itemTableHeaders, rows))
	return truncate(response), nil
}

// nameResolver memoizes operator name lookups for the duration of one report.
func (s *Service) nameResolver(ctx context.Context) func(int64) string {
	cache := make(map[int64]string)
	return func(id int64) string {
		if name, ok := cache[id]; ok {
			return name
		}
		name := s.repo.OperatorName(ctx, id)
		cache[id] = name
		return name
	}
}

// renderTable lays rows out in fixed-width columns inside a code fence.
// Column width is the max of the header and all cells, counted in runes.
// Empty input renders to an empty string.
func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if w := utf8.RuneCountInString(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var lines []string
	lines = append(lines, formatRow(headers, widths))

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	lines = append(lines, strings.Join(rule, "─┼─"))

	for _, row := range rows {
		lines = append(lines, formatRow(row, widths))
	}

	return "```\n" + strings.Join(lines, "\n") + "\n```"
}

func formatRow(cells []string, widths []int) string {
	padded := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if pad := widths[i] - utf8.RuneCountInString(cell); pad > 0 {
			cell += strings.Repeat(" ", pad)
		}
		padded[i] = cell
	}
	return strings.Join(padded, " │ ")
}

func formatModified(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}

// truncate caps a response at the channel's message ceiling, leaving a
// visible marker when content was cut.
func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	cut := truncateAt
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncateMark
}
