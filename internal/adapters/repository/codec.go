package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/okian/triage/internal/domain/model"
)

// Column names of the feedback log, in file order.
const (
	ColTimestamp          = "Timestamp"
	ColCombinedInput      = "Combined Input"
	ColSentiment          = "Sentiment"
	ColSeverityScore      = "Severity Score"
	ColCategory           = "Category"
	ColCategoryConfidence = "Category Confidence"
	ColTicket             = "JIRA_Ticket"
)

// NoTicket is written in the ticket column when no ticket was created.
const NoTicket = "N/A"

// Header is the fixed column layout written once at the top of the log.
var Header = []string{ //nolint:gochecknoglobals // fixed file schema
	ColTimestamp,
	ColCombinedInput,
	ColSentiment,
	ColSeverityScore,
	ColCategory,
	ColCategoryConfidence,
	ColTicket,
}

// timestampLayouts are tried in order when reading. The second accepts the
// zone-less ISO-8601 timestamps produced by older writers.
var timestampLayouts = []string{ //nolint:gochecknoglobals // read-only parse table
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// EncodeRecord converts an event into a log row.
func EncodeRecord(ev model.FeedbackEvent) []string {
	ticket := ev.TicketID
	if ticket == "" {
		ticket = NoTicket
	}
	return []string{
		ev.Timestamp.UTC().Format(time.RFC3339Nano),
		ev.CombinedText,
		string(ev.Sentiment),
		formatScore(ev.SeverityScore),
		ev.Category,
		formatScore(ev.CategoryConfidence),
		ticket,
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// columnIndex maps each required column to its position in a header row.
type columnIndex map[string]int

func indexHeader(row []string) (columnIndex, error) {
	idx := make(columnIndex, len(row))
	for i, name := range row {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		idx[name] = i
	}
	for _, col := range Header {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedHeader, col)
		}
	}
	return idx, nil
}

// decodeRecord converts a log row back into an event. Rating, feedback and
// summary are recovered from the combined input when it has the standard layout.
func decodeRecord(row []string, idx columnIndex) (model.FeedbackEvent, error) {
	get := func(col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	ts, err := parseTimestamp(get(ColTimestamp))
	if err != nil {
		return model.FeedbackEvent{}, err
	}
	sentiment, err := model.ParseSentiment(get(ColSentiment))
	if err != nil {
		return model.FeedbackEvent{}, err
	}
	severity, err := strconv.ParseFloat(strings.TrimSpace(get(ColSeverityScore)), 64)
	if err != nil {
		return model.FeedbackEvent{}, fmt.Errorf("severity score: %w", err)
	}
	confidence, err := strconv.ParseFloat(strings.TrimSpace(get(ColCategoryConfidence)), 64)
	if err != nil {
		return model.FeedbackEvent{}, fmt.Errorf("category confidence: %w", err)
	}
	ticket := strings.TrimSpace(get(ColTicket))
	if ticket == NoTicket {
		ticket = ""
	}

	ev := model.FeedbackEvent{
		Timestamp:          ts,
		CombinedText:       get(ColCombinedInput),
		SeverityScore:      severity,
		Sentiment:          sentiment,
		Category:           get(ColCategory),
		CategoryConfidence: confidence,
		TicketID:           ticket,
	}
	if sub, ok := model.ParseCombinedText(ev.CombinedText); ok {
		ev.Rating, ev.Feedback, ev.Summary = sub.Rating, sub.Feedback, sub.Summary
	}
	return ev, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q is not ISO-8601", s)
}

// Decode reads a complete log from r. An empty input yields no records.
func Decode(r io.Reader) ([]model.FeedbackEvent, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []model.FeedbackEvent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}
	idx, err := indexHeader(head)
	if err != nil {
		return nil, err
	}

	events := []model.FeedbackEvent{}
	for n := 1; ; n++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrMalformedRecord, n, err)
		}
		ev, err := decodeRecord(row, idx)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrMalformedRecord, n, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// WriteCSV writes the header followed by one row per event.
func WriteCSV(w io.Writer, events []model.FeedbackEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, ev := range events {
		if err := cw.Write(EncodeRecord(ev)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
