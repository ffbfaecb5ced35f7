// Package parser implements the per-region PDF parsing strategies that turn
// extracted roster text into schedule maps. One strategy exists per
// publishing layout; all of them degrade on bad input instead of failing,
// because source PDFs are irregular and change without notice.
package parser

import (
	"log/slog"
	"strings"

	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

// Triple is a pre-grouped pharmacy record as produced by column-based
// extraction: name, address and the raw info blob, in that order.
type Triple struct {
	Name    string
	Address string
	Info    string
}

// BatchParser turns runs of roster text lines into pharmacy records. All
// modes share the same phone-extraction and name-validation rules from the
// schedule package.
type BatchParser struct {
	logger *slog.Logger
}

// NewBatchParser creates a batch parser.
func NewBatchParser(logger *slog.Logger) *BatchParser {
	return &BatchParser{logger: logger}
}

// ParseTriples parses pre-grouped (name, address, info) triples. Triples
// whose name lacks the FARMACIA marker are rejected and logged, never
// guessed at.
func (b *BatchParser) ParseTriples(triples []Triple) []schedule.Pharmacy {
	out := make([]schedule.Pharmacy, 0, len(triples))
	for _, t := range triples {
		if !schedule.HasValidName(t.Name) {
			b.logger.Debug("rejecting triple without pharmacy marker",
				slog.String("name", t.Name),
			)
			continue
		}
		out = append(out, schedule.NewPharmacy(t.Name, t.Address, t.Info))
	}
	return out
}

// ParseLines parses a flat line list grouped implicitly in threes, in the
// order info, address, name — the reverse of ParseTriples, matching how the
// flat-text layouts print their blocks. A group whose name slot lacks the
// marker is dropped entirely. A trailing partial group is dropped too.
func (b *BatchParser) ParseLines(lines []string) []schedule.Pharmacy {
	out := make([]schedule.Pharmacy, 0, len(lines)/3)

	for i := 0; i+2 < len(lines); i += 3 {
		info, address, name := lines[i], lines[i+1], lines[i+2]
		if !schedule.HasValidName(name) {
			b.logger.Debug("skipping line group without pharmacy marker",
				slog.String("name_slot", name),
			)
			continue
		}
		out = append(out, schedule.NewPharmacy(name, address, info))
	}

	if rest := len(lines) % 3; rest != 0 {
		b.logger.Debug("dropping trailing partial line group",
			slog.Int("leftover_lines", rest),
		)
	}
	return out
}

// ParseSingle extracts one pharmacy from an arbitrary run of lines: the
// first FARMACIA-marked line is the name, the next line the address, and
// everything after is joined into the info blob. Returns nil when no marked
// line exists or nothing follows it.
func (b *BatchParser) ParseSingle(lines []string) *schedule.Pharmacy {
	for i, line := range lines {
		if !schedule.HasValidName(line) {
			continue
		}
		if i+1 >= len(lines) {
			b.logger.Debug("pharmacy name found with no address line after it",
				slog.String("name", line),
			)
			return nil
		}
		address := lines[i+1]
		info := strings.Join(lines[i+2:], " ")
		p := schedule.NewPharmacy(line, address, info)
		return &p
	}
	return nil
}
