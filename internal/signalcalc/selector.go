package signalcalc

import (
	"strings"
	"unicode"

	"github.com/wltsai/stockpulse/internal/contracts"
)

// SelectorConfig tunes the diversity selection
type SelectorConfig struct {
	PerSourceCap int     // max picks per source label
	Lambda       float64 // redundancy penalty weight
	SimThreshold float64 // near-duplicate rejection threshold
	SubsetK      int     // picks per direction subset
	MaxTotal     int     // hard cap on the selection size
}

// DefaultSelectorConfig returns the standard selection parameters
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		PerSourceCap: 1,
		Lambda:       0.6,
		SimThreshold: 0.6,
		SubsetK:      2,
		MaxTotal:     5,
	}
}

// SelectTop picks a small, non-redundant, source-balanced set of
// representative events: an MMR pass over the positive-direction subset,
// another over the negative subset, then the most recent event overall
// if it still fits. A flat top-k by score tends to surface near-duplicate
// coverage of the same headline; this keeps spread across sentiment and
// sources while still favoring magnitude. Candidates must arrive in the
// deterministic input order; ties break on the earlier candidate.
func SelectTop(candidates []contracts.EvaluatedEvent, cfg SelectorConfig) []contracts.EvaluatedEvent {
	if cfg.MaxTotal <= 0 {
		return nil
	}

	sel := &selection{
		cfg:          cfg,
		sourceCounts: make(map[string]int),
		usedKeys:     make(map[string]struct{}),
	}

	var positives, negatives []contracts.EvaluatedEvent
	for _, c := range candidates {
		switch {
		case c.Judgment.Direction > 0:
			positives = append(positives, c)
		case c.Judgment.Direction < 0:
			negatives = append(negatives, c)
		}
	}

	sel.pickMMR(positives, cfg.SubsetK)
	sel.pickMMR(negatives, cfg.SubsetK)

	// Append the most recent event overall when it was not selected.
	// Candidates are newest-first, so the first one qualifies.
	if len(candidates) > 0 {
		sel.pickIfEligible(candidates[0])
	}

	return sel.chosen
}

type selection struct {
	cfg          SelectorConfig
	chosen       []contracts.EvaluatedEvent
	chosenTokens []map[string]struct{}
	sourceCounts map[string]int
	usedKeys     map[string]struct{}
}

// pickMMR repeatedly takes the eligible candidate maximizing
// baseScore - lambda * maxSimilarityToChosen, up to k picks
func (s *selection) pickMMR(candidates []contracts.EvaluatedEvent, k int) {
	tokens := make([]map[string]struct{}, len(candidates))
	for i, c := range candidates {
		tokens[i] = titleTokens(c.Event.Title)
	}

	for picks := 0; picks < k && len(s.chosen) < s.cfg.MaxTotal; picks++ {
		bestIdx := -1
		bestValue := 0.0

		for i, c := range candidates {
			if !s.eligible(c) {
				continue
			}
			maxSim := s.maxSimilarity(tokens[i])
			if maxSim >= s.cfg.SimThreshold {
				// Near-duplicate of an already-chosen item
				continue
			}
			value := c.BaseScore - s.cfg.Lambda*maxSim
			if bestIdx == -1 || value > bestValue {
				bestIdx = i
				bestValue = value
			}
		}

		if bestIdx == -1 {
			return
		}
		s.add(candidates[bestIdx], tokens[bestIdx])
	}
}

// pickIfEligible adds one candidate if it passes the same constraints
func (s *selection) pickIfEligible(c contracts.EvaluatedEvent) {
	if len(s.chosen) >= s.cfg.MaxTotal || !s.eligible(c) {
		return
	}
	tok := titleTokens(c.Event.Title)
	if s.maxSimilarity(tok) >= s.cfg.SimThreshold {
		return
	}
	s.add(c, tok)
}

func (s *selection) eligible(c contracts.EvaluatedEvent) bool {
	if _, used := s.usedKeys[c.Event.IdentityKey()]; used {
		return false
	}
	return s.sourceCounts[sourceKey(c)] < s.cfg.PerSourceCap
}

func (s *selection) add(c contracts.EvaluatedEvent, tokens map[string]struct{}) {
	s.chosen = append(s.chosen, c)
	s.chosenTokens = append(s.chosenTokens, tokens)
	s.sourceCounts[sourceKey(c)]++
	s.usedKeys[c.Event.IdentityKey()] = struct{}{}
}

func (s *selection) maxSimilarity(tokens map[string]struct{}) float64 {
	maxSim := 0.0
	for _, chosen := range s.chosenTokens {
		if sim := jaccard(tokens, chosen); sim > maxSim {
			maxSim = sim
		}
	}
	return maxSim
}

func sourceKey(c contracts.EvaluatedEvent) string {
	return strings.ToLower(strings.TrimSpace(c.Event.Source))
}

// titleTokens normalizes a title into its token set: lowercased, split on
// whitespace and punctuation, trailing plural "s" folded so inflected
// rewrites of the same headline still overlap
func titleTokens(title string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) > 3 && strings.HasSuffix(f, "s") {
			f = f[:len(f)-1]
		}
		tokens[f] = struct{}{}
	}
	return tokens
}

// jaccard is the intersection-over-union of two token sets
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for t := range small {
		if _, ok := large[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
