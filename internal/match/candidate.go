package match

import (
	"reflect"
	"sort"
)

// Named is a target member offered for ranking.
type Named struct {
	Name string
	Kind string // "method", "field", ...
	Type reflect.Type
}

// Candidate represents a potential binding of a shape member to a target member.
type Candidate struct {
	Member Named

	// Scoring components
	NameScore  float64                 // Normalized Levenshtein similarity (0-1)
	TypeCompat TypeCompatibilityResult // Type compatibility result

	// Combined score for ranking (higher is better)
	CombinedScore float64

	// Metadata for debugging/explanation
	NormalizedSourceName string
	NormalizedTargetName string
}

// Label renders the candidate for diagnostics ("field length int").
func (c Candidate) Label() string {
	if c.Member.Type == nil {
		return c.Member.Kind + " " + c.Member.Name
	}

	return c.Member.Kind + " " + c.Member.Name + " " + c.Member.Type.String()
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores every member against the required name and type.
// A nil wantType ranks by name only. Returns candidates sorted by combined
// score (descending).
func RankCandidates(wantName string, wantType reflect.Type, members []Named) CandidateList {
	var candidates CandidateList

	targetNorm := NormalizeIdent(wantName)
	targetNormStripped := NormalizeIdentWithAffixStrip(wantName)

	for _, member := range members {
		sourceNorm := NormalizeIdent(member.Name)
		sourceNormStripped := NormalizeIdentWithAffixStrip(member.Name)

		// Calculate name similarity (use max of regular and affix-stripped)
		nameScore := LevenshteinNormalized(sourceNorm, targetNorm)
		nameScoreStripped := LevenshteinNormalized(sourceNormStripped, targetNormStripped)
		if nameScoreStripped > nameScore {
			nameScore = nameScoreStripped
		}

		var typeCompat TypeCompatibilityResult
		if wantType != nil && member.Type != nil {
			typeCompat = ScoreTypeCompatibility(member.Type, wantType)
		} else {
			typeCompat = TypeCompatibilityResult{
				Compatibility: TypeIncompatible,
				Reason:        "type information unavailable",
			}
		}

		candidates = append(candidates, Candidate{
			Member:               member,
			NameScore:            nameScore,
			TypeCompat:           typeCompat,
			CombinedScore:        calculateCombinedScore(nameScore, typeCompat.Compatibility),
			NormalizedSourceName: sourceNorm,
			NormalizedTargetName: targetNorm,
		})
	}

	// Sort by combined score (descending), then by name for determinism
	sort.Sort(candidates)

	return candidates
}

// calculateCombinedScore computes a combined score from name similarity and type compatibility.
// Weights:
//   - Name similarity: 70% (0.0-0.7)
//   - Type compatibility: 30% (0.0-0.3)
func calculateCombinedScore(nameScore float64, typeCompat TypeCompatibility) float64 {
	const (
		nameWeight = 0.7
		typeWeight = 0.3
	)

	var typeScore float64
	switch typeCompat {
	case TypeIdentical:
		typeScore = 1.0
	case TypeAssignable:
		typeScore = 0.9
	case TypeWidening:
		typeScore = 0.7
	case TypeNarrowing:
		typeScore = 0.4
	case TypeIncompatible:
		typeScore = 0.0
	}

	return nameScore*nameWeight + typeScore*typeWeight
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by combined score descending, then by member name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].CombinedScore != c[j].CombinedScore {
		return c[i].CombinedScore > c[j].CombinedScore
	}

	return c[i].Member.Name < c[j].Member.Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}
	return c[:n]
}

// AboveThreshold returns candidates whose name score reaches the threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList
	for _, cand := range c {
		if cand.NameScore >= threshold {
			result = append(result, cand)
		}
	}
	return result
}

// Labels renders every candidate with Label.
func (c CandidateList) Labels() []string {
	labels := make([]string, 0, len(c))
	for _, cand := range c {
		labels = append(labels, cand.Label())
	}

	return labels
}

// Suggest returns labels of the closest members to wantName, at most max of them.
func Suggest(wantName string, wantType reflect.Type, members []Named, max int) []string {
	if max <= 0 {
		return nil
	}

	return RankCandidates(wantName, wantType, members).
		AboveThreshold(DefaultSuggestionScore).
		Top(max).
		Labels()
}

// DefaultSuggestionScore is the minimum name similarity for a member to be
// listed as a close candidate in diagnostics.
const DefaultSuggestionScore = 0.5
