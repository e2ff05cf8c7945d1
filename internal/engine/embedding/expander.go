package embedding

// Expand augments queryTerms with embedded terms whose similarity to an
// original term strictly exceeds threshold, at most maxPerTerm additions
// per original term. Original terms always survive unchanged; terms absent
// from the space pass through unexpanded, and duplicates collapse. The
// result never shrinks the query, so expansion cannot fail.
func Expand(space *Space, queryTerms []string, threshold float64, maxPerTerm int) []string {
	if space == nil || len(queryTerms) == 0 || maxPerTerm <= 0 {
		return queryTerms
	}

	seen := make(map[string]struct{}, len(queryTerms))
	expanded := make([]string, 0, len(queryTerms)*2)
	for _, term := range queryTerms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		expanded = append(expanded, term)
	}

	for _, term := range queryTerms {
		if !space.Contains(term) {
			continue
		}
		added := 0
		for _, neighbor := range space.MostSimilar(term, space.Size()) {
			if added >= maxPerTerm {
				break
			}
			if neighbor.Similarity <= threshold {
				break
			}
			if _, dup := seen[neighbor.Term]; dup {
				continue
			}
			seen[neighbor.Term] = struct{}{}
			expanded = append(expanded, neighbor.Term)
			added++
		}
	}
	return expanded
}
