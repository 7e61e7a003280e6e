package ros

// setDifference returns the items of lhs that are not in rhs.
func setDifference(lhs []string, rhs []string) []string {
	right := make(map[string]bool, len(rhs))
	for _, item := range rhs {
		right[item] = true
	}
	var result []string
	for _, item := range lhs {
		if !right[item] {
			result = append(result, item)
			right[item] = true
		}
	}
	return result
}
