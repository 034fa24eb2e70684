package entity

// Categories is the closed set of expense category labels. The voice
// extraction prompt embeds this list and the creation path enforces
// membership.
var Categories = []string{
	"Food",
	"Housing",
	"Transportation",
	"Entertainment",
	"Utilities",
	"Healthcare",
	"Shopping",
	"Education",
	"Personal",
	"Travel",
	"Other",
}

var categorySet = func() map[string]bool {
	set := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		set[c] = true
	}
	return set
}()

// IsValidCategory reports whether label is one of the known categories.
func IsValidCategory(label string) bool {
	return categorySet[label]
}
