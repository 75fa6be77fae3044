package domain

import "strings"

// BuildSummary composes a short consensus sentence from already-ranked
// strength and weakness tags: up to n of each, joined with "and", as in
// "Praised for sound and driver_fun; watch for reliability". Either clause
// stands alone when the other list is empty; both empty yields "".
//
// The construction is deterministic pure templating over the provided tags.
// It never fabricates content absent from the input lists.
func BuildSummary(strengths, weaknesses []TagCount, n int) string {
	praise := joinTags(TopTags(strengths, n))
	caution := joinTags(TopTags(weaknesses, n))

	switch {
	case praise != "" && caution != "":
		return "Praised for " + praise + "; watch for " + caution
	case praise != "":
		return "Praised for " + praise
	case caution != "":
		return "watch for " + caution
	default:
		return ""
	}
}

func joinTags(tags []TagCount) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Tag)
	}
	return strings.Join(names, " and ")
}
