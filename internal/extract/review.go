package extract

// ReviewSections is the structured form of a weekly review reply.  Missing
// sections are nil, meaning "not generated".
type ReviewSections struct {
	WhatWorked     *string
	WhatDidntWork  *string
	KeyLearnings   *string
	NextPriorities *string
	HardTruth      *string
}

// ParseWeeklyReview extracts the five review sections.
func ParseWeeklyReview(text string) ReviewSections {
	s := Sections(text, ReviewLabels)
	return ReviewSections{
		WhatWorked:     s["WHAT_WORKED"],
		WhatDidntWork:  s["WHAT_DIDNT_WORK"],
		KeyLearnings:   s["KEY_LEARNINGS"],
		NextPriorities: s["NEXT_PRIORITIES"],
		HardTruth:      s["HARD_TRUTH"],
	}
}
