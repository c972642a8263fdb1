package assistant

import (
	"regexp"
	"strings"
)

// Keyword groups over normalized text. These are the product's Turkish
// vocabulary, with a few ASCII variants for users typing without
// locale-specific characters.
var (
	assignmentWordsRE      = regexp.MustCompile(`ödev|assign|odev`)
	examWordsRE            = regexp.MustCompile(`\bnet|deneme|sınav|sinav`)
	studentWordsRE         = regexp.MustCompile(`öğrenci`)
	countWordsRE           = regexp.MustCompile(`kaç|sayısı|sayi|adet`)
	topicWordsRE           = regexp.MustCompile(`konu`)
	assignmentCountRE      = regexp.MustCompile(`ödev sayısı|aktif ödev|ödevler kaç`)
	teacherAssignmentsRE   = regexp.MustCompile(`ödevlerimi|ödev listem|tüm ödevler(imi)?`)
	doneWordsRE            = regexp.MustCompile(`tamamlanan|biten|done`)
	pendingWordsRE         = regexp.MustCompile(`bekleyen|açık|pending`)
	// Captures the name after the "öğrenci" anchor up to a possessive
	// apostrophe, a following keyword, or end of string.
	studentCaptureRE = regexp.MustCompile(`öğrenci\s+([^'\s][^\n]+?)(?:'|\s+için|\s+ödev|\s+odev|\s+tamamlanan|\s+bekleyen|$)`)
)

// ParseRules classifies normalized input text with an ordered decision
// list. It is a pure function and the fallback when no model is
// available or the model output is unusable. Branch order matters: a
// sentence can mention both students and assignments, and the earlier
// branch must win. Returns nil when no domain vocabulary is present.
func ParseRules(text string) *Intent {
	t := Normalize(text)

	isAssignments := assignmentWordsRE.MatchString(t)
	isExams := examWordsRE.MatchString(t)
	mentionsStudents := studentWordsRE.MatchString(t)
	asksCount := countWordsRE.MatchString(t)
	isTopics := topicWordsRE.MatchString(t)
	isAssignmentCount := assignmentCountRE.MatchString(t)
	isTeacherAssignments := teacherAssignmentsRE.MatchString(t)

	if !isAssignments && !isExams && !mentionsStudents && !isTopics && !isAssignmentCount && !isTeacherAssignments {
		return nil
	}

	// Both groups are checked independently; when a sentence carries
	// both, the pending keyword wins deterministically.
	var status string
	if doneWordsRE.MatchString(t) {
		status = StatusDone
	}
	if pendingWordsRE.MatchString(t) {
		status = StatusPending
	}

	var student string
	if m := studentCaptureRE.FindStringSubmatch(t); m != nil {
		student = strings.TrimSpace(m[1])
	}

	if mentionsStudents && !isAssignments && !isExams {
		if asksCount {
			return &Intent{Action: ActionCountStudents}
		}
		return &Intent{Action: ActionListStudents}
	}
	if isTopics {
		return &Intent{Action: ActionListTopics}
	}
	if isAssignmentCount {
		return &Intent{Action: ActionCountAssignments}
	}
	if isTeacherAssignments {
		return &Intent{Action: ActionListTeacherAssignments}
	}

	action := ActionListAssignments
	if isExams {
		action = ActionListExams
	}
	return &Intent{Action: action, StudentName: student, Status: status}
}
