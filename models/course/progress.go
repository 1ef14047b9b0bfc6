package course

// ProgressFor converts a lesson position into a completion percentage:
// ceil(currentLesson / totalLessons * 100), clamped to [0, 100].
// A course with no lessons yields 0. Integer arithmetic keeps the ceil
// exact (no float rounding near whole numbers).
func ProgressFor(currentLesson, totalLessons int) int {
	if totalLessons <= 0 || currentLesson <= 0 {
		return 0
	}
	p := (currentLesson*100 + totalLessons - 1) / totalLessons
	if p > 100 {
		p = 100
	}
	return p
}

// LessonsDone derives the resume position from a stored percentage:
// ceil(progress / 100 * totalLessons), capped at totalLessons. It is
// recomputed on every read and never stored, so it cannot diverge from
// progress. A zero or unknown lesson count yields 0.
func LessonsDone(progress, totalLessons int) int {
	if totalLessons <= 0 || progress <= 0 {
		return 0
	}
	done := (progress*totalLessons + 99) / 100
	if done > totalLessons {
		done = totalLessons
	}
	return done
}

// StatusForProgress derives the enrollment status from progress
func StatusForProgress(progress int) string {
	switch {
	case progress >= 100:
		return EnrollmentCompleted
	case progress > 0:
		return EnrollmentInProgress
	default:
		return EnrollmentEnrolled
	}
}
