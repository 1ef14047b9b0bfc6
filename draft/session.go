// Package draft holds an instructor's unsaved course-editing state: content
// pages keyed by a 1-based page number and quizzes with numbered questions.
// Nothing here touches the database; a draft reaches persistent storage only
// through an explicit save-all, and is discarded on close or after sitting
// idle.
package draft

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrPageNotFound     = errors.New("page not found in draft")
	ErrQuizNotFound     = errors.New("quiz not found in draft")
	ErrQuestionNotFound = errors.New("question not found in draft")
)

// Page is one content page of the draft
type Page struct {
	Number      int      `json:"page_number"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Videos      []string `json:"videos"`
}

// Question is a multiple-choice question with exactly four options
type Question struct {
	Number        int      `json:"number"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Quiz is an ordered question bank within the draft
type Quiz struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// ValidateQuestion checks the question invariant: exactly four non-empty
// options and a correct answer equal to one of them.
func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.Prompt) == "" {
		return errors.New("question prompt is required")
	}
	if len(q.Options) != 4 {
		return errors.New("a question requires exactly 4 options")
	}
	match := false
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return errors.New("all 4 options must be non-empty")
		}
		if opt == q.CorrectAnswer {
			match = true
		}
	}
	if !match {
		return errors.New("correct answer must equal one of the options")
	}
	return nil
}

type quizDraft struct {
	name      string
	questions map[int]Question
}

// Session is one instructor's in-memory working copy for one course. All
// methods are safe for concurrent use; the zero value is not usable, use
// NewSession.
type Session struct {
	mu         sync.Mutex
	pages      map[int]Page
	quizzes    map[int]*quizDraft
	activePage int
	nextQuizID int
	touched    time.Time
}

// NewSession seeds a session from persisted state. An empty page set gets a
// single default page numbered 1.
func NewSession(pages []Page, quizzes []Quiz) *Session {
	s := &Session{
		pages:      make(map[int]Page),
		quizzes:    make(map[int]*quizDraft),
		nextQuizID: 1,
	}
	for _, p := range pages {
		if p.Number >= 1 {
			s.pages[p.Number] = p
		}
	}
	if len(s.pages) == 0 {
		s.pages[1] = Page{Number: 1}
	}
	s.activePage = s.firstPageLocked()
	for _, q := range quizzes {
		qd := &quizDraft{name: q.Name, questions: make(map[int]Question)}
		for _, question := range q.Questions {
			qd.questions[question.Number] = question
		}
		s.quizzes[s.nextQuizID] = qd
		s.nextQuizID++
	}
	s.touched = time.Now()
	return s
}

func (s *Session) touch() { s.touched = time.Now() }

// IdleSince reports the time of the last mutation. Read accessors do not
// reset it, so a draft is swept on mutation inactivity alone.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) firstPageLocked() int {
	first := 0
	for n := range s.pages {
		if first == 0 || n < first {
			first = n
		}
	}
	return first
}

// ActivePage returns the page the instructor is currently viewing
func (s *Session) ActivePage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePage
}

// SetActivePage navigates the view to an existing page
func (s *Session) SetActivePage(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pages[n]; !ok {
		return ErrPageNotFound
	}
	s.activePage = n
	s.touch()
	return nil
}

// AddPage allocates max(existing)+1 and makes it the active page. Freed
// numbers are never reused, so page identity stays stable across deletes.
func (s *Session) AddPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	for n := range s.pages {
		if n > max {
			max = n
		}
	}
	n := max + 1
	s.pages[n] = Page{Number: n}
	s.activePage = n
	s.touch()
	return n
}

// DeletePage removes a page and navigates the view to the first remaining
// page. Deleting the last page resets the draft to a single default page
// numbered 1. Returns the new active page.
func (s *Session) DeletePage(n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pages[n]; !ok {
		return 0, ErrPageNotFound
	}
	delete(s.pages, n)
	if len(s.pages) == 0 {
		s.pages[1] = Page{Number: 1}
	}
	s.activePage = s.firstPageLocked()
	s.touch()
	return s.activePage, nil
}

// SavePage commits a page buffer into the mapping. The page must already
// exist; saving the same content twice is a no-op.
func (s *Session) SavePage(p Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pages[p.Number]; !ok {
		return ErrPageNotFound
	}
	s.pages[p.Number] = p
	s.touch()
	return nil
}

// Pages returns all pages in page-number order
func (s *Session) Pages() []Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagesLocked()
}

func (s *Session) pagesLocked() []Page {
	out := make([]Page, 0, len(s.pages))
	for _, p := range s.pages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// PageNumbers returns the current page-number set in order
func (s *Session) PageNumbers() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.pages))
	for n := range s.pages {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// AddQuiz creates an empty quiz and returns its draft id
func (s *Session) AddQuiz(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextQuizID
	s.nextQuizID++
	s.quizzes[id] = &quizDraft{name: name, questions: make(map[int]Question)}
	s.touch()
	return id
}

// DeleteQuiz removes a quiz and its questions
func (s *Session) DeleteQuiz(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[id]; !ok {
		return ErrQuizNotFound
	}
	delete(s.quizzes, id)
	s.touch()
	return nil
}

// SaveQuestion validates and commits one question into a quiz. An invalid
// question is rejected without mutating the mapping. A question without a
// number is allocated max(existing)+1, so freed numbers are never reused
// and a surviving question is never overwritten.
func (s *Session) SaveQuestion(quizID int, q Question) error {
	if err := ValidateQuestion(q); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	qd, ok := s.quizzes[quizID]
	if !ok {
		return ErrQuizNotFound
	}
	if q.Number < 1 {
		max := 0
		for n := range qd.questions {
			if n > max {
				max = n
			}
		}
		q.Number = max + 1
	}
	qd.questions[q.Number] = q
	s.touch()
	return nil
}

// DeleteQuestion removes one question from a quiz
func (s *Session) DeleteQuestion(quizID, number int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	qd, ok := s.quizzes[quizID]
	if !ok {
		return ErrQuizNotFound
	}
	if _, ok := qd.questions[number]; !ok {
		return ErrQuestionNotFound
	}
	delete(qd.questions, number)
	s.touch()
	return nil
}

// Quizzes serializes the quiz mappings to ordered slices (quiz id order,
// question number order), the shape flushed to the database on save-all.
func (s *Session) Quizzes() []Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.quizzes))
	for id := range s.quizzes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Quiz, 0, len(ids))
	for _, id := range ids {
		qd := s.quizzes[id]
		numbers := make([]int, 0, len(qd.questions))
		for n := range qd.questions {
			numbers = append(numbers, n)
		}
		sort.Ints(numbers)
		questions := make([]Question, 0, len(numbers))
		for _, n := range numbers {
			questions = append(questions, qd.questions[n])
		}
		out = append(out, Quiz{ID: id, Name: qd.name, Questions: questions})
	}
	return out
}
