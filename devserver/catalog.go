package devserver

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	lmserrors "github.com/jrsteele09/go-lms-client/internal/errors"
	"github.com/jrsteele09/go-lms-client/internal/utils"
	"github.com/jrsteele09/go-lms-client/lms"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/users"
)

const pageSize = 12

// catalog is the in-memory course store.
type catalog struct {
	lock        sync.RWMutex
	categories  []lms.Category
	courses     map[int64]*lms.Course
	enrollments []lms.Enrollment
	reviews     map[int64][]lms.Review
	nextID      map[string]int64
}

func newCatalog() *catalog {
	return &catalog{
		courses: make(map[int64]*lms.Course),
		reviews: make(map[int64][]lms.Review),
		nextID:  make(map[string]int64),
	}
}

func (c *catalog) id(kind string) int64 {
	c.nextID[kind]++
	return c.nextID[kind]
}

func (c *catalog) category(id int64) (*lms.Category, bool) {
	for i := range c.categories {
		if c.categories[i].ID == id {
			cat := c.categories[i]
			return &cat, true
		}
	}
	return nil, false
}

func (c *catalog) sortedCourses(keep func(*lms.Course) bool) []lms.Course {
	out := make([]lms.Course, 0, len(c.courses))
	for _, course := range c.courses {
		if keep == nil || keep(course) {
			out = append(out, *course)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *catalog) enrolled(studentID, courseID int64) bool {
	for _, e := range c.enrollments {
		if e.Student == studentID && e.Course == courseID {
			return true
		}
	}
	return false
}

func (s *Server) listCategoriesHandler(w http.ResponseWriter, _ *http.Request) {
	s.catalog.lock.RLock()
	defer s.catalog.lock.RUnlock()
	writeJSON(w, http.StatusOK, s.catalog.categories)
}

func (s *Server) getCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	s.catalog.lock.RLock()
	defer s.catalog.lock.RUnlock()
	cat, ok := s.catalog.category(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// listCoursesHandler serves the paginated catalog, filtered by ?category= and ?search=.
func (s *Server) listCoursesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	categoryID, _ := strconv.ParseInt(q.Get("category"), 10, 64)
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	s.catalog.lock.RLock()
	courses := s.catalog.sortedCourses(func(c *lms.Course) bool {
		if categoryID > 0 && (c.Category == nil || c.Category.ID != categoryID) {
			return false
		}
		return search == "" || strings.Contains(strings.ToLower(c.Title), search)
	})
	s.catalog.lock.RUnlock()

	writeJSON(w, http.StatusOK, paginate(r, courses, page))
}

func paginate[T any](r *http.Request, items []T, page int) lms.Page[T] {
	out := lms.Page[T]{Count: len(items), Results: []T{}}
	start := (page - 1) * pageSize
	if start < len(items) {
		end := min(start+pageSize, len(items))
		out.Results = items[start:end]
		if end < len(items) {
			out.Next = pageLink(r, page+1)
		}
	}
	if page > 1 {
		out.Previous = pageLink(r, page-1)
	}
	return out
}

func pageLink(r *http.Request, page int) *string {
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}

func (s *Server) getCourseHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	s.catalog.lock.Lock()
	defer s.catalog.lock.Unlock()
	course, ok := s.catalog.courses[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, detail("Not found."))
		return
	}
	course.Views++
	writeJSON(w, http.StatusOK, course)
}

func (s *Server) courseReviewsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("Course not found"))
		return
	}
	s.catalog.lock.RLock()
	defer s.catalog.lock.RUnlock()
	course, ok := s.catalog.courses[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("Course not found"))
		return
	}
	reviews := append([]lms.Review{}, s.catalog.reviews[id]...)
	writeJSON(w, http.StatusOK, lms.CourseReviews{
		CourseID:      course.ID,
		CourseTitle:   course.Title,
		AverageRating: course.AverageRating,
		TotalReviews:  course.TotalReviews,
		Reviews:       reviews,
	})
}

// reviewCourseHandler creates or replaces the student's review. Only enrolled
// students may review a course.
func (s *Server) reviewCourseHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("Course not found"))
		return
	}
	student, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	var in struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := decodeBody(r, &in); err != nil || in.Rating < 1 || in.Rating > 5 {
		writeJSON(w, http.StatusBadRequest, errorBody("Rating must be between 1 and 5"))
		return
	}

	s.catalog.lock.Lock()
	defer s.catalog.lock.Unlock()
	course, ok := s.catalog.courses[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("Course not found"))
		return
	}
	if !s.catalog.enrolled(student.ID, id) {
		writeJSON(w, http.StatusForbidden, errorBody("You must be enrolled in this course to review it"))
		return
	}

	now := NowTimeFunc()
	review := lms.Review{
		Course:      id,
		Student:     student.ID,
		StudentID:   student.ID,
		StudentName: student.FullName,
		Rating:      in.Rating,
		Comment:     in.Comment,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	reviews := s.catalog.reviews[id]
	replaced := false
	for i := range reviews {
		if reviews[i].Student == student.ID {
			review.ID = reviews[i].ID
			review.CreatedAt = reviews[i].CreatedAt
			reviews[i] = review
			replaced = true
		}
	}
	if !replaced {
		review.ID = s.catalog.id("review")
		reviews = append(reviews, review)
	}
	s.catalog.reviews[id] = reviews

	total := 0
	for _, rv := range reviews {
		total += rv.Rating
	}
	course.TotalReviews = len(reviews)
	course.AverageRating = float64(total) / float64(len(reviews))

	status := http.StatusCreated
	if replaced {
		status = http.StatusOK
	}
	writeJSON(w, status, review)
}

func (s *Server) enrollHandler(w http.ResponseWriter, r *http.Request) {
	student, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	var in struct {
		Course int64 `json:"course"`
	}
	if err := decodeBody(r, &in); err != nil || in.Course <= 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrors("course", "This field is required."))
		return
	}

	s.catalog.lock.Lock()
	defer s.catalog.lock.Unlock()
	course, ok := s.catalog.courses[in.Course]
	if !ok {
		writeJSON(w, http.StatusBadRequest, fieldErrors("course", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", in.Course)))
		return
	}
	if s.catalog.enrolled(student.ID, in.Course) {
		writeJSON(w, http.StatusBadRequest, errorBody("Already enrolled in this course"))
		return
	}

	e := lms.Enrollment{
		ID:         s.catalog.id("enrollment"),
		Student:    student.ID,
		Course:     in.Course,
		EnrolledAt: NowTimeFunc(),
	}
	s.catalog.enrollments = append(s.catalog.enrollments, e)
	course.TotalEnrollments++
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) myCoursesHandler(w http.ResponseWriter, r *http.Request) {
	student, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.catalog.lock.RLock()
	defer s.catalog.lock.RUnlock()
	courses := s.catalog.sortedCourses(func(c *lms.Course) bool {
		return s.catalog.enrolled(student.ID, c.ID)
	})
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) teacherCoursesHandler(w http.ResponseWriter, r *http.Request) {
	teacher, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.catalog.lock.RLock()
	defer s.catalog.lock.RUnlock()
	courses := s.catalog.sortedCourses(func(c *lms.Course) bool {
		return c.Teacher != nil && c.Teacher.ID == teacher.ID
	})
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) createCourseHandler(w http.ResponseWriter, r *http.Request) {
	teacher, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	var in lms.CourseInput
	if err := decodeBody(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("JSON parse error"))
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeJSON(w, http.StatusBadRequest, fieldErrors("title", "This field is required."))
		return
	}
	if _, err := strconv.ParseFloat(in.Price, 64); err != nil {
		writeJSON(w, http.StatusBadRequest, fieldErrors("price", "A valid number is required."))
		return
	}
	if discount := utils.Value(in.DiscountPrice); discount != "" {
		if _, err := strconv.ParseFloat(discount, 64); err != nil {
			writeJSON(w, http.StatusBadRequest, fieldErrors("discount_price", "A valid number is required."))
			return
		}
	}

	s.catalog.lock.Lock()
	defer s.catalog.lock.Unlock()
	course, err := s.catalog.addCourse(teacherOf(teacher), in)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, fieldErrors("category_id", err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

// addCourse must be called with the lock held.
func (c *catalog) addCourse(teacher *lms.Teacher, in lms.CourseInput) (*lms.Course, error) {
	course := &lms.Course{
		ID:            c.id("course"),
		Teacher:       teacher,
		Title:         in.Title,
		Description:   in.Description,
		Level:         in.Level,
		Price:         in.Price,
		DiscountPrice: in.DiscountPrice,
		Language:      in.Language,
		CreatedAt:     NowTimeFunc(),
		Sections:      []lms.Section{},
		Quizzes:       []lms.Quiz{},
	}
	if course.Level == "" {
		course.Level = "beginner"
	}
	if course.Language == "" {
		course.Language = "English"
	}
	if in.CategoryID != nil {
		cat, ok := c.category(*in.CategoryID)
		if !ok {
			return nil, fmt.Errorf("%w: category %d", lmserrors.ErrNotFound, *in.CategoryID)
		}
		course.Category = cat
	}
	c.courses[course.ID] = course
	return course, nil
}

func teacherOf(u *users.User) *lms.Teacher {
	return &lms.Teacher{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Bio:           u.Bio,
		Qualification: u.Qualification,
		Skills:        u.Skills,
		ProfileImg:    u.ProfileImg,
		CreatedAt:     u.CreatedAt,
	}
}

// Demo accounts created by Seed.
const (
	DemoTeacherEmail    = "demo.teacher@example.com"
	DemoTeacherPassword = "teacher123"
	DemoStudentEmail    = "demo.student@example.com"
	DemoStudentPassword = "student123"
)

// Seed loads demo accounts, categories and courses.
func (s *Server) Seed(ctx context.Context) error {
	teacher, err := s.createUser(session.RoleTeacher, registration{
		FullName:      "Demo Teacher",
		Email:         DemoTeacherEmail,
		Password:      DemoTeacherPassword,
		Bio:           "Teaches the demo courses.",
		Qualification: "MSc Computer Science",
		Skills:        "Go, Python, SQL",
	})
	if err != nil {
		return fmt.Errorf("[Server Seed] failed to create demo teacher: %w", err)
	}
	if _, err := s.createUser(session.RoleStudent, registration{
		FullName: "Demo Student",
		Email:    DemoStudentEmail,
		Password: DemoStudentPassword,
		MobileNo: "0900000000",
	}); err != nil {
		return fmt.Errorf("[Server Seed] failed to create demo student: %w", err)
	}

	s.catalog.lock.Lock()
	defer s.catalog.lock.Unlock()
	for _, title := range []string{"Programming", "Data Science", "Design"} {
		s.catalog.categories = append(s.catalog.categories, lms.Category{
			ID:          s.catalog.id("category"),
			Title:       title,
			Description: title + " courses",
			CreatedAt:   NowTimeFunc(),
		})
	}

	seed := []struct {
		category int64
		title    string
		price    string
	}{
		{1, "Go for Backend Developers", "199000.00"},
		{1, "Testing in Practice", "149000.00"},
		{2, "SQL Fundamentals", "99000.00"},
		{2, "Intro to Machine Learning", "299000.00"},
		{3, "UI Design Basics", "0.00"},
	}
	t := teacherOf(teacher)
	for _, c := range seed {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.catalog.addCourse(t, lms.CourseInput{
			CategoryID:  utils.Ptr(c.category),
			Title:       c.title,
			Description: "Demo course: " + c.title,
			Price:       c.price,
		}); err != nil {
			return fmt.Errorf("[Server Seed] failed to add course %q: %w", c.title, err)
		}
	}
	s.logger.Info().Int("courses", len(seed)).Msg("seeded demo catalog")
	return nil
}
