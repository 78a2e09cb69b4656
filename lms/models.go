package lms

import "time"

type Category struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Teacher struct {
	ID            int64     `json:"id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Bio           string    `json:"bio"`
	Qualification string    `json:"qualification"`
	Skills        string    `json:"skills"`
	ProfileImg    *string   `json:"profile_img"`
	CreatedAt     time.Time `json:"created_at"`
}

type Student struct {
	ID         int64     `json:"id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	MobileNo   string    `json:"mobile_no"`
	Bio        string    `json:"bio"`
	ProfileImg *string   `json:"profile_img"`
	CreatedAt  time.Time `json:"created_at"`
}

// Course prices are decimals serialized as strings, e.g. "199000.00".
type Course struct {
	ID               int64     `json:"id"`
	Teacher          *Teacher  `json:"teacher"`
	Category         *Category `json:"category"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	FeaturedImg      *string   `json:"featured_img"`
	Level            string    `json:"level"`
	Price            string    `json:"price"`
	DiscountPrice    *string   `json:"discount_price"`
	Language         string    `json:"language"`
	Views            int       `json:"views"`
	AverageRating    float64   `json:"average_rating"`
	TotalReviews     int       `json:"total_reviews"`
	TotalEnrollments int       `json:"total_enrollments"`
	CreatedAt        time.Time `json:"created_at"`
	Sections         []Section `json:"sections"`
	Quizzes          []Quiz    `json:"quizzes"`
}

// CourseInput is the writable part of a course.
type CourseInput struct {
	CategoryID    *int64  `json:"category_id,omitempty"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Level         string  `json:"level,omitempty"`
	Price         string  `json:"price"`
	DiscountPrice *string `json:"discount_price,omitempty"`
	Language      string  `json:"language,omitempty"`
}

type Section struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Order   int      `json:"order"`
	Lessons []Lesson `json:"lessons"`
}

type SectionInput struct {
	Course int64  `json:"course"`
	Title  string `json:"title"`
	Order  int    `json:"order"`
}

type Lesson struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	VideoURL        *string `json:"video_url"`
	VideoFile       *string `json:"video_file"`
	DurationSeconds int     `json:"duration_seconds"`
	Order           int     `json:"order"`
	SectionID       int64   `json:"section_id"`
	SectionTitle    string  `json:"section_title"`
	CourseID        int64   `json:"course_id"`
	CourseTitle     string  `json:"course_title"`
	IsYoutube       bool    `json:"is_youtube"`
	YoutubeVideoID  *string `json:"youtube_video_id"`
	IsMP4           bool    `json:"is_mp4"`
}

type LessonInput struct {
	Section         int64   `json:"section"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	VideoURL        *string `json:"video_url,omitempty"`
	DurationSeconds int     `json:"duration_seconds,omitempty"`
	Order           int     `json:"order"`
}

type Quiz struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PassMark    int        `json:"pass_mark"`
	CreatedAt   time.Time  `json:"created_at"`
	Questions   []Question `json:"questions"`
}

type QuizInput struct {
	Course      int64  `json:"course"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	PassMark    int    `json:"pass_mark"`
}

type Question struct {
	ID           int64    `json:"id"`
	QuestionText string   `json:"question_text"`
	Order        int      `json:"order"`
	Options      []Option `json:"options"`
}

type QuestionInput struct {
	Quiz         int64  `json:"quiz"`
	QuestionText string `json:"question_text"`
	Order        int    `json:"order"`
}

// Option.IsCorrect is omitted by the student quiz view.
type Option struct {
	ID         int64  `json:"id"`
	OptionText string `json:"option_text"`
	IsCorrect  *bool  `json:"is_correct,omitempty"`
}

type OptionInput struct {
	Question   int64  `json:"question"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
}

type Enrollment struct {
	ID         int64     `json:"id"`
	Student    int64     `json:"student"`
	Course     int64     `json:"course"`
	EnrolledAt time.Time `json:"enrolled_at"`
	Completed  bool      `json:"completed"`
}

type QuizAttempt struct {
	ID        int64     `json:"id"`
	Student   int64     `json:"student"`
	Quiz      int64     `json:"quiz"`
	Score     float64   `json:"score"`
	Passed    bool      `json:"passed"`
	CreatedAt time.Time `json:"created_at"`
}

type QuizResult struct {
	Score          float64 `json:"score"`
	Passed         bool    `json:"passed"`
	CorrectAnswers int     `json:"correct_answers"`
	TotalQuestions int     `json:"total_questions"`
	AttemptID      int64   `json:"attempt_id"`
}

type Review struct {
	ID          int64     `json:"id"`
	Course      int64     `json:"course"`
	Student     int64     `json:"student"`
	StudentID   int64     `json:"student_id"`
	StudentName string    `json:"student_name"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CourseReviews struct {
	CourseID      int64    `json:"course_id"`
	CourseTitle   string   `json:"course_title"`
	AverageRating float64  `json:"average_rating"`
	TotalReviews  int      `json:"total_reviews"`
	Reviews       []Review `json:"reviews"`
}

type Order struct {
	ID            int64     `json:"id"`
	Student       int64     `json:"student"`
	CourseID      int64     `json:"course_id"`
	CourseTitle   string    `json:"course_title"`
	StudentName   string    `json:"student_name"`
	Amount        string    `json:"amount"`
	PaymentStatus string    `json:"payment_status"`
	PaymentMethod string    `json:"payment_method"`
	TransactionID *string   `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Certificate struct {
	ID                int64     `json:"id"`
	Student           int64     `json:"student"`
	StudentName       string    `json:"student_name"`
	StudentEmail      string    `json:"student_email"`
	Course            int64     `json:"course"`
	CourseTitle       string    `json:"course_title"`
	Teacher           int64     `json:"teacher"`
	TeacherName       string    `json:"teacher_name"`
	Code              string    `json:"code"`
	IssuedAt          time.Time `json:"issued_at"`
	IsValid           bool      `json:"is_valid"`
	CourseDescription string    `json:"course_description,omitempty"`
	CourseLevel       string    `json:"course_level,omitempty"`
}

type NotificationCourse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	FeaturedImg *string `json:"featured_img"`
}

type Notification struct {
	ID        int64               `json:"id"`
	Student   int64               `json:"student"`
	Course    *NotificationCourse `json:"course"`
	Title     string              `json:"title"`
	Message   string              `json:"message"`
	IsRead    bool                `json:"is_read"`
	CreatedAt time.Time           `json:"created_at"`
}

type Message struct {
	ID           int64     `json:"id"`
	Conversation int64     `json:"conversation"`
	SenderID     int64     `json:"sender_id"`
	SenderName   string    `json:"sender_name"`
	SenderType   string    `json:"sender_type"`
	Content      string    `json:"content"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}

type Conversation struct {
	ID                int64     `json:"id"`
	Course            *int64    `json:"course"`
	CourseTitle       string    `json:"course_title"`
	IsGroup           bool      `json:"is_group"`
	LastMessage       *Message  `json:"last_message"`
	UnreadCount       int       `json:"unread_count"`
	ConversationTitle string    `json:"conversation_title"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type AnalyticsSummary struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalStudents int     `json:"total_students"`
	TotalCourses  int     `json:"total_courses"`
	TodayRevenue  float64 `json:"today_revenue"`
}

type DailyRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type DailyEnrollments struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type CoursePerformance struct {
	CourseID         int64   `json:"course_id"`
	CourseTitle      string  `json:"course_title"`
	Revenue          float64 `json:"revenue"`
	TotalEnrollments int     `json:"total_enrollments"`
	AverageRating    float64 `json:"average_rating"`
	TotalReviews     int     `json:"total_reviews"`
}
