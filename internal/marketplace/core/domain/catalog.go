package domain

import "time"

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
)

// Course prices are kept in the currency's minor unit (paise for INR),
// which is also what the payment gateway expects.
type Course struct {
	ID               string
	Name             string
	Description      string
	Price            int64
	Status           CourseStatus
	CategoryID       string
	StudentsEnrolled int
	Reviews          []RatingAndReview
	CreatedAt        time.Time
}

func (c Course) IsPublished() bool {
	return c.Status == CoursePublished
}

type RatingAndReview struct {
	ID     string
	UserID string
	Rating int
	Review string
}

// Category holds its courses in display order. Read paths only populate
// published courses.
type Category struct {
	ID          string
	Name        string
	Description string
	Courses     []Course
	CreatedAt   time.Time
}

type CategorySummary struct {
	ID          string
	Name        string
	Description string
}

// CategoryPage is the aggregate behind the catalog page: the requested
// category, an optional sibling suggestion and the platform best sellers.
type CategoryPage struct {
	Selected    Category
	Different   *Category
	MostSelling []Course
}
