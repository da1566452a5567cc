package seeder

import (
	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

// Entities returns the university schema in its canonical output order.
func Entities() []*Entity {
	return []*Entity{
		{
			Key: "departments", Name: "Departments", Columns: departmentColumns, DefaultCount: 10,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateDepartments(c.Gen, c.Count)
			},
		},
		{
			Key: "staff", Name: "Staff", Columns: staffColumns, DefaultCount: 100,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateStaff(c.Gen, c.Count, c.Parent("departments"))
			},
		},
		{
			Key: "students", Name: "Students", Columns: studentColumns, DefaultCount: 1000,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateStudents(c.Gen, c.Count)
			},
		},
		{
			Key: "courses", Name: "Courses", Columns: courseColumns, DefaultCount: 50,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateCourses(c.Gen, c.Count, c.Parent("departments"))
			},
		},
		{
			Key: "classrooms", Name: "Classrooms", Columns: classroomColumns, DefaultCount: 10,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateClassrooms(c.Gen, c.Count)
			},
		},
		{
			Key: "schedules", Name: "Schedules", Columns: scheduleColumns, DefaultCount: 100,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateSchedules(c.Gen, c.Count, c.Parent("courses"), c.Parent("classrooms"), c.Parent("staff"))
			},
		},
		{
			Key: "enrollments", Name: "Enrollments", Columns: enrollmentColumns, DefaultCount: 1000,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateEnrollments(c.Gen, c.Count, c.Parent("students"), c.Parent("courses"))
			},
		},
		{
			Key: "grades", Name: "Grades", Columns: gradeColumns, DefaultCount: 500,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateGrades(c.Gen, c.Count, c.Parent("students"), c.Parent("courses"))
			},
		},
		{
			Key: "attendance", Name: "Attendance", Columns: attendanceColumns, DefaultCount: 1000,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateAttendance(c.Gen, c.Count, c.Parent("students"), c.Parent("schedules"))
			},
		},
		{
			Key: "libraries", Name: "Libraries", Columns: libraryColumns, DefaultCount: 5,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateLibraries(c.Gen, c.Count)
			},
		},
		{
			Key: "books", Name: "Books", Columns: bookColumns, DefaultCount: 200,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateBooks(c.Gen, c.Count, c.Parent("libraries"))
			},
		},
		{
			Key: "library_memberships", Name: "LibraryMemberships", Columns: libraryMembershipColumns, DefaultCount: 500,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateLibraryMemberships(c.Gen, c.Count, c.Parent("students"), c.Parent("libraries"),
					c.Probabilities.MembershipEndUnset)
			},
		},
		{
			Key: "borrowed_books", Name: "BorrowedBooks", Columns: borrowedBookColumns, DefaultCount: 1000,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateBorrowedBooks(c.Gen, c.Count, c.Parent("library_memberships"), c.Parent("books"),
					c.Probabilities.BorrowReturnUnset)
			},
		},
		{
			Key: "events", Name: "Events", Columns: eventColumns, DefaultCount: 50,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateEvents(c.Gen, c.Count, c.Parent("staff"))
			},
		},
		{
			Key: "student_clubs", Name: "StudentClubs", Columns: studentClubColumns, DefaultCount: 20,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateStudentClubs(c.Gen, c.Count, c.Parent("staff"))
			},
		},
		{
			Key: "club_memberships", Name: "ClubMemberships", Columns: clubMembershipColumns, DefaultCount: 500,
			Build: func(c *BuildContext) (*types.Table, error) {
				return GenerateClubMemberships(c.Gen, c.Count, c.Parent("students"), c.Parent("student_clubs"))
			},
		},
	}
}

// DefaultUnique is the set of fields generated without repeats unless
// configured otherwise.
func DefaultUnique() []string {
	return []string{"staff.email", "students.email", "books.isbn"}
}
