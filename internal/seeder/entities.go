package seeder

import (
	"fmt"
	"time"

	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

var (
	genders    = []string{"M", "F"}
	weekdays   = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
	grades     = []string{"A", "B", "C", "D", "F"}
	attendance = []string{"Present", "Absent"}
	clubRoles  = []string{"President", "Vice President", "Member", "Treasurer", "Secretary"}
)

type window struct {
	start time.Time
	end   time.Time
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

var (
	hireWindow       = window{day(2000, 1, 1), day(2020, 1, 1)}
	enrollmentWindow = window{day(2015, 1, 1), day(2024, 1, 1)}
	recentWindow     = window{day(2020, 1, 1), day(2024, 1, 1)}
	futureWindow     = window{day(2024, 1, 2), day(2025, 1, 1)}
	eventWindow      = window{day(2020, 1, 1), day(2024, 12, 31)}
)

func (g *DataGenerator) dateIn(w window) time.Time {
	return g.DateBetween(w.start, w.end)
}

func pk(name string) types.Column {
	return types.Column{Name: name, Kind: types.KindInt, PrimaryKey: true}
}

func fk(name, table, column string) types.Column {
	return types.Column{Name: name, Kind: types.KindInt, RefTable: table, RefColumn: column}
}

func text(name string) types.Column {
	return types.Column{Name: name, Kind: types.KindText}
}

func num(name string) types.Column {
	return types.Column{Name: name, Kind: types.KindInt}
}

func date(name string) types.Column {
	return types.Column{Name: name, Kind: types.KindDate}
}

var (
	departmentColumns = []types.Column{
		pk("department_id"),
		text("department_name"),
		{Name: "hod_id", Kind: types.KindInt, Nullable: true, RefTable: "staff", RefColumn: "staff_id", Deferred: true},
	}
	staffColumns = []types.Column{
		pk("staff_id"), text("first_name"), text("last_name"), text("email"),
		date("dob"), date("hire_date"), fk("department_id", "departments", "department_id"),
	}
	studentColumns = []types.Column{
		pk("student_id"), text("first_name"), text("last_name"), text("email"),
		date("dob"), text("gender"), date("enrollment_date"),
	}
	courseColumns = []types.Column{
		pk("course_id"), text("course_name"), text("course_description"), num("credits"),
		fk("department_id", "departments", "department_id"),
	}
	classroomColumns = []types.Column{
		pk("classroom_id"), text("room_number"), num("capacity"), text("building_name"),
	}
	scheduleColumns = []types.Column{
		pk("schedule_id"),
		fk("course_id", "courses", "course_id"),
		fk("classroom_id", "classrooms", "classroom_id"),
		fk("staff_id", "staff", "staff_id"),
		text("day_of_week"),
		{Name: "start_time", Kind: types.KindTime},
		{Name: "end_time", Kind: types.KindTime},
	}
	enrollmentColumns = []types.Column{
		pk("enrollment_id"),
		fk("student_id", "students", "student_id"),
		fk("course_id", "courses", "course_id"),
		date("enrollment_date"),
	}
	gradeColumns = []types.Column{
		pk("grade_id"),
		fk("student_id", "students", "student_id"),
		fk("course_id", "courses", "course_id"),
		text("grade"),
		date("graded_on"),
	}
	attendanceColumns = []types.Column{
		pk("attendance_id"),
		fk("student_id", "students", "student_id"),
		fk("schedule_id", "schedules", "schedule_id"),
		date("attendance_date"),
		text("status"),
	}
	libraryColumns = []types.Column{
		pk("library_id"), text("library_name"), text("location"), num("capacity"),
	}
	bookColumns = []types.Column{
		pk("book_id"), text("title"), text("author"), text("isbn"),
		fk("library_id", "libraries", "library_id"),
	}
	libraryMembershipColumns = []types.Column{
		pk("membership_id"),
		fk("student_id", "students", "student_id"),
		fk("library_id", "libraries", "library_id"),
		date("start_date"),
		{Name: "end_date", Kind: types.KindDate, Nullable: true},
	}
	borrowedBookColumns = []types.Column{
		pk("borrow_id"),
		fk("membership_id", "library_memberships", "membership_id"),
		fk("book_id", "books", "book_id"),
		date("borrowed_on"),
		date("due_date"),
		{Name: "returned_on", Kind: types.KindDate, Nullable: true},
	}
	eventColumns = []types.Column{
		pk("event_id"), text("event_name"), date("event_date"), text("location"),
		fk("organized_by", "staff", "staff_id"),
	}
	studentClubColumns = []types.Column{
		pk("club_id"), text("club_name"), date("created_on"),
		fk("advisor_id", "staff", "staff_id"),
	}
	clubMembershipColumns = []types.Column{
		pk("membership_id"),
		fk("student_id", "students", "student_id"),
		fk("club_id", "student_clubs", "club_id"),
		date("joined_on"),
		text("role"),
	}
)

// build creates a table of n rows with ids 1..n.
func build(name string, columns []types.Column, n int, fill func(id int) (types.Row, error)) (*types.Table, error) {
	table := types.NewTable(name, columns, n)
	for id := 1; id <= n; id++ {
		row, err := fill(id)
		if err != nil {
			return nil, fmt.Errorf("table %s row %d: %w", name, id, err)
		}
		if err := table.Append(row); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// parentKeys returns the key set a dependent table samples from. An empty
// parent is only an error when rows are requested.
func parentKeys(child string, parent *types.Table, n int) ([]int, error) {
	if n == 0 {
		return nil, nil
	}
	if parent == nil {
		return nil, fmt.Errorf("%s: %w: parent table missing", child, ErrEmptyParent)
	}
	keys := parent.Keys()
	if len(keys) == 0 {
		return nil, fmt.Errorf("%s: %w: %s", child, ErrEmptyParent, parent.Name)
	}
	return keys, nil
}

func GenerateDepartments(g *DataGenerator, n int) (*types.Table, error) {
	return build("Departments", departmentColumns, n, func(id int) (types.Row, error) {
		name, err := g.Field("departments", "department_name", func() string {
			return "Department " + g.Word()
		})
		if err != nil {
			return nil, err
		}
		return types.Row{id, name, types.None[int]()}, nil
	})
}

func GenerateStaff(g *DataGenerator, n int, departments *types.Table) (*types.Table, error) {
	deptIDs, err := parentKeys("Staff", departments, n)
	if err != nil {
		return nil, err
	}
	return build("Staff", staffColumns, n, func(id int) (types.Row, error) {
		first, err := g.Field("staff", "first_name", g.FirstName)
		if err != nil {
			return nil, err
		}
		last, err := g.Field("staff", "last_name", g.LastName)
		if err != nil {
			return nil, err
		}
		email, err := g.Field("staff", "email", g.Email)
		if err != nil {
			return nil, err
		}
		return types.Row{
			id, first, last, email,
			g.DateOfBirth(25, 60),
			g.dateIn(hireWindow),
			g.Pick(deptIDs),
		}, nil
	})
}

func GenerateStudents(g *DataGenerator, n int) (*types.Table, error) {
	return build("Students", studentColumns, n, func(id int) (types.Row, error) {
		first, err := g.Field("students", "first_name", g.FirstName)
		if err != nil {
			return nil, err
		}
		last, err := g.Field("students", "last_name", g.LastName)
		if err != nil {
			return nil, err
		}
		email, err := g.Field("students", "email", g.Email)
		if err != nil {
			return nil, err
		}
		return types.Row{
			id, first, last, email,
			g.DateOfBirth(18, 25),
			g.Choice(genders),
			g.dateIn(enrollmentWindow),
		}, nil
	})
}

func GenerateCourses(g *DataGenerator, n int, departments *types.Table) (*types.Table, error) {
	deptIDs, err := parentKeys("Courses", departments, n)
	if err != nil {
		return nil, err
	}
	return build("Courses", courseColumns, n, func(id int) (types.Row, error) {
		name, err := g.Field("courses", "course_name", func() string {
			return g.Word() + " 101"
		})
		if err != nil {
			return nil, err
		}
		description, err := g.Field("courses", "course_description", func() string {
			return g.Text(200)
		})
		if err != nil {
			return nil, err
		}
		return types.Row{id, name, description, g.IntBetween(1, 5), g.Pick(deptIDs)}, nil
	})
}

func GenerateClassrooms(g *DataGenerator, n int) (*types.Table, error) {
	return build("Classrooms", classroomColumns, n, func(id int) (types.Row, error) {
		return types.Row{
			id,
			fmt.Sprintf("Room %d", id),
			g.IntBetween(20, 100),
			fmt.Sprintf("Building %d", g.IntBetween(1, 5)),
		}, nil
	})
}

func GenerateSchedules(g *DataGenerator, n int, courses, classrooms, staff *types.Table) (*types.Table, error) {
	courseIDs, err := parentKeys("Schedules", courses, n)
	if err != nil {
		return nil, err
	}
	roomIDs, err := parentKeys("Schedules", classrooms, n)
	if err != nil {
		return nil, err
	}
	staffIDs, err := parentKeys("Schedules", staff, n)
	if err != nil {
		return nil, err
	}
	return build("Schedules", scheduleColumns, n, func(id int) (types.Row, error) {
		return types.Row{
			id,
			g.Pick(courseIDs),
			g.Pick(roomIDs),
			g.Pick(staffIDs),
			g.Choice(weekdays),
			g.ClockTime(),
			g.ClockTime(),
		}, nil
	})
}

func GenerateEnrollments(g *DataGenerator, n int, students, courses *types.Table) (*types.Table, error) {
	studentIDs, err := parentKeys("Enrollments", students, n)
	if err != nil {
		return nil, err
	}
	courseIDs, err := parentKeys("Enrollments", courses, n)
	if err != nil {
		return nil, err
	}
	return build("Enrollments", enrollmentColumns, n, func(id int) (types.Row, error) {
		return types.Row{id, g.Pick(studentIDs), g.Pick(courseIDs), g.dateIn(enrollmentWindow)}, nil
	})
}

func GenerateGrades(g *DataGenerator, n int, students, courses *types.Table) (*types.Table, error) {
	studentIDs, err := parentKeys("Grades", students, n)
	if err != nil {
		return nil, err
	}
	courseIDs, err := parentKeys("Grades", courses, n)
	if err != nil {
		return nil, err
	}
	return build("Grades", gradeColumns, n, func(id int) (types.Row, error) {
		return types.Row{id, g.Pick(studentIDs), g.Pick(courseIDs), g.Choice(grades), g.dateIn(recentWindow)}, nil
	})
}

func GenerateAttendance(g *DataGenerator, n int, students, schedules *types.Table) (*types.Table, error) {
	studentIDs, err := parentKeys("Attendance", students, n)
	if err != nil {
		return nil, err
	}
	scheduleIDs, err := parentKeys("Attendance", schedules, n)
	if err != nil {
		return nil, err
	}
	return build("Attendance", attendanceColumns, n, func(id int) (types.Row, error) {
		return types.Row{id, g.Pick(studentIDs), g.Pick(scheduleIDs), g.dateIn(recentWindow), g.Choice(attendance)}, nil
	})
}

func GenerateLibraries(g *DataGenerator, n int) (*types.Table, error) {
	return build("Libraries", libraryColumns, n, func(id int) (types.Row, error) {
		name, err := g.Field("libraries", "library_name", func() string {
			return "Library " + g.Word()
		})
		if err != nil {
			return nil, err
		}
		location, err := g.Field("libraries", "location", g.Address)
		if err != nil {
			return nil, err
		}
		return types.Row{id, name, location, g.IntBetween(50, 500)}, nil
	})
}

func GenerateBooks(g *DataGenerator, n int, libraries *types.Table) (*types.Table, error) {
	libraryIDs, err := parentKeys("Books", libraries, n)
	if err != nil {
		return nil, err
	}
	return build("Books", bookColumns, n, func(id int) (types.Row, error) {
		title, err := g.Field("books", "title", func() string { return g.Title(50) })
		if err != nil {
			return nil, err
		}
		author, err := g.Field("books", "author", g.Name)
		if err != nil {
			return nil, err
		}
		isbn, err := g.Field("books", "isbn", g.ISBN13)
		if err != nil {
			return nil, err
		}
		return types.Row{id, title, author, isbn, g.Pick(libraryIDs)}, nil
	})
}

// GenerateLibraryMemberships leaves end_date unset with probability endUnset.
func GenerateLibraryMemberships(g *DataGenerator, n int, students, libraries *types.Table, endUnset float64) (*types.Table, error) {
	studentIDs, err := parentKeys("LibraryMemberships", students, n)
	if err != nil {
		return nil, err
	}
	libraryIDs, err := parentKeys("LibraryMemberships", libraries, n)
	if err != nil {
		return nil, err
	}
	return build("LibraryMemberships", libraryMembershipColumns, n, func(id int) (types.Row, error) {
		return types.Row{
			id,
			g.Pick(studentIDs),
			g.Pick(libraryIDs),
			g.dateIn(enrollmentWindow),
			g.optionalDate(endUnset, futureWindow),
		}, nil
	})
}

// GenerateBorrowedBooks leaves returned_on unset with probability returnUnset.
func GenerateBorrowedBooks(g *DataGenerator, n int, memberships, books *types.Table, returnUnset float64) (*types.Table, error) {
	membershipIDs, err := parentKeys("BorrowedBooks", memberships, n)
	if err != nil {
		return nil, err
	}
	bookIDs, err := parentKeys("BorrowedBooks", books, n)
	if err != nil {
		return nil, err
	}
	return build("BorrowedBooks", borrowedBookColumns, n, func(id int) (types.Row, error) {
		return types.Row{
			id,
			g.Pick(membershipIDs),
			g.Pick(bookIDs),
			g.dateIn(recentWindow),
			g.dateIn(futureWindow),
			g.optionalDate(returnUnset, futureWindow),
		}, nil
	})
}

func GenerateEvents(g *DataGenerator, n int, staff *types.Table) (*types.Table, error) {
	staffIDs, err := parentKeys("Events", staff, n)
	if err != nil {
		return nil, err
	}
	return build("Events", eventColumns, n, func(id int) (types.Row, error) {
		name, err := g.Field("events", "event_name", func() string { return g.Title(50) })
		if err != nil {
			return nil, err
		}
		location, err := g.Field("events", "location", g.Address)
		if err != nil {
			return nil, err
		}
		return types.Row{id, name, g.dateIn(eventWindow), location, g.Pick(staffIDs)}, nil
	})
}

func GenerateStudentClubs(g *DataGenerator, n int, staff *types.Table) (*types.Table, error) {
	staffIDs, err := parentKeys("StudentClubs", staff, n)
	if err != nil {
		return nil, err
	}
	return build("StudentClubs", studentClubColumns, n, func(id int) (types.Row, error) {
		name, err := g.Field("student_clubs", "club_name", func() string {
			return "Club " + g.Word()
		})
		if err != nil {
			return nil, err
		}
		return types.Row{id, name, g.dateIn(enrollmentWindow), g.Pick(staffIDs)}, nil
	})
}

func GenerateClubMemberships(g *DataGenerator, n int, students, clubs *types.Table) (*types.Table, error) {
	studentIDs, err := parentKeys("ClubMemberships", students, n)
	if err != nil {
		return nil, err
	}
	clubIDs, err := parentKeys("ClubMemberships", clubs, n)
	if err != nil {
		return nil, err
	}
	return build("ClubMemberships", clubMembershipColumns, n, func(id int) (types.Row, error) {
		return types.Row{id, g.Pick(studentIDs), g.Pick(clubIDs), g.dateIn(enrollmentWindow), g.Choice(clubRoles)}, nil
	})
}

func (g *DataGenerator) optionalDate(unset float64, w window) types.Optional[time.Time] {
	if g.Chance(unset) {
		return types.None[time.Time]()
	}
	return types.Some(g.dateIn(w))
}
