package seeder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

func smallCounts() map[string]int {
	return map[string]int{
		"departments":         5,
		"staff":               20,
		"students":            60,
		"courses":             10,
		"classrooms":          4,
		"schedules":           15,
		"enrollments":         80,
		"grades":              40,
		"attendance":          80,
		"libraries":           3,
		"books":               30,
		"library_memberships": 40,
		"borrowed_books":      60,
		"events":              8,
		"student_clubs":       5,
		"club_memberships":    40,
	}
}

func seedSmall(t *testing.T, seed int64) *Dataset {
	t.Helper()
	s := NewSeeder(newTestGenerator(seed, DefaultUnique()...), zap.NewNop())
	ds, err := s.Seed(SeedConfig{Counts: smallCounts(), Probabilities: DefaultProbabilities()})
	require.NoError(t, err)
	return ds
}

func TestSeedPrimaryKeysAreContiguous(t *testing.T) {
	ds := seedSmall(t, 42)
	require.Len(t, ds.Tables, 16)

	for key, table := range ds.Tables {
		keys := table.Keys()
		require.Len(t, keys, smallCounts()[key], table.Name)
		for i, k := range keys {
			assert.Equal(t, i+1, k, "%s row %d", table.Name, i)
		}
	}
}

func TestSeedForeignKeysResolve(t *testing.T) {
	ds := seedSmall(t, 43)

	for _, table := range ds.Tables {
		for _, col := range table.Columns {
			if !col.IsFK() {
				continue
			}
			parent, ok := ds.Tables[col.RefTable]
			require.True(t, ok, "%s.%s references missing %s", table.Name, col.Name, col.RefTable)
			assert.Equal(t, col.RefColumn, parent.PrimaryKey())

			valid := make(map[int]bool)
			for _, k := range parent.Keys() {
				valid[k] = true
			}
			for i, v := range table.Values(col.Name) {
				ref, ok := types.Unwrap(v).(int)
				require.True(t, ok, "%s.%s row %d is %T", table.Name, col.Name, i, v)
				assert.True(t, valid[ref], "%s.%s row %d dangles: %d", table.Name, col.Name, i, ref)
			}
		}
	}
}

func TestSeedHeadsOfDepartmentAreDistinct(t *testing.T) {
	ds := seedSmall(t, 44)
	seen := make(map[int]bool)
	for _, v := range ds.Tables["departments"].Values("hod_id") {
		head, ok := v.(types.Optional[int]).Get()
		require.True(t, ok)
		assert.False(t, seen[head], "head %d assigned twice", head)
		seen[head] = true
	}
}

func TestSeedUniqueEmails(t *testing.T) {
	ds := seedSmall(t, 45)
	for _, key := range []string{"staff", "students"} {
		seen := make(map[string]bool)
		for _, v := range ds.Tables[key].Values("email") {
			email := v.(string)
			assert.False(t, seen[email], "%s email %s repeated", key, email)
			seen[email] = true
		}
		idx := ds.Tables[key].ColumnIndex("email")
		assert.True(t, ds.Tables[key].Columns[idx].Unique)
	}
}

func TestSeedDatesWithinWindows(t *testing.T) {
	ds := seedSmall(t, 46)
	now := testNow

	within := func(t *testing.T, table, column string, w window) {
		values := ds.Tables[table].Values(column)
		require.NotEmpty(t, values, "%s.%s", table, column)
		for _, v := range values {
			raw := types.Unwrap(v)
			if raw == nil {
				continue
			}
			d := raw.(time.Time)
			assert.False(t, d.Before(w.start), "%s.%s %s", table, column, d)
			assert.False(t, d.After(w.end), "%s.%s %s", table, column, d)
		}
	}

	within(t, "staff", "hire_date", hireWindow)
	within(t, "students", "enrollment_date", enrollmentWindow)
	within(t, "enrollments", "enrollment_date", enrollmentWindow)
	within(t, "library_memberships", "start_date", enrollmentWindow)
	within(t, "student_clubs", "created_on", enrollmentWindow)
	within(t, "club_memberships", "joined_on", enrollmentWindow)
	within(t, "grades", "graded_on", recentWindow)
	within(t, "attendance", "attendance_date", recentWindow)
	within(t, "borrowed_books", "borrowed_on", recentWindow)
	within(t, "library_memberships", "end_date", futureWindow)
	within(t, "borrowed_books", "returned_on", futureWindow)
	within(t, "borrowed_books", "due_date", futureWindow)
	within(t, "events", "event_date", eventWindow)

	for _, v := range ds.Tables["students"].Values("dob") {
		age := ageAt(now, v.(time.Time))
		assert.GreaterOrEqual(t, age, 18)
		assert.LessOrEqual(t, age, 25)
	}
	for _, v := range ds.Tables["staff"].Values("dob") {
		age := ageAt(now, v.(time.Time))
		assert.GreaterOrEqual(t, age, 25)
		assert.LessOrEqual(t, age, 60)
	}
}

func TestOptionalColumnsUnsetRate(t *testing.T) {
	g := newTestGenerator(47)
	students, err := GenerateStudents(g, 50)
	require.NoError(t, err)
	libraries, err := GenerateLibraries(g, 3)
	require.NoError(t, err)
	books, err := GenerateBooks(g, 20, libraries)
	require.NoError(t, err)

	const n = 20000
	memberships, err := GenerateLibraryMemberships(g, n, students, libraries, 0.2)
	require.NoError(t, err)
	borrows, err := GenerateBorrowedBooks(g, n, memberships, books, 0.3)
	require.NoError(t, err)

	unsetRate := func(table *types.Table, column string) float64 {
		unset := 0
		for _, v := range table.Values(column) {
			if !types.IsSet(v) {
				unset++
			}
		}
		return float64(unset) / float64(table.Len())
	}

	assert.InDelta(t, 0.2, unsetRate(memberships, "end_date"), 0.02)
	assert.InDelta(t, 0.3, unsetRate(borrows, "returned_on"), 0.02)
}

func TestAssignHeadsUndersupply(t *testing.T) {
	g := newTestGenerator(48)
	departments, err := GenerateDepartments(g, 10)
	require.NoError(t, err)
	staff, err := GenerateStaff(g, 5, departments)
	require.NoError(t, err)

	err = AssignHeads(g, departments, staff)
	assert.ErrorIs(t, err, ErrUndersupply)
}

func TestSeedUndersupplyFails(t *testing.T) {
	s := NewSeeder(newTestGenerator(49), nil)
	counts := smallCounts()
	counts["departments"] = 10
	counts["staff"] = 5

	_, err := s.Seed(SeedConfig{Counts: counts, Probabilities: DefaultProbabilities()})
	assert.ErrorIs(t, err, ErrUndersupply)
}

func TestGenerateZeroStudents(t *testing.T) {
	g := newTestGenerator(50)
	students, err := GenerateStudents(g, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, students.Len())
	assert.Equal(t, []string{"student_id", "first_name", "last_name", "email", "dob", "gender", "enrollment_date"}, students.Headers())
}

func TestSeedZeroStudentsWithDependentsEmpty(t *testing.T) {
	counts := smallCounts()
	for _, key := range []string{"students", "enrollments", "grades", "attendance", "library_memberships", "borrowed_books", "club_memberships"} {
		counts[key] = 0
	}

	s := NewSeeder(newTestGenerator(51), nil)
	ds, err := s.Seed(SeedConfig{Counts: counts, Probabilities: DefaultProbabilities()})
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Tables["students"].Len())
	assert.NotEmpty(t, ds.Tables["students"].Headers())
}

func TestDependentOnEmptyParentFails(t *testing.T) {
	g := newTestGenerator(52)
	students, err := GenerateStudents(g, 0)
	require.NoError(t, err)
	departments, err := GenerateDepartments(g, 2)
	require.NoError(t, err)
	courses, err := GenerateCourses(g, 2, departments)
	require.NoError(t, err)

	_, err = GenerateEnrollments(g, 3, students, courses)
	assert.ErrorIs(t, err, ErrEmptyParent)
}

func TestSeedRejectsUnknownCount(t *testing.T) {
	s := NewSeeder(newTestGenerator(53), nil)
	_, err := s.Seed(SeedConfig{Counts: map[string]int{"dormitories": 3}})
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestSeedUsesDefaultCounts(t *testing.T) {
	s := NewSeeder(newTestGenerator(54, DefaultUnique()...), nil)
	ds, err := s.Seed(SeedConfig{Probabilities: DefaultProbabilities()})
	require.NoError(t, err)

	for _, e := range s.Entities() {
		assert.Equal(t, e.DefaultCount, ds.Tables[e.Key].Len(), e.Name)
	}
}

func TestSeedReproducibleWithSeed(t *testing.T) {
	a := seedSmall(t, 99)
	b := seedSmall(t, 99)
	for key := range a.Tables {
		assert.Equal(t, a.Tables[key].Rows, b.Tables[key].Rows, key)
	}
}

func TestSeedWithoutSeedVaries(t *testing.T) {
	run := func() *Dataset {
		s := NewSeeder(NewDataGenerator(GeneratorOptions{Unique: DefaultUnique()}), nil)
		ds, err := s.Seed(SeedConfig{Counts: smallCounts(), Probabilities: DefaultProbabilities()})
		require.NoError(t, err)
		return ds
	}

	a := run()
	time.Sleep(time.Millisecond)
	b := run()

	for key := range a.Tables {
		assert.Equal(t, a.Tables[key].Headers(), b.Tables[key].Headers())
	}
	assert.NotEqual(t, a.Tables["students"].Values("email"), b.Tables["students"].Values("email"))
}

func TestOrderedFollowsRegistration(t *testing.T) {
	ds := seedSmall(t, 55)
	var names []string
	for _, table := range ds.Ordered() {
		names = append(names, table.Name)
	}
	assert.Equal(t, []string{
		"Departments", "Staff", "Students", "Courses", "Classrooms", "Schedules",
		"Enrollments", "Grades", "Attendance", "Libraries", "Books",
		"LibraryMemberships", "BorrowedBooks", "Events", "StudentClubs", "ClubMemberships",
	}, names)
}

func TestValidateUnique(t *testing.T) {
	s := NewSeeder(newTestGenerator(56), nil)
	assert.NoError(t, s.ValidateUnique(DefaultUnique()))
	assert.NoError(t, s.ValidateUnique([]string{"Books.Title"}))
	assert.Error(t, s.ValidateUnique([]string{"books"}))
	assert.ErrorIs(t, s.ValidateUnique([]string{"dorms.name"}), ErrUnknownEntity)
	assert.Error(t, s.ValidateUnique([]string{"books.publisher"}))
	assert.Error(t, s.ValidateUnique([]string{"books.book_id"}))
}

func TestSeedObservesEveryTable(t *testing.T) {
	s := NewSeeder(newTestGenerator(57, DefaultUnique()...), nil)
	observed := make(map[string]int)

	_, err := s.Seed(SeedConfig{
		Counts:        smallCounts(),
		Probabilities: DefaultProbabilities(),
		Observe: func(table string, rows int, took time.Duration) {
			observed[table] = rows
		},
	})
	require.NoError(t, err)
	assert.Len(t, observed, 16)
	assert.Equal(t, 60, observed["Students"])
	assert.Equal(t, 60, observed["BorrowedBooks"])
}

func TestSeedTextColumnsVary(t *testing.T) {
	counts := smallCounts()
	counts["courses"] = 200
	counts["books"] = 300
	counts["events"] = 200

	s := NewSeeder(newTestGenerator(58), nil)
	ds, err := s.Seed(SeedConfig{Counts: counts, Probabilities: DefaultProbabilities()})
	require.NoError(t, err)

	distinct := func(table, column string) float64 {
		values := ds.Tables[table].Values(column)
		seen := make(map[any]bool, len(values))
		for _, v := range values {
			seen[v] = true
		}
		return float64(len(seen)) / float64(len(values))
	}

	assert.Greater(t, distinct("courses", "course_description"), 0.9)
	assert.Greater(t, distinct("books", "title"), 0.9)
	assert.Greater(t, distinct("events", "event_name"), 0.9)
	assert.Greater(t, distinct("libraries", "location"), 0.9)
}

func TestSeedUniqueBookTitles(t *testing.T) {
	s := NewSeeder(newTestGenerator(59, "books.title"), nil)
	require.NoError(t, s.ValidateUnique([]string{"books.title"}))

	ds, err := s.Seed(SeedConfig{Counts: smallCounts(), Probabilities: DefaultProbabilities()})
	require.NoError(t, err)

	seen := make(map[any]bool)
	for _, v := range ds.Tables["books"].Values("title") {
		assert.False(t, seen[v], "duplicate title %v", v)
		seen[v] = true
	}
}

func TestSeedTwiceResetsUniqueValues(t *testing.T) {
	counts := map[string]int{"departments": 2, "staff": 2}
	entities := []*Entity{}
	for _, e := range Entities() {
		if e.Key == "departments" || e.Key == "staff" {
			entities = append(entities, e)
		}
	}
	s := NewSeeder(newTestGenerator(60, DefaultUnique()...), nil, entities...)

	for i := 0; i < 3; i++ {
		_, err := s.Seed(SeedConfig{Counts: counts, Probabilities: DefaultProbabilities()})
		require.NoError(t, err, "run %d", i)
	}
	for _, seen := range s.generator.seen {
		assert.LessOrEqual(t, len(seen), 2)
	}
}

func TestOrderIsResolvedOnce(t *testing.T) {
	s := NewSeeder(newTestGenerator(61), nil)
	assert.Nil(t, s.graph.GetOrder())

	first, err := s.Order()
	require.NoError(t, err)
	assert.Equal(t, first, s.graph.GetOrder())

	second, err := s.Order()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
