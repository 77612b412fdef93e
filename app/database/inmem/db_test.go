package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

// clock hands out strictly increasing timestamps.
func clock(db *DB) {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	db.Now = func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestUserUniqueness(t *testing.T) {
	ctx := context.Background()
	db := Open()

	first := &models.User{Name: "Sara", Role: models.RoleStudent, Phone: "0100", Roll: null.StringFrom("R-1")}
	require.NoError(t, db.CreateUser(ctx, first))

	err := db.CreateUser(ctx, &models.User{Name: "Sam", Role: models.RoleStudent, Phone: "0100"})
	assert.True(t, core.IsConstraint(err))
	err = db.CreateUser(ctx, &models.User{Name: "Sam", Role: models.RoleStudent, Phone: "0101", Roll: null.StringFrom("R-1")})
	assert.True(t, core.IsConstraint(err))

	second := &models.User{Name: "Sam", Role: models.RoleStudent, Phone: "0101"}
	require.NoError(t, db.CreateUser(ctx, second))
	second.Phone = "0100"
	assert.True(t, core.IsConstraint(db.UpdateUser(ctx, second)))

	first.Name = "Sara K"
	require.NoError(t, db.UpdateUser(ctx, first), "a user does not conflict with itself")
}

func TestCreateStudentWithEnrollment(t *testing.T) {
	ctx := context.Background()
	db := Open()
	course := &models.Course{Name: "Algorithms", Code: "CS201"}
	require.NoError(t, db.CreateCourse(ctx, course))

	err := db.CreateStudentWithEnrollment(ctx, &models.User{Name: "Ghost", Role: models.RoleStudent, Phone: "0100"}, 999)
	assert.True(t, core.IsConstraint(err))
	_, err = db.GetUserByPhone(ctx, "0100")
	assert.True(t, core.IsNotFound(err), "no user is left behind without an enrollment")

	usr := &models.User{Name: "Nadia", Role: models.RoleStudent, Phone: "0100"}
	require.NoError(t, db.CreateStudentWithEnrollment(ctx, usr, course.ID))
	ok, err := db.IsEnrolled(ctx, usr.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReplaceEnrollmentsIsAtomic(t *testing.T) {
	ctx := context.Background()
	db := Open()
	a := &models.Course{Name: "Algebra", Code: "MA1"}
	b := &models.Course{Name: "Biology", Code: "BI1"}
	require.NoError(t, db.CreateCourse(ctx, a))
	require.NoError(t, db.CreateCourse(ctx, b))

	require.NoError(t, db.ReplaceEnrollments(ctx, 42, []int64{a.ID}))
	err := db.ReplaceEnrollments(ctx, 42, []int64{b.ID, 999})
	assert.True(t, core.IsConstraint(err))

	courses, err := db.ListEnrolledCourses(ctx, 42)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, a.ID, courses[0].ID)
}

func TestDeleteCourseCascades(t *testing.T) {
	ctx := context.Background()
	db := Open()
	course := &models.Course{Name: "Algorithms", Code: "CS201", SyllabusPDF: null.StringFrom("s.pdf")}
	other := &models.Course{Name: "Biology", Code: "BI1"}
	require.NoError(t, db.CreateCourse(ctx, course))
	require.NoError(t, db.CreateCourse(ctx, other))
	require.NoError(t, db.ReplaceEnrollments(ctx, 42, []int64{course.ID, other.ID}))
	require.NoError(t, db.CreateResource(ctx, &models.Resource{CourseID: course.ID, Filename: "b.pdf", Title: "B"}))
	require.NoError(t, db.CreateResource(ctx, &models.Resource{CourseID: course.ID, Filename: "a.pdf", Title: "A"}))
	require.NoError(t, db.CreateResource(ctx, &models.Resource{CourseID: other.ID, Filename: "keep.pdf", Title: "K"}))
	require.NoError(t, db.CreateVideo(ctx, &models.Video{CourseID: course.ID, Title: "V", EmbedCode: "<iframe></iframe>"}))
	require.NoError(t, db.CreateUpdate(ctx, &models.Update{CourseID: course.ID, Title: "U"}))

	orphans, err := db.DeleteCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf", "s.pdf"}, orphans)

	stats, err := db.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCourses)
	assert.Equal(t, 1, stats.TotalResources)
	assert.Zero(t, stats.TotalVideos)
	assert.Zero(t, stats.TotalUpdates)

	enrolled, err := db.ListEnrolledCourses(ctx, 42)
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, other.ID, enrolled[0].ID)

	stored, err := db.ListStoredFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.pdf"}, stored)
}

func TestListUpdates(t *testing.T) {
	ctx := context.Background()
	db := Open()
	clock(db)
	teacher := &models.User{Name: "Tom", Role: models.RoleTeacher, Phone: "0200"}
	require.NoError(t, db.CreateUser(ctx, teacher))
	course := &models.Course{Name: "Algorithms", Code: "CS201"}
	other := &models.Course{Name: "Biology", Code: "BI1"}
	require.NoError(t, db.CreateCourse(ctx, course))
	require.NoError(t, db.CreateCourse(ctx, other))
	require.NoError(t, db.ReplaceEnrollments(ctx, 42, []int64{course.ID}))

	for i, courseID := range []int64{course.ID, other.ID, course.ID} {
		upd := &models.Update{CourseID: courseID, Title: string(rune('A' + i))}
		if i > 0 {
			upd.TeacherID = null.Int64From(teacher.ID)
		}
		require.NoError(t, db.CreateUpdate(ctx, upd))
	}
	err := db.CreateUpdate(ctx, &models.Update{CourseID: course.ID, TeacherID: null.Int64From(999), Title: "X"})
	assert.True(t, core.IsConstraint(err))

	titles := func(filter models.UpdateFilter) []string {
		updates, err := db.ListUpdates(ctx, filter)
		require.NoError(t, err)
		out := []string{}
		for _, upd := range updates {
			out = append(out, upd.Title)
		}
		return out
	}
	assert.Equal(t, []string{"C", "B", "A"}, titles(models.UpdateFilter{}))
	assert.Equal(t, []string{"C", "A"}, titles(models.UpdateFilter{StudentID: 42}))
	assert.Equal(t, []string{"C", "B"}, titles(models.UpdateFilter{TeacherID: teacher.ID}))
	assert.Equal(t, []string{"C"}, titles(models.UpdateFilter{StudentID: 42, Limit: 1}))

	updates, err := db.ListUpdates(ctx, models.UpdateFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "Tom", updates[0].AuthorName)
	assert.Equal(t, "CS201", updates[0].CourseCode)

	require.NoError(t, db.DeleteUser(ctx, teacher.ID))
	updates, err = db.ListUpdates(ctx, models.UpdateFilter{Limit: 1})
	require.NoError(t, err)
	assert.False(t, updates[0].TeacherID.Valid)
	assert.Empty(t, updates[0].AuthorName)
}

func TestListEventsOrder(t *testing.T) {
	ctx := context.Background()
	db := Open()
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	for _, e := range []*models.Event{
		{Title: "early", EventDate: day(1)},
		{Title: "late", EventDate: day(20)},
		{Title: "late again", EventDate: day(20)},
	} {
		require.NoError(t, db.CreateEvent(ctx, e))
	}
	events, err := db.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "late again", events[0].Title)
	assert.Equal(t, "late", events[1].Title)
	assert.Equal(t, "early", events[2].Title)

	assert.True(t, core.IsNotFound(db.UpdateEvent(ctx, &models.Event{ID: 999, Title: "x"})))
}
