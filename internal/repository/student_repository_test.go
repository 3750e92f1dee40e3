package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightclass/results-api/internal/models"
)

func TestStudentRepositoryFindDecodesJSON(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	scores := []byte(`{"Physics":{"exam_mode":"separate","tests":[10,12],"total_test":22,"objective":25,"theory":30,"total_exam":55,"overall_mark":77,"grade":"A"}}`)
	rows := sqlmock.NewRows([]string{
		"school_id", "student_id", "firstname", "classname", "first_year_class", "term",
		"stream", "number_of_subject", "subjects", "scores", "teacher_comment", "promoted", "updated_at",
	}).AddRow("sch1", "stu1", "Ada", "SS2", "SS1", "First Term",
		"Science", 1, []byte(`["Physics"]`), scores, "", false, time.Now())
	mock.ExpectQuery("SELECT (.+) FROM students").
		WithArgs("sch1", "stu1").
		WillReturnRows(rows)

	record, err := repo.Find(context.Background(), "sch1", "stu1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Science", record.Stream)

	block := record.Scores["Physics"]
	assert.Equal(t, models.ExamModeSeparate, block.ExamMode)
	assert.Equal(t, []float64{10, 12}, block.Tests)
	assert.InDelta(t, 55.0, block.TotalExamValue(), 1e-9)
	assert.InDelta(t, 77.0, block.OverallMarkValue(), 1e-9)
}

func TestStudentRepositoryFindAbsentReturnsNil(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectQuery("SELECT (.+) FROM students").
		WithArgs("sch1", "ghost").
		WillReturnRows(sqlmock.NewRows([]string{"school_id"}))

	record, err := repo.Find(context.Background(), "sch1", "ghost")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestStudentRepositoryUpsertSetsSubjectCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec("INSERT INTO students").
		WithArgs("sch1", "stu1", "Ada", "JSS1", "", "First Term", models.StreamUnassigned, 2,
			sqlmock.AnyArg(), sqlmock.AnyArg(), "", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.StudentRecord{
		SchoolID:  "sch1",
		StudentID: "stu1",
		FirstName: "Ada",
		ClassName: "JSS1",
		Term:      "First Term",
		Stream:    models.StreamUnassigned,
		Subjects:  []string{"Mathematics", "English"},
	}
	require.NoError(t, repo.Upsert(context.Background(), record))
	assert.Equal(t, 2, record.SubjectCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRolloverCopiesAssignmentsAndMovesStudents(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRolloverRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO class_assignments").
		WithArgs("sch1", "First Term", "2025/2026", "Second Term", "2025/2026").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("UPDATE students SET").
		WithArgs("sch1", "First Term", "Second Term", sqlmock.AnyArg(), models.ClassGraduated).
		WillReturnResult(sqlmock.NewResult(0, 30))
	mock.ExpectCommit()

	result, err := repo.Rollover(context.Background(), "sch1", "First Term", "2025/2026", "Second Term", "2025/2026")
	require.NoError(t, err)
	assert.Equal(t, 4, result.AssignmentsCopied)
	assert.Equal(t, 30, result.StudentsMoved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPromotionsRunsInOneTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRolloverRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE students SET").
		WithArgs("sch1", "stu1", "SS1", "Science", sqlmock.AnyArg(), 3, []byte(`{}`), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM students").
		WithArgs("sch1", "stu2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ApplyPromotions(context.Background(), "sch1", []PromotionUpdate{
		{StudentID: "stu1", ClassName: "SS1", Stream: "Science", Subjects: []string{"Mathematics", "English", "Physics"}, Promoted: true},
		{StudentID: "stu2", Remove: true},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPromotionsClearsScoresAndRepeatFlag(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRolloverRepository(db)

	// Both transitions start the new class from an empty score map, and a
	// repeating student is not flagged promoted.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE students SET").
		WithArgs("sch1", "stu1", "JSS2", models.StreamUnassigned, sqlmock.AnyArg(), 2, []byte(`{}`), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE students SET").
		WithArgs("sch1", "stu2", "JSS1", models.StreamUnassigned, sqlmock.AnyArg(), 2, []byte(`{}`), false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ApplyPromotions(context.Background(), "sch1", []PromotionUpdate{
		{StudentID: "stu1", ClassName: "JSS2", Stream: models.StreamUnassigned, Subjects: []string{"Mathematics", "English"}, Promoted: true},
		{StudentID: "stu2", ClassName: "JSS1", Stream: models.StreamUnassigned, Subjects: []string{"Mathematics", "English"}, Promoted: false},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRolloverLeavesPublishedSnapshotsUntouched(t *testing.T) {
	var executed []string
	recorder := sqlmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
		executed = append(executed, actualSQL)
		return nil
	})
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(recorder))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	defer func() {
		sqlxDB.Close()
		db.Close()
	}()

	repo := NewRolloverRepository(sqlxDB)

	mock.ExpectBegin()
	mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(0, 30))
	mock.ExpectCommit()

	_, err = repo.Rollover(context.Background(), "sch1", "First Term", "2025/2026", "Second Term", "2025/2026")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	// A term transition writes assignments and working records only; the
	// frozen result sheets stay out of reach.
	require.Len(t, executed, 2)
	for _, stmt := range executed {
		assert.NotContains(t, stmt, "published_student_results")
	}
}
