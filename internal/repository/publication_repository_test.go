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
	appErrors "github.com/brightclass/results-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func testGate() models.PublicationGate {
	return models.PublicationGate{
		SchoolID:     "sch1",
		ClassName:    "JSS1",
		Term:         "First Term",
		AcademicYear: "2025/2026",
		TeacherID:    "t1",
		TeacherName:  "Mr. Ade",
	}
}

func testSnapshot() models.PublishedSnapshot {
	overall := 75.0
	return models.PublishedSnapshot{
		SchoolID:     "sch1",
		StudentID:    "stu1",
		FirstName:    "Ada",
		ClassName:    "JSS1",
		AcademicYear: "2025/2026",
		Term:         "First Term",
		Stream:       models.StreamUnassigned,
		SubjectCount: 1,
		Subjects:     []string{"Mathematics"},
		Scores: models.ScoreMap{
			"Mathematics": {ExamMode: models.ExamModeCombined, OverallMark: &overall, Grade: "A"},
		},
		AverageMarks: 75,
		Grade:        "A",
		Status:       "Pass",
	}
}

func TestPublishClassCommitsSnapshotsAndGate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPublicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_published FROM result_publications").
		WithArgs("sch1", "JSS1", "First Term", "2025/2026").
		WillReturnRows(sqlmock.NewRows([]string{"is_published"}).AddRow(false))
	mock.ExpectExec("INSERT INTO published_student_results").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO result_publications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.PublishClass(context.Background(), testGate(), []models.PublishedSnapshot{testSnapshot()})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishClassAbortsWhenGateAlreadyPublished(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPublicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_published FROM result_publications").
		WithArgs("sch1", "JSS1", "First Term", "2025/2026").
		WillReturnRows(sqlmock.NewRows([]string{"is_published"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.PublishClass(context.Background(), testGate(), []models.PublishedSnapshot{testSnapshot()})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyPublished, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishClassFirstPublishHasNoGateRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPublicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_published FROM result_publications").
		WithArgs("sch1", "JSS1", "First Term", "2025/2026").
		WillReturnRows(sqlmock.NewRows([]string{"is_published"}))
	mock.ExpectExec("INSERT INTO published_student_results").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO result_publications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.PublishClass(context.Background(), testGate(), []models.PublishedSnapshot{testSnapshot()})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetGateAbsentReturnsNil(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPublicationRepository(db)
	mock.ExpectQuery("SELECT school_id, classname, term").
		WithArgs("sch1", "JSS1", "First Term", "").
		WillReturnRows(sqlmock.NewRows([]string{"school_id"}))

	gate, err := repo.GetGate(context.Background(), "sch1", "JSS1", "First Term", "")
	require.NoError(t, err)
	assert.Nil(t, gate)
}

func TestLoadSnapshotDecodesScores(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPublicationRepository(db)
	scores := []byte(`{"Mathematics":{"exam_mode":"combined","total_test":25,"total_exam":50,"overall_mark":75,"grade":"A"}}`)
	rows := sqlmock.NewRows([]string{
		"school_id", "student_id", "firstname", "classname", "academic_year", "term",
		"stream", "number_of_subject", "subjects", "scores", "teacher_comment",
		"average_marks", "grade", "status", "published_at",
	}).AddRow("sch1", "stu1", "Ada", "JSS1", "2025/2026", "First Term",
		"N/A", 1, []byte(`["Mathematics"]`), scores, "Keep it up",
		75.0, "A", "Pass", time.Now())
	mock.ExpectQuery("SELECT (.+) FROM published_student_results").
		WithArgs("sch1", "stu1", "First Term", "2025/2026").
		WillReturnRows(rows)

	snapshot, err := repo.LoadSnapshot(context.Background(), "sch1", "stu1", "First Term", "2025/2026", "")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, []string{"Mathematics"}, snapshot.Subjects)
	block := snapshot.Scores["Mathematics"]
	assert.InDelta(t, 75.0, block.OverallMarkValue(), 1e-9)
	assert.InDelta(t, 25.0, block.TotalTestValue(), 1e-9)
	assert.Equal(t, "A", block.Grade)
}
