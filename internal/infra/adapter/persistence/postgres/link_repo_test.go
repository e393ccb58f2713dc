package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"linktracker/internal/domain/entity"
	"linktracker/internal/infra/adapter/persistence/postgres"
)

func linkRows(links ...*entity.Link) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "chat_id", "url", "tags", "filters", "last_updated",
	})
	for _, l := range links {
		rows.AddRow(l.ID, l.ChatID, l.URL, []byte(`["work"]`), []byte(`["user:octocat"]`), l.LastUpdated)
	}
	return rows
}

func TestLinkRepo_GetLinks(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	lastUpdated := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	want := []*entity.Link{
		{
			ID: 1, ChatID: 42,
			URL:         "https://github.com/octocat/hello-world",
			Tags:        []string{"work"},
			Filters:     []string{"user:octocat"},
			LastUpdated: &lastUpdated,
		},
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, chat_id, url`)).
		WithArgs(int64(42)).
		WillReturnRows(linkRows(want...))

	repo := postgres.NewLinkRepo(db)
	got, err := repo.GetLinks(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetLinks err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLinkRepo_GetLinks_NegativeChatID(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := postgres.NewLinkRepo(db)
	_, err := repo.GetLinks(context.Background(), -7)
	if err == nil {
		t.Fatal("expected validation error for negative chat id")
	}
	var verr *entity.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *entity.ValidationError, got %T: %v", err, err)
	}
}

func TestLinkRepo_SetLastUpdated(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	stamp := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE links SET last_updated`)).
		WithArgs(stamp, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewLinkRepo(db)
	if err := repo.SetLastUpdated(context.Background(), 5, stamp); err != nil {
		t.Fatalf("SetLastUpdated err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLinkRepo_SetLastUpdated_Missing(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE links SET last_updated`)).
		WithArgs(sqlmock.AnyArg(), int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewLinkRepo(db)
	err := repo.SetLastUpdated(context.Background(), 999, time.Now())
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestLinkRepo_AddLink(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	link := &entity.Link{
		ChatID:  42,
		URL:     "https://github.com/octocat/hello-world",
		Tags:    []string{"work"},
		Filters: []string{"user:octocat"},
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM chats`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM links`)).
		WithArgs(int64(42), link.URL).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	// the nil input LastUpdated is replaced with a creation-time baseline
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO links`)).
		WithArgs(int64(42), link.URL, []byte(`["work"]`), []byte(`["user:octocat"]`), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	repo := postgres.NewLinkRepo(db)
	created, err := repo.AddLink(context.Background(), link)
	if err != nil {
		t.Fatalf("AddLink err=%v", err)
	}
	if created.ID != 7 {
		t.Errorf("created.ID = %d, want 7", created.ID)
	}
	if created.LastUpdated == nil {
		t.Fatal("fresh link should carry a baseline last_updated, got nil")
	}
	if age := time.Since(*created.LastUpdated); age < 0 || age > time.Minute {
		t.Errorf("baseline last_updated %v is not recent (age %v)", *created.LastUpdated, age)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLinkRepo_AddLink_Duplicate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	link := &entity.Link{ChatID: 42, URL: "https://github.com/octocat/hello-world"}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM chats`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM links`)).
		WithArgs(int64(42), link.URL).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	repo := postgres.NewLinkRepo(db)
	_, err := repo.AddLink(context.Background(), link)
	if !errors.Is(err, entity.ErrDuplicateLink) {
		t.Fatalf("err=%v, want ErrDuplicateLink", err)
	}
}

func TestLinkRepo_RemoveLink_Missing(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM links`)).
		WithArgs(int64(42), "https://github.com/gone/repo").
		WillReturnRows(sqlmock.NewRows([]string{"id", "chat_id", "url", "tags", "filters", "last_updated"}))

	repo := postgres.NewLinkRepo(db)
	_, err := repo.RemoveLink(context.Background(), 42, "https://github.com/gone/repo")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}
