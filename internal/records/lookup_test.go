package records

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestLookupAcademicFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT academic_status FROM student_records").
		WithArgs("20231234").
		WillReturnRows(sqlmock.NewRows([]string{"academic_status"}).AddRow("Matrícula regular"))

	lookup := NewPostgresLookup(db)
	status, found, err := lookup.Lookup(context.Background(), "20231234", LookupAcademic)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !found || status != "Matrícula regular" {
		t.Fatalf("unexpected result found=%v status=%q", found, status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLookupFinancialNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT financial_status FROM student_records").
		WithArgs("99999").
		WillReturnRows(sqlmock.NewRows([]string{"financial_status"}))

	lookup := NewPostgresLookup(db)
	_, found, err := lookup.Lookup(context.Background(), "99999", LookupFinancial)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found {
		t.Fatal("expected not found")
	}
}

func TestLookupBlankCodeShortCircuits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	lookup := NewPostgresLookup(db)
	_, found, err := lookup.Lookup(context.Background(), "   ", LookupAcademic)
	if err != nil || found {
		t.Fatalf("expected blank code to miss without querying, found=%v err=%v", found, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expected no queries: %v", err)
	}
}

func TestLookupUnknownKind(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	lookup := NewPostgresLookup(db)
	if _, _, err := lookup.Lookup(context.Background(), "123", LookupKind("bogus")); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
