package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educhat/backend/internal/docs"
)

func newMockProvider(t *testing.T) (*Provider, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewProvider(db), mock
}

func documentColumns() []string {
	return []string{"id", "title", "content", "role", "email", "parent_id"}
}

func TestFetchDocumentsStudent(t *testing.T) {
	provider, mock := newMockProvider(t)

	rows := sqlmock.NewRows(documentColumns()).
		AddRow("11", "Profil Siswa: Budi",
			"Nama: Budi. Kelas: 5A. Nomor HP: -. Jumlah jawaban: 12. Rata-rata nilai: 87.50. Profil belajar: visual",
			"student", "budi@example.com", "7")

	mock.ExpectQuery("Profil Siswa").
		WithArgs("11").
		WillReturnRows(rows)

	documents, err := provider.FetchDocuments(context.Background(), "11", docs.RoleStudent)
	require.NoError(t, err)
	require.Len(t, documents, 1)

	doc := documents[0]
	assert.Equal(t, "11", doc.ID)
	assert.Equal(t, "Profil Siswa: Budi", doc.Title)
	assert.Contains(t, doc.Content, "Kelas: 5A")
	assert.Contains(t, doc.Content, "Rata-rata nilai: 87.50")
	assert.Equal(t, "student", doc.Metadata["role"])
	assert.Equal(t, "budi@example.com", doc.Metadata["email"])
	assert.Equal(t, "7", doc.Metadata["parent_id"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchDocumentsTeacher(t *testing.T) {
	provider, mock := newMockProvider(t)

	rows := sqlmock.NewRows(documentColumns()).
		AddRow("21", "Profil Guru: Ibu Sari",
			"Nama: Ibu Sari. Jumlah siswa yang diajar: 30. Jumlah paket soal yang dibuat: 4",
			"teacher", "sari@example.com", "")

	mock.ExpectQuery("Profil Guru").
		WithArgs("21").
		WillReturnRows(rows)

	documents, err := provider.FetchDocuments(context.Background(), "21", docs.RoleTeacher)
	require.NoError(t, err)
	require.Len(t, documents, 1)

	assert.Equal(t, "Profil Guru: Ibu Sari", documents[0].Title)
	assert.Equal(t, "teacher", documents[0].Metadata["role"])
	assert.NotContains(t, documents[0].Metadata, "parent_id", "empty parent_id is omitted")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchDocumentsParent(t *testing.T) {
	provider, mock := newMockProvider(t)

	rows := sqlmock.NewRows(documentColumns()).
		AddRow("31", "Profil Orang Tua: Pak Joko",
			"Nama: Pak Joko. Daftar anak: Budi, Sari. Rata-rata nilai anak: 85.25",
			"parent", "", "")

	mock.ExpectQuery("Profil Orang Tua").
		WithArgs("31").
		WillReturnRows(rows)

	documents, err := provider.FetchDocuments(context.Background(), "31", docs.RoleParent)
	require.NoError(t, err)
	require.Len(t, documents, 1)

	assert.Contains(t, documents[0].Content, "Daftar anak: Budi, Sari")
	assert.NotContains(t, documents[0].Metadata, "email", "empty email is omitted")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchDocumentsInvalidRole(t *testing.T) {
	provider, _ := newMockProvider(t)

	_, err := provider.FetchDocuments(context.Background(), "11", docs.Role("admin"))
	assert.ErrorIs(t, err, docs.ErrInvalidRole)
}

func TestFetchDocumentsNoRows(t *testing.T) {
	provider, mock := newMockProvider(t)

	mock.ExpectQuery("Profil Siswa").
		WithArgs("999").
		WillReturnRows(sqlmock.NewRows(documentColumns()))

	documents, err := provider.FetchDocuments(context.Background(), "999", docs.RoleStudent)
	require.NoError(t, err, "unknown user is a soft miss, not an error")
	assert.NotNil(t, documents)
	assert.Empty(t, documents)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchDocumentsQueryError(t *testing.T) {
	provider, mock := newMockProvider(t)

	mock.ExpectQuery("Profil Siswa").
		WithArgs("11").
		WillReturnError(errors.New("connection reset"))

	_, err := provider.FetchDocuments(context.Background(), "11", docs.RoleStudent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch documents")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchDocumentsRowError(t *testing.T) {
	provider, mock := newMockProvider(t)

	rows := sqlmock.NewRows(documentColumns()).
		AddRow("11", "Profil Siswa: Budi", "Nama: Budi.", "student", "", "").
		RowError(0, errors.New("read timeout"))

	mock.ExpectQuery("Profil Siswa").
		WithArgs("11").
		WillReturnRows(rows)

	_, err := provider.FetchDocuments(context.Background(), "11", docs.RoleStudent)
	require.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
