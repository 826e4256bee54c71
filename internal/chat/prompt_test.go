package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/educhat/backend/internal/vector/memory"
)

func TestGroundedPromptInterpolation(t *testing.T) {
	prompt := groundedPrompt("student", "Budi", "u-1", "[Sumber 1] Profil\nisi dokumen\n", "Kelas berapa saya?")

	assert.Contains(t, prompt, "Role pengguna: student")
	assert.Contains(t, prompt, "Nama pengguna: Budi (ID: u-1)")
	assert.Contains(t, prompt, "isi dokumen")
	assert.Contains(t, prompt, "Kelas berapa saya?")
	assert.Contains(t, prompt, "nada yang sesuai untuk role student")
}

func TestGeneralPromptOmitsContext(t *testing.T) {
	prompt := generalPrompt("parent", "Bagaimana cara membantu anak belajar?")

	assert.Contains(t, prompt, "Role pengguna: parent")
	assert.Contains(t, prompt, "Bagaimana cara membantu anak belajar?")
	assert.NotContains(t, prompt, "informasi terkait pengguna")
	assert.NotContains(t, prompt, "ID:")
}

func TestFormatContextNumbersSources(t *testing.T) {
	context := formatContext([]memory.Hit{
		{Text: "isi pertama", Metadata: map[string]string{"title": "Profil Siswa: Budi"}},
		{Text: "isi kedua", Metadata: map[string]string{"title": "Profil Siswa: Sari"}},
	})

	assert.Contains(t, context, "[Sumber 1] Profil Siswa: Budi")
	assert.Contains(t, context, "[Sumber 2] Profil Siswa: Sari")
	assert.Contains(t, context, "isi pertama")
	assert.Contains(t, context, "isi kedua")
}

func TestFormatContextWithoutTitle(t *testing.T) {
	context := formatContext([]memory.Hit{{Text: "isi tanpa judul"}})

	assert.Contains(t, context, "[Sumber 1]\n")
	assert.Contains(t, context, "isi tanpa judul")
}

func TestFormatContextEmpty(t *testing.T) {
	assert.Empty(t, formatContext(nil))
}
