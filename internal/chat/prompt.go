package chat

import (
	"fmt"
	"strings"

	"github.com/educhat/backend/internal/vector/memory"
)

// DefaultName is used when the caller does not resolve a display name.
const DefaultName = "Pengguna"

const groundedTemplate = `Anda adalah asisten AI pintar yang bertugas membantu pengguna berdasarkan data yang tersedia.

Role pengguna: %s
Nama pengguna: %s (ID: %s)

Berikut adalah informasi terkait pengguna:
%s

Pertanyaan pengguna:
%s

Jawablah dengan nada yang sesuai untuk role %s. Jika data terbatas, jawab dengan sopan dan beri saran yang membangun.`

const generalTemplate = `Anda adalah asisten AI pintar untuk platform belajar.

Role pengguna: %s

Pertanyaan pengguna:
%s

Jawablah berdasarkan pengetahuan umum dengan nada yang sesuai untuk role %s. Jika Anda tidak yakin, jawab dengan sopan dan beri saran yang membangun.`

const apologyTemplate = `Maaf, saya sedang mengalami kendala teknis: %v. Silakan coba lagi beberapa saat.`

func groundedPrompt(role, name, userID, context, question string) string {
	return fmt.Sprintf(groundedTemplate, role, name, userID, context, question, role)
}

func generalPrompt(role, question string) string {
	return fmt.Sprintf(generalTemplate, role, question, role)
}

func formatContext(hits []memory.Hit) string {
	var b strings.Builder
	for i, hit := range hits {
		if i > 0 {
			b.WriteString("\n")
		}
		title := hit.Metadata["title"]
		if title != "" {
			b.WriteString(fmt.Sprintf("[Sumber %d] %s\n", i+1, title))
		} else {
			b.WriteString(fmt.Sprintf("[Sumber %d]\n", i+1))
		}
		b.WriteString(hit.Text)
		b.WriteString("\n")
	}
	return b.String()
}
