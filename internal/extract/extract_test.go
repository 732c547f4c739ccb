package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload(t *testing.T) {
	tests := []struct {
		name string
		text string
		file *File
		want string
	}{
		{
			name: "text is trimmed",
			text: "  Bom dia, preciso de ajuda.\n",
			want: "Bom dia, preciso de ajuda.",
		},
		{
			name: "text wins over file",
			text: "colado",
			file: &File{Name: "email.txt", Data: []byte("do arquivo")},
			want: "colado",
		},
		{
			name: "blank text falls back to file",
			text: "   ",
			file: &File{Name: "email.TXT", Data: []byte("do arquivo")},
			want: "do arquivo",
		},
		{
			name: "blank text without file",
			text: " \n ",
			want: "",
		},
		{
			name: "file content is not trimmed",
			file: &File{Name: "email.txt", Data: []byte("  linha  \n")},
			want: "  linha  \n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Payload(tt.text, tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPayloadMissing(t *testing.T) {
	_, err := Payload("", nil)

	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "Envie um arquivo (.txt/.pdf) ou cole o texto do e-mail.", inputErr.Message)
}

func TestFileTextUnsupportedExtension(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{name: "email.docx", message: "Extensão não suportada: .docx. Use .txt ou .pdf"},
		{name: "README", message: "Extensão não suportada: . Use .txt ou .pdf"},
		{name: "", message: "Extensão não suportada: . Use .txt ou .pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FileText(tt.name, []byte("x"))

			var inputErr *InputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.message, inputErr.Error())
		})
	}
}

func TestFileTextDecoding(t *testing.T) {
	utf8Text, err := FileText("a.txt", []byte("Não consigo acessar"))
	require.NoError(t, err)
	assert.Equal(t, "Não consigo acessar", utf8Text)

	latin1Text, err := FileText("a.txt", []byte{'N', 0xe3, 'o'})
	require.NoError(t, err)
	assert.Equal(t, "Não", latin1Text)
}

func TestFileTextBrokenPDF(t *testing.T) {
	_, err := FileText("email.pdf", []byte("not a pdf"))

	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Contains(t, inputErr.Message, "Falha ao ler PDF: ")
}
