package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	data := []byte("Nome,Email,Telefone,LinkedIn\n" +
		"João Silva,joao@example.com,(11) 99999-9999,linkedin.com/in/joao\n" +
		"Maria Souza,maria@example.com,,\n")

	result, err := Parse("candidatos.csv", data)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Empty(t, result.Errors)

	assert.Equal(t, Record{
		Name: "João Silva", Email: "joao@example.com",
		Phone: "(11) 99999-9999", LinkedIn: "linkedin.com/in/joao",
		Line: 2,
	}, result.Records[0])
	assert.Equal(t, "Maria Souza", result.Records[1].Name)
	assert.Equal(t, 3, result.Records[1].Line)
}

func TestParseCSVWithBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("nome,email\nAna,ana@example.com\n")...)

	result, err := Parse("lista.csv", data)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Ana", result.Records[0].Name)
}

func TestParseCSVValidation(t *testing.T) {
	data := []byte("nome,email\n" +
		",sem-nome@example.com\n" +
		"Sem Email,\n" +
		"Email Ruim,nao-e-email\n" +
		"Válido,ok@example.com\n")

	result, err := Parse("lista.csv", data)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Válido", result.Records[0].Name)

	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "line 2")
	assert.Contains(t, result.Errors[2], "invalid email (nao-e-email)")
}

func TestParseCSVMissingColumns(t *testing.T) {
	_, err := Parse("lista.csv", []byte("nome,telefone\nJoão,11999999999\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}

func TestParseEnglishHeaders(t *testing.T) {
	data := []byte("Name,E-mail,Phone\nJohn Doe,john@example.com,11988887777\n")

	result, err := Parse("list.csv", data)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "John Doe", result.Records[0].Name)
	assert.Equal(t, "john@example.com", result.Records[0].Email)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"nome", "email", "telefone"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Pedro Santos", "pedro@example.com", "11977776666"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	result, err := Parse("candidatos.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Pedro Santos", result.Records[0].Name)
	assert.Equal(t, "11977776666", result.Records[0].Phone)
}

func TestUnsupportedExtension(t *testing.T) {
	_, err := Parse("curriculo.pdf", []byte("dados"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")

	assert.True(t, SupportedExtension("a.CSV"))
	assert.True(t, SupportedExtension("a.xlsx"))
	assert.False(t, SupportedExtension("a.pdf"))
}

func TestParseEmptyFile(t *testing.T) {
	_, err := Parse("vazio.csv", nil)
	require.Error(t, err)
}
