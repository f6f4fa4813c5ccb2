package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractContactInfo(t *testing.T) {
	resume := `João da Silva
Desenvolvedor Backend
São Paulo - SP
Email: joao.silva@example.com
Telefone: (11) 98765-4321
linkedin.com/in/joaodasilva

Experiência com Go, Python e MySQL.`

	info := ExtractContactInfo(resume, "joao_silva.pdf")

	assert.Equal(t, "João Da Silva", info.Name)
	assert.Equal(t, "joao.silva@example.com", info.Email)
	assert.Equal(t, "5511987654321", info.Phone)
	assert.Equal(t, "https://www.linkedin.com/in/joaodasilva", info.LinkedIn)
	assert.Equal(t, "São Paulo - SP", info.Location)
}

func TestExtractContactInfoFallsBackToFilename(t *testing.T) {
	resume := "1234567890\n9876543210\ntexto sem nome aproveitável em linha alguma porque todas são longas demais para um nome"

	info := ExtractContactInfo(resume, "maria-souza.pdf")

	assert.Equal(t, "Maria Souza", info.Name)
	assert.Empty(t, info.Email)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"mobile with formatting", "(11) 98765-4321", "5511987654321"},
		{"landline", "(11) 3456-7890", "551134567890"},
		{"already has country code", "+55 11 98765-4321", "5511987654321"},
		{"bare mobile digits", "11987654321", "5511987654321"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.input))
		})
	}
}

func TestPlaceholderEmail(t *testing.T) {
	assert.Equal(t, "joão.da.silva@temporario.pendente", PlaceholderEmail("João da Silva"))
	assert.Equal(t, "candidato@temporario.pendente", PlaceholderEmail("   "))
}
