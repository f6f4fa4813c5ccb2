package whatsapp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPhone(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"(11) 99999-9999", "5511999999999"},
		{"11999999999", "5511999999999"},
		{"+55 11 99999-9999", "5511999999999"},
		{"5511999999999", "5511999999999"},
		{"", ""},
		{"abc", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatPhone(tc.input), "input: %q", tc.input)
	}
}

func TestLink(t *testing.T) {
	link, err := Link("(11) 99999-9999", "")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/5511999999999", link)

	link, err = Link("11 98888-7777", "Olá João!")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/5511988887777?text="+"Ol%C3%A1+Jo%C3%A3o%21", link)

	_, err = Link("sem telefone", "oi")
	assert.Error(t, err)
}

func TestInterviewInviteMessage(t *testing.T) {
	msg := InterviewInviteMessage("João", "Backend Developer", "25/08/2026", "14:00", "https://meet.example.com/abc")
	assert.Contains(t, msg, "Olá *João*!")
	assert.Contains(t, msg, "vaga de *Backend Developer*")
	assert.Contains(t, msg, "*Data:* 25/08/2026")
	assert.Contains(t, msg, "*Horário:* 14:00")
	assert.Contains(t, msg, "*Link:* https://meet.example.com/abc")

	withoutLink := InterviewInviteMessage("João", "Backend Developer", "25/08/2026", "14:00", "")
	assert.NotContains(t, withoutLink, "*Link:*")
}

func TestMessageForKind(t *testing.T) {
	msg, err := MessageForKind(KindApproval, "Maria", "Data Analyst", "", "", "", "", 0)
	require.NoError(t, err)
	assert.Contains(t, msg, "*APROVADO(A)*")
	assert.Contains(t, msg, "*Maria*")

	msg, err = MessageForKind(KindRejection, "Maria", "Data Analyst", "", "", "", "", 0)
	require.NoError(t, err)
	assert.Contains(t, msg, "seguir com outros candidatos")

	msg, err = MessageForKind(KindReminder, "Maria", "", "", "", "", "", 2)
	require.NoError(t, err)
	assert.Contains(t, msg, "*2 hora(s)*")

	msg, err = MessageForKind(KindCustom, "", "", "", "", "", "mensagem livre", 0)
	require.NoError(t, err)
	assert.Equal(t, "mensagem livre", msg)

	_, err = MessageForKind("telegram", "", "", "", "", "", "", 0)
	assert.Error(t, err)
}

func TestTemplatesHaveNoTrailingWhitespace(t *testing.T) {
	for _, msg := range []string{
		ApprovalMessage("A", "B"),
		RejectionMessage("A", "B"),
		ThankYouMessage("A"),
		ReminderMessage("A", 1),
	} {
		for _, line := range strings.Split(msg, "\n") {
			assert.Equal(t, strings.TrimRight(line, " \t"), line)
		}
	}
}
