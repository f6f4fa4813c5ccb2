// Package whatsapp builds wa.me deep links with pre-filled outreach
// messages. No WhatsApp API involved: the links open the recruiter's
// own WhatsApp client with the message ready to send.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"
)

// Message kinds recorded in the outreach log.
const (
	KindInterviewInvite = "interview_invite"
	KindApproval        = "approval"
	KindRejection       = "rejection"
	KindThankYou        = "thank_you"
	KindReminder        = "reminder"
	KindCustom          = "custom"
)

// FormatPhone normalizes a phone number to the international digits
// wa.me expects: "(11) 99999-9999" becomes "5511999999999". The 55
// country code is prepended when missing. Empty input returns "".
func FormatPhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	clean := digits.String()
	if clean == "" {
		return ""
	}
	if !strings.HasPrefix(clean, "55") {
		clean = "55" + clean
	}
	return clean
}

// Link builds the wa.me URL for a phone number, with message pre-filled
// when given. Returns an error when no usable digits remain.
func Link(phone, message string) (string, error) {
	formatted := FormatPhone(phone)
	if formatted == "" {
		return "", fmt.Errorf("phone number %q has no digits", phone)
	}

	link := "https://wa.me/" + formatted
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link, nil
}

// InterviewInviteMessage is the interview invitation template. The
// *bold* markers are WhatsApp formatting.
func InterviewInviteMessage(candidateName, jobTitle, date, timeOfDay, meetingLink string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `*Convite para Entrevista*

Olá *%s*!

É com satisfação que informamos que você foi selecionado(a) para a próxima etapa do processo seletivo para a vaga de *%s*.

*Data:* %s
*Horário:* %s`, candidateName, jobTitle, date, timeOfDay)

	if meetingLink != "" {
		fmt.Fprintf(&b, "\n*Link:* %s", meetingLink)
	}

	b.WriteString(`

Por favor, confirme sua presença.

Estamos ansiosos para conhecê-lo(a)!`)
	return b.String()
}

// ApprovalMessage congratulates an approved candidate.
func ApprovalMessage(candidateName, jobTitle string) string {
	return fmt.Sprintf(`*PARABÉNS!*

Olá *%s*!

É com enorme satisfação que informamos que você foi *APROVADO(A)* para a vaga de *%s*!

Ficamos muito impressionados com seu perfil!

Em breve entraremos em contato para os próximos passos.

Seja muito bem-vindo(a)!`, candidateName, jobTitle)
}

// RejectionMessage declines a candidate politely.
func RejectionMessage(candidateName, jobTitle string) string {
	return fmt.Sprintf(`Olá *%s*,

Agradecemos seu interesse na vaga de *%s* e por ter dedicado seu tempo ao processo seletivo.

Após análise, optamos por seguir com outros candidatos neste momento.

Esta decisão não diminui suas qualificações. Encorajamos você a acompanhar nossas futuras oportunidades!

Desejamos muito sucesso!`, candidateName, jobTitle)
}

// ThankYouMessage acknowledges an application.
func ThankYouMessage(candidateName string) string {
	return fmt.Sprintf(`Olá *%s*!

Agradecemos sua participação no processo seletivo.

Em breve entraremos em contato com os próximos passos.

Fique à vontade para tirar dúvidas!`, candidateName)
}

// ReminderMessage nudges a candidate about an upcoming interview.
func ReminderMessage(candidateName string, hours int) string {
	return fmt.Sprintf(`*Lembrete de Entrevista*

Olá *%s*!

Sua entrevista está marcada para daqui a *%d hora(s)*.

Nos vemos em breve!`, candidateName, hours)
}

// MessageForKind renders the template for an outreach kind. Custom
// messages pass through untouched.
func MessageForKind(kind, candidateName, jobTitle, date, timeOfDay, meetingLink, custom string, hours int) (string, error) {
	switch kind {
	case KindInterviewInvite:
		return InterviewInviteMessage(candidateName, jobTitle, date, timeOfDay, meetingLink), nil
	case KindApproval:
		return ApprovalMessage(candidateName, jobTitle), nil
	case KindRejection:
		return RejectionMessage(candidateName, jobTitle), nil
	case KindThankYou:
		return ThankYouMessage(candidateName), nil
	case KindReminder:
		return ReminderMessage(candidateName, hours), nil
	case KindCustom, "":
		return custom, nil
	default:
		return "", fmt.Errorf("unknown message kind %q", kind)
	}
}
