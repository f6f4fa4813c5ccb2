package parser

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"talentscope/internal/types"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Brazilian phone formats: (11) 99999-9999, +55 (11) 99999-9999,
	// 11999999999 and the landline variants.
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+55\s*\(?\d{2}\)?\s*9?\d{4}[-\s]?\d{4}`),
		regexp.MustCompile(`\(?\d{2}\)?\s*9?\d{4}[-\s]?\d{4}`),
		regexp.MustCompile(`\d{2}\s*9\d{8}`),
	}

	linkedinPattern = regexp.MustCompile(`(?i)linkedin\.com/in/[A-Za-z0-9\-_%]+`)

	// City followed by a two-letter state code, e.g. "São Paulo - SP".
	locationPattern = regexp.MustCompile(`\b([A-ZÀ-Ú][a-zà-úç]+(?:\s+(?:de|do|da|dos|das)?\s*[A-ZÀ-Ú][a-zà-úç]+)*)\s*[-/,]\s*([A-Z]{2})\b`)

	nonDigits = regexp.MustCompile(`\D`)
)

// ExtractContactInfo pulls name, email, phone, LinkedIn handle and
// location out of raw resume text. The filename seeds the name when
// the text yields nothing plausible.
func ExtractContactInfo(resumeText, filename string) types.ContactInfo {
	info := types.ContactInfo{
		Name:     nameFromFilename(filename),
		Email:    extractEmail(resumeText),
		Phone:    ExtractPhone(resumeText),
		LinkedIn: extractLinkedIn(resumeText),
		Location: extractLocation(resumeText),
	}

	if name := nameFromText(resumeText); name != "" {
		info.Name = name
	}
	return info
}

// nameFromText scans the first lines for something name-shaped: short,
// digit-free, two to four words.
func nameFromText(resumeText string) string {
	lines := strings.Split(resumeText, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) <= 5 || len(line) >= 50 {
			continue
		}
		if strings.ContainsFunc(line, unicode.IsDigit) {
			continue
		}
		if !strings.Contains(line, " ") {
			continue
		}
		words := strings.Fields(line)
		if len(words) > 4 {
			continue
		}
		return titleCase(line)
	}
	return ""
}

// nameFromFilename turns "joao_da-silva.pdf" into "Joao Da Silva".
func nameFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return titleCase(base)
}

func extractEmail(text string) string {
	if match := emailPattern.FindString(text); match != "" {
		return strings.ToLower(match)
	}
	return ""
}

// PlaceholderEmail builds a deterministic stand-in address when no
// email was found, so the unique column stays satisfiable.
func PlaceholderEmail(name string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	base = strings.ReplaceAll(base, " ", ".")
	for strings.Contains(base, "..") {
		base = strings.ReplaceAll(base, "..", ".")
	}
	if base == "" {
		base = "candidato"
	}
	return base + "@temporario.pendente"
}

// ExtractPhone finds the first Brazilian phone number and normalizes
// it to bare digits with the 55 country code.
func ExtractPhone(text string) string {
	for _, pattern := range phonePatterns {
		match := pattern.FindString(text)
		if match == "" {
			continue
		}
		return NormalizePhone(match)
	}
	return ""
}

// NormalizePhone strips formatting and ensures the 55 country prefix.
func NormalizePhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	switch {
	case len(digits) == 11 && digits[2] == '9': // area code + 9-digit mobile
		return "55" + digits
	case len(digits) == 10: // area code + 8-digit landline
		return "55" + digits
	default:
		return digits
	}
}

func extractLinkedIn(text string) string {
	if match := linkedinPattern.FindString(text); match != "" {
		return "https://www." + strings.ToLower(match[:len("linkedin.com/in/")]) + match[len("linkedin.com/in/"):]
	}
	return ""
}

func extractLocation(text string) string {
	if m := locationPattern.FindStringSubmatch(text); m != nil {
		return m[1] + " - " + m[2]
	}
	return ""
}

// titleCase uppercases the first rune of each word, lowering the rest.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
