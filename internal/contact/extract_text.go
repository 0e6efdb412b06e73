package contact

import (
	"regexp"
	"strings"
	"unicode"
)

// contactKeywords gate the heuristic extractor; text without any of them is ignored.
var contactKeywords = []string{
	"запись", "консультация", "записаться", "свяжитесь", "перезвоните",
	"контакт", "данные", "телефон", "email", "почта", "звоните", "связаться",
}

// Ordered from most to least specific; the first pattern with a match wins.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\+7|8)[\s\-]?\((\d{3})\)[\s\-]?(\d{3})[\s\-]?(\d{2})[\s\-]?(\d{2})`),
	regexp.MustCompile(`(\+7|8)[\s\-]?(\d{3})[\s\-]?(\d{3})[\s\-]?(\d{2})[\s\-]?(\d{2})`),
	regexp.MustCompile(`(\d{3})[\s\-]?(\d{3})[\s\-]?(\d{2})[\s\-]?(\d{2})`),
}

const emailExpr = `[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`

var emailPattern = regexp.MustCompile(`(?i)\b` + emailExpr + `\b`)

// TextExtraction is the contact data guessed from free-form user text.
type TextExtraction struct {
	Name           string
	Phone          string
	Email          string
	AdditionalInfo string
}

// HasContactIntent reports whether text mentions any contact-request keyword.
func HasContactIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range contactKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ExtractFromText guesses name, phone and e-mail from raw user text. It only runs when
// the text shows contact intent and reports false unless a phone or e-mail was found.
//
// The name guess is low precision: the first two purely alphabetic words that start
// with an upper-case letter, wherever they sit in the text. "Здравствуйте Иван" yields
// "Здравствуйте Иван".
func ExtractFromText(text string) (TextExtraction, bool) {
	if !HasContactIntent(text) {
		return TextExtraction{}, false
	}
	out := TextExtraction{
		Name:           guessName(text),
		Phone:          findPhone(text),
		Email:          emailPattern.FindString(text),
		AdditionalInfo: text,
	}
	if out.Phone == "" && out.Email == "" {
		return TextExtraction{}, false
	}
	return out, true
}

func guessName(text string) string {
	var words []string
	for _, w := range strings.Fields(text) {
		if isCapitalizedWord(w) {
			words = append(words, w)
			if len(words) == 2 {
				break
			}
		}
	}
	return strings.Join(words, " ")
}

func isCapitalizedWord(w string) bool {
	rs := []rune(w)
	if len(rs) < 2 || !unicode.IsUpper(rs[0]) {
		return false
	}
	for _, r := range rs {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func findPhone(text string) string {
	for _, re := range phonePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return NormalizePhone(strings.Join(m[1:], ""))
	}
	return ""
}
