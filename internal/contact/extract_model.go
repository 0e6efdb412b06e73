package contact

import (
	"regexp"
	"strings"
)

// Marker strings the system prompt asks the model to wrap contact data in.
const (
	BlockStart = "===КОНТАКТЫ==="
	BlockEnd   = "===КОНЕЦ КОНТАКТОВ==="

	LabelName    = "ИМЯ:"
	LabelPhone   = "ТЕЛЕФОН:"
	LabelEmail   = "EMAIL:"
	LabelComment = "КОММЕНТАРИЙ:"
)

var (
	blockRe = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(BlockStart) + `(.*?)` + regexp.QuoteMeta(BlockEnd))

	nameRe    = labelRe(LabelName)
	phoneRe   = labelRe(LabelPhone)
	emailRe   = labelRe(LabelEmail)
	commentRe = labelRe(LabelComment)
)

func labelRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `([^\n]*)`)
}

// ModelExtraction is the contact data found in a model reply.
type ModelExtraction struct {
	Name    string
	Phone   string
	Email   string
	Comment string
	// CleanText is the reply with every marker block removed, trimmed.
	CleanText string
}

// ExtractFromModel looks for the first marker block in a model reply. It reports false
// when there is no well-formed block or when the block carries neither a usable phone
// nor a well-formed e-mail. Placeholders such as "не указан" count as absent.
func ExtractFromModel(text string) (ModelExtraction, bool) {
	m := blockRe.FindStringSubmatch(text)
	if m == nil {
		return ModelExtraction{}, false
	}
	block := strings.TrimSpace(m[1])

	phone := NormalizePhone(field(phoneRe, block))
	if !ValidPhone(phone) {
		phone = ""
	}
	email := NormalizeEmail(field(emailRe, block))
	if !ValidEmail(email) {
		email = ""
	}
	if phone == "" && email == "" {
		return ModelExtraction{}, false
	}

	return ModelExtraction{
		Name:      field(nameRe, block),
		Phone:     phone,
		Email:     email,
		Comment:   field(commentRe, block),
		CleanText: StripBlocks(text),
	}, true
}

// StripBlocks removes every marker block from text and trims the result.
func StripBlocks(text string) string {
	return strings.TrimSpace(blockRe.ReplaceAllLiteralString(text, ""))
}

func field(re *regexp.Regexp, block string) string {
	m := re.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
