package knowledge

import "strings"

type Topic string

const (
	TopicPrices  Topic = "prices"
	TopicService Topic = "service"
	TopicFAQ     Topic = "faq"
	TopicCompany Topic = "company"
)

// Hit is a knowledge answer and the routing branch that produced it.
type Hit struct {
	Topic Topic
	Text  string
}

var priceKeywords = []string{
	"цена", "стоимость", "сколько стоит", "прайс", "тариф",
	"price", "cost", "tariff",
}

// serviceKeywords is ordered; the first keyword whose service exists wins.
var serviceKeywords = []struct {
	keyword string
	service string
}{
	{"лендинг", "landing_page"},
	{"сайт", "landing_page"},
	{"бот", "ai_assistant"},
	{"ассистент", "ai_assistant"},
	{"crm", "crm_integration"},
	{"интеграция", "crm_integration"},
	{"landing", "landing_page"},
	{"website", "landing_page"},
	{"chatbot", "ai_assistant"},
	{"assistant", "ai_assistant"},
	{"integration", "crm_integration"},
}

var companyKeywords = []string{
	"компания", "о нас", "rd-studio", "студи",
	"company", "about us",
}

// Search routes a query, first match wins: prices, named service, FAQ, company.
// A miss means the caller should ask the model instead.
//
// FAQ matching is deliberately loose (any of the first three words of a stored
// question appearing anywhere in the query), which is why it runs after the
// commercial intents.
func (b *Base) Search(query string) (Hit, bool) {
	q := strings.ToLower(query)

	if containsAny(q, priceKeywords) && !b.prices.empty() {
		return Hit{Topic: TopicPrices, Text: b.PricesText()}, true
	}

	for _, sk := range serviceKeywords {
		if !strings.Contains(q, sk.keyword) {
			continue
		}
		if text, ok := b.ServiceText(sk.service); ok {
			return Hit{Topic: TopicService, Text: text}, true
		}
	}

	if answer, ok := b.FAQAnswer(query); ok {
		return Hit{Topic: TopicFAQ, Text: answer}, true
	}

	if containsAny(q, companyKeywords) && !b.company.empty() {
		return Hit{Topic: TopicCompany, Text: b.CompanyText()}, true
	}
	return Hit{}, false
}

// FAQAnswer returns the answer of the first question, in document order, whose
// first three words include one that occurs in the query (case-insensitive).
func (b *Base) FAQAnswer(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, item := range b.faq.Items {
		words := strings.Fields(strings.ToLower(item.Question))
		if len(words) > 3 {
			words = words[:3]
		}
		if containsAny(q, words) {
			return item.Answer, true
		}
	}
	return "", false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
