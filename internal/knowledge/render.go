package knowledge

import (
	"fmt"
	"sort"
	"strings"
)

const defaultCompanyName = "RD-Studio"

// PricesText renders packages, then add-on services, then payment terms.
func (b *Base) PricesText() string {
	var sb strings.Builder
	sb.WriteString("💰 ПАКЕТЫ И ЦЕНЫ:\n\n")
	for _, p := range b.prices.Packages {
		fmt.Fprintf(&sb, "🎯 %s\n", p.Name)
		fmt.Fprintf(&sb, "💵 %s\n", p.Price)
		fmt.Fprintf(&sb, "⏱ %s\n", p.Timeline)
		fmt.Fprintf(&sb, "📝 %s\n", p.Description)
		sb.WriteString("Включает:\n")
		writeBullets(&sb, p.Features)
		sb.WriteString("\n")
	}

	sb.WriteString("🔧 ДОПОЛНИТЕЛЬНЫЕ УСЛУГИ:\n")
	for _, s := range b.prices.AdditionalServices {
		fmt.Fprintf(&sb, "• %s: %s - %s\n", s.Name, s.Price, s.Description)
	}

	sb.WriteString("\n💳 УСЛОВИЯ ОПЛАТЫ:\n")
	writeBullets(&sb, b.prices.PaymentTerms)
	return sb.String()
}

// ServiceText renders one service by key.
func (b *Base) ServiceText(key string) (string, bool) {
	s, ok := b.services.Detailed[key]
	if !ok {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString("🛠 НАШИ УСЛУГИ:\n\n")
	writeService(&sb, s)
	return strings.TrimRight(sb.String(), "\n") + "\n", true
}

// AllServicesText renders every service ordered by key.
func (b *Base) AllServicesText() (string, bool) {
	if len(b.services.Detailed) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(b.services.Detailed))
	for k := range b.services.Detailed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("🛠 НАШИ УСЛУГИ:\n\n")
	for _, k := range keys {
		writeService(&sb, b.services.Detailed[k])
	}
	return strings.TrimRight(sb.String(), "\n") + "\n", true
}

func writeService(sb *strings.Builder, s Service) {
	fmt.Fprintf(sb, "====== %s\n\n", s.Title)
	fmt.Fprintf(sb, "%s\n\n", s.Description)
	sb.WriteString("⚡ ВКЛЮЧАЕТ:\n")
	writeBullets(sb, s.Features)
	if len(s.Technologies) > 0 {
		sb.WriteString("\n🔧 ТЕХНОЛОГИИ:\n")
		writeBullets(sb, s.Technologies)
	}
	if len(s.SupportedPlatforms) > 0 {
		sb.WriteString("\n📱 ПОДДЕРЖИВАЕМЫЕ ПЛАТФОРМЫ:\n")
		writeBullets(sb, s.SupportedPlatforms)
	}
	if len(s.SupportedCRM) > 0 {
		sb.WriteString("\n📊 ИНТЕГРАЦИЯ С CRM:\n")
		writeBullets(sb, s.SupportedCRM)
	}
	sb.WriteString("\n\n")
}

// CompanyText renders name, specialization, achievements, team and values.
// Team roles are ordered by role key.
func (b *Base) CompanyText() string {
	c := b.company.Company
	name := c.Name
	if name == "" {
		name = defaultCompanyName
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏢 %s\n\n", name)
	fmt.Fprintf(&sb, "🎯 %s\n\n", c.Specialization)

	sb.WriteString("📈 НАШИ ДОСТИЖЕНИЯ:\n")
	writeBullets(&sb, c.Achievements)

	sb.WriteString("\n👥 НАША КОМАНДА:\n")
	roles := make([]string, 0, len(c.Team))
	for role := range c.Team {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		fmt.Fprintf(&sb, "• %s\n", c.Team[role])
	}

	sb.WriteString("\n❤️ НАШИ ЦЕННОСТИ:\n")
	writeBullets(&sb, c.Values)
	return sb.String()
}

// FAQText lists up to limit questions with their answers.
func (b *Base) FAQText(limit int) string {
	var sb strings.Builder
	sb.WriteString("❓ ЧАСТО ЗАДАВАЕМЫЕ ВОПРОСЫ:\n\n")
	for i, item := range b.faq.Items {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, item.Question)
		fmt.Fprintf(&sb, "   💡 %s\n\n", item.Answer)
	}
	sb.WriteString("Задайте свой вопрос, и я с радостью на него отвечу!")
	return sb.String()
}

func writeBullets(sb *strings.Builder, items []string) {
	for _, it := range items {
		fmt.Fprintf(sb, "• %s\n", it)
	}
}
