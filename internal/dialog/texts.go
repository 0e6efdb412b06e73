package dialog

const (
	consultationReply = "🎯 Отлично, что хотите получить консультацию!\n\n" +
		"🚀 Нажмите кнопку «📅 Запись на консультацию» в основном меню\n\n" +
		"📅 Консультация бесплатная (30-60 минут)\n" +
		"👨‍💼 Специалист свяжется в течение 2 часов"

	apologyReply = "Извините, в настоящее время у меня технические проблемы. " +
		"Пожалуйста, попробуйте позже или свяжитесь с консультантом напрямую."

	blockOnlyReply = "Спасибо! Оставьте, пожалуйста, телефон или email, " +
		"чтобы менеджер мог с вами связаться."

	contactSavedSuffix = "\n\n✅ Ваши контактные данные сохранены! Мы свяжемся с вами в ближайшее время."

	knowledgeContextTemplate = "ИНФОРМАЦИЯ ИЗ БАЗЫ ЗНАНИЙ:\n%s\n\n" +
		"Используй эту информацию для точного ответа на вопрос пользователя: %s"
)

// consultationKeywords is the booking-intent gate checked before any lookup.
var consultationKeywords = []string{"консультаци", "запис", "свяжит", "позвони", "перезвони"}

// DefaultSystemPrompt is used when no prompt file is configured.
const DefaultSystemPrompt = `Ты вежливый консультант студии веб-разработки и AI-автоматизации.
Отвечай кратко и по делу, на языке пользователя, без markdown-разметки.
Помогай выбрать услугу, объясняй сроки и стоимость, предлагай бесплатную консультацию.

Если пользователь сообщил свои контактные данные (имя, телефон или email),
добавь в конец ответа блок строго в таком формате:

===КОНТАКТЫ===
ИМЯ: имя пользователя
ТЕЛЕФОН: номер телефона
EMAIL: адрес почты
КОММЕНТАРИЙ: краткая суть запроса
===КОНЕЦ КОНТАКТОВ===

Пропущенные поля оставляй пустыми. Не добавляй блок, если контактов нет.`

// ContactReceivedReply answers a contact card shared through the platform button.
const ContactReceivedReply = "✅ Спасибо! Ваш контакт получен.\n\n" +
	"👨‍💼 Специалист свяжется с вами в ближайшее время."
