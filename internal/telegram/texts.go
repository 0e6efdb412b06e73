package telegram

const (
	btnConsultation = "📅 Запись на консультацию"
	btnServices     = "🛠 Услуги"
	btnAbout        = "🏢 О компании"
	btnShareContact = "📱 Поделиться контактом"
	btnBack         = "⬅️ Назад"
)

const (
	welcomeText = "👋 Здравствуйте! Я AI-консультант студии веб-разработки.\n\n" +
		"Расскажу об услугах и ценах, отвечу на вопросы и помогу записаться на бесплатную консультацию.\n\n" +
		"Просто напишите свой вопрос или воспользуйтесь кнопками меню."

	helpText = "ℹ️ Что я умею:\n\n" +
		"/prices — цены и пакеты\n" +
		"/services — услуги\n" +
		"/faq — частые вопросы\n" +
		"/company — о компании\n" +
		"/contact_help — как оставить контакты\n" +
		"/clear_history — начать диалог заново\n\n" +
		"Или просто задайте вопрос своими словами."

	contactHelpText = "📞 Как оставить контакты:\n\n" +
		"1. Нажмите «📅 Запись на консультацию» и поделитесь контактом кнопкой\n" +
		"2. Или напишите в чат имя и телефон, например:\n" +
		"«Меня зовут Иван, мой телефон +7 916 123-45-67»\n\n" +
		"Специалист свяжется с вами в течение 2 часов."

	consultationText = "📅 Запись на бесплатную консультацию\n\n" +
		"Нажмите кнопку «📱 Поделиться контактом» ниже или напишите имя и телефон в чат."

	backText         = "Главное меню 👇"
	clearHistoryText = "🧹 История диалога очищена. Можем начать заново!"
	adminOnlyText    = "⛔ Команда доступна только администратору"
	noContactsText   = "📭 Контактов пока нет"
	exportErrorText  = "❌ Не удалось выгрузить контакты"
	unavailableText  = "Информация временно недоступна. Задайте вопрос в чат, я постараюсь помочь."
	errorText        = "Извините, произошла ошибка. Попробуйте ещё раз чуть позже."
	unknownCmdText   = "Неизвестная команда. Список команд: /help"

	exportCaptionFormat = "📊 Экспорт контактов: %d шт."
	statsFormat         = "📊 Статистика бота\n\n👥 Контактов всего: %d\n\n%s\n\n⏰ Время: %s"
)

const faqLimit = 10
