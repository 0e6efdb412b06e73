package telegram

import (
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	cmdStart          = "start"
	cmdHelp           = "help"
	cmdPrices         = "prices"
	cmdServices       = "services"
	cmdFAQ            = "faq"
	cmdCompany        = "company"
	cmdContactHelp    = "contact_help"
	cmdClearHistory   = "clear_history"
	cmdStats          = "stats"
	cmdExportContacts = "export_contacts"
)

const exportNameLayout = "20060102_150405"

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case cmdStart:
		b.history.Reset(msg.From.ID)
		b.sendText(chatID, welcomeText, mainKeyboard())
	case cmdHelp:
		b.sendText(chatID, helpText, mainKeyboard())
	case cmdPrices:
		b.sendKnowledge(chatID, b.kb.PricesText())
	case cmdServices:
		b.sendServices(chatID)
	case cmdFAQ:
		b.sendKnowledge(chatID, b.kb.FAQText(faqLimit))
	case cmdCompany:
		b.sendKnowledge(chatID, b.kb.CompanyText())
	case cmdContactHelp:
		b.sendText(chatID, contactHelpText, mainKeyboard())
	case cmdClearHistory:
		b.history.Reset(msg.From.ID)
		b.sendText(chatID, clearHistoryText, mainKeyboard())
	case cmdStats, cmdExportContacts:
		if msg.From.ID != b.adminUserID || b.adminUserID == 0 {
			b.log.Warn("operator command refused", zap.Int64("user_id", msg.From.ID), zap.String("command", msg.Command()))
			b.sendText(chatID, adminOnlyText, nil)
			return
		}
		if msg.Command() == cmdStats {
			b.sendStats(chatID)
		} else {
			b.exportContacts(chatID)
		}
	default:
		b.sendText(chatID, unknownCmdText, nil)
	}
}

func (b *Bot) sendStats(chatID int64) {
	now := b.now()
	today := ""
	if b.stats != nil {
		s, err := b.stats(now)
		if err != nil {
			b.log.Warn("failed to build daily stats", zap.Error(err))
		}
		today = s
	}
	b.sendText(chatID, fmt.Sprintf(statsFormat, b.contacts.Count(), today, now.Format("2006-01-02 15:04:05")), nil)
}

func (b *Bot) exportContacts(chatID int64) {
	count := b.contacts.Count()
	if count == 0 {
		b.sendText(chatID, noContactsText, nil)
		return
	}
	data, err := os.ReadFile(b.contacts.JSONPath())
	if err != nil {
		b.log.Error("failed to read contacts for export", zap.Error(err))
		b.sendText(chatID, exportErrorText, nil)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "contacts_export_" + b.now().Format(exportNameLayout) + ".json",
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf(exportCaptionFormat, count)
	if _, err := b.s.Send(doc); err != nil {
		b.log.Error("failed to send export", zap.Error(err))
		b.sendText(chatID, exportErrorText, nil)
	}
}
