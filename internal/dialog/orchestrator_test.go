package dialog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-assistant/internal/contact"
	"lead-assistant/internal/history"
	"lead-assistant/internal/knowledge"
	"lead-assistant/internal/llm"
	"lead-assistant/internal/storage"
)

type fakeLLM struct {
	mu    sync.Mutex
	reply string
	err   error
	calls [][]llm.Message
	block chan struct{}
}

func (f *fakeLLM) Generate(ctx context.Context, msgs []llm.Message) (llm.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, msgs)
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return llm.Response{}, ctx.Err()
		}
	}
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Content: f.reply, Model: "fake"}, nil
}

func (f *fakeLLM) lastCall() []llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

type fakeKB struct {
	hits map[string]knowledge.Hit
}

func (f fakeKB) Search(q string) (knowledge.Hit, bool) {
	h, ok := f.hits[q]
	return h, ok
}

type fakeSaver struct {
	mu    sync.Mutex
	saved []contact.Record
	fail  bool
}

func (f *fakeSaver) Save(rec contact.Record) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false
	}
	f.saved = append(f.saved, rec)
	return true
}

type fakeNotifier struct {
	got []contact.Record
	err error
}

func (f *fakeNotifier) Notify(_ context.Context, rec contact.Record) error {
	f.got = append(f.got, rec)
	return f.err
}

type fakeRecorder struct {
	events []storage.Event
}

func (f *fakeRecorder) AppendInteraction(ev storage.Event) error {
	f.events = append(f.events, ev)
	return nil
}

type fakeMetrics struct {
	mu     sync.Mutex
	routes []string
	models int
	saves  []string
}

func (f *fakeMetrics) TurnCompleted(route string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, route)
}

func (f *fakeMetrics) ModelCall(time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.models++
}

func (f *fakeMetrics) ContactSaved(source string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, source)
}

type harness struct {
	o        *Orchestrator
	model    *fakeLLM
	hist     *history.Manager
	saver    *fakeSaver
	notifier *fakeNotifier
	recorder *fakeRecorder
	metrics  *fakeMetrics
}

func newHarness(opts Options, hits map[string]knowledge.Hit) *harness {
	h := &harness{
		model:    &fakeLLM{},
		hist:     history.NewManager(10),
		saver:    &fakeSaver{},
		notifier: &fakeNotifier{},
		recorder: &fakeRecorder{},
		metrics:  &fakeMetrics{},
	}
	h.o = New(Deps{
		Knowledge: fakeKB{hits: hits},
		History:   h.hist,
		Model:     h.model,
		Contacts:  h.saver,
		Notifier:  h.notifier,
		Recorder:  h.recorder,
		Metrics:   h.metrics,
	}, opts)
	return h
}

var ivan = contact.Identity{UserID: 42, FirstName: "Ivan", LastName: "Petrov", Username: "ivanp"}

func TestHandleText_ConsultationGate(t *testing.T) {
	h := newHarness(DefaultOptions(), nil)

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "Хочу Записаться на консультацию"})

	assert.Equal(t, storage.RouteConsultation, r.Route)
	assert.Equal(t, consultationReply, r.Text)
	assert.Empty(t, h.model.calls)
	assert.Empty(t, h.hist.Get(ivan.UserID))
	require.Len(t, h.recorder.events, 1)
	assert.Equal(t, storage.RouteConsultation, h.recorder.events[0].Route)
}

func TestHandleText_GateDisabledFallsThrough(t *testing.T) {
	opts := DefaultOptions()
	opts.ConsultationGate = false
	h := newHarness(opts, nil)
	h.model.reply = "Конечно"

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "перезвоните мне"})
	assert.Equal(t, storage.RouteModel, r.Route)
	assert.Len(t, h.model.calls, 1)
}

func TestHandleText_KnowledgeHitSkipsModelAndHistory(t *testing.T) {
	h := newHarness(DefaultOptions(), map[string]knowledge.Hit{
		"сколько стоит сайт": {Topic: knowledge.TopicPrices, Text: "💰 ПРАЙС"},
	})

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "сколько стоит сайт"})

	assert.Equal(t, storage.RouteKnowledge, r.Route)
	assert.Equal(t, "💰 ПРАЙС", r.Text)
	assert.Empty(t, h.model.calls)
	assert.Empty(t, h.hist.Get(ivan.UserID))
	assert.Equal(t, []string{"knowledge"}, h.metrics.routes)
}

func TestHandleText_KnowledgeAsContext(t *testing.T) {
	opts := DefaultOptions()
	opts.KnowledgeAsContext = true
	h := newHarness(opts, map[string]knowledge.Hit{
		"цены": {Topic: knowledge.TopicPrices, Text: "Старт 30000"},
	})
	h.hist.AppendUser(ivan.UserID, "раньше")
	h.model.reply = "Пакет Старт стоит 30000"

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "цены"})

	assert.Equal(t, storage.RouteModel, r.Route)
	call := h.model.lastCall()
	require.Len(t, call, 2)
	assert.Equal(t, llm.RoleSystem, call[0].Role)
	assert.Contains(t, call[1].Content, "ИНФОРМАЦИЯ ИЗ БАЗЫ ЗНАНИЙ:\nСтарт 30000")
	assert.True(t, strings.HasSuffix(call[1].Content, "пользователя: цены"))
}

func TestHandleText_ModelPromptCarriesLastSixTurns(t *testing.T) {
	h := newHarness(DefaultOptions(), nil)
	for i := 0; i < 8; i++ {
		h.hist.AppendUser(ivan.UserID, string(rune('a'+i)))
	}
	h.model.reply = "ok"

	h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "new"})

	call := h.model.lastCall()
	require.Len(t, call, 8)
	assert.Equal(t, DefaultSystemPrompt, call[0].Content)
	assert.Equal(t, "c", call[1].Content)
	assert.Equal(t, "h", call[6].Content)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "new"}, call[7])
}

func TestHandleText_ModelSuccessUpdatesHistory(t *testing.T) {
	h := newHarness(DefaultOptions(), nil)
	h.model.reply = "## Привет!\n\nМы делаем **сайты**."

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "что вы делаете?"})

	assert.Equal(t, "Привет!\n\nМы делаем сайты.", r.Text)
	assert.Nil(t, r.Contact)
	got := h.hist.Get(ivan.UserID)
	require.Len(t, got, 2)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "что вы делаете?"}, got[0])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: r.Text}, got[1])
}

func TestHandleText_ModelFailureApologizesWithoutHistory(t *testing.T) {
	h := newHarness(DefaultOptions(), nil)
	h.model.err = errors.New("quota exceeded")

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "привет"})

	assert.Equal(t, storage.RouteModelFailed, r.Route)
	assert.Equal(t, apologyReply, r.Text)
	assert.Empty(t, h.hist.Get(ivan.UserID))
	assert.Equal(t, 1, h.metrics.models)
}

func TestHandleText_BlankModelReplyIsFailure(t *testing.T) {
	h := newHarness(DefaultOptions(), nil)
	h.model.reply = "  **  **\n"

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "привет"})
	assert.Equal(t, apologyReply, r.Text)
}

func TestHandleText_ModelTimeout(t *testing.T) {
	opts := DefaultOptions()
	opts.ModelTimeout = 20 * time.Millisecond
	h := newHarness(opts, nil)
	h.model.block = make(chan struct{})
	defer close(h.model.block)

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "привет"})
	assert.Equal(t, storage.RouteModelFailed, r.Route)
	assert.Equal(t, apologyReply, r.Text)
}

func TestHandleText_ContactBlockIsCapturedAndStripped(t *testing.T) {
	h := newHarness(DefaultOptions(), nil)
	h.model.reply = "Спасибо, Иван!\n\n===КОНТАКТЫ===\nИМЯ: Иван\nТЕЛЕФОН: 8 (916) 123-45-67\nКОММЕНТАРИЙ: лендинг\n===КОНЕЦ КОНТАКТОВ==="

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "Я Иван, мой номер 8 916 123 45 67"})

	assert.Equal(t, "Спасибо, Иван!"+contactSavedSuffix, r.Text)
	require.Len(t, h.saver.saved, 1)
	rec := h.saver.saved[0]
	assert.Equal(t, "Иван", rec.FirstName)
	assert.Equal(t, "Petrov", rec.LastName)
	assert.Equal(t, "+79161234567", rec.PhoneNumber)
	assert.Equal(t, "ivanp", rec.Username)
	assert.Equal(t, contact.SourceAIExtraction, rec.Source)
	assert.Equal(t, "лендинг", rec.AdditionalInfo)
	require.Len(t, h.notifier.got, 1)
	assert.Equal(t, []string{"ai_extraction"}, h.metrics.saves)
	require.NotNil(t, r.Contact)
	assert.True(t, h.recorder.events[0].ContactCaptured)

	// the stored assistant turn is what the user saw
	got := h.hist.Get(ivan.UserID)
	require.Len(t, got, 2)
	assert.NotContains(t, got[1].Content, contact.BlockStart)
}

func TestHandleText_NotificationFailureDoesNotAffectReply(t *testing.T) {
	h := newHarness(DefaultOptions(), nil)
	h.notifier.err = errors.New("telegram down")
	h.saver.fail = true
	h.model.reply = "Принято\n===КОНТАКТЫ===\nEMAIL: Ivan@Example.COM\n===КОНЕЦ КОНТАКТОВ==="

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "пишите на почту"})

	assert.Equal(t, "Принято"+contactSavedSuffix, r.Text)
	require.Len(t, h.notifier.got, 1)
	assert.Equal(t, "ivan@example.com", h.notifier.got[0].Email)
	assert.Equal(t, "Ivan", h.notifier.got[0].FirstName)
}

func TestHandleText_InvalidBlockIsStrippedWithoutCapture(t *testing.T) {
	opts := DefaultOptions()
	opts.TextContactFallback = false
	h := newHarness(opts, nil)
	h.model.reply = "Хорошо\n===КОНТАКТЫ===\nИМЯ: Иван\n===КОНЕЦ КОНТАКТОВ==="

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "меня зовут Иван"})

	assert.Equal(t, "Хорошо", r.Text)
	assert.Nil(t, r.Contact)
	assert.Empty(t, h.saver.saved)
}

func TestHandleText_BlockOnlyReplyNeverSilent(t *testing.T) {
	opts := DefaultOptions()
	opts.TextContactFallback = false
	h := newHarness(opts, nil)
	h.model.reply = "===КОНТАКТЫ===\nИМЯ: Иван\n===КОНЕЦ КОНТАКТОВ==="

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "меня зовут Иван"})

	assert.Equal(t, blockOnlyReply, r.Text)
	assert.Equal(t, storage.RouteModel, r.Route)
	assert.Nil(t, r.Contact)
	assert.Empty(t, h.saver.saved)
	got := h.hist.Get(ivan.UserID)
	require.Len(t, got, 2)
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: blockOnlyReply}, got[1])
}

func TestHandleText_PlaceholderPhoneIsNotPersisted(t *testing.T) {
	opts := DefaultOptions()
	opts.TextContactFallback = false
	h := newHarness(opts, nil)
	h.model.reply = "Записал\n===КОНТАКТЫ===\nИМЯ: Иван\nТЕЛЕФОН: не указан\nEMAIL:\n===КОНЕЦ КОНТАКТОВ==="

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "меня зовут Иван"})

	assert.Equal(t, "Записал", r.Text)
	assert.Nil(t, r.Contact)
	assert.Empty(t, h.saver.saved)
	assert.Empty(t, h.notifier.got)
}

func TestHandleText_TextFallback(t *testing.T) {
	h := newHarness(DefaultOptions(), nil)
	h.model.reply = "Спасибо, передам менеджеру"

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "Мой телефон +7 916 123 45 67"})

	require.NotNil(t, r.Contact)
	assert.Equal(t, contact.SourceManualText, r.Contact.Source)
	assert.Equal(t, "+79161234567", r.Contact.PhoneNumber)
	assert.Equal(t, "Спасибо, передам менеджеру"+contactSavedSuffix, r.Text)
	require.Len(t, h.saver.saved, 1)
}

func TestHandleText_TextFallbackDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.TextContactFallback = false
	h := newHarness(opts, nil)
	h.model.reply = "Спасибо"

	r := h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "Мой телефон +7 916 123 45 67"})
	assert.Nil(t, r.Contact)
	assert.Equal(t, "Спасибо", r.Text)
	assert.Empty(t, h.saver.saved)
}

func TestHandleText_SerializesSameUser(t *testing.T) {
	h := newHarness(DefaultOptions(), nil)
	h.model.reply = "ok"

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.o.HandleText(context.Background(), Incoming{Sender: ivan, Text: "привет"})
		}()
	}
	wg.Wait()

	got := h.hist.Get(ivan.UserID)
	require.Len(t, got, 10)
	for i, m := range got {
		want := llm.RoleUser
		if i%2 == 1 {
			want = llm.RoleAssistant
		}
		assert.Equal(t, want, m.Role, "turn pairs must not interleave")
	}
	assert.Equal(t, 0, h.o.locks.size())
}

func TestHandleContactCard(t *testing.T) {
	h := newHarness(DefaultOptions(), nil)

	r := h.o.HandleContactCard(context.Background(), "Anna", "", "+79990001122", contact.Identity{UserID: 7})

	assert.Equal(t, ContactReceivedReply, r.Text)
	assert.Equal(t, storage.RouteContactCard, r.Route)
	require.Len(t, h.saver.saved, 1)
	rec := h.saver.saved[0]
	assert.Equal(t, contact.SourceContactButton, rec.Source)
	assert.Equal(t, contact.UnknownUsername, rec.Username)
	assert.Equal(t, "+79990001122", rec.PhoneNumber)
	require.Len(t, h.notifier.got, 1)

	require.Len(t, h.recorder.events, 1)
	ev := h.recorder.events[0]
	assert.Equal(t, storage.RouteContactCard, ev.Route)
	assert.Equal(t, int64(7), ev.UserID)
	assert.Empty(t, ev.UserMessage)
	assert.True(t, ev.ContactCaptured)
}

func TestNew_Defaults(t *testing.T) {
	o := New(Deps{}, Options{})
	assert.Equal(t, DefaultContextTurns, o.opts.ContextTurns)
	assert.Equal(t, DefaultSystemPrompt, o.opts.SystemPrompt)
}
