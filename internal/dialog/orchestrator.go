// Package dialog runs one conversational turn: the consultation gate, the
// knowledge lookup, the model call, contact capture and the history update.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lead-assistant/internal/contact"
	"lead-assistant/internal/knowledge"
	"lead-assistant/internal/llm"
	"lead-assistant/internal/storage"
)

const DefaultContextTurns = 6

var errBlankCompletion = errors.New("model returned blank text")

type KnowledgeSearcher interface {
	Search(query string) (knowledge.Hit, bool)
}

type History interface {
	Last(userID int64, n int) []llm.Message
	AppendUser(userID int64, content string)
	AppendAssistant(userID int64, content string)
}

type ContactSaver interface {
	Save(rec contact.Record) bool
}

type Notifier interface {
	Notify(ctx context.Context, rec contact.Record) error
}

type InteractionRecorder interface {
	AppendInteraction(event storage.Event) error
}

// Metrics receives turn outcomes. Implementations must be safe for concurrent use.
type Metrics interface {
	TurnCompleted(route string)
	ModelCall(elapsed time.Duration, err error)
	ContactSaved(source string, ok bool)
}

// Options toggles the behavior variants of the turn pipeline.
type Options struct {
	ConsultationGate    bool
	KnowledgeAsContext  bool
	TextContactFallback bool
	ContextTurns        int
	ModelTimeout        time.Duration
	SystemPrompt        string
}

func DefaultOptions() Options {
	return Options{
		ConsultationGate:    true,
		TextContactFallback: true,
		ContextTurns:        DefaultContextTurns,
		ModelTimeout:        60 * time.Second,
		SystemPrompt:        DefaultSystemPrompt,
	}
}

// Deps are the collaborators of the orchestrator. Notifier, Recorder and
// Metrics are optional.
type Deps struct {
	Knowledge KnowledgeSearcher
	History   History
	Model     llm.Client
	Contacts  ContactSaver
	Notifier  Notifier
	Recorder  InteractionRecorder
	Metrics   Metrics
	Logger    *zap.Logger
}

// Incoming is a text message as seen by the transport.
type Incoming struct {
	Sender contact.Identity
	Text   string
}

// Reply is the outcome of a turn.
type Reply struct {
	TurnID  string
	Text    string
	Route   storage.Route
	Contact *contact.Record
}

type Orchestrator struct {
	deps  Deps
	opts  Options
	log   *zap.Logger
	locks *userLocks
	now   func() time.Time
}

func New(deps Deps, opts Options) *Orchestrator {
	if opts.ContextTurns <= 0 {
		opts.ContextTurns = DefaultContextTurns
	}
	if strings.TrimSpace(opts.SystemPrompt) == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{deps: deps, opts: opts, log: log, locks: newUserLocks(), now: time.Now}
}

// turn carries the data accumulated while the state machine advances.
type turn struct {
	id     string
	in     Incoming
	prompt []llm.Message
	model  string
	reply  string
	route  storage.Route
	lead   *contact.Record
}

// HandleText runs one turn for a text message. Turns of the same user are
// serialized. It never fails: every fault degrades to a fallback reply.
func (o *Orchestrator) HandleText(ctx context.Context, in Incoming) Reply {
	unlock := o.locks.lock(in.Sender.UserID)
	defer unlock()

	t := &turn{id: uuid.NewString(), in: in}
	log := o.log.With(zap.String("turn_id", t.id), zap.Int64("user_id", in.Sender.UserID))

	sm := newTurnMachine()
	for {
		state := sm.MustState().(turnState)
		if state == stateDone {
			break
		}
		trigger := o.step(ctx, log, state, t)
		if err := sm.FireCtx(ctx, trigger); err != nil {
			log.Error("illegal turn transition",
				zap.String("state", string(state)),
				zap.String("trigger", string(trigger)),
				zap.Error(err))
			if t.reply == "" {
				t.reply, t.route = apologyReply, storage.RouteModelFailed
			}
			break
		}
	}

	return Reply{TurnID: t.id, Text: t.reply, Route: t.route, Contact: t.lead}
}

func (o *Orchestrator) step(ctx context.Context, log *zap.Logger, state turnState, t *turn) turnTrigger {
	switch state {
	case stateReceived:
		if o.opts.ConsultationGate && containsAny(t.in.Text, consultationKeywords) {
			t.reply, t.route = consultationReply, storage.RouteConsultation
			return triggerConsultationIntent
		}
		return triggerLookup

	case stateKnowledgeLookup:
		return o.lookup(t)

	case stateModelCall:
		return o.callModel(ctx, log, t)

	case stateExtractContact:
		return o.extract(t)

	case statePersistContact:
		o.persist(ctx, log, t)
		return triggerPersisted

	case stateUpdateHistory:
		if t.reply == "" {
			// the model answered with a marker block only
			t.reply = blockOnlyReply
		}
		o.deps.History.AppendUser(t.in.Sender.UserID, t.in.Text)
		o.deps.History.AppendAssistant(t.in.Sender.UserID, t.reply)
		return triggerHistoryUpdated

	case stateRespond:
		o.finish(log, t)
		return triggerResponded
	}
	panic(fmt.Sprintf("dialog: no step for state %q", state))
}

func (o *Orchestrator) lookup(t *turn) turnTrigger {
	system := llm.Message{Role: llm.RoleSystem, Content: o.opts.SystemPrompt}

	hit, ok := o.deps.Knowledge.Search(t.in.Text)
	if !ok {
		history := o.deps.History.Last(t.in.Sender.UserID, o.opts.ContextTurns)
		t.prompt = make([]llm.Message, 0, len(history)+2)
		t.prompt = append(t.prompt, system)
		t.prompt = append(t.prompt, history...)
		t.prompt = append(t.prompt, llm.Message{Role: llm.RoleUser, Content: t.in.Text})
		return triggerKnowledgeMiss
	}

	if o.opts.KnowledgeAsContext {
		t.prompt = []llm.Message{system, {
			Role:    llm.RoleUser,
			Content: fmt.Sprintf(knowledgeContextTemplate, hit.Text, t.in.Text),
		}}
		return triggerKnowledgeContext
	}

	t.reply, t.route = hit.Text, storage.RouteKnowledge
	return triggerKnowledgeHit
}

func (o *Orchestrator) callModel(ctx context.Context, log *zap.Logger, t *turn) turnTrigger {
	callCtx := ctx
	if o.opts.ModelTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.opts.ModelTimeout)
		defer cancel()
	}

	started := o.now()
	resp, err := o.deps.Model.Generate(callCtx, t.prompt)
	text := ""
	if err == nil {
		text = cleanMarkdown(resp.Content)
		if text == "" {
			err = errBlankCompletion
		}
	}
	if o.deps.Metrics != nil {
		o.deps.Metrics.ModelCall(o.now().Sub(started), err)
	}
	if err != nil {
		log.Error("model call failed", zap.Int("prompt_messages", len(t.prompt)), zap.Error(err))
		t.reply, t.route = apologyReply, storage.RouteModelFailed
		return triggerModelFailed
	}

	log.Debug("model replied", zap.String("model", resp.Model), zap.Int("total_tokens", resp.TotalTokens))
	t.model, t.route = text, storage.RouteModel
	return triggerModelReplied
}

func (o *Orchestrator) extract(t *turn) turnTrigger {
	if ext, ok := contact.ExtractFromModel(t.model); ok {
		rec := contact.FromModel(ext, t.in.Sender)
		t.lead, t.reply = &rec, ext.CleanText
		return triggerContactFound
	}

	// A block without phone or e-mail is still protocol noise for the user.
	t.reply = contact.StripBlocks(t.model)

	if o.opts.TextContactFallback {
		if ext, ok := contact.ExtractFromText(t.in.Text); ok {
			rec := contact.FromText(ext, t.in.Sender)
			t.lead = &rec
			return triggerContactFound
		}
	}
	return triggerNoContact
}

func (o *Orchestrator) persist(ctx context.Context, log *zap.Logger, t *turn) {
	rec := *t.lead
	saved := o.deps.Contacts.Save(rec)
	if o.deps.Metrics != nil {
		o.deps.Metrics.ContactSaved(string(rec.Source), saved)
	}
	if !saved {
		log.Warn("contact not persisted, notifying operator anyway", zap.String("source", string(rec.Source)))
	}

	if o.deps.Notifier != nil {
		if err := o.deps.Notifier.Notify(ctx, rec); err != nil {
			log.Warn("operator notification failed", zap.Error(err))
		}
	}

	if rec.HasReachableChannel() {
		t.reply = strings.TrimSpace(t.reply + contactSavedSuffix)
	}
}

func (o *Orchestrator) finish(log *zap.Logger, t *turn) {
	if o.deps.Metrics != nil {
		o.deps.Metrics.TurnCompleted(string(t.route))
	}
	if o.deps.Recorder == nil {
		return
	}
	ev := storage.Event{
		Timestamp:         o.now().UTC(),
		TurnID:            t.id,
		UserID:            t.in.Sender.UserID,
		Route:             t.route,
		UserMessage:       t.in.Text,
		AssistantResponse: t.reply,
		ContactCaptured:   t.lead != nil,
	}
	if err := o.deps.Recorder.AppendInteraction(ev); err != nil {
		log.Warn("failed to record interaction", zap.Error(err))
	}
}

// HandleContactCard stores a contact shared through the platform's
// contact button and notifies the operator. The interaction log gets an event
// with no user message, which analytics counts as a lead but not as a turn.
func (o *Orchestrator) HandleContactCard(ctx context.Context, firstName, lastName, phone string, sender contact.Identity) Reply {
	rec := contact.FromCard(firstName, lastName, phone, sender)
	log := o.log.With(zap.Int64("user_id", sender.UserID))

	saved := o.deps.Contacts.Save(rec)
	if o.deps.Metrics != nil {
		o.deps.Metrics.ContactSaved(string(rec.Source), saved)
	}
	if o.deps.Notifier != nil {
		if err := o.deps.Notifier.Notify(ctx, rec); err != nil {
			log.Warn("operator notification failed", zap.Error(err))
		}
	}
	reply := Reply{TurnID: uuid.NewString(), Text: ContactReceivedReply, Route: storage.RouteContactCard, Contact: &rec}
	if o.deps.Recorder != nil {
		ev := storage.Event{
			Timestamp:         o.now().UTC(),
			TurnID:            reply.TurnID,
			UserID:            sender.UserID,
			Route:             reply.Route,
			AssistantResponse: reply.Text,
			ContactCaptured:   true,
		}
		if err := o.deps.Recorder.AppendInteraction(ev); err != nil {
			log.Warn("failed to record contact card", zap.Error(err))
		}
	}
	return reply
}
