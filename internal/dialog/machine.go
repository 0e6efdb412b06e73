package dialog

import (
	"github.com/qmuntal/stateless"
)

type turnState string

const (
	stateReceived        turnState = "Received"
	stateKnowledgeLookup turnState = "KnowledgeLookup"
	stateModelCall       turnState = "ModelCall"
	stateExtractContact  turnState = "ExtractContact"
	statePersistContact  turnState = "PersistContact"
	stateUpdateHistory   turnState = "UpdateHistory"
	stateRespond         turnState = "Respond"
	stateDone            turnState = "Done"
)

type turnTrigger string

const (
	triggerConsultationIntent turnTrigger = "ConsultationIntent"
	triggerLookup             turnTrigger = "Lookup"
	triggerKnowledgeHit       turnTrigger = "KnowledgeHit"
	triggerKnowledgeContext   turnTrigger = "KnowledgeContext"
	triggerKnowledgeMiss      turnTrigger = "KnowledgeMiss"
	triggerModelReplied       turnTrigger = "ModelReplied"
	triggerModelFailed        turnTrigger = "ModelFailed"
	triggerContactFound       turnTrigger = "ContactFound"
	triggerNoContact          turnTrigger = "NoContact"
	triggerPersisted          turnTrigger = "Persisted"
	triggerHistoryUpdated     turnTrigger = "HistoryUpdated"
	triggerResponded          turnTrigger = "Responded"
)

// newTurnMachine describes the legal transitions of a single turn.
// A knowledge hit and a failed model call both skip the history update.
func newTurnMachine() *stateless.StateMachine {
	sm := stateless.NewStateMachine(stateReceived)

	sm.Configure(stateReceived).
		Permit(triggerConsultationIntent, stateRespond).
		Permit(triggerLookup, stateKnowledgeLookup)

	sm.Configure(stateKnowledgeLookup).
		Permit(triggerKnowledgeHit, stateRespond).
		Permit(triggerKnowledgeContext, stateModelCall).
		Permit(triggerKnowledgeMiss, stateModelCall)

	sm.Configure(stateModelCall).
		Permit(triggerModelReplied, stateExtractContact).
		Permit(triggerModelFailed, stateRespond)

	sm.Configure(stateExtractContact).
		Permit(triggerContactFound, statePersistContact).
		Permit(triggerNoContact, stateUpdateHistory)

	sm.Configure(statePersistContact).
		Permit(triggerPersisted, stateUpdateHistory)

	sm.Configure(stateUpdateHistory).
		Permit(triggerHistoryUpdated, stateRespond)

	sm.Configure(stateRespond).
		Permit(triggerResponded, stateDone)

	return sm
}
