package events

const (
	// KindUserTranscriptDelta identifies incremental user speech-to-text.
	KindUserTranscriptDelta Kind = "user_transcript.delta"
	// KindUserTranscriptCompleted identifies a finished user transcription.
	KindUserTranscriptCompleted Kind = "user_transcript.completed"
	// KindUserSpeechStarted identifies the start of a new user utterance.
	KindUserSpeechStarted Kind = "user_transcript.speech_started"
)

// UserSpeechStarted reports that the user started talking. Assistant audio
// still playing should be cut off.
type UserSpeechStarted struct {
	Base
	ItemID string
}

// NewUserSpeechStarted creates a user speech started event.
func NewUserSpeechStarted(itemID string) UserSpeechStarted {
	return UserSpeechStarted{Base: NewBase(KindUserSpeechStarted), ItemID: itemID}
}

// UserTranscriptDelta carries an incremental piece of the user's utterance.
type UserTranscriptDelta struct {
	Base
	ItemID string
	Delta  string
}

// NewUserTranscriptDelta creates a user transcript delta event.
func NewUserTranscriptDelta(itemID, delta string) UserTranscriptDelta {
	return UserTranscriptDelta{Base: NewBase(KindUserTranscriptDelta), ItemID: itemID, Delta: delta}
}

// UserTranscriptCompleted marks the end of the user's utterance transcription.
type UserTranscriptCompleted struct {
	Base
	ItemID     string
	Transcript string
}

// NewUserTranscriptCompleted creates a user transcript completed event.
func NewUserTranscriptCompleted(itemID, transcript string) UserTranscriptCompleted {
	return UserTranscriptCompleted{
		Base:       NewBase(KindUserTranscriptCompleted),
		ItemID:     itemID,
		Transcript: transcript,
	}
}
