// Package events defines the typed event contract between a realtime
// transport and the session orchestrator.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - transport.*
//   - user_transcript.*
//   - assistant_response.*
//   - history.*
//   - assistant_audio.*
//
// Semantics used across the package:
//
//   - Delta: incremental text for an in-progress item. Deltas carry the item
//     identifier they belong to; a change of identifier starts a new item.
//   - Completed/Done: the in-progress item is finished, live text can be
//     dropped.
//   - ItemAdded: authoritative, complete message record keyed by a stable
//     item identifier. The same item may be delivered more than once.
//   - Frame: binary audio payload.
//
// transport events
//
//   - TransportError (transport.error): the transport reported an error. The
//     connection is not necessarily closed.
//
// user_transcript events
//
//   - UserTranscriptDelta (user_transcript.delta): speech-to-text delta for the
//     user's current utterance.
//   - UserTranscriptCompleted (user_transcript.completed): the utterance
//     transcription finished.
//   - UserSpeechStarted (user_transcript.speech_started): voice activity
//     detection heard the user start talking.
//
// assistant_response events
//
//   - AssistantResponseCreated (assistant_response.created): a new response was
//     started.
//   - AssistantResponseTextDelta (assistant_response.text_delta): response text
//     delta. Audio transcripts of native audio responses are delivered as text
//     deltas as well.
//   - AssistantResponseDone (assistant_response.done): the response finished.
//
// history events
//
//   - HistoryItemAdded (history.item_added): a complete conversation item.
//
// assistant_audio events
//
//   - AssistantAudioStarted (assistant_audio.started): native audio output
//     started.
//   - AssistantAudioFrame (assistant_audio.frame): native audio output frame,
//     linear16 PCM.
//   - AssistantAudioStopped (assistant_audio.stopped): native audio output
//     stopped.
package events
