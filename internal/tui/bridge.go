package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/vsurfcode/portfolio-voice/core"
)

type transcriptMsg []orchestration.TranscriptEntry

type stateMsg orchestration.State

type speakingMsg bool

type listeningMsg bool

type errorMsg struct{ err error }

// Bridge forwards session callbacks into a running program. Callbacks never
// block on the program: messages are queued and delivered in order by a
// separate goroutine. Callbacks that arrive with no program attached are
// dropped.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
	queue   []tea.Msg
	wake    chan struct{}
	stop    chan struct{}
}

func (b *Bridge) Attach(program *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stop != nil {
		close(b.stop)
		b.stop = nil
	}
	b.program = program
	b.queue = nil
	if program == nil {
		return
	}

	b.wake = make(chan struct{}, 1)
	b.stop = make(chan struct{})
	go b.pump(program, b.wake, b.stop)
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	if b.program == nil {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, msg)
	wake := b.wake
	b.mu.Unlock()

	select {
	case wake <- struct{}{}:
	default:
	}
}

func (b *Bridge) pump(program *tea.Program, wake, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-wake:
		}

		b.mu.Lock()
		if b.program != program {
			b.mu.Unlock()
			return
		}
		batch := b.queue
		b.queue = nil
		b.mu.Unlock()

		for _, msg := range batch {
			program.Send(msg)
		}
	}
}

// SessionOptions returns the callback options that feed this bridge.
func (b *Bridge) SessionOptions() []orchestration.SessionOption {
	return []orchestration.SessionOption{
		orchestration.WithTranscriptCallback(func(entries []orchestration.TranscriptEntry) {
			b.send(transcriptMsg(entries))
		}),
		orchestration.WithStateChangedCallback(func(state orchestration.State) {
			b.send(stateMsg(state))
		}),
		orchestration.WithSpeakingStateChangedCallback(func(speaking bool) {
			b.send(speakingMsg(speaking))
		}),
		orchestration.WithListeningStateChangedCallback(func(listening bool) {
			b.send(listeningMsg(listening))
		}),
		orchestration.WithErrorCallback(func(err error) {
			b.send(errorMsg{err: err})
		}),
	}
}
