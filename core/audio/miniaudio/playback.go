package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/vsurfcode/portfolio-voice/core/audio"
)

type playbackClient struct {
	device *malgo.Device
	config malgo.DeviceConfig

	// pending holds audio not yet handed to the device, marks are positioned
	// relative to its start
	pending []byte
	marks   []playbackMark

	mu       sync.Mutex
	bufferMu sync.Mutex
}

type playbackMark struct {
	name     string
	position int
	callback func(string)
}

func (c *playbackClient) Init(audioContext *malgo.AllocatedContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sampleRate := uint32(audio.DefaultSampleRate)
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * audio.DefaultChannels

	c.config = malgo.DefaultDeviceConfig(malgo.Playback)
	c.config.SampleRate = sampleRate
	c.config.Playback.Format = format
	c.config.Playback.Channels = uint32(audio.DefaultChannels)
	c.config.Alsa.NoMMap = 1
	c.config.PeriodSizeInFrames = sampleRate / 10 // ~100ms of audio
	c.config.Periods = 4

	device, err := malgo.InitDevice(audioContext.Context, c.config, malgo.DeviceCallbacks{
		Data: c.processAudio(bytesPerFrame),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}
	c.device = device

	return nil
}

func (c *playbackClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	return nil
}

func (c *playbackClient) SendAudio(audio []byte) error {
	c.mu.Lock()
	device := c.device
	c.mu.Unlock()

	if device == nil {
		return fmt.Errorf("device not initialized")
	} else if !device.IsStarted() {
		return fmt.Errorf("device not started")
	}

	c.bufferMu.Lock()
	defer c.bufferMu.Unlock()
	c.pending = append(c.pending, audio...)
	return nil
}

// ClearBuffer drops queued audio. Dropped marks are not called.
func (c *playbackClient) ClearBuffer() {
	c.bufferMu.Lock()
	defer c.bufferMu.Unlock()
	c.pending = nil
	c.marks = nil
}

// Mark calls callback once the audio queued so far has been handed to the
// device.
func (c *playbackClient) Mark(mark string, callback func(string)) error {
	c.bufferMu.Lock()
	defer c.bufferMu.Unlock()
	c.marks = append(c.marks, playbackMark{
		name:     mark,
		position: len(c.pending),
		callback: callback,
	})
	return nil
}

func (c *playbackClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return nil
	}

	c.device.Uninit()
	c.device = nil

	return nil
}

func (c *playbackClient) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame

		c.bufferMu.Lock()
		n := copy(pOutput[:need], c.pending)
		c.pending = c.pending[n:]
		if len(c.pending) == 0 {
			c.pending = nil
		}
		passed := c.advanceMarks(n)
		c.bufferMu.Unlock()

		// the device buffer is reused, whatever was not filled must be silent
		clear(pOutput[n:need])

		if len(passed) > 0 {
			go func() {
				for _, mark := range passed {
					mark.callback(mark.name)
				}
			}()
		}
	}
}

// advanceMarks moves marks by the consumed byte count and returns those that
// were passed. Must be called with bufferMu held.
func (c *playbackClient) advanceMarks(consumed int) []playbackMark {
	passed := 0
	for i := range c.marks {
		if c.marks[i].position > consumed {
			c.marks[i].position -= consumed
			continue
		}
		passed++
	}

	if passed == 0 {
		return nil
	}

	toCall := c.marks[:passed]
	c.marks = c.marks[passed:]
	return toCall
}
