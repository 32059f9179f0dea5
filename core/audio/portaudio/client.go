package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/vsurfcode/portfolio-voice/core/audio"
)

// Client is a blocking duplex PortAudio stream. Output is written
// synchronously in frames of bufferSize samples, so it only supports the
// waiting mark API.
type Client struct {
	bufferSize int
	stream     *portaudio.Stream

	writeMu       sync.Mutex
	leftoverAudio []byte
	out           []int16

	captureMu     sync.Mutex
	in            []int16
	cancelCapture context.CancelFunc
	captureDone   chan struct{}
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, bufferSize)
	out := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(audio.DefaultChannels, audio.DefaultChannels, audio.DefaultSampleRate, bufferSize, in, out)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	return &Client{
		bufferSize: bufferSize,
		stream:     stream,
		in:         in,
		out:        out,
	}, nil
}

func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	c.captureMu.Lock()
	defer c.captureMu.Unlock()
	if c.cancelCapture != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancelCapture = cancel
	c.captureDone = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if err := c.stream.Read(); err != nil {
				logger.Warn("failed to read from portaudio stream", "error", err)
				continue
			}

			audioBuffer := bytes.Buffer{}
			_ = binary.Write(&audioBuffer, binary.LittleEndian, c.in)
			onAudio(audioBuffer.Bytes())
		}
	}(c.captureDone)

	return nil
}

func (c *Client) StopCapture() error {
	c.captureMu.Lock()
	cancel, done := c.cancelCapture, c.captureDone
	c.cancelCapture, c.captureDone = nil, nil
	c.captureMu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (c *Client) Close() {
	_ = c.StopCapture()
	_ = c.stream.Close()
	_ = portaudio.Terminate()
}

// SendAudio writes whole frames and keeps the remainder for the next call.
func (c *Client) SendAudio(audio []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	frameBytes := c.bufferSize * 2
	pending := append(c.leftoverAudio, audio...)
	for len(pending) >= frameBytes {
		if err := c.writeFrame(pending[:frameBytes]); err != nil {
			c.leftoverAudio = nil
			return err
		}
		pending = pending[frameBytes:]
	}
	c.leftoverAudio = append([]byte(nil), pending...)

	return nil
}

func (c *Client) ClearBuffer() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.leftoverAudio = nil
}

// AwaitMark flushes the remaining partial frame padded with silence. Frames
// are written synchronously, so once it returns everything queued before it
// has been played.
func (c *Client) AwaitMark() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if len(c.leftoverAudio) == 0 {
		return nil
	}

	frame := make([]byte, c.bufferSize*2)
	copy(frame, c.leftoverAudio)
	c.leftoverAudio = nil
	return c.writeFrame(frame)
}

func (c *Client) writeFrame(frame []byte) error {
	if err := binary.Read(bytes.NewReader(frame), binary.LittleEndian, c.out); err != nil {
		return fmt.Errorf("failed to decode audio frame: %w", err)
	}
	if err := c.stream.Write(); err != nil {
		return fmt.Errorf("failed to write to portaudio stream: %w", err)
	}
	return nil
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
