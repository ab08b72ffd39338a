package transcodemodule

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/camarr-app/camarr/internal/types"
)

// softwareEncoders are the codec tokens whose thread count this service
// sizes. Hardware encoders manage their own parallelism.
var softwareEncoders = []string{"libx264", "libx265"}

// ArgsBuilder assembles the full ffmpeg argument vector for a stream
// session: input transport and source, rendered decoder and encoder
// arguments, thread sizing for software encodes, and the RTSP output leg.
type ArgsBuilder struct {
	rtspPort   int
	outputBase string
	resources  *ResourceMonitor
	logger     hclog.Logger
}

// NewArgsBuilder creates an args builder. outputBase is the RTSP base URL
// sessions publish to, e.g. "rtsp://127.0.0.1:8554".
func NewArgsBuilder(rtspPort int, outputBase string, resources *ResourceMonitor, logger hclog.Logger) *ArgsBuilder {
	return &ArgsBuilder{
		rtspPort:   rtspPort,
		outputBase: strings.TrimRight(outputBase, "/"),
		resources:  resources,
		logger:     logger,
	}
}

// Build produces the argument vector for one session. decoderArgs and
// encoderArgs must already be rendered; no template placeholders survive
// past this point.
func (b *ArgsBuilder) Build(ctx context.Context, req types.SessionRequest, host, channel, decoderArgs, encoderArgs, sessionID string) []string {
	var args []string

	// Global options
	args = append(args, "-hide_banner")
	args = append(args, "-loglevel", "warning")

	args = append(args, "-rtsp_transport", "tcp")
	args = append(args, "-fflags", "+genpts")

	// Decoder arguments precede the input they apply to.
	args = append(args, splitTokens(decoderArgs)...)

	args = append(args, "-i", b.inputURL(host, channel))

	args = append(args, splitTokens(encoderArgs)...)

	if usesSoftwareEncoder(encoderArgs) {
		args = append(args, "-threads", strconv.Itoa(b.resources.EncoderThreads(ctx)))
	}

	// Audio always passes through; detectAudio gates sensor exposure, not
	// stream contents.
	args = append(args, "-c:a", "copy")

	args = append(args, "-f", "rtsp", b.outputURL(sessionID))

	b.logger.Debug("built session arguments",
		"camera", req.CameraID, "session", sessionID, "argc", len(args))
	return args
}

func (b *ArgsBuilder) inputURL(host, channel string) string {
	return fmt.Sprintf("rtsp://%s/%s",
		net.JoinHostPort(host, strconv.Itoa(b.rtspPort)), channel)
}

func (b *ArgsBuilder) outputURL(sessionID string) string {
	return b.outputBase + "/" + sessionID
}

// splitTokens breaks a rendered argument string back into argv tokens.
func splitTokens(rendered string) []string {
	return strings.Fields(rendered)
}

func usesSoftwareEncoder(encoderArgs string) bool {
	for _, codec := range softwareEncoders {
		if strings.Contains(encoderArgs, codec) {
			return true
		}
	}
	return false
}
