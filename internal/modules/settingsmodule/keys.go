package settingsmodule

// Setting keys understood by the schema builder and write pipeline. Values
// are stored under these keys per camera.
const (
	KeyStreamChannel    = "streamChannel"
	KeyHubStreamChannel = "hubStreamChannel"
	KeyRecordingChannel = "recordingChannel"

	KeyLinkedMotionSensor = "linkedMotionSensor"

	KeyTranscodingNotice        = "transcodingNotice"
	KeyAddMissingStreamMetadata = "addMissingStreamMetadata"
	KeyTranscodeRecording       = "transcodeRecording"
	KeyTranscodeStreaming       = "transcodeStreaming"

	KeyHubStreamingMode      = "hubStreamingMode"
	KeyTranscodeStreamingHub = "transcodeStreamingHub"
	KeyDynamicBitrate        = "dynamicBitrate"

	KeyDecoderArguments = "decoderArguments"
	KeyEncoderArguments = "encoderArguments"

	KeyDetectAudio = "detectAudio"

	KeyObjectDetectionContactSensors = "objectDetectionContactSensors"
	KeyObjectDetectionTimeout        = "objectDetectionTimeout"

	KeyStatusIndicator = "statusIndicator"
)

// DefaultObjectDetectionTimeout is the object-detection hold time in seconds
// when no value is stored.
const DefaultObjectDetectionTimeout = 60

// reloadKeys are the settings whose writes require live sessions for the
// camera to be restarted. Writes to any other key complete silently.
var reloadKeys = map[string]bool{
	KeyDetectAudio:                   true,
	KeyLinkedMotionSensor:            true,
	KeyObjectDetectionContactSensors: true,
}

// transcodingNoticeText is the advisory shown above the transcode toggles.
const transcodingNoticeText = "Transcoding consumes significant CPU on the hub. " +
	"Leave it disabled unless a stream fails to play on your devices."
