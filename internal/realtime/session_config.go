package realtime

import (
	"encoding/json"

	"github.com/BaSui01/medidash/config"
)

type transcriptionConfig struct {
	Model string `json:"model"`
}

type turnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMS   int     `json:"prefix_padding_ms"`
	SilenceDurationMS int     `json:"silence_duration_ms"`
}

type sessionSettings struct {
	Modalities              []string            `json:"modalities"`
	Voice                   string              `json:"voice"`
	InputAudioFormat        string              `json:"input_audio_format"`
	OutputAudioFormat       string              `json:"output_audio_format"`
	InputAudioTranscription transcriptionConfig `json:"input_audio_transcription"`
	TurnDetection           turnDetection       `json:"turn_detection"`
	Temperature             float64             `json:"temperature"`
	MaxResponseOutputTokens int                 `json:"max_response_output_tokens"`
}

type sessionUpdate struct {
	Type    string          `json:"type"`
	Session sessionSettings `json:"session"`
}

// SessionUpdate 生成连接建立后发送给上游的首条 session.update 消息
func SessionUpdate(cfg config.RealtimeConfig) ([]byte, error) {
	return json.Marshal(sessionUpdate{
		Type: "session.update",
		Session: sessionSettings{
			Modalities:              []string{"text", "audio"},
			Voice:                   cfg.Voice,
			InputAudioFormat:        cfg.InputAudioFormat,
			OutputAudioFormat:       cfg.OutputAudioFormat,
			InputAudioTranscription: transcriptionConfig{Model: cfg.TranscriptionModel},
			TurnDetection: turnDetection{
				Type:              "server_vad",
				Threshold:         cfg.VADThreshold,
				PrefixPaddingMS:   cfg.VADPrefixPaddingMS,
				SilenceDurationMS: cfg.VADSilenceDurationMS,
			},
			Temperature:             cfg.Temperature,
			MaxResponseOutputTokens: cfg.MaxResponseOutputTokens,
		},
	})
}

type errorBody struct {
	Message string `json:"message"`
}

type errorFrame struct {
	Type  string    `json:"type"`
	Error errorBody `json:"error"`
}

// ErrorFrame 发送给客户端的错误消息
func ErrorFrame(message string) []byte {
	data, _ := json.Marshal(errorFrame{Type: "error", Error: errorBody{Message: message}})
	return data
}
